package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/relevano/semsearch/core"
)

// Key prefixes for different data types. The primary record prefix is always
// followed by ':' so it never collides with the index and sequence prefixes.
const (
	embeddingRecordPrefix = "embrec"
	embeddingDatePrefix   = "embrecd"
	embeddingOwnerPrefix  = "embreco"
	embeddingIDSeq        = "embrecseq"
)

// makeRecordKey generates a key for an embedding record by ID.
func makeRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", embeddingRecordPrefix, id))
}

// makeDateKey generates a composite key for the creation-time index.
// Format: prefix:timestamp:id
func makeDateKey(createdAt time.Time, id core.ID) []byte {
	prefix := []byte(embeddingDatePrefix + ":")
	buf := make([]byte, len(prefix)+16) // 8 bytes for timestamp + 8 bytes for ID
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialDateKey(createdAt time.Time) []byte {
	prefix := []byte(embeddingDatePrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	return buf
}

// makeOwnerKey generates a composite key for the owner index.
// Format: prefix:ownerID:timestamp:id
func makeOwnerKey(ownerID string, createdAt time.Time, id core.ID) []byte {
	prefix := makeOwnerPrefix(ownerID)
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeOwnerPrefix generates the key prefix covering one owner's index entries.
func makeOwnerPrefix(ownerID string) []byte {
	return []byte(embeddingOwnerPrefix + ":" + ownerID + ":")
}

// maxIndexSuffix is appended to a partial index key to seek past every entry
// under that prefix during reverse iteration.
var maxIndexSuffix = []byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// makeSeekKey builds the starting key for reverse iteration over prefix.
func makeSeekKey(prefix []byte) []byte {
	buf := make([]byte, len(prefix)+len(maxIndexSuffix))
	offset := copy(buf, prefix)
	copy(buf[offset:], maxIndexSuffix)
	return buf
}
