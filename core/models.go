package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored embedding records.
// It is assigned from a database sequence at creation time and never changes.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces the same value. Used for content
// fingerprints, not for record identity.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EmbeddingRecord is a stored piece of research text together with its
// embedding vector. The vector dimensionality is constant across the whole
// store; records are only ever compared against equal-length vectors.
type EmbeddingRecord struct {
	Id          ID
	CompanyName string            // Display label, never empty
	SourceText  string            // The text that was embedded; retained for re-embedding and audit
	Vector      []float32         // Embedding vector; regenerated in full on every update
	OwnerId     string            // Identity of the creating user; immutable after creation
	Metadata    map[string]string // Opaque tags (industry, website, free-form), passed through unmodified
	CreatedAt   time.Time         // When the record was created
	UpdatedAt   time.Time         // When the record was last updated
}

// WithoutVector returns a shallow copy of the record with the vector payload
// dropped. List and search responses use this to bound payload size.
func (r *EmbeddingRecord) WithoutVector() *EmbeddingRecord {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Vector = nil
	return &clone
}

// SearchResult is a ranked match from a search or recommendation operation.
// The record carries its metadata but not its raw vector.
type SearchResult struct {
	Record *EmbeddingRecord
	Score  float32
}

// PageInfo describes the position of a page within an owner-scoped listing.
type PageInfo struct {
	Page       int // 1-based page number
	PerPage    int // Requested page size
	Total      int // Total records for the owner
	TotalPages int
}
