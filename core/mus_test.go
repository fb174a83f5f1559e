package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingRecordMUS_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	record := EmbeddingRecord{
		Id:          187,
		CompanyName: "Acme Robotics",
		SourceText:  "industrial automation for mid-size factories",
		Vector:      []float32{0.125, -0.75, 1.5e-7, 0.333333},
		OwnerId:     "user-1",
		Metadata:    map[string]string{"industry": "robotics", "website": "https://acme.example"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	bs := make([]byte, EmbeddingRecordMUS.Size(record))
	n := EmbeddingRecordMUS.Marshal(record, bs)
	assert.Equal(t, len(bs), n)

	decoded, n, err := EmbeddingRecordMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)

	assert.Equal(t, record.Id, decoded.Id)
	assert.Equal(t, record.CompanyName, decoded.CompanyName)
	assert.Equal(t, record.SourceText, decoded.SourceText)
	assert.Equal(t, record.OwnerId, decoded.OwnerId)
	assert.Equal(t, record.Metadata, decoded.Metadata)
	assert.True(t, record.CreatedAt.Equal(decoded.CreatedAt))
	assert.True(t, record.UpdatedAt.Equal(decoded.UpdatedAt))
	assert.Equal(t, record.Vector, decoded.Vector)
}

func TestEmbeddingRecordMUS_VectorBitsPreserved(t *testing.T) {
	// Awkward floating-point values must survive the codec bit for bit.
	record := EmbeddingRecord{
		Id:          1,
		CompanyName: "Edge Cases Inc",
		SourceText:  "text",
		OwnerId:     "user-1",
		Vector: []float32{
			math.SmallestNonzeroFloat32,
			math.MaxFloat32,
			-0.0,
			float32(math.Pi),
			1e-38,
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	bs := make([]byte, EmbeddingRecordMUS.Size(record))
	EmbeddingRecordMUS.Marshal(record, bs)

	decoded, _, err := EmbeddingRecordMUS.Unmarshal(bs)
	require.NoError(t, err)
	require.Len(t, decoded.Vector, len(record.Vector))

	for i := range record.Vector {
		assert.Equal(t, math.Float32bits(record.Vector[i]), math.Float32bits(decoded.Vector[i]),
			"element %d", i)
	}
}

func TestEmbeddingRecordMUS_Skip(t *testing.T) {
	record := EmbeddingRecord{
		Id:          7,
		CompanyName: "Acme",
		SourceText:  "text",
		Vector:      []float32{1, 2, 3},
		OwnerId:     "user-1",
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	bs := make([]byte, EmbeddingRecordMUS.Size(record))
	EmbeddingRecordMUS.Marshal(record, bs)

	n, err := EmbeddingRecordMUS.Skip(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
}

func TestIDMUS_RoundTrip(t *testing.T) {
	for _, id := range []ID{0, 1, 255, 1 << 20, 1<<63 - 1} {
		bs := make([]byte, IDMUS.Size(id))
		IDMUS.Marshal(id, bs)
		decoded, _, err := IDMUS.Unmarshal(bs)
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	}
}
