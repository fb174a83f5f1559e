package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRecord() *EmbeddingRecord {
	return &EmbeddingRecord{
		CompanyName: "Acme Robotics",
		SourceText:  "industrial automation for mid-size factories",
		OwnerId:     "user-1",
	}
}

func TestValidateEmbeddingRecord(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		assert.NoError(t, ValidateEmbeddingRecord(validRecord()))
	})

	t.Run("nil record", func(t *testing.T) {
		err := ValidateEmbeddingRecord(nil)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("empty company name", func(t *testing.T) {
		record := validRecord()
		record.CompanyName = ""
		err := ValidateEmbeddingRecord(record)
		assert.ErrorIs(t, err, ErrInvalidRecord)
		assert.ErrorIs(t, err, ErrEmptyCompanyName)
	})

	t.Run("empty source text", func(t *testing.T) {
		record := validRecord()
		record.SourceText = ""
		err := ValidateEmbeddingRecord(record)
		assert.ErrorIs(t, err, ErrEmptySourceText)
	})

	t.Run("empty owner", func(t *testing.T) {
		record := validRecord()
		record.OwnerId = ""
		err := ValidateEmbeddingRecord(record)
		assert.ErrorIs(t, err, ErrEmptyOwner)
	})

	t.Run("vector not required", func(t *testing.T) {
		record := validRecord()
		record.Vector = nil
		assert.NoError(t, ValidateEmbeddingRecord(record))
	})
}
