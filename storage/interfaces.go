package storage

import (
	"context"
	"time"

	"github.com/relevano/semsearch/core"
)

// EmbeddingRepository provides operations for managing embedding records.
// Implementations must be thread-safe and support concurrent access.
type EmbeddingRepository interface {
	// AddRecords adds one or more embedding records to storage.
	// Assigns new IDs from the database sequence and sets CreatedAt/UpdatedAt.
	// Every call creates new records; there is no deduplication.
	// Returns the records with generated IDs and timestamps populated.
	AddRecords(ctx context.Context, records ...*core.EmbeddingRecord) ([]*core.EmbeddingRecord, error)

	// UpdateRecords updates existing embedding records in full.
	// The stored CreatedAt and OwnerId are preserved; UpdatedAt is touched.
	// Returns ErrNotFound if any record doesn't exist.
	UpdateRecords(ctx context.Context, records ...*core.EmbeddingRecord) ([]*core.EmbeddingRecord, error)

	// DeleteRecords removes embedding records by their IDs.
	// Also removes associated index entries.
	// Returns ErrNotFound if any record doesn't exist.
	DeleteRecords(ctx context.Context, ids ...core.ID) error

	// GetRecord retrieves a single embedding record by ID, vector included.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, id core.ID) (*core.EmbeddingRecord, error)

	// GetRecords retrieves multiple embedding records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetRecords(ctx context.Context, ids ...core.ID) ([]*core.EmbeddingRecord, error)

	// ListByOwner retrieves one page of an owner's records, newest first.
	// Vectors are stripped from the returned records to bound payload size.
	// page is 1-based; perPage must be positive.
	ListByOwner(ctx context.Context, ownerID string, perPage, page int) ([]*core.EmbeddingRecord, *core.PageInfo, error)

	// FindByName retrieves records whose CompanyName contains pattern,
	// matched case-insensitively. An empty ownerID searches all owners.
	// Vectors are stripped from the returned records.
	FindByName(ctx context.Context, pattern, ownerID string) ([]*core.EmbeddingRecord, error)

	// GetRecentByOwner retrieves an owner's most recent records, newest
	// first, vectors included. Returns up to limit records.
	GetRecentByOwner(ctx context.Context, ownerID string, limit int) ([]*core.EmbeddingRecord, error)

	// GetRecordsByDateRange retrieves records created within a time range.
	// Returns records where start <= CreatedAt < end, ordered by creation time.
	GetRecordsByDateRange(ctx context.Context, start, end time.Time) ([]*core.EmbeddingRecord, error)

	// ScanCandidates retrieves up to cap records with their vectors, taken
	// in creation-time descending order. Records owned by excludeOwnerID
	// are skipped (pass "" to include all owners), as are records without
	// a vector. cap bounds the scan, it is not a sample guarantee.
	ScanCandidates(ctx context.Context, excludeOwnerID string, cap int) ([]*core.EmbeddingRecord, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the repository and releases resources.
	Close() error
}
