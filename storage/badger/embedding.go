package badger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/relevano/semsearch/core"
	"github.com/relevano/semsearch/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) (*EmbeddingRepository, error) {
	idSeq, err := backend.GetSequence(embeddingIDSeq)
	if err != nil {
		return nil, err
	}

	return &EmbeddingRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *EmbeddingRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *EmbeddingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddRecords adds one or more embedding records to storage.
func (r *EmbeddingRepository) AddRecords(ctx context.Context, records ...*core.EmbeddingRecord) ([]*core.EmbeddingRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			// Always generate new ID from sequence
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			record.Id = core.ID(nextID)

			record.CreatedAt = time.Now().UTC()
			record.UpdatedAt = record.CreatedAt

			if err := r.writeRecord(tx, record); err != nil {
				return err
			}

			// Index entries are keyed on CreatedAt, which never changes
			idVal := storage.MarshalID(record.Id)
			if err := tx.Set(makeDateKey(record.CreatedAt, record.Id), idVal); err != nil {
				return err
			}
			if err := tx.Set(makeOwnerKey(record.OwnerId, record.CreatedAt, record.Id), idVal); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// UpdateRecords updates existing embedding records.
// CreatedAt and OwnerId are taken from the stored record; UpdatedAt is touched.
func (r *EmbeddingRepository) UpdateRecords(ctx context.Context, records ...*core.EmbeddingRecord) ([]*core.EmbeddingRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			old, err := r.readRecord(tx, makeRecordKey(record.Id))
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			record.CreatedAt = old.CreatedAt
			record.OwnerId = old.OwnerId
			record.UpdatedAt = time.Now().UTC()

			if err := r.writeRecord(tx, record); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// DeleteRecords removes embedding records by their IDs.
func (r *EmbeddingRepository) DeleteRecords(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeRecordKey(id)

			// Read record to get index keys for cleanup
			record, err := r.readRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeDateKey(record.CreatedAt, record.Id)); err != nil {
				return err
			}
			if err := tx.Delete(makeOwnerKey(record.OwnerId, record.CreatedAt, record.Id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetRecord retrieves a single embedding record by ID.
func (r *EmbeddingRepository) GetRecord(ctx context.Context, id core.ID) (*core.EmbeddingRecord, error) {
	var result *core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readRecord(tx, makeRecordKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetRecords retrieves multiple embedding records by their IDs.
func (r *EmbeddingRepository) GetRecords(ctx context.Context, ids ...core.ID) ([]*core.EmbeddingRecord, error) {
	var result []*core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := r.readRecord(tx, makeRecordKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListByOwner retrieves one page of an owner's records, newest first.
// Vectors are stripped from the returned records.
func (r *EmbeddingRepository) ListByOwner(ctx context.Context, ownerID string, perPage, page int) ([]*core.EmbeddingRecord, *core.PageInfo, error) {
	if ownerID == "" || perPage < 1 || page < 1 {
		return nil, nil, storage.ErrInvalidQuery
	}

	offset := (page - 1) * perPage
	var ids []core.ID
	total := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeOwnerPrefix(ownerID)
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeSeekKey(prefix)); iter.Valid(); iter.Next() {
			if total >= offset && total < offset+perPage {
				var id core.ID
				if err := iter.Item().Value(func(val []byte) error {
					var err error
					id, err = storage.UnmarshalID(val)
					return err
				}); err != nil {
					return err
				}
				ids = append(ids, id)
			}
			total++
		}
		return nil
	}, false)
	if err != nil {
		return nil, nil, err
	}

	records, err := r.GetRecords(ctx, ids...)
	if err != nil {
		return nil, nil, err
	}

	stripped := make([]*core.EmbeddingRecord, len(records))
	for i, record := range records {
		stripped[i] = record.WithoutVector()
	}

	info := &core.PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return stripped, info, nil
}

// FindByName retrieves records whose company name contains pattern,
// case-insensitively. An empty ownerID searches all owners.
// Results are ordered newest first; vectors are stripped.
func (r *EmbeddingRepository) FindByName(ctx context.Context, pattern, ownerID string) ([]*core.EmbeddingRecord, error) {
	if pattern == "" {
		return nil, storage.ErrInvalidQuery
	}
	needle := strings.ToLower(pattern)

	var results []*core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingRecordPrefix + ":")

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.EmbeddingRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalEmbeddingRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}
			if ownerID != "" && record.OwnerId != ownerID {
				continue
			}
			if !strings.Contains(strings.ToLower(record.CompanyName), needle) {
				continue
			}
			results = append(results, record.WithoutVector())
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.EmbeddingRecord) int {
		if cmp := b.CreatedAt.Compare(a.CreatedAt); cmp != 0 {
			return cmp
		}
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})
	return results, nil
}

// GetRecentByOwner retrieves an owner's most recent records, newest first,
// vectors included.
func (r *EmbeddingRepository) GetRecentByOwner(ctx context.Context, ownerID string, limit int) ([]*core.EmbeddingRecord, error) {
	if ownerID == "" || limit < 1 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeOwnerPrefix(ownerID)
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeSeekKey(prefix)); iter.Valid() && len(results) < limit; iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			record, err := r.readRecord(tx, makeRecordKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetRecordsByDateRange retrieves records created within a time range.
func (r *EmbeddingRepository) GetRecordsByDateRange(ctx context.Context, start, end time.Time) ([]*core.EmbeddingRecord, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialDateKey(start)
		endKey := makePartialDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key, endKey) > 0 {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			record, err := r.readRecord(tx, makeRecordKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// ScanCandidates retrieves up to cap records with vectors, newest first.
// Records owned by excludeOwnerID and records without a vector are skipped.
// The cap bounds how far down the creation-time index the scan reaches;
// similarity results computed from the scan are exact only within this window.
func (r *EmbeddingRepository) ScanCandidates(ctx context.Context, excludeOwnerID string, cap int) ([]*core.EmbeddingRecord, error) {
	if cap < 1 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(embeddingDatePrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeSeekKey(prefix)); iter.Valid() && len(results) < cap; iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			record, err := r.readRecord(tx, makeRecordKey(id))
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}
			if excludeOwnerID != "" && record.OwnerId == excludeOwnerID {
				continue
			}
			// Skip records without embeddings
			if len(record.Vector) == 0 {
				continue
			}
			results = append(results, record)
		}
		return nil
	}, false)

	return results, err
}

// writeRecord stores the primary record entry.
func (r *EmbeddingRepository) writeRecord(tx *badger.Txn, record *core.EmbeddingRecord) error {
	return tx.Set(makeRecordKey(record.Id), storage.MarshalEmbeddingRecord(record))
}

// readRecord reads a record by key, returning nil if it doesn't exist.
func (r *EmbeddingRepository) readRecord(tx *badger.Txn, key []byte) (*core.EmbeddingRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.EmbeddingRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalEmbeddingRecord(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
