// Copyright 2025 Relevano Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"time"

	"github.com/relevano/semsearch/core"
	"github.com/relevano/semsearch/storage"
)

const (
	// DefaultBatchSize is the default number of records fetched per batch
	DefaultBatchSize = 100
)

// RecordIterator walks every embedding record in the repository in batches,
// oldest first.
type RecordIterator struct {
	repo      storage.EmbeddingRepository
	batchSize int
}

// NewRecordIterator creates a new record iterator.
// batchSize: number of records to hand to fn at a time (must be > 0)
func NewRecordIterator(repo storage.EmbeddingRepository, batchSize int) *RecordIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &RecordIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// Fetch loads every record in the repository, oldest first.
func (it *RecordIterator) Fetch(ctx context.Context) ([]*core.EmbeddingRecord, error) {
	// A wide date range covers the whole store
	start := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2100, 12, 31, 23, 59, 59, 0, time.UTC)

	return it.repo.GetRecordsByDateRange(ctx, start, end)
}

// ForEach fetches all records and calls fn for each batch. Iteration stops
// on the first error from fn; context cancellation is checked between
// batches.
func (it *RecordIterator) ForEach(ctx context.Context, fn func([]*core.EmbeddingRecord) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records, err := it.Fetch(ctx)
	if err != nil {
		return err
	}

	return it.ForEachIn(ctx, records, fn)
}

// ForEachIn batches an already-fetched record slice through fn, so callers
// that need the full slice up front do not fetch the store twice.
func (it *RecordIterator) ForEachIn(ctx context.Context, records []*core.EmbeddingRecord, fn func([]*core.EmbeddingRecord) error) error {
	for i := 0; i < len(records); i += it.batchSize {
		last := min(i+it.batchSize, len(records))

		if err := fn(records[i:last]); err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}
