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
	"fmt"
	"io"
	"time"

	"github.com/relevano/semsearch/ai"
	"github.com/relevano/semsearch/core"
	"github.com/relevano/semsearch/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of records embedded per API call
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates the vectors of every embedding record in a
// repository using the configured embedder.
type Reembedder struct {
	repo     storage.EmbeddingRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
	iterator *RecordIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.EmbeddingRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	return &Reembedder{
		repo:     repo,
		embedder: embedder,
		config:   config,
		progress: progress,
		iterator: NewRecordIterator(repo, config.BatchSize),
	}
}

// Run reembeds every record in the repository, reporting progress to the
// configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	allRecords, err := r.iterator.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to query records: %w", err)
	}

	total := len(allRecords)
	if total == 0 {
		fmt.Fprintf(r.progress, "No records found in store (0 records)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d records (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)

	err = r.iterator.ForEachIn(ctx, allRecords, func(records []*core.EmbeddingRecord) error {
		if err := r.processBatch(ctx, records); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		tracker.Add(len(records))
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d records in %v (%.1f records/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}

// processBatch embeds the source text of each record and writes the
// refreshed vectors back. Vectors are normalized before the update.
func (r *Reembedder) processBatch(ctx context.Context, records []*core.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.SourceText
	}

	var vectors [][]float32
	err := Retry(ctx, r.config.MaxRetries, r.config.RetryDelay, func(ctx context.Context) error {
		var err error
		vectors, err = r.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", r.config.MaxRetries, err)
	}

	if len(vectors) != len(records) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(records), len(vectors))
	}

	for i := range records {
		records[i].Vector = core.NormalizeVector(vectors[i])
	}

	if _, err := r.repo.UpdateRecords(ctx, records...); err != nil {
		return fmt.Errorf("failed to update records: %w", err)
	}

	return nil
}
