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


package semsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/relevano/semsearch/ai"
	"github.com/relevano/semsearch/ai/openai"
	"github.com/relevano/semsearch/core"
	"github.com/relevano/semsearch/reembed"
	"github.com/relevano/semsearch/search"
	"github.com/relevano/semsearch/storage"
	"github.com/relevano/semsearch/storage/badger"
)

// Engine is the top-level entry point. It owns the storage backend, the
// embedding repository, the embedder, and a searcher, and exposes the
// record and search operations as a single facade.
type Engine struct {
	backend  *badger.Backend
	repo     storage.EmbeddingRepository
	embedder ai.Embedder
	searcher *search.Searcher
	config   *ai.Config
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig   *ai.Config
	embedder   ai.Embedder
	inMemory   bool
	searchOpts []search.Option
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder substitutes the embedder used for all operations. Intended
// for tests and for callers bringing their own embedding client.
func WithEmbedder(embedder ai.Embedder) EngineOption {
	return func(o *engineOptions) {
		o.embedder = embedder
	}
}

// WithInMemoryStore keeps all records in memory instead of on disk.
func WithInMemoryStore() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithSearchOptions passes options through to the underlying searcher.
func WithSearchOptions(opts ...search.Option) EngineOption {
	return func(o *engineOptions) {
		o.searchOpts = append(o.searchOpts, opts...)
	}
}

// New opens or creates an engine at filePath.
func New(filePath string, opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create embedding repository
	repo, err := badger.NewEmbeddingRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create embedder with configured settings
	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			repo.Close()
			backend.Close()
			return nil, err
		}
	}

	searcher, err := search.NewSearcher(repo, embedder, options.searchOpts...)
	if err != nil {
		repo.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:  backend,
		repo:     repo,
		embedder: embedder,
		searcher: searcher,
		config:   options.aiConfig,
		logger:   slog.Default(),
	}, nil
}

func (e *Engine) Close() error {
	e.searcher.Release()

	if err := e.repo.Close(); err != nil {
		e.logger.Error("error closing embedding repository", "err", err)
		return err
	}

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Repository exposes the underlying embedding repository.
func (e *Engine) Repository() storage.EmbeddingRepository {
	return e.repo
}

// StoreEmbedding embeds sourceText and stores it as a new record. The
// returned record carries its assigned ID and timestamps.
func (e *Engine) StoreEmbedding(ctx context.Context, companyName, sourceText, ownerID string, metadata map[string]string) (*core.EmbeddingRecord, error) {
	record := &core.EmbeddingRecord{
		CompanyName: companyName,
		SourceText:  sourceText,
		OwnerId:     ownerID,
		Metadata:    metadata,
	}
	if err := core.ValidateEmbeddingRecord(record); err != nil {
		return nil, err
	}

	vector, err := e.embed(ctx, sourceText)
	if err != nil {
		return nil, err
	}
	record.Vector = vector

	added, err := e.repo.AddRecords(ctx, record)
	if err != nil {
		return nil, err
	}
	return added[0], nil
}

// UpdateEmbedding replaces a record's source text and regenerates its
// vector. Returns storage.ErrNotFound if no record has the given ID.
func (e *Engine) UpdateEmbedding(ctx context.Context, id core.ID, sourceText string) (*core.EmbeddingRecord, error) {
	if sourceText == "" {
		return nil, core.ErrEmptySourceText
	}

	record, err := e.repo.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	vector, err := e.embed(ctx, sourceText)
	if err != nil {
		return nil, err
	}
	record.SourceText = sourceText
	record.Vector = vector

	updated, err := e.repo.UpdateRecords(ctx, record)
	if err != nil {
		return nil, err
	}
	return updated[0], nil
}

// DeleteEmbedding removes a record. It reports whether a record was
// deleted; a missing ID is not an error.
func (e *Engine) DeleteEmbedding(ctx context.Context, id core.ID) (bool, error) {
	err := e.repo.DeleteRecords(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetEmbedding retrieves a single record by ID.
func (e *Engine) GetEmbedding(ctx context.Context, id core.ID) (*core.EmbeddingRecord, error) {
	return e.repo.GetRecord(ctx, id)
}

// ListByOwner returns one page of an owner's records, newest first,
// without vectors.
func (e *Engine) ListByOwner(ctx context.Context, ownerID string, perPage, page int) ([]*core.EmbeddingRecord, *core.PageInfo, error) {
	return e.repo.ListByOwner(ctx, ownerID, perPage, page)
}

// SearchByName finds records whose company name contains pattern,
// case-insensitively. ownerID narrows the search to one owner; pass ""
// for all owners.
func (e *Engine) SearchByName(ctx context.Context, pattern, ownerID string) ([]*core.EmbeddingRecord, error) {
	return e.repo.FindByName(ctx, pattern, ownerID)
}

// Search finds records semantically similar to the query text.
func (e *Engine) Search(ctx context.Context, query string, limit int, threshold float32, excludeOwnerID string) ([]*core.SearchResult, error) {
	return e.searcher.Search(ctx, query, limit, threshold, excludeOwnerID)
}

// Recommend suggests other owners' records based on the owner's recent
// activity.
func (e *Engine) Recommend(ctx context.Context, ownerID string, limit int) ([]*core.SearchResult, error) {
	return e.searcher.Recommend(ctx, ownerID, limit)
}

// NewReembedder returns a reembedder over this engine's repository and
// embedder.
func (e *Engine) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(e.repo, e.embedder, config, progress)
}

// embed generates a normalized vector for text and enforces the
// configured dimensionality.
func (e *Engine) embed(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		e.logger.Error("error generating embedding", "err", err)
		return nil, err
	}
	if e.config != nil && e.config.Dimensions > 0 && len(vector) != e.config.Dimensions {
		return nil, fmt.Errorf("%w: embedder returned %d dimensions, expected %d",
			core.ErrDimensionMismatch, len(vector), e.config.Dimensions)
	}
	return core.NormalizeVector(vector), nil
}
