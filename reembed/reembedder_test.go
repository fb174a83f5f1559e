package reembed

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/relevano/semsearch/ai/mock"
	"github.com/relevano/semsearch/core"
	"github.com/relevano/semsearch/storage"
	"github.com/relevano/semsearch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReembedRepo(t *testing.T) storage.EmbeddingRepository {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func testConfig() *Config {
	return &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

func TestReembedder_ReplacesVectors(t *testing.T) {
	repo := newReembedRepo(t)
	ctx := context.Background()

	added, err := repo.AddRecords(ctx,
		&core.EmbeddingRecord{CompanyName: "acme", SourceText: "first", Vector: []float32{1, 0}, OwnerId: "user-1"},
		&core.EmbeddingRecord{CompanyName: "umbrella", SourceText: "second", Vector: []float32{0, 1}, OwnerId: "user-1"},
		&core.EmbeddingRecord{CompanyName: "initech", SourceText: "third", Vector: []float32{1, 1}, OwnerId: "user-2"},
	)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{3, 4}
		}
		return vectors, nil
	}

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, embedder, testConfig(), &buf)
	require.NoError(t, reembedder.Run(ctx))

	for _, original := range added {
		updated, err := repo.GetRecord(ctx, original.Id)
		require.NoError(t, err)

		// {3,4} normalized is {0.6,0.8}
		require.Len(t, updated.Vector, 2)
		assert.InDelta(t, 0.6, float64(updated.Vector[0]), 1e-5)
		assert.InDelta(t, 0.8, float64(updated.Vector[1]), 1e-5)

		norm := math.Sqrt(float64(updated.Vector[0]*updated.Vector[0] + updated.Vector[1]*updated.Vector[1]))
		assert.InDelta(t, 1.0, norm, 1e-5)

		assert.Equal(t, original.CreatedAt, updated.CreatedAt)
		assert.Equal(t, original.OwnerId, updated.OwnerId)
	}

	assert.Contains(t, buf.String(), "Reembedding complete. Processed 3 records")
}

func TestReembedder_EmptyStore(t *testing.T) {
	repo := newReembedRepo(t)

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, mock.NewMockEmbedder(), testConfig(), &buf)
	require.NoError(t, reembedder.Run(context.Background()))
	assert.Contains(t, buf.String(), "No records found")
}

func TestReembedder_RetriesEmbeddingFailures(t *testing.T) {
	repo := newReembedRepo(t)
	ctx := context.Background()

	_, err := repo.AddRecords(ctx,
		&core.EmbeddingRecord{CompanyName: "acme", SourceText: "text", Vector: []float32{1, 0}, OwnerId: "user-1"})
	require.NoError(t, err)

	calls := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("rate limited")
		}
		return [][]float32{{1, 0}}, nil
	}

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, embedder, testConfig(), &buf)
	require.NoError(t, reembedder.Run(ctx))
	assert.Equal(t, 2, calls)
}

func TestReembedder_PersistentFailureSurfaces(t *testing.T) {
	repo := newReembedRepo(t)
	ctx := context.Background()

	_, err := repo.AddRecords(ctx,
		&core.EmbeddingRecord{CompanyName: "acme", SourceText: "text", Vector: []float32{1, 0}, OwnerId: "user-1"})
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("service down")
	}

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, embedder, testConfig(), &buf)
	err = reembedder.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service down")
}

func TestReembedder_CountMismatchFails(t *testing.T) {
	repo := newReembedRepo(t)
	ctx := context.Background()

	_, err := repo.AddRecords(ctx,
		&core.EmbeddingRecord{CompanyName: "acme", SourceText: "a", Vector: []float32{1, 0}, OwnerId: "user-1"},
		&core.EmbeddingRecord{CompanyName: "umbrella", SourceText: "b", Vector: []float32{0, 1}, OwnerId: "user-1"})
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, embedder, testConfig(), &buf)
	err = reembedder.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding count mismatch")
}

// countingRepo counts full-store fetches.
type countingRepo struct {
	storage.EmbeddingRepository
	dateRangeCalls int
}

func (r *countingRepo) GetRecordsByDateRange(ctx context.Context, start, end time.Time) ([]*core.EmbeddingRecord, error) {
	r.dateRangeCalls++
	return r.EmbeddingRepository.GetRecordsByDateRange(ctx, start, end)
}

func TestReembedder_FetchesStoreOnce(t *testing.T) {
	repo := newReembedRepo(t)
	ctx := context.Background()

	_, err := repo.AddRecords(ctx,
		&core.EmbeddingRecord{CompanyName: "acme", SourceText: "a", Vector: []float32{1, 0}, OwnerId: "user-1"},
		&core.EmbeddingRecord{CompanyName: "umbrella", SourceText: "b", Vector: []float32{0, 1}, OwnerId: "user-1"},
		&core.EmbeddingRecord{CompanyName: "initech", SourceText: "c", Vector: []float32{1, 1}, OwnerId: "user-2"})
	require.NoError(t, err)

	counting := &countingRepo{EmbeddingRepository: repo}

	var buf bytes.Buffer
	reembedder := NewReembedder(counting, mock.NewMockEmbedder(), testConfig(), &buf)
	require.NoError(t, reembedder.Run(ctx))

	assert.Equal(t, 1, counting.dateRangeCalls)
}

func TestReembedder_NilConfigUsesDefaults(t *testing.T) {
	repo := newReembedRepo(t)

	var buf bytes.Buffer
	reembedder := NewReembedder(repo, mock.NewMockEmbedder(), nil, &buf)
	assert.Equal(t, DefaultConfig().BatchSize, reembedder.config.BatchSize)
}
