package semsearch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/relevano/semsearch/ai"
	"github.com/relevano/semsearch/ai/mock"
	"github.com/relevano/semsearch/core"
	"github.com/relevano/semsearch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()

	opts = append([]EngineOption{
		WithInMemoryStore(),
		WithEmbedder(mock.NewMockEmbedder()),
		WithAIConfig(ai.NewConfig(ai.WithDimensions(mock.DefaultDimensions))),
	}, opts...)

	engine, err := New("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestNew(t *testing.T) {
	t.Run("create new engine", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		engine, err := New(tmpDir, WithEmbedder(mock.NewMockEmbedder()))
		require.NoError(t, err)
		require.NotNil(t, engine)
		defer engine.Close()

		assert.NotNil(t, engine.Repository())
		assert.NotNil(t, engine.backend)
		assert.NotNil(t, engine.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// A file where the store directory should be
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		engine, err := New(tmpFile, WithEmbedder(mock.NewMockEmbedder()))
		assert.Error(t, err)
		assert.Nil(t, engine)
	})
}

func TestEngine_Close(t *testing.T) {
	engine, err := New(t.TempDir(), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)

	assert.NoError(t, engine.Close())
}

func TestEngine_StoreEmbedding(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	t.Run("stores and assigns identity", func(t *testing.T) {
		record, err := engine.StoreEmbedding(ctx, "Acme Robotics", "industrial robot arms", "user-1",
			map[string]string{"industry": "robotics"})
		require.NoError(t, err)

		assert.NotZero(t, record.Id)
		assert.False(t, record.CreatedAt.IsZero())
		assert.Equal(t, record.CreatedAt, record.UpdatedAt)
		assert.Len(t, record.Vector, mock.DefaultDimensions)

		stored, err := engine.GetEmbedding(ctx, record.Id)
		require.NoError(t, err)
		assert.Equal(t, "Acme Robotics", stored.CompanyName)
		assert.Equal(t, "industrial robot arms", stored.SourceText)
		assert.Equal(t, map[string]string{"industry": "robotics"}, stored.Metadata)
	})

	t.Run("rejects empty fields", func(t *testing.T) {
		_, err := engine.StoreEmbedding(ctx, "", "text", "user-1", nil)
		assert.ErrorIs(t, err, core.ErrInvalidRecord)

		_, err = engine.StoreEmbedding(ctx, "Acme", "", "user-1", nil)
		assert.ErrorIs(t, err, core.ErrInvalidRecord)

		_, err = engine.StoreEmbedding(ctx, "Acme", "text", "", nil)
		assert.ErrorIs(t, err, core.ErrInvalidRecord)
	})

	t.Run("embedding failure surfaces", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, ai.ErrEmbeddingFailed
		}
		failing := newTestEngine(t, WithEmbedder(embedder))

		_, err := failing.StoreEmbedding(ctx, "Acme", "text", "user-1", nil)
		assert.ErrorIs(t, err, ai.ErrEmbeddingFailed)
	})

	t.Run("wrong dimensionality rejected", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.Dimensions = 8
		shrunk := newTestEngine(t, WithEmbedder(embedder))

		_, err := shrunk.StoreEmbedding(ctx, "Acme", "text", "user-1", nil)
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	})
}

func TestEngine_UpdateEmbedding(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	record, err := engine.StoreEmbedding(ctx, "Acme Robotics", "robot arms", "user-1", nil)
	require.NoError(t, err)

	t.Run("replaces text and vector", func(t *testing.T) {
		updated, err := engine.UpdateEmbedding(ctx, record.Id, "collaborative warehouse robots")
		require.NoError(t, err)

		assert.Equal(t, record.Id, updated.Id)
		assert.Equal(t, "collaborative warehouse robots", updated.SourceText)
		assert.Equal(t, record.CreatedAt, updated.CreatedAt)
		assert.Equal(t, "user-1", updated.OwnerId)
		assert.NotEqual(t, record.Vector, updated.Vector)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := engine.UpdateEmbedding(ctx, core.ID(999999), "new text")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("empty text rejected", func(t *testing.T) {
		_, err := engine.UpdateEmbedding(ctx, record.Id, "")
		assert.ErrorIs(t, err, core.ErrEmptySourceText)
	})
}

func TestEngine_DeleteEmbedding(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	record, err := engine.StoreEmbedding(ctx, "Acme Robotics", "robot arms", "user-1", nil)
	require.NoError(t, err)

	deleted, err := engine.DeleteEmbedding(ctx, record.Id)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = engine.GetEmbedding(ctx, record.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting again is not an error
	deleted, err = engine.DeleteEmbedding(ctx, record.Id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestEngine_ListByOwner(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	for _, name := range []string{"Acme", "Umbrella", "Initech"} {
		_, err := engine.StoreEmbedding(ctx, name, name+" profile", "user-1", nil)
		require.NoError(t, err)
	}
	_, err := engine.StoreEmbedding(ctx, "Hooli", "other owner", "user-2", nil)
	require.NoError(t, err)

	records, page, err := engine.ListByOwner(ctx, "user-1", 2, 1)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)

	// Newest first, vectors stripped
	assert.Equal(t, "Initech", records[0].CompanyName)
	assert.Nil(t, records[0].Vector)
}

func TestEngine_SearchByName(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.StoreEmbedding(ctx, "Acme Robotics", "robots", "user-1", nil)
	require.NoError(t, err)
	_, err = engine.StoreEmbedding(ctx, "Umbrella Corp", "pharma", "user-2", nil)
	require.NoError(t, err)

	matches, err := engine.SearchByName(ctx, "acme", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Acme Robotics", matches[0].CompanyName)

	matches, err = engine.SearchByName(ctx, "acme", "user-2")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestEngine_SearchAndRecommend(t *testing.T) {
	// Deterministic embeddings keyed on text make the mock behave like a
	// real model for exact-text matches.
	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.StoreEmbedding(ctx, "Acme Robotics", "industrial robot arms", "user-1", nil)
	require.NoError(t, err)
	_, err = engine.StoreEmbedding(ctx, "Umbrella Corp", "pharmaceutical research", "user-2", nil)
	require.NoError(t, err)

	t.Run("search finds the matching text", func(t *testing.T) {
		results, err := engine.Search(ctx, "industrial robot arms", 10, 0.99, "")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Acme Robotics", results[0].Record.CompanyName)
		assert.InDelta(t, 1.0, float64(results[0].Score), 1e-5)
		assert.Nil(t, results[0].Record.Vector)
	})

	t.Run("search can exclude an owner", func(t *testing.T) {
		results, err := engine.Search(ctx, "industrial robot arms", 10, 0.99, "user-1")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("recommend never returns own records", func(t *testing.T) {
		results, err := engine.Recommend(ctx, "user-1", 10)
		require.NoError(t, err)
		for _, r := range results {
			assert.NotEqual(t, "user-1", r.Record.OwnerId)
		}
	})

	t.Run("recommend with no history is empty", func(t *testing.T) {
		results, err := engine.Recommend(ctx, "user-without-records", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestEngine_NewReembedder(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.StoreEmbedding(ctx, "Acme", "robot arms", "user-1", nil)
	require.NoError(t, err)

	reembedder := engine.NewReembedder(nil, os.Stderr)
	require.NotNil(t, reembedder)
	assert.NoError(t, reembedder.Run(ctx))
}
