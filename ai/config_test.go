package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.NotNil(t, config)
	assert.NotEmpty(t, config.EmbeddingHost)
	assert.NotEmpty(t, config.EmbeddingModel)
	assert.NoError(t, config.Validate())
}

func TestNewConfig_Options(t *testing.T) {
	config := NewConfig(
		WithHost("http://embeddings.internal:8080"),
		WithEmbeddingModel("nomic-embed-text"),
		WithDimensions(768),
	)

	assert.Equal(t, "http://embeddings.internal:8080", config.EmbeddingHost)
	assert.Equal(t, "nomic-embed-text", config.EmbeddingModel)
	assert.Equal(t, 768, config.Dimensions)
}

func TestNormalize_AddsV1Suffix(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{"bare host", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"already normalized", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty host untouched", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{EmbeddingHost: tt.host}
			config.Normalize()
			assert.Equal(t, tt.expected, config.EmbeddingHost)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("missing host", func(t *testing.T) {
		config := &Config{EmbeddingModel: "m"}
		assert.Error(t, config.Validate())
	})

	t.Run("missing model", func(t *testing.T) {
		config := &Config{EmbeddingHost: "http://localhost/v1"}
		assert.Error(t, config.Validate())
	})

	t.Run("negative dimensions", func(t *testing.T) {
		config := &Config{EmbeddingHost: "http://localhost/v1", EmbeddingModel: "m", Dimensions: -1}
		assert.Error(t, config.Validate())
	})

	t.Run("zero dimensions allowed", func(t *testing.T) {
		config := &Config{EmbeddingHost: "http://localhost/v1", EmbeddingModel: "m"}
		assert.NoError(t, config.Validate())
	})
}
