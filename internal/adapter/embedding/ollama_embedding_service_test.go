package embedding

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"testing"
	"time"

	"notewise/internal/cache"
	"notewise/internal/config"
	"notewise/internal/domain"
	"notewise/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEmbedder is a mock type for the embeddings.Embedder interface
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockCache is a mock type for domain.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.Called(ctx, key, expiration).Error(0)
}

func encodeVector(t *testing.T, vec []float32) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(vec))
	return buf.String()
}

func TestNewOllamaEmbeddingService(t *testing.T) {
	t.Run("empty server URL", func(t *testing.T) {
		_, err := NewOllamaEmbeddingService("", "nomic-embed-text", nil, 0)
		assert.ErrorContains(t, err, "ollama server URL cannot be empty")
	})

	t.Run("empty model name", func(t *testing.T) {
		_, err := NewOllamaEmbeddingService("http://localhost:11434", "", nil, 0)
		assert.ErrorContains(t, err, "ollama model name cannot be empty")
	})
}

func TestOllamaEmbeddingService_Generate(t *testing.T) {
	ctx := context.Background()
	text := "photosynthesis converts light"
	key := cache.EmbeddingKey("ollama", util.HashString(text))
	vec := []float32{0.1, 0.2, 0.3}

	t.Run("cache miss generates and stores", func(t *testing.T) {
		mockEmb := new(MockEmbedder)
		mockCache := new(MockCache)
		service := newOllamaEmbeddingService(mockEmb, mockCache, time.Hour)

		mockCache.On("Get", ctx, key).Return("", domain.ErrCacheMiss).Once()
		mockEmb.On("EmbedQuery", ctx, text).Return(vec, nil).Once()
		mockCache.On("Set", ctx, key, encodeVector(t, vec), time.Hour).Return(nil).Once()

		result, err := service.Generate(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, vec, result)
		mockEmb.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("cache hit skips the embedder", func(t *testing.T) {
		mockEmb := new(MockEmbedder)
		mockCache := new(MockCache)
		service := newOllamaEmbeddingService(mockEmb, mockCache, time.Hour)

		mockCache.On("Get", ctx, key).Return(encodeVector(t, vec), nil).Once()

		result, err := service.Generate(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, vec, result)
		mockEmb.AssertNotCalled(t, "EmbedQuery", mock.Anything, mock.Anything)
	})

	t.Run("no cache configured", func(t *testing.T) {
		mockEmb := new(MockEmbedder)
		service := newOllamaEmbeddingService(mockEmb, nil, 0)
		mockEmb.On("EmbedQuery", ctx, text).Return(vec, nil).Once()

		result, err := service.Generate(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, vec, result)
	})

	t.Run("empty text", func(t *testing.T) {
		service := newOllamaEmbeddingService(new(MockEmbedder), nil, 0)
		_, err := service.Generate(ctx, "")
		assert.ErrorContains(t, err, "input text cannot be empty")
	})

	t.Run("embedder error", func(t *testing.T) {
		mockEmb := new(MockEmbedder)
		service := newOllamaEmbeddingService(mockEmb, nil, 0)
		embedderErr := errors.New("ollama failed")
		mockEmb.On("EmbedQuery", ctx, text).Return(nil, embedderErr).Once()

		_, err := service.Generate(ctx, text)
		assert.ErrorIs(t, err, embedderErr)
		assert.ErrorContains(t, err, "failed to generate embedding using ollama")
	})
}

func TestNewEmbeddingService(t *testing.T) {
	svc, err := NewEmbeddingService(config.EmbeddingConfig{Source: "none"}, nil, 0)
	assert.NoError(t, err)
	assert.Nil(t, svc)

	_, err = NewEmbeddingService(config.EmbeddingConfig{Source: "openai"}, nil, 0)
	assert.ErrorContains(t, err, "openai API key cannot be empty")

	_, err = NewEmbeddingService(config.EmbeddingConfig{Source: "cohere"}, nil, 0)
	assert.ErrorContains(t, err, "unsupported embedding source")
}
