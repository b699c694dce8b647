package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"notewise/internal/config"
	"notewise/internal/domain"
	"notewise/internal/logger"

	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Env: "test", Level: "error"}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}
	exitVal := m.Run()
	_ = logger.Sync()
	os.Exit(exitVal)
}

// --- MockLLMClient ---
type MockLLMClient struct {
	mock.Mock
	media bool
}

func (m *MockLLMClient) Generate(ctx context.Context, req domain.LLMRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockLLMClient) SupportsMedia() bool { return m.media }

func (m *MockLLMClient) Name() string { return "mock" }

// --- MockTextExtractor ---
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) ExtractText(ctx context.Context, pdf []byte) (*domain.ExtractedDocument, error) {
	args := m.Called(ctx, pdf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedDocument), args.Error(1)
}

// --- MockEmbeddingService ---
type MockEmbeddingService struct {
	mock.Mock
}

func (m *MockEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	args := m.Called(ctx, key, expiration)
	return args.Error(0)
}

// --- MockQuizAttemptRepository ---
type MockQuizAttemptRepository struct {
	mock.Mock
}

func (m *MockQuizAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockQuizAttemptRepository) GetAttemptsBySession(ctx context.Context, sessionID string) ([]*domain.QuizAttempt, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.QuizAttempt), args.Error(1)
}

// memoryCache is a map backed domain.Cache for session round trips.
type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string)}
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) Ping(ctx context.Context) error { return nil }

func (c *memoryCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; !ok {
		return domain.ErrCacheMiss
	}
	return nil
}

var (
	_ domain.LLMClient             = (*MockLLMClient)(nil)
	_ domain.TextExtractor         = (*MockTextExtractor)(nil)
	_ domain.EmbeddingService      = (*MockEmbeddingService)(nil)
	_ domain.Cache                 = (*MockCache)(nil)
	_ domain.Cache                 = (*memoryCache)(nil)
	_ domain.QuizAttemptRepository = (*MockQuizAttemptRepository)(nil)
)
