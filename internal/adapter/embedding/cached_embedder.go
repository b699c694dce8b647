package embedding

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"notewise/internal/cache"
	"notewise/internal/domain"
	"notewise/internal/logger"
	"notewise/internal/util"

	"github.com/tmc/langchaingo/embeddings"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultEmbeddingTTL = 168 * time.Hour

// cachedEmbedder wraps a langchaingo embedder with a read-through cache.
// Concurrent requests for the same text share one provider call.
type cachedEmbedder struct {
	embedder embeddings.Embedder
	cache    domain.Cache
	source   string
	ttl      time.Duration
	sfGroup  singleflight.Group
}

func (s *cachedEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}

	cacheKey := cache.EmbeddingKey(s.source, util.HashString(text))
	if vec, ok := s.lookup(ctx, cacheKey); ok {
		return vec, nil
	}

	res, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		vec, err := s.embedder.EmbedQuery(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding using %s: %w", s.source, err)
		}
		if len(vec) == 0 {
			return nil, fmt.Errorf("received empty embedding from %s", s.source)
		}
		s.store(ctx, cacheKey, vec)
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]float32), nil
}

func (s *cachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Embedding cache read failed", zap.String("cache_key", key), zap.Error(err))
		}
		return nil, false
	}
	var vec []float32
	if err := gob.NewDecoder(bytes.NewReader([]byte(raw))).Decode(&vec); err != nil {
		logger.Get().Warn("Failed to decode cached embedding", zap.String("cache_key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (s *cachedEmbedder) store(ctx context.Context, key string, vec []float32) {
	if s.cache == nil {
		return
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(vec); err != nil {
		logger.Get().Warn("Failed to encode embedding for caching", zap.String("cache_key", key), zap.Error(err))
		return
	}
	ttl := s.ttl
	if ttl <= 0 {
		ttl = defaultEmbeddingTTL
	}
	if err := s.cache.Set(ctx, key, buf.String(), ttl); err != nil {
		logger.Get().Warn("Failed to cache embedding", zap.String("cache_key", key), zap.Error(err))
	}
}
