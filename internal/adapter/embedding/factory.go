package embedding

import (
	"fmt"
	"time"

	"notewise/internal/config"
	"notewise/internal/domain"
)

// NewEmbeddingService returns nil, nil when embeddings are disabled.
func NewEmbeddingService(cfg config.EmbeddingConfig, cache domain.Cache, ttl time.Duration) (domain.EmbeddingService, error) {
	switch cfg.Source {
	case "", "none":
		return nil, nil
	case "ollama":
		svc, err := NewOllamaEmbeddingService(cfg.ServerURL, cfg.Model, cache, ttl)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case "openai":
		svc, err := NewOpenAIEmbeddingService(cfg.APIKey, cfg.Model, cache, ttl)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unsupported embedding source %q", cfg.Source)
	}
}
