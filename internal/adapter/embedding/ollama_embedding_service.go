package embedding

import (
	"fmt"
	"time"

	"notewise/internal/domain"

	"github.com/tmc/langchaingo/embeddings"
	ollamaLLM "github.com/tmc/langchaingo/llms/ollama"
)

// OllamaEmbeddingService implements the domain.EmbeddingService interface using Ollama.
type OllamaEmbeddingService struct {
	*cachedEmbedder
}

// NewOllamaEmbeddingService requires the Ollama server URL and model name.
// cache may be nil.
func NewOllamaEmbeddingService(serverURL, modelName string, cache domain.Cache, ttl time.Duration) (*OllamaEmbeddingService, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("ollama server URL cannot be empty")
	}
	if modelName == "" {
		return nil, fmt.Errorf("ollama model name cannot be empty")
	}

	llm, err := ollamaLLM.New(
		ollamaLLM.WithModel(modelName),
		ollamaLLM.WithServerURL(serverURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo Ollama LLM client for embedder: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic embedder from Ollama LLM: %w", err)
	}

	return newOllamaEmbeddingService(embedder, cache, ttl), nil
}

func newOllamaEmbeddingService(embedder embeddings.Embedder, cache domain.Cache, ttl time.Duration) *OllamaEmbeddingService {
	return &OllamaEmbeddingService{&cachedEmbedder{
		embedder: embedder,
		cache:    cache,
		source:   "ollama",
		ttl:      ttl,
	}}
}

var _ domain.EmbeddingService = (*OllamaEmbeddingService)(nil)
