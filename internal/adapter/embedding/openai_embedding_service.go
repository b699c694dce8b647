package embedding

import (
	"fmt"
	"time"

	"notewise/internal/domain"

	"github.com/tmc/langchaingo/embeddings"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
)

const defaultOpenAIEmbeddingModel = "text-embedding-3-small"

// OpenAIEmbeddingService implements the domain.EmbeddingService interface using OpenAI.
type OpenAIEmbeddingService struct {
	*cachedEmbedder
}

func NewOpenAIEmbeddingService(apiKey, modelName string, cache domain.Cache, ttl time.Duration) (*OpenAIEmbeddingService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	if modelName == "" {
		modelName = defaultOpenAIEmbeddingModel
	}

	llm, err := openaiLLM.New(
		openaiLLM.WithToken(apiKey),
		openaiLLM.WithEmbeddingModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI LLM client for embedder: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic embedder from OpenAI LLM: %w", err)
	}

	return &OpenAIEmbeddingService{&cachedEmbedder{
		embedder: embedder,
		cache:    cache,
		source:   "openai",
		ttl:      ttl,
	}}, nil
}

var _ domain.EmbeddingService = (*OpenAIEmbeddingService)(nil)
