package llm

import (
	"context"
	"fmt"
	"net/http"

	"notewise/internal/config"
	"notewise/internal/domain"

	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultOllamaModel  = "qwen3:0.6b"
	defaultOllamaServer = "http://localhost:11434"
)

// NewClient builds the LLM client selected by cfg.Provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (domain.LLMClient, error) {
	switch cfg.Provider {
	case "", "ollama":
		serverURL := cfg.ServerURL
		if serverURL == "" {
			serverURL = defaultOllamaServer
		}
		modelName := cfg.Model
		if modelName == "" {
			modelName = defaultOllamaModel
		}
		model, err := ollama.New(
			ollama.WithServerURL(serverURL),
			ollama.WithModel(modelName),
			ollama.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return NewLangchainClient(model, "ollama",
			WithTemperature(cfg.Temperature),
			WithTimeout(cfg.Timeout),
		), nil

	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai API key cannot be empty")
		}
		opts := []openai.Option{openai.WithToken(cfg.APIKey)}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.ServerURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.ServerURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai client: %w", err)
		}
		return NewLangchainClient(model, "openai",
			WithTemperature(cfg.Temperature),
			WithTimeout(cfg.Timeout),
		), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.Temperature, cfg.Timeout)

	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}
