package llm

import (
	"context"
	"fmt"
	"time"

	"notewise/internal/domain"
	"notewise/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// LangchainClient adapts any langchaingo llms.Model (ollama, openai) to
// domain.LLMClient. It sends text only; PDFs reach the model through the
// Gemini client, so media parts of a request are dropped here.
type LangchainClient struct {
	model       llms.Model
	name        string
	temperature float64
	timeout     time.Duration
}

type LangchainOption func(*LangchainClient)

func WithTemperature(t float64) LangchainOption {
	return func(c *LangchainClient) { c.temperature = t }
}

func WithTimeout(d time.Duration) LangchainOption {
	return func(c *LangchainClient) { c.timeout = d }
}

func NewLangchainClient(model llms.Model, name string, opts ...LangchainOption) *LangchainClient {
	c := &LangchainClient{
		model:       model,
		name:        name,
		temperature: 0.2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *LangchainClient) Name() string { return c.name }

func (c *LangchainClient) SupportsMedia() bool { return false }

func (c *LangchainClient) Generate(ctx context.Context, req domain.LLMRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt)}

	opts := []llms.CallOption{llms.WithTemperature(c.temperature)}
	if req.JSONOutput {
		opts = append(opts, llms.WithJSONMode())
	}

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		logger.Get().Error("LLM call failed",
			zap.String("provider", c.name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("%s generate content: %w", c.name, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", c.name)
	}

	logger.Get().Debug("LLM call completed",
		zap.String("provider", c.name),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_len", len(resp.Choices[0].Content)))
	return resp.Choices[0].Content, nil
}

var _ domain.LLMClient = (*LangchainClient)(nil)
