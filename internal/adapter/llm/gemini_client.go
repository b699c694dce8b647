package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notewise/internal/domain"
	"notewise/internal/logger"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient talks to the Gemini API and sends PDFs as inline data.
type GeminiClient struct {
	models      contentGenerator
	model       string
	temperature float32
	timeout     time.Duration
}

func NewGeminiClient(ctx context.Context, apiKey, model string, temperature float64, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{
		models:      client.Models,
		model:       model,
		temperature: float32(temperature),
		timeout:     timeout,
	}, nil
}

func (g *GeminiClient) Name() string { return "gemini" }

func (g *GeminiClient) SupportsMedia() bool { return true }

func (g *GeminiClient) Generate(ctx context.Context, req domain.LLMRequest) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	parts := []*genai.Part{{Text: req.Prompt}}
	for _, m := range req.Media {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: m.MIMEType, Data: m.Data}})
	}
	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}

	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(g.temperature)}
	if req.JSONOutput {
		cfg.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	res, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		logger.Get().Error("Gemini call failed",
			zap.String("model", g.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	logger.Get().Debug("Gemini call completed",
		zap.String("model", g.model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_len", len(text)))
	return text, nil
}

var _ domain.LLMClient = (*GeminiClient)(nil)
