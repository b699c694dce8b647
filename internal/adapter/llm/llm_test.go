package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"notewise/internal/config"
	"notewise/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

type stubModel struct {
	messages []llms.MessageContent
	opts     llms.CallOptions
	content  string
	err      error
	deadline bool
}

func (s *stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	s.messages = messages
	for _, o := range options {
		o(&s.opts)
	}
	_, s.deadline = ctx.Deadline()
	if s.err != nil {
		return nil, s.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: s.content}}}, nil
}

func (s *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, s, prompt, options...)
}

func TestLangchainClient_Generate(t *testing.T) {
	model := &stubModel{content: `{"summary":"ok"}`}
	client := NewLangchainClient(model, "ollama", WithTemperature(0.4), WithTimeout(time.Minute))

	out, err := client.Generate(context.Background(), domain.LLMRequest{
		Prompt:     "Summarize",
		Media:      []domain.Media{{MIMEType: "application/pdf", Data: []byte("%PDF")}},
		JSONOutput: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, out)

	require.Len(t, model.messages, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[0].Role)
	require.Len(t, model.messages[0].Parts, 1, "media is dropped when the model cannot read it")
	assert.Equal(t, llms.TextContent{Text: "Summarize"}, model.messages[0].Parts[0])

	assert.InDelta(t, 0.4, model.opts.Temperature, 1e-9)
	assert.True(t, model.opts.JSONMode)
	assert.True(t, model.deadline)
	assert.False(t, client.SupportsMedia())
	assert.Equal(t, "ollama", client.Name())
}

func TestLangchainClient_GenerateError(t *testing.T) {
	upstream := errors.New("API returned unexpected status code: 503")
	client := NewLangchainClient(&stubModel{err: upstream}, "ollama")

	_, err := client.Generate(context.Background(), domain.LLMRequest{Prompt: "x"})
	assert.ErrorIs(t, err, upstream)
	assert.True(t, domain.IsOverloaded(err))
}

type fakeGenerator struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	text     string
	err      error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, cfg
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}}}},
	}, nil
}

func TestGeminiClient_Generate(t *testing.T) {
	gen := &fakeGenerator{text: `{"pdfText":"hello"}`}
	client := &GeminiClient{models: gen, model: defaultGeminiModel, temperature: 0.2}

	out, err := client.Generate(context.Background(), domain.LLMRequest{
		Prompt:     "Extract text",
		Media:      []domain.Media{{MIMEType: "application/pdf", Data: []byte("%PDF")}},
		JSONOutput: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"pdfText":"hello"}`, out)

	assert.Equal(t, defaultGeminiModel, gen.model)
	require.Len(t, gen.contents, 1)
	parts := gen.contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "Extract text", parts[0].Text)
	assert.Equal(t, "application/pdf", parts[1].InlineData.MIMEType)
	assert.Equal(t, "application/json", gen.config.ResponseMIMEType)
	assert.True(t, client.SupportsMedia())
}

func TestGeminiClient_GenerateErrors(t *testing.T) {
	upstream := errors.New("Error 429, Message: Resource has been exhausted")
	client := &GeminiClient{models: &fakeGenerator{err: upstream}, model: defaultGeminiModel}
	_, err := client.Generate(context.Background(), domain.LLMRequest{Prompt: "x"})
	assert.ErrorIs(t, err, upstream)

	client = &GeminiClient{models: &fakeGenerator{text: ""}, model: defaultGeminiModel}
	_, err = client.Generate(context.Background(), domain.LLMRequest{Prompt: "x"})
	assert.Error(t, err)
}

func TestNewClient_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewClient(ctx, config.LLMConfig{Provider: "openai"})
	assert.ErrorContains(t, err, "openai API key cannot be empty")

	_, err = NewClient(ctx, config.LLMConfig{Provider: "gemini"})
	assert.ErrorContains(t, err, "GOOGLE_API_KEY")


	_, err = NewClient(ctx, config.LLMConfig{Provider: "claude"})
	assert.ErrorContains(t, err, "unsupported LLM provider")

	client, err := NewClient(ctx, config.LLMConfig{Provider: "ollama"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", client.Name())
}

func TestNewClient_OnlyGeminiReadsMedia(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		cfg   config.LLMConfig
		media bool
	}{
		{cfg: config.LLMConfig{Provider: "ollama"}, media: false},
		{cfg: config.LLMConfig{Provider: "openai", APIKey: "o-key"}, media: false},
		{cfg: config.LLMConfig{Provider: "gemini", APIKey: "g-key"}, media: true},
	}
	for _, tt := range tests {
		t.Run(tt.cfg.Provider, func(t *testing.T) {
			client, err := NewClient(ctx, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.media, client.SupportsMedia())
		})
	}
}
