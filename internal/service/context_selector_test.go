package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func paragraph(word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", 300))
}

func hasPrefix(prefix string) interface{} {
	return mock.MatchedBy(func(s string) bool { return strings.HasPrefix(s, prefix) })
}

func TestContextSelector_ShortTextUnchanged(t *testing.T) {
	emb := new(MockEmbeddingService)
	sel := NewContextSelector(emb, 100, 3)

	assert.Equal(t, "short text", sel.Select(context.Background(), "short text", "question"))
	emb.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestContextSelector_TruncatesWithoutEmbedder(t *testing.T) {
	sel := NewContextSelector(nil, 10, 3)
	assert.Equal(t, "héllo wörl", sel.Select(context.Background(), "héllo wörld and more", "q"))
}

func TestContextSelector_PicksMostRelevantChunk(t *testing.T) {
	text := strings.Join([]string{paragraph("alpha"), paragraph("beta"), paragraph("gamma")}, "\n\n")

	emb := new(MockEmbeddingService)
	emb.On("Generate", mock.Anything, "what about beta?").Return([]float32{0, 1}, nil)
	emb.On("Generate", mock.Anything, hasPrefix("alpha")).Return([]float32{1, 0}, nil)
	emb.On("Generate", mock.Anything, hasPrefix("beta")).Return([]float32{0.1, 1}, nil)
	emb.On("Generate", mock.Anything, hasPrefix("gamma")).Return([]float32{1, 0.1}, nil)

	sel := NewContextSelector(emb, 2000, 3)
	got := sel.Select(context.Background(), text, "what about beta?")

	assert.True(t, strings.HasPrefix(got, "beta"), "got %.20q", got)
	assert.NotContains(t, got, "alpha")
	assert.NotContains(t, got, "gamma")
}

func TestContextSelector_FallsBackOnEmbeddingError(t *testing.T) {
	text := paragraph("alpha") + "\n\n" + paragraph("beta")

	emb := new(MockEmbeddingService)
	emb.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	sel := NewContextSelector(emb, 50, 3)
	got := sel.Select(context.Background(), text, "q")
	assert.Equal(t, text[:50], got)
}
