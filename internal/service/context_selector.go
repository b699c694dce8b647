package service

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"notewise/internal/domain"
	"notewise/internal/logger"
	"notewise/internal/util"

	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"
)

const (
	contextChunkSize    = 2000
	contextChunkOverlap = 200
)

// ContextSelector trims a document to what fits in a prompt, keeping the
// parts most relevant to a query when embeddings are available.
type ContextSelector interface {
	Select(ctx context.Context, text, query string) string
}

type contextSelectorImpl struct {
	embedder domain.EmbeddingService
	maxChars int
	topK     int
	splitter textsplitter.TextSplitter
}

// NewContextSelector accepts a nil embedder, in which case long documents
// are truncated. maxChars <= 0 disables trimming.
func NewContextSelector(embedder domain.EmbeddingService, maxChars, topK int) ContextSelector {
	if topK <= 0 {
		topK = 8
	}
	return &contextSelectorImpl{
		embedder: embedder,
		maxChars: maxChars,
		topK:     topK,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(contextChunkSize),
			textsplitter.WithChunkOverlap(contextChunkOverlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", " ", ""}),
		),
	}
}

func (s *contextSelectorImpl) Select(ctx context.Context, text, query string) string {
	if s.maxChars <= 0 || utf8.RuneCountInString(text) <= s.maxChars {
		return text
	}
	if s.embedder == nil || strings.TrimSpace(query) == "" {
		return truncateRunes(text, s.maxChars)
	}

	selected, err := s.selectByEmbedding(ctx, text, query)
	if err != nil {
		logger.Get().Warn("Embedding based context selection failed, truncating instead", zap.Error(err))
		return truncateRunes(text, s.maxChars)
	}
	return selected
}

func (s *contextSelectorImpl) selectByEmbedding(ctx context.Context, text, query string) (string, error) {
	chunks, err := s.splitter.SplitText(text)
	if err != nil {
		return "", err
	}

	queryVec, err := s.embedder.Generate(ctx, query)
	if err != nil {
		return "", err
	}

	scores := make([]float64, len(chunks))
	for i, chunk := range chunks {
		vec, err := s.embedder.Generate(ctx, chunk)
		if err != nil {
			return "", err
		}
		if scores[i], err = util.CosineSimilarity(queryVec, vec); err != nil {
			return "", err
		}
	}

	// Best chunks first until the budget is spent, then back in reading order.
	candidates := util.TopKIndices(scores, s.topK)
	sort.SliceStable(candidates, func(a, b int) bool {
		return scores[candidates[a]] > scores[candidates[b]]
	})

	var picked []int
	used := 0
	for _, idx := range candidates {
		n := utf8.RuneCountInString(chunks[idx])
		if used > 0 && used+n > s.maxChars {
			continue
		}
		picked = append(picked, idx)
		used += n
	}
	sort.Ints(picked)

	var sb strings.Builder
	for _, idx := range picked {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(chunks[idx])
	}

	logger.Get().Debug("Selected document context",
		zap.Int("chunks", len(chunks)),
		zap.Int("selected_chars", used))
	return truncateRunes(sb.String(), s.maxChars), nil
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
