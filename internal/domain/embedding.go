package domain

import "context"

// EmbeddingService turns document chunks and questions into vectors so the
// chat and Q&A flows can send only the relevant parts of a long document.
// Implementations cache vectors by text, so repeated chunks are free.
type EmbeddingService interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}
