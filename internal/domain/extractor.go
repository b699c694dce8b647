package domain

import "context"

// ExtractedDocument is the plain text recovered from an uploaded PDF.
type ExtractedDocument struct {
	Text      string
	PageCount int
}

// TextExtractor reads text out of raw PDF bytes without calling an LLM.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdf []byte) (*ExtractedDocument, error)
}
