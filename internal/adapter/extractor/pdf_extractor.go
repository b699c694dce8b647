package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"notewise/internal/domain"
	"notewise/internal/logger"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// PDFExtractor recovers page text locally with ledongthuc/pdf. It is used
// when the LLM provider cannot read PDFs or returns nothing.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) ExtractText(ctx context.Context, data []byte) (doc *domain.ExtractedDocument, err error) {
	// The reader panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	numPages := reader.NumPage()
	fonts := make(map[string]*pdf.Font)
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		raw, err := page.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("failed to read text of page %d: %w", i, err)
		}
		if text := tidyPageText(raw); text != "" {
			pages = append(pages, text)
		}
	}

	logger.Get().Debug("Extracted PDF text locally",
		zap.Int("pages", numPages),
		zap.Int("pages_with_text", len(pages)))

	return &domain.ExtractedDocument{
		Text:      strings.Join(pages, "\n\n"),
		PageCount: numPages,
	}, nil
}

// tidyPageText trims every line and drops blank ones.
func tidyPageText(raw string) string {
	lines := strings.Split(raw, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

var _ domain.TextExtractor = (*PDFExtractor)(nil)
