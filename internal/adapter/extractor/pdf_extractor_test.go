package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTidyPageText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: ""},
		{name: "blank lines dropped", raw: "Title\n\n   \nHello world\n", want: "Title\nHello world"},
		{name: "lines trimmed", raw: "  Cells \r\n\tmatter", want: "Cells\nmatter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tidyPageText(tt.raw))
		})
	}
}

func TestPDFExtractor_InvalidInput(t *testing.T) {
	_, err := NewPDFExtractor().ExtractText(context.Background(), []byte("definitely not a pdf"))
	assert.Error(t, err)
}
