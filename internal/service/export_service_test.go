package service

import (
	"bytes"
	"testing"

	"notewise/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sampleCards = []domain.Flashcard{
	{Front: "Mitochondria", Back: "Powerhouse of the cell"},
	{Front: "ATP", Back: "Energy currency, made in \"bulk\""},
}

func TestExportFlashcards_XLSX(t *testing.T) {
	file, err := NewExportService().ExportFlashcards(sampleCards, "")
	require.NoError(t, err)
	assert.Equal(t, "flashcards.xlsx", file.Name)
	assert.Equal(t, ContentTypeXLSX, file.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{flashcardSheet}, f.GetSheetList())
	rows, err := f.GetRows(flashcardSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Front", "Back"},
		{"Mitochondria", "Powerhouse of the cell"},
		{"ATP", "Energy currency, made in \"bulk\""},
	}, rows)
}

func TestExportFlashcards_CSV(t *testing.T) {
	file, err := NewExportService().ExportFlashcards(sampleCards, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "flashcards.csv", file.Name)
	assert.Equal(t, "Front,Back\nMitochondria,Powerhouse of the cell\nATP,\"Energy currency, made in \"\"bulk\"\"\"\n", string(file.Data))
}

func TestExportFlashcards_UnknownFormat(t *testing.T) {
	_, err := NewExportService().ExportFlashcards(sampleCards, "pdf")
	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "format", verrs[0].Field)
}

func TestExportNotes(t *testing.T) {
	file := NewExportService().ExportNotes("# Cells", domain.NoteLengthLong)
	assert.Equal(t, "smart-notes-long.md", file.Name)
	assert.Equal(t, ContentTypeMarkdown, file.ContentType)
	assert.Equal(t, "# Cells", string(file.Data))
}
