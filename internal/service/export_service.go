package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"notewise/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	flashcardSheet = "Flashcards"

	ContentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV      = "text/csv; charset=utf-8"
	ContentTypeMarkdown = "text/markdown; charset=utf-8"
)

// ExportFile is a generated download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportService renders study material into downloadable files.
type ExportService interface {
	ExportFlashcards(cards []domain.Flashcard, format string) (*ExportFile, error)
	ExportNotes(notes string, length domain.NoteLength) *ExportFile
}

type exportService struct{}

func NewExportService() ExportService {
	return &exportService{}
}

// ExportFlashcards writes cards as xlsx (default) or csv with a Front/Back header.
func (s *exportService) ExportFlashcards(cards []domain.Flashcard, format string) (*ExportFile, error) {
	switch strings.ToLower(format) {
	case "", "xlsx":
		data, err := flashcardsToExcel(cards)
		if err != nil {
			return nil, domain.NewInternalError("failed to build flashcard workbook", err)
		}
		return &ExportFile{Name: "flashcards.xlsx", ContentType: ContentTypeXLSX, Data: data}, nil
	case "csv":
		data, err := flashcardsToCSV(cards)
		if err != nil {
			return nil, domain.NewInternalError("failed to build flashcard csv", err)
		}
		return &ExportFile{Name: "flashcards.csv", ContentType: ContentTypeCSV, Data: data}, nil
	default:
		return nil, domain.ValidationErrors{domain.NewInvalidFormatError("format", format)}
	}
}

// ExportNotes names the file smart-notes-<length>.md.
func (s *exportService) ExportNotes(notes string, length domain.NoteLength) *ExportFile {
	return &ExportFile{
		Name:        fmt.Sprintf("smart-notes-%s.md", length),
		ContentType: ContentTypeMarkdown,
		Data:        []byte(notes),
	}
}

func flashcardsToExcel(cards []domain.Flashcard) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(flashcardSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	rows := make([][]string, 0, len(cards)+1)
	rows = append(rows, []string{"Front", "Back"})
	for _, c := range cards {
		rows = append(rows, []string{c.Front, c.Back})
	}

	for r, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(flashcardSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}
	if err := f.SetColWidth(flashcardSheet, "A", "B", 60); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func flashcardsToCSV(cards []domain.Flashcard) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Front", "Back"}); err != nil {
		return nil, err
	}
	for _, c := range cards {
		if err := w.Write([]string{c.Front, c.Back}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
