package dto

import (
	"sort"
	"strconv"

	"notewise/internal/domain"
)

// ExtractTextRequest carries the uploaded PDF as a data URI
// @Description Request body for text extraction
type ExtractTextRequest struct {
	PDFDataURI string `json:"pdfDataUri" validate:"required,pdf_data_uri" example:"data:application/pdf;base64,JVBERi0xLjQK..."`
}

type ExtractTextResponse struct {
	PDFText   string `json:"pdfText"`
	PageCount int    `json:"pageCount,omitempty"`
}

type SummarizeRequest struct {
	PDFText string `json:"pdfText" validate:"required"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// GenerateQuizRequest asks for a multiple-choice quiz. NumberOfQuestions
// defaults to 5 when omitted.
type GenerateQuizRequest struct {
	PDFText           string `json:"pdfText" validate:"required"`
	NumberOfQuestions int    `json:"numberOfQuestions" validate:"omitempty,min=1,max=20" example:"5"`
}

type GenerateQuizResponse struct {
	Quiz []domain.QuizItem `json:"quiz"`
}

type GenerateFlashcardsRequest struct {
	PDFText string `json:"pdfText" validate:"required"`
}

type GenerateFlashcardsResponse struct {
	Flashcards []domain.Flashcard `json:"flashcards"`
}

// GenerateNotesRequest noteLength is "short" (default) or "long"
type GenerateNotesRequest struct {
	PDFText    string `json:"pdfText" validate:"required"`
	NoteLength string `json:"noteLength" validate:"omitempty,note_length" example:"short"`
}

type GenerateNotesResponse struct {
	Notes string `json:"notes"`
}

type AskQuestionRequest struct {
	PDFContent string `json:"pdfContent" validate:"required"`
	Question   string `json:"question" validate:"required,max=2000"`
}

type AskQuestionResponse struct {
	Answer string `json:"answer"`
}

// ChatTurn is one prior message of a conversation.
type ChatTurn struct {
	Role    string `json:"role" validate:"required,oneof=user ai" example:"user"`
	Content string `json:"content" validate:"required"`
}

type ChatRequest struct {
	PDFContent string     `json:"pdfContent" validate:"required"`
	UserInput  string     `json:"userInput" validate:"required,max=2000"`
	History    []ChatTurn `json:"history" validate:"omitempty,dive"`
}

type ChatResponse struct {
	AIResponse string `json:"aiResponse"`
}

type SuggestVideosRequest struct {
	PDFContent string `json:"pdfContent" validate:"required"`
}

type SuggestVideosResponse struct {
	VideoSuggestions []domain.VideoSuggestion `json:"videoSuggestions"`
}

// ScoreQuizRequest answers are keyed by question index, e.g. {"0":"Paris"}
type ScoreQuizRequest struct {
	Quiz    []domain.QuizItem `json:"quiz" validate:"required,dive"`
	Answers map[string]string `json:"answers"`
}

// ToChatMessages converts request turns to domain messages.
func ToChatMessages(turns []ChatTurn) []domain.ChatMessage {
	msgs := make([]domain.ChatMessage, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, domain.ChatMessage{Role: domain.ChatRole(t.Role), Content: t.Content})
	}
	return msgs
}

// ParseAnswers converts index keyed answers. Keys that are not non-negative
// integers are reported as INVALID_FORMAT, in key order.
func ParseAnswers(raw map[string]string) (map[int]string, domain.ValidationErrors) {
	answers := make(map[int]string, len(raw))
	var errs domain.ValidationErrors

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 {
			errs = append(errs, domain.NewInvalidFormatError("answers."+k, k))
			continue
		}
		answers[idx] = raw[k]
	}
	return answers, errs
}
