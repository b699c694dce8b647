package dto

import (
	"time"

	"notewise/internal/domain"
)

// CreateSessionRequest is the JSON alternative to a multipart upload.
type CreateSessionRequest struct {
	FileName   string `json:"fileName" validate:"max=512" example:"biology.pdf"`
	PDFDataURI string `json:"pdfDataUri" validate:"required,pdf_data_uri"`
}

// SessionResponse is the page state of a study session.
// @Description Study session state
type SessionResponse struct {
	ID               string                   `json:"id"`
	FileName         string                   `json:"fileName"`
	PageCount        int                      `json:"pageCount"`
	PDFText          string                   `json:"pdfText"`
	Summary          string                   `json:"summary,omitempty"`
	Quiz             []domain.QuizItem        `json:"quiz,omitempty"`
	QuizStartedAt    *time.Time               `json:"quizStartedAt,omitempty"`
	QuizResult       *domain.QuizResult       `json:"quizResult,omitempty"`
	Flashcards       []domain.Flashcard       `json:"flashcards,omitempty"`
	Notes            map[string]string        `json:"notes,omitempty"`
	Chat             []domain.ChatMessage     `json:"chat"`
	VideoSuggestions []domain.VideoSuggestion `json:"videoSuggestions,omitempty"`
	CreatedAt        time.Time                `json:"createdAt"`
	UpdatedAt        time.Time                `json:"updatedAt"`
}

func NewSessionResponse(s *domain.StudySession) SessionResponse {
	var notes map[string]string
	if len(s.Notes) > 0 {
		notes = make(map[string]string, len(s.Notes))
		for k, v := range s.Notes {
			notes[string(k)] = v
		}
	}
	chat := s.Chat
	if chat == nil {
		chat = []domain.ChatMessage{}
	}
	return SessionResponse{
		ID:               s.ID,
		FileName:         s.FileName,
		PageCount:        s.PageCount,
		PDFText:          s.PDFText,
		Summary:          s.Summary,
		Quiz:             s.Quiz,
		QuizStartedAt:    s.QuizStartedAt,
		QuizResult:       s.QuizResult,
		Flashcards:       s.Flashcards,
		Notes:            notes,
		Chat:             chat,
		VideoSuggestions: s.Videos,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

type SessionQuizRequest struct {
	NumberOfQuestions int `json:"numberOfQuestions" validate:"omitempty,min=1,max=20" example:"5"`
}

type SubmitQuizRequest struct {
	Answers map[string]string `json:"answers"`
}

type SessionNotesRequest struct {
	NoteLength string `json:"noteLength" validate:"omitempty,note_length" example:"long"`
}

type SessionChatRequest struct {
	UserInput string `json:"userInput" validate:"required,max=2000"`
}

type SessionChatResponse struct {
	AIResponse string               `json:"aiResponse"`
	History    []domain.ChatMessage `json:"history"`
}

type SessionAskRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type AttemptResponse struct {
	ID              string    `json:"id"`
	Score           int       `json:"score"`
	Total           int       `json:"total"`
	ReviewTopics    []string  `json:"reviewTopics"`
	DurationSeconds int64     `json:"durationSeconds"`
	AttemptedAt     time.Time `json:"attemptedAt"`
}

func NewAttemptResponses(attempts []*domain.QuizAttempt) []AttemptResponse {
	out := make([]AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, AttemptResponse{
			ID:              a.ID,
			Score:           a.Score,
			Total:           a.Total,
			ReviewTopics:    a.ReviewTopics,
			DurationSeconds: a.DurationSeconds,
			AttemptedAt:     a.AttemptedAt,
		})
	}
	return out
}
