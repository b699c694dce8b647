package domain

import "time"

// StudySession holds everything produced for one uploaded document. It lives
// in the cache with a TTL and is discarded on reset.
type StudySession struct {
	ID            string                `json:"id"`
	FileName      string                `json:"fileName"`
	PDFText       string                `json:"pdfText"`
	PageCount     int                   `json:"pageCount"`
	Summary       string                `json:"summary,omitempty"`
	Quiz          []QuizItem            `json:"quiz,omitempty"`
	QuizStartedAt *time.Time            `json:"quizStartedAt,omitempty"`
	QuizResult    *QuizResult           `json:"quizResult,omitempty"`
	Flashcards    []Flashcard           `json:"flashcards,omitempty"`
	Notes         map[NoteLength]string `json:"notes,omitempty"`
	Chat          []ChatMessage         `json:"chat"`
	Videos        []VideoSuggestion     `json:"videoSuggestions,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

func NewStudySession(id, fileName, text string, pageCount int) *StudySession {
	now := time.Now()
	return &StudySession{
		ID:        id,
		FileName:  fileName,
		PDFText:   text,
		PageCount: pageCount,
		Notes:     make(map[NoteLength]string),
		Chat:      []ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StartQuiz replaces the quiz and clears any previous result.
func (s *StudySession) StartQuiz(quiz []QuizItem, at time.Time) {
	s.Quiz = quiz
	s.QuizStartedAt = &at
	s.QuizResult = nil
	s.UpdatedAt = at
}

// FinishQuiz scores answers and records how long the quiz took.
func (s *StudySession) FinishQuiz(answers map[int]string, at time.Time) QuizResult {
	result := ScoreQuiz(s.Quiz, answers)
	if s.QuizStartedAt != nil {
		result.DurationSeconds = int64(at.Sub(*s.QuizStartedAt).Round(time.Second) / time.Second)
	}
	s.QuizResult = &result
	s.UpdatedAt = at
	return result
}

// AppendExchange adds a user turn and the matching AI reply.
func (s *StudySession) AppendExchange(userInput, aiResponse string) {
	s.Chat = append(s.Chat,
		ChatMessage{Role: ChatRoleUser, Content: userInput},
		ChatMessage{Role: ChatRoleAI, Content: aiResponse},
	)
	s.UpdatedAt = time.Now()
}
