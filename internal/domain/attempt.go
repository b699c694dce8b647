package domain

import (
	"context"
	"time"
)

// QuizAttempt is a scored quiz submission kept in the optional history store.
type QuizAttempt struct {
	ID              string
	SessionID       string
	FileName        string
	Score           int
	Total           int
	ReviewTopics    []string
	DurationSeconds int64
	AttemptedAt     time.Time
}

// QuizAttemptRepository persists quiz attempts.
type QuizAttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt *QuizAttempt) error
	GetAttemptsBySession(ctx context.Context, sessionID string) ([]*QuizAttempt, error)
}
