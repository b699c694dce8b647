package repository

import (
	"context"
	"fmt"
	"time"

	"notewise/internal/domain"
	"notewise/internal/repository/models"
	"notewise/internal/util"
)

// sqlxQuizAttemptRepository implements domain.QuizAttemptRepository on Oracle.
type sqlxQuizAttemptRepository struct {
	db DBTX
}

// NewSQLXQuizAttemptRepository accepts a *sqlx.DB or *sqlx.Tx.
func NewSQLXQuizAttemptRepository(db DBTX) domain.QuizAttemptRepository {
	return &sqlxQuizAttemptRepository{db: db}
}

func toDomainQuizAttempt(m *models.QuizAttempt) *domain.QuizAttempt {
	if m == nil {
		return nil
	}
	topics := []string(m.ReviewTopics)
	if topics == nil {
		topics = []string{}
	}
	return &domain.QuizAttempt{
		ID:              m.ID,
		SessionID:       m.SessionID,
		FileName:        util.NullStringToString(m.FileName),
		Score:           m.Score,
		Total:           m.Total,
		ReviewTopics:    topics,
		DurationSeconds: m.DurationSeconds,
		AttemptedAt:     m.AttemptedAt,
	}
}

func fromDomainQuizAttempt(a *domain.QuizAttempt) *models.QuizAttempt {
	if a == nil {
		return nil
	}
	return &models.QuizAttempt{
		ID:              a.ID,
		SessionID:       a.SessionID,
		FileName:        util.StringToNullString(a.FileName),
		Score:           a.Score,
		Total:           a.Total,
		ReviewTopics:    models.StringSlice(a.ReviewTopics),
		DurationSeconds: a.DurationSeconds,
		AttemptedAt:     a.AttemptedAt,
	}
}

// CreateAttempt fills in ID and AttemptedAt when they are empty.
func (r *sqlxQuizAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) error {
	if attempt.ID == "" {
		attempt.ID = util.NewULID()
	}
	if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = time.Now()
	}
	m := fromDomainQuizAttempt(attempt)

	// go-ora does not bind driver.Valuer types for CLOBs, so the topics are
	// serialised here.
	topics, err := m.ReviewTopics.Value()
	if err != nil {
		return fmt.Errorf("failed to encode review topics: %w", err)
	}

	query := `INSERT INTO quiz_attempts (ID, SESSION_ID, FILE_NAME, SCORE, TOTAL, REVIEW_TOPICS, DURATION_SECONDS, ATTEMPTED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`
	_, err = r.db.ExecContext(ctx, query,
		m.ID, m.SessionID, m.FileName, m.Score, m.Total, topics, m.DurationSeconds, m.AttemptedAt)
	if err != nil {
		return fmt.Errorf("failed to create quiz attempt: %w", err)
	}
	return nil
}

// GetAttemptsBySession returns attempts newest first.
func (r *sqlxQuizAttemptRepository) GetAttemptsBySession(ctx context.Context, sessionID string) ([]*domain.QuizAttempt, error) {
	query := `SELECT ID, SESSION_ID, FILE_NAME, SCORE, TOTAL, REVIEW_TOPICS, DURATION_SECONDS, ATTEMPTED_AT
	          FROM quiz_attempts WHERE SESSION_ID = :1 ORDER BY ATTEMPTED_AT DESC`

	var rows []models.QuizAttempt
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to list quiz attempts: %w", err)
	}

	attempts := make([]*domain.QuizAttempt, 0, len(rows))
	for i := range rows {
		attempts = append(attempts, toDomainQuizAttempt(&rows[i]))
	}
	return attempts, nil
}

// noopQuizAttemptRepository is used when no database is configured.
type noopQuizAttemptRepository struct{}

func NewNoopQuizAttemptRepository() domain.QuizAttemptRepository {
	return noopQuizAttemptRepository{}
}

func (noopQuizAttemptRepository) CreateAttempt(context.Context, *domain.QuizAttempt) error {
	return nil
}

func (noopQuizAttemptRepository) GetAttemptsBySession(context.Context, string) ([]*domain.QuizAttempt, error) {
	return []*domain.QuizAttempt{}, nil
}
