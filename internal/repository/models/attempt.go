package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringSlice is stored as a JSON array in a CLOB column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface. NULL, "" and "null" scan to an
// empty slice.
func (s *StringSlice) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = StringSlice{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringSlice Scan: unsupported type %T", value)
	}

	if len(raw) == 0 || string(raw) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

// QuizAttempt mirrors the quiz_attempts table.
type QuizAttempt struct {
	ID              string         `db:"ID"`
	SessionID       string         `db:"SESSION_ID"`
	FileName        sql.NullString `db:"FILE_NAME"`
	Score           int            `db:"SCORE"`
	Total           int            `db:"TOTAL"`
	ReviewTopics    StringSlice    `db:"REVIEW_TOPICS"`
	DurationSeconds int64          `db:"DURATION_SECONDS"`
	AttemptedAt     time.Time      `db:"ATTEMPTED_AT"`
}
