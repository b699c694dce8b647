package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudySession_QuizLifecycle(t *testing.T) {
	s := NewStudySession("01HZX", "bio.pdf", "text", 3)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	s.StartQuiz(sampleQuiz(), start)
	require.NotNil(t, s.QuizStartedAt)

	result := s.FinishQuiz(map[int]string{0: "a", 1: "b"}, start.Add(95*time.Second+400*time.Millisecond))
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, int64(95), result.DurationSeconds)
	require.NotNil(t, s.QuizResult)

	s.StartQuiz(sampleQuiz()[:1], start.Add(time.Hour))
	assert.Nil(t, s.QuizResult, "a new quiz clears the previous result")
}

func TestStudySession_AppendExchange(t *testing.T) {
	s := NewStudySession("01HZX", "bio.pdf", "text", 1)
	s.AppendExchange("What is a cell?", "The basic unit of life.")

	assert.Equal(t, []ChatMessage{
		{Role: ChatRoleUser, Content: "What is a cell?"},
		{Role: ChatRoleAI, Content: "The basic unit of life."},
	}, s.Chat)
}
