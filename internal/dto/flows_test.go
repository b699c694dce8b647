package dto

import (
	"testing"

	"notewise/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestParseAnswers(t *testing.T) {
	answers, errs := ParseAnswers(map[string]string{"0": "a", "2": "c"})
	assert.Empty(t, errs)
	assert.Equal(t, map[int]string{0: "a", 2: "c"}, answers)

	_, errs = ParseAnswers(map[string]string{"x": "a", "-1": "b", "1": "c"})
	if assert.Len(t, errs, 2) {
		assert.Equal(t, "answers.-1", errs[0].Field)
		assert.Equal(t, domain.CodeInvalidFormat, errs[1].Code)
	}
}

func TestToChatMessages(t *testing.T) {
	msgs := ToChatMessages([]ChatTurn{{Role: "user", Content: "hi"}, {Role: "ai", Content: "hello"}})
	assert.Equal(t, []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Content: "hi"},
		{Role: domain.ChatRoleAI, Content: "hello"},
	}, msgs)
}

func TestNewSessionResponse(t *testing.T) {
	s := domain.NewStudySession("01HZX", "bio.pdf", "text", 2)
	s.Notes[domain.NoteLengthLong] = "# Notes"
	s.Chat = nil

	resp := NewSessionResponse(s)
	assert.Equal(t, map[string]string{"long": "# Notes"}, resp.Notes)
	assert.NotNil(t, resp.Chat)
	assert.Equal(t, 2, resp.PageCount)
}
