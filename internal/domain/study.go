package domain

import (
	"fmt"
	"strings"
)

// QuizItem is one multiple-choice question. Answer is one of Options.
type QuizItem struct {
	Question string   `json:"question" validate:"required"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer" validate:"required"`
	Topic    string   `json:"topic"`
}

// Flashcard has a term or question on the front and its explanation on the back.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// NoteLength selects how detailed generated notes are.
type NoteLength string

const (
	NoteLengthShort NoteLength = "short"
	NoteLengthLong  NoteLength = "long"
)

// ParseNoteLength maps an empty value to NoteLengthShort.
func ParseNoteLength(s string) (NoteLength, error) {
	switch NoteLength(strings.ToLower(strings.TrimSpace(s))) {
	case "", NoteLengthShort:
		return NoteLengthShort, nil
	case NoteLengthLong:
		return NoteLengthLong, nil
	default:
		return "", fmt.Errorf("unknown note length %q", s)
	}
}

type ChatRole string

const (
	ChatRoleUser ChatRole = "user"
	ChatRoleAI   ChatRole = "ai"
)

// Label is the speaker prefix used when a conversation is rendered into a prompt.
func (r ChatRole) Label() string {
	if r == ChatRoleAI {
		return "AI"
	}
	return "User"
}

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

type VideoSuggestion struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// QuizResult is the outcome of scoring a set of answers.
type QuizResult struct {
	Score           int      `json:"score"`
	Total           int      `json:"total"`
	ReviewTopics    []string `json:"reviewTopics"`
	Incorrect       []int    `json:"incorrect"`
	DurationSeconds int64    `json:"durationSeconds,omitempty"`
}

// Percentage returns the score as a whole percent, 0 for an empty quiz.
func (r QuizResult) Percentage() int {
	if r.Total == 0 {
		return 0
	}
	return r.Score * 100 / r.Total
}

// ScoreQuiz compares each selected option with the correct answer.
// A question without an answer, or with a blank one, counts as incorrect. The topics of incorrect
// questions are collected once each, in question order.
func ScoreQuiz(quiz []QuizItem, answers map[int]string) QuizResult {
	result := QuizResult{
		Total:        len(quiz),
		ReviewTopics: []string{},
		Incorrect:    []int{},
	}
	seen := make(map[string]struct{})

	for i, item := range quiz {
		selected := strings.TrimSpace(answers[i])
		if selected != "" && selected == item.Answer {
			result.Score++
			continue
		}
		result.Incorrect = append(result.Incorrect, i)
		if item.Topic == "" {
			continue
		}
		if _, dup := seen[item.Topic]; dup {
			continue
		}
		seen[item.Topic] = struct{}{}
		result.ReviewTopics = append(result.ReviewTopics, item.Topic)
	}
	return result
}

// NormalizeQuiz drops items that cannot be answered and rewrites answers
// that differ from an option only in case or surrounding space.
func NormalizeQuiz(items []QuizItem) []QuizItem {
	out := make([]QuizItem, 0, len(items))
	for _, item := range items {
		item.Question = strings.TrimSpace(item.Question)
		item.Topic = strings.TrimSpace(item.Topic)

		options := make([]string, 0, len(item.Options))
		for _, opt := range item.Options {
			if opt = strings.TrimSpace(opt); opt != "" {
				options = append(options, opt)
			}
		}
		item.Options = options

		if item.Question == "" || len(item.Options) < 2 || strings.TrimSpace(item.Answer) == "" {
			continue
		}

		answer, ok := matchOption(item.Options, item.Answer)
		if !ok {
			continue
		}
		item.Answer = answer
		out = append(out, item)
	}
	return out
}

func matchOption(options []string, answer string) (string, bool) {
	for _, opt := range options {
		if opt == answer {
			return opt, true
		}
	}
	trimmed := strings.TrimSpace(answer)
	for _, opt := range options {
		if strings.EqualFold(opt, trimmed) {
			return opt, true
		}
	}
	return "", false
}

// NormalizeFlashcards drops cards with an empty side.
func NormalizeFlashcards(cards []Flashcard) []Flashcard {
	out := make([]Flashcard, 0, len(cards))
	for _, c := range cards {
		c.Front = strings.TrimSpace(c.Front)
		c.Back = strings.TrimSpace(c.Back)
		if c.Front == "" || c.Back == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}
