package service

import (
	"fmt"

	"notewise/internal/domain"

	"github.com/tmc/langchaingo/prompts"
)

const (
	defaultQuizQuestions = 5
	flashcardCount       = 10
	videoSuggestionCount = 3
	courtesyReply        = "You're welcome! Thank you for using NoteWise. If you have any feedback on how we can improve, please share it with us."
	jsonOnlyInstruction  = "Respond with ONLY a JSON object, no markdown fences and no extra text."
)

func goTemplate(tpl string, vars ...string) prompts.PromptTemplate {
	return prompts.PromptTemplate{
		Template:       tpl,
		InputVariables: vars,
		TemplateFormat: prompts.TemplateFormatGoTemplate,
	}
}

var (
	extractTextPrompt = goTemplate(`Extract all the text from the attached document, preserving reading order and paragraph breaks.
` + jsonOnlyInstruction + `
Format: {"pdfText": "<all extracted text>"}`)

	summarizePrompt = goTemplate(`You are an expert summarizer of documents.
You will receive text extracted from a document. Generate a concise summary highlighting the main ideas and key points.
` + jsonOnlyInstruction + `
Format: {"summary": "<summary>"}

Document Text:
{{.pdfText}}`, "pdfText")

	quizPrompt = goTemplate(`You are an expert in generating multiple-choice quizzes from text documents.
Generate a multiple-choice quiz with {{.numberOfQuestions}} questions from the text below.
For each question provide the question, exactly 4 options, the correct answer copied verbatim from the options,
and the specific topic from the text the question covers so the student knows what to review.
` + jsonOnlyInstruction + `
Format: {"quiz": [{"question": "...", "options": ["...", "...", "...", "..."], "answer": "...", "topic": "..."}]}

PDF Text:
{{.pdfText}}`, "pdfText", "numberOfQuestions")

	flashcardsPrompt = goTemplate(`You are an expert in creating educational flashcards from text documents.
Generate exactly {{.count}} flashcards from the text below. Each card has a "front" with a question or keyword
and a "back" with the answer or definition. Keep them clear and concise.
` + jsonOnlyInstruction + `
Format: {"flashcards": [{"front": "...", "back": "..."}]}

PDF Text:
{{.pdfText}}`, "pdfText", "count")

	notesPrompt = goTemplate(`You are an expert in creating structured, student-friendly study notes.
Organise the notes with Markdown headings and bullet points and mark key terms, formulas and concepts in **bold**.
{{if eq .noteLength "long"}}Write detailed, comprehensive notes suitable for in-depth study. Cover every topic thoroughly.
{{else}}Write concise, summary-style notes for quick revision. Focus on the absolute key points.
{{end}}` + jsonOnlyInstruction + `
Format: {"notes": "<markdown>"}

Document Text:
{{.pdfText}}`, "pdfText", "noteLength")

	askPrompt = goTemplate(`You are an AI assistant that answers questions using only the content of a PDF document.
Give an accurate, concise answer. If the content does not contain the answer, say so.
` + jsonOnlyInstruction + `
Format: {"answer": "..."}

PDF Content:
{{.pdfContent}}

Question:
{{.question}}`, "pdfContent", "question")

	chatPrompt = goTemplate(`You are a helpful AI assistant that helps students understand PDF documents. Use the PDF content to answer.
If the user says "thanks" or otherwise expresses gratitude, respond with: "{{.courtesyReply}}"
` + jsonOnlyInstruction + `
Format: {"aiResponse": "..."}

PDF Content:
{{.pdfContent}}

Conversation History:
{{range .history}}{{.Label}}: {{.Content}}
{{end}}
User: {{.userInput}}`, "pdfContent", "history", "userInput", "courtesyReply")

	videosPrompt = goTemplate(`You are a helpful AI assistant that suggests YouTube videos related to a document.
Suggest {{.count}} YouTube videos that would help someone understand the content below.
` + jsonOnlyInstruction + `
Format: {"videoSuggestions": [{"title": "...", "url": "https://www.youtube.com/...", "description": "..."}]}

PDF Content:
{{.pdfContent}}`, "pdfContent", "count")
)

// promptTurn is a conversation line as rendered into chatPrompt.
type promptTurn struct {
	Label   string
	Content string
}

func toPromptTurns(history []domain.ChatMessage) []promptTurn {
	turns := make([]promptTurn, 0, len(history))
	for _, m := range history {
		turns = append(turns, promptTurn{Label: m.Role.Label(), Content: m.Content})
	}
	return turns
}

func renderPrompt(name string, tpl prompts.PromptTemplate, values map[string]any) (string, error) {
	out, err := tpl.Format(values)
	if err != nil {
		return "", domain.NewInternalError(fmt.Sprintf("failed to render %s prompt", name), err)
	}
	return out, nil
}
