package handler

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the session routes on router. validateID guards every
// /sessions/:id route, validateFormat the export route.
func (h *SessionHandler) RegisterRoutes(router fiber.Router, validateID, validateFormat fiber.Handler) {
	router.Post("/sessions", h.CreateSession)

	s := router.Group("/sessions/:id", validateID)
	s.Get("", h.GetSession)
	s.Delete("", h.ResetSession)
	s.Post("/summary", h.Summary)
	s.Post("/quiz", h.StartQuiz)
	s.Post("/quiz/submit", h.SubmitQuiz)
	s.Post("/flashcards", h.Flashcards)
	s.Get("/flashcards/export", validateFormat, h.ExportFlashcards)
	s.Post("/notes", h.Notes)
	s.Get("/notes/download", h.DownloadNotes)
	s.Post("/chat", h.Chat)
	s.Post("/ask", h.Ask)
	s.Post("/videos", h.Videos)
	s.Get("/attempts", h.Attempts)
}

// RegisterRoutes mounts the stateless flow routes on router.
func (h *FlowHandler) RegisterRoutes(router fiber.Router) {
	f := router.Group("/flows")
	f.Post("/extract-text", h.ExtractText)
	f.Post("/summarize", h.Summarize)
	f.Post("/quiz", h.GenerateQuiz)
	f.Post("/flashcards", h.GenerateFlashcards)
	f.Post("/notes", h.GenerateNotes)
	f.Post("/ask", h.AskQuestion)
	f.Post("/chat", h.Chat)
	f.Post("/videos", h.SuggestVideos)
	f.Post("/score", h.ScoreQuiz)
}

