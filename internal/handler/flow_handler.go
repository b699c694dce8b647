package handler

import (
	"notewise/internal/domain"
	"notewise/internal/dto"
	"notewise/internal/logger"
	"notewise/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// FlowHandler exposes the stateless study flows.
type FlowHandler struct {
	flows service.StudyFlowService
}

func NewFlowHandler(flows service.StudyFlowService) *FlowHandler {
	return &FlowHandler{flows: flows}
}

// parseBody decodes the JSON body into out.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		logger.Get().Warn("Failed to parse request body", zap.String("path", c.Path()), zap.Error(err))
		return domain.NewInvalidInputError("Invalid request body")
	}
	return nil
}

// ExtractText godoc
// @Summary Extract text from a PDF
// @Description Reads the text of a base64 data URI, using the model when it accepts documents and local parsing otherwise
// @Tags flows
// @Accept json
// @Produce json
// @Param request body dto.ExtractTextRequest true "PDF data URI"
// @Success 200 {object} dto.ExtractTextResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /flows/extract-text [post]
func (h *FlowHandler) ExtractText(c *fiber.Ctx) error {
	var req dto.ExtractTextRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resp, err := h.flows.ExtractText(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Summarize godoc
// @Summary Summarize document text
// @Tags flows
// @Accept json
// @Produce json
// @Param request body dto.SummarizeRequest true "Document text"
// @Success 200 {object} dto.SummarizeResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /flows/summarize [post]
func (h *FlowHandler) Summarize(c *fiber.Ctx) error {
	var req dto.SummarizeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resp, err := h.flows.Summarize(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GenerateQuiz godoc
// @Summary Generate a multiple-choice quiz
// @Description numberOfQuestions defaults to 5 and must be between 1 and 20
// @Tags flows
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Quiz request"
// @Success 200 {object} dto.GenerateQuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /flows/quiz [post]
func (h *FlowHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resp, err := h.flows.GenerateQuiz(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GenerateFlashcards godoc
// @Summary Generate flashcards
// @Tags flows
// @Accept json
// @Produce json
// @Param request body dto.GenerateFlashcardsRequest true "Document text"
// @Success 200 {object} dto.GenerateFlashcardsResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /flows/flashcards [post]
func (h *FlowHandler) GenerateFlashcards(c *fiber.Ctx) error {
	var req dto.GenerateFlashcardsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resp, err := h.flows.GenerateFlashcards(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GenerateNotes godoc
// @Summary Generate markdown study notes
// @Tags flows
// @Accept json
// @Produce json
// @Param request body dto.GenerateNotesRequest true "Notes request"
// @Success 200 {object} dto.GenerateNotesResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /flows/notes [post]
func (h *FlowHandler) GenerateNotes(c *fiber.Ctx) error {
	var req dto.GenerateNotesRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resp, err := h.flows.GenerateNotes(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// AskQuestion godoc
// @Summary Answer a question about a document
// @Tags flows
// @Accept json
// @Produce json
// @Param request body dto.AskQuestionRequest true "Question"
// @Success 200 {object} dto.AskQuestionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /flows/ask [post]
func (h *FlowHandler) AskQuestion(c *fiber.Ctx) error {
	var req dto.AskQuestionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resp, err := h.flows.AskQuestion(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Chat godoc
// @Summary Chat about a document
// @Description history holds prior turns with role "user" or "ai"
// @Tags flows
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Chat request"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /flows/chat [post]
func (h *FlowHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resp, err := h.flows.Chat(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SuggestVideos godoc
// @Summary Suggest related videos
// @Tags flows
// @Accept json
// @Produce json
// @Param request body dto.SuggestVideosRequest true "Document text"
// @Success 200 {object} dto.SuggestVideosResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /flows/videos [post]
func (h *FlowHandler) SuggestVideos(c *fiber.Ctx) error {
	var req dto.SuggestVideosRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resp, err := h.flows.SuggestVideos(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ScoreQuiz godoc
// @Summary Score quiz answers
// @Description answers are keyed by question index
// @Tags flows
// @Accept json
// @Produce json
// @Param request body dto.ScoreQuizRequest true "Quiz and answers"
// @Success 200 {object} domain.QuizResult
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /flows/score [post]
func (h *FlowHandler) ScoreQuiz(c *fiber.Ctx) error {
	var req dto.ScoreQuizRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.flows.ScoreQuiz(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
