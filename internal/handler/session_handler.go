package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"notewise/internal/domain"
	"notewise/internal/dto"
	"notewise/internal/service"
	"notewise/internal/util"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler serves the upload-then-transform study page.
type SessionHandler struct {
	sessions service.SessionService
}

func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// parseOptionalBody tolerates an empty body for requests whose fields all
// have defaults.
func parseOptionalBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return parseBody(c, out)
}

func sendFile(c *fiber.Ctx, file *service.ExportFile) error {
	c.Attachment(file.Name)
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Send(file.Data)
}

// CreateSession godoc
// @Summary Upload a document and start a study session
// @Description Accepts a multipart "file" field or a JSON body with a data URI
// @Tags sessions
// @Accept multipart/form-data,json
// @Produce json
// @Param file formData file false "PDF document"
// @Param request body dto.CreateSessionRequest false "Data URI upload"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		upload, err := readUpload(c)
		if err != nil {
			return err
		}
		req = *upload
	} else if err := parseBody(c, &req); err != nil {
		return err
	}

	session, err := h.sessions.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewSessionResponse(session))
}

func readUpload(c *fiber.Ctx) (*dto.CreateSessionRequest, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("file")}
	}
	f, err := fh.Open()
	if err != nil {
		return nil, domain.NewInvalidInputError("Uploaded file could not be read")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.NewInvalidInputError("Uploaded file could not be read")
	}
	if len(data) == 0 {
		return nil, domain.NewInvalidInputError("Uploaded file is empty")
	}

	return &dto.CreateSessionRequest{
		FileName:   filepath.Base(fh.Filename),
		PDFDataURI: util.BuildDataURI(uploadMIMEType(fh.Header.Get(fiber.HeaderContentType), fh.Filename), data),
	}, nil
}

// uploadMIMEType trusts the part header unless it is missing or generic.
func uploadMIMEType(header, fileName string) string {
	if mt, _, err := mime.ParseMediaType(header); err == nil && mt != "application/octet-stream" {
		return mt
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}
	return "application/pdf"
}

// GetSession godoc
// @Summary Get a study session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.sessions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSessionResponse(session))
}

// ResetSession godoc
// @Summary Discard a study session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *SessionHandler) ResetSession(c *fiber.Ctx) error {
	if err := h.sessions.Reset(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Summary godoc
// @Summary Summarize the session document
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SummarizeResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /sessions/{id}/summary [post]
func (h *SessionHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.sessions.Summary(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.SummarizeResponse{Summary: summary})
}

// StartQuiz godoc
// @Summary Generate a new quiz for the session
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.SessionQuizRequest false "Quiz size"
// @Success 200 {object} dto.GenerateQuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /sessions/{id}/quiz [post]
func (h *SessionHandler) StartQuiz(c *fiber.Ctx) error {
	var req dto.SessionQuizRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return err
	}
	quiz, err := h.sessions.StartQuiz(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(dto.GenerateQuizResponse{Quiz: quiz})
}

// SubmitQuiz godoc
// @Summary Submit quiz answers
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.SubmitQuizRequest true "Answers keyed by question index"
// @Success 200 {object} domain.QuizResult
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/quiz/submit [post]
func (h *SessionHandler) SubmitQuiz(c *fiber.Ctx) error {
	var req dto.SubmitQuizRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return err
	}
	result, err := h.sessions.SubmitQuiz(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Flashcards godoc
// @Summary Generate flashcards for the session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.GenerateFlashcardsResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /sessions/{id}/flashcards [post]
func (h *SessionHandler) Flashcards(c *fiber.Ctx) error {
	cards, err := h.sessions.Flashcards(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.GenerateFlashcardsResponse{Flashcards: cards})
}

// ExportFlashcards godoc
// @Summary Download flashcards
// @Tags sessions
// @Produce octet-stream
// @Param id path string true "Session ID"
// @Param format query string false "xlsx (default) or csv"
// @Success 200 {file} file
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/flashcards/export [get]
func (h *SessionHandler) ExportFlashcards(c *fiber.Ctx) error {
	file, err := h.sessions.ExportFlashcards(c.UserContext(), c.Params("id"), c.Query("format"))
	if err != nil {
		return err
	}
	return sendFile(c, file)
}

// Notes godoc
// @Summary Generate study notes for the session
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.SessionNotesRequest false "Note length"
// @Success 200 {object} dto.GenerateNotesResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /sessions/{id}/notes [post]
func (h *SessionHandler) Notes(c *fiber.Ctx) error {
	var req dto.SessionNotesRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return err
	}
	notes, err := h.sessions.Notes(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(dto.GenerateNotesResponse{Notes: notes})
}

// DownloadNotes godoc
// @Summary Download study notes as markdown
// @Tags sessions
// @Produce text/markdown
// @Param id path string true "Session ID"
// @Param noteLength query string false "short (default) or long"
// @Success 200 {file} file
// @Router /sessions/{id}/notes/download [get]
func (h *SessionHandler) DownloadNotes(c *fiber.Ctx) error {
	req := dto.SessionNotesRequest{NoteLength: c.Query("noteLength")}
	file, err := h.sessions.DownloadNotes(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return sendFile(c, file)
}

// Chat godoc
// @Summary Chat about the session document
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.SessionChatRequest true "User input"
// @Success 200 {object} dto.SessionChatResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /sessions/{id}/chat [post]
func (h *SessionHandler) Chat(c *fiber.Ctx) error {
	var req dto.SessionChatRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	resp, err := h.sessions.Chat(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Ask godoc
// @Summary Ask a single question about the session document
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.SessionAskRequest true "Question"
// @Success 200 {object} dto.AskQuestionResponse
// @Router /sessions/{id}/ask [post]
func (h *SessionHandler) Ask(c *fiber.Ctx) error {
	var req dto.SessionAskRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	answer, err := h.sessions.Ask(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(dto.AskQuestionResponse{Answer: answer})
}

// Videos godoc
// @Summary Suggest videos for the session document
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SuggestVideosResponse
// @Router /sessions/{id}/videos [post]
func (h *SessionHandler) Videos(c *fiber.Ctx) error {
	videos, err := h.sessions.Videos(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.SuggestVideosResponse{VideoSuggestions: videos})
}

// Attempts godoc
// @Summary List recorded quiz attempts
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {array} dto.AttemptResponse
// @Router /sessions/{id}/attempts [get]
func (h *SessionHandler) Attempts(c *fiber.Ctx) error {
	attempts, err := h.sessions.Attempts(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAttemptResponses(attempts))
}
