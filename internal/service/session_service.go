package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"notewise/internal/domain"
	"notewise/internal/dto"
	"notewise/internal/logger"
	"notewise/internal/util"
	"notewise/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const sessionLockStripes = 64

// SessionService drives the upload-then-transform study page. Every feature
// reads the stored session, runs a study flow over its text and stores the
// output back on the session.
type SessionService interface {
	Create(ctx context.Context, req dto.CreateSessionRequest) (*domain.StudySession, error)
	Get(ctx context.Context, sessionID string) (*domain.StudySession, error)
	Reset(ctx context.Context, sessionID string) error
	Summary(ctx context.Context, sessionID string) (string, error)
	StartQuiz(ctx context.Context, sessionID string, req dto.SessionQuizRequest) ([]domain.QuizItem, error)
	SubmitQuiz(ctx context.Context, sessionID string, req dto.SubmitQuizRequest) (*domain.QuizResult, error)
	Flashcards(ctx context.Context, sessionID string) ([]domain.Flashcard, error)
	ExportFlashcards(ctx context.Context, sessionID, format string) (*ExportFile, error)
	Notes(ctx context.Context, sessionID string, req dto.SessionNotesRequest) (string, error)
	DownloadNotes(ctx context.Context, sessionID string, req dto.SessionNotesRequest) (*ExportFile, error)
	Chat(ctx context.Context, sessionID string, req dto.SessionChatRequest) (*dto.SessionChatResponse, error)
	Ask(ctx context.Context, sessionID string, req dto.SessionAskRequest) (string, error)
	Videos(ctx context.Context, sessionID string) ([]domain.VideoSuggestion, error)
	Attempts(ctx context.Context, sessionID string) ([]*domain.QuizAttempt, error)
}

type sessionServiceImpl struct {
	flows     StudyFlowService
	store     SessionStore
	attempts  domain.QuizAttemptRepository
	exporter  ExportService
	validator *validation.Validator
	now       func() time.Time

	sfGroup singleflight.Group
	locks   [sessionLockStripes]sync.Mutex
}

// NewSessionService wires the session pipeline. attempts may be nil when quiz
// history is disabled.
func NewSessionService(flows StudyFlowService, store SessionStore, attempts domain.QuizAttemptRepository, exporter ExportService) SessionService {
	if exporter == nil {
		exporter = NewExportService()
	}
	return &sessionServiceImpl{
		flows:     flows,
		store:     store,
		attempts:  attempts,
		exporter:  exporter,
		validator: validation.NewValidator(),
		now:       time.Now,
	}
}

func (s *sessionServiceImpl) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%sessionLockStripes]
}

// update applies fn to the freshly loaded session and saves it, holding the
// session's lock so concurrent features do not overwrite each other.
func (s *sessionServiceImpl) update(ctx context.Context, sessionID string, fn func(*domain.StudySession) error) (*domain.StudySession, error) {
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// sessionFlight collapses duplicate submissions of the same action on the
// same session into one call. Callers that arrive just after a flight ends
// re-read the session inside fn and reuse what it stored.
func sessionFlight[T any](s *sessionServiceImpl, key string, fn func() (T, error)) (T, error) {
	var zero T
	res, err, shared := s.sfGroup.Do(key, func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	if shared {
		logger.Get().Debug("Joined in-flight session action", zap.String("key", key))
	}
	out, ok := res.(T)
	if !ok {
		return zero, domain.NewInternalError(fmt.Sprintf("unexpected type from singleflight for %s: %T", key, res), nil)
	}
	return out, nil
}

func (s *sessionServiceImpl) checkID(sessionID string) error {
	if errs := s.validator.ValidateSessionID(sessionID); len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *sessionServiceImpl) load(ctx context.Context, sessionID string) (*domain.StudySession, error) {
	if err := s.checkID(sessionID); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, sessionID)
}

// Create extracts the document text and stores a new session. Nothing is
// stored when extraction fails.
func (s *sessionServiceImpl) Create(ctx context.Context, req dto.CreateSessionRequest) (*domain.StudySession, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	extracted, err := s.flows.ExtractText(ctx, dto.ExtractTextRequest{PDFDataURI: req.PDFDataURI})
	if err != nil {
		return nil, err
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = "document.pdf"
	}
	session := domain.NewStudySession(util.NewULID(), fileName, extracted.PDFText, extracted.PageCount)
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	logger.Get().Info("Study session created",
		zap.String("session_id", session.ID),
		zap.String("file_name", fileName),
		zap.Int("page_count", session.PageCount),
		zap.Int("text_chars", len(session.PDFText)))
	return session, nil
}

func (s *sessionServiceImpl) Get(ctx context.Context, sessionID string) (*domain.StudySession, error) {
	return s.load(ctx, sessionID)
}

func (s *sessionServiceImpl) Reset(ctx context.Context, sessionID string) error {
	if err := s.checkID(sessionID); err != nil {
		return err
	}
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	logger.Get().Info("Study session reset", zap.String("session_id", sessionID))
	return nil
}

func (s *sessionServiceImpl) Summary(ctx context.Context, sessionID string) (string, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session.Summary != "" {
		return session.Summary, nil
	}

	return sessionFlight(s, sessionID+":summary", func() (string, error) {
		if stored, err := s.store.Get(ctx, sessionID); err == nil && stored.Summary != "" {
			return stored.Summary, nil
		}
		resp, err := s.flows.Summarize(ctx, dto.SummarizeRequest{PDFText: session.PDFText})
		if err != nil {
			return "", err
		}
		_, err = s.update(ctx, sessionID, func(sess *domain.StudySession) error {
			sess.Summary = resp.Summary
			sess.UpdatedAt = s.now()
			return nil
		})
		return resp.Summary, err
	})
}

// StartQuiz always generates a new quiz and clears any previous result.
func (s *sessionServiceImpl) StartQuiz(ctx context.Context, sessionID string, req dto.SessionQuizRequest) ([]domain.QuizItem, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	key := sessionID + ":quiz:" + strconv.Itoa(req.NumberOfQuestions)
	return sessionFlight(s, key, func() ([]domain.QuizItem, error) {
		resp, err := s.flows.GenerateQuiz(ctx, dto.GenerateQuizRequest{
			PDFText:           session.PDFText,
			NumberOfQuestions: req.NumberOfQuestions,
		})
		if err != nil {
			return nil, err
		}
		_, err = s.update(ctx, sessionID, func(sess *domain.StudySession) error {
			sess.StartQuiz(resp.Quiz, s.now())
			return nil
		})
		if err != nil {
			return nil, err
		}
		return resp.Quiz, nil
	})
}

// SubmitQuiz scores the answers against the current quiz and records the
// attempt when history is enabled.
func (s *sessionServiceImpl) SubmitQuiz(ctx context.Context, sessionID string, req dto.SubmitQuizRequest) (*domain.QuizResult, error) {
	if err := s.checkID(sessionID); err != nil {
		return nil, err
	}
	answers, errs := dto.ParseAnswers(req.Answers)
	if len(errs) > 0 {
		return nil, errs
	}

	var result domain.QuizResult
	session, err := s.update(ctx, sessionID, func(sess *domain.StudySession) error {
		if len(sess.Quiz) == 0 {
			return domain.NewQuizNotStartedError(sessionID)
		}
		result = sess.FinishQuiz(answers, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAttempt(ctx, session, result)
	return &result, nil
}

func (s *sessionServiceImpl) recordAttempt(ctx context.Context, session *domain.StudySession, result domain.QuizResult) {
	if s.attempts == nil {
		return
	}
	attempt := &domain.QuizAttempt{
		ID:              util.NewULID(),
		SessionID:       session.ID,
		FileName:        session.FileName,
		Score:           result.Score,
		Total:           result.Total,
		ReviewTopics:    result.ReviewTopics,
		DurationSeconds: result.DurationSeconds,
		AttemptedAt:     s.now(),
	}
	if err := s.attempts.CreateAttempt(ctx, attempt); err != nil {
		logger.Get().Error("Failed to record quiz attempt",
			zap.String("session_id", session.ID),
			zap.Error(err))
	}
}

func (s *sessionServiceImpl) Flashcards(ctx context.Context, sessionID string) ([]domain.Flashcard, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(session.Flashcards) > 0 {
		return session.Flashcards, nil
	}

	return sessionFlight(s, sessionID+":flashcards", func() ([]domain.Flashcard, error) {
		if stored, err := s.store.Get(ctx, sessionID); err == nil && len(stored.Flashcards) > 0 {
			return stored.Flashcards, nil
		}
		resp, err := s.flows.GenerateFlashcards(ctx, dto.GenerateFlashcardsRequest{PDFText: session.PDFText})
		if err != nil {
			return nil, err
		}
		_, err = s.update(ctx, sessionID, func(sess *domain.StudySession) error {
			sess.Flashcards = resp.Flashcards
			sess.UpdatedAt = s.now()
			return nil
		})
		if err != nil {
			return nil, err
		}
		return resp.Flashcards, nil
	})
}

func (s *sessionServiceImpl) ExportFlashcards(ctx context.Context, sessionID, format string) (*ExportFile, error) {
	if errs := s.validator.ValidateExportFormat(format); len(errs) > 0 {
		return nil, errs
	}
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(session.Flashcards) == 0 {
		return nil, domain.NewFlashcardsNotReadyError(sessionID)
	}
	return s.exporter.ExportFlashcards(session.Flashcards, format)
}

// Notes are generated once per length and kept on the session.
func (s *sessionServiceImpl) Notes(ctx context.Context, sessionID string, req dto.SessionNotesRequest) (string, error) {
	if err := s.validator.Validate(req); err != nil {
		return "", err
	}
	length, err := domain.ParseNoteLength(req.NoteLength)
	if err != nil {
		return "", domain.ValidationErrors{domain.NewInvalidFormatError("noteLength", req.NoteLength)}
	}
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if notes, ok := session.Notes[length]; ok && notes != "" {
		return notes, nil
	}

	return sessionFlight(s, sessionID+":notes:"+string(length), func() (string, error) {
		resp, err := s.flows.GenerateNotes(ctx, dto.GenerateNotesRequest{PDFText: session.PDFText, NoteLength: string(length)})
		if err != nil {
			return "", err
		}
		_, err = s.update(ctx, sessionID, func(sess *domain.StudySession) error {
			if sess.Notes == nil {
				sess.Notes = make(map[domain.NoteLength]string)
			}
			sess.Notes[length] = resp.Notes
			sess.UpdatedAt = s.now()
			return nil
		})
		return resp.Notes, err
	})
}

func (s *sessionServiceImpl) DownloadNotes(ctx context.Context, sessionID string, req dto.SessionNotesRequest) (*ExportFile, error) {
	notes, err := s.Notes(ctx, sessionID, req)
	if err != nil {
		return nil, err
	}
	length, _ := domain.ParseNoteLength(req.NoteLength)
	return s.exporter.ExportNotes(notes, length), nil
}

// Chat sends the stored history with the new input. History only grows when
// the model answers.
func (s *sessionServiceImpl) Chat(ctx context.Context, sessionID string, req dto.SessionChatRequest) (*dto.SessionChatResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	key := sessionID + ":chat:" + util.HashString(req.UserInput, strconv.Itoa(len(session.Chat)))
	return sessionFlight(s, key, func() (*dto.SessionChatResponse, error) {
		history := make([]dto.ChatTurn, 0, len(session.Chat))
		for _, m := range session.Chat {
			history = append(history, dto.ChatTurn{Role: string(m.Role), Content: m.Content})
		}

		resp, err := s.flows.Chat(ctx, dto.ChatRequest{
			PDFContent: session.PDFText,
			UserInput:  req.UserInput,
			History:    history,
		})
		if err != nil {
			return nil, err
		}

		updated, err := s.update(ctx, sessionID, func(sess *domain.StudySession) error {
			sess.AppendExchange(req.UserInput, resp.AIResponse)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &dto.SessionChatResponse{AIResponse: resp.AIResponse, History: updated.Chat}, nil
	})
}

func (s *sessionServiceImpl) Ask(ctx context.Context, sessionID string, req dto.SessionAskRequest) (string, error) {
	if err := s.validator.Validate(req); err != nil {
		return "", err
	}
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	resp, err := s.flows.AskQuestion(ctx, dto.AskQuestionRequest{PDFContent: session.PDFText, Question: req.Question})
	if err != nil {
		return "", err
	}
	return resp.Answer, nil
}

func (s *sessionServiceImpl) Videos(ctx context.Context, sessionID string) ([]domain.VideoSuggestion, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(session.Videos) > 0 {
		return session.Videos, nil
	}

	return sessionFlight(s, sessionID+":videos", func() ([]domain.VideoSuggestion, error) {
		if stored, err := s.store.Get(ctx, sessionID); err == nil && len(stored.Videos) > 0 {
			return stored.Videos, nil
		}
		resp, err := s.flows.SuggestVideos(ctx, dto.SuggestVideosRequest{PDFContent: session.PDFText})
		if err != nil {
			return nil, err
		}
		_, err = s.update(ctx, sessionID, func(sess *domain.StudySession) error {
			sess.Videos = resp.VideoSuggestions
			sess.UpdatedAt = s.now()
			return nil
		})
		if err != nil {
			return nil, err
		}
		return resp.VideoSuggestions, nil
	})
}

// Attempts lists recorded attempts. They outlive the session itself.
func (s *sessionServiceImpl) Attempts(ctx context.Context, sessionID string) ([]*domain.QuizAttempt, error) {
	if err := s.checkID(sessionID); err != nil {
		return nil, err
	}
	if s.attempts == nil {
		return []*domain.QuizAttempt{}, nil
	}
	attempts, err := s.attempts.GetAttemptsBySession(ctx, sessionID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz attempts", err)
	}
	return attempts, nil
}
