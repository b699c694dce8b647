package handler_test

import (
	"context"

	"notewise/internal/domain"
	"notewise/internal/dto"
	"notewise/internal/service"
)

// --- Manual Mocks ---

type MockStudyFlowService struct {
	ExtractTextFunc        func(ctx context.Context, req dto.ExtractTextRequest) (*dto.ExtractTextResponse, error)
	SummarizeFunc          func(ctx context.Context, req dto.SummarizeRequest) (*dto.SummarizeResponse, error)
	GenerateQuizFunc       func(ctx context.Context, req dto.GenerateQuizRequest) (*dto.GenerateQuizResponse, error)
	GenerateFlashcardsFunc func(ctx context.Context, req dto.GenerateFlashcardsRequest) (*dto.GenerateFlashcardsResponse, error)
	GenerateNotesFunc      func(ctx context.Context, req dto.GenerateNotesRequest) (*dto.GenerateNotesResponse, error)
	AskQuestionFunc        func(ctx context.Context, req dto.AskQuestionRequest) (*dto.AskQuestionResponse, error)
	ChatFunc               func(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error)
	SuggestVideosFunc      func(ctx context.Context, req dto.SuggestVideosRequest) (*dto.SuggestVideosResponse, error)
	ScoreQuizFunc          func(ctx context.Context, req dto.ScoreQuizRequest) (*domain.QuizResult, error)
}

func (m *MockStudyFlowService) ExtractText(ctx context.Context, req dto.ExtractTextRequest) (*dto.ExtractTextResponse, error) {
	if m.ExtractTextFunc != nil {
		return m.ExtractTextFunc(ctx, req)
	}
	panic("MockStudyFlowService.ExtractTextFunc not implemented")
}

func (m *MockStudyFlowService) Summarize(ctx context.Context, req dto.SummarizeRequest) (*dto.SummarizeResponse, error) {
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, req)
	}
	panic("MockStudyFlowService.SummarizeFunc not implemented")
}

func (m *MockStudyFlowService) GenerateQuiz(ctx context.Context, req dto.GenerateQuizRequest) (*dto.GenerateQuizResponse, error) {
	if m.GenerateQuizFunc != nil {
		return m.GenerateQuizFunc(ctx, req)
	}
	panic("MockStudyFlowService.GenerateQuizFunc not implemented")
}

func (m *MockStudyFlowService) GenerateFlashcards(ctx context.Context, req dto.GenerateFlashcardsRequest) (*dto.GenerateFlashcardsResponse, error) {
	if m.GenerateFlashcardsFunc != nil {
		return m.GenerateFlashcardsFunc(ctx, req)
	}
	panic("MockStudyFlowService.GenerateFlashcardsFunc not implemented")
}

func (m *MockStudyFlowService) GenerateNotes(ctx context.Context, req dto.GenerateNotesRequest) (*dto.GenerateNotesResponse, error) {
	if m.GenerateNotesFunc != nil {
		return m.GenerateNotesFunc(ctx, req)
	}
	panic("MockStudyFlowService.GenerateNotesFunc not implemented")
}

func (m *MockStudyFlowService) AskQuestion(ctx context.Context, req dto.AskQuestionRequest) (*dto.AskQuestionResponse, error) {
	if m.AskQuestionFunc != nil {
		return m.AskQuestionFunc(ctx, req)
	}
	panic("MockStudyFlowService.AskQuestionFunc not implemented")
}

func (m *MockStudyFlowService) Chat(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}
	panic("MockStudyFlowService.ChatFunc not implemented")
}

func (m *MockStudyFlowService) SuggestVideos(ctx context.Context, req dto.SuggestVideosRequest) (*dto.SuggestVideosResponse, error) {
	if m.SuggestVideosFunc != nil {
		return m.SuggestVideosFunc(ctx, req)
	}
	panic("MockStudyFlowService.SuggestVideosFunc not implemented")
}

func (m *MockStudyFlowService) ScoreQuiz(ctx context.Context, req dto.ScoreQuizRequest) (*domain.QuizResult, error) {
	if m.ScoreQuizFunc != nil {
		return m.ScoreQuizFunc(ctx, req)
	}
	panic("MockStudyFlowService.ScoreQuizFunc not implemented")
}

type MockSessionService struct {
	CreateFunc           func(ctx context.Context, req dto.CreateSessionRequest) (*domain.StudySession, error)
	GetFunc              func(ctx context.Context, sessionID string) (*domain.StudySession, error)
	ResetFunc            func(ctx context.Context, sessionID string) error
	SummaryFunc          func(ctx context.Context, sessionID string) (string, error)
	StartQuizFunc        func(ctx context.Context, sessionID string, req dto.SessionQuizRequest) ([]domain.QuizItem, error)
	SubmitQuizFunc       func(ctx context.Context, sessionID string, req dto.SubmitQuizRequest) (*domain.QuizResult, error)
	FlashcardsFunc       func(ctx context.Context, sessionID string) ([]domain.Flashcard, error)
	ExportFlashcardsFunc func(ctx context.Context, sessionID, format string) (*service.ExportFile, error)
	NotesFunc            func(ctx context.Context, sessionID string, req dto.SessionNotesRequest) (string, error)
	DownloadNotesFunc    func(ctx context.Context, sessionID string, req dto.SessionNotesRequest) (*service.ExportFile, error)
	ChatFunc             func(ctx context.Context, sessionID string, req dto.SessionChatRequest) (*dto.SessionChatResponse, error)
	AskFunc              func(ctx context.Context, sessionID string, req dto.SessionAskRequest) (string, error)
	VideosFunc           func(ctx context.Context, sessionID string) ([]domain.VideoSuggestion, error)
	AttemptsFunc         func(ctx context.Context, sessionID string) ([]*domain.QuizAttempt, error)
}

func (m *MockSessionService) Create(ctx context.Context, req dto.CreateSessionRequest) (*domain.StudySession, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	panic("MockSessionService.CreateFunc not implemented")
}

func (m *MockSessionService) Get(ctx context.Context, sessionID string) (*domain.StudySession, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, sessionID)
	}
	panic("MockSessionService.GetFunc not implemented")
}

func (m *MockSessionService) Reset(ctx context.Context, sessionID string) error {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	panic("MockSessionService.ResetFunc not implemented")
}

func (m *MockSessionService) Summary(ctx context.Context, sessionID string) (string, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, sessionID)
	}
	panic("MockSessionService.SummaryFunc not implemented")
}

func (m *MockSessionService) StartQuiz(ctx context.Context, sessionID string, req dto.SessionQuizRequest) ([]domain.QuizItem, error) {
	if m.StartQuizFunc != nil {
		return m.StartQuizFunc(ctx, sessionID, req)
	}
	panic("MockSessionService.StartQuizFunc not implemented")
}

func (m *MockSessionService) SubmitQuiz(ctx context.Context, sessionID string, req dto.SubmitQuizRequest) (*domain.QuizResult, error) {
	if m.SubmitQuizFunc != nil {
		return m.SubmitQuizFunc(ctx, sessionID, req)
	}
	panic("MockSessionService.SubmitQuizFunc not implemented")
}

func (m *MockSessionService) Flashcards(ctx context.Context, sessionID string) ([]domain.Flashcard, error) {
	if m.FlashcardsFunc != nil {
		return m.FlashcardsFunc(ctx, sessionID)
	}
	panic("MockSessionService.FlashcardsFunc not implemented")
}

func (m *MockSessionService) ExportFlashcards(ctx context.Context, sessionID, format string) (*service.ExportFile, error) {
	if m.ExportFlashcardsFunc != nil {
		return m.ExportFlashcardsFunc(ctx, sessionID, format)
	}
	panic("MockSessionService.ExportFlashcardsFunc not implemented")
}

func (m *MockSessionService) Notes(ctx context.Context, sessionID string, req dto.SessionNotesRequest) (string, error) {
	if m.NotesFunc != nil {
		return m.NotesFunc(ctx, sessionID, req)
	}
	panic("MockSessionService.NotesFunc not implemented")
}

func (m *MockSessionService) DownloadNotes(ctx context.Context, sessionID string, req dto.SessionNotesRequest) (*service.ExportFile, error) {
	if m.DownloadNotesFunc != nil {
		return m.DownloadNotesFunc(ctx, sessionID, req)
	}
	panic("MockSessionService.DownloadNotesFunc not implemented")
}

func (m *MockSessionService) Chat(ctx context.Context, sessionID string, req dto.SessionChatRequest) (*dto.SessionChatResponse, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, sessionID, req)
	}
	panic("MockSessionService.ChatFunc not implemented")
}

func (m *MockSessionService) Ask(ctx context.Context, sessionID string, req dto.SessionAskRequest) (string, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, sessionID, req)
	}
	panic("MockSessionService.AskFunc not implemented")
}

func (m *MockSessionService) Videos(ctx context.Context, sessionID string) ([]domain.VideoSuggestion, error) {
	if m.VideosFunc != nil {
		return m.VideosFunc(ctx, sessionID)
	}
	panic("MockSessionService.VideosFunc not implemented")
}

func (m *MockSessionService) Attempts(ctx context.Context, sessionID string) ([]*domain.QuizAttempt, error) {
	if m.AttemptsFunc != nil {
		return m.AttemptsFunc(ctx, sessionID)
	}
	panic("MockSessionService.AttemptsFunc not implemented")
}

var (
	_ service.StudyFlowService = (*MockStudyFlowService)(nil)
	_ service.SessionService   = (*MockSessionService)(nil)
)
