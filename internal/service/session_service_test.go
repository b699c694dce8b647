package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"notewise/internal/cache"
	"notewise/internal/domain"
	"notewise/internal/dto"
	"notewise/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	svc       *sessionServiceImpl
	llm       *MockLLMClient
	extractor *MockTextExtractor
	store     *memoryCache
	clock     time.Time
}

func newSessionFixture(t *testing.T, attempts domain.QuizAttemptRepository) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		llm:       &MockLLMClient{},
		extractor: new(MockTextExtractor),
		store:     newMemoryCache(),
		clock:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	flows := NewStudyFlowService(f.llm, f.extractor, nil, nil, 0)
	svc := NewSessionService(flows, NewSessionStore(f.store, time.Hour), attempts, nil).(*sessionServiceImpl)
	svc.now = func() time.Time { return f.clock }
	f.svc = svc
	return f
}

// seed stores a session directly, bypassing extraction.
func (f *sessionFixture) seed(t *testing.T) *domain.StudySession {
	t.Helper()
	session := domain.NewStudySession(util.NewULID(), "cells.pdf", "Cells are the basic unit of life.", 2)
	require.NoError(t, NewSessionStore(f.store, time.Hour).Save(context.Background(), session))
	return session
}

func (f *sessionFixture) reload(t *testing.T, id string) *domain.StudySession {
	t.Helper()
	session, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	return session
}

func TestSessionCreate(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.extractor.On("ExtractText", mock.Anything, pdfBytes).Return(&domain.ExtractedDocument{Text: "Chapter 1", PageCount: 4}, nil)

	session, err := f.svc.Create(context.Background(), dto.CreateSessionRequest{FileName: "bio.pdf", PDFDataURI: pdfDataURI})
	require.NoError(t, err)
	assert.True(t, util.IsULID(session.ID))
	assert.Equal(t, "bio.pdf", session.FileName)
	assert.Equal(t, 4, session.PageCount)

	stored := f.reload(t, session.ID)
	assert.Equal(t, "Chapter 1", stored.PDFText)
	assert.Empty(t, stored.Chat)
}

func TestSessionCreate_ExtractionFailureStoresNothing(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.extractor.On("ExtractText", mock.Anything, pdfBytes).Return(nil, errors.New("malformed PDF"))

	_, err := f.svc.Create(context.Background(), dto.CreateSessionRequest{PDFDataURI: pdfDataURI})
	requireCode(t, err, domain.CodeInvalidInput)
	assert.Empty(t, f.store.data)
}

func TestSessionGet_Errors(t *testing.T) {
	f := newSessionFixture(t, nil)

	_, err := f.svc.Get(context.Background(), util.NewULID())
	requireCode(t, err, domain.CodeSessionNotFound)

	_, err = f.svc.Get(context.Background(), "not-a-ulid")
	requireValidationCode(t, err, "id", domain.CodeInvalidFormat)
}

func TestSessionReset(t *testing.T) {
	f := newSessionFixture(t, nil)
	session := f.seed(t)

	require.NoError(t, f.svc.Reset(context.Background(), session.ID))
	_, err := f.svc.Get(context.Background(), session.ID)
	requireCode(t, err, domain.CodeSessionNotFound)
	assert.NotContains(t, f.store.data, cache.SessionKey(session.ID))
}

func TestSessionSummary_GeneratedOnce(t *testing.T) {
	f := newSessionFixture(t, nil)
	session := f.seed(t)
	f.llm.On("Generate", mock.Anything, mock.Anything).Return(`{"summary":"Cells matter."}`, nil).Once()

	for i := 0; i < 2; i++ {
		summary, err := f.svc.Summary(context.Background(), session.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cells matter.", summary)
	}
	assert.Equal(t, "Cells matter.", f.reload(t, session.ID).Summary)
	f.llm.AssertNumberOfCalls(t, "Generate", 1)
}

func TestSessionSummary_ConcurrentCallsShareOneGeneration(t *testing.T) {
	f := newSessionFixture(t, nil)
	session := f.seed(t)
	release := make(chan time.Time)
	f.llm.On("Generate", mock.Anything, mock.Anything).Return(`{"summary":"Cells matter."}`, nil).WaitUntil(release)

	const callers = 8
	summaries := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			summaries[i], errs[i] = f.svc.Summary(context.Background(), session.ID)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "Cells matter.", summaries[i])
	}
	f.llm.AssertNumberOfCalls(t, "Generate", 1)
}

const twoQuestionQuiz = `{"quiz":[
	{"question":"Basic unit of life?","options":["Cell","Atom"],"answer":"Cell","topic":"Cell theory"},
	{"question":"Powerhouse?","options":["Nucleus","Mitochondria"],"answer":"Mitochondria","topic":"Organelles"}
]}`

func TestSessionQuiz_StartAndSubmit(t *testing.T) {
	attempts := new(MockQuizAttemptRepository)
	f := newSessionFixture(t, attempts)
	session := f.seed(t)
	f.llm.On("Generate", mock.Anything, promptContains("2 questions")).Return(twoQuestionQuiz, nil).Once()

	quiz, err := f.svc.StartQuiz(context.Background(), session.ID, dto.SessionQuizRequest{NumberOfQuestions: 2})
	require.NoError(t, err)
	require.Len(t, quiz, 2)

	started := f.reload(t, session.ID)
	require.NotNil(t, started.QuizStartedAt)
	assert.True(t, started.QuizStartedAt.Equal(f.clock))

	attempts.On("CreateAttempt", mock.Anything, mock.MatchedBy(func(a *domain.QuizAttempt) bool {
		return a.SessionID == session.ID && a.FileName == "cells.pdf" && a.Score == 1 && a.Total == 2 &&
			a.DurationSeconds == 95 && len(a.ReviewTopics) == 1 && a.ReviewTopics[0] == "Organelles"
	})).Return(nil).Once()

	f.clock = f.clock.Add(95*time.Second + 300*time.Millisecond)
	result, err := f.svc.SubmitQuiz(context.Background(), session.ID, dto.SubmitQuizRequest{
		Answers: map[string]string{"0": "Cell", "1": "Nucleus"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, []string{"Organelles"}, result.ReviewTopics)
	assert.Equal(t, int64(95), result.DurationSeconds)

	stored := f.reload(t, session.ID)
	require.NotNil(t, stored.QuizResult)
	assert.Equal(t, 1, stored.QuizResult.Score)
	attempts.AssertExpectations(t)
}

func TestSessionQuiz_RestartClearsResult(t *testing.T) {
	f := newSessionFixture(t, nil)
	session := f.seed(t)
	f.llm.On("Generate", mock.Anything, mock.Anything).Return(twoQuestionQuiz, nil).Twice()

	_, err := f.svc.StartQuiz(context.Background(), session.ID, dto.SessionQuizRequest{})
	require.NoError(t, err)
	_, err = f.svc.SubmitQuiz(context.Background(), session.ID, dto.SubmitQuizRequest{Answers: map[string]string{"0": "Cell"}})
	require.NoError(t, err)
	require.NotNil(t, f.reload(t, session.ID).QuizResult)

	_, err = f.svc.StartQuiz(context.Background(), session.ID, dto.SessionQuizRequest{})
	require.NoError(t, err)
	assert.Nil(t, f.reload(t, session.ID).QuizResult)
	f.llm.AssertNumberOfCalls(t, "Generate", 2)
}

func TestSessionSubmitQuiz_NotStarted(t *testing.T) {
	f := newSessionFixture(t, nil)
	session := f.seed(t)

	_, err := f.svc.SubmitQuiz(context.Background(), session.ID, dto.SubmitQuizRequest{Answers: map[string]string{"0": "a"}})
	requireCode(t, err, domain.CodeQuizNotStarted)
}

func TestSessionSubmitQuiz_AttemptFailureDoesNotFailSubmit(t *testing.T) {
	attempts := new(MockQuizAttemptRepository)
	f := newSessionFixture(t, attempts)
	session := f.seed(t)
	f.llm.On("Generate", mock.Anything, mock.Anything).Return(twoQuestionQuiz, nil)
	attempts.On("CreateAttempt", mock.Anything, mock.Anything).Return(errors.New("ORA-12541: no listener"))

	_, err := f.svc.StartQuiz(context.Background(), session.ID, dto.SessionQuizRequest{})
	require.NoError(t, err)
	result, err := f.svc.SubmitQuiz(context.Background(), session.ID, dto.SubmitQuizRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, []string{"Cell theory", "Organelles"}, result.ReviewTopics)
}

func TestSessionFlashcards_AndExport(t *testing.T) {
	f := newSessionFixture(t, nil)
	session := f.seed(t)

	_, err := f.svc.ExportFlashcards(context.Background(), session.ID, "csv")
	requireCode(t, err, domain.CodeFlashcardsNotReady)

	f.llm.On("Generate", mock.Anything, mock.Anything).Return(`{"flashcards":[{"front":"Cell","back":"Unit of life"}]}`, nil).Once()
	cards, err := f.svc.Flashcards(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, cards, 1)

	again, err := f.svc.Flashcards(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, cards, again)

	file, err := f.svc.ExportFlashcards(context.Background(), session.ID, "csv")
	require.NoError(t, err)
	assert.Equal(t, "Front,Back\nCell,Unit of life\n", string(file.Data))

	_, err = f.svc.ExportFlashcards(context.Background(), session.ID, "docx")
	requireValidationCode(t, err, "format", domain.CodeInvalidFormat)
	f.llm.AssertNumberOfCalls(t, "Generate", 1)
}

func TestSessionNotes_CachedPerLength(t *testing.T) {
	f := newSessionFixture(t, nil)
	session := f.seed(t)
	f.llm.On("Generate", mock.Anything, promptContains("quick revision")).Return(`{"notes":"# Short"}`, nil).Once()
	f.llm.On("Generate", mock.Anything, promptContains("in-depth study")).Return(`{"notes":"# Long"}`, nil).Once()

	short, err := f.svc.Notes(context.Background(), session.ID, dto.SessionNotesRequest{})
	require.NoError(t, err)
	assert.Equal(t, "# Short", short)

	long, err := f.svc.Notes(context.Background(), session.ID, dto.SessionNotesRequest{NoteLength: "long"})
	require.NoError(t, err)
	assert.Equal(t, "# Long", long)

	file, err := f.svc.DownloadNotes(context.Background(), session.ID, dto.SessionNotesRequest{NoteLength: "LONG"})
	require.NoError(t, err)
	assert.Equal(t, "smart-notes-long.md", file.Name)
	assert.Equal(t, "# Long", string(file.Data))

	stored := f.reload(t, session.ID)
	assert.Equal(t, "# Short", stored.Notes[domain.NoteLengthShort])
	assert.Equal(t, "# Long", stored.Notes[domain.NoteLengthLong])
	f.llm.AssertNumberOfCalls(t, "Generate", 2)
}

func TestSessionChat_HistoryGrowsOnlyOnSuccess(t *testing.T) {
	f := newSessionFixture(t, nil)
	session := f.seed(t)

	f.llm.On("Generate", mock.Anything, promptContains("User: What is a cell?")).
		Return(`{"aiResponse":"The basic unit of life."}`, nil).Once()
	resp, err := f.svc.Chat(context.Background(), session.ID, dto.SessionChatRequest{UserInput: "What is a cell?"})
	require.NoError(t, err)
	assert.Equal(t, "The basic unit of life.", resp.AIResponse)
	assert.Equal(t, []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Content: "What is a cell?"},
		{Role: domain.ChatRoleAI, Content: "The basic unit of life."},
	}, resp.History)

	f.llm.On("Generate", mock.Anything, promptContains("AI: The basic unit of life.", "User: And atoms?")).
		Return("", errors.New("503 Service Unavailable")).Once()
	_, err = f.svc.Chat(context.Background(), session.ID, dto.SessionChatRequest{UserInput: "And atoms?"})
	requireCode(t, err, domain.CodeLLMOverloaded)

	assert.Len(t, f.reload(t, session.ID).Chat, 2)
	f.llm.AssertExpectations(t)
}

func TestSessionAskAndVideos(t *testing.T) {
	f := newSessionFixture(t, nil)
	session := f.seed(t)
	f.llm.On("Generate", mock.Anything, promptContains("Question:\nWhat is life made of?")).Return(`{"answer":"Cells."}`, nil).Once()
	f.llm.On("Generate", mock.Anything, promptContains("YouTube")).
		Return(`{"videoSuggestions":[{"title":"Cells","url":"https://youtu.be/a"}]}`, nil).Once()

	answer, err := f.svc.Ask(context.Background(), session.ID, dto.SessionAskRequest{Question: "What is life made of?"})
	require.NoError(t, err)
	assert.Equal(t, "Cells.", answer)

	videos, err := f.svc.Videos(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, videos, f.reload(t, session.ID).Videos)

	_, err = f.svc.Ask(context.Background(), session.ID, dto.SessionAskRequest{})
	requireValidationCode(t, err, "question", domain.CodeMissingField)
}

func TestSessionAttempts(t *testing.T) {
	id := util.NewULID()

	t.Run("history disabled", func(t *testing.T) {
		f := newSessionFixture(t, nil)
		attempts, err := f.svc.Attempts(context.Background(), id)
		require.NoError(t, err)
		assert.Empty(t, attempts)
		assert.NotNil(t, attempts)
	})

	t.Run("from repository", func(t *testing.T) {
		repo := new(MockQuizAttemptRepository)
		want := []*domain.QuizAttempt{{ID: util.NewULID(), SessionID: id, Score: 3, Total: 5}}
		repo.On("GetAttemptsBySession", mock.Anything, id).Return(want, nil)

		f := newSessionFixture(t, repo)
		attempts, err := f.svc.Attempts(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, attempts)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockQuizAttemptRepository)
		repo.On("GetAttemptsBySession", mock.Anything, id).Return(nil, errors.New("db down"))

		f := newSessionFixture(t, repo)
		_, err := f.svc.Attempts(context.Background(), id)
		requireCode(t, err, domain.CodeInternal)
	})
}
