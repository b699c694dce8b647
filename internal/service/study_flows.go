package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"notewise/internal/domain"
	"notewise/internal/dto"
	"notewise/internal/logger"
	"notewise/internal/util"
	"notewise/internal/validation"

	"github.com/tmc/langchaingo/prompts"
	"go.uber.org/zap"
)

const pdfMIMEType = "application/pdf"

// StudyFlowService runs the LLM backed study flows.
type StudyFlowService interface {
	ExtractText(ctx context.Context, req dto.ExtractTextRequest) (*dto.ExtractTextResponse, error)
	Summarize(ctx context.Context, req dto.SummarizeRequest) (*dto.SummarizeResponse, error)
	GenerateQuiz(ctx context.Context, req dto.GenerateQuizRequest) (*dto.GenerateQuizResponse, error)
	GenerateFlashcards(ctx context.Context, req dto.GenerateFlashcardsRequest) (*dto.GenerateFlashcardsResponse, error)
	GenerateNotes(ctx context.Context, req dto.GenerateNotesRequest) (*dto.GenerateNotesResponse, error)
	AskQuestion(ctx context.Context, req dto.AskQuestionRequest) (*dto.AskQuestionResponse, error)
	Chat(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error)
	SuggestVideos(ctx context.Context, req dto.SuggestVideosRequest) (*dto.SuggestVideosResponse, error)
	ScoreQuiz(ctx context.Context, req dto.ScoreQuizRequest) (*domain.QuizResult, error)
}

type studyFlowServiceImpl struct {
	llm       domain.LLMClient
	extractor domain.TextExtractor
	selector  ContextSelector
	results   *flowResultCache
	validator *validation.Validator
}

// NewStudyFlowService wires the flows. resultCache may be nil to disable
// result caching.
func NewStudyFlowService(
	llm domain.LLMClient,
	extractor domain.TextExtractor,
	selector ContextSelector,
	resultCache domain.Cache,
	resultTTL time.Duration,
) StudyFlowService {
	if selector == nil {
		selector = NewContextSelector(nil, 0, 0)
	}
	return &studyFlowServiceImpl{
		llm:       llm,
		extractor: extractor,
		selector:  selector,
		results:   newFlowResultCache(resultCache, resultTTL),
		validator: validation.NewValidator(),
	}
}

// generate renders a prompt, calls the provider and decodes its JSON reply.
func (s *studyFlowServiceImpl) generate(ctx context.Context, flow string, tpl prompts.PromptTemplate, values map[string]any, media []domain.Media, out interface{}) error {
	prompt, err := renderPrompt(flow, tpl, values)
	if err != nil {
		return err
	}

	start := time.Now()
	raw, err := s.llm.Generate(ctx, domain.LLMRequest{Prompt: prompt, Media: media, JSONOutput: true})
	if err != nil {
		classified := domain.ClassifyLLMError(err)
		logger.Get().Error("Study flow failed",
			zap.String("flow", flow),
			zap.String("provider", s.llm.Name()),
			zap.Bool("overloaded", domain.IsCode(classified, domain.CodeLLMOverloaded)),
			zap.Error(err))
		return classified
	}
	logger.Get().Info("Study flow completed",
		zap.String("flow", flow),
		zap.String("provider", s.llm.Name()),
		zap.Duration("elapsed", time.Since(start)))

	return decodeLLMJSON(flow, raw, out)
}

func (s *studyFlowServiceImpl) ExtractText(ctx context.Context, req dto.ExtractTextRequest) (*dto.ExtractTextResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return cachedFlow(ctx, s.results, "extract-text", func(ctx context.Context) (*dto.ExtractTextResponse, error) {
		return s.extractText(ctx, req.PDFDataURI)
	}, req.PDFDataURI)
}

func (s *studyFlowServiceImpl) extractText(ctx context.Context, dataURI string) (*dto.ExtractTextResponse, error) {
	parsed, err := util.ParseDataURI(dataURI)
	if err != nil {
		return nil, domain.ValidationErrors{domain.NewInvalidFormatError("pdfDataUri", nil)}
	}
	isPDF := parsed.MIMEType == pdfMIMEType

	if s.llm.SupportsMedia() {
		var out struct {
			PDFText string `json:"pdfText"`
		}
		err := s.generate(ctx, "extract-text", extractTextPrompt, map[string]any{},
			[]domain.Media{{MIMEType: parsed.MIMEType, Data: parsed.Data}}, &out)
		if err != nil {
			return nil, err
		}
		if text := strings.TrimSpace(out.PDFText); text != "" {
			resp := &dto.ExtractTextResponse{PDFText: text}
			if isPDF && s.extractor != nil {
				if doc, err := s.extractor.ExtractText(ctx, parsed.Data); err == nil {
					resp.PageCount = doc.PageCount
				}
			}
			return resp, nil
		}
		logger.Get().Warn("LLM returned no text, falling back to local extraction")
	}

	if !isPDF || s.extractor == nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("cannot extract text from %s without a multimodal model", parsed.MIMEType))
	}

	doc, err := s.extractor.ExtractText(ctx, parsed.Data)
	if err != nil {
		return nil, domain.NewError(domain.CodeInvalidInput, "The uploaded file could not be read as a PDF", err)
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, domain.NewInvalidInputError("No extractable text found in the document")
	}
	return &dto.ExtractTextResponse{PDFText: doc.Text, PageCount: doc.PageCount}, nil
}

func (s *studyFlowServiceImpl) Summarize(ctx context.Context, req dto.SummarizeRequest) (*dto.SummarizeResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return cachedFlow(ctx, s.results, "summarize", func(ctx context.Context) (*dto.SummarizeResponse, error) {
		var out dto.SummarizeResponse
		if err := s.generate(ctx, "summarize", summarizePrompt, map[string]any{"pdfText": req.PDFText}, nil, &out); err != nil {
			return nil, err
		}
		out.Summary = strings.TrimSpace(out.Summary)
		if out.Summary == "" {
			return nil, domain.NewLLMServiceError(errors.New("summarize: empty summary"))
		}
		return &out, nil
	}, req.PDFText)
}

func (s *studyFlowServiceImpl) GenerateQuiz(ctx context.Context, req dto.GenerateQuizRequest) (*dto.GenerateQuizResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	n := req.NumberOfQuestions
	if n == 0 {
		n = defaultQuizQuestions
	}

	// Every request gets a new quiz, so results are never cached.
	var out dto.GenerateQuizResponse
	values := map[string]any{"pdfText": req.PDFText, "numberOfQuestions": n}
	if err := s.generate(ctx, "quiz", quizPrompt, values, nil, &out); err != nil {
		return nil, err
	}

	quiz := domain.NormalizeQuiz(out.Quiz)
	if dropped := len(out.Quiz) - len(quiz); dropped > 0 {
		logger.Get().Warn("Dropped malformed quiz items", zap.Int("dropped", dropped))
	}
	if len(quiz) == 0 {
		return nil, domain.NewLLMServiceError(errors.New("quiz: no usable questions in LLM response"))
	}
	if len(quiz) > n {
		quiz = quiz[:n]
	}
	return &dto.GenerateQuizResponse{Quiz: quiz}, nil
}

func (s *studyFlowServiceImpl) GenerateFlashcards(ctx context.Context, req dto.GenerateFlashcardsRequest) (*dto.GenerateFlashcardsResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return cachedFlow(ctx, s.results, "flashcards", func(ctx context.Context) (*dto.GenerateFlashcardsResponse, error) {
		var out dto.GenerateFlashcardsResponse
		values := map[string]any{"pdfText": req.PDFText, "count": flashcardCount}
		if err := s.generate(ctx, "flashcards", flashcardsPrompt, values, nil, &out); err != nil {
			return nil, err
		}
		cards := domain.NormalizeFlashcards(out.Flashcards)
		if len(cards) == 0 {
			return nil, domain.NewLLMServiceError(errors.New("flashcards: no usable cards in LLM response"))
		}
		if len(cards) > flashcardCount {
			cards = cards[:flashcardCount]
		}
		return &dto.GenerateFlashcardsResponse{Flashcards: cards}, nil
	}, req.PDFText)
}

func (s *studyFlowServiceImpl) GenerateNotes(ctx context.Context, req dto.GenerateNotesRequest) (*dto.GenerateNotesResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	length, err := domain.ParseNoteLength(req.NoteLength)
	if err != nil {
		return nil, domain.ValidationErrors{domain.NewInvalidFormatError("noteLength", req.NoteLength)}
	}

	return cachedFlow(ctx, s.results, "notes", func(ctx context.Context) (*dto.GenerateNotesResponse, error) {
		var out dto.GenerateNotesResponse
		values := map[string]any{"pdfText": req.PDFText, "noteLength": string(length)}
		if err := s.generate(ctx, "notes", notesPrompt, values, nil, &out); err != nil {
			return nil, err
		}
		out.Notes = strings.TrimSpace(out.Notes)
		if out.Notes == "" {
			return nil, domain.NewLLMServiceError(errors.New("notes: empty notes"))
		}
		return &out, nil
	}, req.PDFText, string(length))
}

func (s *studyFlowServiceImpl) AskQuestion(ctx context.Context, req dto.AskQuestionRequest) (*dto.AskQuestionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	var out dto.AskQuestionResponse
	values := map[string]any{
		"pdfContent": s.selector.Select(ctx, req.PDFContent, req.Question),
		"question":   req.Question,
	}
	if err := s.generate(ctx, "ask", askPrompt, values, nil, &out); err != nil {
		return nil, err
	}
	out.Answer = strings.TrimSpace(out.Answer)
	return &out, nil
}

func (s *studyFlowServiceImpl) Chat(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	var out dto.ChatResponse
	values := map[string]any{
		"pdfContent":    s.selector.Select(ctx, req.PDFContent, req.UserInput),
		"history":       toPromptTurns(dto.ToChatMessages(req.History)),
		"userInput":     req.UserInput,
		"courtesyReply": courtesyReply,
	}
	if err := s.generate(ctx, "chat", chatPrompt, values, nil, &out); err != nil {
		return nil, err
	}
	out.AIResponse = strings.TrimSpace(out.AIResponse)
	if out.AIResponse == "" {
		return nil, domain.NewLLMServiceError(errors.New("chat: empty response"))
	}
	return &out, nil
}

func (s *studyFlowServiceImpl) SuggestVideos(ctx context.Context, req dto.SuggestVideosRequest) (*dto.SuggestVideosResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return cachedFlow(ctx, s.results, "videos", func(ctx context.Context) (*dto.SuggestVideosResponse, error) {
		var out dto.SuggestVideosResponse
		values := map[string]any{"pdfContent": req.PDFContent, "count": videoSuggestionCount}
		if err := s.generate(ctx, "videos", videosPrompt, values, nil, &out); err != nil {
			return nil, err
		}

		videos := make([]domain.VideoSuggestion, 0, len(out.VideoSuggestions))
		for _, v := range out.VideoSuggestions {
			v.Title = strings.TrimSpace(v.Title)
			v.URL = strings.TrimSpace(v.URL)
			if v.Title == "" || !isHTTPURL(v.URL) {
				continue
			}
			videos = append(videos, v)
			if len(videos) == videoSuggestionCount {
				break
			}
		}
		return &dto.SuggestVideosResponse{VideoSuggestions: videos}, nil
	}, req.PDFContent)
}

func (s *studyFlowServiceImpl) ScoreQuiz(ctx context.Context, req dto.ScoreQuizRequest) (*domain.QuizResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	answers, errs := dto.ParseAnswers(req.Answers)
	if len(errs) > 0 {
		return nil, errs
	}
	result := domain.ScoreQuiz(req.Quiz, answers)
	return &result, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
