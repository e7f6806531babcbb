package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/pkg/config"
	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// RemoteSourceConfig tunes the remote generator.
type RemoteSourceConfig struct {
	Model          string
	NumQuestions   int
	MaxSourceChars int
	Timeout        time.Duration
}

// RemoteQuestionSource asks an OpenAI-compatible chat model to write questions from the
// extracted text of a document's upload. Failures are never retried here.
type RemoteQuestionSource struct {
	client    chatCompleter
	extractor TextExtractor
	cfg       RemoteSourceConfig
	logger    *zap.Logger
}

// NewOpenAIClient builds a go-openai client pointed at the configured endpoint.
func NewOpenAIClient(cfg config.GeneratorConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return openai.NewClientWithConfig(clientCfg)
}

// NewRemoteQuestionSource constructs the remote source.
func NewRemoteQuestionSource(client chatCompleter, extractor TextExtractor, cfg RemoteSourceConfig, logger *zap.Logger) *RemoteQuestionSource {
	if cfg.NumQuestions <= 0 {
		cfg.NumQuestions = 5
	}
	if cfg.MaxSourceChars <= 0 {
		cfg.MaxSourceChars = 8000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteQuestionSource{client: client, extractor: extractor, cfg: cfg, logger: logger}
}

func (s *RemoteQuestionSource) Name() string { return "remote" }

func (s *RemoteQuestionSource) FetchQuestions(ctx context.Context, doc models.Document) (*GeneratedQuestionSet, error) {
	if doc.FileID == "" {
		return nil, appErrors.ErrNoFileReference
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	text, err := s.extractor.ExtractText(ctx, doc.FileID)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrAdapterFailure, err, "failed to read document text")
	}
	text = truncateRunes(text, s.cfg.MaxSourceChars)
	if text == "" {
		return nil, appErrors.Clone(appErrors.ErrAdapterFailure, "document contains no extractable text")
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: 0.4,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildQuizPrompt(text, s.cfg.NumQuestions)},
		},
	})
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrAdapterFailure, err, "")
	}
	if len(resp.Choices) == 0 {
		return nil, appErrors.Clone(appErrors.ErrAdapterFailure, "generator returned no choices")
	}

	set, err := ParseQuizPayload(resp.Choices[0].Message.Content)
	if err != nil {
		s.logger.Warn("unusable generator payload", zap.String("document_id", doc.ID), zap.Error(err))
		return nil, appErrors.WrapAs(appErrors.ErrAdapterFailure, err, "")
	}
	set.Source = s.Name()
	return set, nil
}

const systemPrompt = "You write multiple-choice study quizzes from lecture material. Reply with JSON only."

func buildQuizPrompt(source string, numQuestions int) string {
	return fmt.Sprintf(`Extract the key concepts from the lecture material below and write a multiple-choice quiz.

Requirements:
- exactly %d questions
- 4 options per question
- a short explanation grounded in the material
- 3 to 5 concept notes the learner can review
- no text outside the JSON

JSON shape:
{
  "questions": [
    {"question": "...", "options": ["...", "...", "...", "..."], "correctIndex": 0, "explanation": "..."}
  ],
  "notes": [
    {"title": "Key topic", "summary": "One-line summary", "details": ["point 1", "point 2"], "tip": "Study tip"}
  ]
}

Lecture material (excerpt):
%s`, numQuestions, source)
}

func truncateRunes(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
