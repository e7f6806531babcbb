package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/internal/service"
	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
)

type quizServiceMock struct {
	current      models.QuizSession
	prepareResp  *models.QuizSession
	prepareErr   error
	lastDocID    string
	lastOpts     service.PrepareOptions
	openErr      error
	answerResp   *service.AnswerResult
	answerErr    error
	lastAnswer   *int
	abandonErr   error
	randomCalled bool
}

func (m *quizServiceMock) Current() models.QuizSession { return m.current }

func (m *quizServiceMock) Prepare(ctx context.Context, documentID string, opts service.PrepareOptions) (*models.QuizSession, error) {
	m.lastDocID = documentID
	m.lastOpts = opts
	return m.prepareResp, m.prepareErr
}

func (m *quizServiceMock) Regenerate(ctx context.Context) (*models.QuizSession, error) {
	return m.prepareResp, m.prepareErr
}

func (m *quizServiceMock) StartRandom(ctx context.Context) (*models.QuizSession, error) {
	m.randomCalled = true
	return m.prepareResp, m.prepareErr
}

func (m *quizServiceMock) Open() (*models.QuizSession, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	s := m.current
	return &s, nil
}

func (m *quizServiceMock) SubmitAnswer(ctx context.Context, optionIndex *int) (*service.AnswerResult, error) {
	m.lastAnswer = optionIndex
	return m.answerResp, m.answerErr
}

func (m *quizServiceMock) Abandon(ctx context.Context) error { return m.abandonErr }

func activeSession() models.QuizSession {
	return models.QuizSession{
		DocumentID: "doc_1",
		Title:      "Networks.pdf",
		Phase:      models.PhaseActive,
		Started:    true,
		Questions: []models.Question{
			{Q: "Which layer routes packets?", Options: []string{"Link", "Network"}, Correct: 1, Explanation: "IP"},
			{Q: "Which is connectionless?", Options: []string{"UDP", "TCP"}, Correct: 0},
		},
	}
}

func jsonRequest(method, path, body string) *http.Request {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestQuizHandlerCurrentHidesAnswer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewQuizHandler(&quizServiceMock{current: activeSession()})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/quiz", nil)

	handler.Current(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "explanation")
	assert.NotContains(t, w.Body.String(), `"correct"`)

	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
	assert.Equal(t, "Which layer routes packets?", data["question"].(map[string]interface{})["q"])
}

func TestQuizHandlerPrepare(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ready := activeSession()
	ready.Phase = models.PhaseReady
	mockSvc := &quizServiceMock{prepareResp: &ready}
	handler := NewQuizHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/quiz/prepare", `{"documentId":"doc_1","forceRegenerate":true}`)

	handler.Prepare(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "doc_1", mockSvc.lastDocID)
	assert.True(t, mockSvc.lastOpts.ForceRegenerate)
	assert.Nil(t, decodeEnvelope(t, w)["data"].(map[string]interface{})["question"])
}

func TestQuizHandlerPrepareCacheOnlyAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &quizServiceMock{}
	handler := NewQuizHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/quiz/prepare", `{"documentId":"doc_1","cacheOnly":true}`)

	handler.Prepare(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, mockSvc.lastOpts.CacheOnly)
}

func TestQuizHandlerPrepareRequiresDocument(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &quizServiceMock{}
	handler := NewQuizHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/quiz/prepare", `{}`)

	handler.Prepare(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mockSvc.lastDocID)
}

func TestQuizHandlerPrepareAdapterFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewQuizHandler(&quizServiceMock{prepareErr: appErrors.ErrAdapterFailure})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/quiz/prepare", `{"documentId":"doc_1"}`)

	handler.Prepare(c)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestQuizHandlerOpenEmptySession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewQuizHandler(&quizServiceMock{openErr: appErrors.ErrEmptySession})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/quiz/open", nil)

	handler.Open(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestQuizHandlerAnswer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	session := activeSession()
	session.CurrentIndex = 1
	session.Score = 10
	mockSvc := &quizServiceMock{
		current:    session,
		answerResp: &service.AnswerResult{Correct: true, CorrectIndex: 1, Explanation: "IP", Score: 10},
	}
	handler := NewQuizHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/quiz/answer", `{"optionIndex":1}`)

	handler.Answer(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastAnswer)
	assert.Equal(t, 1, *mockSvc.lastAnswer)

	body := decodeEnvelope(t, w)
	assert.Equal(t, true, body["data"].(map[string]interface{})["correct"])
	next := body["meta"].(map[string]interface{})["session"].(map[string]interface{})
	assert.Equal(t, float64(1), next["currentIndex"])
}

func TestQuizHandlerAnswerRequiresOption(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &quizServiceMock{}
	handler := NewQuizHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/quiz/answer", `{}`)

	handler.Answer(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, mockSvc.lastAnswer)
}

func TestQuizHandlerAnswerWithoutActiveQuestion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewQuizHandler(&quizServiceMock{answerErr: appErrors.ErrNoActiveQuestion})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/quiz/answer", `{"optionIndex":0}`)

	handler.Answer(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestQuizHandlerRandomAndAbandon(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ready := activeSession()
	ready.Phase = models.PhaseReady
	mockSvc := &quizServiceMock{prepareResp: &ready}
	handler := NewQuizHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/quiz/random", nil)
	handler.Random(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.randomCalled)

	mockSvc.abandonErr = appErrors.ErrEmptySession
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/quiz", nil)
	handler.Abandon(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}
