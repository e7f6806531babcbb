package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/typemnm/Mornoningo/internal/dto"
	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/internal/service"
	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
	"github.com/typemnm/Mornoningo/pkg/response"
)

type quizService interface {
	Current() models.QuizSession
	Prepare(ctx context.Context, documentID string, opts service.PrepareOptions) (*models.QuizSession, error)
	Regenerate(ctx context.Context) (*models.QuizSession, error)
	StartRandom(ctx context.Context) (*models.QuizSession, error)
	Open() (*models.QuizSession, error)
	SubmitAnswer(ctx context.Context, optionIndex *int) (*service.AnswerResult, error)
	Abandon(ctx context.Context) error
}

// QuizHandler drives the quiz session over HTTP.
type QuizHandler struct {
	service quizService
}

// NewQuizHandler builds a quiz handler.
func NewQuizHandler(service quizService) *QuizHandler {
	return &QuizHandler{service: service}
}

// Current godoc
// @Summary Get the current quiz session
// @Tags Quiz
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /quiz [get]
func (h *QuizHandler) Current(c *gin.Context) {
	response.JSON(c, http.StatusOK, dto.NewQuizView(h.service.Current()), nil)
}

// Prepare godoc
// @Summary Prepare a question set for a document
// @Tags Quiz
// @Accept json
// @Produce json
// @Param payload body dto.PrepareQuizRequest true "Prepare payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /quiz/prepare [post]
func (h *QuizHandler) Prepare(c *gin.Context) {
	var req dto.PrepareQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid prepare payload"))
		return
	}
	session, err := h.service.Prepare(c.Request.Context(), req.DocumentID, service.PrepareOptions{
		ForceRegenerate: req.ForceRegenerate,
		CacheOnly:       req.CacheOnly,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if session == nil {
		response.JSON(c, http.StatusAccepted, gin.H{"documentId": req.DocumentID, "cached": true}, nil)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewQuizView(*session), nil)
}

// Regenerate godoc
// @Summary Regenerate questions for the last quizzed document
// @Tags Quiz
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /quiz/regenerate [post]
func (h *QuizHandler) Regenerate(c *gin.Context) {
	h.respondSession(c, h.service.Regenerate)
}

// Random godoc
// @Summary Start a quick quiz on a random document
// @Tags Quiz
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /quiz/random [post]
func (h *QuizHandler) Random(c *gin.Context) {
	h.respondSession(c, h.service.StartRandom)
}

// Open godoc
// @Summary Open the prepared question set
// @Tags Quiz
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /quiz/open [post]
func (h *QuizHandler) Open(c *gin.Context) {
	session, err := h.service.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewQuizView(*session), nil)
}

// Answer godoc
// @Summary Answer the current question
// @Tags Quiz
// @Accept json
// @Produce json
// @Param payload body dto.AnswerRequest true "Answer payload"
// @Success 200 {object} response.Envelope
// @Router /quiz/answer [post]
func (h *QuizHandler) Answer(c *gin.Context) {
	var req dto.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid answer payload"))
		return
	}
	if req.OptionIndex == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "optionIndex required"))
		return
	}
	result, err := h.service.SubmitAnswer(c.Request.Context(), req.OptionIndex)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, map[string]interface{}{"session": dto.NewQuizView(h.service.Current())})
}

// Abandon godoc
// @Summary Abandon the current session
// @Tags Quiz
// @Success 204
// @Router /quiz [delete]
func (h *QuizHandler) Abandon(c *gin.Context) {
	if err := h.service.Abandon(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *QuizHandler) respondSession(c *gin.Context, fn func(context.Context) (*models.QuizSession, error)) {
	session, err := fn(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewQuizView(*session), nil)
}
