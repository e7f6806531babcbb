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

type documentService interface {
	List(ctx context.Context) ([]models.Document, error)
	Get(ctx context.Context, id string) (*models.Document, error)
	Upload(ctx context.Context, req service.UploadDocumentRequest) (*models.Document, error)
	CreateFromText(ctx context.Context, req service.CreateTextDocumentRequest) (*models.Document, error)
	Delete(ctx context.Context, id string) error
}

type documentReviews interface {
	Reviews(ctx context.Context, documentID string) ([]models.Review, error)
}

// DocumentHandler exposes study material endpoints.
type DocumentHandler struct {
	service documentService
	reviews documentReviews
}

// NewDocumentHandler builds a document handler. reviews may be nil.
func NewDocumentHandler(service documentService, reviews documentReviews) *DocumentHandler {
	return &DocumentHandler{service: service, reviews: reviews}
}

// List godoc
// @Summary List study documents
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	items := make([]dto.DocumentItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, dto.NewDocumentItem(d))
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// Get godoc
// @Summary Get a document with its notes and reviews
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	detail := dto.NewDocumentDetail(*doc)
	if h.reviews != nil {
		reviews, err := h.reviews.Reviews(c.Request.Context(), doc.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		detail.Reviews = reviews
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Upload godoc
// @Summary Upload lecture material
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF or text file"
// @Success 201 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable upload"))
		return
	}
	defer file.Close()

	doc, err := h.service.Upload(c.Request.Context(), service.UploadDocumentRequest{Filename: header.Filename, Content: file})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewDocumentItem(*doc))
}

// CreateText godoc
// @Summary Create a document from pasted notes
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body service.CreateTextDocumentRequest true "Notes payload"
// @Success 201 {object} response.Envelope
// @Router /documents/text [post]
func (h *DocumentHandler) CreateText(c *gin.Context) {
	var req service.CreateTextDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload"))
		return
	}
	doc, err := h.service.CreateFromText(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewDocumentDetail(*doc))
}

// Delete godoc
// @Summary Delete a document and its reviews
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
