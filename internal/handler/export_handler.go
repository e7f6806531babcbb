package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/typemnm/Mornoningo/internal/service"
	"github.com/typemnm/Mornoningo/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, kind, format string) (*service.ExportFile, error)
}

// ExportHandler renders study data as downloadable files.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds an export handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Download godoc
// @Summary Export reviews, documents or quiz history
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param kind path string true "reviews, documents or history"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /exports/{kind} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), c.Param("kind"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
