package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-board-api/internal/service"
	"github.com/noah-isme/school-board-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, format string) (*service.ExportResult, error)
}

// ExportHandler serves board downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Export godoc
// @Summary Download every post as CSV or PDF
// @Tags Export
// @Produce octet-stream
// @Param format path string true "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Router /api/export/{format} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	result, err := h.service.Export(c.Request.Context(), c.Param("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
