package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/pkg/response"
)

type exportService interface {
	Request(ctx context.Context, req models.CreateExportRequest) (*models.ExportJob, error)
	Status(ctx context.Context, id string) (*models.ExportJob, error)
	Download(token string) (*models.NoteDownload, error)
}

// ExportHandler exposes catalog exports.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Create godoc
// @Summary Queue a catalog export
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body models.CreateExportRequest true "Export format"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var req models.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid export payload"))
		return
	}
	job, err := h.service.Request(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusAccepted, job)
}

// Status godoc
// @Summary Export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	job, err := h.service.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, job)
}

// Download godoc
// @Summary Download an export through its signed link
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.service.Download(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.FileName, file.ContentType, file.Data)
}
