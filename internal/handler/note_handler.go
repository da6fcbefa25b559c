package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/service"
	appErrors "github.com/noah-isme/edunotes-api/pkg/errors"
	"github.com/noah-isme/edunotes-api/pkg/response"
)

type noteService interface {
	Search(ctx context.Context, viewer service.Viewer, query, semester, subject string) ([]models.Note, error)
	Recent(ctx context.Context, viewer service.Viewer, days, limit int) ([]models.Note, error)
	Subjects(ctx context.Context) ([]string, error)
	Upload(ctx context.Context, req models.UploadNoteRequest) (*models.Note, error)
	Download(ctx context.Context, viewer service.Viewer, id models.NoteID) (*models.NoteDownload, error)
	Delete(ctx context.Context, id models.NoteID) error
}

// NoteHandler serves the study material catalogue.
type NoteHandler struct {
	service        noteService
	maxUploadBytes int64
}

// NewNoteHandler constructs a NoteHandler. maxUploadBytes caps the request body; zero disables the cap.
func NewNoteHandler(svc noteService, maxUploadBytes int64) *NoteHandler {
	return &NoteHandler{service: svc, maxUploadBytes: maxUploadBytes}
}

// List godoc
// @Summary Search notes
// @Description Students only see notes up to their current semester
// @Tags Notes
// @Produce json
// @Param q query string false "Free-text query"
// @Param semester query string false "Semester (1-8) or all"
// @Param subject query string false "Subject or all"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	viewer, ok := viewerFromContext(c)
	if !ok {
		return
	}
	notes, err := h.service.Search(c.Request.Context(), viewer, c.Query("q"), c.Query("semester"), c.Query("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, notes)
}

// Recent godoc
// @Summary Recently uploaded notes
// @Tags Notes
// @Produce json
// @Param days query int false "Window in days"
// @Param limit query int false "Maximum notes"
// @Success 200 {object} response.Envelope
// @Router /notes/recent [get]
func (h *NoteHandler) Recent(c *gin.Context) {
	viewer, ok := viewerFromContext(c)
	if !ok {
		return
	}
	days, err := optionalInt(c, "days")
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := optionalInt(c, "limit")
	if err != nil {
		response.Error(c, err)
		return
	}
	notes, err := h.service.Recent(c.Request.Context(), viewer, days, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, notes)
}

// Subjects godoc
// @Summary Distinct subjects
// @Tags Notes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notes/subjects [get]
func (h *NoteHandler) Subjects(c *gin.Context) {
	subjects, err := h.service.Subjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, subjects)
}

// Upload godoc
// @Summary Upload a note
// @Description Accepts multipart form data with a file field, or JSON with a base64 data URL
// @Tags Notes
// @Accept json
// @Accept mpfd
// @Produce json
// @Param payload body models.UploadNoteRequest false "JSON payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /notes [post]
func (h *NoteHandler) Upload(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		// room for base64 expansion and form fields
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes*2)
	}

	var req models.UploadNoteRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := h.bindMultipart(c, &req); err != nil {
			response.Error(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, uploadBindError(err))
		return
	}

	note, err := h.service.Upload(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusCreated, note)
}

// Download godoc
// @Summary Download a note's file
// @Tags Notes
// @Produce octet-stream
// @Param id path string true "Note ID"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notes/{id}/download [get]
func (h *NoteHandler) Download(c *gin.Context) {
	viewer, ok := viewerFromContext(c)
	if !ok {
		return
	}
	file, err := h.service.Download(c.Request.Context(), viewer, models.NoteID(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.FileName, file.ContentType, file.Data)
}

// Delete godoc
// @Summary Delete a note
// @Tags Notes
// @Param id path string true "Note ID"
// @Success 204
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), models.NoteID(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *NoteHandler) bindMultipart(c *gin.Context, req *models.UploadNoteRequest) error {
	if err := c.ShouldBind(req); err != nil {
		return uploadBindError(err)
	}
	header, err := c.FormFile("file")
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		return appErrors.ErrPayloadTooLarge
	}
	file, err := header.Open()
	if err != nil {
		return bindError(err, "failed to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return bindError(err, "failed to read uploaded file")
	}
	req.Content = data
	if req.FileName == "" {
		req.FileName = header.Filename
	}
	req.ContentType = header.Header.Get("Content-Type")
	return nil
}

func uploadBindError(err error) *appErrors.Error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.Wrap(err, appErrors.ErrPayloadTooLarge.Code, appErrors.ErrPayloadTooLarge.Status, appErrors.ErrPayloadTooLarge.Message)
	}
	return bindError(err, "invalid note payload")
}

func optionalInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, key+" must be a non-negative integer")
	}
	return value, nil
}
