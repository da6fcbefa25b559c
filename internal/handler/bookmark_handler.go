package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/pkg/response"
)

type bookmarkService interface {
	List(ctx context.Context, studentID models.StudentID) ([]models.Note, error)
	Toggle(ctx context.Context, studentID models.StudentID, noteID models.NoteID) (*models.BookmarkToggleResult, error)
	Add(ctx context.Context, studentID models.StudentID, noteID models.NoteID) (*models.BookmarkToggleResult, error)
	Remove(ctx context.Context, studentID models.StudentID, noteID models.NoteID) error
}

// BookmarkHandler serves a student's saved notes.
type BookmarkHandler struct {
	service bookmarkService
}

// NewBookmarkHandler constructs a BookmarkHandler.
func NewBookmarkHandler(svc bookmarkService) *BookmarkHandler {
	return &BookmarkHandler{service: svc}
}

// List godoc
// @Summary List bookmarked notes
// @Tags Bookmarks
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bookmarks [get]
func (h *BookmarkHandler) List(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	notes, err := h.service.List(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, notes)
}

// Toggle godoc
// @Summary Toggle a bookmark
// @Tags Bookmarks
// @Produce json
// @Param noteId path string true "Note ID"
// @Success 200 {object} response.Envelope
// @Router /bookmarks/{noteId}/toggle [post]
func (h *BookmarkHandler) Toggle(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	res, err := h.service.Toggle(c.Request.Context(), studentID, models.NoteID(c.Param("noteId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

// Add godoc
// @Summary Bookmark a note
// @Tags Bookmarks
// @Produce json
// @Param noteId path string true "Note ID"
// @Success 200 {object} response.Envelope
// @Router /bookmarks/{noteId} [put]
func (h *BookmarkHandler) Add(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	res, err := h.service.Add(c.Request.Context(), studentID, models.NoteID(c.Param("noteId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

// Remove godoc
// @Summary Remove a bookmark
// @Tags Bookmarks
// @Param noteId path string true "Note ID"
// @Success 204
// @Router /bookmarks/{noteId} [delete]
func (h *BookmarkHandler) Remove(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Remove(c.Request.Context(), studentID, models.NoteID(c.Param("noteId"))); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
