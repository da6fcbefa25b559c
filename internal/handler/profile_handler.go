package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/pkg/response"
)

type profileService interface {
	Get(ctx context.Context, studentID models.StudentID) (*models.StudentProfile, error)
	Upsert(ctx context.Context, studentID models.StudentID, req models.UpsertProfileRequest) (*models.StudentProfile, error)
}

// ProfileHandler serves the calling student's profile.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(svc profileService) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// Get godoc
// @Summary Get my profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	profile, err := h.service.Get(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, profile)
}

// Upsert godoc
// @Summary Save my profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body models.UpsertProfileRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profile [put]
func (h *ProfileHandler) Upsert(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	var req models.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid profile payload"))
		return
	}
	profile, err := h.service.Upsert(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, profile)
}
