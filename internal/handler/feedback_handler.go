package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/pkg/response"
)

type feedbackService interface {
	Submit(ctx context.Context, studentID models.StudentID, req models.SubmitFeedbackRequest) (*models.Feedback, error)
	List(ctx context.Context, status string) ([]models.Feedback, error)
	SetStatus(ctx context.Context, id models.FeedbackID, req models.UpdateFeedbackStatusRequest) (*models.Feedback, error)
}

// FeedbackHandler serves feedback submission and review.
type FeedbackHandler struct {
	service feedbackService
}

// NewFeedbackHandler constructs a FeedbackHandler.
func NewFeedbackHandler(svc feedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: svc}
}

// Submit godoc
// @Summary Submit feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Param payload body models.SubmitFeedbackRequest true "Feedback"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	var req models.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid feedback payload"))
		return
	}
	fb, err := h.service.Submit(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusCreated, fb)
}

// List godoc
// @Summary List feedback
// @Tags Feedback
// @Produce json
// @Param status query string false "pending, reviewed or resolved"
// @Success 200 {object} response.Envelope
// @Router /feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, items)
}

// SetStatus godoc
// @Summary Advance feedback status
// @Tags Feedback
// @Accept json
// @Produce json
// @Param id path string true "Feedback ID"
// @Param payload body models.UpdateFeedbackStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /feedback/{id}/status [patch]
func (h *FeedbackHandler) SetStatus(c *gin.Context) {
	var req models.UpdateFeedbackStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid status payload"))
		return
	}
	fb, err := h.service.SetStatus(c.Request.Context(), models.FeedbackID(c.Param("id")), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, fb)
}
