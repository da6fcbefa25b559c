package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edunotes-api/internal/middleware"
	"github.com/noah-isme/edunotes-api/internal/models"
	appErrors "github.com/noah-isme/edunotes-api/pkg/errors"
	"github.com/noah-isme/edunotes-api/pkg/response"
)

type dashboardService interface {
	Student(ctx context.Context, studentID models.StudentID) (*models.StudentDashboard, error)
	Admin(ctx context.Context) (*models.AdminStats, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Student godoc
// @Summary Student dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	studentID, ok := studentFromContext(c)
	if !ok {
		return
	}
	dash, err := h.service.Student(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "refresh_after_seconds", dash.RefreshAfterSeconds)
	respond(c, http.StatusOK, dash)
}

// Admin godoc
// @Summary Admin statistics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	stats, err := h.service.Admin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, stats)
}
