package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edunotes-api/internal/middleware"
	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/service"
	"github.com/noah-isme/edunotes-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context, viewer service.Viewer) (*service.NotificationList, error)
	Create(ctx context.Context, req models.CreateNotificationRequest) (*models.Notification, error)
	MarkRead(ctx context.Context, id models.NotificationID) error
}

// NotificationHandler serves announcements.
type NotificationHandler struct {
	service      notificationService
	refreshAfter int
}

// NewNotificationHandler constructs a NotificationHandler. refreshAfterSeconds is echoed to clients as a polling hint.
func NewNotificationHandler(svc notificationService, refreshAfterSeconds int) *NotificationHandler {
	return &NotificationHandler{service: svc, refreshAfter: refreshAfterSeconds}
}

// List godoc
// @Summary List notifications
// @Description Students receive broadcasts and those targeted at their semester
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	viewer, ok := viewerFromContext(c)
	if !ok {
		return
	}
	list, err := h.service.List(c.Request.Context(), viewer)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "unread_count", list.UnreadCount)
	if h.refreshAfter > 0 {
		middleware.SetMeta(c, "refresh_after_seconds", h.refreshAfter)
	}
	respond(c, http.StatusOK, list.Items)
}

// Create godoc
// @Summary Broadcast a notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body models.CreateNotificationRequest true "Notification"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	var req models.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid notification payload"))
		return
	}
	n, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusCreated, n)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(c.Request.Context(), models.NotificationID(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
