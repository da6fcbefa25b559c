package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/pkg/response"
)

type authService interface {
	AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.SessionResponse, error)
	StudentLogin(ctx context.Context, req models.StudentLoginRequest) (*models.SessionResponse, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// AdminLogin godoc
// @Summary Start an admin session
// @Description Exchange the shared admin code for an access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.AdminLoginRequest true "Admin code"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/admin [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid login payload"))
		return
	}

	res, err := h.service.AdminLogin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

// StudentLogin godoc
// @Summary Start a student session
// @Description Identify as a student; the stored profile is returned when present
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.StudentLoginRequest true "Student id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/student [post]
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req models.StudentLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid login payload"))
		return
	}

	res, err := h.service.StudentLogin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}
