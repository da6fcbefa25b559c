package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edunotes-api/internal/middleware"
	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/service"
	appErrors "github.com/noah-isme/edunotes-api/pkg/errors"
	"github.com/noah-isme/edunotes-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.ClaimsFromContext(c)
}

// viewerFromContext maps session claims to a service viewer, writing 401 when absent.
func viewerFromContext(c *gin.Context) (service.Viewer, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return service.Viewer{}, false
	}
	if claims.Role == models.RoleAdmin {
		return service.AdminViewer(), true
	}
	return service.StudentViewer(claims.StudentID), true
}

// studentFromContext returns the calling student's id, writing 401/403 for other callers.
func studentFromContext(c *gin.Context) (models.StudentID, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	if claims.Role != models.RoleStudent || claims.StudentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "student session required"))
		return "", false
	}
	return claims.StudentID, true
}

func bindError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func respond(c *gin.Context, status int, data interface{}) {
	response.JSON(c, status, data, middleware.StampProcessingTime(c))
}
