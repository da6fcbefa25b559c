package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/edunotes-api/internal/middleware"
	"github.com/noah-isme/edunotes-api/internal/models"
)

// Handlers groups every API handler mounted under the API prefix.
type Handlers struct {
	Auth          *AuthHandler
	Notes         *NoteHandler
	Notifications *NotificationHandler
	Bookmarks     *BookmarkHandler
	Profile       *ProfileHandler
	Feedback      *FeedbackHandler
	Dashboard     *DashboardHandler
	Exports       *ExportHandler
}

// RegisterRoutes mounts the API on group. Exports routes are skipped when h.Exports is nil.
func RegisterRoutes(group *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator, logger *zap.Logger) {
	group.Use(middleware.WithResponseMeta())

	auth := group.Group("/auth")
	auth.POST("/admin", h.Auth.AdminLogin)
	auth.POST("/student", h.Auth.StudentLogin)

	if h.Exports != nil {
		group.GET("/exports/:token", h.Exports.Download)
	}

	secured := group.Group("")
	secured.Use(middleware.JWT(tokens))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	studentOnly := middleware.RequireRoles(models.RoleStudent)
	anyone := middleware.RequireRoles(models.RoleAdmin, models.RoleStudent)

	notes := secured.Group("/notes")
	notes.GET("", anyone, h.Notes.List)
	notes.GET("/recent", anyone, h.Notes.Recent)
	notes.GET("/subjects", anyone, h.Notes.Subjects)
	notes.GET("/:id/download", anyone, h.Notes.Download)
	notes.POST("", adminOnly, middleware.Audit(logger, "note.upload"), h.Notes.Upload)
	notes.DELETE("/:id", adminOnly, middleware.Audit(logger, "note.delete"), h.Notes.Delete)

	notifications := secured.Group("/notifications")
	notifications.GET("", anyone, h.Notifications.List)
	notifications.POST("", adminOnly, middleware.Audit(logger, "notification.create"), h.Notifications.Create)
	notifications.POST("/:id/read", anyone, h.Notifications.MarkRead)

	bookmarks := secured.Group("/bookmarks", studentOnly)
	bookmarks.GET("", h.Bookmarks.List)
	bookmarks.POST("/:noteId/toggle", h.Bookmarks.Toggle)
	bookmarks.PUT("/:noteId", h.Bookmarks.Add)
	bookmarks.DELETE("/:noteId", h.Bookmarks.Remove)

	profile := secured.Group("/profile", studentOnly)
	profile.GET("", h.Profile.Get)
	profile.PUT("", h.Profile.Upsert)

	feedback := secured.Group("/feedback")
	feedback.POST("", studentOnly, h.Feedback.Submit)
	feedback.GET("", adminOnly, h.Feedback.List)
	feedback.PATCH("/:id/status", adminOnly, middleware.Audit(logger, "feedback.status"), h.Feedback.SetStatus)

	secured.GET("/dashboard", studentOnly, h.Dashboard.Student)

	admin := secured.Group("/admin", adminOnly)
	admin.GET("/stats", h.Dashboard.Admin)
	if h.Exports != nil {
		admin.POST("/exports", middleware.Audit(logger, "export.request"), h.Exports.Create)
		admin.GET("/exports/:id", h.Exports.Status)
	}
}
