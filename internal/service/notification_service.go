package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edunotes-api/internal/models"
	appErrors "github.com/noah-isme/edunotes-api/pkg/errors"
)

type notificationRepository interface {
	ListAll(ctx context.Context) ([]models.Notification, error)
	Add(ctx context.Context, n *models.Notification) error
	MarkRead(ctx context.Context, id models.NotificationID) error
	VisibleTo(ctx context.Context, semester models.Semester) ([]models.Notification, error)
}

// NotificationList is a viewer's notifications and how many are unread.
type NotificationList struct {
	Items       []models.Notification
	UnreadCount int
}

// NotificationService broadcasts and lists notifications.
type NotificationService struct {
	repo      notificationRepository
	profiles  profileReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(repo notificationRepository, profiles profileReader, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = defaultValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, profiles: profiles, validator: validate, logger: logger}
}

// List returns every notification for admins and the targeted ones for students.
func (s *NotificationService) List(ctx context.Context, viewer Viewer) (*NotificationList, error) {
	var (
		items []models.Notification
		err   error
	)
	if viewer.IsAdmin() {
		items, err = s.repo.ListAll(ctx)
	} else {
		semester, semErr := viewerSemester(ctx, s.profiles, viewer)
		if semErr != nil {
			return nil, semErr
		}
		items, err = s.repo.VisibleTo(ctx, semester)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load notifications")
	}
	unread := 0
	for _, n := range items {
		if !n.IsRead {
			unread++
		}
	}
	return &NotificationList{Items: items, UnreadCount: unread}, nil
}

// Create broadcasts a notification to everyone or to one semester.
func (s *NotificationService) Create(ctx context.Context, req models.CreateNotificationRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid notification payload")
	}
	audience, err := models.ParseAudience(req.TargetSemester)
	if err != nil {
		return nil, validationError(err, "invalid target semester")
	}
	n := &models.Notification{
		Title:          strings.TrimSpace(req.Title),
		Message:        strings.TrimSpace(req.Message),
		TargetSemester: audience,
	}
	if err := s.repo.Add(ctx, n); err != nil {
		return nil, appErrors.Internal(err, "failed to create notification")
	}
	s.logger.Info("notification broadcast", zap.String("notification_id", string(n.ID)), zap.String("target", string(n.TargetSemester)))
	return n, nil
}

// MarkRead marks a notification as read. Unknown ids are ignored.
func (s *NotificationService) MarkRead(ctx context.Context, id models.NotificationID) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to mark notification as read")
	}
	return nil
}
