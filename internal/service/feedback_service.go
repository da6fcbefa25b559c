package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/repository"
	appErrors "github.com/noah-isme/edunotes-api/pkg/errors"
)

type feedbackRepository interface {
	Add(ctx context.Context, fb *models.Feedback) error
	ListAll(ctx context.Context) ([]models.Feedback, error)
	ListByStatus(ctx context.Context, status models.FeedbackStatus) ([]models.Feedback, error)
	SetStatus(ctx context.Context, id models.FeedbackID, status models.FeedbackStatus) (*models.Feedback, error)
}

// FeedbackService handles student submissions and their review.
type FeedbackService struct {
	repo      feedbackRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(repo feedbackRepository, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{repo: repo, validator: validate, logger: logger}
}

// Submit records feedback from a student in pending status.
func (s *FeedbackService) Submit(ctx context.Context, studentID models.StudentID, req models.SubmitFeedbackRequest) (*models.Feedback, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid feedback payload")
	}
	feedbackType, err := models.ParseFeedbackType(req.Type)
	if err != nil {
		return nil, validationError(err, "invalid feedback type")
	}
	fb := &models.Feedback{
		StudentID: studentID,
		Type:      feedbackType,
		Title:     strings.TrimSpace(req.Title),
		Message:   strings.TrimSpace(req.Message),
	}
	if err := s.repo.Add(ctx, fb); err != nil {
		return nil, appErrors.Internal(err, "failed to submit feedback")
	}
	s.logger.Info("feedback submitted", zap.String("feedback_id", string(fb.ID)), zap.String("type", string(fb.Type)))
	return fb, nil
}

// List returns all feedback, or only entries in status when it is not empty.
func (s *FeedbackService) List(ctx context.Context, status string) ([]models.Feedback, error) {
	var (
		items []models.Feedback
		err   error
	)
	if status == "" {
		items, err = s.repo.ListAll(ctx)
	} else {
		parsed, parseErr := models.ParseFeedbackStatus(status)
		if parseErr != nil {
			return nil, validationError(parseErr, "invalid status filter")
		}
		items, err = s.repo.ListByStatus(ctx, parsed)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load feedback")
	}
	return items, nil
}

// SetStatus advances a feedback entry. Status only moves forward.
func (s *FeedbackService) SetStatus(ctx context.Context, id models.FeedbackID, req models.UpdateFeedbackStatusRequest) (*models.Feedback, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}
	status, err := models.ParseFeedbackStatus(req.Status)
	if err != nil {
		return nil, validationError(err, "invalid status")
	}
	fb, err := s.repo.SetStatus(ctx, id, status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "feedback not found")
		case errors.Is(err, repository.ErrStatusRegression):
			return nil, appErrors.Clone(appErrors.ErrConflict, err.Error())
		}
		return nil, appErrors.Internal(err, "failed to update feedback status")
	}
	s.logger.Info("feedback status updated", zap.String("feedback_id", string(id)), zap.String("status", string(status)))
	return fb, nil
}
