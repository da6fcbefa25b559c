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

type profileRepository interface {
	Get(ctx context.Context, studentID models.StudentID) (*models.StudentProfile, error)
	Upsert(ctx context.Context, profile models.StudentProfile) error
}

// ProfileService reads and saves student profiles.
type ProfileService struct {
	repo      profileRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo profileRepository, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{repo: repo, validator: validate, logger: logger}
}

// Get returns the stored profile.
func (s *ProfileService) Get(ctx context.Context, studentID models.StudentID) (*models.StudentProfile, error) {
	profile, err := s.repo.Get(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Internal(err, "failed to load profile")
	}
	return profile, nil
}

// Upsert replaces the student's profile.
func (s *ProfileService) Upsert(ctx context.Context, studentID models.StudentID, req models.UpsertProfileRequest) (*models.StudentProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid profile payload")
	}
	semester := models.Semester(req.CurrentSemester)
	if !semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "current_semester must be between 1 and 8")
	}
	profile := models.StudentProfile{
		StudentID:       studentID,
		CurrentSemester: semester,
		Name:            strings.TrimSpace(req.Name),
		Course:          strings.TrimSpace(req.Course),
	}
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, appErrors.Internal(err, "failed to save profile")
	}
	s.logger.Info("profile saved", zap.String("student_id", string(studentID)), zap.Int("semester", req.CurrentSemester))
	return &profile, nil
}
