package service

import (
	"context"
	"errors"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/repository"
	appErrors "github.com/noah-isme/edunotes-api/pkg/errors"
)

// Viewer identifies who is calling a use case.
type Viewer struct {
	Role      models.UserRole
	StudentID models.StudentID
}

// AdminViewer is the unrestricted viewer.
func AdminViewer() Viewer {
	return Viewer{Role: models.RoleAdmin}
}

// StudentViewer is a semester-gated viewer.
func StudentViewer(id models.StudentID) Viewer {
	return Viewer{Role: models.RoleStudent, StudentID: id}
}

// IsAdmin reports whether access filters are bypassed.
func (v Viewer) IsAdmin() bool {
	return v.Role == models.RoleAdmin
}

type profileReader interface {
	Get(ctx context.Context, studentID models.StudentID) (*models.StudentProfile, error)
}

// viewerSemester returns 0 for admins and the declared semester for students.
func viewerSemester(ctx context.Context, profiles profileReader, viewer Viewer) (models.Semester, error) {
	if viewer.IsAdmin() {
		return 0, nil
	}
	if viewer.StudentID == "" {
		return 0, appErrors.ErrUnauthorized
	}
	profile, err := profiles.Get(ctx, viewer.StudentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, "save your profile with the current semester first")
		}
		return 0, appErrors.Internal(err, "failed to load profile")
	}
	return profile.CurrentSemester, nil
}

func validationError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
