package repository

import (
	"context"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/store"
)

// ProfileRepository stores one profile per student.
type ProfileRepository struct {
	profiles *collection[models.StudentProfile]
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(s store.Store) *ProfileRepository {
	return &ProfileRepository{profiles: newCollection[models.StudentProfile](s, KeyProfiles)}
}

// Get returns the profile for studentID or ErrNotFound.
func (r *ProfileRepository) Get(ctx context.Context, studentID models.StudentID) (*models.StudentProfile, error) {
	items, err := r.profiles.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].StudentID == studentID {
			return &items[i], nil
		}
	}
	return nil, ErrNotFound
}

// Upsert replaces the profile with the same student id, or appends it.
func (r *ProfileRepository) Upsert(ctx context.Context, profile models.StudentProfile) error {
	if err := profile.Validate(); err != nil {
		return invalidRecord("profile", err)
	}
	return r.profiles.update(ctx, func(items []models.StudentProfile) ([]models.StudentProfile, bool, error) {
		for i := range items {
			if items[i].StudentID == profile.StudentID {
				items[i] = profile
				return items, true, nil
			}
		}
		return append(items, profile), true, nil
	})
}

// ListAll returns every stored profile.
func (r *ProfileRepository) ListAll(ctx context.Context) ([]models.StudentProfile, error) {
	return r.profiles.read(ctx)
}
