package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/store"
)

// ErrStatusRegression is returned when a feedback status would move backwards.
var ErrStatusRegression = errors.New("feedback status cannot move backwards")

// FeedbackRepository manages student feedback.
type FeedbackRepository struct {
	feedback *collection[models.Feedback]
	clock    Clock
}

// NewFeedbackRepository constructs a FeedbackRepository.
func NewFeedbackRepository(s store.Store, clock Clock) *FeedbackRepository {
	if clock == nil {
		clock = time.Now
	}
	return &FeedbackRepository{feedback: newCollection[models.Feedback](s, KeyFeedback), clock: clock}
}

// Add prepends a feedback entry. The id, submission time and pending status are always set here.
func (r *FeedbackRepository) Add(ctx context.Context, fb *models.Feedback) error {
	fb.ID = models.FeedbackID(uuid.NewString())
	fb.Status = models.FeedbackStatusPending
	fb.SubmittedAt = r.clock().UTC()
	if err := fb.Validate(); err != nil {
		return invalidRecord("feedback", err)
	}
	return r.feedback.update(ctx, func(items []models.Feedback) ([]models.Feedback, bool, error) {
		return prepend(items, *fb), true, nil
	})
}

// ListAll returns every feedback entry, newest first.
func (r *FeedbackRepository) ListAll(ctx context.Context) ([]models.Feedback, error) {
	return r.feedback.read(ctx)
}

// ListByStatus returns entries in the given status, newest first.
func (r *FeedbackRepository) ListByStatus(ctx context.Context, status models.FeedbackStatus) ([]models.Feedback, error) {
	items, err := r.feedback.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Feedback, 0, len(items))
	for _, fb := range items {
		if fb.Status == status {
			out = append(out, fb)
		}
	}
	return out, nil
}

// Get returns the entry with the given id.
func (r *FeedbackRepository) Get(ctx context.Context, id models.FeedbackID) (*models.Feedback, error) {
	items, err := r.feedback.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, ErrNotFound
}

// SetStatus moves an entry forward along pending, reviewed, resolved. Setting the
// current status again is a no-op; moving backwards returns ErrStatusRegression.
func (r *FeedbackRepository) SetStatus(ctx context.Context, id models.FeedbackID, status models.FeedbackStatus) (*models.Feedback, error) {
	var updated *models.Feedback
	err := r.feedback.update(ctx, func(items []models.Feedback) ([]models.Feedback, bool, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if !items[i].Status.CanAdvanceTo(status) {
				return nil, false, ErrStatusRegression
			}
			changed := items[i].Status != status
			items[i].Status = status
			fb := items[i]
			updated = &fb
			return items, changed, nil
		}
		return nil, false, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
