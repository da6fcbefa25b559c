package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/store"
)

// NotificationRepository manages broadcast notifications.
type NotificationRepository struct {
	notifications *collection[models.Notification]
	clock         Clock
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(s store.Store, clock Clock) *NotificationRepository {
	if clock == nil {
		clock = time.Now
	}
	return &NotificationRepository{
		notifications: newCollection[models.Notification](s, KeyNotifications),
		clock:         clock,
	}
}

// EnsureSeeded writes the welcome notification, dated today, when the collection has never been stored.
func (r *NotificationRepository) EnsureSeeded(ctx context.Context) error {
	seed, err := loadSeed()
	if err != nil {
		return err
	}
	today := models.NewDate(r.clock())
	items := make([]models.Notification, len(seed.Notifications))
	for i, n := range seed.Notifications {
		n.Date = today
		items[i] = n
	}
	_, err = r.notifications.seed(ctx, items)
	return err
}

// ListAll returns every notification, newest first.
func (r *NotificationRepository) ListAll(ctx context.Context) ([]models.Notification, error) {
	return r.notifications.read(ctx)
}

// Add prepends a notification, filling in id and date when missing.
func (r *NotificationRepository) Add(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = models.NotificationID(uuid.NewString())
	}
	if n.Date.IsZero() {
		n.Date = models.NewDate(r.clock())
	}
	if n.TargetSemester == "" {
		n.TargetSemester = models.AudienceAll
	}
	if err := n.Validate(); err != nil {
		return invalidRecord("notification", err)
	}
	return r.notifications.update(ctx, func(items []models.Notification) ([]models.Notification, bool, error) {
		return prepend(items, *n), true, nil
	})
}

// MarkRead flips IsRead to true. Unknown ids and already-read notifications are left untouched.
func (r *NotificationRepository) MarkRead(ctx context.Context, id models.NotificationID) error {
	return r.notifications.update(ctx, func(items []models.Notification) ([]models.Notification, bool, error) {
		for i := range items {
			if items[i].ID == id {
				if items[i].IsRead {
					return items, false, nil
				}
				items[i].IsRead = true
				return items, true, nil
			}
		}
		return items, false, nil
	})
}

// UnreadCount counts notifications that have not been read.
func (r *NotificationRepository) UnreadCount(ctx context.Context) (int, error) {
	items, err := r.notifications.read(ctx)
	if err != nil {
		return 0, err
	}
	return countUnread(items), nil
}

// VisibleTo returns notifications targeted at everyone or exactly at semester.
func (r *NotificationRepository) VisibleTo(ctx context.Context, semester models.Semester) ([]models.Notification, error) {
	items, err := r.notifications.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Notification, 0, len(items))
	for _, n := range items {
		if n.TargetSemester.Includes(semester) {
			out = append(out, n)
		}
	}
	return out, nil
}

func countUnread(items []models.Notification) int {
	count := 0
	for _, n := range items {
		if !n.IsRead {
			count++
		}
	}
	return count
}
