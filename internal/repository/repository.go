package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/edunotes-api/internal/store"
)

// Collection keys, relative to the store's key prefix.
const (
	KeyNotes         = "files"
	KeyNotifications = "notifications"
	KeyBookmarks     = "bookmarks"
	KeyFeedback      = "feedback"
	KeyProfiles      = "profiles"
	KeyExportJobs    = "export_jobs"
)

var (
	// ErrNotFound is returned by lookups that require the record to exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidRecord is returned when a write would store a value the collection cannot decode again.
	ErrInvalidRecord = errors.New("invalid record")
)

func invalidRecord(kind string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalidRecord, kind, err)
}

// Clock returns the current time. Repositories take it so tests can pin "today".
type Clock func() time.Time

// Option customises Open.
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock overrides time.Now for date stamping and recent-window calculations.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// Repositories bundles every collection repository sharing one store.
type Repositories struct {
	Notes         *NoteRepository
	Notifications *NotificationRepository
	Bookmarks     *BookmarkRepository
	Feedback      *FeedbackRepository
	Profiles      *ProfileRepository
	ExportJobs    *ExportJobRepository
}

// Open builds the repositories over s and seeds the notes and notifications
// collections when they have never been written.
func Open(ctx context.Context, s store.Store, opts ...Option) (*Repositories, error) {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	notes := NewNoteRepository(s, o.clock)
	repos := &Repositories{
		Notes:         notes,
		Notifications: NewNotificationRepository(s, o.clock),
		Bookmarks:     NewBookmarkRepository(s, notes, o.clock),
		Feedback:      NewFeedbackRepository(s, o.clock),
		Profiles:      NewProfileRepository(s),
		ExportJobs:    NewExportJobRepository(s),
	}

	if err := repos.Notes.EnsureSeeded(ctx); err != nil {
		return nil, fmt.Errorf("seed notes: %w", err)
	}
	if err := repos.Notifications.EnsureSeeded(ctx); err != nil {
		return nil, fmt.Errorf("seed notifications: %w", err)
	}
	return repos, nil
}
