package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/store"
)

const (
	defaultRecentDays  = 7
	defaultRecentLimit = 10
)

// NoteRepository manages the notes collection and the semester access filter.
type NoteRepository struct {
	notes *collection[models.Note]
	clock Clock
}

// NewNoteRepository constructs a NoteRepository.
func NewNoteRepository(s store.Store, clock Clock) *NoteRepository {
	if clock == nil {
		clock = time.Now
	}
	return &NoteRepository{notes: newCollection[models.Note](s, KeyNotes), clock: clock}
}

// EnsureSeeded writes the sample notes when the collection has never been stored.
func (r *NoteRepository) EnsureSeeded(ctx context.Context) error {
	seed, err := loadSeed()
	if err != nil {
		return err
	}
	_, err = r.notes.seed(ctx, seed.Notes)
	return err
}

// ListAll returns every note in stored (newest first) order.
func (r *NoteRepository) ListAll(ctx context.Context) ([]models.Note, error) {
	return r.notes.read(ctx)
}

// Get returns the note with the given id.
func (r *NoteRepository) Get(ctx context.Context, id models.NoteID) (*models.Note, error) {
	notes, err := r.notes.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		if notes[i].ID == id {
			return &notes[i], nil
		}
	}
	return nil, ErrNotFound
}

// Add prepends note, assigning an id and upload date when missing. Notes that would not
// decode again are rejected before anything is written.
func (r *NoteRepository) Add(ctx context.Context, note *models.Note) error {
	if err := note.Validate(); err != nil {
		return invalidRecord("note", err)
	}
	if note.UploadDate.IsZero() {
		note.UploadDate = models.NewDate(r.clock())
	}
	if note.ID == "" {
		note.ID = models.NoteID(uuid.NewString())
	}
	return r.notes.update(ctx, func(items []models.Note) ([]models.Note, bool, error) {
		return prepend(items, *note), true, nil
	})
}

// Delete removes the note with the given id. Deleting an absent id is a no-op.
func (r *NoteRepository) Delete(ctx context.Context, id models.NoteID) error {
	return r.notes.update(ctx, func(items []models.Note) ([]models.Note, bool, error) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i:i], items[i+1:]...), true, nil
			}
		}
		return items, false, nil
	})
}

// AccessibleTo returns notes whose semester is at most the viewer's semester.
func (r *NoteRepository) AccessibleTo(ctx context.Context, viewer models.Semester) ([]models.Note, error) {
	notes, err := r.notes.read(ctx)
	if err != nil {
		return nil, err
	}
	return filterAccessible(notes, viewer), nil
}

func filterAccessible(notes []models.Note, viewer models.Semester) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, note := range notes {
		if note.AccessibleTo(viewer) {
			out = append(out, note)
		}
	}
	return out
}

// Recent returns notes uploaded within the last days calendar days (today included),
// in stored order, truncated to limit. Non-positive arguments fall back to 7 days and 10 notes.
func (r *NoteRepository) Recent(ctx context.Context, days, limit int) ([]models.Note, error) {
	if days <= 0 {
		days = defaultRecentDays
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	notes, err := r.notes.read(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := models.NewDate(r.clock()).AddDays(-days)
	out := make([]models.Note, 0, limit)
	for _, note := range notes {
		if note.UploadDate.Before(cutoff.Time) {
			continue
		}
		out = append(out, note)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// UniqueSubjects returns the distinct subjects sorted lexicographically.
func (r *NoteRepository) UniqueSubjects(ctx context.Context) ([]string, error) {
	notes, err := r.notes.read(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(notes))
	subjects := make([]string, 0, len(notes))
	for _, note := range notes {
		if _, ok := seen[note.Subject]; ok {
			continue
		}
		seen[note.Subject] = struct{}{}
		subjects = append(subjects, note.Subject)
	}
	sort.Strings(subjects)
	return subjects, nil
}

// Search applies the conjunctive text, semester and subject filters. With a
// viewer semester the base set is AccessibleTo(viewer), otherwise every note.
func (r *NoteRepository) Search(ctx context.Context, q models.SearchQuery) ([]models.Note, error) {
	notes, err := r.notes.read(ctx)
	if err != nil {
		return nil, err
	}
	if q.Viewer > 0 {
		notes = filterAccessible(notes, q.Viewer)
	}

	needle := strings.ToLower(strings.TrimSpace(q.Query))
	subject := q.Subject
	if subject == models.SubjectAll {
		subject = ""
	}

	out := make([]models.Note, 0, len(notes))
	for _, note := range notes {
		if needle != "" && !note.Matches(needle) {
			continue
		}
		if q.Semester > 0 && note.Semester != q.Semester {
			continue
		}
		if subject != "" && note.Subject != subject {
			continue
		}
		out = append(out, note)
	}
	return out, nil
}
