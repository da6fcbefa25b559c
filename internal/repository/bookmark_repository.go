package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/store"
)

// BookmarkRepository manages the student/note bookmark relation.
type BookmarkRepository struct {
	bookmarks *collection[models.Bookmark]
	notes     *NoteRepository
	clock     Clock
}

// NewBookmarkRepository constructs a BookmarkRepository joined against notes.
func NewBookmarkRepository(s store.Store, notes *NoteRepository, clock Clock) *BookmarkRepository {
	if clock == nil {
		clock = time.Now
	}
	return &BookmarkRepository{
		bookmarks: newCollection[models.Bookmark](s, KeyBookmarks),
		notes:     notes,
		clock:     clock,
	}
}

// IsBookmarked reports whether the student has bookmarked the note.
func (r *BookmarkRepository) IsBookmarked(ctx context.Context, noteID models.NoteID, studentID models.StudentID) (bool, error) {
	items, err := r.bookmarks.read(ctx)
	if err != nil {
		return false, err
	}
	return containsBookmark(items, noteID, studentID), nil
}

// Add appends a bookmark without checking for an existing one. Callers that
// need uniqueness use IsBookmarked first or Toggle.
func (r *BookmarkRepository) Add(ctx context.Context, noteID models.NoteID, studentID models.StudentID) (models.Bookmark, error) {
	bookmark := r.newBookmark(noteID, studentID)
	err := r.bookmarks.update(ctx, func(items []models.Bookmark) ([]models.Bookmark, bool, error) {
		return append(items, bookmark), true, nil
	})
	return bookmark, err
}

// Ensure adds the bookmark unless the pair is already present, checking and
// writing under one collection lock. It reports whether a record was added.
func (r *BookmarkRepository) Ensure(ctx context.Context, noteID models.NoteID, studentID models.StudentID) (bool, error) {
	var added bool
	err := r.bookmarks.update(ctx, func(items []models.Bookmark) ([]models.Bookmark, bool, error) {
		if containsBookmark(items, noteID, studentID) {
			return items, false, nil
		}
		added = true
		return append(items, r.newBookmark(noteID, studentID)), true, nil
	})
	return added, err
}

// Remove deletes every bookmark matching the pair, including duplicates.
func (r *BookmarkRepository) Remove(ctx context.Context, noteID models.NoteID, studentID models.StudentID) error {
	return r.bookmarks.update(ctx, func(items []models.Bookmark) ([]models.Bookmark, bool, error) {
		kept, removed := removeBookmarks(items, noteID, studentID)
		return kept, removed > 0, nil
	})
}

// Toggle removes the bookmark when present and adds it otherwise, under one
// collection lock. It returns the resulting state.
func (r *BookmarkRepository) Toggle(ctx context.Context, noteID models.NoteID, studentID models.StudentID) (bool, error) {
	var bookmarked bool
	err := r.bookmarks.update(ctx, func(items []models.Bookmark) ([]models.Bookmark, bool, error) {
		if kept, removed := removeBookmarks(items, noteID, studentID); removed > 0 {
			bookmarked = false
			return kept, true, nil
		}
		bookmarked = true
		return append(items, r.newBookmark(noteID, studentID)), true, nil
	})
	return bookmarked, err
}

// ListByStudent returns the student's bookmark records in insertion order.
func (r *BookmarkRepository) ListByStudent(ctx context.Context, studentID models.StudentID) ([]models.Bookmark, error) {
	items, err := r.bookmarks.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Bookmark, 0)
	for _, b := range items {
		if b.StudentID == studentID {
			out = append(out, b)
		}
	}
	return out, nil
}

// BookmarkedNotes joins the student's bookmarks against the notes collection, one
// note per bookmark record in bookmark order. Bookmarks pointing at deleted notes are skipped.
func (r *BookmarkRepository) BookmarkedNotes(ctx context.Context, studentID models.StudentID) ([]models.Note, error) {
	bookmarks, err := r.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	notes, err := r.notes.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[models.NoteID]models.Note, len(notes))
	for _, note := range notes {
		byID[note.ID] = note
	}

	out := make([]models.Note, 0, len(bookmarks))
	for _, b := range bookmarks {
		if note, ok := byID[b.NoteID]; ok {
			out = append(out, note)
		}
	}
	return out, nil
}

func (r *BookmarkRepository) newBookmark(noteID models.NoteID, studentID models.StudentID) models.Bookmark {
	return models.Bookmark{
		ID:           models.BookmarkID(uuid.NewString()),
		NoteID:       noteID,
		StudentID:    studentID,
		BookmarkedAt: r.clock().UTC(),
	}
}

func containsBookmark(items []models.Bookmark, noteID models.NoteID, studentID models.StudentID) bool {
	for _, b := range items {
		if b.NoteID == noteID && b.StudentID == studentID {
			return true
		}
	}
	return false
}

func removeBookmarks(items []models.Bookmark, noteID models.NoteID, studentID models.StudentID) ([]models.Bookmark, int) {
	kept := make([]models.Bookmark, 0, len(items))
	for _, b := range items {
		if b.NoteID == noteID && b.StudentID == studentID {
			continue
		}
		kept = append(kept, b)
	}
	return kept, len(items) - len(kept)
}
