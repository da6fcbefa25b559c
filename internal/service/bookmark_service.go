package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/repository"
	appErrors "github.com/noah-isme/edunotes-api/pkg/errors"
)

type bookmarkRepository interface {
	Ensure(ctx context.Context, noteID models.NoteID, studentID models.StudentID) (bool, error)
	Remove(ctx context.Context, noteID models.NoteID, studentID models.StudentID) error
	Toggle(ctx context.Context, noteID models.NoteID, studentID models.StudentID) (bool, error)
	BookmarkedNotes(ctx context.Context, studentID models.StudentID) ([]models.Note, error)
}

type noteLookup interface {
	Get(ctx context.Context, id models.NoteID) (*models.Note, error)
}

// BookmarkService manages a student's saved notes.
type BookmarkService struct {
	bookmarks bookmarkRepository
	notes     noteLookup
	profiles  profileReader
	logger    *zap.Logger
}

// NewBookmarkService constructs a BookmarkService.
func NewBookmarkService(bookmarks bookmarkRepository, notes noteLookup, profiles profileReader, logger *zap.Logger) *BookmarkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookmarkService{bookmarks: bookmarks, notes: notes, profiles: profiles, logger: logger}
}

// List returns the student's bookmarked notes that still exist.
func (s *BookmarkService) List(ctx context.Context, studentID models.StudentID) ([]models.Note, error) {
	notes, err := s.bookmarks.BookmarkedNotes(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load bookmarks")
	}
	return notes, nil
}

// Toggle flips the bookmark state of a note the student can access.
func (s *BookmarkService) Toggle(ctx context.Context, studentID models.StudentID, noteID models.NoteID) (*models.BookmarkToggleResult, error) {
	if err := s.ensureAccessible(ctx, studentID, noteID); err != nil {
		return nil, err
	}
	bookmarked, err := s.bookmarks.Toggle(ctx, noteID, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to toggle bookmark")
	}
	return &models.BookmarkToggleResult{NoteID: noteID, Bookmarked: bookmarked}, nil
}

// Add bookmarks a note; bookmarking twice keeps a single record.
func (s *BookmarkService) Add(ctx context.Context, studentID models.StudentID, noteID models.NoteID) (*models.BookmarkToggleResult, error) {
	if err := s.ensureAccessible(ctx, studentID, noteID); err != nil {
		return nil, err
	}
	if _, err := s.bookmarks.Ensure(ctx, noteID, studentID); err != nil {
		return nil, appErrors.Internal(err, "failed to add bookmark")
	}
	return &models.BookmarkToggleResult{NoteID: noteID, Bookmarked: true}, nil
}

// Remove deletes the bookmark. The note does not need to exist any more.
func (s *BookmarkService) Remove(ctx context.Context, studentID models.StudentID, noteID models.NoteID) error {
	if err := s.bookmarks.Remove(ctx, noteID, studentID); err != nil {
		return appErrors.Internal(err, "failed to remove bookmark")
	}
	return nil
}

func (s *BookmarkService) ensureAccessible(ctx context.Context, studentID models.StudentID, noteID models.NoteID) error {
	semester, err := viewerSemester(ctx, s.profiles, StudentViewer(studentID))
	if err != nil {
		return err
	}
	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return appErrors.Internal(err, "failed to load note")
	}
	if !note.AccessibleTo(semester) {
		return appErrors.Clone(appErrors.ErrForbidden, "note is not available for your semester")
	}
	return nil
}
