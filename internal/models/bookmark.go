package models

import "time"

// Bookmark links a student to a note. Uniqueness of (NoteID, StudentID) is not stored.
type Bookmark struct {
	ID           BookmarkID `json:"id"`
	NoteID       NoteID     `json:"noteId"`
	StudentID    StudentID  `json:"studentId"`
	BookmarkedAt time.Time  `json:"bookmarkedAt"`
}

// BookmarkToggleResult reports the state after a toggle.
type BookmarkToggleResult struct {
	NoteID     NoteID `json:"note_id"`
	Bookmarked bool   `json:"bookmarked"`
}
