package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NoteType enumerates the document kinds a note can hold.
type NoteType string

const (
	NoteTypePDF NoteType = "pdf"
	NoteTypeDoc NoteType = "doc"
)

// ParseNoteType converts a raw value into a NoteType.
func ParseNoteType(raw string) (NoteType, error) {
	switch NoteType(strings.ToLower(strings.TrimSpace(raw))) {
	case NoteTypePDF:
		return NoteTypePDF, nil
	case NoteTypeDoc:
		return NoteTypeDoc, nil
	}
	return "", fmt.Errorf("unsupported note type %q", raw)
}

// UnmarshalJSON rejects unknown note types.
func (t *NoteType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("note type must be a string: %w", err)
	}
	parsed, err := ParseNoteType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Note is a study material. Notes are immutable once created; they can only be deleted.
type Note struct {
	ID          NoteID   `json:"id"`
	Title       string   `json:"title"`
	Subject     string   `json:"subject"`
	Semester    Semester `json:"semester"`
	UploadDate  Date     `json:"uploadDate"`
	FileSize    string   `json:"fileSize"`
	Type        NoteType `json:"type"`
	FileURL     string   `json:"fileUrl"`
	FileName    string   `json:"fileName"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Validate checks the fields that must decode again once the note is stored.
func (n Note) Validate() error {
	if !n.Semester.Valid() {
		return fmt.Errorf("semester %d out of range %d..%d", n.Semester, MinSemester, MaxSemester)
	}
	if _, err := ParseNoteType(string(n.Type)); err != nil {
		return err
	}
	return nil
}

// AccessibleTo reports whether a viewer at the given semester may see and download the note.
func (n Note) AccessibleTo(viewer Semester) bool {
	return n.Semester <= viewer
}

// Matches performs a case-insensitive substring match over title, subject, description and tags.
// needle must already be lower-cased.
func (n Note) Matches(needle string) bool {
	if strings.Contains(strings.ToLower(n.Title), needle) ||
		strings.Contains(strings.ToLower(n.Subject), needle) ||
		strings.Contains(strings.ToLower(n.Description), needle) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// SearchQuery filters notes. Zero values disable each filter; a zero Viewer is the unrestricted admin view.
type SearchQuery struct {
	Query    string
	Semester Semester
	Subject  string
	Viewer   Semester
}

// SubjectAll disables the subject filter, as does an empty subject.
const SubjectAll = "all"

// UploadNoteRequest is the payload for publishing a note. Content is either a data URL
// (FileURL) or raw bytes supplied by a multipart upload.
type UploadNoteRequest struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Subject     string `json:"subject" form:"subject" validate:"required,max=120"`
	Semester    string `json:"semester" form:"semester" validate:"required,semester"`
	Description string `json:"description" form:"description" validate:"omitempty,max=2000"`
	Tags        string `json:"tags" form:"tags"`
	FileName    string `json:"file_name" form:"file_name" validate:"required,notefile"`
	FileURL     string `json:"file_url" form:"-"`
	ContentType string `json:"content_type" form:"-"`
	Content     []byte `json:"-" form:"-"`
}

// NoteDownload is the decoded file behind a note.
type NoteDownload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// SemesterNotes groups accessible notes by semester for the dashboard.
type SemesterNotes struct {
	Semester Semester `json:"semester"`
	Notes    []Note   `json:"notes"`
}
