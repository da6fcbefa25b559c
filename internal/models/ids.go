package models

// Typed identifiers. Foreign keys between collections are not enforced, so
// every join must tolerate a reference to a record that no longer exists.
type (
	NoteID         string
	NotificationID string
	BookmarkID     string
	FeedbackID     string
	StudentID      string
)
