package models

import "fmt"

// Notification is a broadcast message. IsRead only ever moves from false to true.
type Notification struct {
	ID             NotificationID `json:"id"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Date           Date           `json:"date"`
	IsRead         bool           `json:"isRead"`
	TargetSemester Audience       `json:"targetSemester"`
}

// Validate checks that the target audience is "all" or a valid semester.
func (n Notification) Validate() error {
	if n.TargetSemester == AudienceAll {
		return nil
	}
	if _, err := ParseSemester(string(n.TargetSemester)); err != nil {
		return fmt.Errorf("audience: %w", err)
	}
	return nil
}

// CreateNotificationRequest is the admin payload for broadcasting a notification.
type CreateNotificationRequest struct {
	Title          string `json:"title" validate:"required,max=200"`
	Message        string `json:"message" validate:"required,max=2000"`
	TargetSemester string `json:"target_semester" validate:"omitempty,audience"`
}
