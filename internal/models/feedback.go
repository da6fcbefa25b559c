package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FeedbackType enumerates feedback categories.
type FeedbackType string

const (
	FeedbackTypeBug        FeedbackType = "bug"
	FeedbackTypeSuggestion FeedbackType = "suggestion"
	FeedbackTypeGeneral    FeedbackType = "general"
)

// ParseFeedbackType converts a raw value into a FeedbackType.
func ParseFeedbackType(raw string) (FeedbackType, error) {
	switch t := FeedbackType(strings.ToLower(strings.TrimSpace(raw))); t {
	case FeedbackTypeBug, FeedbackTypeSuggestion, FeedbackTypeGeneral:
		return t, nil
	}
	return "", fmt.Errorf("unsupported feedback type %q", raw)
}

// UnmarshalJSON rejects unknown feedback types.
func (t *FeedbackType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("feedback type must be a string: %w", err)
	}
	parsed, err := ParseFeedbackType(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// FeedbackStatus is the review state of a feedback entry.
type FeedbackStatus string

const (
	FeedbackStatusPending  FeedbackStatus = "pending"
	FeedbackStatusReviewed FeedbackStatus = "reviewed"
	FeedbackStatusResolved FeedbackStatus = "resolved"
)

var feedbackStatusRank = map[FeedbackStatus]int{
	FeedbackStatusPending:  0,
	FeedbackStatusReviewed: 1,
	FeedbackStatusResolved: 2,
}

// ParseFeedbackStatus converts a raw value into a FeedbackStatus.
func ParseFeedbackStatus(raw string) (FeedbackStatus, error) {
	status := FeedbackStatus(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := feedbackStatusRank[status]; !ok {
		return "", fmt.Errorf("unsupported feedback status %q", raw)
	}
	return status, nil
}

// CanAdvanceTo reports whether moving to next keeps the status monotonic.
func (s FeedbackStatus) CanAdvanceTo(next FeedbackStatus) bool {
	from, okFrom := feedbackStatusRank[s]
	to, okTo := feedbackStatusRank[next]
	return okFrom && okTo && to >= from
}

// UnmarshalJSON rejects unknown statuses.
func (s *FeedbackStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("feedback status must be a string: %w", err)
	}
	parsed, err := ParseFeedbackStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Feedback is a student submission reviewed by the admin.
type Feedback struct {
	ID          FeedbackID     `json:"id"`
	StudentID   StudentID      `json:"studentId"`
	Type        FeedbackType   `json:"type"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Status      FeedbackStatus `json:"status"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

// Validate checks the enumerated fields of a stored entry.
func (f Feedback) Validate() error {
	if _, err := ParseFeedbackType(string(f.Type)); err != nil {
		return err
	}
	if _, err := ParseFeedbackStatus(string(f.Status)); err != nil {
		return err
	}
	return nil
}

// SubmitFeedbackRequest is the student payload for feedback.
type SubmitFeedbackRequest struct {
	Type    string `json:"type" validate:"required,oneof=bug suggestion general"`
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// UpdateFeedbackStatusRequest is the admin payload for reviewing feedback.
type UpdateFeedbackStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending reviewed resolved"`
}
