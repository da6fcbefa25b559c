package models

import "time"

// StudentDashboard aggregates everything the student landing page shows.
type StudentDashboard struct {
	Profile             StudentProfile  `json:"profile"`
	NotesBySemester     []SemesterNotes `json:"notes_by_semester"`
	RecentNotes         []Note          `json:"recent_notes"`
	BookmarkedNotes     []Note          `json:"bookmarked_notes"`
	Notifications       []Notification  `json:"notifications"`
	UnreadCount         int             `json:"unread_count"`
	Subjects            []string        `json:"subjects"`
	RefreshAfterSeconds int             `json:"refresh_after_seconds"`
}

// AdminStats summarises the collections for the admin page.
type AdminStats struct {
	TotalNotes          int `json:"total_notes"`
	TotalNotifications  int `json:"total_notifications"`
	UnreadNotifications int `json:"unread_notifications"`
	TotalFeedback       int `json:"total_feedback"`
	PendingFeedback     int `json:"pending_feedback"`
	TotalSubjects       int `json:"total_subjects"`
	TotalProfiles       int `json:"total_profiles"`

	System *SystemMetrics `json:"system,omitempty"`
}

// SystemMetrics is a lightweight snapshot of process metrics.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	StoreOperations          uint64    `json:"store_operations"`
	StoreErrors              uint64    `json:"store_errors"`
	AverageStoreOperationMs  float64   `json:"average_store_operation_ms"`
	ExportsFinished          uint64    `json:"exports_finished"`
	ExportsFailed            uint64    `json:"exports_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
