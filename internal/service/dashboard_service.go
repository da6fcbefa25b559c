package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edunotes-api/internal/models"
	appErrors "github.com/noah-isme/edunotes-api/pkg/errors"
)

type dashboardNotes interface {
	ListAll(ctx context.Context) ([]models.Note, error)
	Recent(ctx context.Context, days, limit int) ([]models.Note, error)
	UniqueSubjects(ctx context.Context) ([]string, error)
}

type dashboardNotifications interface {
	ListAll(ctx context.Context) ([]models.Notification, error)
	VisibleTo(ctx context.Context, semester models.Semester) ([]models.Notification, error)
}

type dashboardBookmarks interface {
	BookmarkedNotes(ctx context.Context, studentID models.StudentID) ([]models.Note, error)
}

type dashboardFeedback interface {
	ListAll(ctx context.Context) ([]models.Feedback, error)
}

type dashboardProfiles interface {
	profileReader
	ListAll(ctx context.Context) ([]models.StudentProfile, error)
}

type metricsSnapshotter interface {
	Snapshot() models.SystemMetrics
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	RecentDays   int
	RecentLimit  int
	PollInterval time.Duration
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Notes         dashboardNotes
	Notifications dashboardNotifications
	Bookmarks     dashboardBookmarks
	Feedback      dashboardFeedback
	Profiles      dashboardProfiles
	Metrics       metricsSnapshotter
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// DashboardService composes the student landing page and admin statistics.
type DashboardService struct {
	notes         dashboardNotes
	notifications dashboardNotifications
	bookmarks     dashboardBookmarks
	feedback      dashboardFeedback
	profiles      dashboardProfiles
	metrics       metricsSnapshotter
	logger        *zap.Logger
	cfg           DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := params.Config
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	return &DashboardService{
		notes:         params.Notes,
		notifications: params.Notifications,
		bookmarks:     params.Bookmarks,
		feedback:      params.Feedback,
		profiles:      params.Profiles,
		metrics:       params.Metrics,
		logger:        logger,
		cfg:           cfg,
	}
}

// Student builds the dashboard for one student. A saved profile is required.
func (s *DashboardService) Student(ctx context.Context, studentID models.StudentID) (*models.StudentDashboard, error) {
	semester, err := viewerSemester(ctx, s.profiles, StudentViewer(studentID))
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.Get(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load profile")
	}

	notes, err := s.notes.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load notes")
	}
	recent, err := s.notes.Recent(ctx, s.cfg.RecentDays, s.cfg.RecentLimit)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load recent notes")
	}
	bookmarked, err := s.bookmarks.BookmarkedNotes(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load bookmarks")
	}
	notifications, err := s.notifications.VisibleTo(ctx, semester)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load notifications")
	}
	subjects, err := s.notes.UniqueSubjects(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load subjects")
	}

	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}

	return &models.StudentDashboard{
		Profile:             *profile,
		NotesBySemester:     groupBySemester(notes, semester),
		RecentNotes:         accessibleOnly(recent, semester),
		BookmarkedNotes:     bookmarked,
		Notifications:       notifications,
		UnreadCount:         unread,
		Subjects:            subjects,
		RefreshAfterSeconds: int(s.cfg.PollInterval / time.Second),
	}, nil
}

// Admin counts the stored collections for the admin page.
func (s *DashboardService) Admin(ctx context.Context) (*models.AdminStats, error) {
	notes, err := s.notes.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load notes")
	}
	subjects, err := s.notes.UniqueSubjects(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load subjects")
	}
	notifications, err := s.notifications.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load notifications")
	}
	feedback, err := s.feedback.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load feedback")
	}
	profiles, err := s.profiles.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load profiles")
	}

	stats := &models.AdminStats{
		TotalNotes:         len(notes),
		TotalNotifications: len(notifications),
		TotalFeedback:      len(feedback),
		TotalSubjects:      len(subjects),
		TotalProfiles:      len(profiles),
	}
	for _, n := range notifications {
		if !n.IsRead {
			stats.UnreadNotifications++
		}
	}
	for _, fb := range feedback {
		if fb.Status == models.FeedbackStatusPending {
			stats.PendingFeedback++
		}
	}
	if s.metrics != nil {
		snapshot := s.metrics.Snapshot()
		stats.System = &snapshot
	}
	return stats, nil
}

func accessibleOnly(notes []models.Note, semester models.Semester) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, note := range notes {
		if note.AccessibleTo(semester) {
			out = append(out, note)
		}
	}
	return out
}

// groupBySemester buckets accessible notes by semester ascending, keeping stored order inside each bucket.
func groupBySemester(notes []models.Note, semester models.Semester) []models.SemesterNotes {
	buckets := make(map[models.Semester][]models.Note)
	for _, note := range accessibleOnly(notes, semester) {
		buckets[note.Semester] = append(buckets[note.Semester], note)
	}
	keys := make([]models.Semester, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	groups := make([]models.SemesterNotes, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, models.SemesterNotes{Semester: key, Notes: buckets[key]})
	}
	return groups
}
