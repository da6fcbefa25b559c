package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/repository"
	"github.com/noah-isme/edunotes-api/internal/service"
	"github.com/noah-isme/edunotes-api/internal/store"
	"github.com/noah-isme/edunotes-api/pkg/jobs"
	"github.com/noah-isme/edunotes-api/pkg/storage"
)

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *envelopeError         `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type testServer struct {
	router *gin.Engine
	repos  *repository.Repositories
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fixed := time.Date(2024, 1, 17, 10, 30, 0, 0, time.UTC)
	repos, err := repository.Open(ctx, store.NewMemory(), repository.WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	logger := zap.NewNop()
	metrics := service.NewMetricsService()
	auth := service.NewAuthService(repos.Profiles, nil, logger, service.AuthConfig{
		AccessTokenSecret: "secret",
		Issuer:            "edunotes-test",
		AdminCode:         "letmein",
		BcryptCost:        bcrypt.MinCost,
	})

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	exports := service.NewExportService(service.ExportServiceParams{
		Jobs:    repos.ExportJobs,
		Notes:   repos.Notes,
		Storage: files,
		Signer:  storage.NewSignedURLSigner("export-secret", time.Hour),
		Metrics: metrics,
		Logger:  logger,
		Config:  service.ExportConfig{APIPrefix: "/api/v1"},
	})
	queue := jobs.NewQueue("exports", exports.Process, jobs.QueueConfig{Workers: 1, RetryDelay: 10 * time.Millisecond})
	queue.Start(ctx)
	t.Cleanup(queue.Stop)
	exports.AttachQueue(queue)

	h := Handlers{
		Auth:          NewAuthHandler(auth),
		Notes:         NewNoteHandler(service.NewNoteService(repos.Notes, repos.Notifications, repos.Profiles, nil, logger, service.NoteConfig{RecentDays: 7, RecentLimit: 10}), 1<<20),
		Notifications: NewNotificationHandler(service.NewNotificationService(repos.Notifications, repos.Profiles, nil, logger), 10),
		Bookmarks:     NewBookmarkHandler(service.NewBookmarkService(repos.Bookmarks, repos.Notes, repos.Profiles, logger)),
		Profile:       NewProfileHandler(service.NewProfileService(repos.Profiles, nil, logger)),
		Feedback:      NewFeedbackHandler(service.NewFeedbackService(repos.Feedback, nil, logger)),
		Dashboard: NewDashboardHandler(service.NewDashboardService(service.DashboardServiceParams{
			Notes:         repos.Notes,
			Notifications: repos.Notifications,
			Bookmarks:     repos.Bookmarks,
			Feedback:      repos.Feedback,
			Profiles:      repos.Profiles,
			Metrics:       metrics,
			Config:        service.DashboardServiceConfig{RecentDays: 7, RecentLimit: 10},
		})),
		Exports: NewExportHandler(exports),
	}

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), h, auth, logger)
	return &testServer{router: router, repos: repos}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *testServer) login(t *testing.T, path string, body interface{}) string {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, path, "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session models.SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &session))
	return session.AccessToken
}

func TestRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/notes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	rec, env = srv.do(t, http.MethodPost, "/api/v1/auth/admin", "", map[string]string{"code": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestStudentJourney(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "/api/v1/auth/student", map[string]string{"student_id": "s-1"})

	rec, env := srv.do(t, http.MethodGet, "/api/v1/notes", token, nil)
	require.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Equal(t, "PRECONDITION_FAILED", env.Error.Code)

	rec, _ = srv.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = srv.do(t, http.MethodPut, "/api/v1/profile", token, map[string]interface{}{"current_semester": 3, "name": "Ana"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = srv.do(t, http.MethodGet, "/api/v1/notes?subject=all&semester=all", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notes []models.Note
	require.NoError(t, json.Unmarshal(env.Data, &notes))
	assert.Len(t, notes, 2)

	rec, _ = srv.do(t, http.MethodGet, "/api/v1/notes/4/download", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = srv.do(t, http.MethodGet, "/api/v1/notes/1/download", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "intro-data-structures.pdf")

	rec, env = srv.do(t, http.MethodPost, "/api/v1/bookmarks/1/toggle", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var toggled models.BookmarkToggleResult
	require.NoError(t, json.Unmarshal(env.Data, &toggled))
	assert.True(t, toggled.Bookmarked)

	rec, env = srv.do(t, http.MethodGet, "/api/v1/bookmarks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, models.NoteID("1"), notes[0].ID)

	rec, env = srv.do(t, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 10, env.Meta["refresh_after_seconds"])
	assert.Contains(t, env.Meta, "processing_time_ms")

	rec, env = srv.do(t, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, env.Meta["unread_count"])
	assert.Contains(t, env.Meta, "processing_time_ms")

	rec, _ = srv.do(t, http.MethodPost, "/api/v1/feedback", token, map[string]string{"type": "suggestion", "title": "Dark mode", "message": "Please"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = srv.do(t, http.MethodGet, "/api/v1/admin/stats", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = srv.do(t, http.MethodPost, "/api/v1/notes", token, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminJourney(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "/api/v1/auth/admin", map[string]string{"code": "letmein"})

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("title", "Operating Systems"))
	require.NoError(t, form.WriteField("subject", "OS"))
	require.NoError(t, form.WriteField("semester", "5"))
	require.NoError(t, form.WriteField("tags", "kernels, scheduling"))
	part, err := form.CreateFormFile("file", "os.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 os"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec, env := srv.send(t, req, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var uploaded models.Note
	require.NoError(t, json.Unmarshal(env.Data, &uploaded))
	assert.Equal(t, models.NoteTypePDF, uploaded.Type)
	assert.Equal(t, "os.pdf", uploaded.FileName)

	rec, _ = srv.do(t, http.MethodPost, "/api/v1/notes", token, map[string]string{
		"title": "Essay", "subject": "Writing", "semester": "1", "file_name": "essay.doc", "file_url": "data:application/msword;base64,aGVsbG8=",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env = srv.do(t, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notifications []models.Notification
	require.NoError(t, json.Unmarshal(env.Data, &notifications))
	require.Len(t, notifications, 3)
	assert.Equal(t, "New Study Material Available", notifications[0].Title)

	rec, _ = srv.do(t, http.MethodPost, "/api/v1/notifications/"+string(notifications[0].ID)+"/read", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = srv.do(t, http.MethodDelete, "/api/v1/notes/"+string(uploaded.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, env = srv.do(t, http.MethodGet, "/api/v1/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.AdminStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 5, stats.TotalNotes)
	assert.Equal(t, 3, stats.TotalNotifications)
	assert.Equal(t, 2, stats.UnreadNotifications)
	require.NotNil(t, stats.System)

	rec, _ = srv.do(t, http.MethodGet, "/api/v1/feedback?status=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedbackReview(t *testing.T) {
	srv := newTestServer(t)
	student := srv.login(t, "/api/v1/auth/student", map[string]string{"student_id": "s-2"})
	admin := srv.login(t, "/api/v1/auth/admin", map[string]string{"code": "letmein"})

	rec, env := srv.do(t, http.MethodPost, "/api/v1/feedback", student, map[string]string{"type": "bug", "title": "404", "message": "Broken"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var fb models.Feedback
	require.NoError(t, json.Unmarshal(env.Data, &fb))

	path := "/api/v1/feedback/" + string(fb.ID) + "/status"
	rec, _ = srv.do(t, http.MethodPatch, path, admin, map[string]string{"status": "reviewed"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, env = srv.do(t, http.MethodPatch, path, admin, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	rec, env = srv.do(t, http.MethodGet, "/api/v1/feedback?status=reviewed", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.Feedback
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 1)
}

func TestCatalogExport(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login(t, "/api/v1/auth/admin", map[string]string{"code": "letmein"})

	rec, env := srv.do(t, http.MethodPost, "/api/v1/admin/exports", admin, map[string]string{"format": "csv"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var job models.ExportJob
	require.NoError(t, json.Unmarshal(env.Data, &job))

	var finished models.ExportJob
	require.Eventually(t, func() bool {
		rec, env := srv.do(t, http.MethodGet, "/api/v1/admin/exports/"+job.ID, admin, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(env.Data, &finished); err != nil {
			return false
		}
		return finished.Status == models.ExportStatusFinished
	}, 5*time.Second, 20*time.Millisecond)
	require.NotNil(t, finished.ResultURL)

	req := httptest.NewRequest(http.MethodGet, *finished.ResultURL, nil)
	rec, _ = srv.send(t, req, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Advanced Algorithms")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/exports/forged.token.value.sig", nil)
	rec, _ = srv.send(t, req, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
