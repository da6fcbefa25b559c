package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/repository"
	appErrors "github.com/noah-isme/edunotes-api/pkg/errors"
)

type noteRepository interface {
	ListAll(ctx context.Context) ([]models.Note, error)
	Get(ctx context.Context, id models.NoteID) (*models.Note, error)
	Add(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id models.NoteID) error
	Recent(ctx context.Context, days, limit int) ([]models.Note, error)
	UniqueSubjects(ctx context.Context) ([]string, error)
	Search(ctx context.Context, q models.SearchQuery) ([]models.Note, error)
}

type notificationWriter interface {
	Add(ctx context.Context, n *models.Notification) error
}

// NoteConfig tunes uploads and the recent window.
type NoteConfig struct {
	MaxFileSizeBytes int64
	RecentDays       int
	RecentLimit      int
}

var allowedNoteExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// NoteService implements browsing, uploading and downloading study materials.
type NoteService struct {
	notes         noteRepository
	notifications notificationWriter
	profiles      profileReader
	validator     *validator.Validate
	logger        *zap.Logger
	cfg           NoteConfig
	now           func() time.Time
}

// NewNoteService constructs a NoteService. A non-nil validate must carry RegisterValidations.
func NewNoteService(notes noteRepository, notifications notificationWriter, profiles profileReader, validate *validator.Validate, logger *zap.Logger, cfg NoteConfig) *NoteService {
	if validate == nil {
		validate = defaultValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 20 << 20
	}
	svc := &NoteService{
		notes:         notes,
		notifications: notifications,
		profiles:      profiles,
		validator:     validate,
		logger:        logger,
		cfg:           cfg,
		now:           time.Now,
	}
	return svc
}

// Search lists notes visible to the viewer filtered by text, semester ("all" or "1".."8") and subject.
func (s *NoteService) Search(ctx context.Context, viewer Viewer, query, semester, subject string) ([]models.Note, error) {
	viewerSem, err := viewerSemester(ctx, s.profiles, viewer)
	if err != nil {
		return nil, err
	}
	q := models.SearchQuery{Query: query, Subject: subject, Viewer: viewerSem}
	if semester != "" && !strings.EqualFold(semester, "all") {
		parsed, err := models.ParseSemester(semester)
		if err != nil {
			return nil, validationError(err, "invalid semester filter")
		}
		q.Semester = parsed
	}
	notes, err := s.notes.Search(ctx, q)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to search notes")
	}
	return notes, nil
}

// Recent lists notes uploaded in the last days, gated by the viewer's semester.
func (s *NoteService) Recent(ctx context.Context, viewer Viewer, days, limit int) ([]models.Note, error) {
	viewerSem, err := viewerSemester(ctx, s.profiles, viewer)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = s.cfg.RecentDays
	}
	if limit <= 0 {
		limit = s.cfg.RecentLimit
	}
	notes, err := s.notes.Recent(ctx, days, limit)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load recent notes")
	}
	if viewer.IsAdmin() {
		return notes, nil
	}
	visible := make([]models.Note, 0, len(notes))
	for _, note := range notes {
		if note.AccessibleTo(viewerSem) {
			visible = append(visible, note)
		}
	}
	return visible, nil
}

// Subjects lists distinct subjects across all notes.
func (s *NoteService) Subjects(ctx context.Context) ([]string, error) {
	subjects, err := s.notes.UniqueSubjects(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load subjects")
	}
	return subjects, nil
}

// Upload validates and stores a new note, then announces it to the note's semester.
func (s *NoteService) Upload(ctx context.Context, req models.UploadNoteRequest) (*models.Note, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid note payload")
	}
	semester, err := models.ParseSemester(req.Semester)
	if err != nil {
		return nil, validationError(err, "invalid semester")
	}

	ext := strings.ToLower(filepath.Ext(req.FileName))
	contentType, data, err := s.resolveContent(req, ext)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxFileSizeBytes))
	}

	noteType := models.NoteTypeDoc
	if strings.Contains(contentType, "pdf") || ext == ".pdf" {
		noteType = models.NoteTypePDF
	}

	note := &models.Note{
		Title:       strings.TrimSpace(req.Title),
		Subject:     strings.TrimSpace(req.Subject),
		Semester:    semester,
		UploadDate:  models.NewDate(s.now()),
		FileSize:    formatFileSize(len(data)),
		Type:        noteType,
		FileURL:     encodeDataURL(contentType, data),
		FileName:    filepath.Base(req.FileName),
		Description: strings.TrimSpace(req.Description),
		Tags:        splitTags(req.Tags),
	}
	if err := s.notes.Add(ctx, note); err != nil {
		return nil, appErrors.Internal(err, "failed to save note")
	}

	announcement := &models.Notification{
		Title:          "New Study Material Available",
		Message:        fmt.Sprintf("%s has been uploaded for %s (Semester %d)", note.Title, note.Subject, note.Semester),
		Date:           note.UploadDate,
		TargetSemester: models.AudienceForSemester(note.Semester),
	}
	if err := s.notifications.Add(ctx, announcement); err != nil {
		s.logger.Warn("failed to announce uploaded note", zap.String("note_id", string(note.ID)), zap.Error(err))
	}

	s.logger.Info("note uploaded",
		zap.String("note_id", string(note.ID)),
		zap.Int("semester", int(note.Semester)),
		zap.String("file_size", note.FileSize),
	)
	return note, nil
}

// Download returns the decoded file when the viewer may access the note.
func (s *NoteService) Download(ctx context.Context, viewer Viewer, id models.NoteID) (*models.NoteDownload, error) {
	note, err := s.notes.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return nil, appErrors.Internal(err, "failed to load note")
	}
	if !viewer.IsAdmin() {
		viewerSem, err := viewerSemester(ctx, s.profiles, viewer)
		if err != nil {
			return nil, err
		}
		if !note.AccessibleTo(viewerSem) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("note is available from semester %d", note.Semester))
		}
	}

	contentType, data, err := decodeDataURL(note.FileURL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedData.Code, appErrors.ErrMalformedData.Status, "stored file is unreadable")
	}
	return &models.NoteDownload{FileName: note.FileName, ContentType: contentType, Data: data}, nil
}

// Delete removes a note; unknown ids are ignored.
func (s *NoteService) Delete(ctx context.Context, id models.NoteID) error {
	if err := s.notes.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete note")
	}
	s.logger.Info("note deleted", zap.String("note_id", string(id)))
	return nil
}

func (s *NoteService) resolveContent(req models.UploadNoteRequest, ext string) (string, []byte, error) {
	if len(req.Content) > 0 {
		contentType := req.ContentType
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = allowedNoteExtensions[ext]
		}
		return contentType, req.Content, nil
	}
	if req.FileURL == "" {
		return "", nil, appErrors.Clone(appErrors.ErrValidation, "file content is required")
	}
	contentType, data, err := decodeDataURL(req.FileURL)
	if err != nil {
		return "", nil, validationError(err, "file_url must be a base64 data URL")
	}
	if len(data) == 0 {
		return "", nil, appErrors.Clone(appErrors.ErrValidation, "file content is empty")
	}
	if contentType == "" {
		contentType = allowedNoteExtensions[ext]
	}
	return contentType, data, nil
}

func formatFileSize(size int) string {
	return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
}

func splitTags(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func encodeDataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// decodeDataURL parses "data:<type>[;base64],<payload>".
func decodeDataURL(raw string) (string, []byte, error) {
	if !strings.HasPrefix(raw, "data:") {
		return "", nil, fmt.Errorf("not a data URL")
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL missing payload separator")
	}
	isBase64 := strings.HasSuffix(header, ";base64")
	contentType := strings.TrimSuffix(header, ";base64")
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return "", nil, fmt.Errorf("data URL media type: %w", err)
		}
		contentType = mediaType
	}
	if !isBase64 {
		text, err := url.PathUnescape(payload)
		if err != nil {
			return "", nil, fmt.Errorf("decode data URL payload: %w", err)
		}
		return contentType, []byte(text), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL payload: %w", err)
	}
	return contentType, data, nil
}
