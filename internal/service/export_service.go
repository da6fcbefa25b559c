package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/repository"
	appErrors "github.com/noah-isme/edunotes-api/pkg/errors"
	"github.com/noah-isme/edunotes-api/pkg/export"
	"github.com/noah-isme/edunotes-api/pkg/jobs"
	"github.com/noah-isme/edunotes-api/pkg/storage"
)

// JobTypeCatalogExport identifies catalog export jobs on the queue.
const JobTypeCatalogExport = "catalog_export"

type exportJobRepository interface {
	Create(ctx context.Context, job *models.ExportJob) error
	Get(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, job models.ExportJob) error
	PruneFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error)
}

type catalogSource interface {
	ListAll(ctx context.Context) ([]models.Note, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type enqueuer interface {
	Enqueue(job jobs.Job) error
}

type exportObserver interface {
	ObserveExportJob(status models.ExportStatus)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix  string
	ResultTTL  time.Duration
	MaxRetries int
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Jobs      exportJobRepository
	Notes     catalogSource
	Storage   fileStorage
	Signer    *storage.SignedURLSigner
	Validator *validator.Validate
	Metrics   exportObserver
	Logger    *zap.Logger
	Config    ExportConfig
	CSV       datasetRenderer
	PDF       datasetRenderer
}

// ExportService renders the note catalog in the background and serves the results.
type ExportService struct {
	jobs      exportJobRepository
	notes     catalogSource
	storage   fileStorage
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	metrics   exportObserver
	logger    *zap.Logger
	cfg       ExportConfig
	csv       datasetRenderer
	pdf       datasetRenderer
	queue     enqueuer
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportServiceParams) *ExportService {
	cfg := params.Config
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	svc := &ExportService{
		jobs:      params.Jobs,
		notes:     params.Notes,
		storage:   params.Storage,
		signer:    params.Signer,
		validator: params.Validator,
		metrics:   params.Metrics,
		logger:    params.Logger,
		cfg:       cfg,
		csv:       params.CSV,
		pdf:       params.PDF,
		now:       time.Now,
	}
	if svc.validator == nil {
		svc.validator = validator.New()
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.csv == nil {
		svc.csv = export.NewCSVExporter()
	}
	if svc.pdf == nil {
		svc.pdf = export.NewPDFExporter()
	}
	return svc
}

// AttachQueue sets the queue that Request dispatches onto.
func (s *ExportService) AttachQueue(queue enqueuer) {
	if s == nil {
		return
	}
	s.queue = queue
}

// Request persists a queued job and dispatches it to the worker pool.
func (s *ExportService) Request(ctx context.Context, req models.CreateExportRequest) (*models.ExportJob, error) {
	if s == nil {
		return nil, appErrors.ErrFeatureDisabled
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "format must be csv or pdf")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "export worker is not running")
	}
	job := &models.ExportJob{
		Format:    models.ExportFormat(req.Format),
		Status:    models.ExportStatusQueued,
		CreatedAt: s.now().UTC(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, appErrors.Internal(err, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: JobTypeCatalogExport}); err != nil {
		s.fail(ctx, *job, err)
		return nil, appErrors.Internal(err, "failed to enqueue export job")
	}
	s.logger.Info("export job queued", zap.String("job_id", job.ID), zap.String("format", string(job.Format)))
	return job, nil
}

// Status returns the stored job.
func (s *ExportService) Status(ctx context.Context, id string) (*models.ExportJob, error) {
	if s == nil {
		return nil, appErrors.ErrFeatureDisabled
	}
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Internal(err, "failed to load export job")
	}
	return job, nil
}

// Process is the queue handler. Failures are retried by the queue until the
// last attempt, when the job is marked failed.
func (s *ExportService) Process(ctx context.Context, qj jobs.Job) error {
	job, err := s.jobs.Get(ctx, qj.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("export job vanished", zap.String("job_id", qj.ID))
			return nil
		}
		return err
	}
	job.Status = models.ExportStatusProcessing
	if err := s.jobs.Update(ctx, *job); err != nil {
		return err
	}

	if err := s.generate(ctx, job); err != nil {
		if qj.Attempt >= s.cfg.MaxRetries {
			s.fail(ctx, *job, err)
			return nil
		}
		return err
	}

	finished := s.now().UTC()
	job.Status = models.ExportStatusFinished
	job.FinishedAt = &finished
	job.ErrorMessage = nil
	if err := s.jobs.Update(ctx, *job); err != nil {
		return err
	}
	s.observe(models.ExportStatusFinished)
	s.logger.Info("export job finished", zap.String("job_id", job.ID), zap.String("path", job.FilePath))
	return nil
}

// Download resolves a signed token to the stored file.
func (s *ExportService) Download(token string) (*models.NoteDownload, error) {
	if s == nil {
		return nil, appErrors.ErrFeatureDisabled
	}
	claims, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	data, err := s.storage.Read(claims.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	return &models.NoteDownload{
		FileName:    filepath.Base(claims.Path),
		ContentType: exportContentType(claims.Path),
		Data:        data,
	}, nil
}

// Cleanup prunes jobs and files older than the result TTL.
func (s *ExportService) Cleanup(ctx context.Context) error {
	if s == nil {
		return nil
	}
	cutoff := s.now().UTC().Add(-s.cfg.ResultTTL)
	pruned, err := s.jobs.PruneFinishedBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, job := range pruned {
		if job.FilePath == "" {
			continue
		}
		if err := s.storage.Delete(job.FilePath); err != nil {
			s.logger.Warn("failed to delete export file", zap.String("path", job.FilePath), zap.Error(err))
		}
	}
	removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		return err
	}
	if len(pruned) > 0 || len(removed) > 0 {
		s.logger.Info("export cleanup", zap.Int("jobs", len(pruned)), zap.Int("files", len(removed)))
	}
	return nil
}

// RunCleanup calls Cleanup every interval until ctx is cancelled.
func (s *ExportService) RunCleanup(ctx context.Context, interval time.Duration) {
	if s == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Cleanup(ctx); err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
			}
		}
	}
}

func (s *ExportService) generate(ctx context.Context, job *models.ExportJob) error {
	notes, err := s.notes.ListAll(ctx)
	if err != nil {
		return err
	}
	dataset := catalogDataset(notes)

	var payload []byte
	switch job.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("catalog_%s_%s.%s", s.now().UTC().Format("20060102_150405"), job.ID, job.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return err
	}
	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	url := fmt.Sprintf("%s/exports/%s", prefix, token)
	job.FilePath = relPath
	job.ResultURL = &url
	return nil
}

func (s *ExportService) fail(ctx context.Context, job models.ExportJob, cause error) {
	msg := cause.Error()
	finished := s.now().UTC()
	job.Status = models.ExportStatusFailed
	job.ErrorMessage = &msg
	job.FinishedAt = &finished
	if err := s.jobs.Update(ctx, job); err != nil {
		s.logger.Error("failed to mark export job failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	s.observe(models.ExportStatusFailed)
	s.logger.Error("export job failed", zap.String("job_id", job.ID), zap.Error(cause))
}

func (s *ExportService) observe(status models.ExportStatus) {
	if s.metrics != nil {
		s.metrics.ObserveExportJob(status)
	}
}

func catalogDataset(notes []models.Note) export.Dataset {
	rows := make([]map[string]string, 0, len(notes))
	for _, note := range notes {
		rows = append(rows, map[string]string{
			"id":       string(note.ID),
			"title":    note.Title,
			"subject":  note.Subject,
			"semester": note.Semester.String(),
			"type":     string(note.Type),
			"size":     note.FileSize,
			"uploaded": note.UploadDate.String(),
			"tags":     strings.Join(note.Tags, ", "),
		})
	}
	return export.Dataset{
		Title: "Study Materials Catalog",
		Columns: []export.Column{
			{Key: "id", Title: "ID", Weight: 0.6},
			{Key: "title", Title: "Title", Weight: 2.2},
			{Key: "subject", Title: "Subject", Weight: 1.4},
			{Key: "semester", Title: "Semester", Weight: 0.8},
			{Key: "type", Title: "Type", Weight: 0.6},
			{Key: "size", Title: "Size", Weight: 0.8},
			{Key: "uploaded", Title: "Uploaded", Weight: 1},
			{Key: "tags", Title: "Tags", Weight: 1.6},
		},
		Rows: rows,
	}
}

func exportContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "text/csv"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
