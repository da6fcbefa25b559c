package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/store"
)

// ExportJobRepository persists catalog export jobs.
type ExportJobRepository struct {
	jobs *collection[models.ExportJob]
}

// NewExportJobRepository constructs an ExportJobRepository.
func NewExportJobRepository(s store.Store) *ExportJobRepository {
	return &ExportJobRepository{jobs: newCollection[models.ExportJob](s, KeyExportJobs)}
}

// Create stores a new job, assigning id and creation time when missing.
func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	return r.jobs.update(ctx, func(items []models.ExportJob) ([]models.ExportJob, bool, error) {
		return prepend(items, *job), true, nil
	})
}

// Get returns the job with the given id.
func (r *ExportJobRepository) Get(ctx context.Context, id string) (*models.ExportJob, error) {
	items, err := r.jobs.read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, ErrNotFound
}

// Update replaces the stored job with the same id.
func (r *ExportJobRepository) Update(ctx context.Context, job models.ExportJob) error {
	return r.jobs.update(ctx, func(items []models.ExportJob) ([]models.ExportJob, bool, error) {
		for i := range items {
			if items[i].ID == job.ID {
				items[i] = job
				return items, true, nil
			}
		}
		return nil, false, ErrNotFound
	})
}

// PruneFinishedBefore drops finished or failed jobs completed before cutoff and
// returns them so their files can be removed.
func (r *ExportJobRepository) PruneFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error) {
	var pruned []models.ExportJob
	err := r.jobs.update(ctx, func(items []models.ExportJob) ([]models.ExportJob, bool, error) {
		kept := make([]models.ExportJob, 0, len(items))
		for _, job := range items {
			if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
				pruned = append(pruned, job)
				continue
			}
			kept = append(kept, job)
		}
		return kept, len(pruned) > 0, nil
	})
	return pruned, err
}
