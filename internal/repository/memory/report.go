package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository"
)

// ReportRepository keeps report job metadata for the memory driver.
type ReportRepository struct {
	store *Store
}

// NewReportRepository constructs a ReportRepository.
func NewReportRepository(store *Store) *ReportRepository {
	return &ReportRepository{store: store}
}

// Create inserts a report job.
func (r *ReportRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	return r.store.reports.insert(*job)
}

// GetByID fetches a report job by ID.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	job, err := r.store.reports.find("", id)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Update applies the non-nil fields of params to a report job.
func (r *ReportRepository) Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error {
	_, err := r.store.reports.update("", id, func(job *models.ReportJob) error {
		if params.Status != nil {
			job.Status = *params.Status
		}
		if params.Progress != nil {
			job.Progress = *params.Progress
		}
		if params.ResultURL != nil {
			job.ResultURL = params.ResultURL
		}
		if params.ErrorMessage != nil {
			job.ErrorMessage = params.ErrorMessage
		}
		if params.FinishedAt != nil {
			job.FinishedAt = params.FinishedAt
		}
		return nil
	})
	return err
}

// ListQueued returns queued jobs, oldest first.
func (r *ReportRepository) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	return r.filter(limit, func(j models.ReportJob) bool { return j.Status == models.ReportStatusQueued },
		func(a, b models.ReportJob) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

// ListFinishedBefore returns jobs finished before cutoff.
func (r *ReportRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	return r.filter(limit, func(j models.ReportJob) bool {
		return j.Status == models.ReportStatusFinished && j.FinishedAt != nil && j.FinishedAt.Before(cutoff)
	}, func(a, b models.ReportJob) bool { return a.FinishedAt.Before(*b.FinishedAt) }), nil
}

func (r *ReportRepository) filter(limit int, keep func(models.ReportJob) bool, less func(a, b models.ReportJob) bool) []models.ReportJob {
	if limit <= 0 {
		limit = 50
	}
	var out []models.ReportJob
	for _, job := range r.store.reports.all() {
		if keep(job) {
			out = append(out, job)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
