package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/docuflow/pdf2csv-api/internal/models"
)

// JobRepository persists processing job metadata.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository constructs the repository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, collection_id, status, total_files, processed_files, total_records, duplicates_found, group_size, output_format, cancel_requested, error_message, created_at, completed_at`

// terminalStatuses guards terminal rows against further status transitions.
const terminalStatuses = `('completed', 'failed', 'cancelled')`

// Create inserts a new processing job row with generated defaults.
func (r *JobRepository) Create(ctx context.Context, job *models.ProcessingJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.JobStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO processing_jobs (id, collection_id, status, total_files, processed_files, total_records, duplicates_found, group_size, output_format, cancel_requested, error_message, created_at, completed_at)
VALUES (:id, :collection_id, :status, :total_files, :processed_files, :total_records, :duplicates_found, :group_size, :output_format, :cancel_requested, :error_message, :created_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create processing job: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.ProcessingJob, error) {
	query := `SELECT ` + jobColumns + ` FROM processing_jobs WHERE id = $1`
	var job models.ProcessingJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("get processing job: %w", err)
	}
	return &job, nil
}

// List returns jobs matching the filter plus the total match count.
func (r *JobRepository) List(ctx context.Context, filter models.JobFilter) ([]models.ProcessingJob, int, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)
	argPos := 1

	if filter.CollectionID != "" {
		where = append(where, fmt.Sprintf("collection_id = $%d", argPos))
		args = append(args, filter.CollectionID)
		argPos++
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filter.Status)
		argPos++
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM processing_jobs"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count processing jobs: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s FROM processing_jobs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		jobColumns, clause, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	var jobs []models.ProcessingJob
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list processing jobs: %w", err)
	}
	return jobs, total, nil
}

// MarkProcessing flips a queued job to processing. Returns false when the
// job is no longer queued (already cancelled before a worker picked it up).
func (r *JobRepository) MarkProcessing(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE processing_jobs SET status = 'processing' WHERE id = $1 AND status = 'queued'`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("mark processing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark processing: %w", err)
	}
	return n > 0, nil
}

// Finish records a terminal status exactly once; completed_at is set in the
// same statement and terminal rows are never revisited.
func (r *JobRepository) Finish(ctx context.Context, id string, status models.JobStatus, errorMessage *string) error {
	if !status.Terminal() {
		return fmt.Errorf("finish processing job: %s is not a terminal status", status)
	}
	query := `UPDATE processing_jobs SET status = $1, error_message = $2, completed_at = $3
WHERE id = $4 AND status NOT IN ` + terminalStatuses
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, status, errorMessage, now, id); err != nil {
		return fmt.Errorf("finish processing job: %w", err)
	}
	return nil
}

// RequestCancel sets the cooperative cancellation flag. Terminal jobs are
// left untouched; the caller re-reads the row to report the outcome.
func (r *JobRepository) RequestCancel(ctx context.Context, id string) error {
	query := `UPDATE processing_jobs SET cancel_requested = TRUE WHERE id = $1 AND status NOT IN ` + terminalStatuses
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("request cancel: %w", err)
	}
	return nil
}

// CancelRequested reads the cancellation flag. Checked at batch boundaries
// only; an in-flight extraction call is never interrupted.
func (r *JobRepository) CancelRequested(ctx context.Context, id string) (bool, error) {
	var requested bool
	if err := r.db.GetContext(ctx, &requested, `SELECT cancel_requested FROM processing_jobs WHERE id = $1`, id); err != nil {
		return false, fmt.Errorf("read cancel flag: %w", err)
	}
	return requested, nil
}

// ListQueued fetches queued jobs in FIFO order (used for cold start recovery).
func (r *JobRepository) ListQueued(ctx context.Context, limit int) ([]models.ProcessingJob, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + jobColumns + ` FROM processing_jobs WHERE status = 'queued' ORDER BY created_at ASC LIMIT $1`
	var jobs []models.ProcessingJob
	if err := r.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("list queued processing jobs: %w", err)
	}
	return jobs, nil
}
