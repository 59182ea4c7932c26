package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/docuflow/pdf2csv-api/internal/models"
)

// ExportRepository persists export job metadata.
type ExportRepository struct {
	db *sqlx.DB
}

// NewExportRepository constructs the repository.
func NewExportRepository(db *sqlx.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

const exportColumns = `id, collection_id, job_id, export_type, status, options, file_path, file_size, record_count, download_url, error_message, created_at, completed_at`

// Create inserts a new export job row with generated defaults.
func (r *ExportRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.JobStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO export_jobs (id, collection_id, job_id, export_type, status, options, file_path, file_size, record_count, download_url, error_message, created_at, completed_at)
VALUES (:id, :collection_id, :job_id, :export_type, :status, :options, :file_path, :file_size, :record_count, :download_url, :error_message, :created_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// GetByID returns an export job by its identifier.
func (r *ExportRepository) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	query := `SELECT ` + exportColumns + ` FROM export_jobs WHERE id = $1`
	var job models.ExportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("get export job: %w", err)
	}
	return &job, nil
}

// MarkProcessing flips a queued export to processing.
func (r *ExportRepository) MarkProcessing(ctx context.Context, id string) error {
	const query = `UPDATE export_jobs SET status = 'processing' WHERE id = $1 AND status = 'queued'`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark export processing: %w", err)
	}
	return nil
}

// FinishSuccess records a completed export with its artifact metadata.
func (r *ExportRepository) FinishSuccess(ctx context.Context, id, filePath string, fileSize int64, recordCount int, downloadURL string) error {
	const query = `UPDATE export_jobs SET status = 'completed', file_path = $1, file_size = $2, record_count = $3, download_url = $4, completed_at = $5 WHERE id = $6`
	if _, err := r.db.ExecContext(ctx, query, filePath, fileSize, recordCount, downloadURL, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("finish export job: %w", err)
	}
	return nil
}

// FinishFailure records a failed export with its error message.
func (r *ExportRepository) FinishFailure(ctx context.Context, id, message string) error {
	const query = `UPDATE export_jobs SET status = 'failed', error_message = $1, completed_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, message, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("fail export job: %w", err)
	}
	return nil
}

// List returns export jobs matching the filter plus the total match count.
func (r *ExportRepository) List(ctx context.Context, filter models.ExportFilter) ([]models.ExportJob, int, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)
	argPos := 1

	if filter.CollectionID != "" {
		where = append(where, fmt.Sprintf("collection_id = $%d", argPos))
		args = append(args, filter.CollectionID)
		argPos++
	}
	if filter.ExportType != nil {
		where = append(where, fmt.Sprintf("export_type = $%d", argPos))
		args = append(args, *filter.ExportType)
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
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM export_jobs"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count export jobs: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s FROM export_jobs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		exportColumns, clause, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	var jobs []models.ExportJob
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list export jobs: %w", err)
	}
	return jobs, total, nil
}

// Delete removes a single export job row.
func (r *ExportRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM export_jobs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete export job: %w", err)
	}
	return nil
}

// BulkDelete removes a set of export jobs and reports how many rows went away.
func (r *ExportRepository) BulkDelete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM export_jobs WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk delete export jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk delete export jobs: %w", err)
	}
	return int(n), nil
}

// ListExpired returns completed exports older than the cutoff, for the
// retention sweep.
func (r *ExportRepository) ListExpired(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error) {
	query := `SELECT ` + exportColumns + ` FROM export_jobs WHERE status = 'completed' AND completed_at < $1`
	var jobs []models.ExportJob
	if err := r.db.SelectContext(ctx, &jobs, query, cutoff); err != nil {
		return nil, fmt.Errorf("list expired export jobs: %w", err)
	}
	return jobs, nil
}
