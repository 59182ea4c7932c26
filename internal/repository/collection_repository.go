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

// CollectionRepository persists collections.
type CollectionRepository struct {
	db *sqlx.DB
}

// NewCollectionRepository constructs the repository.
func NewCollectionRepository(db *sqlx.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

const collectionColumns = `id, name, client_name, description, status, created_at, updated_at`

// Create inserts a new collection row with generated defaults.
func (r *CollectionRepository) Create(ctx context.Context, col *models.Collection) error {
	if col.ID == "" {
		col.ID = uuid.NewString()
	}
	if col.Status == "" {
		col.Status = models.CollectionStatusActive
	}
	now := time.Now().UTC()
	if col.CreatedAt.IsZero() {
		col.CreatedAt = now
	}
	col.UpdatedAt = now
	const query = `INSERT INTO collections (id, name, client_name, description, status, created_at, updated_at)
VALUES (:id, :name, :client_name, :description, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, col); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// GetByID returns a collection row by its identifier.
func (r *CollectionRepository) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE id = $1`
	var col models.Collection
	if err := r.db.GetContext(ctx, &col, query, id); err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return &col, nil
}

// List returns collections matching the filter plus the total match count.
func (r *CollectionRepository) List(ctx context.Context, filter models.CollectionFilter) ([]models.Collection, int, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)
	argPos := 1

	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filter.Status)
		argPos++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR client_name ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM collections"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count collections: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s FROM collections%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		collectionColumns, clause, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	var cols []models.Collection
	if err := r.db.SelectContext(ctx, &cols, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list collections: %w", err)
	}
	return cols, total, nil
}

// UpdateCollectionParams defines the mutable fields.
type UpdateCollectionParams struct {
	Name        *string
	ClientName  *string
	Description *string
	Status      *models.CollectionStatus
}

// Update persists the provided changes for a collection row.
func (r *CollectionRepository) Update(ctx context.Context, id string, params UpdateCollectionParams) error {
	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	argPos := 1

	if params.Name != nil {
		set = append(set, fmt.Sprintf("name = $%d", argPos))
		args = append(args, *params.Name)
		argPos++
	}
	if params.ClientName != nil {
		set = append(set, fmt.Sprintf("client_name = $%d", argPos))
		args = append(args, *params.ClientName)
		argPos++
	}
	if params.Description != nil {
		set = append(set, fmt.Sprintf("description = $%d", argPos))
		args = append(args, *params.Description)
		argPos++
	}
	if params.Status != nil {
		set = append(set, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *params.Status)
		argPos++
	}

	if len(set) == 0 {
		return nil
	}
	set = append(set, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE collections SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update collection: %w", err)
	}
	return nil
}

// Delete removes a collection and everything hanging off it.
func (r *CollectionRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete collection: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	statements := []string{
		"DELETE FROM records WHERE collection_id = $1",
		"DELETE FROM duplicate_groups WHERE collection_id = $1",
		"DELETE FROM export_jobs WHERE collection_id = $1",
		"DELETE FROM processing_jobs WHERE collection_id = $1",
		"DELETE FROM collections WHERE id = $1",
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}
	}
	return tx.Commit()
}

// Stats aggregates record and job counters for one collection.
func (r *CollectionRepository) Stats(ctx context.Context, id string) (*models.CollectionStats, error) {
	const query = `SELECT
	$1::text AS collection_id,
	(SELECT COUNT(*) FROM records WHERE collection_id = $1) AS total_records,
	(SELECT COUNT(*) FROM records WHERE collection_id = $1 AND is_valid) AS valid_records,
	(SELECT COUNT(*) FROM records WHERE collection_id = $1 AND is_duplicate) AS duplicate_count,
	(SELECT COUNT(*) FROM duplicate_groups WHERE collection_id = $1) AS group_count,
	(SELECT COUNT(*) FROM processing_jobs WHERE collection_id = $1) AS job_count`
	var stats models.CollectionStats
	if err := r.db.GetContext(ctx, &stats, query, id); err != nil {
		return nil, fmt.Errorf("collection stats: %w", err)
	}
	return &stats, nil
}

// SystemCounts aggregates table-level totals across all collections.
func (r *CollectionRepository) SystemCounts(ctx context.Context) (*models.SystemCounts, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM collections) AS collections,
	(SELECT COUNT(*) FROM records) AS records,
	(SELECT COUNT(*) FROM processing_jobs WHERE status IN ('queued', 'processing')) AS active_jobs`
	var counts models.SystemCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("system counts: %w", err)
	}
	return &counts, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	return page, pageSize
}
