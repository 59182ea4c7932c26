package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/docuflow/pdf2csv-api/internal/dedup"
	"github.com/docuflow/pdf2csv-api/internal/models"
)

// RecordRepository persists extracted contact records and owns the
// duplicate-state writes derived from a dedup.Grouping.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository constructs the repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const recordColumns = `id, collection_id, job_id, source_file, first_name, last_name, mobile, landline, address, email, date_of_birth, last_seen_date, is_valid, is_duplicate, duplicate_group_id, is_reviewed, reviewer_notes, confidence_score, created_at, updated_at`

// BatchCommit is one batch worth of pipeline output. Everything in it is
// applied in a single transaction: either the records land, the duplicate
// state reflects them and the job counters advance, or none of it happens.
type BatchCommit struct {
	JobID          string
	CollectionID   string
	Records        []models.Record
	Grouping       dedup.Grouping
	FilesProcessed int
}

// CommitBatch applies one batch atomically: insert the new records, rewrite
// the collection's duplicate groups from the grouping, and advance the job's
// progress counters. duplicates_found is set to the grouping's absolute
// duplicate count, not incremented.
func (r *RecordRepository) CommitBatch(ctx context.Context, commit BatchCommit) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	const insertQuery = `INSERT INTO records (id, collection_id, job_id, source_file, first_name, last_name, mobile, landline, address, email, date_of_birth, last_seen_date, is_valid, is_duplicate, duplicate_group_id, is_reviewed, reviewer_notes, confidence_score, created_at, updated_at)
VALUES (:id, :collection_id, :job_id, :source_file, :first_name, :last_name, :mobile, :landline, :address, :email, :date_of_birth, :last_seen_date, :is_valid, :is_duplicate, :duplicate_group_id, :is_reviewed, :reviewer_notes, :confidence_score, :created_at, :updated_at)`
	for i := range commit.Records {
		rec := &commit.Records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.CollectionID = commit.CollectionID
		rec.JobID = commit.JobID
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, insertQuery, rec); err != nil {
			return fmt.Errorf("commit batch: insert record: %w", err)
		}
	}

	if err := applyGroupingTx(ctx, tx, commit.CollectionID, commit.Grouping); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	const counterQuery = `UPDATE processing_jobs SET processed_files = processed_files + $1, total_records = total_records + $2, duplicates_found = $3 WHERE id = $4`
	if _, err := tx.ExecContext(ctx, counterQuery, commit.FilesProcessed, len(commit.Records), commit.Grouping.DuplicateCount(), commit.JobID); err != nil {
		return fmt.Errorf("commit batch: advance counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// ApplyGrouping rewrites a collection's duplicate state outside the pipeline,
// after record mutations or deletions change fingerprint membership.
func (r *RecordRepository) ApplyGrouping(ctx context.Context, collectionID string, grouping dedup.Grouping) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply grouping: begin: %w", err)
	}
	defer tx.Rollback()

	if err := applyGroupingTx(ctx, tx, collectionID, grouping); err != nil {
		return fmt.Errorf("apply grouping: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply grouping: %w", err)
	}
	return nil
}

// applyGroupingTx makes the stored duplicate state match the grouping:
// clear every flag in the collection, upsert one duplicate_groups row per
// group, re-flag the members, and dissolve groups whose fingerprint no
// longer appears.
func applyGroupingTx(ctx context.Context, tx *sqlx.Tx, collectionID string, grouping dedup.Grouping) error {
	const clearQuery = `UPDATE records SET is_duplicate = FALSE, duplicate_group_id = NULL, updated_at = NOW() WHERE collection_id = $1 AND is_duplicate = TRUE`
	if _, err := tx.ExecContext(ctx, clearQuery, collectionID); err != nil {
		return fmt.Errorf("clear duplicate flags: %w", err)
	}

	fingerprints := make([]string, 0, len(grouping.Groups))
	for _, group := range grouping.Groups {
		fingerprints = append(fingerprints, group.Fingerprint)

		const upsertQuery = `INSERT INTO duplicate_groups (id, collection_id, fingerprint, record_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
ON CONFLICT (collection_id, fingerprint) DO UPDATE SET record_count = EXCLUDED.record_count, updated_at = NOW()
RETURNING id`
		var groupID string
		if err := tx.GetContext(ctx, &groupID, upsertQuery, uuid.NewString(), collectionID, group.Fingerprint, len(group.RecordIDs)); err != nil {
			return fmt.Errorf("upsert duplicate group: %w", err)
		}

		const markQuery = `UPDATE records SET is_duplicate = TRUE, duplicate_group_id = $1, updated_at = NOW() WHERE id = ANY($2)`
		if _, err := tx.ExecContext(ctx, markQuery, groupID, pq.Array(group.RecordIDs)); err != nil {
			return fmt.Errorf("mark duplicate records: %w", err)
		}
	}

	const dissolveQuery = `DELETE FROM duplicate_groups WHERE collection_id = $1 AND fingerprint <> ALL($2)`
	if _, err := tx.ExecContext(ctx, dissolveQuery, collectionID, pq.Array(fingerprints)); err != nil {
		return fmt.Errorf("dissolve stale groups: %w", err)
	}
	return nil
}

// GetByID returns a record by its identifier.
func (r *RecordRepository) GetByID(ctx context.Context, id string) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1`
	var rec models.Record
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &rec, nil
}

// List returns records matching the filter plus the total match count.
func (r *RecordRepository) List(ctx context.Context, filter models.RecordFilter) ([]models.Record, int, error) {
	where := make([]string, 0, 5)
	args := make([]interface{}, 0, 7)
	argPos := 1

	if filter.CollectionID != "" {
		where = append(where, fmt.Sprintf("collection_id = $%d", argPos))
		args = append(args, filter.CollectionID)
		argPos++
	}
	if filter.JobID != "" {
		where = append(where, fmt.Sprintf("job_id = $%d", argPos))
		args = append(args, filter.JobID)
		argPos++
	}
	if filter.IsValid != nil {
		where = append(where, fmt.Sprintf("is_valid = $%d", argPos))
		args = append(args, *filter.IsValid)
		argPos++
	}
	if filter.IsDuplicate != nil {
		where = append(where, fmt.Sprintf("is_duplicate = $%d", argPos))
		args = append(args, *filter.IsDuplicate)
		argPos++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR mobile ILIKE $%d OR email ILIKE $%d)", argPos, argPos, argPos, argPos))
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM records"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s FROM records%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d",
		recordColumns, clause, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	var records []models.Record
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	return records, total, nil
}

// ListByCollection loads every record in a collection, used for regrouping
// and export flattening. Ordered by creation so exports are deterministic.
func (r *RecordRepository) ListByCollection(ctx context.Context, collectionID string) ([]models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE collection_id = $1 ORDER BY created_at ASC, id`
	var records []models.Record
	if err := r.db.SelectContext(ctx, &records, query, collectionID); err != nil {
		return nil, fmt.Errorf("list collection records: %w", err)
	}
	return records, nil
}

// UpdateRecordParams carries the caller-editable record fields; nil pointers
// are left untouched.
type UpdateRecordParams struct {
	FirstName       *string
	LastName        *string
	Mobile          *string
	Landline        *string
	Address         *string
	Email           *string
	DateOfBirth     *string
	LastSeenDate    *string
	IsValid         *bool
	IsReviewed      *bool
	ReviewerNotes   *string
	ConfidenceScore *float64
}

// Update applies the non-nil fields to a record.
func (r *RecordRepository) Update(ctx context.Context, id string, params UpdateRecordParams) error {
	set := make([]string, 0, 12)
	args := make([]interface{}, 0, 13)
	argPos := 1

	add := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}
	if params.FirstName != nil {
		add("first_name", *params.FirstName)
	}
	if params.LastName != nil {
		add("last_name", *params.LastName)
	}
	if params.Mobile != nil {
		add("mobile", *params.Mobile)
	}
	if params.Landline != nil {
		add("landline", *params.Landline)
	}
	if params.Address != nil {
		add("address", *params.Address)
	}
	if params.Email != nil {
		add("email", *params.Email)
	}
	if params.DateOfBirth != nil {
		add("date_of_birth", *params.DateOfBirth)
	}
	if params.LastSeenDate != nil {
		add("last_seen_date", *params.LastSeenDate)
	}
	if params.IsValid != nil {
		add("is_valid", *params.IsValid)
	}
	if params.IsReviewed != nil {
		add("is_reviewed", *params.IsReviewed)
	}
	if params.ReviewerNotes != nil {
		add("reviewer_notes", *params.ReviewerNotes)
	}
	if params.ConfidenceScore != nil {
		add("confidence_score", *params.ConfidenceScore)
	}
	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE records SET %s, updated_at = NOW() WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return nil
}

// Delete removes a single record.
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// BulkDelete removes a set of records and reports how many rows went away.
func (r *RecordRepository) BulkDelete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk delete records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk delete records: %w", err)
	}
	return int(n), nil
}

// SetValidity flips the manual validity flag on a batch of records.
func (r *RecordRepository) SetValidity(ctx context.Context, ids []string, valid bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `UPDATE records SET is_valid = $1, updated_at = NOW() WHERE id = ANY($2)`, valid, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("set record validity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("set record validity: %w", err)
	}
	return int(n), nil
}

// Summary aggregates the record counters for a collection.
func (r *RecordRepository) Summary(ctx context.Context, collectionID string) (*models.RecordsSummary, error) {
	const query = `SELECT
	COUNT(*) AS total_records,
	COUNT(*) FILTER (WHERE is_valid) AS valid_records,
	COUNT(*) FILTER (WHERE NOT is_valid) AS invalid_records,
	COUNT(*) FILTER (WHERE is_duplicate) AS duplicate_records,
	COUNT(*) FILTER (WHERE is_reviewed) AS reviewed_records
FROM records WHERE collection_id = $1`
	var summary models.RecordsSummary
	if err := r.db.GetContext(ctx, &summary, query, collectionID); err != nil {
		return nil, fmt.Errorf("records summary: %w", err)
	}
	return &summary, nil
}
