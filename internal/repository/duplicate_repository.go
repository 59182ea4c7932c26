package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/docuflow/pdf2csv-api/internal/models"
)

// DuplicateRepository reads duplicate groups and applies resolutions.
type DuplicateRepository struct {
	db *sqlx.DB
}

// NewDuplicateRepository constructs the repository.
func NewDuplicateRepository(db *sqlx.DB) *DuplicateRepository {
	return &DuplicateRepository{db: db}
}

const groupColumns = `id, collection_id, fingerprint, record_count, created_at, updated_at`

// ListGroups returns a collection's duplicate groups with their member
// records, plus the total group count.
func (r *DuplicateRepository) ListGroups(ctx context.Context, collectionID string, page, pageSize int) ([]models.DuplicateGroupDetail, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM duplicate_groups WHERE collection_id = $1`, collectionID); err != nil {
		return nil, 0, fmt.Errorf("count duplicate groups: %w", err)
	}

	page, pageSize = normalizePage(page, pageSize)
	query := `SELECT ` + groupColumns + ` FROM duplicate_groups WHERE collection_id = $1 ORDER BY record_count DESC, fingerprint LIMIT $2 OFFSET $3`
	var groups []models.DuplicateGroup
	if err := r.db.SelectContext(ctx, &groups, query, collectionID, pageSize, (page-1)*pageSize); err != nil {
		return nil, 0, fmt.Errorf("list duplicate groups: %w", err)
	}
	if len(groups) == 0 {
		return []models.DuplicateGroupDetail{}, total, nil
	}

	groupIDs := make([]string, len(groups))
	for i, g := range groups {
		groupIDs[i] = g.ID
	}
	memberQuery := `SELECT ` + recordColumns + ` FROM records WHERE duplicate_group_id = ANY($1) ORDER BY created_at ASC, id`
	var members []models.Record
	if err := r.db.SelectContext(ctx, &members, memberQuery, pq.Array(groupIDs)); err != nil {
		return nil, 0, fmt.Errorf("list group members: %w", err)
	}

	byGroup := make(map[string][]models.Record, len(groups))
	for _, m := range members {
		if m.DuplicateGroupID == nil {
			continue
		}
		byGroup[*m.DuplicateGroupID] = append(byGroup[*m.DuplicateGroupID], m)
	}

	details := make([]models.DuplicateGroupDetail, len(groups))
	for i, g := range groups {
		details[i] = models.DuplicateGroupDetail{DuplicateGroup: g, Records: byGroup[g.ID]}
	}
	return details, total, nil
}

// GetGroup returns one group with its member records.
func (r *DuplicateRepository) GetGroup(ctx context.Context, id string) (*models.DuplicateGroupDetail, error) {
	query := `SELECT ` + groupColumns + ` FROM duplicate_groups WHERE id = $1`
	var group models.DuplicateGroup
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, fmt.Errorf("get duplicate group: %w", err)
	}

	memberQuery := `SELECT ` + recordColumns + ` FROM records WHERE duplicate_group_id = $1 ORDER BY created_at ASC, id`
	var members []models.Record
	if err := r.db.SelectContext(ctx, &members, memberQuery, id); err != nil {
		return nil, fmt.Errorf("get group members: %w", err)
	}
	return &models.DuplicateGroupDetail{DuplicateGroup: group, Records: members}, nil
}

// ResolveGroup keeps one member, deletes the listed losers and dissolves the
// group, all in one transaction. Loser ids no longer in the group are
// skipped, so replaying a resolution is harmless.
func (r *DuplicateRepository) ResolveGroup(ctx context.Context, groupID, keepID string, deleteIDs []string) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("resolve group: begin: %w", err)
	}
	defer tx.Rollback()

	deleted := 0
	if len(deleteIDs) > 0 {
		res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE duplicate_group_id = $1 AND id = ANY($2) AND id <> $3`,
			groupID, pq.Array(deleteIDs), keepID)
		if err != nil {
			return 0, fmt.Errorf("resolve group: delete records: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("resolve group: delete records: %w", err)
		}
		deleted = int(n)
	}

	const clearQuery = `UPDATE records SET is_duplicate = FALSE, duplicate_group_id = NULL, updated_at = NOW() WHERE duplicate_group_id = $1`
	if _, err := tx.ExecContext(ctx, clearQuery, groupID); err != nil {
		return 0, fmt.Errorf("resolve group: clear flags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM duplicate_groups WHERE id = $1`, groupID); err != nil {
		return 0, fmt.Errorf("resolve group: delete group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("resolve group: %w", err)
	}
	return deleted, nil
}
