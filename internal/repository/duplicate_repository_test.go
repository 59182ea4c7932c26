package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestDuplicateRepositoryListGroupsWithMembers(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDuplicateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM duplicate_groups WHERE collection_id = $1")).
		WithArgs("col-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	groupRows := sqlmock.NewRows([]string{"id", "collection_id", "fingerprint", "record_count", "created_at", "updated_at"}).
		AddRow("grp-1", "col-1", "m:0412345678", 2, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM duplicate_groups WHERE collection_id = $1 ORDER BY record_count DESC, fingerprint LIMIT $2 OFFSET $3")).
		WithArgs("col-1", 50, 0).
		WillReturnRows(groupRows)

	gid := "grp-1"
	memberRows := sqlmock.NewRows([]string{"id", "collection_id", "job_id", "source_file", "first_name", "last_name", "mobile", "landline", "address", "email", "date_of_birth", "last_seen_date", "is_valid", "is_duplicate", "duplicate_group_id", "is_reviewed", "reviewer_notes", "confidence_score", "created_at", "updated_at"}).
		AddRow("rec-1", "col-1", "job-1", "a.pdf", "Jane", "Doe", "0412345678", "", "", "", "", "", true, true, gid, false, "", 0.9, time.Now(), time.Now()).
		AddRow("rec-2", "col-1", "job-1", "b.pdf", "J", "Doe", "0412 345 678", "", "", "", "", "", true, true, gid, false, "", 0.8, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM records WHERE duplicate_group_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(memberRows)

	details, total, err := repo.ListGroups(context.Background(), "col-1", 1, 50)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, details, 1)
	require.Len(t, details[0].Records, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDuplicateRepositoryResolveGroup(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDuplicateRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM records WHERE duplicate_group_id = $1 AND id = ANY($2) AND id <> $3")).
		WithArgs("grp-1", sqlmock.AnyArg(), "rec-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE records SET is_duplicate = FALSE, duplicate_group_id = NULL, updated_at = NOW() WHERE duplicate_group_id = $1")).
		WithArgs("grp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM duplicate_groups WHERE id = $1")).
		WithArgs("grp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := repo.ResolveGroup(context.Background(), "grp-1", "rec-1", []string{"rec-2"})
	require.NoError(t, err)
	require.Equal(t, 1, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDuplicateRepositoryResolveGroupNoLosers(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDuplicateRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE records SET is_duplicate = FALSE, duplicate_group_id = NULL, updated_at = NOW() WHERE duplicate_group_id = $1")).
		WithArgs("grp-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM duplicate_groups WHERE id = $1")).
		WithArgs("grp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := repo.ResolveGroup(context.Background(), "grp-1", "rec-1", nil)
	require.NoError(t, err)
	require.Zero(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
