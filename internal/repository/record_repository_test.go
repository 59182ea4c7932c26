package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/pdf2csv-api/internal/dedup"
	"github.com/docuflow/pdf2csv-api/internal/models"
)

func TestRecordRepositoryCommitBatchAtomic(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	records := []models.Record{
		{ID: "rec-1", FirstName: "Jane", LastName: "Doe", Mobile: "0412345678", IsValid: true},
		{ID: "rec-2", FirstName: "J", LastName: "Doe", Mobile: "0412 345 678", IsValid: true},
	}
	grouping := dedup.Grouping{
		Groups:     []dedup.Group{{Fingerprint: "m:0412345678", RecordIDs: []string{"rec-1", "rec-2"}}},
		Assignment: map[string]string{"rec-1": "m:0412345678", "rec-2": "m:0412345678"},
	}

	mock.ExpectBegin()
	for range records {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO records")).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE records SET is_duplicate = FALSE, duplicate_group_id = NULL, updated_at = NOW() WHERE collection_id = $1 AND is_duplicate = TRUE")).
		WithArgs("col-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO duplicate_groups")).
		WithArgs(sqlmock.AnyArg(), "col-1", "m:0412345678", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("grp-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE records SET is_duplicate = TRUE, duplicate_group_id = $1, updated_at = NOW() WHERE id = ANY($2)")).
		WithArgs("grp-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM duplicate_groups WHERE collection_id = $1 AND fingerprint <> ALL($2)")).
		WithArgs("col-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE processing_jobs SET processed_files = processed_files + $1, total_records = total_records + $2, duplicates_found = $3 WHERE id = $4")).
		WithArgs(10, 2, 2, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CommitBatch(context.Background(), BatchCommit{
		JobID:          "job-1",
		CollectionID:   "col-1",
		Records:        records,
		Grouping:       grouping,
		FilesProcessed: 10,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryCommitBatchRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO records")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := repo.CommitBatch(context.Background(), BatchCommit{
		JobID:        "job-1",
		CollectionID: "col-1",
		Records:      []models.Record{{ID: "rec-1"}},
		Grouping:     dedup.Grouping{Assignment: map[string]string{}},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryApplyGroupingDissolvesAllWhenEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE records SET is_duplicate = FALSE")).
		WithArgs("col-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM duplicate_groups WHERE collection_id = $1 AND fingerprint <> ALL($2)")).
		WithArgs("col-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.ApplyGrouping(context.Background(), "col-1", dedup.Grouping{Assignment: map[string]string{}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryUpdatePartial(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mobile := "0498765432"
	reviewed := true
	mock.ExpectExec(regexp.QuoteMeta("UPDATE records SET mobile = $1, is_reviewed = $2, updated_at = NOW() WHERE id = $3")).
		WithArgs(mobile, reviewed, "rec-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), "rec-1", UpdateRecordParams{Mobile: &mobile, IsReviewed: &reviewed}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositorySetValidity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE records SET is_valid = $1, updated_at = NOW() WHERE id = ANY($2)")).
		WithArgs(false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.SetValidity(context.Background(), []string{"rec-1", "rec-2"}, false)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositorySummary(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	rows := sqlmock.NewRows([]string{"total_records", "valid_records", "invalid_records", "duplicate_records", "reviewed_records"}).
		AddRow(120, 100, 20, 14, 5)
	mock.ExpectQuery("FROM records WHERE collection_id").
		WithArgs("col-1").
		WillReturnRows(rows)

	summary, err := repo.Summary(context.Background(), "col-1")
	require.NoError(t, err)
	require.Equal(t, 120, summary.TotalRecords)
	require.Equal(t, 14, summary.DuplicateRecords)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryListByCollectionOrdered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	rows := sqlmock.NewRows([]string{"id", "collection_id", "job_id", "source_file", "first_name", "last_name", "mobile", "landline", "address", "email", "date_of_birth", "last_seen_date", "is_valid", "is_duplicate", "duplicate_group_id", "is_reviewed", "reviewer_notes", "confidence_score", "created_at", "updated_at"}).
		AddRow("rec-1", "col-1", "job-1", "a.pdf", "Jane", "Doe", "0412345678", "", "12 Example St, Sydney NSW 2000", "", "", "", true, false, nil, false, "", 0.92, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM records WHERE collection_id = $1 ORDER BY created_at ASC, id")).
		WithArgs("col-1").
		WillReturnRows(rows)

	records, err := repo.ListByCollection(context.Background(), "col-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Jane", records[0].FirstName)
	require.NoError(t, mock.ExpectationsWereMet())
}
