package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/pdf2csv-api/internal/models"
)

func TestJobRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO processing_jobs")).
		WithArgs(sqlmock.AnyArg(), "col-1", "queued", 23, 0, 0, 0, 10, "csv", false, nil, sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ProcessingJob{
		CollectionID: "col-1",
		TotalFiles:   23,
		GroupSize:    10,
		OutputFormat: models.OutputFormatCSV,
	}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NotEmpty(t, job.ID)
	require.Equal(t, models.JobStatusQueued, job.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryMarkProcessing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE processing_jobs SET status = 'processing' WHERE id = $1 AND status = 'queued'")).
		WithArgs("job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	claimed, err := repo.MarkProcessing(context.Background(), "job-1")
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryMarkProcessingAlreadyTerminal(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE processing_jobs SET status = 'processing'")).
		WithArgs("job-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := repo.MarkProcessing(context.Background(), "job-1")
	require.NoError(t, err)
	require.False(t, claimed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryFinishGuardsTerminalRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE processing_jobs SET status = $1, error_message = $2, completed_at = $3\nWHERE id = $4 AND status NOT IN ('completed', 'failed', 'cancelled')")).
		WithArgs(models.JobStatusCompleted, nil, sqlmock.AnyArg(), "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Finish(context.Background(), "job-1", models.JobStatusCompleted, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryFinishRejectsNonTerminalStatus(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	err := repo.Finish(context.Background(), "job-1", models.JobStatusProcessing, nil)
	require.Error(t, err)
}

func TestJobRepositoryRequestCancelSkipsTerminal(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE processing_jobs SET cancel_requested = TRUE WHERE id = $1 AND status NOT IN ('completed', 'failed', 'cancelled')")).
		WithArgs("job-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.RequestCancel(context.Background(), "job-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryListQueuedFIFO(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	rows := sqlmock.NewRows([]string{"id", "collection_id", "status", "total_files", "processed_files", "total_records", "duplicates_found", "group_size", "output_format", "cancel_requested", "error_message", "created_at", "completed_at"}).
		AddRow("job-1", "col-1", "queued", 5, 0, 0, 0, 10, "csv", false, nil, time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM processing_jobs WHERE status = 'queued' ORDER BY created_at ASC LIMIT $1")).
		WithArgs(50).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
