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

func TestExportRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO export_jobs")).
		WithArgs(sqlmock.AnyArg(), "col-1", nil, "csv", "queued", sqlmock.AnyArg(), nil, 0, 0, nil, nil, sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ExportJob{
		CollectionID: "col-1",
		ExportType:   models.ExportTypeCSV,
		Options:      models.ExportJobOptions{Encoding: "utf-8", Delimiter: ",", GroupBy: models.ExportGroupByNone},
	}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NotEmpty(t, job.ID)

	rows := sqlmock.NewRows([]string{"id", "collection_id", "job_id", "export_type", "status", "options", "file_path", "file_size", "record_count", "download_url", "error_message", "created_at", "completed_at"}).
		AddRow(job.ID, "col-1", nil, "csv", "queued", `{"encoding":"utf-8","delimiter":",","includeDuplicates":false,"includeInvalid":false,"groupBy":"none"}`, nil, 0, 0, nil, nil, time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM export_jobs WHERE id = $1")).
		WithArgs(job.ID).
		WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, "utf-8", fetched.Options.Encoding)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportRepositoryFinishSuccess(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE export_jobs SET status = 'completed', file_path = $1, file_size = $2, record_count = $3, download_url = $4, completed_at = $5 WHERE id = $6")).
		WithArgs("exports/exp-1.csv", int64(2048), 120, "/api/v1/exports/download/token", sqlmock.AnyArg(), "exp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.FinishSuccess(context.Background(), "exp-1", "exports/exp-1.csv", 2048, 120, "/api/v1/exports/download/token"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportRepositoryListExpired(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportRepository(db)

	rows := sqlmock.NewRows([]string{"id", "collection_id", "job_id", "export_type", "status", "options", "file_path", "file_size", "record_count", "download_url", "error_message", "created_at", "completed_at"}).
		AddRow("exp-1", "col-1", nil, "zip", "completed", `{}`, "exports/exp-1.zip", 4096, 80, nil, nil, time.Now().Add(-48*time.Hour), time.Now().Add(-25*time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM export_jobs WHERE status = 'completed' AND completed_at < $1")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	jobs, err := repo.ListExpired(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
