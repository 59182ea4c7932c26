package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/docuflow/pdf2csv-api/internal/dto"
	"github.com/docuflow/pdf2csv-api/internal/models"
	appErrors "github.com/docuflow/pdf2csv-api/pkg/errors"
	"github.com/docuflow/pdf2csv-api/pkg/export"
	"github.com/docuflow/pdf2csv-api/pkg/jobs"
)

type exportStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	FinishSuccess(ctx context.Context, id, filePath string, fileSize int64, recordCount int, downloadURL string) error
	FinishFailure(ctx context.Context, id, message string) error
	List(ctx context.Context, filter models.ExportFilter) ([]models.ExportJob, int, error)
	Delete(ctx context.Context, id string) error
	ListExpired(ctx context.Context, cutoff time.Time) ([]models.ExportJob, error)
}

type exportRecordSource interface {
	ListByCollection(ctx context.Context, collectionID string) ([]models.Record, error)
}

type artifactStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Generate(exportID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error)
}

// ExportService generates downloadable artifacts from a collection's
// records. Exports run asynchronously on their own queue and read committed
// rows only, so an export taken mid-job reflects the batches committed so
// far.
type ExportService struct {
	repo        exportStore
	records     exportRecordSource
	collections collectionStore
	storage     artifactStorage
	signer      downloadSigner
	queue       jobDispatcher
	csv         *export.CSVExporter
	excel       *export.ExcelExporter
	pdf         *export.PDFExporter
	zip         *export.ZIPExporter
	logger      *zap.Logger
	cfg         ExportServiceConfig
}

// ExportServiceConfig governs artifact retention.
type ExportServiceConfig struct {
	DownloadPath    string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File       *os.File
	Filename   string
	ExportType models.ExportType
	ExpiresAt  time.Time
}

// NewExportService constructs the export service.
func NewExportService(
	repo exportStore,
	records exportRecordSource,
	collections collectionStore,
	storage artifactStorage,
	signer downloadSigner,
	queue jobDispatcher,
	logger *zap.Logger,
	cfg ExportServiceConfig,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = "/api/v1/exports/download"
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 7 * 24 * time.Hour
	}
	return &ExportService{
		repo:        repo,
		records:     records,
		collections: collections,
		storage:     storage,
		signer:      signer,
		queue:       queue,
		csv:         export.NewCSVExporter(),
		excel:       export.NewExcelExporter("Records"),
		pdf:         export.NewPDFExporter(),
		zip:         export.NewZIPExporter(),
		logger:      logger,
		cfg:         cfg,
	}
}

// Create validates the request, persists the export job and enqueues it.
func (s *ExportService) Create(ctx context.Context, req dto.CreateExportRequest) (*dto.ExportStatusResponse, error) {
	if _, err := s.collections.GetByID(ctx, req.CollectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "collection not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load collection")
	}

	options := models.ExportJobOptions{
		Encoding:          req.Encoding,
		Delimiter:         req.Delimiter,
		IncludeDuplicates: req.IncludeDuplicates,
		IncludeInvalid:    req.IncludeInvalid,
		GroupBy:           models.ExportGroupBy(req.GroupBy),
	}
	if options.Encoding == "" {
		options.Encoding = export.EncodingUTF8
	}
	if options.Delimiter == "" {
		options.Delimiter = ","
	}
	if options.GroupBy == "" {
		options.GroupBy = models.ExportGroupByNone
	}

	job := &models.ExportJob{
		CollectionID: req.CollectionID,
		JobID:        req.JobID,
		ExportType:   models.ExportType(req.ExportType),
		Options:      options,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "export"}); err != nil {
		_ = s.repo.FinishFailure(ctx, job.ID, "failed to enqueue export")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return exportStatusResponse(job), nil
}

// GetStatus exposes export progress for polling clients.
func (s *ExportService) GetStatus(ctx context.Context, id string) (*dto.ExportStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return exportStatusResponse(job), nil
}

// History lists export jobs matching the query.
func (s *ExportService) History(ctx context.Context, query dto.ExportFilterQuery) ([]models.ExportJob, *models.Pagination, error) {
	filter := models.ExportFilter{
		CollectionID: query.CollectionID,
		Page:         query.Page,
		PageSize:     query.PageSize,
	}
	if query.ExportType != "" {
		exportType := models.ExportType(query.ExportType)
		filter.ExportType = &exportType
	}
	if query.Status != "" {
		status := models.JobStatus(query.Status)
		filter.Status = &status
	}
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list export jobs")
	}
	return list, paginationFor(query.Page, query.PageSize, total), nil
}

// Delete removes an export row and its stored artifact.
func (s *ExportService) Delete(ctx context.Context, id string) error {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.FilePath != nil {
		if err := s.storage.Delete(*job.FilePath); err != nil {
			s.logger.Sugar().Warnw("failed to delete export artifact", "export_id", id, "error", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete export job")
	}
	return nil
}

// BulkDelete removes a set of export jobs, skipping ids that no longer
// exist, and reports how many were deleted.
func (s *ExportService) BulkDelete(ctx context.Context, ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			if appErrors.FromError(err).Code == appErrors.ErrNotFound.Code {
				continue
			}
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// ResolveDownload validates a signed token and opens the stored artifact.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	exportID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, exportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.Status != models.JobStatusCompleted || job.DownloadURL == nil || !strings.HasSuffix(*job.DownloadURL, token) {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "export not ready for download")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to open export artifact")
	}
	return &ExportDownload{
		File:       file,
		Filename:   filepath.Base(relPath),
		ExportType: job.ExportType,
		ExpiresAt:  expiresAt,
	}, nil
}

// Handle runs one queued export to a terminal status.
func (s *ExportService) Handle(ctx context.Context, queued jobs.Job) {
	job, err := s.repo.GetByID(ctx, queued.ID)
	if err != nil {
		s.logger.Sugar().Errorw("export vanished before pickup", "export_id", queued.ID, "error", err)
		return
	}
	if err := s.repo.MarkProcessing(ctx, job.ID); err != nil {
		s.logger.Sugar().Errorw("failed to claim export", "export_id", job.ID, "error", err)
		return
	}

	relPath, size, count, err := s.generate(ctx, job)
	if err != nil {
		s.logger.Sugar().Errorw("export generation failed", "export_id", job.ID, "error", err)
		if failErr := s.repo.FinishFailure(ctx, job.ID, err.Error()); failErr != nil {
			s.logger.Sugar().Errorw("failed to mark export failed", "export_id", job.ID, "error", failErr)
		}
		return
	}

	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		_ = s.repo.FinishFailure(ctx, job.ID, "failed to sign download url")
		return
	}
	downloadURL := s.cfg.DownloadPath + "/" + token
	if err := s.repo.FinishSuccess(ctx, job.ID, relPath, size, count, downloadURL); err != nil {
		s.logger.Sugar().Errorw("failed to mark export completed", "export_id", job.ID, "error", err)
	}
}

// generate renders and stores the artifact, returning its relative path,
// byte size and record count.
func (s *ExportService) generate(ctx context.Context, job *models.ExportJob) (string, int64, int, error) {
	records, err := s.records.ListByCollection(ctx, job.CollectionID)
	if err != nil {
		return "", 0, 0, fmt.Errorf("load records: %w", err)
	}
	records = filterExportRecords(records, job)
	dataset := exportDataset(records)

	var payload []byte
	var extension string
	switch job.ExportType {
	case models.ExportTypeCSV:
		payload, err = s.csv.Render(dataset, csvOptions(job.Options))
		extension = "csv"
	case models.ExportTypeExcel:
		payload, err = s.excel.Render(dataset)
		extension = "xlsx"
	case models.ExportTypeZIP:
		payload, err = s.renderBundle(dataset, records, job)
		extension = "zip"
	default:
		return "", 0, 0, fmt.Errorf("unsupported export type %q", job.ExportType)
	}
	if err != nil {
		return "", 0, 0, fmt.Errorf("render %s export: %w", job.ExportType, err)
	}

	relPath := fmt.Sprintf("%s/%s.%s", job.CollectionID, job.ID, extension)
	if _, err := s.storage.Save(relPath, payload); err != nil {
		return "", 0, 0, fmt.Errorf("store artifact: %w", err)
	}
	return relPath, int64(len(payload)), len(records), nil
}

// renderBundle builds the ZIP variant: the records in both tabular formats
// plus a one-page PDF summary sheet.
func (s *ExportService) renderBundle(dataset export.Dataset, records []models.Record, job *models.ExportJob) ([]byte, error) {
	csvBytes, err := s.csv.Render(dataset, csvOptions(job.Options))
	if err != nil {
		return nil, err
	}
	xlsxBytes, err := s.excel.Render(dataset)
	if err != nil {
		return nil, err
	}

	duplicates := 0
	valid := 0
	for _, rec := range records {
		if rec.IsDuplicate {
			duplicates++
		}
		if rec.IsValid {
			valid++
		}
	}
	summary := export.Dataset{
		Headers: []string{"metric", "value"},
		Rows: []map[string]string{
			{"metric": "total records", "value": strconv.Itoa(len(records))},
			{"metric": "valid records", "value": strconv.Itoa(valid)},
			{"metric": "duplicate records", "value": strconv.Itoa(duplicates)},
			{"metric": "generated at", "value": time.Now().UTC().Format(time.RFC3339)},
		},
	}
	pdfBytes, err := s.pdf.Render(summary, "Export Summary")
	if err != nil {
		return nil, err
	}

	return s.zip.Render(map[string][]byte{
		"records.csv":  csvBytes,
		"records.xlsx": xlsxBytes,
		"summary.pdf":  pdfBytes,
	})
}

// StartCleanup boots a goroutine that purges expired artifacts periodically.
func (s *ExportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ExportService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	expired, err := s.repo.ListExpired(ctx, cutoff)
	if err != nil {
		s.logger.Sugar().Warnw("cleanup list failed", "error", err)
		return
	}
	for _, job := range expired {
		if job.FilePath != nil {
			if err := s.storage.Delete(*job.FilePath); err != nil {
				s.logger.Sugar().Warnw("cleanup delete failed", "export_id", job.ID, "error", err)
				continue
			}
		}
		if err := s.repo.Delete(ctx, job.ID); err != nil {
			s.logger.Sugar().Warnw("cleanup row delete failed", "export_id", job.ID, "error", err)
		}
	}
	if _, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func csvOptions(options models.ExportJobOptions) export.CSVOptions {
	opts := export.CSVOptions{Encoding: options.Encoding}
	if options.Delimiter != "" {
		opts.Delimiter = rune(options.Delimiter[0])
	}
	return opts
}

// filterExportRecords applies the persisted options: duplicates and invalid
// rows are dropped unless requested, job scope narrows to one run, and
// group_by=job clusters output rows by their producing job.
func filterExportRecords(records []models.Record, job *models.ExportJob) []models.Record {
	filtered := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if job.JobID != nil && rec.JobID != *job.JobID {
			continue
		}
		if rec.IsDuplicate && !job.Options.IncludeDuplicates {
			continue
		}
		if !rec.IsValid && !job.Options.IncludeInvalid {
			continue
		}
		filtered = append(filtered, rec)
	}
	if job.Options.GroupBy == models.ExportGroupByJob {
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].JobID < filtered[j].JobID
		})
	}
	return filtered
}

var exportHeaders = []string{
	"first_name", "last_name", "mobile", "landline", "address", "email",
	"date_of_birth", "last_seen_date", "source_file", "is_valid", "is_duplicate",
}

func exportDataset(records []models.Record) export.Dataset {
	rows := make([]map[string]string, len(records))
	for i, rec := range records {
		rows[i] = map[string]string{
			"first_name":     rec.FirstName,
			"last_name":      rec.LastName,
			"mobile":         rec.Mobile,
			"landline":       rec.Landline,
			"address":        rec.Address,
			"email":          rec.Email,
			"date_of_birth":  rec.DateOfBirth,
			"last_seen_date": rec.LastSeenDate,
			"source_file":    rec.SourceFile,
			"is_valid":       strconv.FormatBool(rec.IsValid),
			"is_duplicate":   strconv.FormatBool(rec.IsDuplicate),
		}
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func exportStatusResponse(job *models.ExportJob) *dto.ExportStatusResponse {
	resp := &dto.ExportStatusResponse{
		ID:          job.ID,
		Status:      job.Status,
		ExportType:  job.ExportType,
		RecordCount: job.RecordCount,
		FileSize:    job.FileSize,
		DownloadURL: job.DownloadURL,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp
}
