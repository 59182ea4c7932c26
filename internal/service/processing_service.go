package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docuflow/pdf2csv-api/internal/dedup"
	"github.com/docuflow/pdf2csv-api/internal/dto"
	"github.com/docuflow/pdf2csv-api/internal/extract"
	"github.com/docuflow/pdf2csv-api/internal/models"
	"github.com/docuflow/pdf2csv-api/internal/repository"
	appErrors "github.com/docuflow/pdf2csv-api/pkg/errors"
	"github.com/docuflow/pdf2csv-api/pkg/jobs"
)

type processingJobStore interface {
	Create(ctx context.Context, job *models.ProcessingJob) error
	GetByID(ctx context.Context, id string) (*models.ProcessingJob, error)
	List(ctx context.Context, filter models.JobFilter) ([]models.ProcessingJob, int, error)
	MarkProcessing(ctx context.Context, id string) (bool, error)
	Finish(ctx context.Context, id string, status models.JobStatus, errorMessage *string) error
	RequestCancel(ctx context.Context, id string) error
	CancelRequested(ctx context.Context, id string) (bool, error)
	ListQueued(ctx context.Context, limit int) ([]models.ProcessingJob, error)
}

type pipelineRecordStore interface {
	CommitBatch(ctx context.Context, commit repository.BatchCommit) error
	ListByCollection(ctx context.Context, collectionID string) ([]models.Record, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ProcessingService owns the document pipeline: it validates and admits
// submissions, stages the uploads, and runs queued jobs batch by batch.
type ProcessingService struct {
	repo        processingJobStore
	records     pipelineRecordStore
	collections collectionStore
	extractor   extract.Extractor
	docs        *DocumentStore
	queue       jobDispatcher
	locks       *collectionLocks
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	cfg         ProcessingServiceConfig
}

// ProcessingServiceConfig bounds client-supplied batch sizing.
type ProcessingServiceConfig struct {
	MaxGroupSize     int
	DefaultGroupSize int
}

// NewProcessingService constructs the pipeline service.
func NewProcessingService(
	repo processingJobStore,
	records pipelineRecordStore,
	collections collectionStore,
	extractor extract.Extractor,
	docs *DocumentStore,
	queue jobDispatcher,
	locks *collectionLocks,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg ProcessingServiceConfig,
) *ProcessingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxGroupSize <= 0 {
		cfg.MaxGroupSize = 100
	}
	if cfg.DefaultGroupSize <= 0 || cfg.DefaultGroupSize > cfg.MaxGroupSize {
		cfg.DefaultGroupSize = 25
	}
	if locks == nil {
		locks = newCollectionLocks()
	}
	return &ProcessingService{
		repo:        repo,
		records:     records,
		collections: collections,
		extractor:   extractor,
		docs:        docs,
		queue:       queue,
		locks:       locks,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
	}
}

// Locks exposes the per-collection serialization shared with the duplicate
// and record services.
func (s *ProcessingService) Locks() *collectionLocks {
	return s.locks
}

// Submit validates an upload, stages the documents, persists the job row and
// enqueues it. The response is returned before any extraction starts.
func (s *ProcessingService) Submit(ctx context.Context, req dto.UploadRequest, docs []extract.Document) (*dto.JobResponse, error) {
	col, err := s.collections.GetByID(ctx, req.CollectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "collection not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load collection")
	}
	if col.Status != models.CollectionStatusActive {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "collection is archived")
	}
	if len(docs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one document is required")
	}
	for _, doc := range docs {
		if !isPDF(doc) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is not a PDF document", doc.Filename))
		}
		if len(doc.Content) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is empty", doc.Filename))
		}
	}
	groupSize := s.cfg.DefaultGroupSize
	if req.GroupSize != nil {
		groupSize = *req.GroupSize
	}
	if groupSize < 1 || groupSize > s.cfg.MaxGroupSize {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("group_size must be between 1 and %d", s.cfg.MaxGroupSize))
	}
	outputFormat := models.OutputFormat(req.OutputFormat)
	if outputFormat == "" {
		outputFormat = models.OutputFormatCSV
	}

	job := &models.ProcessingJob{
		CollectionID: req.CollectionID,
		TotalFiles:   len(docs),
		GroupSize:    groupSize,
		OutputFormat: outputFormat,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create processing job")
	}
	if err := s.docs.Save(job.ID, docs); err != nil {
		msg := "failed to stage uploaded documents"
		_ = s.repo.Finish(ctx, job.ID, models.JobStatusFailed, &msg)
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, msg)
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "extraction"}); err != nil {
		msg := "failed to enqueue job"
		_ = s.repo.Finish(ctx, job.ID, models.JobStatusFailed, &msg)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msg)
	}
	s.metrics.JobSubmitted()

	return &dto.JobResponse{
		ID:           job.ID,
		CollectionID: job.CollectionID,
		Status:       job.Status,
		TotalFiles:   job.TotalFiles,
		GroupSize:    job.GroupSize,
	}, nil
}

// GetStatus exposes job progress for polling clients.
func (s *ProcessingService) GetStatus(ctx context.Context, id string) (*dto.JobStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	return jobStatusResponse(job), nil
}

// List returns jobs matching the query.
func (s *ProcessingService) List(ctx context.Context, query dto.JobFilterQuery) ([]models.ProcessingJob, *models.Pagination, error) {
	filter := models.JobFilter{
		CollectionID: query.CollectionID,
		Page:         query.Page,
		PageSize:     query.PageSize,
	}
	if query.Status != "" {
		status := models.JobStatus(query.Status)
		filter.Status = &status
	}
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list jobs")
	}
	return list, paginationFor(query.Page, query.PageSize, total), nil
}

// Cancel requests cooperative cancellation. Cancelling a terminal job is a
// no-op; the current job state is returned either way. Work committed before
// the cancellation point is kept.
func (s *ProcessingService) Cancel(ctx context.Context, id string) (*dto.JobStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	if job.Status.Terminal() {
		return jobStatusResponse(job), nil
	}
	if err := s.repo.RequestCancel(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to request cancellation")
	}
	return s.GetStatus(ctx, id)
}

// RecoverPendingJobs replays queued jobs after a process restart. Staged
// documents are still on disk, so recovered jobs resume from zero progress.
func (s *ProcessingService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover queued jobs", "error", err)
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "extraction"}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue pending job", "job_id", job.ID, "error", err)
		}
	}
}

// Handle runs one queued job to a terminal status. It is invoked by a queue
// worker; concurrency is bounded by the queue's worker count.
func (s *ProcessingService) Handle(ctx context.Context, queued jobs.Job) {
	job, err := s.repo.GetByID(ctx, queued.ID)
	if err != nil {
		s.logger.Sugar().Errorw("job vanished before pickup", "job_id", queued.ID, "error", err)
		return
	}
	claimed, err := s.repo.MarkProcessing(ctx, job.ID)
	if err != nil || !claimed {
		if err != nil {
			s.logger.Sugar().Errorw("failed to claim job", "job_id", job.ID, "error", err)
		}
		return
	}
	s.metrics.JobStarted()
	start := time.Now()
	status := s.run(ctx, job)
	s.metrics.JobFinished(status, time.Since(start))
	s.invalidate(ctx, job.CollectionID)
	if status.Terminal() {
		if err := s.docs.Purge(job.ID); err != nil {
			s.logger.Sugar().Warnw("failed to purge staged documents", "job_id", job.ID, "error", err)
		}
	}
}

// run executes the batch loop and returns the terminal status it recorded.
func (s *ProcessingService) run(ctx context.Context, job *models.ProcessingJob) models.JobStatus {
	refs, err := s.docs.Manifest(job.ID)
	if err != nil {
		return s.finish(ctx, job.ID, models.JobStatusFailed, "staged documents unavailable: "+err.Error())
	}

	for len(refs) > 0 {
		cancelled, err := s.repo.CancelRequested(ctx, job.ID)
		if err != nil {
			return s.finish(ctx, job.ID, models.JobStatusFailed, "failed to read cancellation flag: "+err.Error())
		}
		if cancelled {
			return s.finish(ctx, job.ID, models.JobStatusCancelled, "")
		}

		batch := refs
		if len(batch) > job.GroupSize {
			batch = refs[:job.GroupSize]
		}
		refs = refs[len(batch):]

		if err := s.processBatch(ctx, job, batch); err != nil {
			s.logger.Sugar().Errorw("batch failed", "job_id", job.ID, "error", err)
			return s.finish(ctx, job.ID, models.JobStatusFailed, err.Error())
		}
	}
	return s.finish(ctx, job.ID, models.JobStatusCompleted, "")
}

// processBatch extracts one batch and commits its outcome atomically.
// Per-document failures are tolerated; a failed extraction call is fatal to
// the job while everything committed so far stays.
func (s *ProcessingService) processBatch(ctx context.Context, job *models.ProcessingJob, batch []DocumentRef) error {
	docs, err := s.docs.Load(batch)
	if err != nil {
		return fmt.Errorf("load staged batch: %w", err)
	}

	batchStart := time.Now()
	results, err := s.extractor.ExtractBatch(ctx, docs)
	if err != nil {
		return fmt.Errorf("extraction service: %w", err)
	}

	newRecords := make([]models.Record, 0, len(results))
	for _, result := range results {
		if result.Failed() {
			s.logger.Sugar().Warnw("document failed extraction",
				"job_id", job.ID, "file", result.SourceFile, "error", result.Error)
			continue
		}
		for _, raw := range result.Records {
			normalized, ok := extract.Normalize(raw)
			if !ok {
				continue
			}
			newRecords = append(newRecords, buildRecord(job, result.SourceFile, normalized))
		}
	}

	unlock := s.locks.Lock(job.CollectionID)
	defer unlock()

	existing, err := s.records.ListByCollection(ctx, job.CollectionID)
	if err != nil {
		return fmt.Errorf("load collection records: %w", err)
	}
	grouping := dedup.Regroup(append(existing, newRecords...))

	if err := s.records.CommitBatch(ctx, repository.BatchCommit{
		JobID:          job.ID,
		CollectionID:   job.CollectionID,
		Records:        newRecords,
		Grouping:       grouping,
		FilesProcessed: len(batch),
	}); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	s.metrics.ObserveBatch(time.Since(batchStart), len(newRecords), grouping.DuplicateCount())
	return nil
}

func (s *ProcessingService) finish(ctx context.Context, jobID string, status models.JobStatus, message string) models.JobStatus {
	var errMsg *string
	if message != "" {
		errMsg = &message
	}
	if err := s.repo.Finish(ctx, jobID, status, errMsg); err != nil {
		s.logger.Sugar().Errorw("failed to finalize job", "job_id", jobID, "status", status, "error", err)
	}
	return status
}

func (s *ProcessingService) invalidate(ctx context.Context, collectionID string) {
	if err := s.cache.Invalidate(ctx, CollectionCachePattern(collectionID)); err != nil {
		s.logger.Sugar().Warnw("cache invalidation failed", "collection_id", collectionID, "error", err)
	}
}

// buildRecord maps a normalized extraction result onto a persisted record.
// New records get their id here so regrouping can reference them before the
// insert lands.
func buildRecord(job *models.ProcessingJob, sourceFile string, raw extract.RawRecord) models.Record {
	return models.Record{
		ID:              uuid.NewString(),
		CollectionID:    job.CollectionID,
		JobID:           job.ID,
		SourceFile:      sourceFile,
		FirstName:       raw.FirstName,
		LastName:        raw.LastName,
		Mobile:          raw.Mobile,
		Landline:        raw.Landline,
		Address:         raw.Address,
		Email:           raw.Email,
		DateOfBirth:     raw.DateOfBirth,
		LastSeenDate:    raw.LastSeenDate,
		IsValid:         raw.Mobile != "" && raw.Address != "",
		ConfidenceScore: raw.Confidence,
	}
}

func jobStatusResponse(job *models.ProcessingJob) *dto.JobStatusResponse {
	resp := &dto.JobStatusResponse{
		ID:              job.ID,
		CollectionID:    job.CollectionID,
		Status:          job.Status,
		TotalFiles:      job.TotalFiles,
		ProcessedFiles:  job.ProcessedFiles,
		TotalRecords:    job.TotalRecords,
		DuplicatesFound: job.DuplicatesFound,
		CancelRequested: job.CancelRequested,
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp
}

func isPDF(doc extract.Document) bool {
	if strings.EqualFold(doc.ContentType, "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(doc.Filename), ".pdf")
}
