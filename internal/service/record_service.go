package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/docuflow/pdf2csv-api/internal/dedup"
	"github.com/docuflow/pdf2csv-api/internal/dto"
	"github.com/docuflow/pdf2csv-api/internal/models"
	"github.com/docuflow/pdf2csv-api/internal/repository"
	appErrors "github.com/docuflow/pdf2csv-api/pkg/errors"
)

type recordStore interface {
	GetByID(ctx context.Context, id string) (*models.Record, error)
	List(ctx context.Context, filter models.RecordFilter) ([]models.Record, int, error)
	ListByCollection(ctx context.Context, collectionID string) ([]models.Record, error)
	Update(ctx context.Context, id string, params repository.UpdateRecordParams) error
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (int, error)
	SetValidity(ctx context.Context, ids []string, valid bool) (int, error)
	Summary(ctx context.Context, collectionID string) (*models.RecordsSummary, error)
	ApplyGrouping(ctx context.Context, collectionID string, grouping dedup.Grouping) error
}

// RecordService manages manual record review. Mutations that touch identity
// fields re-run duplicate grouping for the whole collection.
type RecordService struct {
	repo   recordStore
	locks  *collectionLocks
	cache  *CacheService
	logger *zap.Logger
}

// NewRecordService constructs the record service.
func NewRecordService(repo recordStore, locks *collectionLocks, cache *CacheService, logger *zap.Logger) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = newCollectionLocks()
	}
	return &RecordService{repo: repo, locks: locks, cache: cache, logger: logger}
}

// Get returns a record by id.
func (s *RecordService) Get(ctx context.Context, id string) (*models.Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
	}
	return rec, nil
}

// List returns records matching the query.
func (s *RecordService) List(ctx context.Context, query dto.RecordFilterQuery) ([]models.Record, *models.Pagination, error) {
	filter := models.RecordFilter{
		CollectionID: query.CollectionID,
		JobID:        query.JobID,
		IsValid:      query.IsValid,
		IsDuplicate:  query.IsDuplicate,
		Search:       query.Search,
		Page:         query.Page,
		PageSize:     query.PageSize,
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list records")
	}
	return records, paginationFor(query.Page, query.PageSize, total), nil
}

// Update applies the provided edits. When an identity field changed, the
// collection's duplicate groups are recomputed before returning.
func (s *RecordService) Update(ctx context.Context, id string, req dto.UpdateRecordRequest) (*models.Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	params := repository.UpdateRecordParams{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Mobile:          req.Mobile,
		Landline:        req.Landline,
		Address:         req.Address,
		Email:           req.Email,
		DateOfBirth:     req.DateOfBirth,
		LastSeenDate:    req.LastSeenDate,
		IsValid:         req.IsValid,
		IsReviewed:      req.IsReviewed,
		ReviewerNotes:   req.ReviewerNotes,
		ConfidenceScore: req.ConfidenceScore,
	}
	if err := s.repo.Update(ctx, id, params); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update record")
	}

	if touchesIdentity(req) {
		if err := s.regroup(ctx, rec.CollectionID); err != nil {
			return nil, err
		}
	}
	s.invalidate(ctx, rec.CollectionID)
	return s.Get(ctx, id)
}

// Delete removes one record and recomputes grouping, since the deletion may
// dissolve a two-member group.
func (s *RecordService) Delete(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete record")
	}
	if err := s.regroup(ctx, rec.CollectionID); err != nil {
		return err
	}
	s.invalidate(ctx, rec.CollectionID)
	return nil
}

// BulkDelete removes a set of records and regroups every affected collection
// once. The collection scope is derived from the records themselves, so a
// deletion that dissolves a pair group always unmarks the survivor.
func (s *RecordService) BulkDelete(ctx context.Context, req dto.BulkRecordIDsRequest) (int, error) {
	affected := make(map[string]struct{})
	for _, id := range req.IDs {
		rec, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
		}
		affected[rec.CollectionID] = struct{}{}
	}

	deleted, err := s.repo.BulkDelete(ctx, req.IDs)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete records")
	}
	if deleted > 0 {
		for collectionID := range affected {
			if err := s.regroup(ctx, collectionID); err != nil {
				return deleted, err
			}
			s.invalidate(ctx, collectionID)
		}
	}
	return deleted, nil
}

// Validate flips the manual validity flag over a set of records. Validity is
// a review decision and never feeds the duplicate fingerprint, so no regroup.
func (s *RecordService) Validate(ctx context.Context, req dto.ValidateRecordsRequest) (int, error) {
	affected, err := s.repo.SetValidity(ctx, req.IDs, req.IsValid)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update record validity")
	}
	return affected, nil
}

// Summary aggregates record counters for a collection, cached briefly.
func (s *RecordService) Summary(ctx context.Context, collectionID string) (*models.RecordsSummary, error) {
	var cached models.RecordsSummary
	if hit, _ := s.cache.Get(ctx, RecordsSummaryKey(collectionID), &cached); hit {
		return &cached, nil
	}
	summary, err := s.repo.Summary(ctx, collectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load records summary")
	}
	_ = s.cache.Set(ctx, RecordsSummaryKey(collectionID), summary, 0)
	return summary, nil
}

// regroup recomputes the collection's duplicate state under the collection
// lock so it never interleaves with a running batch commit.
func (s *RecordService) regroup(ctx context.Context, collectionID string) error {
	unlock := s.locks.Lock(collectionID)
	defer unlock()

	records, err := s.repo.ListByCollection(ctx, collectionID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load collection records")
	}
	grouping := dedup.Regroup(records)
	if err := s.repo.ApplyGrouping(ctx, collectionID, grouping); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to regroup duplicates")
	}
	return nil
}

func (s *RecordService) invalidate(ctx context.Context, collectionID string) {
	if err := s.cache.Invalidate(ctx, CollectionCachePattern(collectionID)); err != nil {
		s.logger.Sugar().Warnw("record cache invalidation failed", "collection_id", collectionID, "error", err)
	}
}

// touchesIdentity reports whether the edit can change the record fingerprint.
func touchesIdentity(req dto.UpdateRecordRequest) bool {
	return req.FirstName != nil || req.LastName != nil || req.Mobile != nil || req.Address != nil
}
