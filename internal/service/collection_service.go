package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/docuflow/pdf2csv-api/internal/dto"
	"github.com/docuflow/pdf2csv-api/internal/models"
	"github.com/docuflow/pdf2csv-api/internal/repository"
	appErrors "github.com/docuflow/pdf2csv-api/pkg/errors"
)

type collectionStore interface {
	Create(ctx context.Context, col *models.Collection) error
	GetByID(ctx context.Context, id string) (*models.Collection, error)
	List(ctx context.Context, filter models.CollectionFilter) ([]models.Collection, int, error)
	Update(ctx context.Context, id string, params repository.UpdateCollectionParams) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (*models.CollectionStats, error)
}

// CollectionService manages collection lifecycle.
type CollectionService struct {
	repo      collectionStore
	validator *validator.Validate
	cache     *CacheService
	logger    *zap.Logger
}

// NewCollectionService constructs the collection service. The validator is
// pointed at the gin binding tags so the service enforces the same rules the
// handlers bind against.
func NewCollectionService(repo collectionStore, validate *validator.Validate, cache *CacheService, logger *zap.Logger) *CollectionService {
	if validate == nil {
		validate = validator.New()
	}
	validate.SetTagName("binding")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollectionService{repo: repo, validator: validate, cache: cache, logger: logger}
}

// Create persists a new active collection.
func (s *CollectionService) Create(ctx context.Context, req dto.CreateCollectionRequest) (*models.Collection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid collection payload")
	}
	col := &models.Collection{
		Name:        req.Name,
		ClientName:  req.ClientName,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, col); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create collection")
	}
	return col, nil
}

// Get returns a collection by id.
func (s *CollectionService) Get(ctx context.Context, id string) (*models.Collection, error) {
	col, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "collection not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load collection")
	}
	return col, nil
}

// List returns collections matching the query.
func (s *CollectionService) List(ctx context.Context, query dto.CollectionFilterQuery) ([]models.Collection, *models.Pagination, error) {
	filter := models.CollectionFilter{
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		status := models.CollectionStatus(query.Status)
		filter.Status = &status
	}
	cols, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list collections")
	}
	return cols, paginationFor(query.Page, query.PageSize, total), nil
}

// Update applies the provided changes. Setting status to archived hides the
// collection without touching its records.
func (s *CollectionService) Update(ctx context.Context, id string, req dto.UpdateCollectionRequest) (*models.Collection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid collection payload")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	params := repository.UpdateCollectionParams{
		Name:        req.Name,
		ClientName:  req.ClientName,
		Description: req.Description,
		Status:      req.Status,
	}
	if err := s.repo.Update(ctx, id, params); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update collection")
	}
	s.invalidate(ctx, id)
	return s.Get(ctx, id)
}

// Archive flips a collection to archived. Archiving an archived collection
// is a no-op, not an error.
func (s *CollectionService) Archive(ctx context.Context, id string) (*models.Collection, error) {
	status := models.CollectionStatusArchived
	return s.Update(ctx, id, dto.UpdateCollectionRequest{Status: &status})
}

// Unarchive restores an archived collection to active. Like Archive it is
// idempotent.
func (s *CollectionService) Unarchive(ctx context.Context, id string) (*models.Collection, error) {
	status := models.CollectionStatusActive
	return s.Update(ctx, id, dto.UpdateCollectionRequest{Status: &status})
}

// Delete removes a collection and all of its jobs, records and exports.
func (s *CollectionService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete collection")
	}
	s.invalidate(ctx, id)
	return nil
}

// Stats aggregates record and job counters, cached briefly because pollers
// hit it alongside job status.
func (s *CollectionService) Stats(ctx context.Context, id string) (*models.CollectionStats, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	var cached models.CollectionStats
	if hit, _ := s.cache.Get(ctx, CollectionStatsKey(id), &cached); hit {
		return &cached, nil
	}
	stats, err := s.repo.Stats(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load collection stats")
	}
	_ = s.cache.Set(ctx, CollectionStatsKey(id), stats, 0)
	return stats, nil
}

func (s *CollectionService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, CollectionCachePattern(id)); err != nil {
		s.logger.Sugar().Warnw("collection cache invalidation failed", "collection_id", id, "error", err)
	}
}

func paginationFor(page, pageSize, total int) *models.Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	return &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
