package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/docuflow/pdf2csv-api/internal/dto"
	"github.com/docuflow/pdf2csv-api/internal/models"
	appErrors "github.com/docuflow/pdf2csv-api/pkg/errors"
)

type duplicateStore interface {
	ListGroups(ctx context.Context, collectionID string, page, pageSize int) ([]models.DuplicateGroupDetail, int, error)
	GetGroup(ctx context.Context, id string) (*models.DuplicateGroupDetail, error)
	ResolveGroup(ctx context.Context, groupID, keepID string, deleteIDs []string) (int, error)
}

// DuplicateService serves the manual duplicate review flow.
type DuplicateService struct {
	repo   duplicateStore
	locks  *collectionLocks
	cache  *CacheService
	logger *zap.Logger
}

// NewDuplicateService constructs the duplicate service.
func NewDuplicateService(repo duplicateStore, locks *collectionLocks, cache *CacheService, logger *zap.Logger) *DuplicateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = newCollectionLocks()
	}
	return &DuplicateService{repo: repo, locks: locks, cache: cache, logger: logger}
}

// ListGroups returns a collection's duplicate groups with members.
func (s *DuplicateService) ListGroups(ctx context.Context, collectionID string, page, pageSize int) ([]models.DuplicateGroupDetail, *models.Pagination, error) {
	groups, total, err := s.repo.ListGroups(ctx, collectionID, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list duplicate groups")
	}
	return groups, paginationFor(page, pageSize, total), nil
}

// GetGroup returns one group with its member records.
func (s *DuplicateService) GetGroup(ctx context.Context, id string) (*models.DuplicateGroupDetail, error) {
	group, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "duplicate group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load duplicate group")
	}
	return group, nil
}

// Resolve keeps the chosen record and deletes every other member of the
// group. An explicit delete_ids list must cover all non-keep members; ids
// that already left the group are skipped so a replayed resolution converges
// to the same end state.
func (s *DuplicateService) Resolve(ctx context.Context, groupID string, req dto.ResolveDuplicateGroupRequest) (int, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return 0, err
	}

	keepFound := false
	for _, rec := range group.Records {
		if rec.ID == req.KeepID {
			keepFound = true
			break
		}
	}
	if !keepFound {
		return 0, appErrors.Clone(appErrors.ErrValidation, "keep_record_id is not a member of the group")
	}
	deleteIDs := req.DeleteIDs
	if len(deleteIDs) == 0 {
		// Default resolution keeps the chosen record and drops every other
		// member.
		for _, rec := range group.Records {
			if rec.ID != req.KeepID {
				deleteIDs = append(deleteIDs, rec.ID)
			}
		}
	}
	listed := make(map[string]bool, len(deleteIDs))
	for _, id := range deleteIDs {
		if id == req.KeepID {
			return 0, appErrors.Clone(appErrors.ErrValidation, "keep_record_id cannot also be deleted")
		}
		listed[id] = true
	}
	// Resolution removes the whole group: an explicit list that skips a
	// member would leave records sharing a fingerprint unmarked.
	for _, rec := range group.Records {
		if rec.ID != req.KeepID && !listed[rec.ID] {
			return 0, appErrors.Clone(appErrors.ErrValidation, "delete_ids must cover every other member of the group")
		}
	}

	unlock := s.locks.Lock(group.CollectionID)
	defer unlock()

	deleted, err := s.repo.ResolveGroup(ctx, groupID, req.KeepID, deleteIDs)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve duplicate group")
	}
	if err := s.cache.Invalidate(ctx, CollectionCachePattern(group.CollectionID)); err != nil {
		s.logger.Sugar().Warnw("duplicate cache invalidation failed", "collection_id", group.CollectionID, "error", err)
	}
	return deleted, nil
}
