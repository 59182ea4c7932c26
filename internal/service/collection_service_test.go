package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docuflow/pdf2csv-api/internal/dto"
	"github.com/docuflow/pdf2csv-api/internal/models"
	"github.com/docuflow/pdf2csv-api/internal/repository"
	appErrors "github.com/docuflow/pdf2csv-api/pkg/errors"
)

type collectionStoreStub struct {
	collections map[string]*models.Collection
	created     []string
	deleted     []string
}

func newCollectionStoreStub(collections ...models.Collection) *collectionStoreStub {
	stub := &collectionStoreStub{collections: make(map[string]*models.Collection)}
	for i := range collections {
		col := collections[i]
		stub.collections[col.ID] = &col
	}
	return stub
}

func (s *collectionStoreStub) Create(ctx context.Context, col *models.Collection) error {
	if col.ID == "" {
		col.ID = "col-new"
	}
	if col.Status == "" {
		col.Status = models.CollectionStatusActive
	}
	s.collections[col.ID] = col
	s.created = append(s.created, col.ID)
	return nil
}

func (s *collectionStoreStub) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	col, ok := s.collections[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *col
	return &copied, nil
}

func (s *collectionStoreStub) List(ctx context.Context, filter models.CollectionFilter) ([]models.Collection, int, error) {
	var out []models.Collection
	for _, col := range s.collections {
		if filter.Status != nil && col.Status != *filter.Status {
			continue
		}
		out = append(out, *col)
	}
	return out, len(out), nil
}

func (s *collectionStoreStub) Update(ctx context.Context, id string, params repository.UpdateCollectionParams) error {
	col, ok := s.collections[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Name != nil {
		col.Name = *params.Name
	}
	if params.ClientName != nil {
		col.ClientName = *params.ClientName
	}
	if params.Description != nil {
		col.Description = *params.Description
	}
	if params.Status != nil {
		col.Status = *params.Status
	}
	return nil
}

func (s *collectionStoreStub) Delete(ctx context.Context, id string) error {
	delete(s.collections, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *collectionStoreStub) Stats(ctx context.Context, id string) (*models.CollectionStats, error) {
	if _, ok := s.collections[id]; !ok {
		return nil, sql.ErrNoRows
	}
	return &models.CollectionStats{CollectionID: id, TotalRecords: 42}, nil
}

func newCollectionServiceFixture(collections ...models.Collection) (*CollectionService, *collectionStoreStub) {
	repo := newCollectionStoreStub(collections...)
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	return NewCollectionService(repo, nil, cache, zap.NewNop()), repo
}

func TestCollectionCreate(t *testing.T) {
	service, repo := newCollectionServiceFixture()

	col, err := service.Create(context.Background(), dto.CreateCollectionRequest{
		Name:       "Spring Campaign",
		ClientName: "Acme Marketing",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStatusActive, col.Status)
	assert.Len(t, repo.created, 1)
}

func TestCollectionCreateRejectsMissingName(t *testing.T) {
	service, _ := newCollectionServiceFixture()

	_, err := service.Create(context.Background(), dto.CreateCollectionRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCollectionGetNotFound(t *testing.T) {
	service, _ := newCollectionServiceFixture()

	_, err := service.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCollectionArchiveIsIdempotent(t *testing.T) {
	service, _ := newCollectionServiceFixture(models.Collection{
		ID:     "col-1",
		Name:   "Spring Campaign",
		Status: models.CollectionStatusActive,
	})

	col, err := service.Archive(context.Background(), "col-1")
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStatusArchived, col.Status)

	col, err = service.Archive(context.Background(), "col-1")
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStatusArchived, col.Status)
}

func TestCollectionUnarchiveRestoresActive(t *testing.T) {
	service, _ := newCollectionServiceFixture(models.Collection{
		ID:     "col-1",
		Name:   "Spring Campaign",
		Status: models.CollectionStatusArchived,
	})

	col, err := service.Unarchive(context.Background(), "col-1")
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStatusActive, col.Status)
}

func TestCollectionDelete(t *testing.T) {
	service, repo := newCollectionServiceFixture(models.Collection{
		ID:     "col-1",
		Name:   "Spring Campaign",
		Status: models.CollectionStatusActive,
	})

	require.NoError(t, service.Delete(context.Background(), "col-1"))
	assert.Equal(t, []string{"col-1"}, repo.deleted)

	_, err := service.Get(context.Background(), "col-1")
	require.Error(t, err)
}

func TestCollectionStats(t *testing.T) {
	service, _ := newCollectionServiceFixture(models.Collection{
		ID:     "col-1",
		Name:   "Spring Campaign",
		Status: models.CollectionStatusActive,
	})

	stats, err := service.Stats(context.Background(), "col-1")
	require.NoError(t, err)
	assert.Equal(t, 42, stats.TotalRecords)
}
