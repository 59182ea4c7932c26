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
	appErrors "github.com/docuflow/pdf2csv-api/pkg/errors"
)

type duplicateRepoStub struct {
	groups   map[string]*models.DuplicateGroupDetail
	resolved []string
	deleted  int
}

func (r *duplicateRepoStub) ListGroups(ctx context.Context, collectionID string, page, pageSize int) ([]models.DuplicateGroupDetail, int, error) {
	var out []models.DuplicateGroupDetail
	for _, g := range r.groups {
		if g.CollectionID == collectionID {
			out = append(out, *g)
		}
	}
	return out, len(out), nil
}

func (r *duplicateRepoStub) GetGroup(ctx context.Context, id string) (*models.DuplicateGroupDetail, error) {
	group, ok := r.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return group, nil
}

func (r *duplicateRepoStub) ResolveGroup(ctx context.Context, groupID, keepID string, deleteIDs []string) (int, error) {
	group, ok := r.groups[groupID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	deleted := 0
	for _, id := range deleteIDs {
		for _, rec := range group.Records {
			if rec.ID == id && id != keepID {
				deleted++
			}
		}
	}
	delete(r.groups, groupID)
	r.resolved = append(r.resolved, groupID)
	r.deleted += deleted
	return deleted, nil
}

func newDuplicateFixture() (*DuplicateService, *duplicateRepoStub) {
	repo := &duplicateRepoStub{groups: map[string]*models.DuplicateGroupDetail{
		"grp-1": {
			DuplicateGroup: models.DuplicateGroup{ID: "grp-1", CollectionID: "col-1", Fingerprint: "m:0412345678", RecordCount: 3},
			Records: []models.Record{
				{ID: "rec-1", CollectionID: "col-1"},
				{ID: "rec-2", CollectionID: "col-1"},
				{ID: "rec-3", CollectionID: "col-1"},
			},
		},
	}}
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	return NewDuplicateService(repo, newCollectionLocks(), cache, zap.NewNop()), repo
}

func TestDuplicateResolveKeepsChosenRecord(t *testing.T) {
	service, repo := newDuplicateFixture()

	deleted, err := service.Resolve(context.Background(), "grp-1", dto.ResolveDuplicateGroupRequest{
		KeepID:    "rec-1",
		DeleteIDs: []string{"rec-2", "rec-3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, []string{"grp-1"}, repo.resolved)
}

func TestDuplicateResolveDefaultsToDroppingOtherMembers(t *testing.T) {
	service, repo := newDuplicateFixture()

	deleted, err := service.Resolve(context.Background(), "grp-1", dto.ResolveDuplicateGroupRequest{
		KeepID: "rec-2",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, 2, repo.deleted)
}

func TestDuplicateResolveRejectsForeignKeep(t *testing.T) {
	service, _ := newDuplicateFixture()

	_, err := service.Resolve(context.Background(), "grp-1", dto.ResolveDuplicateGroupRequest{KeepID: "rec-99"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDuplicateResolveRejectsDeletingKeep(t *testing.T) {
	service, _ := newDuplicateFixture()

	_, err := service.Resolve(context.Background(), "grp-1", dto.ResolveDuplicateGroupRequest{
		KeepID:    "rec-1",
		DeleteIDs: []string{"rec-1"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDuplicateResolveUnknownGroup(t *testing.T) {
	service, _ := newDuplicateFixture()

	_, err := service.Resolve(context.Background(), "missing", dto.ResolveDuplicateGroupRequest{KeepID: "rec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDuplicateResolveRejectsPartialDeleteList(t *testing.T) {
	service, repo := newDuplicateFixture()

	// Leaving rec-3 out would strand a record that still shares the group
	// fingerprint, so the resolution must be refused outright.
	_, err := service.Resolve(context.Background(), "grp-1", dto.ResolveDuplicateGroupRequest{
		KeepID:    "rec-1",
		DeleteIDs: []string{"rec-2"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.resolved)
	assert.Zero(t, repo.deleted)
}

func TestDuplicateResolveReplayConverges(t *testing.T) {
	service, repo := newDuplicateFixture()

	_, err := service.Resolve(context.Background(), "grp-1", dto.ResolveDuplicateGroupRequest{
		KeepID:    "rec-1",
		DeleteIDs: []string{"rec-2", "rec-3"},
	})
	require.NoError(t, err)

	// The group is gone after the first resolution, so a replay reports the
	// group missing rather than deleting anything else.
	_, err = service.Resolve(context.Background(), "grp-1", dto.ResolveDuplicateGroupRequest{
		KeepID:    "rec-1",
		DeleteIDs: []string{"rec-2", "rec-3"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 2, repo.deleted)
}

func TestDuplicateListGroups(t *testing.T) {
	service, _ := newDuplicateFixture()

	groups, pagination, err := service.ListGroups(context.Background(), "col-1", 1, 50)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Len(t, groups[0].Records, 3)
}
