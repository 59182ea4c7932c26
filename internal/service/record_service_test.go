package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/docuflow/pdf2csv-api/internal/dedup"
	"github.com/docuflow/pdf2csv-api/internal/dto"
	"github.com/docuflow/pdf2csv-api/internal/models"
	"github.com/docuflow/pdf2csv-api/internal/repository"
	appErrors "github.com/docuflow/pdf2csv-api/pkg/errors"
)

type recordStoreStub struct {
	mu        sync.Mutex
	records   map[string]*models.Record
	regroups  int
	groupings []dedup.Grouping
}

func newRecordStoreStub(records ...models.Record) *recordStoreStub {
	stub := &recordStoreStub{records: make(map[string]*models.Record)}
	for i := range records {
		rec := records[i]
		stub.records[rec.ID] = &rec
	}
	return stub
}

func (s *recordStoreStub) GetByID(ctx context.Context, id string) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *rec
	return &copied, nil
}

func (s *recordStoreStub) List(ctx context.Context, filter models.RecordFilter) ([]models.Record, int, error) {
	records, err := s.ListByCollection(ctx, filter.CollectionID)
	return records, len(records), err
}

func (s *recordStoreStub) ListByCollection(ctx context.Context, collectionID string) ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Record
	for _, rec := range s.records {
		if collectionID == "" || rec.CollectionID == collectionID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (s *recordStoreStub) Update(ctx context.Context, id string, params repository.UpdateRecordParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.FirstName != nil {
		rec.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		rec.LastName = *params.LastName
	}
	if params.Mobile != nil {
		rec.Mobile = *params.Mobile
	}
	if params.Address != nil {
		rec.Address = *params.Address
	}
	if params.IsReviewed != nil {
		rec.IsReviewed = *params.IsReviewed
	}
	if params.ReviewerNotes != nil {
		rec.ReviewerNotes = *params.ReviewerNotes
	}
	return nil
}

func (s *recordStoreStub) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *recordStoreStub) BulkDelete(ctx context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for _, id := range ids {
		if _, ok := s.records[id]; ok {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *recordStoreStub) SetValidity(ctx context.Context, ids []string, valid bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	affected := 0
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			rec.IsValid = valid
			affected++
		}
	}
	return affected, nil
}

func (s *recordStoreStub) Summary(ctx context.Context, collectionID string) (*models.RecordsSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary := &models.RecordsSummary{}
	for _, rec := range s.records {
		if rec.CollectionID != collectionID {
			continue
		}
		summary.TotalRecords++
		if rec.IsValid {
			summary.ValidRecords++
		}
		if rec.IsDuplicate {
			summary.DuplicateRecords++
		}
	}
	return summary, nil
}

func (s *recordStoreStub) ApplyGrouping(ctx context.Context, collectionID string, grouping dedup.Grouping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regroups++
	s.groupings = append(s.groupings, grouping)
	for _, rec := range s.records {
		if rec.CollectionID != collectionID {
			continue
		}
		_, dup := grouping.Assignment[rec.ID]
		rec.IsDuplicate = dup
		if !dup {
			rec.DuplicateGroupID = nil
		}
	}
	return nil
}

func newRecordFixture(records ...models.Record) (*RecordService, *recordStoreStub) {
	repo := newRecordStoreStub(records...)
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	return NewRecordService(repo, newCollectionLocks(), cache, zap.NewNop()), repo
}

func testRecord(id, mobile string) models.Record {
	return models.Record{
		ID:           id,
		CollectionID: "col-1",
		FirstName:    "Jane",
		LastName:     "Doe",
		Mobile:       mobile,
		Address:      "1 Main St",
		IsValid:      true,
	}
}

func strPtr(v string) *string { return &v }

func TestRecordUpdateIdentityFieldTriggersRegroup(t *testing.T) {
	service, repo := newRecordFixture(
		testRecord("rec-1", "0400000001"),
		testRecord("rec-2", "0400000002"),
	)

	updated, err := service.Update(context.Background(), "rec-1", dto.UpdateRecordRequest{
		Mobile: strPtr("0400000002"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0400000002", updated.Mobile)
	assert.Equal(t, 1, repo.regroups)
	assert.True(t, updated.IsDuplicate)

	other, err := service.Get(context.Background(), "rec-2")
	require.NoError(t, err)
	assert.True(t, other.IsDuplicate)
}

func TestRecordUpdateNonIdentityFieldSkipsRegroup(t *testing.T) {
	service, repo := newRecordFixture(testRecord("rec-1", "0400000001"))

	reviewed := true
	updated, err := service.Update(context.Background(), "rec-1", dto.UpdateRecordRequest{
		IsReviewed:    &reviewed,
		ReviewerNotes: strPtr("checked against the source scan"),
	})
	require.NoError(t, err)
	assert.True(t, updated.IsReviewed)
	assert.Equal(t, 0, repo.regroups)
}

func TestRecordUpdateUnknownRecord(t *testing.T) {
	service, _ := newRecordFixture()

	_, err := service.Update(context.Background(), "missing", dto.UpdateRecordRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRecordDeleteDissolvesPairGroup(t *testing.T) {
	service, repo := newRecordFixture(
		testRecord("rec-1", "0400000009"),
		testRecord("rec-2", "0400000009"),
	)
	repo.records["rec-1"].IsDuplicate = true
	repo.records["rec-2"].IsDuplicate = true

	err := service.Delete(context.Background(), "rec-2")
	require.NoError(t, err)
	require.Equal(t, 1, repo.regroups)

	survivor, err := service.Get(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.False(t, survivor.IsDuplicate)
}

func TestRecordBulkDeleteRegroupsOnce(t *testing.T) {
	service, repo := newRecordFixture(
		testRecord("rec-1", "0400000001"),
		testRecord("rec-2", "0400000002"),
		testRecord("rec-3", "0400000003"),
	)

	deleted, err := service.BulkDelete(context.Background(), dto.BulkRecordIDsRequest{
		IDs: []string{"rec-2", "rec-3", "rec-404"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, 1, repo.regroups)
}

func TestRecordBulkDeleteUnmarksSurvivingPartner(t *testing.T) {
	service, repo := newRecordFixture(
		testRecord("rec-a", "0400000009"),
		testRecord("rec-b", "0400000009"),
	)
	repo.records["rec-a"].IsDuplicate = true
	repo.records["rec-b"].IsDuplicate = true

	deleted, err := service.BulkDelete(context.Background(), dto.BulkRecordIDsRequest{
		IDs: []string{"rec-b"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	require.Equal(t, 1, repo.regroups)

	survivor, err := service.Get(context.Background(), "rec-a")
	require.NoError(t, err)
	assert.False(t, survivor.IsDuplicate)
}

func TestRecordBulkDeleteNoMatchesSkipsRegroup(t *testing.T) {
	service, repo := newRecordFixture(testRecord("rec-1", "0400000001"))

	deleted, err := service.BulkDelete(context.Background(), dto.BulkRecordIDsRequest{
		IDs: []string{"rec-404"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
	assert.Equal(t, 0, repo.regroups)
}

func TestRecordValidateNeverRegroups(t *testing.T) {
	service, repo := newRecordFixture(
		testRecord("rec-1", "0400000009"),
		testRecord("rec-2", "0400000009"),
	)

	affected, err := service.Validate(context.Background(), dto.ValidateRecordsRequest{
		IDs:     []string{"rec-1", "rec-2"},
		IsValid: false,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, affected)
	assert.Equal(t, 0, repo.regroups)

	rec, err := service.Get(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.False(t, rec.IsValid)
}

func TestRecordSummaryCounts(t *testing.T) {
	invalid := testRecord("rec-3", "0400000003")
	invalid.IsValid = false
	dup := testRecord("rec-2", "0400000001")
	dup.IsDuplicate = true
	service, _ := newRecordFixture(testRecord("rec-1", "0400000001"), dup, invalid)

	summary, err := service.Summary(context.Background(), "col-1")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalRecords)
	assert.Equal(t, 2, summary.ValidRecords)
	assert.Equal(t, 1, summary.DuplicateRecords)
}
