package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/pdf2csv-api/internal/models"
	"github.com/docuflow/pdf2csv-api/internal/service"
)

type pingerStub struct {
	err error
}

func (p *pingerStub) PingContext(ctx context.Context) error { return p.err }

type countsStub struct {
	counts models.SystemCounts
}

func (s *countsStub) SystemCounts(ctx context.Context) (*models.SystemCounts, error) {
	copied := s.counts
	return &copied, nil
}

func TestMetricsHandlerReadyReportsDatabaseFailure(t *testing.T) {
	handler := NewMetricsHandler(nil, nil, &pingerStub{err: errors.New("connection refused")})
	c, w := newTestContext(t, http.MethodGet, "/ready", nil)

	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsHandlerReadyOK(t *testing.T) {
	handler := NewMetricsHandler(nil, nil, &pingerStub{})
	c, w := newTestContext(t, http.MethodGet, "/ready", nil)

	handler.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsHandlerStatsIncludesCounts(t *testing.T) {
	counts := &countsStub{counts: models.SystemCounts{Collections: 3, Records: 120, ActiveJobs: 1}}
	handler := NewMetricsHandler(service.NewMetricsService(), counts, nil)
	c, w := newTestContext(t, http.MethodGet, "/stats", nil)

	handler.Stats(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"collections":3`)
	assert.Contains(t, w.Body.String(), `"active_jobs":1`)
}
