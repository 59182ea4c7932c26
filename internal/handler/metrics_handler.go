package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/pdf2csv-api/internal/models"
	"github.com/docuflow/pdf2csv-api/internal/service"
	appErrors "github.com/docuflow/pdf2csv-api/pkg/errors"
	"github.com/docuflow/pdf2csv-api/pkg/response"
)

type systemCounter interface {
	SystemCounts(ctx context.Context) (*models.SystemCounts, error)
}

type dbPinger interface {
	PingContext(ctx context.Context) error
}

// MetricsHandler exposes health, readiness and observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	counts  systemCounter
	db      dbPinger
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, counts systemCounter, db dbPinger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, counts: counts, db: db}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness probes.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready verifies the database connection before reporting readiness.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Stats godoc
// @Summary System totals and pipeline throughput counters
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *MetricsHandler) Stats(c *gin.Context) {
	payload := gin.H{"metrics": h.metrics.Snapshot()}
	if h.counts != nil {
		counts, err := h.counts.SystemCounts(c.Request.Context())
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load system counts"))
			return
		}
		payload["counts"] = counts
	}
	response.JSON(c, http.StatusOK, payload, nil)
}
