package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/pdf2csv-api/internal/dto"
	"github.com/docuflow/pdf2csv-api/internal/service"
	appErrors "github.com/docuflow/pdf2csv-api/pkg/errors"
	"github.com/docuflow/pdf2csv-api/pkg/response"
)

// RecordHandler exposes the record review endpoints.
type RecordHandler struct {
	records *service.RecordService
}

// NewRecordHandler constructs RecordHandler.
func NewRecordHandler(records *service.RecordService) *RecordHandler {
	return &RecordHandler{records: records}
}

// List godoc
// @Summary List extracted records
// @Tags Records
// @Produce json
// @Param collection_id query string false "Filter by collection"
// @Param job_id query string false "Filter by job"
// @Param is_valid query bool false "Filter by validity"
// @Param is_duplicate query bool false "Filter by duplicate flag"
// @Param search query string false "Search name, mobile or address"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /records [get]
func (h *RecordHandler) List(c *gin.Context) {
	var query dto.RecordFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	records, pagination, err := h.records.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Get godoc
// @Summary Get record detail
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /records/{id} [get]
func (h *RecordHandler) Get(c *gin.Context) {
	record, err := h.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Update godoc
// @Summary Edit a record
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body dto.UpdateRecordRequest true "Record fields"
// @Success 200 {object} response.Envelope
// @Router /records/{id} [put]
func (h *RecordHandler) Update(c *gin.Context) {
	var req dto.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.records.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Delete godoc
// @Summary Delete a record
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 204
// @Router /records/{id} [delete]
func (h *RecordHandler) Delete(c *gin.Context) {
	if err := h.records.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BulkDelete godoc
// @Summary Delete a set of records
// @Tags Records
// @Accept json
// @Produce json
// @Param payload body dto.BulkRecordIDsRequest true "Record ids"
// @Success 200 {object} response.Envelope
// @Router /records/bulk/delete [delete]
func (h *RecordHandler) BulkDelete(c *gin.Context) {
	var req dto.BulkRecordIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	deleted, err := h.records.BulkDelete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.BulkActionResponse{Affected: deleted}, nil)
}

// Validate godoc
// @Summary Set the validity flag on a set of records
// @Tags Records
// @Accept json
// @Produce json
// @Param payload body dto.ValidateRecordsRequest true "Record ids and validity"
// @Success 200 {object} response.Envelope
// @Router /records/bulk/validate [post]
func (h *RecordHandler) Validate(c *gin.Context) {
	var req dto.ValidateRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	affected, err := h.records.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.BulkActionResponse{Affected: affected}, nil)
}

// ValidateOne godoc
// @Summary Set the validity flag on a single record
// @Tags Records
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body dto.ValidateRecordRequest true "Validity flag"
// @Success 200 {object} response.Envelope
// @Router /records/{id}/validate [post]
func (h *RecordHandler) ValidateOne(c *gin.Context) {
	var req dto.ValidateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	affected, err := h.records.Validate(c.Request.Context(), dto.ValidateRecordsRequest{
		IDs:     []string{c.Param("id")},
		IsValid: req.IsValid,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if affected == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "record not found"))
		return
	}
	record, err := h.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Summary godoc
// @Summary Record counters for one collection
// @Tags Records
// @Produce json
// @Param collection_id query string true "Collection ID"
// @Success 200 {object} response.Envelope
// @Router /records/stats/summary [get]
func (h *RecordHandler) Summary(c *gin.Context) {
	collectionID := c.Query("collection_id")
	if collectionID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "collection_id is required"))
		return
	}
	summary, err := h.records.Summary(c.Request.Context(), collectionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
