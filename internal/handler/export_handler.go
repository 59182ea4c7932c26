package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/pdf2csv-api/internal/dto"
	"github.com/docuflow/pdf2csv-api/internal/models"
	"github.com/docuflow/pdf2csv-api/internal/service"
	appErrors "github.com/docuflow/pdf2csv-api/pkg/errors"
	"github.com/docuflow/pdf2csv-api/pkg/response"
)

// ExportHandler exposes export generation, polling and download endpoints.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Generate godoc
// @Summary Queue export generation
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.CreateExportRequest true "Export options"
// @Success 202 {object} response.Envelope
// @Router /exports/generate [post]
func (h *ExportHandler) Generate(c *gin.Context) {
	var req dto.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	job, err := h.exports.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Status godoc
// @Summary Export job status for polling clients
// @Tags Exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	status, err := h.exports.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// History godoc
// @Summary List past export jobs
// @Tags Exports
// @Produce json
// @Param collection_id query string false "Filter by collection"
// @Param export_type query string false "Filter by type"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /exports/history/list [get]
func (h *ExportHandler) History(c *gin.Context) {
	var query dto.ExportFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	exportList, pagination, err := h.exports.History(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exportList, pagination)
}

// DownloadByID godoc
// @Summary Redirect to the signed download URL for a completed export
// @Tags Exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 302
// @Router /exports/{id}/download [get]
func (h *ExportHandler) DownloadByID(c *gin.Context) {
	status, err := h.exports.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if status.DownloadURL == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidState, "export not ready for download"))
		return
	}
	c.Redirect(http.StatusFound, *status.DownloadURL)
}

// Download godoc
// @Summary Download a completed export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.exports.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck

	info, err := result.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export artifact"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), exportMimeType(result.ExportType), result.File, nil)
}

// Delete godoc
// @Summary Delete an export job and its artifact
// @Tags Exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 204
// @Router /exports/{id} [delete]
func (h *ExportHandler) Delete(c *gin.Context) {
	if err := h.exports.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BulkDelete godoc
// @Summary Delete a set of export jobs and their artifacts
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.BulkExportIDsRequest true "Export ids"
// @Success 200 {object} response.Envelope
// @Router /exports/bulk/delete [post]
func (h *ExportHandler) BulkDelete(c *gin.Context) {
	var req dto.BulkExportIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	deleted, err := h.exports.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.BulkActionResponse{Affected: deleted}, nil)
}

func exportMimeType(exportType models.ExportType) string {
	switch exportType {
	case models.ExportTypeCSV:
		return "text/csv"
	case models.ExportTypeExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case models.ExportTypeZIP:
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
