package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/pdf2csv-api/internal/dto"
	"github.com/docuflow/pdf2csv-api/internal/extract"
	"github.com/docuflow/pdf2csv-api/internal/service"
	appErrors "github.com/docuflow/pdf2csv-api/pkg/errors"
	"github.com/docuflow/pdf2csv-api/pkg/response"
)

// JobHandler exposes the scan upload and job polling endpoints.
type JobHandler struct {
	processing *service.ProcessingService
}

// NewJobHandler constructs JobHandler.
func NewJobHandler(processing *service.ProcessingService) *JobHandler {
	return &JobHandler{processing: processing}
}

// Upload godoc
// @Summary Submit scanned PDFs for contact extraction
// @Tags Jobs
// @Accept multipart/form-data
// @Produce json
// @Param collection_id formData string true "Target collection"
// @Param group_size formData int false "Documents per extraction batch"
// @Param output_format formData string false "Preferred output format (csv/excel)"
// @Param files formData file true "PDF files"
// @Success 202 {object} response.Envelope
// @Router /files/upload [post]
func (h *JobHandler) Upload(c *gin.Context) {
	var req dto.UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart form"))
		return
	}
	files := form.File["files"]
	docs := make([]extract.Document, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file"))
			return
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file"))
			return
		}
		docs = append(docs, extract.Document{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     content,
		})
	}

	job, err := h.processing.Submit(c.Request.Context(), req, docs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Status godoc
// @Summary Job progress for polling clients
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /files/jobs/{id} [get]
func (h *JobHandler) Status(c *gin.Context) {
	status, err := h.processing.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// List godoc
// @Summary List processing jobs
// @Tags Jobs
// @Produce json
// @Param collection_id query string false "Filter by collection"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /files/jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	var query dto.JobFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	jobList, pagination, err := h.processing.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobList, pagination)
}

// Cancel godoc
// @Summary Request job cancellation
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /files/jobs/{id} [delete]
func (h *JobHandler) Cancel(c *gin.Context) {
	status, err := h.processing.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
