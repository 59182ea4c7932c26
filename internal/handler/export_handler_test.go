package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/docuflow/pdf2csv-api/internal/models"
)

func TestExportHandlerGenerateInvalidBody(t *testing.T) {
	handler := NewExportHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/exports/generate", []byte(`invalid`))

	handler.Generate(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerGenerateRejectsUnknownType(t *testing.T) {
	handler := NewExportHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/exports/generate", []byte(`{"collection_id": "col-1", "export_type": "pdf"}`))

	handler.Generate(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerDownloadRequiresToken(t *testing.T) {
	handler := NewExportHandler(nil)
	c, w := newTestContext(t, http.MethodGet, "/exports/download/%20", nil)
	c.Params = gin.Params{{Key: "token", Value: " "}}

	handler.Download(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerBulkDeleteEmptyIDs(t *testing.T) {
	handler := NewExportHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/exports/bulk/delete", []byte(`{"ids": []}`))

	handler.BulkDelete(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportMimeTypes(t *testing.T) {
	assert.Equal(t, "text/csv", exportMimeType(models.ExportTypeCSV))
	assert.Equal(t, "application/zip", exportMimeType(models.ExportTypeZIP))
	assert.Equal(t, "application/octet-stream", exportMimeType(models.ExportType("unknown")))
}
