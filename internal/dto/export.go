package dto

import "github.com/docuflow/pdf2csv-api/internal/models"

// CreateExportRequest captures POST /exports/generate payload.
type CreateExportRequest struct {
	CollectionID      string  `json:"collection_id" binding:"required"`
	JobID             *string `json:"job_id,omitempty"`
	ExportType        string  `json:"export_type" binding:"required,oneof=csv excel zip"`
	Encoding          string  `json:"encoding" binding:"omitempty,oneof=utf-8 latin-1"`
	Delimiter         string  `json:"delimiter" binding:"omitempty,max=1"`
	IncludeDuplicates bool    `json:"include_duplicates"`
	IncludeInvalid    bool    `json:"include_invalid"`
	GroupBy           string  `json:"group_by" binding:"omitempty,oneof=none collection job"`
}

// ExportStatusResponse exposes export job metadata for polling clients.
type ExportStatusResponse struct {
	ID          string            `json:"id"`
	Status      models.JobStatus  `json:"status"`
	ExportType  models.ExportType `json:"export_type"`
	RecordCount int               `json:"record_count"`
	FileSize    int64             `json:"file_size"`
	DownloadURL *string           `json:"download_url,omitempty"`
	Error       *string           `json:"error,omitempty"`
}

// BulkExportIDsRequest lists export job ids for bulk delete.
type BulkExportIDsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=100"`
}

// ExportFilterQuery captures export history query parameters.
type ExportFilterQuery struct {
	CollectionID string `form:"collection_id"`
	ExportType   string `form:"export_type" binding:"omitempty,oneof=csv excel zip"`
	Status       string `form:"status" binding:"omitempty,oneof=queued processing completed failed cancelled"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}
