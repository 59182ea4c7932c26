package dto

import "github.com/docuflow/pdf2csv-api/internal/models"

// UploadRequest carries the multipart form fields submitted alongside the
// PDF files. GroupSize is a pointer so an omitted field (defaulted) can be
// told apart from an explicit out-of-range value (rejected).
type UploadRequest struct {
	CollectionID string `form:"collection_id" binding:"required"`
	GroupSize    *int   `form:"group_size"`
	OutputFormat string `form:"output_format" binding:"omitempty,oneof=csv excel"`
}

// JobResponse is returned after a job submission is accepted.
type JobResponse struct {
	ID           string           `json:"id"`
	CollectionID string           `json:"collection_id"`
	Status       models.JobStatus `json:"status"`
	TotalFiles   int              `json:"total_files"`
	GroupSize    int              `json:"group_size"`
}

// JobStatusResponse exposes job progress metadata for polling clients.
type JobStatusResponse struct {
	ID              string           `json:"id"`
	CollectionID    string           `json:"collection_id"`
	Status          models.JobStatus `json:"status"`
	TotalFiles      int              `json:"total_files"`
	ProcessedFiles  int              `json:"processed_files"`
	TotalRecords    int              `json:"total_records"`
	DuplicatesFound int              `json:"duplicates_found"`
	CancelRequested bool             `json:"cancel_requested"`
	Error           *string          `json:"error,omitempty"`
}

// JobFilterQuery captures list query parameters.
type JobFilterQuery struct {
	CollectionID string `form:"collection_id"`
	Status       string `form:"status" binding:"omitempty,oneof=queued processing completed failed cancelled"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}
