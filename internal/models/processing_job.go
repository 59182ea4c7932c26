package models

import "time"

// JobStatus captures background job lifecycle states. A job row is mutated
// only by the pipeline workers; once terminal it never transitions again.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Terminal reports whether no further status transition may occur.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// OutputFormat is the export format requested at upload time.
type OutputFormat string

const (
	OutputFormatCSV   OutputFormat = "csv"
	OutputFormatExcel OutputFormat = "excel"
)

// ProcessingJob tracks one bulk extraction run over an ordered set of
// uploaded documents. ProcessedFiles advances in batch-sized steps and
// never exceeds TotalFiles.
type ProcessingJob struct {
	ID              string       `db:"id" json:"id"`
	CollectionID    string       `db:"collection_id" json:"collection_id"`
	Status          JobStatus    `db:"status" json:"status"`
	TotalFiles      int          `db:"total_files" json:"total_files"`
	ProcessedFiles  int          `db:"processed_files" json:"processed_files"`
	TotalRecords    int          `db:"total_records" json:"total_records"`
	DuplicatesFound int          `db:"duplicates_found" json:"duplicates_found"`
	GroupSize       int          `db:"group_size" json:"group_size"`
	OutputFormat    OutputFormat `db:"output_format" json:"output_format"`
	CancelRequested bool         `db:"cancel_requested" json:"cancel_requested"`
	ErrorMessage    *string      `db:"error_message" json:"error_message,omitempty"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	CompletedAt     *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
}

// JobFilter encapsulates allowed parameters for listing processing jobs.
type JobFilter struct {
	CollectionID string
	Status       *JobStatus
	Page         int
	PageSize     int
}
