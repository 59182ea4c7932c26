package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ExportType enumerates supported export artifact formats.
type ExportType string

const (
	ExportTypeCSV   ExportType = "csv"
	ExportTypeExcel ExportType = "excel"
	ExportTypeZIP   ExportType = "zip"
)

// ExportGroupBy orders exported records.
type ExportGroupBy string

const (
	ExportGroupByNone       ExportGroupBy = "none"
	ExportGroupByCollection ExportGroupBy = "collection"
	ExportGroupByJob        ExportGroupBy = "job"
)

// ExportJob tracks one asynchronous export generation run. It shares the
// processing-job lifecycle shape but executes as a single step, so it is
// never cancelled mid-flight.
type ExportJob struct {
	ID           string           `db:"id" json:"id"`
	CollectionID string           `db:"collection_id" json:"collection_id"`
	JobID        *string          `db:"job_id" json:"job_id,omitempty"`
	ExportType   ExportType       `db:"export_type" json:"export_type"`
	Status       JobStatus        `db:"status" json:"status"`
	Options      ExportJobOptions `db:"options" json:"options"`
	FilePath     *string          `db:"file_path" json:"-"`
	FileSize     int64            `db:"file_size" json:"file_size"`
	RecordCount  int              `db:"record_count" json:"record_count"`
	DownloadURL  *string          `db:"download_url" json:"download_url,omitempty"`
	ErrorMessage *string          `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	CompletedAt  *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
}

// ExportJobOptions stores request-scoped filtering and serialization options
// persisted as JSONB.
type ExportJobOptions struct {
	Encoding          string        `json:"encoding"`
	Delimiter         string        `json:"delimiter"`
	IncludeDuplicates bool          `json:"includeDuplicates"`
	IncludeInvalid    bool          `json:"includeInvalid"`
	GroupBy           ExportGroupBy `json:"groupBy"`
}

// Value marshals options to JSON for persistence.
func (o ExportJobOptions) Value() (driver.Value, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal export job options: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the options struct.
func (o *ExportJobOptions) Scan(value interface{}) error {
	if value == nil {
		*o = ExportJobOptions{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ExportJobOptions", value)
	}
	if len(data) == 0 {
		*o = ExportJobOptions{}
		return nil
	}
	if err := json.Unmarshal(data, o); err != nil {
		return fmt.Errorf("unmarshal export job options: %w", err)
	}
	return nil
}

// ExportFilter encapsulates allowed parameters for listing export history.
type ExportFilter struct {
	CollectionID string
	ExportType   *ExportType
	Status       *JobStatus
	Page         int
	PageSize     int
}
