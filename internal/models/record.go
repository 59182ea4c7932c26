package models

import "time"

// Record is a single extracted contact. IsDuplicate and DuplicateGroupID are
// engine-managed: every record flagged duplicate carries a group reference.
type Record struct {
	ID               string     `db:"id" json:"id"`
	CollectionID     string     `db:"collection_id" json:"collection_id"`
	JobID            string     `db:"job_id" json:"job_id"`
	SourceFile       string     `db:"source_file" json:"source_file"`
	FirstName        string     `db:"first_name" json:"first_name"`
	LastName         string     `db:"last_name" json:"last_name"`
	Mobile           string     `db:"mobile" json:"mobile"`
	Landline         string     `db:"landline" json:"landline"`
	Address          string     `db:"address" json:"address"`
	Email            string     `db:"email" json:"email"`
	DateOfBirth      string     `db:"date_of_birth" json:"date_of_birth"`
	LastSeenDate     string     `db:"last_seen_date" json:"last_seen_date"`
	IsValid          bool       `db:"is_valid" json:"is_valid"`
	IsDuplicate      bool       `db:"is_duplicate" json:"is_duplicate"`
	DuplicateGroupID *string    `db:"duplicate_group_id" json:"duplicate_group_id,omitempty"`
	IsReviewed       bool       `db:"is_reviewed" json:"is_reviewed"`
	ReviewerNotes    string     `db:"reviewer_notes" json:"reviewer_notes"`
	ConfidenceScore  float64    `db:"confidence_score" json:"confidence_score"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// RecordFilter encapsulates allowed parameters for listing records.
type RecordFilter struct {
	CollectionID string
	JobID        string
	IsValid      *bool
	IsDuplicate  *bool
	Search       string
	Page         int
	PageSize     int
}

// RecordsSummary aggregates record counters for the summary endpoint.
type RecordsSummary struct {
	TotalRecords     int `db:"total_records" json:"total_records"`
	ValidRecords     int `db:"valid_records" json:"valid_records"`
	InvalidRecords   int `db:"invalid_records" json:"invalid_records"`
	DuplicateRecords int `db:"duplicate_records" json:"duplicate_records"`
	ReviewedRecords  int `db:"reviewed_records" json:"reviewed_records"`
}
