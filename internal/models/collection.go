package models

import "time"

// CollectionStatus enumerates collection lifecycle states.
type CollectionStatus string

const (
	CollectionStatusActive   CollectionStatus = "active"
	CollectionStatusArchived CollectionStatus = "archived"
)

// Collection groups the records extracted for a single client engagement.
// Archiving hides a collection from default listings without deleting its
// records.
type Collection struct {
	ID          string           `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	ClientName  string           `db:"client_name" json:"client_name"`
	Description string           `db:"description" json:"description"`
	Status      CollectionStatus `db:"status" json:"status"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// CollectionFilter encapsulates allowed parameters for listing collections.
type CollectionFilter struct {
	Status   *CollectionStatus
	Search   string
	Page     int
	PageSize int
}

// CollectionStats aggregates per-collection counters for the stats endpoint.
type CollectionStats struct {
	CollectionID   string `db:"collection_id" json:"collection_id"`
	TotalRecords   int    `db:"total_records" json:"total_records"`
	ValidRecords   int    `db:"valid_records" json:"valid_records"`
	DuplicateCount int    `db:"duplicate_count" json:"duplicate_count"`
	GroupCount     int    `db:"group_count" json:"group_count"`
	JobCount       int    `db:"job_count" json:"job_count"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
