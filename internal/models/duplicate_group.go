package models

import "time"

// DuplicateGroup links records sharing an identity fingerprint. A group
// exists only while it has at least two members; resolution or deletions
// that leave one or zero members dissolve it.
type DuplicateGroup struct {
	ID           string    `db:"id" json:"id"`
	CollectionID string    `db:"collection_id" json:"collection_id"`
	Fingerprint  string    `db:"fingerprint" json:"fingerprint"`
	RecordCount  int       `db:"record_count" json:"record_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// DuplicateGroupDetail is a group with its member records, as served to the
// manual review UI.
type DuplicateGroupDetail struct {
	DuplicateGroup
	Records []Record `json:"records"`
}
