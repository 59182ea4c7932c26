package dto

// UpdateRecordRequest captures PUT /records/:id payload. Nil fields are
// left unchanged; identity edits trigger a duplicate regroup.
type UpdateRecordRequest struct {
	FirstName       *string  `json:"first_name,omitempty" binding:"omitempty,max=100"`
	LastName        *string  `json:"last_name,omitempty" binding:"omitempty,max=100"`
	Mobile          *string  `json:"mobile,omitempty" binding:"omitempty,max=30"`
	Landline        *string  `json:"landline,omitempty" binding:"omitempty,max=30"`
	Address         *string  `json:"address,omitempty" binding:"omitempty,max=500"`
	Email           *string  `json:"email,omitempty" binding:"omitempty,max=254"`
	DateOfBirth     *string  `json:"date_of_birth,omitempty" binding:"omitempty,max=30"`
	LastSeenDate    *string  `json:"last_seen_date,omitempty" binding:"omitempty,max=30"`
	IsValid         *bool    `json:"is_valid,omitempty"`
	IsReviewed      *bool    `json:"is_reviewed,omitempty"`
	ReviewerNotes   *string  `json:"reviewer_notes,omitempty" binding:"omitempty,max=2000"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty" binding:"omitempty,gte=0,lte=1"`
}

// RecordFilterQuery captures list query parameters.
type RecordFilterQuery struct {
	CollectionID string `form:"collection_id"`
	JobID        string `form:"job_id"`
	IsValid      *bool  `form:"is_valid"`
	IsDuplicate  *bool  `form:"is_duplicate"`
	Search       string `form:"search"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

// BulkRecordIDsRequest lists record ids for bulk delete and validate calls.
type BulkRecordIDsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=500"`
}

// ValidateRecordsRequest flips the validity flag over a set of records.
type ValidateRecordsRequest struct {
	IDs     []string `json:"ids" binding:"required,min=1,max=500"`
	IsValid bool     `json:"is_valid"`
}

// ValidateRecordRequest flips the validity flag on one record.
type ValidateRecordRequest struct {
	IsValid bool `json:"is_valid"`
}

// ResolveDuplicateGroupRequest selects the surviving record of a group.
// DeleteIDs may be omitted, in which case every other member is deleted;
// an explicit list must name all non-keep members.
type ResolveDuplicateGroupRequest struct {
	GroupID   string   `json:"group_id" binding:"required"`
	KeepID    string   `json:"keep_record_id" binding:"required"`
	DeleteIDs []string `json:"delete_ids"`
}

// BulkActionResponse reports how many rows a bulk call touched.
type BulkActionResponse struct {
	Affected int `json:"affected"`
}
