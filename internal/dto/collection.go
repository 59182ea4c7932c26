package dto

import "github.com/docuflow/pdf2csv-api/internal/models"

// CreateCollectionRequest captures POST /collections payload.
type CreateCollectionRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	ClientName  string `json:"client_name" binding:"max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// UpdateCollectionRequest captures PUT /collections/:id payload. Nil fields
// are left unchanged.
type UpdateCollectionRequest struct {
	Name        *string                  `json:"name,omitempty" binding:"omitempty,max=200"`
	ClientName  *string                  `json:"client_name,omitempty" binding:"omitempty,max=200"`
	Description *string                  `json:"description,omitempty" binding:"omitempty,max=2000"`
	Status      *models.CollectionStatus `json:"status,omitempty" binding:"omitempty,oneof=active archived"`
}

// CollectionFilterQuery captures list query parameters.
type CollectionFilterQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=active archived"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
