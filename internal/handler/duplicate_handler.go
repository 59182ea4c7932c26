package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/pdf2csv-api/internal/dto"
	"github.com/docuflow/pdf2csv-api/internal/service"
	appErrors "github.com/docuflow/pdf2csv-api/pkg/errors"
	"github.com/docuflow/pdf2csv-api/pkg/response"
)

// DuplicateHandler exposes the manual duplicate review endpoints.
type DuplicateHandler struct {
	duplicates *service.DuplicateService
}

// NewDuplicateHandler constructs DuplicateHandler.
func NewDuplicateHandler(duplicates *service.DuplicateService) *DuplicateHandler {
	return &DuplicateHandler{duplicates: duplicates}
}

// ListGroups godoc
// @Summary List duplicate groups for a collection
// @Tags Duplicates
// @Produce json
// @Param collection_id query string true "Collection ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /records/duplicates/groups [get]
func (h *DuplicateHandler) ListGroups(c *gin.Context) {
	collectionID := c.Query("collection_id")
	if collectionID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "collection_id is required"))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	groups, pagination, err := h.duplicates.ListGroups(c.Request.Context(), collectionID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, pagination)
}

// GetGroup godoc
// @Summary Get one duplicate group with its member records
// @Tags Duplicates
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /records/duplicates/groups/{id} [get]
func (h *DuplicateHandler) GetGroup(c *gin.Context) {
	group, err := h.duplicates.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Resolve godoc
// @Summary Resolve a duplicate group by keeping one record
// @Tags Duplicates
// @Accept json
// @Produce json
// @Param payload body dto.ResolveDuplicateGroupRequest true "Resolution"
// @Success 200 {object} response.Envelope
// @Router /records/duplicates/resolve [post]
func (h *DuplicateHandler) Resolve(c *gin.Context) {
	var req dto.ResolveDuplicateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	deleted, err := h.duplicates.Resolve(c.Request.Context(), req.GroupID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.BulkActionResponse{Affected: deleted}, nil)
}
