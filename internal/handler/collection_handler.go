package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docuflow/pdf2csv-api/internal/dto"
	"github.com/docuflow/pdf2csv-api/internal/service"
	appErrors "github.com/docuflow/pdf2csv-api/pkg/errors"
	"github.com/docuflow/pdf2csv-api/pkg/response"
)

// CollectionHandler exposes collection endpoints.
type CollectionHandler struct {
	collections *service.CollectionService
}

// NewCollectionHandler constructs CollectionHandler.
func NewCollectionHandler(collections *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{collections: collections}
}

// List godoc
// @Summary List collections
// @Tags Collections
// @Produce json
// @Param status query string false "Filter by status (active/archived)"
// @Param search query string false "Search by name or client"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /collections [get]
func (h *CollectionHandler) List(c *gin.Context) {
	var query dto.CollectionFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	collections, pagination, err := h.collections.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collections, pagination)
}

// Get godoc
// @Summary Get collection detail
// @Tags Collections
// @Produce json
// @Param id path string true "Collection ID"
// @Success 200 {object} response.Envelope
// @Router /collections/{id} [get]
func (h *CollectionHandler) Get(c *gin.Context) {
	collection, err := h.collections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collection, nil)
}

// Create godoc
// @Summary Create collection
// @Tags Collections
// @Accept json
// @Produce json
// @Param payload body dto.CreateCollectionRequest true "Collection payload"
// @Success 201 {object} response.Envelope
// @Router /collections [post]
func (h *CollectionHandler) Create(c *gin.Context) {
	var req dto.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	collection, err := h.collections.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, collection)
}

// Update godoc
// @Summary Update collection
// @Tags Collections
// @Accept json
// @Produce json
// @Param id path string true "Collection ID"
// @Param payload body dto.UpdateCollectionRequest true "Collection payload"
// @Success 200 {object} response.Envelope
// @Router /collections/{id} [put]
func (h *CollectionHandler) Update(c *gin.Context) {
	var req dto.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	collection, err := h.collections.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collection, nil)
}

// Archive godoc
// @Summary Archive collection
// @Tags Collections
// @Produce json
// @Param id path string true "Collection ID"
// @Success 200 {object} response.Envelope
// @Router /collections/{id}/archive [post]
func (h *CollectionHandler) Archive(c *gin.Context) {
	collection, err := h.collections.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collection, nil)
}

// Unarchive godoc
// @Summary Restore an archived collection to active
// @Tags Collections
// @Produce json
// @Param id path string true "Collection ID"
// @Success 200 {object} response.Envelope
// @Router /collections/{id}/unarchive [post]
func (h *CollectionHandler) Unarchive(c *gin.Context) {
	collection, err := h.collections.Unarchive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collection, nil)
}

// Delete godoc
// @Summary Delete collection and all derived data
// @Tags Collections
// @Produce json
// @Param id path string true "Collection ID"
// @Success 204
// @Router /collections/{id} [delete]
func (h *CollectionHandler) Delete(c *gin.Context) {
	if err := h.collections.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Collection statistics
// @Tags Collections
// @Produce json
// @Param id path string true "Collection ID"
// @Success 200 {object} response.Envelope
// @Router /collections/{id}/stats [get]
func (h *CollectionHandler) Stats(c *gin.Context) {
	stats, err := h.collections.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
