package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDuplicateHandlerListRequiresCollection(t *testing.T) {
	handler := NewDuplicateHandler(nil)
	c, w := newTestContext(t, http.MethodGet, "/records/duplicates/groups", nil)

	handler.ListGroups(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDuplicateHandlerResolveInvalidBody(t *testing.T) {
	handler := NewDuplicateHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/records/duplicates/resolve", []byte(`{"delete_ids": []}`))

	handler.Resolve(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
