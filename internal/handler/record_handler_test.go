package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, w
}

func TestRecordHandlerBulkDeleteInvalidBody(t *testing.T) {
	handler := NewRecordHandler(nil)
	c, w := newTestContext(t, http.MethodDelete, "/records/bulk/delete", []byte(`invalid`))

	handler.BulkDelete(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordHandlerBulkDeleteEmptyIDs(t *testing.T) {
	handler := NewRecordHandler(nil)
	c, w := newTestContext(t, http.MethodDelete, "/records/bulk/delete", []byte(`{"ids": []}`))

	handler.BulkDelete(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordHandlerValidateInvalidBody(t *testing.T) {
	handler := NewRecordHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/records/bulk/validate", []byte(`{"is_valid": true}`))

	handler.Validate(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordHandlerValidateOneInvalidBody(t *testing.T) {
	handler := NewRecordHandler(nil)
	c, w := newTestContext(t, http.MethodPost, "/records/rec-1/validate", []byte(`not json`))
	c.Params = gin.Params{{Key: "id", Value: "rec-1"}}

	handler.ValidateOne(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordHandlerSummaryRequiresCollection(t *testing.T) {
	handler := NewRecordHandler(nil)
	c, w := newTestContext(t, http.MethodGet, "/records/stats/summary", nil)

	handler.Summary(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordHandlerUpdateInvalidBody(t *testing.T) {
	handler := NewRecordHandler(nil)
	c, w := newTestContext(t, http.MethodPut, "/records/rec-1", []byte(`not json`))
	c.Params = gin.Params{{Key: "id", Value: "rec-1"}}

	handler.Update(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
