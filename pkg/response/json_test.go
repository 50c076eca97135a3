package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	JSON(rec, req, http.StatusCreated, map[string]int{"amount": 5000})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
	assert.Equal(t, map[string]any{"amount": float64(5000)}, body.Data)
}

func TestJSONWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	JSONWithMeta(rec, req, http.StatusOK, []string{"a", "b"}, &Meta{Total: 2})

	body := decode(t, rec)
	require.NotNil(t, body.Meta)
	assert.Equal(t, 2, body.Meta.Total)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		send   func(http.ResponseWriter, *http.Request)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter, r *http.Request) { BadRequest(w, r, "x") }, http.StatusBadRequest, "BAD_REQUEST"},
		{"not found", func(w http.ResponseWriter, r *http.Request) { NotFound(w, r, "x") }, http.StatusNotFound, "NOT_FOUND"},
		{"conflict", func(w http.ResponseWriter, r *http.Request) { Conflict(w, r, "x") }, http.StatusConflict, "CONFLICT"},
		{"unprocessable", func(w http.ResponseWriter, r *http.Request) { Unprocessable(w, r, "x") }, http.StatusUnprocessableEntity, "UNPROCESSABLE"},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) { Unauthorized(w, r, "x") }, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unavailable", func(w http.ResponseWriter, r *http.Request) { ServiceUnavailable(w, r, "x") }, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"internal", func(w http.ResponseWriter, r *http.Request) { InternalError(w, r, "x", errors.New("boom")) }, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.send(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, "x", body.Error.Message)
		})
	}
}
