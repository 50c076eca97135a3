package event

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/warikan/pkg/response"
)

func call(t *testing.T, h http.Handler, method, path, body string) (int, response.APIResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))

	var resp response.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestHandler_OrganizerAndPublicFlow(t *testing.T) {
	h := NewHandler(NewService(newMockStore()))
	organizer := h.Routes()
	public := h.PublicRoutes()

	code, resp := call(t, organizer, http.MethodPost, "/", `{"title":"歓迎会","candidate_dates":["2026-05-01"]}`)
	require.Equal(t, http.StatusCreated, code)
	id := resp.Data.(map[string]any)["id"].(string)

	code, resp = call(t, public, http.MethodGet, "/"+id, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "歓迎会", resp.Data.(map[string]any)["title"])

	code, _ = call(t, public, http.MethodPost, "/"+id+"/responses", `{"name":"山田","answers":{"2026-05-01":"yes"}}`)
	require.Equal(t, http.StatusCreated, code)

	code, _ = call(t, public, http.MethodPost, "/"+id+"/responses", `{"name":"山田","answers":{"2026-05-02":"yes"}}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = call(t, organizer, http.MethodGet, "/"+id+"/responses", "")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)

	code, resp = call(t, public, http.MethodGet, "/unknown", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	code, _ = call(t, organizer, http.MethodPost, "/", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
}
