package plan

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

func do(t *testing.T, h http.Handler, method, path, body string) (int, response.APIResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))

	var resp response.APIResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func dataMap(t *testing.T, resp response.APIResponse) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is not an object: %#v", resp.Data)
	return m
}

func TestHandler_PlanLifecycle(t *testing.T) {
	e := newTestEnv(t)
	h := NewHandler(e.svc, e.roles).Routes()

	code, resp := do(t, h, http.MethodPost, "/", `{"name":"歓迎会","total_amount":"10000"}`)
	require.Equal(t, http.StatusCreated, code)
	id := dataMap(t, resp)["id"].(string)

	code, resp = do(t, h, http.MethodPost, "/"+id+"/participants", `{"name":"田中","role":{"kind":"standard","role":"director"}}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "部長", dataMap(t, resp)["role_name"])
	tanaka := dataMap(t, resp)["id"].(string)

	for _, name := range []string{"佐藤", "鈴木"} {
		code, _ = do(t, h, http.MethodPost, "/"+id+"/participants", `{"name":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, code)
	}

	code, _ = do(t, h, http.MethodPut, "/"+id+"/participants/"+tanaka+"/paid", `{"paid":true}`)
	require.Equal(t, http.StatusOK, code)

	code, resp = do(t, h, http.MethodGet, "/"+id+"/summary", "")
	require.Equal(t, http.StatusOK, code)
	summary := dataMap(t, resp)
	assert.Equal(t, float64(10000), summary["allocated"])
	assert.Equal(t, float64(5000), summary["collected"])
	payments := summary["payments"].([]any)
	require.Len(t, payments, 3)
	assert.Equal(t, "¥5,000", payments[0].(map[string]any)["formatted"])

	code, resp = do(t, h, http.MethodPost, "/"+id+"/items", `{"name":"","amount":2000}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "追加金額", dataMap(t, resp)["name"])

	code, resp = do(t, h, http.MethodGet, "/"+id, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(12000), dataMap(t, resp)["effective_total"])

	code, resp = do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)

	code, _ = do(t, h, http.MethodDelete, "/"+id, "")
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = do(t, h, http.MethodGet, "/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHandler_Errors(t *testing.T) {
	e := newTestEnv(t)
	h := NewHandler(e.svc, e.roles).Routes()
	p := e.plan(t, "1000")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"bad json", http.MethodPost, "/", `{`, http.StatusBadRequest, "BAD_REQUEST"},
		{"empty name", http.MethodPost, "/", `{"name":""}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown policy", http.MethodPut, "/" + p.ID, `{"policy":"DICE"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"missing plan", http.MethodGet, "/nope/summary", "", http.StatusNotFound, "NOT_FOUND"},
		{"missing participant", http.MethodPut, "/" + p.ID + "/participants/nope", `{}`, http.StatusNotFound, "NOT_FOUND"},
		{"missing item", http.MethodPut, "/" + p.ID + "/items/nope", `{"amount":1}`, http.StatusNotFound, "NOT_FOUND"},
		{"negative item", http.MethodPost, "/" + p.ID + "/items", `{"amount":-1}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown attendee", http.MethodPost, "/" + p.ID + "/confirm", `{"participant_ids":["x"]}`, http.StatusUnprocessableEntity, "UNPROCESSABLE"},
		{"responses disabled", http.MethodPost, "/" + p.ID + "/import-responses", "", http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHandler_Calculate(t *testing.T) {
	e := newTestEnv(t)
	h := NewHandler(e.svc, e.roles).Routes()

	body := `{
		"total_amount": "10000",
		"policy": "REMAINDER",
		"participants": [
			{"id": "a", "name": "A"},
			{"id": "b", "name": "B"},
			{"id": "c", "name": "C", "has_fixed_amount": true, "fixed_amount": 1000}
		]
	}`
	code, resp := do(t, h, http.MethodPost, "/calculate", body)
	require.Equal(t, http.StatusOK, code)

	summary := dataMap(t, resp)
	assert.Equal(t, "REMAINDER", summary["policy"])
	assert.Equal(t, float64(0), summary["gap"])
	payments := summary["payments"].([]any)
	require.Len(t, payments, 3)
	assert.Equal(t, float64(4500), payments[0].(map[string]any)["amount"])
	assert.Equal(t, float64(1000), payments[2].(map[string]any)["amount"])
}

func TestHandler_CalculateRejectsBadMultiplier(t *testing.T) {
	e := newTestEnv(t)
	h := NewHandler(e.svc, e.roles).Routes()

	for _, m := range []string{"0", "-1", "9.5"} {
		body := `{"total_amount": "1000", "participants": [{"id": "a", "multiplier": ` + m + `}]}`
		code, _ := do(t, h, http.MethodPost, "/calculate", body)
		assert.Equal(t, http.StatusBadRequest, code, "multiplier %s", m)
	}
}
