package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/plans/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plans/"+id, nil))
	}

	body := scrape(t, m)
	assert.Contains(t, body, `warikan_requests_total{code="418",method="GET",route="/plans/{id}"} 3`)
	assert.NotContains(t, body, `route="/plans/a"`)
}

func TestObserver(t *testing.T) {
	m := New()
	m.AllocationComputed("INCLUSIVE", 3, -2334)
	m.AllocationComputed("INCLUSIVE", 3, 0)
	m.AllocationComputed("REMAINDER", 2, 0)
	m.PlanSaved("create")

	body := scrape(t, m)
	assert.Contains(t, body, `warikan_allocations_total{policy="INCLUSIVE"} 2`)
	assert.Contains(t, body, `warikan_allocations_total{policy="REMAINDER"} 1`)
	assert.Contains(t, body, `warikan_allocation_gap_yen_sum{policy="INCLUSIVE"} 2334`)
	assert.Contains(t, body, `warikan_plan_saves_total{operation="create"} 1`)
}
