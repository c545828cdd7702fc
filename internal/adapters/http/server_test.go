package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/regiongraph/internal/logging"
	"github.com/aretw0/regiongraph/pkg/domain"
	"github.com/aretw0/regiongraph/pkg/observability"
)

func fixture() *domain.GraphWorldDefinition {
	return &domain.GraphWorldDefinition{
		Regions: []domain.Region{
			{Name: "Menu", Entry: domain.Tautology(), Locations: []string{}, Outgoing: []string{"Menu->Town"}, Incoming: []string{}},
			{Name: "Town", Entry: domain.Tautology(), Locations: []string{"Shop"}, Outgoing: []string{}, Incoming: []string{"Menu->Town"}},
		},
		Transitions: []domain.Transition{
			{Name: "Menu->Town", Source: "Menu", Target: "Town", Requirement: domain.Clauses{{Operands: []domain.Operand{domain.Ref("Dash")}}}},
		},
		Locations: []domain.Location{{Name: "Shop", Region: "Town", Requirement: domain.Tautology()}},
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestServer_Empty(t *testing.T) {
	h := NewServer(WithLogger(logging.NewNop())).Handler()

	w := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"empty"`)

	for _, path := range []string{"/graph", "/graph.mmd", "/stats", "/regions/Menu"} {
		assert.Equal(t, http.StatusServiceUnavailable, get(t, h, path).Code, path)
	}
	assert.Equal(t, http.StatusNotFound, get(t, h, "/metrics").Code)
}

func TestServer_Published(t *testing.T) {
	s := NewServer(WithLogger(logging.NewNop()))
	s.Publish("World", fixture(), []string{"Town"})
	h := s.Handler()

	w := get(t, h, "/graph")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var g domain.GraphWorldDefinition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
	assert.Len(t, g.Regions, 2)

	w = get(t, h, "/graph.mmd")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph TD"))
	assert.Contains(t, w.Body.String(), "class Town kept;")

	w = get(t, h, "/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, "World", stats["ref"])
	assert.EqualValues(t, 2, stats["regions"])
	assert.EqualValues(t, 1, stats["empty_regions"])

	w = get(t, h, "/regions/Town")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Shop"`)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/regions/Nowhere").Code)

	assert.Contains(t, get(t, h, "/health").Body.String(), `"ok"`)
}

func TestServer_Metrics(t *testing.T) {
	m := observability.NewMetrics()
	h := NewServer(WithMetrics(m.Handler())).Handler()

	w := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "regiongraph_")
}

func TestServer_CORSPreflight(t *testing.T) {
	h := NewServer().Handler()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/graph", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
