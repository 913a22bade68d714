package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillmesh/ai-orchestrator/internal/cache"
	"github.com/skillmesh/ai-orchestrator/internal/classify"
	"github.com/skillmesh/ai-orchestrator/internal/registry"
	"github.com/skillmesh/ai-orchestrator/internal/routing"
	"github.com/skillmesh/ai-orchestrator/internal/scoring"
	"github.com/skillmesh/ai-orchestrator/internal/transparency"
	"github.com/skillmesh/ai-orchestrator/internal/types"
)

type staticProvider struct {
	id   string
	caps []types.CapabilityTag
}

func (p *staticProvider) Name() string                          { return p.id }
func (p *staticProvider) Capabilities() []types.CapabilityTag   { return p.caps }
func (p *staticProvider) HealthCheck(ctx context.Context) error { return nil }

func (p *staticProvider) Invoke(ctx context.Context, task *types.TaskRequest) (*types.NormalizedResult, error) {
	return &types.NormalizedResult{Summary: "stubbed analysis", Confidence: 0.85}, nil
}

func newTestServer(t *testing.T) (*Server, *testMux) {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	order := map[types.CapabilityTag][]string{
		types.TagResearch: {"stub"},
	}
	reg := registry.New(3, order, logger)
	p := &staticProvider{id: "stub", caps: []types.CapabilityTag{types.TagResearch}}
	require.NoError(t, reg.Register(&types.ProviderDescriptor{
		ID:           "stub",
		Capabilities: p.caps,
		LatencyBound: time.Second,
	}, p))

	scorer, err := scoring.NewEngine(nil, nil)
	require.NoError(t, err)

	reporter := transparency.NewReporter(64)
	router := routing.New(classify.New(nil, order), reg, cache.New(nil), scorer, reporter, time.Second, logger)

	srv := New(router, reg, reporter, &Config{Port: "0"}, logger)
	return srv, &testMux{handler: srv.setupRoutes()}
}

// testMux wraps the server's route table for direct handler testing.
type testMux struct {
	handler http.Handler
}

func (m *testMux) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	m.handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	_, m := newTestServer(t)

	rec := m.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_SubmitTask(t *testing.T) {
	_, m := newTestServer(t)

	rec := m.do(t, http.MethodPost, "/v1/tasks", map[string]any{
		"kind":    "research-market",
		"payload": map[string]any{"q": "go contractor rates"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp types.TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "stub", resp.Provider)
	assert.False(t, resp.Degraded)
	assert.InDelta(t, 0.85, resp.Confidence, 1e-9)
	require.NotNil(t, resp.Transparency)
	assert.Equal(t, resp.RequestID, resp.Transparency.RequestID)
}

func TestServer_SubmitTask_UnknownKind(t *testing.T) {
	_, m := newTestServer(t)

	rec := m.do(t, http.MethodPost, "/v1/tasks", map[string]any{
		"kind":    "summon-demon",
		"payload": map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_SubmitTask_MissingKind(t *testing.T) {
	_, m := newTestServer(t)

	rec := m.do(t, http.MethodPost, "/v1/tasks", map[string]any{
		"payload": map[string]any{"q": "x"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_SubmitTask_InvalidJSON(t *testing.T) {
	_, m := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/tasks", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	m.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_TransparencyRecordLookup(t *testing.T) {
	_, m := newTestServer(t)

	rec := m.do(t, http.MethodPost, "/v1/tasks", map[string]any{
		"kind":    "research-market",
		"payload": map[string]any{"q": "x"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	lookup := m.do(t, http.MethodGet, "/v1/transparency/"+resp.RequestID, nil)
	require.Equal(t, http.StatusOK, lookup.Code)

	var record types.TransparencyRecord
	require.NoError(t, json.Unmarshal(lookup.Body.Bytes(), &record))
	assert.Equal(t, resp.RequestID, record.RequestID)
	assert.Equal(t, "stub", record.Provider)
}

func TestServer_TransparencyRecordNotFound(t *testing.T) {
	_, m := newTestServer(t)

	rec := m.do(t, http.MethodGet, "/v1/transparency/no-such-request", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_AggregateReport(t *testing.T) {
	_, m := newTestServer(t)

	for _, q := range []string{"a", "b"} {
		rec := m.do(t, http.MethodPost, "/v1/tasks", map[string]any{
			"kind":    "research-market",
			"payload": map[string]any{"q": q},
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := m.do(t, http.MethodGet, "/v1/transparency", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report types.AggregateReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, int64(2), report.TotalRequests)
	assert.Equal(t, int64(2), report.ProviderUsage["stub"].Successes)
}

func TestServer_Providers(t *testing.T) {
	_, m := newTestServer(t)

	rec := m.do(t, http.MethodGet, "/v1/providers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]*types.ProviderHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Contains(t, health, "stub")
	assert.Equal(t, "live", health["stub"].Status)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	_, m := newTestServer(t)

	rec := m.do(t, http.MethodGet, "/v1/tasks", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_StartStop(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// Stop before Start is a no-op
	assert.NoError(t, srv.Stop(ctx))
}
