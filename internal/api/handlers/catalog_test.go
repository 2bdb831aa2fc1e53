package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apkrisk/internal/domain/models"
)

func TestCatalogList(t *testing.T) {
	h := testHandlers(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	rec := httptest.NewRecorder()
	h.Catalog.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Len(t, resp.Metrics, len(models.DefaultCatalog()))
	assert.Equal(t, "permission_density", resp.Metrics[0].Name, "declaration order is preserved")
	assert.Equal(t, 40, resp.Bands.Medium)
	assert.Equal(t, 70, resp.Bands.High)

	var sum float64
	for _, m := range resp.Metrics {
		sum += m.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestCatalogList_ReflectsConfiguredOverrides(t *testing.T) {
	cfg := testConfig()
	cfg.Scoring.Caps = map[string]int{"file_write_count": 25}
	h := testHandlers(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	rec := httptest.NewRecorder()
	h.Catalog.List(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	for _, m := range resp.Metrics {
		if m.Name == "file_write_count" {
			assert.Equal(t, 25, m.Cap)
			return
		}
	}
	t.Fatal("file_write_count not in catalog response")
}

func TestHealthCheck(t *testing.T) {
	h := testHandlers(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health.Check(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
}

func TestHealthReady_NoCacheConfigured(t *testing.T) {
	h := testHandlers(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	h.Health.Ready(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "not configured", resp.Checks["redis"])
}
