package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mauv0809/padel-roster/internal/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (MetricsStore, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return New(db), teardown
}

func TestIncrementAndGetAll(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	// 1. Initially, there should be no metrics
	metrics, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, metrics)

	// 2. Increment a new key
	store.Increment("sync_runs")
	metrics, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"sync_runs": 1}, metrics)

	// 3. Increment the same key again
	store.Increment("sync_runs")
	metrics, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"sync_runs": 2}, metrics)

	// 4. Increment a different key
	store.Increment("periods_opened")
	metrics, err = store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"sync_runs":      2,
		"periods_opened": 1,
	}, metrics)
}

func TestService_ExposesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(reg)

	svc.IncRegistrations("confirmed")
	svc.IncRegistrations("confirmed")
	svc.IncRegistrations("waiting")
	svc.IncSyncRuns()

	rr := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `roster_registrations_total{classification="confirmed"} 2`)
	assert.Contains(t, string(body), `roster_registrations_total{classification="waiting"} 1`)
	assert.Contains(t, string(body), "roster_sync_runs_total 1")
}
