package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsManager_Counters(t *testing.T) {
	m := NewMetricsManager("stateview")

	m.IncReview("created")
	m.IncReview("created")
	m.IncLike("review", true)
	m.IncLike("review", false)
	m.IncAggregateRetry()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReviewEventsTotal.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LikeTogglesTotal.WithLabelValues("review", "liked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LikeTogglesTotal.WithLabelValues("review", "unliked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AggregateRetriesTotal))
}

func TestMetricsManager_ObserveRequestCountsErrorsOnly(t *testing.T) {
	m := NewMetricsManager("stateview")

	m.ObserveRequest(http.MethodGet, "/api/v1/reviews", http.StatusOK, "", 10*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/api/v1/reviews", http.StatusConflict, "duplicate", 10*time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.APIErrorsTotal.WithLabelValues("/api/v1/reviews", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIErrorsTotal.WithLabelValues("/api/v1/reviews", "duplicate")))
}

func TestNilMetricsManagerIsSafe(t *testing.T) {
	var m *MetricsManager
	assert.NotPanics(t, func() {
		m.IncReview("created")
		m.IncComment("created")
		m.IncLike("comment", true)
		m.IncReport("created")
		m.IncAccountState("warned")
		m.IncAggregateRetry()
		m.ObserveRequest(http.MethodGet, "/", http.StatusInternalServerError, "internal", time.Second)
	})
}

func TestNewMetricsServer_ServesRegistry(t *testing.T) {
	m := NewMetricsManager("stateview")
	m.IncReport("created")

	srv := NewMetricsServer("0", m.Registry)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "stateview_report_events_total"))
}
