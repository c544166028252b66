package metric

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveAttempt("/datasets/MID", 503, 10*time.Millisecond)
	m.ObserveRetry("/datasets/MID", 503)
	m.ObserveAttempt("/datasets/MID", 200, 20*time.Millisecond)
	m.ObserveDownload("get-datasets-mid", "ok", 3, 42)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/datasets/MID", "503")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retriesTotal.WithLabelValues("/datasets/MID", "503")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.chunksTotal.WithLabelValues("get-datasets-mid")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.rowsTotal.WithLabelValues("get-datasets-mid")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveDownload("get-datasets-mid", "transient", 1, 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `elexon_download_total{dataset="get-datasets-mid",result="transient"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAttempt("/x", 200, time.Second)
	m.ObserveRetry("/x", 500)
	m.ObserveDownload("x", "ok", 1, 1)
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
