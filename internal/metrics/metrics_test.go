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

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveGeneration("lorem", "ok", time.Second)
	m.ObserveGeneration("lorem", "timeout", 30*time.Second)
	m.ObserveParse(3, true, true)
	m.ObserveParse(1, true, false)
	m.ObserveParse(0, false, false)
	m.PersistenceFailed("create_turns")
	m.PendingFlushed(2)
	m.ObserveHTTP("GET /api/prds", "GET", 200, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationRequests.WithLabelValues("lorem", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationRequests.WithLabelValues("lorem", "timeout")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.sectionsParsed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.questionsParsed.WithLabelValues("with")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.questionsParsed.WithLabelValues("without")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistenceFailures.WithLabelValues("create_turns")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pendingFlushes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET /api/prds", "GET", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveGeneration("x", "ok", time.Second)
	m.ObserveParse(1, true, true)
	m.PersistenceFailed("x")
	m.PendingFlushed(1)
	m.ObserveHTTP("x", "GET", 200, time.Second)
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveParse(2, false, false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "redspec_sections_parsed_total 2"))
}
