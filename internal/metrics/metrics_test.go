package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolgle/internal/domain/models/governance"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.RecordTransition("submit")
	m.RecordTransition("submit")
	m.RecordTransition("approve")
	m.RecordExport("pdf")
	m.RecordVersionConflict()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PackTransitionsTotal.WithLabelValues("submit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PackTransitionsTotal.WithLabelValues("approve")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PackExportsTotal.WithLabelValues("pdf")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VersionConflictsTotal))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordTransition("submit")

	assert.Equal(t, 0.0, testutil.ToFloat64(b.PackTransitionsTotal.WithLabelValues("submit")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordHTTPRequest("GET /api/packs", http.MethodGet, http.StatusOK, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `schoolgle_http_requests_total{method="GET",route="GET /api/packs",status="200"} 1`)
}

func TestMetrics_HandleEvent(t *testing.T) {
	m := NewMetrics()
	ctx := context.Background()

	require.NoError(t, m.HandleEvent(ctx, governance.Event{Type: governance.EventPackSubmitted}))
	require.NoError(t, m.HandleEvent(ctx, governance.Event{Type: governance.EventPackChangesRequested}))
	require.NoError(t, m.HandleEvent(ctx, governance.Event{Type: governance.EventPackExportRequested, Format: governance.FormatPDF}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PackTransitionsTotal.WithLabelValues("submit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PackTransitionsTotal.WithLabelValues("request_changes")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PackExportsTotal.WithLabelValues("pdf")))
}
