package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New(func() int { return 3 })

	m.ObserveHTTP("/api/sheets/{id}", "GET", 200, 5*time.Millisecond)
	m.ObserveHTTP("/api/sheets/{id}", "GET", 200, 5*time.Millisecond)
	m.ObserveScore("teamwork")
	m.ObserveSheetAction("piloting", "increment")
	m.ObserveUpstream("team", nil)
	m.ObserveUpstream("team", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/sheets/{id}", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoresCalculated.WithLabelValues("teamwork")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SheetActions.WithLabelValues("piloting", "increment")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("team", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveSheets))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("/", "GET", 200, time.Millisecond)
		m.ObserveScore("autonomous")
		m.ObserveSheetAction("autonomous", "clear")
		m.ObserveUpstream("events", nil)
	})
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.ObserveScore("autonomous")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `adchub_scores_calculated_total{discipline="autonomous"} 1`)
	assert.NotContains(t, string(body), "adchub_active_sheets")
}
