package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	m := New()

	m.Observe(OutcomeFound, 10*time.Millisecond, 3.78)
	m.Observe(OutcomeNotFound, 5*time.Millisecond, 99)
	m.Observe(OutcomeFound, 10*time.Millisecond, 1.5)

	if got := testutil.ToFloat64(m.Runs.WithLabelValues(OutcomeFound)); got != 2 {
		t.Errorf("found runs: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues(OutcomeNotFound)); got != 1 {
		t.Errorf("not_found runs: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues(OutcomeError)); got != 0 {
		t.Errorf("error runs: got %v, want 0", got)
	}
	// Not-found runs must not overwrite the gauge
	if got := testutil.ToFloat64(m.LastScaleFactor); got != 1.5 {
		t.Errorf("last scale factor: got %v, want 1.5", got)
	}
}

func TestObserve_NilReceiver(t *testing.T) {
	var m *Metrics
	m.Observe(OutcomeError, time.Second, 0) // must not panic
}

func TestHandler(t *testing.T) {
	m := New()
	m.Observe(OutcomeFound, time.Millisecond, 2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{
		"calibrate_runs_total",
		"calibrate_run_duration_seconds",
		"calibrate_last_scale_factor",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("Expected %s in metrics output", name)
		}
	}
}
