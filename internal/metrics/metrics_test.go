package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusCounters(t *testing.T) {
	sink := NewPrometheus()

	sink.Inc(ItemsProcessed, nil)
	sink.Inc(ItemsProcessed, nil)
	sink.Inc(ItemsFailed, map[string]string{"code": "remote_access"})
	sink.Inc(RetryAttempts, map[string]string{"operation": "fetch"})
	sink.Inc(Runs, map[string]string{"outcome": "completed"})

	if got := testutil.ToFloat64(sink.processed); got != 2 {
		t.Fatalf("processed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(sink.failed.WithLabelValues("remote_access")); got != 1 {
		t.Fatalf("failed{remote_access} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sink.retries.WithLabelValues("fetch")); got != 1 {
		t.Fatalf("retries{fetch} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sink.runs.WithLabelValues("completed")); got != 1 {
		t.Fatalf("runs{completed} = %v, want 1", got)
	}
}

func TestPrometheusMissingLabelUsesUnknown(t *testing.T) {
	sink := NewPrometheus()
	sink.Inc(ItemsFailed, nil)

	if got := testutil.ToFloat64(sink.failed.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("failed{unknown} = %v, want 1", got)
	}
}

func TestHandlerServesExposition(t *testing.T) {
	sink := NewPrometheus()
	sink.Inc(ItemsProcessed, nil)

	rec := httptest.NewRecorder()
	sink.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ItemsProcessed) {
		t.Fatalf("exposition missing %s:\n%s", ItemsProcessed, rec.Body.String())
	}
}

func TestNopAcceptsAnything(t *testing.T) {
	var sink Sink = Nop{}
	sink.Inc(ItemsProcessed, nil)
	sink.Inc("bogus", map[string]string{"x": "y"})
}
