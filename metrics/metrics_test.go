package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorders(t *testing.T) {
	m := NewMetrics()

	m.RecordSearch("ok")
	m.RecordSearch("ok")
	m.RecordSearch("unavailable")
	m.RecordPage()
	m.RecordEnriched()
	m.RecordDocumentFetch("error")
	m.RecordGeneration("ok", 250*time.Millisecond)
	m.RecordToolDispatch("search_case", "ok")

	if got := testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("search ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SearchPagesTotal); got != 1 {
		t.Errorf("pages = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ToolDispatchesTotal.WithLabelValues("search_case", "ok")); got != 1 {
		t.Errorf("dispatches = %v, want 1", got)
	}

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "legaleagle_generation_call_duration_seconds") {
		t.Errorf("exposition missing generation histogram:\n%s", w.Body.String())
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.RecordSearch("ok")
	m.RecordPage()
	m.RecordEnriched()
	m.RecordDocumentFetch("ok")
	m.RecordGeneration("ok", time.Second)
	m.RecordToolDispatch("search_case", "ok")
}
