package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRunCollector_ObserveRun(t *testing.T) {
	collector, err := NewRunCollector()
	if err != nil {
		t.Fatalf("NewRunCollector() returned error: %v", err)
	}

	collector.ObserveRun(RunObservation{
		Status:           "success",
		Fetched:          10,
		Significant:      4,
		AlreadyKnown:     2,
		Enriched:         2,
		EnrichmentFailed: 0,
		Persisted:        12,
		Duration:         1500 * time.Millisecond,
	})

	families, err := collector.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() returned error: %v", err)
	}

	names := make(map[string]bool)
	for _, fam := range families {
		names[fam.GetName()] = true
	}
	for _, want := range []string{
		"gwpulse_pipeline_runs_total",
		"gwpulse_pipeline_candidates_total",
		"gwpulse_store_records",
		"gwpulse_pipeline_run_duration_seconds",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestRunCollector_Handler(t *testing.T) {
	collector, err := NewRunCollector()
	if err != nil {
		t.Fatal(err)
	}
	collector.ObserveRun(RunObservation{Status: "noop", Duration: time.Second})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `gwpulse_pipeline_runs_total{status="noop"} 1`) {
		t.Errorf("metrics output missing run counter:\n%s", rec.Body.String())
	}
}
