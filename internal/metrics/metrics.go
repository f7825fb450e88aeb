package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunCollector exposes Prometheus metrics for pipeline runs.
type RunCollector struct {
	registry        *prometheus.Registry
	runsTotal       *prometheus.CounterVec
	candidatesTotal *prometheus.CounterVec
	storedRecords   prometheus.Gauge
	runDuration     prometheus.Histogram
}

// NewRunCollector constructs a collector with default counters.
func NewRunCollector() (*RunCollector, error) {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gwpulse",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Total number of pipeline runs by outcome.",
	}, []string{"status"})

	candidatesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gwpulse",
		Subsystem: "pipeline",
		Name:      "candidates_total",
		Help:      "Candidates seen at each pipeline stage.",
	}, []string{"stage"})

	storedRecords := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gwpulse",
		Subsystem: "store",
		Name:      "records",
		Help:      "Number of records in the persisted collection after the last successful run.",
	})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gwpulse",
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "Latency distribution for pipeline runs.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	for _, c := range []prometheus.Collector{runsTotal, candidatesTotal, storedRecords, runDuration} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &RunCollector{
		registry:        registry,
		runsTotal:       runsTotal,
		candidatesTotal: candidatesTotal,
		storedRecords:   storedRecords,
		runDuration:     runDuration,
	}, nil
}

// RunObservation summarizes one pipeline run for metric recording.
type RunObservation struct {
	Status           string
	Fetched          int
	Significant      int
	AlreadyKnown     int
	Enriched         int
	EnrichmentFailed int
	Persisted        int
	Duration         time.Duration
}

// ObserveRun records the outcome of a single pipeline run.
func (c *RunCollector) ObserveRun(o RunObservation) {
	c.runsTotal.WithLabelValues(o.Status).Inc()
	c.candidatesTotal.WithLabelValues("fetched").Add(float64(o.Fetched))
	c.candidatesTotal.WithLabelValues("significant").Add(float64(o.Significant))
	c.candidatesTotal.WithLabelValues("already_known").Add(float64(o.AlreadyKnown))
	c.candidatesTotal.WithLabelValues("enriched").Add(float64(o.Enriched))
	c.candidatesTotal.WithLabelValues("enrichment_failed").Add(float64(o.EnrichmentFailed))
	if o.Persisted > 0 {
		c.storedRecords.Set(float64(o.Persisted))
	}
	c.runDuration.Observe(o.Duration.Seconds())
}

// Handler returns an HTTP handler for exposing the collected metrics.
func (c *RunCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (c *RunCollector) Registry() *prometheus.Registry {
	return c.registry
}
