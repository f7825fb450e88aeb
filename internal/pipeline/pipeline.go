// Package pipeline orchestrates a single ingestion run: fetch candidates
// from the catalog, keep the significant ones, drop those already in the
// store, enrich the rest, and merge the results into the persisted
// collection with one atomic write at the end.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gwpulse/gwpulse/internal/metrics"
	"github.com/gwpulse/gwpulse/internal/models"
	"github.com/gwpulse/gwpulse/internal/store"
)

// Fetcher retrieves raw candidates from the catalog.
type Fetcher interface {
	Fetch(ctx context.Context, q models.CatalogQuery) ([]models.Superevent, error)
}

// SignificanceFilter decides whether a candidate qualifies as reportable.
type SignificanceFilter interface {
	IsSignificant(ev models.Superevent) bool
}

// Enricher produces an event record from a candidate, or a per-candidate
// failure.
type Enricher interface {
	Enrich(ctx context.Context, ev models.Superevent) (*models.EventRecord, error)
}

// RecordStore loads and persists the event collection.
type RecordStore interface {
	Load() []models.EventRecord
	Persist(records []models.EventRecord) error
}

// Status is the terminal outcome of a run.
type Status string

const (
	// StatusSuccess means new records were merged and persisted.
	StatusSuccess Status = "success"
	// StatusNoOp means the run had nothing to write: an empty fetch, no
	// significant candidates, nothing new, or no enrichment succeeded.
	StatusNoOp Status = "noop"
	// StatusFailed means the final persist failed; the prior collection
	// is untouched on disk.
	StatusFailed Status = "failed"
)

// Report summarizes a run for the invoker: per-stage counts and the final
// outcome. Err is set only for a failed run.
type Report struct {
	RunID            string
	Status           Status
	Fetched          int
	Significant      int
	AlreadyKnown     int
	Enriched         int
	EnrichmentFailed int
	Persisted        int
	Duration         time.Duration
	Err              error
}

// Pipeline wires the collaborators for repeated runs against one store.
type Pipeline struct {
	fetcher  Fetcher
	filter   SignificanceFilter
	enricher Enricher
	store    RecordStore
	query    models.CatalogQuery
	metrics  *metrics.RunCollector
	logger   *slog.Logger
}

// New creates a pipeline. The metrics collector may be nil.
func New(
	fetcher Fetcher,
	filter SignificanceFilter,
	enricher Enricher,
	recordStore RecordStore,
	query models.CatalogQuery,
	collector *metrics.RunCollector,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		filter:   filter,
		enricher: enricher,
		store:    recordStore,
		query:    query,
		metrics:  collector,
		logger:   logger,
	}
}

// Run executes one complete pass. Per-candidate problems are logged and
// counted, never raised; the returned error is non-nil only when the final
// persist fails. Aborting mid-run leaves the store untouched because the
// only write happens at the very end.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", report.RunID)

	defer func() {
		report.Duration = time.Since(start)
		p.observe(report)
	}()

	candidates, err := p.fetcher.Fetch(ctx, p.query)
	if err != nil {
		// Transport failures degrade to an empty fetch; the run ends
		// as a no-op rather than an error.
		logger.Warn("catalog fetch failed", "error", err)
	}
	report.Fetched = len(candidates)
	if len(candidates) == 0 {
		logger.Info("nothing to do, catalog returned no candidates")
		report.Status = StatusNoOp
		return report, nil
	}

	significant := make([]models.Superevent, 0, len(candidates))
	for _, ev := range candidates {
		if p.filter.IsSignificant(ev) {
			significant = append(significant, ev)
		}
	}
	report.Significant = len(significant)

	existing := p.store.Load()
	known := store.ExistingIDs(existing)

	fresh := make([]models.Superevent, 0, len(significant))
	for _, ev := range significant {
		if _, seen := known[ev.SupereventID]; seen {
			report.AlreadyKnown++
			continue
		}
		fresh = append(fresh, ev)
	}

	logger.Info("candidates triaged",
		"fetched", report.Fetched,
		"significant", report.Significant,
		"already_known", report.AlreadyKnown,
		"new", len(fresh),
	)

	if len(fresh) == 0 {
		report.Status = StatusNoOp
		return report, nil
	}

	// Enrichment is sequential so API usage stays easy to bound. A failed
	// candidate is skipped, not retried within the run; it stays eligible
	// next run because it never reaches the store.
	newRecords := make([]models.EventRecord, 0, len(fresh))
	for _, ev := range fresh {
		if ctx.Err() != nil {
			logger.Warn("run cancelled before enrichment completed", "error", ctx.Err())
			break
		}

		record, err := p.enricher.Enrich(ctx, ev)
		if err != nil {
			report.EnrichmentFailed++
			logger.Warn("enrichment failed, skipping candidate",
				"superevent_id", ev.SupereventID,
				"error", err,
			)
			continue
		}
		newRecords = append(newRecords, *record)
		logger.Info("candidate enriched", "superevent_id", ev.SupereventID, "title", record.Title)
	}
	report.Enriched = len(newRecords)

	// An aborted run must leave the store untouched, even when part of the
	// batch was already enriched. The skipped candidates were never marked
	// processed, so a future run picks them up again.
	if ctx.Err() != nil {
		logger.Warn("run aborted, skipping persist", "enriched", report.Enriched)
		report.Status = StatusNoOp
		return report, nil
	}

	if len(newRecords) == 0 {
		report.Status = StatusNoOp
		return report, nil
	}

	merged := store.Merge(newRecords, existing)
	if err := p.store.Persist(merged); err != nil {
		report.Status = StatusFailed
		report.Err = fmt.Errorf("persist failed: %w", err)
		logger.Error("persist failed", "error", err)
		return report, report.Err
	}

	report.Persisted = len(merged)
	report.Status = StatusSuccess
	logger.Info("run complete",
		"new_records", report.Enriched,
		"enrichment_failed", report.EnrichmentFailed,
		"persisted_total", report.Persisted,
	)
	return report, nil
}

func (p *Pipeline) observe(report Report) {
	if p.metrics == nil {
		return
	}
	p.metrics.ObserveRun(metrics.RunObservation{
		Status:           string(report.Status),
		Fetched:          report.Fetched,
		Significant:      report.Significant,
		AlreadyKnown:     report.AlreadyKnown,
		Enriched:         report.Enriched,
		EnrichmentFailed: report.EnrichmentFailed,
		Persisted:        report.Persisted,
		Duration:         report.Duration,
	})
}
