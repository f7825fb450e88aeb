package enrichment

import (
	"context"
	"fmt"

	"github.com/gwpulse/gwpulse/internal/models"
)

var _ Enricher = (*MockEnricher)(nil)

// MockEnricher produces deterministic records without calling any external
// service. Used in tests and when exercising the pipeline without
// credentials.
type MockEnricher struct {
	// FailIDs lists candidate identifiers whose enrichment should fail.
	FailIDs map[string]bool
	// Calls records the identifiers enriched, in order.
	Calls []string
}

// NewMockEnricher creates a mock that succeeds for every candidate.
func NewMockEnricher() *MockEnricher {
	return &MockEnricher{FailIDs: make(map[string]bool)}
}

// Enrich returns a canned record derived from the candidate's own fields.
func (m *MockEnricher) Enrich(_ context.Context, ev models.Superevent) (*models.EventRecord, error) {
	m.Calls = append(m.Calls, ev.SupereventID)

	if m.FailIDs[ev.SupereventID] {
		return nil, fmt.Errorf("mock enrichment failure for %s", ev.SupereventID)
	}

	enriched := &Enrichment{
		Title:           "Gravitational-wave candidate " + ev.SupereventID,
		EventType:       defaultEventType,
		Summary:         fmt.Sprintf("A candidate signal catalogued as %s.", ev.SupereventID),
		ExcitementScore: neutralScore,
	}
	record := enriched.ToRecord(ev)
	return &record, nil
}
