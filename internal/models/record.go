package models

import (
	"strings"
	"time"
)

// EventRecord is a persisted, enriched event. The JSON field names are the
// contract with the published feed and must not change.
type EventRecord struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	URL          string  `json:"url"`
	Title        string  `json:"title"`
	EventType    string  `json:"type"`
	ReadableDate string  `json:"readable_date"`
	Summary      string  `json:"summary"`
	Score        float64 `json:"score"`
	Distance     string  `json:"distance,omitempty"`
}

// DateTime parses the record's chronological sort key. The second return
// value is false when the date is absent or unparseable.
func (r EventRecord) DateTime() (time.Time, bool) {
	raw := strings.TrimSpace(r.Date)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Less orders records by date descending, the persisted collection order.
// Unparseable dates fall back to a lexical comparison, which matches
// chronological order for ISO-8601 strings.
func (r EventRecord) Less(other EventRecord) bool {
	a, aok := r.DateTime()
	b, bok := other.DateTime()
	if aok && bok {
		return a.After(b)
	}
	return r.Date > other.Date
}
