package models

import (
	"fmt"
	"strings"
	"time"
)

// Superevent represents a raw candidate event as returned by the GraceDB
// catalog. Fields beyond the identifier, creation time, category and labels
// are passed through to enrichment without interpretation.
type Superevent struct {
	SupereventID string            `json:"superevent_id"`
	Created      string            `json:"created"`
	Category     string            `json:"category"`
	Labels       []string          `json:"labels"`
	FAR          *float64          `json:"far"`
	Instruments  []string          `json:"instruments"`
	Links        map[string]string `json:"links"`
}

// createdLayouts covers the timestamp shapes GraceDB has emitted over time.
var createdLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CreatedTime parses the candidate's creation timestamp. The second return
// value is false when the timestamp is absent or unparseable.
func (s Superevent) CreatedTime() (time.Time, bool) {
	raw := strings.TrimSpace(s.Created)
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

// HasLabel reports whether the candidate carries the given catalog label.
func (s Superevent) HasLabel(label string) bool {
	for _, l := range s.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// ViewURL returns the candidate's detail link, preferring the self link from
// the catalog response and falling back to the public GraceDB view page.
func (s Superevent) ViewURL() string {
	if self, ok := s.Links["self"]; ok && self != "" {
		return self
	}
	return fmt.Sprintf("https://gracedb.ligo.org/superevents/%s/view/", s.SupereventID)
}

// FARString formats the false-alarm rate for human consumption, returning
// "N/A" when the catalog omitted it.
func (s Superevent) FARString() string {
	if s.FAR == nil {
		return "N/A"
	}
	return fmt.Sprintf("%g Hz", *s.FAR)
}
