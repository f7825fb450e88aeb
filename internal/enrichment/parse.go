package enrichment

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gwpulse/gwpulse/internal/models"
)

// Fallback values for fields the service omits or mis-types. The score
// default is a deliberately neutral midpoint rather than zero, so a missing
// score does not read as "uninteresting".
const (
	defaultEventType = "unknown"
	defaultSummary   = "No summary is available for this event yet."
	neutralScore     = 5.0
)

// Enrichment is the normalized structured response from the text-generation
// service.
type Enrichment struct {
	Title            string
	EventType        string
	ReadableDate     string
	Summary          string
	ExcitementScore  float64
	DistanceEstimate string
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*({.+})\\s*```")

// ParseEnrichment converts raw model output into an Enrichment. Output
// wrapped in a markdown code fence is tolerated. Individual fields that are
// missing or of the wrong type fall back to defaults; only a body with no
// parseable JSON object at all is an error.
func ParseEnrichment(raw string) (*Enrichment, error) {
	jsonStr := raw
	if matches := fenceRe.FindStringSubmatch(raw); len(matches) > 1 {
		jsonStr = matches[1]
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &fields); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w (first 200 chars: %.200s)", err, raw)
	}

	parsed := &Enrichment{
		Title:            stringField(fields, "title", ""),
		EventType:        stringField(fields, "event_type", defaultEventType),
		ReadableDate:     stringField(fields, "readable_date", ""),
		Summary:          stringField(fields, "summary", defaultSummary),
		ExcitementScore:  numberField(fields, "excitement_score", neutralScore),
		DistanceEstimate: stringField(fields, "distance_estimate", ""),
	}

	if parsed.ExcitementScore < 0 {
		parsed.ExcitementScore = 0
	} else if parsed.ExcitementScore > 10 {
		parsed.ExcitementScore = 10
	}

	return parsed, nil
}

// ToRecord combines the enrichment with the candidate's own catalog fields
// into a persistable record, filling any remaining blanks from the
// candidate itself.
func (e *Enrichment) ToRecord(ev models.Superevent) models.EventRecord {
	title := e.Title
	if title == "" {
		title = "Gravitational-wave candidate " + ev.SupereventID
	}

	readable := e.ReadableDate
	if readable == "" {
		if created, ok := ev.CreatedTime(); ok {
			readable = created.Format("2 January 2006")
		} else {
			readable = ev.Created
		}
	}

	return models.EventRecord{
		ID:           ev.SupereventID,
		Date:         ev.Created,
		URL:          ev.ViewURL(),
		Title:        title,
		EventType:    e.EventType,
		ReadableDate: readable,
		Summary:      e.Summary,
		Score:        e.ExcitementScore,
		Distance:     e.DistanceEstimate,
	}
}

func stringField(fields map[string]json.RawMessage, key, fallback string) string {
	raw, ok := fields[key]
	if !ok {
		return fallback
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return fallback
	}
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// numberField accepts both JSON numbers and numeric strings; models
// occasionally quote scores.
func numberField(fields map[string]json.RawMessage, key string, fallback float64) float64 {
	raw, ok := fields[key]
	if !ok {
		return fallback
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return fallback
}
