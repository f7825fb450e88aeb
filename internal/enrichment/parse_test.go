package enrichment

import (
	"strings"
	"testing"

	"github.com/gwpulse/gwpulse/internal/models"
)

func TestParseEnrichment_WellFormed(t *testing.T) {
	raw := `{
		"title": "Black hole collision detected",
		"event_type": "BBH merger",
		"readable_date": "18 May 2023",
		"summary": "Two black holes merged far away.",
		"excitement_score": 7,
		"distance_estimate": "about 3 billion light-years"
	}`

	parsed, err := ParseEnrichment(raw)
	if err != nil {
		t.Fatalf("ParseEnrichment() returned error: %v", err)
	}

	if parsed.Title != "Black hole collision detected" {
		t.Errorf("unexpected title: %q", parsed.Title)
	}
	if parsed.EventType != "BBH merger" {
		t.Errorf("unexpected event type: %q", parsed.EventType)
	}
	if parsed.ExcitementScore != 7 {
		t.Errorf("unexpected score: %v", parsed.ExcitementScore)
	}
	if parsed.DistanceEstimate != "about 3 billion light-years" {
		t.Errorf("unexpected distance: %q", parsed.DistanceEstimate)
	}
}

func TestParseEnrichment_MarkdownFence(t *testing.T) {
	raw := "Here you go:\n```json\n{\"title\": \"Fenced\", \"excitement_score\": 4}\n```\n"

	parsed, err := ParseEnrichment(raw)
	if err != nil {
		t.Fatalf("ParseEnrichment() returned error: %v", err)
	}
	if parsed.Title != "Fenced" {
		t.Errorf("unexpected title: %q", parsed.Title)
	}
	if parsed.ExcitementScore != 4 {
		t.Errorf("unexpected score: %v", parsed.ExcitementScore)
	}
}

func TestParseEnrichment_MissingFieldsGetDefaults(t *testing.T) {
	parsed, err := ParseEnrichment(`{"title": "Only a title"}`)
	if err != nil {
		t.Fatalf("ParseEnrichment() returned error: %v", err)
	}

	if parsed.EventType != defaultEventType {
		t.Errorf("expected default event type, got %q", parsed.EventType)
	}
	if parsed.Summary != defaultSummary {
		t.Errorf("expected default summary, got %q", parsed.Summary)
	}
	if parsed.ExcitementScore != neutralScore {
		t.Errorf("expected neutral score %v, got %v", neutralScore, parsed.ExcitementScore)
	}
}

func TestParseEnrichment_MistypedFields(t *testing.T) {
	raw := `{
		"title": 42,
		"event_type": null,
		"summary": "   ",
		"excitement_score": "8.5"
	}`

	parsed, err := ParseEnrichment(raw)
	if err != nil {
		t.Fatalf("ParseEnrichment() returned error: %v", err)
	}

	if parsed.Title != "" {
		t.Errorf("numeric title should fall back to empty, got %q", parsed.Title)
	}
	if parsed.EventType != defaultEventType {
		t.Errorf("null event type should fall back to default, got %q", parsed.EventType)
	}
	if parsed.Summary != defaultSummary {
		t.Errorf("blank summary should fall back to default, got %q", parsed.Summary)
	}
	if parsed.ExcitementScore != 8.5 {
		t.Errorf("quoted score should be coerced, got %v", parsed.ExcitementScore)
	}
}

func TestParseEnrichment_ScoreClamped(t *testing.T) {
	parsed, err := ParseEnrichment(`{"excitement_score": 99}`)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.ExcitementScore != 10 {
		t.Errorf("expected score clamped to 10, got %v", parsed.ExcitementScore)
	}

	parsed, err = ParseEnrichment(`{"excitement_score": -3}`)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.ExcitementScore != 0 {
		t.Errorf("expected score clamped to 0, got %v", parsed.ExcitementScore)
	}
}

func TestParseEnrichment_NotJSON(t *testing.T) {
	if _, err := ParseEnrichment("I'm sorry, I cannot help with that."); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestToRecord_FallbacksFromCandidate(t *testing.T) {
	ev := models.Superevent{
		SupereventID: "S230518h",
		Created:      "2023-05-18T12:59:08",
	}

	record := (&Enrichment{}).ToRecord(ev)

	if record.ID != "S230518h" {
		t.Errorf("unexpected id: %q", record.ID)
	}
	if record.Date != ev.Created {
		t.Errorf("record date must copy created, got %q", record.Date)
	}
	if !strings.Contains(record.Title, "S230518h") {
		t.Errorf("default title should name the candidate, got %q", record.Title)
	}
	if record.ReadableDate != "18 May 2023" {
		t.Errorf("default readable date should derive from created, got %q", record.ReadableDate)
	}
	if record.URL != "https://gracedb.ligo.org/superevents/S230518h/view/" {
		t.Errorf("unexpected url: %q", record.URL)
	}
}

func TestToRecord_PrefersSelfLink(t *testing.T) {
	ev := models.Superevent{
		SupereventID: "S230518h",
		Created:      "2023-05-18T12:59:08",
		Links:        map[string]string{"self": "https://gracedb.ligo.org/api/superevents/S230518h/"},
	}

	record := (&Enrichment{Title: "T"}).ToRecord(ev)
	if record.URL != "https://gracedb.ligo.org/api/superevents/S230518h/" {
		t.Errorf("expected self link preferred, got %q", record.URL)
	}
}
