package store

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gwpulse/gwpulse/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestLoad_MissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "events.json"), testLogger())

	if records := s.Load(); len(records) != 0 {
		t.Errorf("expected empty collection for missing file, got %d records", len(records))
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path, testLogger())
	if records := s.Load(); len(records) != 0 {
		t.Errorf("expected corrupt state to degrade to empty, got %d records", len(records))
	}
}

func TestPersistAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "events.json")
	s := NewFileStore(path, testLogger())

	records := []models.EventRecord{
		{ID: "S230525b", Date: "2023-05-25T08:00:00", Title: "Second"},
		{ID: "S230520a", Date: "2023-05-20T12:00:00", Title: "First"},
	}
	if err := s.Persist(records); err != nil {
		t.Fatalf("Persist() returned error: %v", err)
	}

	loaded := s.Load()
	if len(loaded) != 2 {
		t.Fatalf("expected 2 records after reload, got %d", len(loaded))
	}
	if loaded[0].ID != "S230525b" || loaded[1].ID != "S230520a" {
		t.Errorf("unexpected order after reload: %s, %s", loaded[0].ID, loaded[1].ID)
	}
}

func TestPersist_OverwritesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.json")
	s := NewFileStore(path, testLogger())

	if err := s.Persist([]models.EventRecord{{ID: "a", Date: "2023-01-01"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Persist([]models.EventRecord{{ID: "b", Date: "2023-01-02"}}); err != nil {
		t.Fatal(err)
	}

	loaded := s.Load()
	if len(loaded) != 1 || loaded[0].ID != "b" {
		t.Errorf("expected second write to fully replace the first, got %+v", loaded)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the store file in %s, found %d entries", dir, len(entries))
	}
}

func TestPersist_UnwritableDirectory(t *testing.T) {
	// Use a regular file as a path component so directory creation fails.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(filepath.Join(blocker, "events.json"), testLogger())
	if err := s.Persist([]models.EventRecord{{ID: "a"}}); err == nil {
		t.Error("expected persist into unwritable path to fail")
	}
}

func TestExistingIDs_SkipsRecordsWithoutID(t *testing.T) {
	records := []models.EventRecord{
		{ID: "S230520a"},
		{Date: "2023-05-21"}, // no id, must be skipped not fatal
		{ID: "S230525b"},
	}

	ids := ExistingIDs(records)
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	if _, ok := ids["S230520a"]; !ok {
		t.Error("missing S230520a")
	}
	if _, ok := ids["S230525b"]; !ok {
		t.Error("missing S230525b")
	}
}

func TestMerge_SortsByDateDescending(t *testing.T) {
	existing := []models.EventRecord{
		{ID: "old-2", Date: "2023-05-10T00:00:00"},
		{ID: "old-1", Date: "2023-04-01T00:00:00"},
	}
	fresh := []models.EventRecord{
		{ID: "new-1", Date: "2023-06-01T00:00:00"},
		{ID: "mid-1", Date: "2023-05-01T00:00:00"},
	}

	merged := Merge(fresh, existing)
	if len(merged) != 4 {
		t.Fatalf("expected 4 records, got %d", len(merged))
	}

	want := []string{"new-1", "old-2", "mid-1", "old-1"}
	for i, id := range want {
		if merged[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, merged[i].ID)
		}
	}

	for i := 1; i < len(merged); i++ {
		prev, _ := merged[i-1].DateTime()
		cur, _ := merged[i].DateTime()
		if cur.After(prev) {
			t.Errorf("dates not non-increasing at position %d", i)
		}
	}
}

func TestMerge_UnparseableDatesFallBackToLexicalOrder(t *testing.T) {
	merged := Merge(
		[]models.EventRecord{{ID: "b", Date: "zzz-later"}},
		[]models.EventRecord{{ID: "a", Date: "aaa-earlier"}},
	)

	if merged[0].ID != "b" || merged[1].ID != "a" {
		t.Errorf("expected lexical descending fallback, got %s, %s", merged[0].ID, merged[1].ID)
	}
}

func TestPersist_FieldNamesAreStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	s := NewFileStore(path, testLogger())

	record := models.EventRecord{
		ID:           "S230518h",
		Date:         "2023-05-18T12:59:08",
		URL:          "https://gracedb.ligo.org/superevents/S230518h/view/",
		Title:        "Black hole collision detected",
		EventType:    "BBH merger",
		ReadableDate: "18 May 2023",
		Summary:      "Two black holes merged.",
		Score:        7,
	}
	if err := s.Persist([]models.EventRecord{record}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("store file is not a JSON array: %v", err)
	}
	for _, key := range []string{"id", "date", "url", "title", "type", "readable_date", "summary", "score"} {
		if _, ok := raw[0][key]; !ok {
			t.Errorf("persisted record missing feed field %q", key)
		}
	}
}
