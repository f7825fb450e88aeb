// Package store persists the enriched event collection as a single JSON
// document, rewritten atomically on each successful run.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gwpulse/gwpulse/internal/models"
)

// FileStore holds the event collection in a JSON file. Missing or corrupt
// prior state degrades to an empty collection; only a failed write is fatal.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted collection. Absent or unparseable state is
// treated as empty, never as an error: the accepted tradeoff is that a
// corrupt file may cause already-seen identifiers to be reprocessed.
func (s *FileStore) Load() []models.EventRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("could not read store, starting empty", "path", s.path, "error", err)
		}
		return nil
	}

	var records []models.EventRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("store file is not parseable, starting empty", "path", s.path, "error", err)
		return nil
	}
	return records
}

// ExistingIDs collects the identifiers present in records for membership
// tests. Records without an identifier are skipped rather than failing.
func ExistingIDs(records []models.EventRecord) map[string]struct{} {
	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		ids[r.ID] = struct{}{}
	}
	return ids
}

// Merge unions newRecords with existing and re-sorts by date descending.
// Callers guarantee newRecords carry only identifiers absent from existing;
// this is not re-validated here.
func Merge(newRecords, existing []models.EventRecord) []models.EventRecord {
	merged := make([]models.EventRecord, 0, len(newRecords)+len(existing))
	merged = append(merged, newRecords...)
	merged = append(merged, existing...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Less(merged[j])
	})
	return merged
}

// Persist durably writes the full collection, replacing prior state. The
// write goes to a temp file in the target directory and is renamed into
// place, so a partial file is never visible as a completed write.
func (s *FileStore) Persist(records []models.EventRecord) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".events-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store file %s: %w", s.path, err)
	}
	return nil
}
