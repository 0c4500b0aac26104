package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hps-dq/lumi/pkg/lumi/calc"
)

// Store manages compute report logging to the filesystem.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates a new Store with the given directory.
// The directory is not created until EnsureDir is called.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("report directory cannot be empty")
	}
	return &Store{dir: dir}, nil
}

// EnsureDir creates the report directory if it does not exist.
func (s *Store) EnsureDir() error {
	return os.MkdirAll(s.dir, 0o755)
}

// LogCompute records one compute operation and returns the created entry.
func (s *Store) LogCompute(source, catalog string, runs []calc.RunResult) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &Entry{
		ID:        generateID(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		Catalog:   catalog,
		Runs:      runs,
		Summary: Summary{
			RunsMatched:     len(runs),
			TotalLuminosity: calc.Total(runs),
		},
	}

	if err := s.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to write report entry: %w", err)
	}

	return entry, nil
}

// writeEntry writes an entry to a JSON file in the report directory.
func (s *Store) writeEntry(entry *Entry) error {
	filePath := filepath.Join(s.dir, entry.ID+".json")

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	// Write atomically using a temp file and rename.
	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// List returns all report entries sorted by timestamp descending (newest
// first). If limit is 0 or negative, all entries are returned.
func (s *Store) List(limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read report directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		entry, err := s.readEntryFile(f.Name())
		if err != nil {
			// Skip files that can't be parsed.
			continue
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	if entries == nil {
		entries = []Entry{}
	}

	return entries, nil
}

// Get retrieves a specific entry by ID.
func (s *Store) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read report directory: %w", err)
	}

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		entry, err := s.readEntryFile(f.Name())
		if err != nil {
			continue
		}

		if entry.ID == id {
			return entry, nil
		}
	}

	return nil, fmt.Errorf("entry not found: %s", id)
}

// readEntryFile reads and parses a report entry from a JSON file.
func (s *Store) readEntryFile(filename string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	return &entry, nil
}

// Cleanup removes entries older than retentionDays.
func (s *Store) Cleanup(retentionDays int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read report directory: %w", err)
	}

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		info, err := f.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			// Remove errors are skipped so a stuck file never blocks cleanup.
			_ = os.Remove(filepath.Join(s.dir, f.Name()))
		}
	}

	return nil
}

// generateID creates a unique ID like "compute-2026-08-23T10-30-00-1a2b3c4d".
func generateID() string {
	ts := time.Now().UTC().Format("2006-01-02T15-04-05")
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("compute-%s-%s", ts, suffix)
}
