package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/larraunpilota/fnp-results/internal/match"
)

// Storage handles persistence of one JSON output file
type Storage struct {
	path string
}

// New creates a new Storage instance for path. The parent directory is created
// if needed and checked for writability so a bad output location is reported
// before any page is fetched.
func New(path string) (*Storage, error) {
	path, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	check, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		return nil, fmt.Errorf("output directory not writable: %w", err)
	}
	check.Close()
	os.Remove(check.Name())

	return &Storage{path: path}, nil
}

// Open returns a Storage for reading path. It touches nothing on disk.
func Open(path string) (*Storage, error) {
	path, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	return &Storage{path: path}, nil
}

func expandPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("output path is empty")
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return path, nil
}

// Path returns the file this Storage writes to
func (s *Storage) Path() string {
	return s.path
}

// WriteMatches replaces the snapshot with records
func (s *Storage) WriteMatches(records []*match.MatchRecord) error {
	if records == nil {
		records = []*match.MatchRecord{}
	}
	return s.writeJSON(records)
}

// LoadMatches reads the snapshot. A missing file yields an empty list.
func (s *Storage) LoadMatches() ([]*match.MatchRecord, error) {
	var records []*match.MatchRecord
	if err := s.readJSON(&records); err != nil {
		return nil, err
	}
	for _, rec := range records {
		// Ensure Sets is never null on re-export
		if rec.Sets == nil {
			rec.Sets = []string{}
		}
	}
	return records, nil
}

// WriteFixtures replaces the billboard file with fixtures
func (s *Storage) WriteFixtures(fixtures []*match.Fixture) error {
	if fixtures == nil {
		fixtures = []*match.Fixture{}
	}
	return s.writeJSON(fixtures)
}

// LoadFixtures reads the billboard file. A missing file yields an empty list.
func (s *Storage) LoadFixtures() ([]*match.Fixture, error) {
	var fixtures []*match.Fixture
	if err := s.readJSON(&fixtures); err != nil {
		return nil, err
	}
	return fixtures, nil
}

// WriteFile atomically writes raw bytes next to the snapshot, e.g. a calendar
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return writeAtomic(path, data)
}

func (s *Storage) writeJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	data = append(data, '\n')
	return writeAtomic(s.path, data)
}

func (s *Storage) readJSON(v interface{}) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No previous snapshot
			return nil
		}
		return fmt.Errorf("reading snapshot: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing snapshot: %w", err)
	}
	return nil
}

// writeAtomic writes data to a temp file in the target directory and renames it
// over path. The temp file is removed on any failure.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting snapshot permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}
