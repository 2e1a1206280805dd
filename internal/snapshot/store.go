// Package snapshot owns the on-disk layout of catalog runs: one directory
// per run under a common root, named by a sortable timestamp, each holding a
// raw-data container with the fetched document. The store itself is
// read-only; run-directory creation is a separate write operation.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/liorgins/rimon-api/internal/catalog"
)

const (
	// RunTimestampLayout names run directories so lexicographic order is
	// chronological order.
	RunTimestampLayout = "2006-01-02_15-04-05"

	rawDirName  = "raw"
	rawFileName = "raw_data.json"
)

var (
	// ErrInsufficientHistory is returned when fewer than two runs exist.
	ErrInsufficientHistory = errors.New("not enough snapshot runs to compare")
	// ErrSnapshotNotFound is returned when a run's raw container or raw
	// document is absent.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrCorruptSnapshot is returned when a raw document cannot be parsed.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// Store locates and loads historical snapshot runs under a root directory.
type Store struct {
	root string
	log  *zap.SugaredLogger
}

// NewStore returns a Store rooted at root.
func NewStore(root string, log *zap.SugaredLogger) *Store {
	return &Store{root: root, log: log}
}

// Root returns the runs root directory.
func (s *Store) Root() string {
	return s.root
}

// RunDir returns the directory of the given run.
func (s *Store) RunDir(id string) string {
	return filepath.Join(s.root, id)
}

// List returns all run identifiers in ascending lexicographic order, which
// is chronological order given the timestamp naming scheme.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("runs directory %s does not exist: %w", s.root, err)
		}
		return nil, fmt.Errorf("read runs directory %s: %w", s.root, err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// LatestTwo returns the previous and current run identifiers.
// Fails with ErrInsufficientHistory when fewer than two runs exist.
func (s *Store) LatestTwo() (prev, curr string, err error) {
	ids, err := s.List()
	if err != nil {
		return "", "", err
	}
	if len(ids) < 2 {
		return "", "", fmt.Errorf("%w: found %d run(s) in %s", ErrInsufficientHistory, len(ids), s.root)
	}
	return ids[len(ids)-2], ids[len(ids)-1], nil
}

// Latest returns the most recent run identifier, or ErrInsufficientHistory
// when no run exists.
func (s *Store) Latest() (string, error) {
	ids, err := s.List()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("%w: no runs in %s", ErrInsufficientHistory, s.root)
	}
	return ids[len(ids)-1], nil
}

// Load reads and parses the raw catalog document of a run. The raw container
// is located case-insensitively ("raw" or "Raw"; both layouts exist in
// historical data).
func (s *Store) Load(id string) (*catalog.Object, error) {
	rawDir, err := s.findRawDir(id)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(rawDir, rawFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, path)
		}
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	doc, err := catalog.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, path, err)
	}
	if s.log != nil {
		s.log.Debugw("loaded snapshot", "run", id, "bytes", len(data))
	}
	return doc, nil
}

func (s *Store) findRawDir(id string) (string, error) {
	runDir := s.RunDir(id)
	entries, err := os.ReadDir(runDir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrSnapshotNotFound, runDir)
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.EqualFold(entry.Name(), rawDirName) {
			return filepath.Join(runDir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: no raw container in %s", ErrSnapshotNotFound, runDir)
}

// Run is a freshly created run directory, ready to receive a raw document
// and export files.
type Run struct {
	ID  string
	Dir string
}

// RawPath returns the location of the run's raw catalog document.
func (r Run) RawPath() string {
	return filepath.Join(r.Dir, rawDirName, rawFileName)
}

// NewRun creates a run directory named after now, with its raw container.
// Creation is idempotent: an existing directory is reused, not an error.
func (s *Store) NewRun(now time.Time) (Run, error) {
	id := now.Format(RunTimestampLayout)
	dir := s.RunDir(id)
	if err := os.MkdirAll(filepath.Join(dir, rawDirName), 0o755); err != nil {
		return Run{}, fmt.Errorf("create run directory %s: %w", dir, err)
	}
	if s.log != nil {
		s.log.Infow("created run directory", "run", id)
	}
	return Run{ID: id, Dir: dir}, nil
}
