// Package report persists collections as pretty-printed JSON documents or
// flat CSV tables. Writes are atomic (temp file + rename) so readers never
// observe a partially-written report.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/liorgins/rimon-api/internal/catalog"
)

// EnsureDir creates dir and any missing parents. Safe to call repeatedly.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// WriteJSON writes v to path as indented JSON. Ordered objects keep their
// field order, so repeated runs over identical data produce identical bytes.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return writeAtomic(path, append(data, '\n'))
}

// WriteCSV writes rows as a CSV table. The header is the field order of the
// first row; an empty input produces an empty file rather than failing.
func WriteCSV(path string, rows []*catalog.Object) error {
	if len(rows) == 0 {
		return writeAtomic(path, nil)
	}
	header := rows[0].Keys()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write csv header %s: %w", path, err)
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, field := range header {
			record[i] = catalog.Stringify(row.GetOr(field, nil))
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("write csv row %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush csv %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	return rename(tmp.Name(), path)
}

// WriteText writes body to path, atomically.
func WriteText(path, body string) error {
	return writeAtomic(path, []byte(body))
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	return rename(tmp.Name(), path)
}

func rename(tmpName, path string) error {
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place %s: %w", path, err)
	}
	return nil
}
