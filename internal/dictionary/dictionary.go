// Package dictionary maintains the incremental English->target-language
// term dictionaries for catalog text. Dictionary CSVs are append-only:
// terms already present are never re-translated or rewritten, so manual
// corrections in the files survive later runs.
package dictionary

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/liorgins/rimon-api/internal/catalog"
)

const (
	productsFile  = "products_dictionary.csv"
	categoryFile  = "categories_dictionary.csv"
	hierarchyFile = "categories_hierarchy_dictionary.csv"

	// translateConcurrency bounds the fan-out against the translation
	// service. The core pipeline stays single-threaded; only this external
	// collaborator is called concurrently.
	translateConcurrency = 4
)

// TranslateFunc translates English text, returning "" on failure.
type TranslateFunc func(ctx context.Context, text string) string

// Builder writes the three dictionary CSVs under a common directory.
type Builder struct {
	dir       string
	lang      string
	translate TranslateFunc
	log       *zap.SugaredLogger
}

// NewBuilder returns a Builder writing into dir with the given target
// language column. translate may be nil to skip translation entirely.
func NewBuilder(dir, lang string, translate TranslateFunc, log *zap.SugaredLogger) *Builder {
	return &Builder{dir: dir, lang: lang, translate: translate, log: log}
}

// Stats reports what one dictionary build appended.
type Stats struct {
	Products   int
	Categories int
	Hierarchy  int
	Translated int
}

// Build appends new terms from the given product list, flattened category
// rows and flattened hierarchy rows.
func (b *Builder) Build(ctx context.Context, products, categoryRows, hierarchyRows []*catalog.Object) (Stats, error) {
	var stats Stats
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return stats, fmt.Errorf("create dictionary directory: %w", err)
	}

	written, translated, err := b.buildProducts(ctx, products)
	if err != nil {
		return stats, err
	}
	stats.Products = written
	stats.Translated += translated

	written, translated, err = b.buildTerms(ctx, categoryFile, distinctValues(categoryRows, "category_name"))
	if err != nil {
		return stats, err
	}
	stats.Categories = written
	stats.Translated += translated

	written, translated, err = b.buildTerms(ctx, hierarchyFile, distinctValues(hierarchyRows, "title"))
	if err != nil {
		return stats, err
	}
	stats.Hierarchy = written
	stats.Translated += translated

	return stats, nil
}

// buildProducts appends one row per (id, sku) pair not yet present, with
// columns id, sku, english, <lang>.
func (b *Builder) buildProducts(ctx context.Context, products []*catalog.Object) (written, translated int, err error) {
	path := filepath.Join(b.dir, productsFile)
	existing, err := readExistingKeys(path, func(record map[string]string) string {
		return record["id"] + "\x00" + record["sku"]
	})
	if err != nil {
		return 0, 0, err
	}

	type entry struct {
		id, sku, english string
	}
	pending := make([]entry, 0)
	for _, p := range products {
		id := p.GetString("id")
		title := p.GetString("title")
		if id == "" || title == "" {
			continue
		}
		sku := p.GetString("sku")
		if existing[id+"\x00"+sku] {
			continue
		}
		pending = append(pending, entry{id: id, sku: sku, english: title})
	}

	translations := b.translateAll(ctx, func(i int) string { return pending[i].english }, len(pending))
	rows := make([][]string, 0, len(pending))
	for i, e := range pending {
		if translations[i] != "" {
			translated++
		}
		rows = append(rows, []string{e.id, e.sku, e.english, translations[i]})
	}
	header := []string{"id", "sku", "english", b.lang}
	if err := appendRows(path, header, rows); err != nil {
		return 0, 0, err
	}
	return len(rows), translated, nil
}

// buildTerms appends one row per distinct term not yet present, with
// columns english, <lang>. Terms are appended in sorted order.
func (b *Builder) buildTerms(ctx context.Context, file string, terms []string) (written, translated int, err error) {
	path := filepath.Join(b.dir, file)
	existing, err := readExistingKeys(path, func(record map[string]string) string {
		return record["english"]
	})
	if err != nil {
		return 0, 0, err
	}

	pending := make([]string, 0, len(terms))
	for _, term := range terms {
		if !existing[term] {
			pending = append(pending, term)
		}
	}

	translations := b.translateAll(ctx, func(i int) string { return pending[i] }, len(pending))
	rows := make([][]string, 0, len(pending))
	for i, term := range pending {
		if translations[i] != "" {
			translated++
		}
		rows = append(rows, []string{term, translations[i]})
	}
	header := []string{"english", b.lang}
	if err := appendRows(path, header, rows); err != nil {
		return 0, 0, err
	}
	return len(rows), translated, nil
}

// translateAll fans the pending terms out to the translator with bounded
// concurrency, preserving input order.
func (b *Builder) translateAll(ctx context.Context, term func(int) string, n int) []string {
	out := make([]string, n)
	if b.translate == nil || n == 0 {
		return out
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(translateConcurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			out[i] = b.translate(gctx, term(i))
			return nil
		})
	}
	// Workers never return errors; translation failures become "".
	_ = g.Wait()
	return out
}

// distinctValues collects the distinct non-empty values of field across
// rows, sorted.
func distinctValues(rows []*catalog.Object, field string) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		if v := row.GetString(field); v != "" {
			seen[v] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// readExistingKeys loads an existing dictionary CSV and returns the set of
// keys already present. A missing file yields an empty set.
func readExistingKeys(path string, key func(map[string]string) string) (map[string]bool, error) {
	keys := make(map[string]bool)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return keys, nil
		}
		return nil, fmt.Errorf("open dictionary %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return keys, nil
		}
		return nil, fmt.Errorf("read dictionary header %s: %w", path, err)
	}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dictionary %s: %w", path, err)
		}
		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				fields[col] = record[i]
			}
		}
		keys[key(fields)] = true
	}
	return keys, nil
}

// appendRows appends rows to path, writing the header first when the file
// is new or empty.
func appendRows(path string, header []string, rows [][]string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open dictionary %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat dictionary %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write dictionary header %s: %w", path, err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write dictionary row %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush dictionary %s: %w", path, err)
	}
	return nil
}
