// Package pipeline provides the high-level orchestration for catalog
// collection runs: fetch -> snapshot -> delta -> field changes ->
// dictionary. Each stage is also callable on its own for the dedicated
// subcommands.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/liorgins/rimon-api/internal/catalog"
	"github.com/liorgins/rimon-api/internal/config"
	"github.com/liorgins/rimon-api/internal/db"
	"github.com/liorgins/rimon-api/internal/delta"
	"github.com/liorgins/rimon-api/internal/dictionary"
	"github.com/liorgins/rimon-api/internal/fetch"
	"github.com/liorgins/rimon-api/internal/fielddiff"
	"github.com/liorgins/rimon-api/internal/flatten"
	"github.com/liorgins/rimon-api/internal/observability"
	"github.com/liorgins/rimon-api/internal/report"
	"github.com/liorgins/rimon-api/internal/snapshot"
	"github.com/liorgins/rimon-api/internal/translate"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds everything one pipeline invocation needs. The logger is
// constructed once per run by the caller and threaded through; no component
// reaches for a global.
type Options struct {
	Config     config.Config
	Log        *zap.SugaredLogger
	Printer    *observability.Printer
	Now        func() time.Time
	OnProgress ProgressCallback
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Options) emit(step, message string) {
	if o.OnProgress != nil {
		o.OnProgress(ProgressEvent{Step: step, Message: message})
	}
}

// ExtractResult reports what a fetch-and-snapshot stage produced.
type ExtractResult struct {
	Run      snapshot.Run
	Sections catalog.Sections
}

// Extract fetches the catalog, creates a new run directory and writes the
// raw document plus the per-run JSON and CSV exports.
func Extract(ctx context.Context, opts Options) (ExtractResult, error) {
	opts.emit("extract", "fetching catalog")
	doc, body, err := fetch.Catalog(ctx, opts.Config.APIURL, nil)
	if err != nil {
		return ExtractResult{}, err
	}

	store := snapshot.NewStore(opts.Config.RunsDir, opts.Log)
	run, err := store.NewRun(opts.now())
	if err != nil {
		return ExtractResult{}, err
	}
	if err := report.WriteText(run.RawPath(), string(body)); err != nil {
		return ExtractResult{}, err
	}

	sections, err := catalog.Extract(doc, opts.Config.CountryKey, opts.Config.LocaleKey)
	if err != nil {
		return ExtractResult{}, err
	}
	if err := writeRunExports(run, sections); err != nil {
		return ExtractResult{}, err
	}

	opts.Log.Infow("extraction complete",
		"run", run.ID,
		"categories", len(sections.Categories),
		"products", len(sections.Products))
	return ExtractResult{Run: run, Sections: sections}, nil
}

// writeRunExports materializes the current catalog as json/ and csv/
// exports inside the run directory.
func writeRunExports(run snapshot.Run, sections catalog.Sections) error {
	jsonDir := filepath.Join(run.Dir, "json")
	csvDir := filepath.Join(run.Dir, "csv")
	for _, dir := range []string{jsonDir, csvDir} {
		if err := report.EnsureDir(dir); err != nil {
			return err
		}
	}

	flat := flatten.ByParentName(sections.Categories)
	hierarchy := flatten.CleanHierarchy(sections.Categories)
	hierarchyFlat := flatten.ByParentID(hierarchy)

	writes := []struct {
		path string
		json any
		csv  []*catalog.Object
	}{
		{path: filepath.Join(jsonDir, "categories.json"), json: flat},
		{path: filepath.Join(jsonDir, "categories-hierarchy.json"), json: hierarchy},
		{path: filepath.Join(jsonDir, "products.json"), json: sections.Products},
		{path: filepath.Join(csvDir, "categories.csv"), csv: flat},
		{path: filepath.Join(csvDir, "categories-hierarchy.csv"), csv: hierarchyFlat},
		{path: filepath.Join(csvDir, "products.csv"), csv: sections.Products},
	}
	for _, w := range writes {
		var err error
		if w.json != nil {
			err = report.WriteJSON(w.path, w.json)
		} else {
			err = report.WriteCSV(w.path, w.csv)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// DeltaResult carries the three partitions of one delta computation plus
// the product sections needed by the field-change expansion.
type DeltaResult struct {
	PrevRun, CurrRun string
	Categories       delta.Partition
	Products         delta.Partition
	Hierarchy        delta.Partition
	PrevSections     catalog.Sections
	CurrSections     catalog.Sections
}

// Counts converts a partition into printable counts.
func Counts(p delta.Partition) observability.DeltaCounts {
	return observability.DeltaCounts{
		Added:   len(p.Added),
		Removed: len(p.Removed),
		Changed: len(p.Changed),
	}
}

// Delta loads the two latest snapshots, computes the three partitions and
// writes the delta/json and delta/csv export sets into the current run
// directory.
func Delta(ctx context.Context, opts Options) (DeltaResult, error) {
	_ = ctx

	store := snapshot.NewStore(opts.Config.RunsDir, opts.Log)
	prevID, currID, err := store.LatestTwo()
	if err != nil {
		return DeltaResult{}, err
	}
	opts.emit("delta", fmt.Sprintf("comparing %s -> %s", prevID, currID))

	prevDoc, err := store.Load(prevID)
	if err != nil {
		return DeltaResult{}, err
	}
	currDoc, err := store.Load(currID)
	if err != nil {
		return DeltaResult{}, err
	}

	prevSections, err := catalog.Extract(prevDoc, opts.Config.CountryKey, opts.Config.LocaleKey)
	if err != nil {
		return DeltaResult{}, err
	}
	currSections, err := catalog.Extract(currDoc, opts.Config.CountryKey, opts.Config.LocaleKey)
	if err != nil {
		return DeltaResult{}, err
	}

	engine := delta.NewEngine(opts.Log)
	result := DeltaResult{
		PrevRun:      prevID,
		CurrRun:      currID,
		Categories:   engine.Diff(prevSections.Categories, currSections.Categories),
		Products:     engine.Diff(prevSections.Products, currSections.Products),
		PrevSections: prevSections,
		CurrSections: currSections,
	}
	// Hierarchy diffing is root-level only: a change buried inside a
	// subtree whose root is unchanged does not surface here.
	prevHierarchy := flatten.CleanHierarchy(prevSections.Categories)
	currHierarchy := flatten.CleanHierarchy(currSections.Categories)
	result.Hierarchy = engine.Diff(prevHierarchy, currHierarchy)

	if err := writeDeltaExports(store.RunDir(currID), result); err != nil {
		return DeltaResult{}, err
	}

	opts.Log.Infow("delta complete",
		"previous", prevID,
		"current", currID,
		"categories_changed", len(result.Categories.Changed),
		"products_changed", len(result.Products.Changed))
	return result, nil
}

func writeDeltaExports(runDir string, result DeltaResult) error {
	jsonDir := filepath.Join(runDir, "delta", "json")
	csvDir := filepath.Join(runDir, "delta", "csv")
	for _, dir := range []string{jsonDir, csvDir} {
		if err := report.EnsureDir(dir); err != nil {
			return err
		}
	}

	sets := []struct {
		name    string
		p       delta.Partition
		flatten func([]*catalog.Object) []*catalog.Object
	}{
		{name: "categories", p: result.Categories, flatten: flatten.ByParentName},
		{name: "products", p: result.Products, flatten: nil},
		{name: "categories_hierarchy", p: result.Hierarchy, flatten: flatten.ByParentID},
	}
	for _, set := range sets {
		parts := []struct {
			suffix   string
			entities []*catalog.Object
		}{
			{"added", set.p.Added},
			{"removed", set.p.Removed},
			{"changed", set.p.Changed},
		}
		for _, part := range parts {
			jsonPath := filepath.Join(jsonDir, fmt.Sprintf("%s_%s.json", set.name, part.suffix))
			if err := report.WriteJSON(jsonPath, part.entities); err != nil {
				return err
			}
			rows := part.entities
			if set.flatten != nil {
				rows = set.flatten(part.entities)
			}
			csvPath := filepath.Join(csvDir, fmt.Sprintf("%s_%s.csv", set.name, part.suffix))
			if err := report.WriteCSV(csvPath, rows); err != nil {
				return err
			}
		}
	}
	return nil
}

// FieldChanges expands the changed-products partition of result into the
// field-level CSV report and the unified-diff detail file.
func FieldChanges(ctx context.Context, opts Options, result DeltaResult) (int, error) {
	_ = ctx
	opts.emit("field_changes", "expanding changed products")

	prevByID := indexProducts(result.PrevSections.Products)
	currByID := indexProducts(result.CurrSections.Products)

	changes := make([]fielddiff.Change, 0)
	for _, changed := range result.Products.Changed {
		id := changed.GetString("id")
		prev, ok := prevByID[id]
		if !ok {
			prev = catalog.NewObject()
		}
		curr, ok := currByID[id]
		if !ok {
			curr = catalog.NewObject()
		}
		changes = append(changes, fielddiff.Changes(id, prev, curr)...)
	}

	csvDir := filepath.Join(opts.Config.RunsDir, result.CurrRun, "delta", "csv")
	if err := report.EnsureDir(csvDir); err != nil {
		return 0, err
	}
	if err := report.WriteCSV(filepath.Join(csvDir, "products_field_changes.csv"), fielddiff.Rows(changes)); err != nil {
		return 0, err
	}
	if body := fielddiff.UnifiedReport(changes); body != "" {
		if err := report.WriteText(filepath.Join(csvDir, "products_field_changes.diff"), body); err != nil {
			return 0, err
		}
	}

	opts.Log.Infow("field changes complete", "rows", len(changes))
	return len(changes), nil
}

func indexProducts(products []*catalog.Object) map[string]*catalog.Object {
	byID := make(map[string]*catalog.Object, len(products))
	for _, p := range products {
		byID[p.GetString("id")] = p
	}
	return byID
}

// Dictionary builds the translation dictionaries from the latest snapshot.
func Dictionary(ctx context.Context, opts Options) (dictionary.Stats, error) {
	opts.emit("dictionary", "building translation dictionaries")

	store := snapshot.NewStore(opts.Config.RunsDir, opts.Log)
	latest, err := store.Latest()
	if err != nil {
		return dictionary.Stats{}, err
	}
	doc, err := store.Load(latest)
	if err != nil {
		return dictionary.Stats{}, err
	}
	sections, err := catalog.Extract(doc, opts.Config.CountryKey, opts.Config.LocaleKey)
	if err != nil {
		return dictionary.Stats{}, err
	}

	var translateFn dictionary.TranslateFunc
	if !opts.Config.NoTranslate {
		var cache *translate.Cache
		if opts.Config.TranslateCache != "" {
			cache, err = translate.OpenCache(opts.Config.TranslateCache)
			if err != nil {
				opts.Log.Warnw("translation cache unavailable, continuing without it", "error", err)
				cache = nil
			} else {
				defer cache.Close()
			}
		}
		client := translate.NewClient(opts.Config.TranslateURL, opts.Config.TranslateLang, cache, opts.Log)
		translateFn = client.Translate
	}

	builder := dictionary.NewBuilder(opts.Config.DictionaryDir, opts.Config.TranslateLang, translateFn, opts.Log)
	flat := flatten.ByParentName(sections.Categories)
	hierarchyFlat := flatten.ByParentID(flatten.CleanHierarchy(sections.Categories))
	stats, err := builder.Build(ctx, sections.Products, flat, hierarchyFlat)
	if err != nil {
		return stats, err
	}

	opts.Log.Infow("dictionary complete",
		"products", stats.Products,
		"categories", stats.Categories,
		"hierarchy", stats.Hierarchy,
		"translated", stats.Translated)
	return stats, nil
}

// RunSummary is persisted to the optional run-history database.
type RunSummary struct {
	Categories observability.DeltaCounts `json:"categories"`
	Products   observability.DeltaCounts `json:"products"`
	Hierarchy  observability.DeltaCounts `json:"hierarchy"`
	FieldRows  int                       `json:"field_rows"`
	Dictionary dictionary.Stats          `json:"dictionary"`
}

// Run orchestrates the full collection pipeline end to end. The first run
// against an empty runs directory has nothing to diff; that case is logged
// and the delta and field-change stages are skipped, leaving no partial
// delta output behind.
func Run(ctx context.Context, opts Options) error {
	var history *db.DB
	if opts.Config.DatabaseURL != "" {
		var err error
		history, err = db.Connect(ctx, opts.Config.DatabaseURL)
		if err != nil {
			opts.Log.Warnw("run-history database unavailable, continuing without persistence", "error", err)
		} else {
			defer history.Close()
			if err := history.EnsureSchema(ctx); err != nil {
				opts.Log.Warnw("run-history schema setup failed, continuing without persistence", "error", err)
				history.Close()
				history = nil
			}
		}
	}

	extracted, err := timedStep(ctx, opts, history, nil, "extract", func() (ExtractResult, error) {
		return Extract(ctx, opts)
	})
	if err != nil {
		return err
	}

	var runID = recordRunStart(ctx, opts, history, extracted.Run.ID)

	var summary RunSummary
	status := "completed"

	deltaResult, err := timedStep(ctx, opts, history, runID, "delta", func() (DeltaResult, error) {
		return Delta(ctx, opts)
	})
	switch {
	case errors.Is(err, snapshot.ErrInsufficientHistory):
		opts.Log.Infow("first run, nothing to compare yet")
	case err != nil:
		finishRun(ctx, opts, history, runID, "failed", summary)
		return err
	default:
		summary.Categories = Counts(deltaResult.Categories)
		summary.Products = Counts(deltaResult.Products)
		summary.Hierarchy = Counts(deltaResult.Hierarchy)

		summary.FieldRows, err = timedStep(ctx, opts, history, runID, "field_changes", func() (int, error) {
			return FieldChanges(ctx, opts, deltaResult)
		})
		if err != nil {
			finishRun(ctx, opts, history, runID, "failed", summary)
			return err
		}
		if opts.Printer != nil {
			opts.Printer.PrintDeltaSummary(deltaResult.PrevRun, deltaResult.CurrRun,
				summary.Categories, summary.Products, summary.Hierarchy)
		}
	}

	summary.Dictionary, err = timedStep(ctx, opts, history, runID, "dictionary", func() (dictionary.Stats, error) {
		return Dictionary(ctx, opts)
	})
	if err != nil {
		finishRun(ctx, opts, history, runID, "failed", summary)
		return err
	}

	if opts.Printer != nil {
		opts.Printer.PrintExtractionSummary(extracted.Run.ID,
			len(extracted.Sections.Categories), len(extracted.Sections.Products))
		opts.Printer.PrintDictionarySummary(summary.Dictionary.Products,
			summary.Dictionary.Categories, summary.Dictionary.Hierarchy, summary.Dictionary.Translated)
	}

	finishRun(ctx, opts, history, runID, status, summary)
	return nil
}

// timedStep runs fn, reports its duration and outcome to the optional
// run-history database, and emits progress.
func timedStep[T any](ctx context.Context, opts Options, history *db.DB, runID *runRef, step string, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	elapsed := time.Since(start)

	status := "completed"
	if err != nil && !errors.Is(err, snapshot.ErrInsufficientHistory) {
		status = "failed"
	}
	opts.Log.Debugw("step finished", "step", step, "status", status, "elapsed", elapsed)

	if history != nil && runID != nil {
		if rerr := history.RecordStep(ctx, runID.id, step, status, elapsed.Milliseconds()); rerr != nil {
			opts.Log.Warnw("failed to record step", "step", step, "error", rerr)
		}
	}
	return out, err
}

type runRef struct {
	id uuid.UUID
}

func recordRunStart(ctx context.Context, opts Options, history *db.DB, snapshotID string) *runRef {
	if history == nil {
		return nil
	}
	id, err := history.CreateRun(ctx, snapshotID)
	if err != nil {
		opts.Log.Warnw("failed to record run start", "error", err)
		return nil
	}
	return &runRef{id: id}
}

func finishRun(ctx context.Context, opts Options, history *db.DB, runID *runRef, status string, summary RunSummary) {
	if history == nil || runID == nil {
		return
	}
	if err := history.SaveSummary(ctx, runID.id, summary); err != nil {
		opts.Log.Warnw("failed to save run summary", "error", err)
	}
	if err := history.CompleteRun(ctx, runID.id, status); err != nil {
		opts.Log.Warnw("failed to complete run record", "error", err)
	}
}

// CategoryMap builds the parent-title -> child-titles mapping from the
// latest snapshot's flattened categories and writes it to outPath.
func CategoryMap(ctx context.Context, opts Options, outPath string) (int, error) {
	_ = ctx

	store := snapshot.NewStore(opts.Config.RunsDir, opts.Log)
	latest, err := store.Latest()
	if err != nil {
		return 0, err
	}
	doc, err := store.Load(latest)
	if err != nil {
		return 0, err
	}
	sections, err := catalog.Extract(doc, opts.Config.CountryKey, opts.Config.LocaleKey)
	if err != nil {
		return 0, err
	}

	mapping := catalog.NewObject()
	for _, row := range flatten.ByParentName(sections.Categories) {
		parent := row.GetString("parent_category")
		name := row.GetString("category_name")
		children, _ := mapping.Get(parent)
		list, _ := children.([]any)
		mapping.Set(parent, append(list, name))
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := report.WriteJSON(outPath, mapping); err != nil {
		return 0, err
	}
	return mapping.Len(), nil
}
