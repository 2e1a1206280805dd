package dictionary

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liorgins/rimon-api/internal/catalog"
)

func obj(t *testing.T, data string) *catalog.Object {
	t.Helper()
	o := catalog.NewObject()
	require.NoError(t, json.Unmarshal([]byte(data), o))
	return o
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func reverseTranslate(_ context.Context, text string) string {
	runes := []rune(text)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func TestBuild_ProductsDictionary(t *testing.T) {
	dir := t.TempDir()
	builder := NewBuilder(dir, "he", reverseTranslate, nil)

	products := []*catalog.Object{
		obj(t, `{"id":"1","sku":"S1","title":"Apple"}`),
		obj(t, `{"id":"2","sku":"S2","title":"Banana"}`),
		obj(t, `{"id":"3","sku":"S3"}`),  // no title, skipped
		obj(t, `{"sku":"S4","title":"No id"}`), // no id, skipped
	}

	stats, err := builder.Build(context.Background(), products, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Products)
	records := readCSV(t, filepath.Join(dir, "products_dictionary.csv"))
	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "sku", "english", "he"}, records[0])
	assert.Equal(t, []string{"1", "S1", "Apple", "elppA"}, records[1])
	assert.Equal(t, []string{"2", "S2", "Banana", "ananaB"}, records[2])
}

func TestBuild_AppendOnlyNeverRetranslates(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	counting := func(ctx context.Context, text string) string {
		calls++
		return "x"
	}
	builder := NewBuilder(dir, "he", counting, nil)
	products := []*catalog.Object{obj(t, `{"id":"1","sku":"S1","title":"Apple"}`)}

	_, err := builder.Build(context.Background(), products, nil, nil)
	require.NoError(t, err)
	stats, err := builder.Build(context.Background(), products, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Products)
	assert.Equal(t, 1, calls)
	records := readCSV(t, filepath.Join(dir, "products_dictionary.csv"))
	assert.Len(t, records, 2) // header + one row, no duplicates
}

func TestBuild_CategoryTermsSortedAndDistinct(t *testing.T) {
	dir := t.TempDir()
	builder := NewBuilder(dir, "he", nil, nil)

	rows := []*catalog.Object{
		obj(t, `{"category_name":"Vegetables"}`),
		obj(t, `{"category_name":"Fruit"}`),
		obj(t, `{"category_name":"Fruit"}`),
		obj(t, `{"category_name":""}`),
	}

	stats, err := builder.Build(context.Background(), nil, rows, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Categories)
	records := readCSV(t, filepath.Join(dir, "categories_dictionary.csv"))
	require.Len(t, records, 3)
	assert.Equal(t, []string{"english", "he"}, records[0])
	assert.Equal(t, []string{"Fruit", ""}, records[1])
	assert.Equal(t, []string{"Vegetables", ""}, records[2])
}

func TestBuild_HierarchyTitles(t *testing.T) {
	dir := t.TempDir()
	builder := NewBuilder(dir, "he", reverseTranslate, nil)

	rows := []*catalog.Object{
		obj(t, `{"title":"Root"}`),
		obj(t, `{"title":"Child"}`),
	}

	stats, err := builder.Build(context.Background(), nil, nil, rows)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Hierarchy)
	assert.Equal(t, 2, stats.Translated)
	records := readCSV(t, filepath.Join(dir, "categories_hierarchy_dictionary.csv"))
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Child", "dlihC"}, records[1])
	assert.Equal(t, []string{"Root", "tooR"}, records[2])
}

func TestBuild_NilTranslatorLeavesTargetEmpty(t *testing.T) {
	dir := t.TempDir()
	builder := NewBuilder(dir, "he", nil, nil)
	products := []*catalog.Object{obj(t, `{"id":"1","sku":"S1","title":"Apple"}`)}

	stats, err := builder.Build(context.Background(), products, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Products)
	assert.Equal(t, 0, stats.Translated)
	records := readCSV(t, filepath.Join(dir, "products_dictionary.csv"))
	assert.Equal(t, []string{"1", "S1", "Apple", ""}, records[1])
}

func TestBuild_ManualCorrectionsSurvive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories_dictionary.csv")
	require.NoError(t, os.WriteFile(path, []byte("english,he\nFruit,manually-fixed\n"), 0o644))

	builder := NewBuilder(dir, "he", reverseTranslate, nil)
	rows := []*catalog.Object{obj(t, `{"category_name":"Fruit"}`)}

	stats, err := builder.Build(context.Background(), nil, rows, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Categories)
	records := readCSV(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "manually-fixed", records[1][1])
}
