package fielddiff

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liorgins/rimon-api/internal/catalog"
)

func product(t *testing.T, data string) *catalog.Object {
	t.Helper()
	obj := catalog.NewObject()
	require.NoError(t, json.Unmarshal([]byte(data), obj))
	return obj
}

func TestChanges_EmptyWhenIdentical(t *testing.T) {
	prev := product(t, `{"id":"1","sku":"S","title":"A","price":10}`)
	curr := product(t, `{"id":"1","sku":"S","title":"A","price":10}`)

	assert.Empty(t, Changes("1", prev, curr))
}

func TestChanges_ExactlyDifferingFields(t *testing.T) {
	prev := product(t, `{"id":"1","title":"A","price":10,"stock":5}`)
	curr := product(t, `{"id":"1","title":"A","price":12,"stock":5}`)

	changes := Changes("1", prev, curr)

	require.Len(t, changes, 1)
	assert.Equal(t, "price", changes[0].Field)
	assert.Equal(t, json.Number("10"), changes[0].OldValue)
	assert.Equal(t, json.Number("12"), changes[0].NewValue)
	assert.Equal(t, "A", changes[0].Title)
}

func TestChanges_NewFieldIsChangedFromEmpty(t *testing.T) {
	prev := product(t, `{"id":"1","title":"A"}`)
	curr := product(t, `{"id":"1","title":"A","color":"red"}`)

	changes := Changes("1", prev, curr)

	require.Len(t, changes, 1)
	assert.Equal(t, "color", changes[0].Field)
	assert.Equal(t, "", changes[0].OldValue)
	assert.Equal(t, "red", changes[0].NewValue)
}

func TestChanges_RemovedFieldIsInvisible(t *testing.T) {
	// Only keys of the current version are enumerated; a field dropped
	// entirely does not produce a row.
	prev := product(t, `{"id":"1","title":"A","discontinued":"yes"}`)
	curr := product(t, `{"id":"1","title":"A"}`)

	assert.Empty(t, Changes("1", prev, curr))
}

func TestChanges_SKUAndTitleComeFromCurrent(t *testing.T) {
	prev := product(t, `{"id":"1","sku":"OLD","title":"Old name","price":1}`)
	curr := product(t, `{"id":"1","sku":"NEW","title":"New name","price":1}`)

	changes := Changes("1", prev, curr)

	require.Len(t, changes, 2)
	for _, c := range changes {
		assert.Equal(t, "NEW", c.SKU)
		assert.Equal(t, "New name", c.Title)
	}
}

func TestRows_Schema(t *testing.T) {
	changes := []Change{{
		ID: "1", SKU: "S", Title: "A", Field: "price",
		OldValue: json.Number("10"), NewValue: json.Number("12"),
	}}

	rows := Rows(changes)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"id", "sku", "title", "field", "old_value", "new_value"}, rows[0].Keys())
	assert.Equal(t, "10", rows[0].GetString("old_value"))
	assert.Equal(t, "12", rows[0].GetString("new_value"))
}

func TestUnifiedReport_SkipsSingleLineChanges(t *testing.T) {
	changes := []Change{{ID: "1", Field: "price", OldValue: "10", NewValue: "12"}}

	assert.Empty(t, UnifiedReport(changes))
}

func TestUnifiedReport_MultilineChangeProducesHunks(t *testing.T) {
	changes := []Change{{
		ID:       "1",
		Field:    "description",
		OldValue: "line one\nline two\nline three",
		NewValue: "line one\nline 2\nline three",
	}}

	body := UnifiedReport(changes)

	assert.Contains(t, body, "--- 1/description@previous")
	assert.Contains(t, body, "+++ 1/description@current")
	assert.Contains(t, body, "-line two")
	assert.Contains(t, body, "+line 2")
}
