// Package fielddiff expands an already-identified set of changed products
// into per-field change rows. It does not decide which entities changed;
// that partition comes from the delta engine.
package fielddiff

import (
	"github.com/liorgins/rimon-api/internal/catalog"
)

// Change is one field whose value differs between the previous and current
// version of a changed entity.
type Change struct {
	ID       string
	SKU      string
	Title    string
	Field    string
	OldValue any
	NewValue any
}

// Changes compares the previous and current version of one changed entity.
//
// Only field names present on the current version are enumerated; a field
// that disappeared entirely is not surfaced. Values absent on either side
// default to the empty string. Both behaviors are kept for compatibility
// with the historical reports.
func Changes(id string, prev, curr *catalog.Object) []Change {
	changes := make([]Change, 0)
	for _, field := range curr.Keys() {
		oldVal := prev.GetOr(field, "")
		newVal := curr.GetOr(field, "")
		if catalog.ValueEqual(oldVal, newVal) {
			continue
		}
		changes = append(changes, Change{
			ID:       id,
			SKU:      curr.GetString("sku"),
			Title:    curr.GetString("title"),
			Field:    field,
			OldValue: oldVal,
			NewValue: newVal,
		})
	}
	return changes
}

// Rows renders changes as ordered row objects with the field-change tabular
// schema: id, sku, title, field, old_value, new_value.
func Rows(changes []Change) []*catalog.Object {
	rows := make([]*catalog.Object, 0, len(changes))
	for _, c := range changes {
		row := catalog.NewObject()
		row.Set("id", c.ID)
		row.Set("sku", c.SKU)
		row.Set("title", c.Title)
		row.Set("field", c.Field)
		row.Set("old_value", c.OldValue)
		row.Set("new_value", c.NewValue)
		rows = append(rows, row)
	}
	return rows
}
