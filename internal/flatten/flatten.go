// Package flatten projects nested category trees into flat tabular rows and
// into a cleaned hierarchical copy suitable for export. Both projections are
// depth-first pre-order and preserve source order; a tree of n nodes always
// yields exactly n rows.
package flatten

import (
	"encoding/json"

	"github.com/liorgins/rimon-api/internal/catalog"
)

// canonical category fields with their defaults, in export order.
var canonicalFields = []struct {
	key string
	def any
}{
	{"id", ""},
	{"title", ""},
	{"urlTitle", ""},
	{"description", ""},
	{"showOnHomepage", false},
	{"showOnMenu", false},
	{"priority", json.Number("0")},
	{"imgSrc", ""},
}

// ByParentName flattens raw category trees into rows annotated with the
// immediate parent's title. Root rows carry a null parent_category.
func ByParentName(categories []*catalog.Object) []*catalog.Object {
	return byParentName(categories, nil)
}

func byParentName(categories []*catalog.Object, parentTitle any) []*catalog.Object {
	rows := make([]*catalog.Object, 0, len(categories))
	for _, category := range categories {
		row := catalog.NewObject()
		row.Set("category_name", category.GetOr("title", ""))
		row.Set("parent_category", parentTitle)
		row.Set("id", category.GetOr("id", ""))
		row.Set("url_title", category.GetOr("urlTitle", ""))
		row.Set("description", category.GetOr("description", ""))
		row.Set("show_on_homepage", category.GetOr("showOnHomepage", false))
		row.Set("show_on_menu", category.GetOr("showOnMenu", false))
		row.Set("priority", category.GetOr("priority", json.Number("0")))
		row.Set("image_src", category.GetOr("imgSrc", ""))
		rows = append(rows, row)

		if children := catalog.Children(category); len(children) > 0 {
			rows = append(rows, byParentName(children, category.GetOr("title", nil))...)
		}
	}
	return rows
}

// CleanHierarchy produces a recursive copy of the category trees retaining
// only the canonical field set, with the nested "Data" child list renamed to
// "subcategories". The copy is lossless for canonical content: reading
// subcategories back reconstructs the same structure.
func CleanHierarchy(categories []*catalog.Object) []*catalog.Object {
	cleaned := make([]*catalog.Object, 0, len(categories))
	for _, category := range categories {
		cleaned = append(cleaned, cleanCategory(category))
	}
	return cleaned
}

func cleanCategory(category *catalog.Object) *catalog.Object {
	node := catalog.NewObject()
	for _, field := range canonicalFields {
		node.Set(field.key, category.GetOr(field.key, field.def))
	}
	children := catalog.Children(category)
	subcategories := make([]any, 0, len(children))
	for _, child := range children {
		subcategories = append(subcategories, cleanCategory(child))
	}
	node.Set("subcategories", subcategories)
	return node
}

// ByParentID flattens cleaned hierarchy trees into rows annotated with the
// immediate parent's identifier. Root rows carry a null parent_id.
func ByParentID(cleaned []*catalog.Object) []*catalog.Object {
	return byParentID(cleaned, nil)
}

func byParentID(cleaned []*catalog.Object, parentID any) []*catalog.Object {
	rows := make([]*catalog.Object, 0, len(cleaned))
	for _, node := range cleaned {
		row := catalog.NewObject()
		for _, field := range canonicalFields {
			row.Set(field.key, node.GetOr(field.key, field.def))
		}
		row.Set("parent_id", parentID)
		rows = append(rows, row)

		if children := subcategories(node); len(children) > 0 {
			rows = append(rows, byParentID(children, node.GetOr("id", ""))...)
		}
	}
	return rows
}

func subcategories(node *catalog.Object) []*catalog.Object {
	v, ok := node.Get("subcategories")
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]*catalog.Object, 0, len(arr))
	for _, item := range arr {
		if child, ok := item.(*catalog.Object); ok {
			out = append(out, child)
		}
	}
	return out
}
