package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedCatalog indicates the fetched document is missing the
// top-level staticData structure entirely.
var ErrMalformedCatalog = errors.New("malformed catalog document")

// Sections holds the two collections extracted from a catalog document:
// the root category trees (each with a nested "Data" child list) and the
// flat product list.
type Sections struct {
	Categories []*Object
	Products   []*Object
}

// ParseDocument decodes a raw catalog document body.
func ParseDocument(data []byte) (*Object, error) {
	doc := NewObject()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse catalog document: %w", err)
	}
	return doc, nil
}

// Extract navigates the fixed nested path
// staticData.data.<countryKey>.<localeKey> and returns the categories.Data
// list and the products list found there. A missing intermediate key yields
// empty sections; a document without staticData at all fails with
// ErrMalformedCatalog.
func Extract(doc *Object, countryKey, localeKey string) (Sections, error) {
	sections := Sections{
		Categories: make([]*Object, 0),
		Products:   make([]*Object, 0),
	}
	static, ok := childObject(doc, "staticData")
	if !ok {
		return sections, fmt.Errorf("%w: missing staticData", ErrMalformedCatalog)
	}
	data, ok := childObject(static, "data")
	if !ok {
		return sections, nil
	}
	country, ok := childObject(data, countryKey)
	if !ok {
		return sections, nil
	}
	locale, ok := childObject(country, localeKey)
	if !ok {
		return sections, nil
	}
	if categories, ok := childObject(locale, "categories"); ok {
		sections.Categories = Children(categories)
	}
	if v, ok := locale.Get("products"); ok {
		sections.Products = objectList(v)
	}
	return sections, nil
}

// Children returns the nested "Data" child list of a category node.
// An absent or empty list yields an empty slice.
func Children(category *Object) []*Object {
	v, ok := category.Get("Data")
	if !ok {
		return []*Object{}
	}
	return objectList(v)
}

func childObject(parent *Object, key string) (*Object, bool) {
	v, ok := parent.Get(key)
	if !ok {
		return nil, false
	}
	obj, ok := v.(*Object)
	return obj, ok
}

func objectList(v any) []*Object {
	arr, ok := v.([]any)
	if !ok {
		return []*Object{}
	}
	out := make([]*Object, 0, len(arr))
	for _, item := range arr {
		if obj, ok := item.(*Object); ok {
			out = append(out, obj)
		}
	}
	return out
}
