// Package catalog defines the data model for fetched catalog documents:
// an insertion-ordered JSON object type for schema-less entities, plus the
// extraction logic that pulls category trees and product lists out of a
// raw document.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Object is a JSON object that remembers the order its keys first appeared.
// Values are decoded as string, json.Number, bool, nil, []any or *Object.
// Products and raw categories carry an open-ended field set, so they are
// represented as Objects rather than fixed structs.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the value for key and whether it is present.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set assigns key to value. Re-assigning an existing key keeps its original
// position, matching JSON object semantics in the source documents.
func (o *Object) Set(key string, value any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// GetString returns the value for key coerced to a string. Missing keys and
// null values coerce to "". Numbers keep their literal form, booleans render
// as "true"/"false".
func (o *Object) GetString(key string) string {
	v, ok := o.Get(key)
	if !ok {
		return ""
	}
	return Stringify(v)
}

// GetOr returns the value for key, or def when the key is absent.
func (o *Object) GetOr(key string, def any) any {
	if v, ok := o.Get(key); ok {
		return v
	}
	return def
}

// Stringify renders a decoded JSON value as a flat string. Composite values
// fall back to their compact JSON encoding.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

// Equal reports deep structural equality with other, ignoring key order.
// Nested objects and arrays are compared recursively.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o.Len() == other.Len()
	}
	if len(o.keys) != len(other.keys) {
		return false
	}
	for k, v := range o.values {
		ov, ok := other.values[k]
		if !ok || !ValueEqual(v, ov) {
			return false
		}
	}
	return true
}

// ValueEqual compares two decoded JSON values for deep equality.
func ValueEqual(a, b any) bool {
	switch av := a.(type) {
	case *Object:
		bv, ok := b.(*Object)
		return ok && av.Equal(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// UnmarshalJSON decodes data into o, preserving key order. Numbers are kept
// as json.Number so their literal form survives a round trip.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("catalog: expected JSON object, got %v", tok)
	}
	o.keys = nil
	o.values = make(map[string]any)
	return o.decodeMembers(dec)
}

func (o *Object) decodeMembers(dec *json.Decoder) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("catalog: expected object key, got %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return err
		}
		o.Set(key, val)
	}
	// consume closing '}'
	_, err := dec.Token()
	return err
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := NewObject()
		if err := obj.decodeMembers(dec); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := make([]any, 0)
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil { // closing ']'
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("catalog: unexpected delimiter %v", delim)
	}
}

// MarshalJSON encodes o with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
