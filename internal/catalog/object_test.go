package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, data string) *Object {
	t.Helper()
	obj := NewObject()
	require.NoError(t, json.Unmarshal([]byte(data), obj))
	return obj
}

func TestObject_PreservesKeyOrder(t *testing.T) {
	obj := mustParse(t, `{"zebra":1,"apple":2,"mango":3}`)

	assert.Equal(t, []string{"zebra", "apple", "mango"}, obj.Keys())

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"zebra":1,"apple":2,"mango":3}`, string(out))
}

func TestObject_RoundTripNested(t *testing.T) {
	src := `{"id":5,"title":"Fruit","Data":[{"id":6,"title":"Citrus","flags":{"b":false,"a":true}}],"active":null}`
	obj := mustParse(t, src)

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, src, string(out))
	// Byte-identical too: key order survives the round trip.
	assert.Equal(t, src, string(out))
}

func TestObject_SetKeepsOriginalPosition(t *testing.T) {
	obj := NewObject()
	obj.Set("first", "a")
	obj.Set("second", "b")
	obj.Set("first", "c")

	assert.Equal(t, []string{"first", "second"}, obj.Keys())
	v, ok := obj.Get("first")
	require.True(t, ok)
	assert.Equal(t, "c", v)
}

func TestObject_GetString(t *testing.T) {
	obj := mustParse(t, `{"id":42,"sku":"AB-1","active":true,"missing_price":null}`)

	assert.Equal(t, "42", obj.GetString("id"))
	assert.Equal(t, "AB-1", obj.GetString("sku"))
	assert.Equal(t, "true", obj.GetString("active"))
	assert.Equal(t, "", obj.GetString("missing_price"))
	assert.Equal(t, "", obj.GetString("nonexistent"))
}

func TestObject_EqualIgnoresKeyOrder(t *testing.T) {
	a := mustParse(t, `{"id":1,"title":"A","nested":{"x":1,"y":2}}`)
	b := mustParse(t, `{"title":"A","nested":{"y":2,"x":1},"id":1}`)

	assert.True(t, a.Equal(b))
}

func TestObject_EqualDetectsNestedDifference(t *testing.T) {
	a := mustParse(t, `{"id":1,"Data":[{"id":2,"title":"Child"}]}`)
	b := mustParse(t, `{"id":1,"Data":[{"id":2,"title":"Renamed"}]}`)
	c := mustParse(t, `{"id":1,"Data":[{"id":2,"title":"Child"}]}`)

	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(c))
}

func TestObject_EqualDifferentKeyCount(t *testing.T) {
	a := mustParse(t, `{"id":1}`)
	b := mustParse(t, `{"id":1,"extra":""}`)

	assert.False(t, a.Equal(b))
	assert.False(t, b.Equal(a))
}

func TestObject_UnmarshalRejectsNonObject(t *testing.T) {
	obj := NewObject()
	err := json.Unmarshal([]byte(`[1,2,3]`), obj)
	assert.Error(t, err)
}

func TestValueEqual_Arrays(t *testing.T) {
	a := mustParse(t, `{"tags":["a","b"]}`)
	b := mustParse(t, `{"tags":["a","b"]}`)
	c := mustParse(t, `{"tags":["b","a"]}`)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestStringify_CompositeFallsBackToJSON(t *testing.T) {
	obj := mustParse(t, `{"nested":{"a":1},"list":[1,2]}`)

	nested, _ := obj.Get("nested")
	assert.Equal(t, `{"a":1}`, Stringify(nested))
	list, _ := obj.Get("list")
	assert.Equal(t, `[1,2]`, Stringify(list))
}
