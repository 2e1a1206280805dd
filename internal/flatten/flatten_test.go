package flatten

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liorgins/rimon-api/internal/catalog"
)

func tree(t *testing.T, docs ...string) []*catalog.Object {
	t.Helper()
	out := make([]*catalog.Object, 0, len(docs))
	for _, d := range docs {
		obj := catalog.NewObject()
		require.NoError(t, json.Unmarshal([]byte(d), obj))
		out = append(out, obj)
	}
	return out
}

func TestByParentName_RootAndChild(t *testing.T) {
	categories := tree(t, `{"id":1,"title":"Root","Data":[{"id":2,"title":"Child"}]}`)

	rows := ByParentName(categories)

	require.Len(t, rows, 2)
	assert.Equal(t, "Root", rows[0].GetString("category_name"))
	parent, _ := rows[0].Get("parent_category")
	assert.Nil(t, parent)
	assert.Equal(t, "Child", rows[1].GetString("category_name"))
	assert.Equal(t, "Root", rows[1].GetString("parent_category"))
}

func TestByParentName_PreOrderOneRowPerNode(t *testing.T) {
	categories := tree(t,
		`{"id":1,"title":"A","Data":[
			{"id":2,"title":"A1","Data":[{"id":3,"title":"A1a"}]},
			{"id":4,"title":"A2"}
		]}`,
		`{"id":5,"title":"B"}`,
	)

	rows := ByParentName(categories)

	require.Len(t, rows, 5)
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.GetString("category_name"))
	}
	// Depth-first pre-order: children before following siblings.
	assert.Equal(t, []string{"A", "A1", "A1a", "A2", "B"}, names)
	assert.Equal(t, "A1", rows[2].GetString("parent_category"))
}

func TestByParentName_RowSchema(t *testing.T) {
	categories := tree(t, `{"id":9,"title":"T","urlTitle":"t","description":"d","showOnHomepage":true,"showOnMenu":false,"priority":3,"imgSrc":"img.png","extraneous":"dropped"}`)

	rows := ByParentName(categories)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{
		"category_name", "parent_category", "id", "url_title", "description",
		"show_on_homepage", "show_on_menu", "priority", "image_src",
	}, rows[0].Keys())
	assert.Equal(t, "img.png", rows[0].GetString("image_src"))
	assert.False(t, rows[0].Has("extraneous"))
}

func TestByParentName_DefaultsForMissingFields(t *testing.T) {
	rows := ByParentName(tree(t, `{"id":1}`))

	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].GetString("category_name"))
	assert.Equal(t, "false", rows[0].GetString("show_on_homepage"))
	assert.Equal(t, "0", rows[0].GetString("priority"))
}

func TestCleanHierarchy_CanonicalFieldsAndRenamedChildren(t *testing.T) {
	categories := tree(t, `{"id":1,"title":"Root","junk":"x","Data":[{"id":2,"title":"Child","Data":[]}]}`)

	cleaned := CleanHierarchy(categories)

	require.Len(t, cleaned, 1)
	root := cleaned[0]
	assert.Equal(t, []string{
		"id", "title", "urlTitle", "description",
		"showOnHomepage", "showOnMenu", "priority", "imgSrc", "subcategories",
	}, root.Keys())
	assert.False(t, root.Has("junk"))
	assert.False(t, root.Has("Data"))

	subs, ok := root.Get("subcategories")
	require.True(t, ok)
	children := subs.([]any)
	require.Len(t, children, 1)
	child := children[0].(*catalog.Object)
	assert.Equal(t, "Child", child.GetString("title"))
	grandchildren, _ := child.Get("subcategories")
	assert.Empty(t, grandchildren.([]any))
}

func TestCleanThenFlatten_RoundTripMatchesNameFlattening(t *testing.T) {
	categories := tree(t,
		`{"id":1,"title":"A","urlTitle":"a","Data":[
			{"id":2,"title":"A1","urlTitle":"a1"}
		]}`,
		`{"id":3,"title":"B","urlTitle":"b"}`,
	)

	nameRows := ByParentName(categories)
	idRows := ByParentID(CleanHierarchy(categories))

	// Same node count and visiting order in both projections.
	require.Len(t, idRows, len(nameRows))
	for i := range nameRows {
		assert.Equal(t, nameRows[i].GetString("id"), idRows[i].GetString("id"))
		assert.Equal(t, nameRows[i].GetString("category_name"), idRows[i].GetString("title"))
		assert.Equal(t, nameRows[i].GetString("url_title"), idRows[i].GetString("urlTitle"))
	}
}

func TestByParentID_ParentLinkage(t *testing.T) {
	cleaned := CleanHierarchy(tree(t, `{"id":1,"title":"Root","Data":[{"id":2,"title":"Child"}]}`))

	rows := ByParentID(cleaned)

	require.Len(t, rows, 2)
	parent, _ := rows[0].Get("parent_id")
	assert.Nil(t, parent)
	assert.Equal(t, "1", rows[1].GetString("parent_id"))
	assert.Equal(t, "parent_id", rows[1].Keys()[len(rows[1].Keys())-1])
}

func TestFlatten_EmptyInput(t *testing.T) {
	assert.Empty(t, ByParentName(nil))
	assert.Empty(t, CleanHierarchy(nil))
	assert.Empty(t, ByParentID(nil))
}

func TestHierarchy_JSONKeepsSubcategoriesShape(t *testing.T) {
	cleaned := CleanHierarchy(tree(t, `{"id":1,"title":"Root"}`))

	out, err := json.Marshal(cleaned)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"title":"Root","urlTitle":"","description":"","showOnHomepage":false,"showOnMenu":false,"priority":0,"imgSrc":"","subcategories":[]}]`, string(out))
}
