package models

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for _, c := range []Category{CategoryCentral, CategoryDegree, CategoryInternal, CategoryExternal, CategoryTrack} {
		got, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseCategory("degree-track")
	require.NoError(t, err)
	assert.Equal(t, CategoryTrack, got)

	_, err = ParseCategory("partner")
	assert.Error(t, err)
}

func TestCategoryJSON(t *testing.T) {
	b, err := json.Marshal(Link{Source: "central", Target: "degree-0", Category: CategoryDegree})
	require.NoError(t, err)
	assert.JSONEq(t, `{"source":"central","target":"degree-0","category":"degree"}`, string(b))

	var l Link
	require.NoError(t, json.Unmarshal([]byte(`{"source":"a","target":"b","category":"external"}`), &l))
	assert.Equal(t, CategoryExternal, l.Category)
}

func TestDepartmentDecode(t *testing.T) {
	doc := `{
		"departments": [{
			"id": "theatre",
			"name": "Theatre",
			"degrees": [
				"Art BFA",
				{"name": "Theatre BFA", "tracks": ["Acting Track", "Design Track"]},
				{"name": "Music BM", "tracks": []}
			],
			"internalPartners": ["CHDR"],
			"externalPartners": [],
			"highlights": [
				"Plain highlight",
				{"title": "Gallery", "url": "https://example.edu/gallery"},
				{"name": "Lab", "url": "https://example.edu/lab"}
			]
		}]
	}`

	var ds Dataset
	require.NoError(t, json.Unmarshal([]byte(doc), &ds))
	require.Len(t, ds.Departments, 1)

	d := ds.Departments[0]
	assert.Equal(t, DegreeList{
		"Art BFA",
		"Theatre BFA: Acting Track",
		"Theatre BFA: Design Track",
		"Music BM",
	}, d.Degrees)
	assert.Equal(t, []Highlight{
		{Title: "Plain highlight"},
		{Title: "Gallery", URL: "https://example.edu/gallery"},
		{Title: "Lab", URL: "https://example.edu/lab"},
	}, d.Highlights)
}

func TestNodeZoomAndPin(t *testing.T) {
	n := NewNode("degree-0", "Art BFA", CategoryDegree)
	assert.Equal(t, RadiusDegree, n.Radius)

	n.ApplyZoom(1.4)
	assert.InDelta(t, 28.0, n.Radius, 1e-9)
	assert.Equal(t, RadiusDegree, n.BaseRadius)

	n.VX = 3
	n.Pin(10, 20)
	assert.True(t, n.Fixed)
	assert.Equal(t, 10.0, n.X)
	assert.Zero(t, n.VX)
	n.Unpin()
	assert.False(t, n.Fixed)
}

func TestDatasetQueries(t *testing.T) {
	ds := NewDataset("test", []Department{{ID: "b", Name: "Beta"}, {ID: "a", Name: "Alpha"}})
	assert.NotEmpty(t, ds.ID)

	d, ok := ds.FindDepartment("a")
	require.True(t, ok)
	assert.Equal(t, "Alpha", d.Name)

	_, ok = ds.FindDepartment("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"b", "a"}, ds.DepartmentIDs())
	assert.Equal(t, "Alpha", ds.SortedDepartments()[0].Name)
}

func TestIsComplex(t *testing.T) {
	d := Department{}
	for range 21 {
		d.InternalPartners = append(d.InternalPartners, "p")
	}
	assert.True(t, d.IsComplex())
	d.InternalPartners = d.InternalPartners[:20]
	assert.False(t, d.IsComplex())
}
