package graph

import (
	"testing"

	"github.com/TFMV/neongraph/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(nodes []*models.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func buildStar(t *testing.T) *Graph {
	t.Helper()
	g := New()
	require.NoError(t, g.AddNode(models.NewNode("central", "Dept", models.CategoryCentral)))
	for _, id := range []string{"degree-0", "internal-1", "external-2"} {
		require.NoError(t, g.AddNode(models.NewNode(id, id, models.CategoryDegree)))
		require.NoError(t, g.AddLink(models.Link{Source: "central", Target: id, Category: models.CategoryDegree}))
	}
	return g
}

func TestGraph_AddAndQuery(t *testing.T) {
	g := buildStar(t)

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, []string{"central", "degree-0", "internal-1", "external-2"}, ids(g.Nodes()))
	assert.Equal(t, []string{"degree-0", "internal-1", "external-2"}, ids(g.Children("central")))
	assert.Equal(t, 3, g.Degree("central"))
	assert.Equal(t, 1, g.Degree("degree-0"))
	assert.Nil(t, g.Node("missing"))
}

func TestGraph_Validation(t *testing.T) {
	g := buildStar(t)

	assert.Error(t, g.AddNode(models.NewNode("central", "dup", models.CategoryCentral)))
	assert.Error(t, g.AddLink(models.Link{Source: "nope", Target: "central"}))
	assert.Error(t, g.AddLink(models.Link{Source: "central", Target: "nope"}))
	assert.Error(t, g.AddLink(models.Link{Source: "central", Target: "central"}))
	assert.Error(t, g.AddLink(models.Link{Source: "central", Target: "degree-0"}))
}

func TestGraph_RemoveNodeDropsLinks(t *testing.T) {
	g := buildStar(t)
	require.NoError(t, g.AddNode(models.NewNode("track-degree-0-0", "Acting", models.CategoryTrack)))
	require.NoError(t, g.AddLink(models.Link{Source: "degree-0", Target: "track-degree-0-0", Category: models.CategoryTrack}))
	require.Len(t, g.Links(), 4)

	g.RemoveNode("track-degree-0-0")
	assert.Len(t, g.Links(), 3)
	assert.Empty(t, g.Children("degree-0"))

	// Removed ids can be reused.
	require.NoError(t, g.AddNode(models.NewNode("track-degree-0-0", "Acting", models.CategoryTrack)))
	assert.Equal(t, "track-degree-0-0", g.Nodes()[4].ID)
}

func TestGraph_LinksAmong(t *testing.T) {
	g := buildStar(t)
	active := map[string]bool{"central": true, "internal-1": true}

	links := g.LinksAmong(func(id string) bool { return active[id] })
	require.Len(t, links, 1)
	assert.Equal(t, "internal-1", links[0].Target)
}
