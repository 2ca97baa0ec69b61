// Package graph keeps the topology of a partnership graph: which nodes
// exist, how they are linked, and which links are live for a given set of
// simulated nodes.
package graph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/TFMV/neongraph/models"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph is a directed graph of models.Node keyed by node id. It is safe for
// concurrent use.
type Graph struct {
	mu    sync.Mutex
	g     *simple.DirectedGraph
	ids   map[string]int64
	nodes map[int64]*models.Node
	seq   map[string]int
	next  int
	links []models.Link
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		g:     simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		nodes: make(map[int64]*models.Node),
		seq:   make(map[string]int),
	}
}

// AddNode inserts a node. Node ids must be unique.
func (g *Graph) AddNode(n *models.Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.ids[n.ID]; exists {
		return fmt.Errorf("node %q already exists", n.ID)
	}
	gn := g.g.NewNode()
	g.g.AddNode(gn)
	g.ids[n.ID] = gn.ID()
	g.nodes[gn.ID()] = n
	g.seq[n.ID] = g.next
	g.next++
	return nil
}

// AddLink connects two existing nodes.
func (g *Graph) AddLink(l models.Link) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	from, ok := g.ids[l.Source]
	if !ok {
		return fmt.Errorf("source node %q not found", l.Source)
	}
	to, ok := g.ids[l.Target]
	if !ok {
		return fmt.Errorf("target node %q not found", l.Target)
	}
	if from == to {
		return fmt.Errorf("self link on %q", l.Source)
	}
	if g.g.HasEdgeFromTo(from, to) {
		return fmt.Errorf("link %q -> %q already exists", l.Source, l.Target)
	}
	g.g.SetEdge(g.g.NewEdge(g.g.Node(from), g.g.Node(to)))
	g.links = append(g.links, l)
	return nil
}

// RemoveNode deletes a node and every link touching it.
func (g *Graph) RemoveNode(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	gid, ok := g.ids[id]
	if !ok {
		return
	}
	g.g.RemoveNode(gid)
	delete(g.ids, id)
	delete(g.nodes, gid)
	delete(g.seq, id)

	kept := g.links[:0]
	for _, l := range g.links {
		if l.Source != id && l.Target != id {
			kept = append(kept, l)
		}
	}
	g.links = kept
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *models.Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	gid, ok := g.ids[id]
	if !ok {
		return nil
	}
	return g.nodes[gid]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.ids)
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*models.Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*models.Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	g.sortLocked(out)
	return out
}

// Links returns every link in insertion order.
func (g *Graph) Links() []models.Link {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.Link(nil), g.links...)
}

// LinksAmong returns the links whose endpoints both satisfy active.
func (g *Graph) LinksAmong(active func(id string) bool) []models.Link {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []models.Link
	for _, l := range g.links {
		if active(l.Source) && active(l.Target) {
			out = append(out, l)
		}
	}
	return out
}

// Children returns the nodes linked from id, in insertion order.
func (g *Graph) Children(id string) []*models.Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	gid, ok := g.ids[id]
	if !ok {
		return nil
	}
	var out []*models.Node
	for _, gn := range gonum.NodesOf(g.g.From(gid)) {
		out = append(out, g.nodes[gn.ID()])
	}
	g.sortLocked(out)
	return out
}

// Degree returns the number of links touching id.
func (g *Graph) Degree(id string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	gid, ok := g.ids[id]
	if !ok {
		return 0
	}
	return g.g.From(gid).Len() + g.g.To(gid).Len()
}

func (g *Graph) sortLocked(nodes []*models.Node) {
	sort.Slice(nodes, func(i, j int) bool {
		return g.seq[nodes[i].ID] < g.seq[nodes[j].ID]
	})
}
