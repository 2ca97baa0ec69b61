package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Base radii per category, before zoom.
const (
	RadiusCentral  = 30.0
	RadiusDegree   = 20.0
	RadiusInternal = 18.0
	RadiusExternal = 16.0
	RadiusTrack    = 10.0
)

// ComplexThreshold is the number of degrees and partners above which a
// department is drawn with smaller labels.
const ComplexThreshold = 20

// BaseRadius returns the unzoomed radius of a node of the given category.
func BaseRadius(c Category) float64 {
	switch c {
	case CategoryCentral:
		return RadiusCentral
	case CategoryDegree:
		return RadiusDegree
	case CategoryInternal:
		return RadiusInternal
	case CategoryExternal:
		return RadiusExternal
	case CategoryTrack:
		return RadiusTrack
	}
	return RadiusTrack
}

// NewNode creates a node with the base radius of its category.
func NewNode(id, name string, category Category) *Node {
	r := BaseRadius(category)
	return &Node{
		ID:         id,
		Name:       name,
		Category:   category,
		Radius:     r,
		BaseRadius: r,
	}
}

// NewDataset stamps a freshly loaded department list with an id and load time.
func NewDataset(source string, departments []Department) *Dataset {
	return &Dataset{
		ID:          uuid.New().String(),
		Source:      source,
		LoadedAt:    time.Now(),
		Departments: departments,
	}
}

// SetPosition moves the node and clears its velocity.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	n.VX = 0
	n.VY = 0
}

// Pin fixes the node at (x, y) so the simulation no longer moves it.
func (n *Node) Pin(x, y float64) {
	n.Fixed = true
	n.FX = x
	n.FY = y
	n.SetPosition(x, y)
}

// Unpin releases a pinned node back to the simulation.
func (n *Node) Unpin() {
	n.Fixed = false
}

// ApplyZoom rescales the node radius from its base radius.
func (n *Node) ApplyZoom(zoom float64) {
	n.Radius = n.BaseRadius * zoom
}

// DistanceTo returns the distance from the node center to (x, y).
func (n *Node) DistanceTo(x, y float64) float64 {
	return math.Hypot(n.X-x, n.Y-y)
}

// HasTracks reports whether a degree node carries track names.
func (n *Node) HasTracks() bool {
	return n.Category == CategoryDegree && len(n.Tracks) > 0
}

// EntryCount returns the number of degrees and partners of the department.
func (d *Department) EntryCount() int {
	return len(d.Degrees) + len(d.InternalPartners) + len(d.ExternalPartners)
}

// IsComplex reports whether the department has more entries than fit
// comfortably at the default label size.
func (d *Department) IsComplex() bool {
	return d.EntryCount() > ComplexThreshold
}
