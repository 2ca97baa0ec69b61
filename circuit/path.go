package circuit

import (
	"fmt"

	"github.com/TFMV/neongraph/geom"
)

// Edge is the canvas side a path enters from.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

// String returns the side name.
func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeRight:
		return "right"
	case EdgeBottom:
		return "bottom"
	case EdgeLeft:
		return "left"
	}
	return fmt.Sprintf("edge(%d)", int(e))
}

// Path is one circuit trace: a straight leg from off-screen followed by a
// leg that bends onto the title box.
type Path struct {
	ID          string
	Edge        Edge
	Start       geom.Point
	StraightEnd geom.Point
	End         geom.Point
	Progress    float64
	Color       string
	Width       float64
	Glow        float64
	Branches    []*Branch
}

// Branch is a short straight trace sprouting from a path's straight leg.
// It starts growing once the parent's progress reaches Threshold.
type Branch struct {
	ID        string
	Start     geom.Point
	End       geom.Point
	Progress  float64
	Color     string
	Width     float64
	Glow      float64
	Threshold float64
}

// Segments returns the straight leg and the bend.
func (p *Path) Segments() []geom.Segment {
	return []geom.Segment{
		{A: p.Start, B: p.StraightEnd},
		{A: p.StraightEnd, B: p.End},
	}
}

// StraightLength returns the length of the straight leg.
func (p *Path) StraightLength() float64 {
	return geom.Distance(p.Start, p.StraightEnd)
}

// TotalLength returns the length of both legs.
func (p *Path) TotalLength() float64 {
	return geom.PolylineLength(p.Start, p.StraightEnd, p.End)
}

// Split returns the progress value at which the straight leg ends.
func (p *Path) Split() float64 {
	total := p.TotalLength()
	if total == 0 {
		return 1
	}
	return p.StraightLength() / total
}

// Visible returns the polyline drawn at the current progress.
func (p *Path) Visible() []geom.Point {
	split := p.Split()
	if p.Progress <= split {
		t := 0.0
		if split > 0 {
			t = p.Progress / split
		}
		return []geom.Point{p.Start, geom.Lerp(p.Start, p.StraightEnd, t)}
	}
	t := (p.Progress - split) / (1 - split)
	return []geom.Point{p.Start, p.StraightEnd, geom.Lerp(p.StraightEnd, p.End, t)}
}

// Head returns the growing tip of the path.
func (p *Path) Head() geom.Point {
	pts := p.Visible()
	return pts[len(pts)-1]
}

// Complete reports whether the path and all its branches are fully drawn.
func (p *Path) Complete() bool {
	if p.Progress < 1 {
		return false
	}
	for _, b := range p.Branches {
		if b.Progress < 1 {
			return false
		}
	}
	return true
}

// Segments returns the single branch segment.
func (b *Branch) Segments() []geom.Segment {
	return []geom.Segment{{A: b.Start, B: b.End}}
}

// Head returns the growing tip of the branch.
func (b *Branch) Head() geom.Point {
	return geom.Lerp(b.Start, b.End, b.Progress)
}

// Active reports whether the branch may grow given its parent's progress.
func (b *Branch) Active(parentProgress float64) bool {
	return parentProgress >= b.Threshold
}

// Intersection is a lingering glow where two paths cross.
type Intersection struct {
	ID        string
	Pos       geom.Point
	Intensity float64
	Radius    float64
	MaxRadius float64
	Color     string
	Paths     [2]string
}

// Pulse is a quick expanding ring spawned with an intersection.
type Pulse struct {
	ID        string
	Pos       geom.Point
	Radius    float64
	MaxRadius float64
	Speed     float64
	Intensity float64
	Color     string
}
