package circuit

import (
	"time"

	"github.com/TFMV/neongraph/geom"
)

// Frame is an immutable snapshot of the intro, ready for rendering.
type Frame struct {
	Width         float64             `json:"width"`
	Height        float64             `json:"height"`
	Elapsed       time.Duration       `json:"elapsed"`
	Grid          float64             `json:"grid"`
	Running       bool                `json:"running"`
	Target        geom.Box            `json:"target"`
	Paths         []PathFrame         `json:"paths"`
	Intersections []IntersectionFrame `json:"intersections"`
	Pulses        []PulseFrame        `json:"pulses"`
}

// PathFrame is the drawn portion of one path.
type PathFrame struct {
	ID       string        `json:"id"`
	Color    string        `json:"color"`
	Width    float64       `json:"width"`
	Glow     float64       `json:"glow"`
	Progress float64       `json:"progress"`
	Points   []geom.Point  `json:"points"`
	Branches []BranchFrame `json:"branches,omitempty"`
}

// BranchFrame is the drawn portion of one branch. Branches that have not
// started growing are omitted.
type BranchFrame struct {
	ID       string     `json:"id"`
	Color    string     `json:"color"`
	Width    float64    `json:"width"`
	Glow     float64    `json:"glow"`
	Progress float64    `json:"progress"`
	From     geom.Point `json:"from"`
	To       geom.Point `json:"to"`
}

type IntersectionFrame struct {
	Pos       geom.Point `json:"pos"`
	Radius    float64    `json:"radius"`
	Intensity float64    `json:"intensity"`
	Color     string     `json:"color"`
}

type PulseFrame struct {
	Pos       geom.Point `json:"pos"`
	Radius    float64    `json:"radius"`
	Intensity float64    `json:"intensity"`
	Color     string     `json:"color"`
}

// Snapshot copies the generator state into a Frame.
func (g *Generator) Snapshot() Frame {
	f := Frame{
		Width:  g.width,
		Height: g.height,
		Grid:   GridSize,
		Target: g.Target(),
		Paths:  make([]PathFrame, 0, len(g.paths)),
	}
	for _, p := range g.paths {
		if p.Progress <= 0 {
			continue
		}
		pf := PathFrame{
			ID:       p.ID,
			Color:    p.Color,
			Width:    p.Width,
			Glow:     p.Glow,
			Progress: p.Progress,
			Points:   p.Visible(),
		}
		for _, b := range p.Branches {
			if b.Progress <= 0 {
				continue
			}
			pf.Branches = append(pf.Branches, BranchFrame{
				ID:       b.ID,
				Color:    b.Color,
				Width:    b.Width,
				Glow:     b.Glow,
				Progress: b.Progress,
				From:     b.Start,
				To:       b.Head(),
			})
		}
		f.Paths = append(f.Paths, pf)
	}
	for _, in := range g.intersections {
		f.Intersections = append(f.Intersections, IntersectionFrame{
			Pos: in.Pos, Radius: in.Radius, Intensity: in.Intensity, Color: in.Color,
		})
	}
	for _, pl := range g.pulses {
		f.Pulses = append(f.Pulses, PulseFrame{
			Pos: pl.Pos, Radius: pl.Radius, Intensity: pl.Intensity, Color: pl.Color,
		})
	}
	return f
}
