// Package circuit generates the neon circuit-trace intro: paths that grow in
// from the canvas edges toward the title box, optional branches, and glows
// and pulses where paths cross.
package circuit

import (
	"math"
	"math/rand"
	"time"

	"github.com/TFMV/neongraph/geom"
	"github.com/TFMV/neongraph/idgen"
)

// Tuning constants for path generation and per-tick animation.
const (
	// GridSize is the spacing of the background dot grid and the unit for
	// off-screen starts, stop distances and branch lengths.
	GridSize = 30.0

	// PathStep is the progress a path gains per tick.
	PathStep = 0.02
	// BranchStep is the progress a branch gains per tick once active.
	BranchStep = 0.03

	// BranchChance is the probability of a path getting one branch.
	BranchChance = 0.4

	IntersectionMaxRadius = 15.0
	IntersectionGrowth    = 0.5
	IntersectionDecay     = 0.995

	PulseMaxRadius = 30.0
	PulseSpeed     = 2.0
	PulseDecay     = 0.95

	// FadeEpsilon is the intensity below which glows and pulses are dropped.
	FadeEpsilon = 0.01
)

// Palette is the set of neon trace colors.
var Palette = []string{"#ffff00", "#00ff80", "#80ff00", "#8000ff", "#ff0080"}

// Generator owns every path, intersection and pulse of one intro. It is not
// safe for concurrent use; Animation serializes access.
type Generator struct {
	width, height float64
	target        geom.Box
	hasTarget     bool
	rng           *rand.Rand

	paths         []*Path
	intersections []*Intersection
	pulses        []*Pulse
	edgeCounter   int
}

// NewGenerator creates a generator for a canvas of the given size.
func NewGenerator(width, height float64, seed int64) *Generator {
	return &Generator{
		width:  width,
		height: height,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Resize changes the canvas size used for new paths.
func (g *Generator) Resize(width, height float64) {
	g.width = width
	g.height = height
}

// Size returns the canvas size.
func (g *Generator) Size() (float64, float64) {
	return g.width, g.height
}

// SetTarget sets the title box that paths converge on. The box is clamped
// to the canvas.
func (g *Generator) SetTarget(box geom.Box) {
	box = box.Canon()
	box.Min.X = math.Max(0, box.Min.X)
	box.Min.Y = math.Max(0, box.Min.Y)
	box.Max.X = math.Min(g.width, box.Max.X)
	box.Max.Y = math.Min(g.height, box.Max.Y)
	g.target = box
	g.hasTarget = !box.Empty()
}

// ClearTarget reverts to the centered fallback box.
func (g *Generator) ClearTarget() {
	g.hasTarget = false
}

// Target returns the box paths converge on.
func (g *Generator) Target() geom.Box {
	if g.hasTarget {
		return g.target
	}
	return FallbackTarget(g.width, g.height)
}

// FallbackTarget is the centered band used when no title box is known.
func FallbackTarget(width, height float64) geom.Box {
	return geom.Rect(width*0.15, height*0.4, width*0.85, height*0.6)
}

// Paths returns the live paths in spawn order.
func (g *Generator) Paths() []*Path { return g.paths }

// Intersections returns the live intersection glows.
func (g *Generator) Intersections() []*Intersection { return g.intersections }

// Pulses returns the live pulses.
func (g *Generator) Pulses() []*Pulse { return g.pulses }

// Count returns the number of paths spawned so far.
func (g *Generator) Count() int { return len(g.paths) }

// SpawnNext spawns a path from the next edge in round-robin order.
func (g *Generator) SpawnNext() *Path {
	edge := Edge(g.edgeCounter % 4)
	g.edgeCounter++
	return g.SpawnPath(edge)
}

// SpawnPath creates a path entering from edge, attaches an optional branch,
// and records intersections with every existing path.
func (g *Generator) SpawnPath(edge Edge) *Path {
	box := g.Target()
	straight := (0.2 + g.rng.Float64()*0.2) * math.Min(g.width, g.height)
	offscreen := GridSize * 2
	stop := GridSize * 4

	var start, straightEnd, end geom.Point
	switch edge {
	case EdgeTop:
		start = geom.Pt(g.rng.Float64()*g.width, -offscreen)
		straightEnd = geom.Pt(start.X, math.Min(start.Y+straight, box.Min.Y-stop))
		end = geom.Pt(box.Min.X+g.rng.Float64()*(box.Max.X-box.Min.X), box.Min.Y)
	case EdgeRight:
		start = geom.Pt(g.width+offscreen, g.rng.Float64()*g.height)
		straightEnd = geom.Pt(math.Max(start.X-straight, box.Max.X+stop), start.Y)
		end = geom.Pt(box.Max.X, box.Min.Y+g.rng.Float64()*(box.Max.Y-box.Min.Y))
	case EdgeBottom:
		start = geom.Pt(g.rng.Float64()*g.width, g.height+offscreen)
		straightEnd = geom.Pt(start.X, math.Max(start.Y-straight, box.Max.Y+stop))
		end = geom.Pt(box.Min.X+g.rng.Float64()*(box.Max.X-box.Min.X), box.Max.Y)
	default:
		edge = EdgeLeft
		start = geom.Pt(-offscreen, g.rng.Float64()*g.height)
		straightEnd = geom.Pt(math.Min(start.X+straight, box.Min.X-stop), start.Y)
		end = geom.Pt(box.Min.X, box.Min.Y+g.rng.Float64()*(box.Max.Y-box.Min.Y))
	}

	width := 2.0
	if g.rng.Float64() < 0.3 {
		width = 3
	}

	p := &Path{
		ID:          idgen.MustGenerate(idgen.PrefixPath),
		Edge:        edge,
		Start:       start,
		StraightEnd: straightEnd,
		End:         end,
		Color:       Palette[g.rng.Intn(len(Palette))],
		Width:       width,
		Glow:        0.5 + g.rng.Float64()*0.5,
	}
	if g.rng.Float64() < BranchChance {
		p.Branches = append(p.Branches, g.newBranch(p))
	}

	g.paths = append(g.paths, p)
	g.recordIntersections(p)
	return p
}

// newBranch places a branch 50-80% along the straight leg, angled 30
// degrees to either side and 2-4 grid units long.
func (g *Generator) newBranch(parent *Path) *Branch {
	frac := 0.5 + g.rng.Float64()*0.3
	start := geom.Lerp(parent.Start, parent.StraightEnd, frac)

	angle := geom.Angle(parent.Start, parent.StraightEnd)
	if g.rng.Float64() < 0.5 {
		angle += math.Pi / 6
	} else {
		angle -= math.Pi / 6
	}
	length := GridSize * float64(2+g.rng.Intn(3))

	threshold := 0.0
	if total := parent.TotalLength(); total > 0 {
		threshold = parent.StraightLength() * frac / total
	}

	return &Branch{
		ID:        idgen.MustGenerate(idgen.PrefixBranch),
		Start:     start,
		End:       geom.Polar(start, angle, length),
		Color:     parent.Color,
		Width:     math.Max(1, parent.Width-1),
		Glow:      parent.Glow * 0.7,
		Threshold: threshold,
	}
}

// recordIntersections adds one glow and one pulse for the first crossing
// between p and each earlier path.
func (g *Generator) recordIntersections(p *Path) {
	segs := p.Segments()
	for _, other := range g.paths {
		if other == p {
			continue
		}
		pos, ok := geom.FirstIntersection(segs, other.Segments())
		if !ok {
			continue
		}
		color := geom.BlendColors(p.Color, other.Color)
		g.intersections = append(g.intersections, &Intersection{
			ID:        idgen.MustGenerate(idgen.PrefixIntersection),
			Pos:       pos,
			Intensity: 1,
			MaxRadius: IntersectionMaxRadius,
			Color:     color,
			Paths:     [2]string{p.ID, other.ID},
		})
		g.pulses = append(g.pulses, &Pulse{
			ID:        idgen.MustGenerate(idgen.PrefixPulse),
			Pos:       pos,
			MaxRadius: PulseMaxRadius,
			Speed:     PulseSpeed,
			Intensity: 1,
			Color:     color,
		})
	}
}

// Update advances every path, branch, glow and pulse by one tick.
func (g *Generator) Update() {
	for _, p := range g.paths {
		if p.Progress < 1 {
			p.Progress = math.Min(1, p.Progress+PathStep)
		}
		for _, b := range p.Branches {
			if b.Active(p.Progress) && b.Progress < 1 {
				b.Progress = math.Min(1, b.Progress+BranchStep)
			}
		}
	}

	glows := g.intersections[:0]
	for _, in := range g.intersections {
		in.Radius = math.Min(in.Radius+IntersectionGrowth, in.MaxRadius)
		in.Intensity *= IntersectionDecay
		if in.Intensity > FadeEpsilon {
			glows = append(glows, in)
		}
	}
	g.intersections = glows

	pulses := g.pulses[:0]
	for _, pl := range g.pulses {
		pl.Radius += pl.Speed
		pl.Intensity *= PulseDecay
		if pl.Intensity > FadeEpsilon && pl.Radius < pl.MaxRadius {
			pulses = append(pulses, pl)
		}
	}
	g.pulses = pulses
}

// ForceComplete draws every path and branch to the end at once.
func (g *Generator) ForceComplete() {
	for _, p := range g.paths {
		p.Progress = 1
		for _, b := range p.Branches {
			b.Progress = 1
		}
	}
}

// SpawnStage is one step of the spawn cadence: while fewer than Below paths
// exist, the next path follows after Delay.
type SpawnStage struct {
	Below int
	Delay time.Duration
}

// SpawnSchedule is an ordered list of stages.
type SpawnSchedule []SpawnStage

// DefaultSchedule spawns quickly at first and slows as the canvas fills.
var DefaultSchedule = SpawnSchedule{
	{Below: 15, Delay: 200 * time.Millisecond},
	{Below: 30, Delay: 500 * time.Millisecond},
	{Below: 40, Delay: time.Second},
}

// Delay returns the wait before the next spawn given the current path
// count, or false once the last stage is exhausted.
func (s SpawnSchedule) Delay(count int) (time.Duration, bool) {
	for _, stage := range s {
		if count < stage.Below {
			return stage.Delay, true
		}
	}
	return 0, false
}

// SpawnDelay applies DefaultSchedule.
func SpawnDelay(count int) (time.Duration, bool) {
	return DefaultSchedule.Delay(count)
}
