package physics

import (
	"math"

	"github.com/TFMV/neongraph/models"
)

// ManyBody makes every pair of nodes attract (positive strength) or repel
// (negative strength) with a force that falls off with distance.
type ManyBody struct {
	Strength    NodeFunc
	DistanceMin float64
	DistanceMax float64

	nodes     []*models.Node
	strengths []float64
}

// NewManyBody creates a many-body force.
func NewManyBody(strength NodeFunc, distanceMax float64) *ManyBody {
	return &ManyBody{Strength: strength, DistanceMin: 1, DistanceMax: distanceMax}
}

// Initialize caches per-node strengths.
func (f *ManyBody) Initialize(nodes []*models.Node) {
	f.nodes = nodes
	f.strengths = make([]float64, len(nodes))
	for i, n := range nodes {
		f.strengths[i] = f.Strength(n)
	}
}

// Apply accumulates the pairwise contributions into node velocities.
func (f *ManyBody) Apply(alpha float64) {
	minSq := f.DistanceMin * f.DistanceMin
	maxSq := math.Inf(1)
	if f.DistanceMax > 0 {
		maxSq = f.DistanceMax * f.DistanceMax
	}

	for i, node := range f.nodes {
		for j, other := range f.nodes {
			if i == j {
				continue
			}
			dx := other.X - node.X
			dy := other.Y - node.Y
			l := dx*dx + dy*dy
			if l >= maxSq {
				continue
			}
			// Coincident nodes get pushed apart in a stable direction.
			if dx == 0 {
				dx = jiggle(i, j)
				l += dx * dx
			}
			if dy == 0 {
				dy = jiggle(j, i)
				l += dy * dy
			}
			if l < minSq {
				l = math.Sqrt(minSq * l)
			}
			w := f.strengths[j] * alpha / l
			node.VX += dx * w
			node.VY += dy * w
		}
	}
}

// Link pulls linked nodes toward a target distance.
type Link struct {
	Links    []models.Link
	Distance float64
	Strength float64

	resolved []resolvedLink
}

type resolvedLink struct {
	source, target *models.Node
	bias           float64
}

// NewLink creates a link force over the given links.
func NewLink(links []models.Link, distance, strength float64) *Link {
	return &Link{Links: links, Distance: distance, Strength: strength}
}

// SetLinks replaces the link list; nodes are resolved on the next
// Initialize.
func (f *Link) SetLinks(links []models.Link, nodes []*models.Node) {
	f.Links = links
	f.Initialize(nodes)
}

// Initialize resolves link endpoints. Links whose endpoints are not
// simulated are ignored.
func (f *Link) Initialize(nodes []*models.Node) {
	byID := make(map[string]*models.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	count := make(map[string]int)
	for _, l := range f.Links {
		if byID[l.Source] != nil && byID[l.Target] != nil {
			count[l.Source]++
			count[l.Target]++
		}
	}

	f.resolved = f.resolved[:0]
	for _, l := range f.Links {
		src, dst := byID[l.Source], byID[l.Target]
		if src == nil || dst == nil {
			continue
		}
		cs, ct := float64(count[l.Source]), float64(count[l.Target])
		f.resolved = append(f.resolved, resolvedLink{
			source: src,
			target: dst,
			bias:   cs / (cs + ct),
		})
	}
}

// Apply moves each link's endpoints toward the target distance, weighting
// the correction toward the less connected endpoint.
func (f *Link) Apply(alpha float64) {
	for i, l := range f.resolved {
		dx := l.target.X + l.target.VX - l.source.X - l.source.VX
		dy := l.target.Y + l.target.VY - l.source.Y - l.source.VY
		if dx == 0 {
			dx = jiggle(i, 0)
		}
		if dy == 0 {
			dy = jiggle(0, i)
		}
		d := math.Sqrt(dx*dx + dy*dy)
		k := (d - f.Distance) / d * alpha * f.Strength
		dx *= k
		dy *= k

		l.target.VX -= dx * l.bias
		l.target.VY -= dy * l.bias
		l.source.VX += dx * (1 - l.bias)
		l.source.VY += dy * (1 - l.bias)
	}
}

// Collide keeps node circles from overlapping.
type Collide struct {
	Radius   NodeFunc
	Strength float64

	nodes []*models.Node
	radii []float64
}

// NewCollide creates a collision force.
func NewCollide(radius NodeFunc, strength float64) *Collide {
	return &Collide{Radius: radius, Strength: strength}
}

// Initialize caches per-node radii.
func (f *Collide) Initialize(nodes []*models.Node) {
	f.nodes = nodes
	f.radii = make([]float64, len(nodes))
	for i, n := range nodes {
		f.radii[i] = f.Radius(n)
	}
}

// Apply separates overlapping pairs, moving the smaller node further.
func (f *Collide) Apply(float64) {
	for i, node := range f.nodes {
		ri := f.radii[i]
		ri2 := ri * ri
		xi := node.X + node.VX
		yi := node.Y + node.VY
		for j := i + 1; j < len(f.nodes); j++ {
			other := f.nodes[j]
			rj := f.radii[j]
			r := ri + rj
			dx := xi - other.X - other.VX
			dy := yi - other.Y - other.VY
			l := dx*dx + dy*dy
			if l >= r*r {
				continue
			}
			if dx == 0 {
				dx = jiggle(i, j)
				l += dx * dx
			}
			if dy == 0 {
				dy = jiggle(j, i)
				l += dy * dy
			}
			l = math.Sqrt(l)
			k := (r - l) / l * f.Strength
			dx *= k
			dy *= k
			share := (rj * rj) / (ri2 + rj*rj)
			node.VX += dx * share
			node.VY += dy * share
			other.VX -= dx * (1 - share)
			other.VY -= dy * (1 - share)
		}
	}
}

// Radial pulls each node toward a circle of per-node radius around a center.
type Radial struct {
	Radius   NodeFunc
	X, Y     float64
	Strength float64

	nodes []*models.Node
	radii []float64
}

// NewRadial creates a radial force centered on (x, y).
func NewRadial(radius NodeFunc, x, y, strength float64) *Radial {
	return &Radial{Radius: radius, X: x, Y: y, Strength: strength}
}

// Initialize caches per-node target radii.
func (f *Radial) Initialize(nodes []*models.Node) {
	f.nodes = nodes
	f.radii = make([]float64, len(nodes))
	for i, n := range nodes {
		f.radii[i] = f.Radius(n)
	}
}

// Apply nudges nodes toward their target ring.
func (f *Radial) Apply(alpha float64) {
	for i, node := range f.nodes {
		dx := node.X - f.X
		if dx == 0 {
			dx = 1e-6
		}
		dy := node.Y - f.Y
		r := math.Sqrt(dx*dx + dy*dy)
		k := (f.radii[i] - r) * f.Strength * alpha / r
		node.VX += dx * k
		node.VY += dy * k
	}
}

// Center translates all nodes so their mean position drifts toward (X, Y).
type Center struct {
	X, Y     float64
	Strength float64

	nodes []*models.Node
}

// NewCenter creates a centering force.
func NewCenter(x, y, strength float64) *Center {
	return &Center{X: x, Y: y, Strength: strength}
}

// Initialize records the node set.
func (f *Center) Initialize(nodes []*models.Node) {
	f.nodes = nodes
}

// Apply shifts positions directly; it does not touch velocities.
func (f *Center) Apply(float64) {
	if len(f.nodes) == 0 {
		return
	}
	var sx, sy float64
	for _, n := range f.nodes {
		sx += n.X
		sy += n.Y
	}
	n := float64(len(f.nodes))
	sx = (sx/n - f.X) * f.Strength
	sy = (sy/n - f.Y) * f.Strength
	for _, node := range f.nodes {
		node.X -= sx
		node.Y -= sy
	}
}

// LegendAvoid pushes nodes out of the reserved legend corner in the bottom
// right of the canvas.
type LegendAvoid struct {
	Width, Height float64
	LegendWidth   float64
	LegendHeight  float64
	Reach         float64

	nodes []*models.Node
}

// NewLegendAvoid creates the legend-corner force for a canvas.
func NewLegendAvoid(width, height float64) *LegendAvoid {
	return &LegendAvoid{
		Width:        width,
		Height:       height,
		LegendWidth:  280,
		LegendHeight: 200,
		Reach:        100,
	}
}

// Initialize records the node set.
func (f *LegendAvoid) Initialize(nodes []*models.Node) {
	f.nodes = nodes
}

// Apply pushes nodes inside the corner back toward its top-left vertex,
// harder the closer they are to it.
func (f *LegendAvoid) Apply(alpha float64) {
	left := f.Width - f.LegendWidth
	top := f.Height - f.LegendHeight
	for _, n := range f.nodes {
		if n.X <= left || n.Y <= top {
			continue
		}
		dx := n.X - left
		dy := n.Y - top
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist >= f.Reach {
			continue
		}
		push := (f.Reach - dist) / f.Reach
		n.VX -= dx * push * alpha * 2
		n.VY -= dy * push * alpha * 2
	}
}

// Bounds keeps nodes at least Padding away from the canvas edges.
type Bounds struct {
	Width, Height float64
	Padding       float64

	nodes []*models.Node
}

// NewBounds creates a containment force for a canvas.
func NewBounds(width, height, padding float64) *Bounds {
	return &Bounds{Width: width, Height: height, Padding: padding}
}

// Initialize records the node set.
func (f *Bounds) Initialize(nodes []*models.Node) {
	f.nodes = nodes
}

// Apply pulls escaped nodes back inside the padded canvas.
func (f *Bounds) Apply(alpha float64) {
	p := f.Padding
	for _, n := range f.nodes {
		switch {
		case n.X < p:
			n.VX += (p - n.X) * alpha
		case n.X > f.Width-p:
			n.VX -= (n.X - (f.Width - p)) * alpha
		}
		switch {
		case n.Y < p:
			n.VY += (p - n.Y) * alpha
		case n.Y > f.Height-p:
			n.VY -= (n.Y - (f.Height - p)) * alpha
		}
	}
}
