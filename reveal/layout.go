package reveal

import (
	"math"

	"github.com/TFMV/neongraph/models"
	"github.com/TFMV/neongraph/physics"
)

// Zoom limits.
const (
	MinZoom  = 0.5
	MaxZoom  = 2.5
	ZoomStep = 0.2
)

// Layout constants.
const (
	WarmupTicks     = 50
	SpawnSpread     = 10.0
	TrackArcRadius  = 70.0
	HoverSlack      = 30.0
	RadialStrength  = 0.8
	PopStrength     = 1.2
	PopSettled      = 0.8
	RevealAlpha     = 0.7
	TrackAddAlpha   = 0.5
	TrackDropAlpha  = 0.3
	ReflowAlpha     = 0.3
	CollidePadding  = 60.0
	CollideStrength = 0.9
	LinkDistance    = 100.0
	LinkStrength    = 0.3
	CenterStrength  = 0.05
	ChargeCentral   = -300.0
	ChargeDefault   = -150.0
	ChargeMaxRange  = 250.0
	BoundsPadding   = 100.0
	TimeStep        = 0.033
)

// Force names registered on every session simulation.
const (
	ForceRadial      = "radial"
	ForceCharge      = "charge"
	ForceCollide     = "collide"
	ForceLink        = "link"
	ForceCenter      = "center"
	ForceLegendAvoid = "legendAvoid"
	ForceBounds      = "bounds"
	ForceRadialPop   = "radialPop"
)

// ringFraction places each category on a ring as a fraction of the
// outermost radius.
func ringFraction(c models.Category) float64 {
	switch c {
	case models.CategoryCentral:
		return 0
	case models.CategoryDegree:
		return 0.5
	case models.CategoryInternal:
		return 0.7
	case models.CategoryExternal:
		return 0.9
	case models.CategoryTrack:
		return 0.75
	}
	return 0.75
}

// ringRadius returns the radial target per node for a canvas and zoom.
func ringRadius(width, height, zoom float64) physics.NodeFunc {
	outer := math.Min(width, height) * 0.45 * zoom
	return func(n *models.Node) float64 {
		return outer * ringFraction(n.Category)
	}
}

func charge(n *models.Node) float64 {
	if n.Category == models.CategoryCentral {
		return ChargeCentral
	}
	return ChargeDefault
}

func collideRadius(zoom float64) physics.NodeFunc {
	return func(n *models.Node) float64 {
		return (n.Radius + CollidePadding) * zoom
	}
}

// newSimulation builds the layout over nodes with every standing force.
func newSimulation(nodes []*models.Node, links []models.Link, width, height, zoom float64) *physics.Simulation {
	cx, cy := width/2, height/2
	sim := physics.NewSimulation(nodes)
	sim.SetForce(ForceRadial, physics.NewRadial(ringRadius(width, height, zoom), cx, cy, RadialStrength)).
		SetForce(ForceCharge, physics.NewManyBody(charge, ChargeMaxRange)).
		SetForce(ForceCollide, physics.NewCollide(collideRadius(zoom), CollideStrength)).
		SetForce(ForceLink, physics.NewLink(links, LinkDistance, LinkStrength)).
		SetForce(ForceCenter, physics.NewCenter(cx, cy, CenterStrength)).
		SetForce(ForceLegendAvoid, physics.NewLegendAvoid(width, height)).
		SetForce(ForceBounds, physics.NewBounds(width, height, BoundsPadding)).
		SetAlphaDecay(physics.DefaultAlphaDecay).
		SetVelocityDecay(physics.DefaultVelocityDecay)
	return sim
}

// clampZoom keeps a zoom level in range, rounded to one decimal so repeated
// steps do not drift.
func clampZoom(z float64) float64 {
	z = math.Round(z*10) / 10
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// trackPositions lays n tracks on an arc above (x, y).
func trackPositions(x, y float64, n int) [][2]float64 {
	step := math.Pi / float64(n+1)
	start := -math.Pi/2 - step*float64(n)/2
	out := make([][2]float64, n)
	for i := range out {
		a := start + step*float64(i+1)
		out[i] = [2]float64{x + math.Cos(a)*TrackArcRadius, y + math.Sin(a)*TrackArcRadius}
	}
	return out
}
