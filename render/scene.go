package render

import (
	"math"

	"github.com/TFMV/neongraph/models"
	"github.com/TFMV/neongraph/physics"
	"github.com/TFMV/neongraph/reveal"
)

// strokePass is one layer of a glowing line, drawn widest first.
type strokePass struct {
	WidthScale float64
	Alpha      float64
	White      bool
}

// tracePasses layers a circuit trace: a soft halo, the colored body and a
// white core.
var tracePasses = []strokePass{
	{WidthScale: 1.5, Alpha: 0.3},
	{WidthScale: 1.2, Alpha: 0.6},
	{WidthScale: 1.0, Alpha: 0.9},
	{WidthScale: 0.7, Alpha: 1, White: true},
}

// haloWidth is the extra stroke width standing in for a canvas shadow blur.
func haloWidth(width, glow float64) float64 {
	return width + glow*0.5
}

// nodeLabel is a wrapped label with its top-center anchor resolved.
type nodeLabel struct {
	Lines      []string
	X, Y       float64
	FontSize   float64
	LineHeight float64
	Opacity    float64
	Zoom       float64
}

// layoutLabels wraps and places the label of every drawn node.
func layoutLabels(f *reveal.Frame, faces *faceCache, width, height float64) ([]nodeLabel, error) {
	zoom := f.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	labels := make([]nodeLabel, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		size := FontSize(n.Category, f.NodeCount, f.Complex, zoom)
		face, err := faces.get(size)
		if err != nil {
			return nil, err
		}
		maxWidth := MaxLabelWidth(n.Category, f.Complex) * zoom
		lines := WrapLines(n.Name, maxWidth, FaceMeasurer{Face: face})
		lineHeight := size + LineSpacing
		pos := PlaceLabel(LabelBlock{
			NodeX:  n.X,
			NodeY:  n.Y,
			Radius: n.Radius,
			Width:  maxWidth,
			Height: float64(len(lines)) * lineHeight,
		}, width, height, zoom)
		labels = append(labels, nodeLabel{
			Lines:      lines,
			X:          pos.X,
			Y:          pos.Y,
			FontSize:   size,
			LineHeight: lineHeight,
			Opacity:    n.Opacity,
			Zoom:       zoom,
		})
	}
	return labels, nil
}

// legendRow is one category entry of the legend card.
type legendRow struct {
	Category    models.Category
	Label       string
	Color       string
	Enabled     bool
	Highlighted bool
}

func legendRows(f *reveal.Frame) []legendRow {
	enabled := make(map[models.Category]bool, len(f.Enabled))
	for _, c := range f.Enabled {
		enabled[c] = true
	}
	rows := make([]legendRow, 0, len(models.RevealOrder))
	for _, c := range models.RevealOrder {
		rows = append(rows, legendRow{
			Category:    c,
			Label:       c.Label(),
			Color:       NodeColor(c),
			Enabled:     enabled[c],
			Highlighted: f.Highlight != nil && *f.Highlight == c,
		})
	}
	return rows
}

// legendCard returns the card rectangle inside the reserved corner.
func legendCard(width, height float64) (x, y, w, h float64) {
	const inset = 20
	return width - LegendWidth + inset, height - LegendHeight + inset, LegendWidth - 2*inset, LegendHeight - 2*inset
}

// legendRowAlpha dims disabled categories.
func legendRowAlpha(r legendRow) float64 {
	if r.Enabled {
		return 1
	}
	return 0.35
}

// gridDots returns the dot positions of the intro grid.
func gridDots(width, height, spacing float64) [][2]float64 {
	if spacing <= 0 {
		return nil
	}
	var dots [][2]float64
	for x := 0.0; x <= width; x += spacing {
		for y := 0.0; y <= height; y += spacing {
			dots = append(dots, [2]float64{x, y})
		}
	}
	return dots
}

// gridAlpha modulates the base grid dot alpha with opensimplex noise.
func gridAlpha(noise *physics.Scatter, x, y, t, shimmer float64) float64 {
	const base = 0.1
	if noise == nil || shimmer <= 0 {
		return base
	}
	shimmer = clamp01(shimmer)
	return base * (1 - shimmer + 2*shimmer*noise.Shimmer(x, y, t))
}

// linkStroke returns the width and halo of a link at time t and zoom.
func linkStroke(c models.Category, t, zoom float64) (width, glow float64) {
	p := LinkPulseFor(c)
	off := p.At(t)
	return math.Max(0.5, (p.BaseWidth+off)*zoom), (p.BaseGlow + off) * zoom
}
