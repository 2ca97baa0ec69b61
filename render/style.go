package render

import (
	"image/color"
	"math"

	"github.com/TFMV/neongraph/models"
	"github.com/lucasb-eyer/go-colorful"
)

// Legend corner reserved in the bottom right of the detail view.
const (
	LegendWidth  = 280.0
	LegendHeight = 200.0
)

// Label layout.
const (
	LabelGap     = 25.0 // below the node, before zoom
	LabelPadding = 10.0 // from canvas edges, before zoom
	LineSpacing  = 4.0
	LinkAlpha    = 0.8
)

// LinkPulse controls the breathing of a link's width and glow.
type LinkPulse struct {
	Frequency float64 `json:"frequency"`
	Amplitude float64 `json:"amplitude"`
	BaseWidth float64 `json:"base_width"`
	BaseGlow  float64 `json:"base_glow"`
}

// At returns the pulse offset at animation time t (seconds).
func (p LinkPulse) At(t float64) float64 {
	return math.Sin(t*p.Frequency) * p.Amplitude
}

// NodeColor returns the fill color for a node category.
func NodeColor(c models.Category) string {
	switch c {
	case models.CategoryCentral:
		return "#ff6600"
	case models.CategoryDegree:
		return "#00ffff"
	case models.CategoryInternal:
		return "#ffff00"
	case models.CategoryExternal:
		return "#ff00ff"
	case models.CategoryTrack:
		return "#80c0ff"
	}
	return "#ffffff"
}

// LinkColor returns the stroke color for a link category. Links never
// carry the central category; they fall back to the degree color.
func LinkColor(c models.Category) string {
	switch c {
	case models.CategoryInternal, models.CategoryExternal, models.CategoryTrack:
		return NodeColor(c)
	case models.CategoryCentral, models.CategoryDegree:
		return NodeColor(models.CategoryDegree)
	}
	return NodeColor(models.CategoryDegree)
}

// LinkPulseFor returns the pulse configuration for a link category.
func LinkPulseFor(c models.Category) LinkPulse {
	switch c {
	case models.CategoryTrack:
		return LinkPulse{Frequency: 2, Amplitude: 0.3, BaseWidth: 1.5, BaseGlow: 8}
	case models.CategoryInternal:
		return LinkPulse{Frequency: 1.8, Amplitude: 0.4, BaseWidth: 2, BaseGlow: 10}
	case models.CategoryExternal:
		return LinkPulse{Frequency: 1.5, Amplitude: 0.6, BaseWidth: 2.5, BaseGlow: 15}
	case models.CategoryCentral, models.CategoryDegree:
		return LinkPulse{Frequency: 1.5, Amplitude: 0.5, BaseWidth: 2, BaseGlow: 12}
	}
	return LinkPulse{Frequency: 1.5, Amplitude: 0.5, BaseWidth: 2, BaseGlow: 12}
}

// NodePulse returns the radius offset and glow size of a node at time t.
// The central node holds a steady glow.
func NodePulse(c models.Category, t float64) (dr, glow float64) {
	switch c {
	case models.CategoryCentral:
		return 0, 20
	case models.CategoryTrack:
		p := math.Sin(t*2) * 0.5
		return p, 8 + p
	case models.CategoryDegree, models.CategoryInternal, models.CategoryExternal:
		p := math.Sin(t*1.5) * 0.8
		return p, 12 + p
	}
	return 0, 15
}

// NodeStrokeWidth is the white outline width before zoom.
func NodeStrokeWidth(c models.Category) float64 {
	if c == models.CategoryTrack {
		return 1.5
	}
	return 2
}

// FontSize returns the label size for a node. Crowded graphs shrink the
// base size; complex departments shrink partner and degree labels further.
func FontSize(c models.Category, nodeCount int, complex bool, zoom float64) float64 {
	size := 22.0
	switch {
	case nodeCount > 30:
		size = 18
	case nodeCount > 20:
		size = 20
	}

	switch c {
	case models.CategoryCentral:
		size = 32
		if nodeCount > 30 {
			size = 28
		}
	case models.CategoryTrack:
		size = 16
	case models.CategoryDegree, models.CategoryInternal, models.CategoryExternal:
		if complex {
			size = 18
		}
	}
	return size * zoom
}

// MaxLabelWidth returns the wrap width for a node label before zoom.
func MaxLabelWidth(c models.Category, complex bool) float64 {
	switch c {
	case models.CategoryCentral:
		return 280
	case models.CategoryDegree:
		if complex {
			return 120
		}
		return 150
	case models.CategoryInternal, models.CategoryExternal:
		if complex {
			return 140
		}
		return 180
	case models.CategoryTrack:
		return 90
	}
	return 150
}

// CategoryStyle bundles the per-category drawing parameters.
type CategoryStyle struct {
	NodeColor string    `json:"node_color"`
	LinkColor string    `json:"link_color"`
	Pulse     LinkPulse `json:"pulse"`
	FontSize  float64   `json:"font_size"`
	MaxWidth  float64   `json:"max_width"`
}

// StylesFor resolves the style of every category for one frame.
func StylesFor(nodeCount int, complex bool, zoom float64) map[string]CategoryStyle {
	cats := []models.Category{
		models.CategoryCentral,
		models.CategoryDegree,
		models.CategoryInternal,
		models.CategoryExternal,
		models.CategoryTrack,
	}
	out := make(map[string]CategoryStyle, len(cats))
	for _, c := range cats {
		out[c.String()] = CategoryStyle{
			NodeColor: NodeColor(c),
			LinkColor: LinkColor(c),
			Pulse:     LinkPulseFor(c),
			FontSize:  FontSize(c, nodeCount, complex, zoom),
			MaxWidth:  MaxLabelWidth(c, complex) * zoom,
		}
	}
	return out
}

// withAlpha parses a hex color and applies alpha in [0, 1]. Unparseable
// colors render white.
func withAlpha(hex string, alpha float64) color.NRGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		c = colorful.Color{R: 1, G: 1, B: 1}
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp01(alpha) * 255))}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
