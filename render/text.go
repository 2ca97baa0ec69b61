package render

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/TFMV/neongraph/geom"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// Measurer reports the rendered size of a string. *gg.Context satisfies it
// once a font face is set.
type Measurer interface {
	MeasureString(s string) (w, h float64)
}

// WrapLines greedily packs the words of text into lines no wider than
// maxWidth. A word wider than maxWidth on its own stays on its own line.
func WrapLines(text string, maxWidth float64, m Measurer) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if w, _ := m.MeasureString(candidate); w > maxWidth && current != "" {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// FaceMeasurer measures strings with a font face.
type FaceMeasurer struct {
	Face font.Face
}

// MeasureString returns the advance width and line height of s.
func (m FaceMeasurer) MeasureString(s string) (float64, float64) {
	w := font.MeasureString(m.Face, s)
	return float64(w) / 64, float64(m.Face.Metrics().Height) / 64
}

var (
	boldOnce sync.Once
	boldFont *opentype.Font
	boldErr  error
)

func labelFont() (*opentype.Font, error) {
	boldOnce.Do(func() {
		boldFont, boldErr = opentype.Parse(gobold.TTF)
	})
	return boldFont, boldErr
}

// faceCache hands out bold label faces by size. Faces are not safe for
// concurrent use, so each render call owns its cache.
type faceCache struct {
	faces map[float64]font.Face
}

func newFaceCache() *faceCache {
	return &faceCache{faces: make(map[float64]font.Face)}
}

// get returns a face for size, rounded to half points.
func (c *faceCache) get(size float64) (font.Face, error) {
	size = math.Max(1, math.Round(size*2)/2)
	if f, ok := c.faces[size]; ok {
		return f, nil
	}
	fnt, err := labelFont()
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}
	f, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("label face %.1fpt: %w", size, err)
	}
	c.faces[size] = f
	return f, nil
}

func (c *faceCache) Close() {
	for _, f := range c.faces {
		f.Close()
	}
}

// LabelBlock describes a wrapped label hanging under its node.
type LabelBlock struct {
	NodeX, NodeY float64
	Radius       float64
	Width        float64 // wrap width
	Height       float64 // lines * line height
}

// PlaceLabel returns the top-center anchor of a label block. The block sits
// below its node, is kept inside the canvas, flips above the node near the
// bottom edge, and moves out of the legend corner.
func PlaceLabel(b LabelBlock, canvasW, canvasH, zoom float64) geom.Point {
	padding := LabelPadding * zoom
	x := b.NodeX
	y := b.NodeY + b.Radius + LabelGap*zoom

	if x+b.Width/2 > canvasW-padding {
		x = canvasW - padding - b.Width/2
	}
	if x-b.Width/2 < padding {
		x = padding + b.Width/2
	}
	if y+b.Height > canvasH-padding {
		y = b.NodeY - b.Radius - b.Height - 10
	}

	legendLeft := canvasW - LegendWidth
	legendTop := canvasH - LegendHeight
	if x+b.Width/2 > legendLeft && y+b.Height > legendTop {
		if b.NodeX > canvasW/2 {
			x = legendLeft - b.Width/2 - padding
		} else {
			y = legendTop - b.Height - padding
		}
	}
	return geom.Pt(x, y)
}
