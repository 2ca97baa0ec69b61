package render

import (
	"bytes"
	"fmt"
	"math"

	"git.sr.ht/~sbinet/gg"
	"github.com/TFMV/neongraph/circuit"
	"github.com/TFMV/neongraph/geom"
	"github.com/TFMV/neongraph/physics"
	"github.com/TFMV/neongraph/reveal"
)

// PNGRenderer outputs PNG format
type PNGRenderer struct{}

// Name returns the name of the renderer
func (r *PNGRenderer) Name() string {
	return "PNG Renderer"
}

// Description returns a description of the renderer
func (r *PNGRenderer) Description() string {
	return "Renders frames as raster PNG images with layered neon glows"
}

// ContentType returns the MIME type of PNG output.
func (r *PNGRenderer) ContentType() string {
	return "image/png"
}

// RenderIntro draws the grid, traces, intersection glows and pulses.
func (r *PNGRenderer) RenderIntro(frame *circuit.Frame, options *OutputOptions) ([]byte, error) {
	if frame == nil {
		return nil, fmt.Errorf("render intro: nil frame")
	}
	options = optionsOrDefault(options, "png")
	w, h := canvasSize(options, frame.Width, frame.Height)
	dc := newCanvas(w, h, options.Background)

	if options.ShowGrid {
		noise := physics.NewScatter(options.Seed)
		t := frame.Elapsed.Seconds()
		for _, d := range gridDots(w, h, frame.Grid) {
			dc.SetColor(withAlpha("#00ffff", gridAlpha(noise, d[0], d[1], t, options.Shimmer)))
			dc.DrawCircle(d[0], d[1], 1)
			dc.Fill()
		}
	}

	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	for _, p := range frame.Paths {
		drawTrace(dc, p.Points, p.Color, p.Width, p.Glow)
		for _, b := range p.Branches {
			drawTrace(dc, []geom.Point{b.From, b.To}, b.Color, b.Width, b.Glow)
		}
	}

	for _, in := range frame.Intersections {
		if in.Radius <= 0 {
			continue
		}
		grad := gg.NewRadialGradient(in.Pos.X, in.Pos.Y, 0, in.Pos.X, in.Pos.Y, in.Radius)
		grad.AddColorStop(0, withAlpha(in.Color, in.Intensity))
		grad.AddColorStop(0.7, withAlpha(in.Color, in.Intensity*0x88/0xff))
		grad.AddColorStop(1, withAlpha(in.Color, 0))
		dc.SetFillStyle(grad)
		dc.DrawCircle(in.Pos.X, in.Pos.Y, in.Radius)
		dc.Fill()

		dc.SetColor(withAlpha("#ffffff", in.Intensity*0.9))
		dc.DrawCircle(in.Pos.X, in.Pos.Y, 3)
		dc.Fill()
	}

	for _, pl := range frame.Pulses {
		dc.SetColor(withAlpha(pl.Color, pl.Intensity*0.8))
		dc.SetLineWidth(2)
		dc.DrawCircle(pl.Pos.X, pl.Pos.Y, pl.Radius)
		dc.Stroke()

		dc.SetColor(withAlpha("#ffffff", pl.Intensity*0.5))
		dc.SetLineWidth(1)
		dc.DrawCircle(pl.Pos.X, pl.Pos.Y, pl.Radius*0.7)
		dc.Stroke()
	}

	return encodePNG(dc)
}

// drawTrace strokes a polyline with the layered glow passes.
func drawTrace(dc *gg.Context, pts []geom.Point, hex string, width, glow float64) {
	if len(pts) < 2 {
		return
	}
	for _, pass := range tracePasses {
		col := hex
		if pass.White {
			col = "#ffffff"
		}
		lw := width * pass.WidthScale
		if pass.WidthScale > 1 {
			lw = haloWidth(lw, 8*glow)
		}
		dc.SetColor(withAlpha(col, pass.Alpha))
		dc.SetLineWidth(lw)
		dc.MoveTo(pts[0].X, pts[0].Y)
		for _, pt := range pts[1:] {
			dc.LineTo(pt.X, pt.Y)
		}
		dc.Stroke()
	}
}

// RenderGraph draws links, nodes, labels and the legend card.
func (r *PNGRenderer) RenderGraph(frame *reveal.Frame, options *OutputOptions) ([]byte, error) {
	if frame == nil {
		return nil, fmt.Errorf("render graph: nil frame")
	}
	options = optionsOrDefault(options, "png")
	w, h := canvasSize(options, frame.Width, frame.Height)
	dc := newCanvas(w, h, options.Background)
	zoom := frame.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	dc.SetLineCapRound()
	for _, l := range frame.Links {
		lw, glow := linkStroke(l.Category, frame.Time, zoom)
		col := LinkColor(l.Category)

		dc.SetColor(withAlpha(col, 0.15*l.Opacity))
		dc.SetLineWidth(haloWidth(lw, glow))
		dc.DrawLine(l.X1, l.Y1, l.X2, l.Y2)
		dc.Stroke()

		dc.SetColor(withAlpha(col, LinkAlpha*l.Opacity))
		dc.SetLineWidth(lw)
		dc.DrawLine(l.X1, l.Y1, l.X2, l.Y2)
		dc.Stroke()
	}

	for _, n := range frame.Nodes {
		dr, glow := NodePulse(n.Category, frame.Time)
		radius := math.Max(1, n.Radius+dr)
		col := NodeColor(n.Category)

		dc.SetColor(withAlpha(col, 0.2*n.Opacity))
		dc.DrawCircle(n.X, n.Y, radius+glow*0.5*zoom*n.Opacity)
		dc.Fill()

		dc.SetColor(withAlpha(col, n.Opacity))
		dc.DrawCircle(n.X, n.Y, radius)
		dc.FillPreserve()
		dc.SetColor(withAlpha("#ffffff", n.Opacity))
		dc.SetLineWidth(NodeStrokeWidth(n.Category) * zoom)
		dc.Stroke()
	}

	faces := newFaceCache()
	defer faces.Close()

	if options.ShowLabels {
		labels, err := layoutLabels(frame, faces, w, h)
		if err != nil {
			return nil, err
		}
		for _, lb := range labels {
			face, err := faces.get(lb.FontSize)
			if err != nil {
				return nil, err
			}
			dc.SetFontFace(face)
			for i, line := range lb.Lines {
				y := lb.Y + float64(i)*lb.LineHeight
				dc.SetColor(withAlpha("#000000", 0.6*lb.Opacity))
				dc.DrawStringAnchored(line, lb.X+lb.Zoom, y+lb.Zoom, 0.5, 1)
				dc.SetColor(withAlpha("#ffffff", lb.Opacity))
				dc.DrawStringAnchored(line, lb.X, y, 0.5, 1)
			}
		}
	}

	if options.ShowLegend {
		if err := drawLegend(dc, frame, faces, w, h); err != nil {
			return nil, err
		}
	}

	return encodePNG(dc)
}

func drawLegend(dc *gg.Context, frame *reveal.Frame, faces *faceCache, w, h float64) error {
	x, y, cw, ch := legendCard(w, h)
	dc.SetColor(withAlpha("#000000", 0.7))
	dc.DrawRoundedRectangle(x, y, cw, ch, 10)
	dc.FillPreserve()
	dc.SetColor(withAlpha("#00ffff", 0.5))
	dc.SetLineWidth(1)
	dc.Stroke()

	face, err := faces.get(16)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetColor(withAlpha("#ffffff", 1))
	dc.DrawStringAnchored(frame.Name, x+16, y+24, 0, 0.5)

	for i, row := range legendRows(frame) {
		ry := y + 60 + float64(i)*32
		alpha := legendRowAlpha(row)
		dc.SetColor(withAlpha(row.Color, alpha))
		dc.DrawCircle(x+24, ry, 7)
		dc.Fill()
		if row.Highlighted {
			dc.SetColor(withAlpha("#ffffff", 1))
			dc.SetLineWidth(2)
			dc.DrawCircle(x+24, ry, 10)
			dc.Stroke()
		}
		dc.SetColor(withAlpha("#ffffff", alpha))
		dc.DrawStringAnchored(row.Label, x+42, ry, 0, 0.35)
	}
	return nil
}

func newCanvas(w, h float64, background string) *gg.Context {
	dc := gg.NewContext(int(math.Ceil(w)), int(math.Ceil(h)))
	if background == "" {
		background = "#000000"
	}
	dc.SetColor(withAlpha(background, 1))
	dc.Clear()
	return dc
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
