package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/TFMV/neongraph/circuit"
	"github.com/TFMV/neongraph/geom"
	"github.com/TFMV/neongraph/physics"
	"github.com/TFMV/neongraph/reveal"
	svg "github.com/ajstarks/svgo"
)

// SVGRenderer outputs SVG format
type SVGRenderer struct{}

// Name returns the name of the renderer
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// Description returns a description of the renderer
func (r *SVGRenderer) Description() string {
	return "Renders frames as Scalable Vector Graphics (SVG) for high-quality vector output"
}

// ContentType returns the MIME type of SVG output.
func (r *SVGRenderer) ContentType() string {
	return "image/svg+xml"
}

const glowFilter = "glow"

// RenderIntro draws the intro frame as SVG.
func (r *SVGRenderer) RenderIntro(frame *circuit.Frame, options *OutputOptions) ([]byte, error) {
	if frame == nil {
		return nil, fmt.Errorf("render intro: nil frame")
	}
	options = optionsOrDefault(options, "svg")
	w, h := canvasSize(options, frame.Width, frame.Height)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	startCanvas(canvas, w, h, options.Background)

	canvas.Def()
	for i, in := range frame.Intersections {
		canvas.RadialGradient(fmt.Sprintf("ix%d", i), 50, 50, 50, 50, 50, []svg.Offcolor{
			{Offset: 0, Color: in.Color, Opacity: 1},
			{Offset: 70, Color: in.Color, Opacity: 0x88 / 255.0},
			{Offset: 100, Color: in.Color, Opacity: 0},
		})
	}
	canvas.DefEnd()

	if options.ShowGrid {
		noise := physics.NewScatter(options.Seed)
		t := frame.Elapsed.Seconds()
		canvas.Gid("grid")
		for _, d := range gridDots(w, h, frame.Grid) {
			canvas.Circle(px(d[0]), px(d[1]), 1,
				fmt.Sprintf("fill:#00ffff;fill-opacity:%.3f", gridAlpha(noise, d[0], d[1], t, options.Shimmer)))
		}
		canvas.Gend()
	}

	canvas.Gid("traces")
	for _, p := range frame.Paths {
		svgTrace(canvas, p.Points, p.Color, p.Width, p.Glow)
		for _, b := range p.Branches {
			svgTrace(canvas, []geom.Point{b.From, b.To}, b.Color, b.Width, b.Glow)
		}
	}
	canvas.Gend()

	canvas.Gid("intersections")
	for i, in := range frame.Intersections {
		if in.Radius <= 0 {
			continue
		}
		canvas.Circle(px(in.Pos.X), px(in.Pos.Y), px(in.Radius),
			fmt.Sprintf("fill:url(#ix%d);opacity:%.3f", i, in.Intensity))
		canvas.Circle(px(in.Pos.X), px(in.Pos.Y), 3,
			fmt.Sprintf("fill:#ffffff;opacity:%.3f", in.Intensity*0.9))
	}
	for _, pl := range frame.Pulses {
		canvas.Circle(px(pl.Pos.X), px(pl.Pos.Y), px(pl.Radius),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:2;opacity:%.3f", pl.Color, pl.Intensity*0.8))
		canvas.Circle(px(pl.Pos.X), px(pl.Pos.Y), px(pl.Radius*0.7),
			fmt.Sprintf("fill:none;stroke:#ffffff;stroke-width:1;opacity:%.3f", pl.Intensity*0.5))
	}
	canvas.Gend()

	canvas.End()
	return buf.Bytes(), nil
}

func svgTrace(canvas *svg.SVG, pts []geom.Point, color string, width, glow float64) {
	if len(pts) < 2 {
		return
	}
	xs := make([]int, len(pts))
	ys := make([]int, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = px(p.X), px(p.Y)
	}
	for _, pass := range tracePasses {
		col := color
		if pass.White {
			col = "#ffffff"
		}
		lw := width * pass.WidthScale
		style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f;stroke-opacity:%.2f;stroke-linecap:round;stroke-linejoin:round",
			col, lw, pass.Alpha)
		if pass.WidthScale > 1 {
			style = fmt.Sprintf("%s;stroke-width:%.2f;filter:url(#%s)", style, haloWidth(lw, 8*glow), glowFilter)
		}
		canvas.Polyline(xs, ys, style)
	}
}

// RenderGraph draws the detail view as SVG. Labels are wrapped with the
// same font metrics as the PNG output.
func (r *SVGRenderer) RenderGraph(frame *reveal.Frame, options *OutputOptions) ([]byte, error) {
	if frame == nil {
		return nil, fmt.Errorf("render graph: nil frame")
	}
	options = optionsOrDefault(options, "svg")
	w, h := canvasSize(options, frame.Width, frame.Height)
	zoom := frame.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	startCanvas(canvas, w, h, options.Background)

	canvas.Gid("links")
	for _, l := range frame.Links {
		lw, glow := linkStroke(l.Category, frame.Time, zoom)
		col := LinkColor(l.Category)
		canvas.Line(px(l.X1), px(l.Y1), px(l.X2), px(l.Y2),
			fmt.Sprintf("stroke:%s;stroke-width:%.2f;stroke-opacity:%.3f;filter:url(#%s)", col, haloWidth(lw, glow), 0.15*l.Opacity, glowFilter))
		canvas.Line(px(l.X1), px(l.Y1), px(l.X2), px(l.Y2),
			fmt.Sprintf("stroke:%s;stroke-width:%.2f;stroke-opacity:%.3f;stroke-linecap:round", col, lw, LinkAlpha*l.Opacity))
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, n := range frame.Nodes {
		dr, glow := NodePulse(n.Category, frame.Time)
		radius := math.Max(1, n.Radius+dr)
		col := NodeColor(n.Category)
		canvas.Circle(px(n.X), px(n.Y), px(radius+glow*0.5*zoom*n.Opacity),
			fmt.Sprintf("fill:%s;opacity:%.3f;filter:url(#%s)", col, 0.2*n.Opacity, glowFilter))
		canvas.Circle(px(n.X), px(n.Y), px(radius),
			fmt.Sprintf("fill:%s;stroke:#ffffff;stroke-width:%.2f;opacity:%.3f", col, NodeStrokeWidth(n.Category)*zoom, n.Opacity))
	}
	canvas.Gend()

	faces := newFaceCache()
	defer faces.Close()

	if options.ShowLabels {
		labels, err := layoutLabels(frame, faces, w, h)
		if err != nil {
			return nil, err
		}
		canvas.Gid("labels")
		for _, lb := range labels {
			style := fmt.Sprintf("fill:#ffffff;font-family:Orbitron,sans-serif;font-weight:bold;font-size:%.1fpx;text-anchor:middle;dominant-baseline:hanging;opacity:%.3f",
				lb.FontSize, lb.Opacity)
			for i, line := range lb.Lines {
				canvas.Text(px(lb.X), px(lb.Y+float64(i)*lb.LineHeight), line, style)
			}
		}
		canvas.Gend()
	}

	if options.ShowLegend {
		x, y, cw, ch := legendCard(w, h)
		canvas.Gid("legend")
		canvas.Roundrect(px(x), px(y), px(cw), px(ch), 10, 10, "fill:#000000;fill-opacity:0.7;stroke:#00ffff;stroke-opacity:0.5;stroke-width:1")
		canvas.Text(px(x+16), px(y+24), frame.Name, "fill:#ffffff;font-family:Orbitron,sans-serif;font-weight:bold;font-size:16px;dominant-baseline:middle")
		for i, row := range legendRows(frame) {
			ry := y + 60 + float64(i)*32
			alpha := legendRowAlpha(row)
			canvas.Circle(px(x+24), px(ry), 7, fmt.Sprintf("fill:%s;opacity:%.2f", row.Color, alpha))
			if row.Highlighted {
				canvas.Circle(px(x+24), px(ry), 10, "fill:none;stroke:#ffffff;stroke-width:2")
			}
			canvas.Text(px(x+42), px(ry), row.Label,
				fmt.Sprintf("fill:#ffffff;font-family:Orbitron,sans-serif;font-size:16px;dominant-baseline:middle;opacity:%.2f", alpha))
		}
		canvas.Gend()
	}

	canvas.End()
	return buf.Bytes(), nil
}

// startCanvas opens the document, paints the background and defines the
// shared blur filter.
func startCanvas(canvas *svg.SVG, w, h float64, background string) {
	if background == "" {
		background = "#000000"
	}
	canvas.Start(px(w), px(h))
	canvas.Def()
	canvas.Filter(glowFilter)
	canvas.FeGaussianBlur(svg.Filterspec{In: "SourceGraphic"}, 4, 4)
	canvas.Fend()
	canvas.DefEnd()
	canvas.Rect(0, 0, px(w), px(h), fmt.Sprintf("fill:%s", background))
}

func px(v float64) int {
	return int(math.Round(v))
}
