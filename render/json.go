package render

import (
	"fmt"

	"github.com/TFMV/neongraph/circuit"
	"github.com/TFMV/neongraph/reveal"
	"github.com/goccy/go-json"
)

// JSONRenderer outputs frame data for browser-side drawing.
type JSONRenderer struct{}

// Name returns the name of the renderer
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// Description returns a description of the renderer
func (r *JSONRenderer) Description() string {
	return "Renders frames as JSON data for machine consumption or custom visualizations"
}

// ContentType returns the MIME type of JSON output.
func (r *JSONRenderer) ContentType() string {
	return "application/json"
}

// RenderGraph encodes the frame together with the resolved category styles.
func (r *JSONRenderer) RenderGraph(frame *reveal.Frame, options *OutputOptions) ([]byte, error) {
	if frame == nil {
		return nil, fmt.Errorf("render graph: nil frame")
	}
	options = optionsOrDefault(options, "json")
	w, h := canvasSize(options, frame.Width, frame.Height)
	zoom := frame.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	type jsonGraph struct {
		Kind     string                   `json:"kind"`
		Frame    *reveal.Frame            `json:"frame"`
		Styles   map[string]CategoryStyle `json:"styles"`
		Metadata map[string]any           `json:"metadata"`
	}

	return r.marshal(jsonGraph{
		Kind:   "graph",
		Frame:  frame,
		Styles: StylesFor(frame.NodeCount, frame.Complex, zoom),
		Metadata: map[string]any{
			"width":      w,
			"height":     h,
			"background": options.Background,
			"nodeCount":  len(frame.Nodes),
			"linkCount":  len(frame.Links),
			"legend":     options.ShowLegend,
		},
	}, options)
}

// RenderIntro encodes the intro frame.
func (r *JSONRenderer) RenderIntro(frame *circuit.Frame, options *OutputOptions) ([]byte, error) {
	if frame == nil {
		return nil, fmt.Errorf("render intro: nil frame")
	}
	options = optionsOrDefault(options, "json")
	w, h := canvasSize(options, frame.Width, frame.Height)

	type jsonIntro struct {
		Kind     string         `json:"kind"`
		Frame    *circuit.Frame `json:"frame"`
		Metadata map[string]any `json:"metadata"`
	}

	return r.marshal(jsonIntro{
		Kind:  "intro",
		Frame: frame,
		Metadata: map[string]any{
			"width":             w,
			"height":            h,
			"background":        options.Background,
			"pathCount":         len(frame.Paths),
			"intersectionCount": len(frame.Intersections),
			"elapsedMs":         frame.Elapsed.Milliseconds(),
		},
	}, options)
}

func (r *JSONRenderer) marshal(v any, options *OutputOptions) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if options.Indent {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return out, nil
}
