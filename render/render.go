// Package render draws intro and detail-view frames. Every renderer is a
// pure function of the frame it is given; no state survives between calls
// besides the parsed label font.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/TFMV/neongraph/circuit"
	"github.com/TFMV/neongraph/reveal"
)

// ErrUnsupportedFormat is returned by GetRenderer for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format     string  // Output format (png, svg, json)
	Width      float64 // Overrides the frame width when > 0
	Height     float64 // Overrides the frame height when > 0
	Background string  // Background color
	ShowLabels bool    // Draw wrapped node labels
	ShowLegend bool    // Draw the category legend card
	ShowGrid   bool    // Draw the intro dot grid
	Shimmer    float64 // Grid dot brightness variation (0.0-1.0)
	Seed       int64   // Seed for the grid shimmer noise
	Indent     bool    // Pretty-print JSON output
}

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// RenderGraph draws one detail-view frame.
	RenderGraph(frame *reveal.Frame, options *OutputOptions) ([]byte, error)

	// RenderIntro draws one circuit intro frame.
	RenderIntro(frame *circuit.Frame, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// Description returns a description of the renderer
	Description() string

	// ContentType returns the MIME type of the rendered bytes.
	ContentType() string
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Background: "#000000",
		ShowLabels: true,
		ShowLegend: true,
		ShowGrid:   true,
		Shimmer:    0.5,
		Seed:       1,
	}
}

// Formats lists the formats GetRenderer accepts.
func Formats() []string {
	return []string{"png", "svg", "json"}
}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "png":
		return &PNGRenderer{}, nil
	case "svg":
		return &SVGRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// canvasSize picks the output size: explicit options win over the frame.
func canvasSize(options *OutputOptions, width, height float64) (float64, float64) {
	if options != nil && options.Width > 0 {
		width = options.Width
	}
	if options != nil && options.Height > 0 {
		height = options.Height
	}
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return width, height
}

func optionsOrDefault(options *OutputOptions, format string) *OutputOptions {
	if options == nil {
		return NewDefaultOptions(format)
	}
	return options
}
