package ingest

import (
	"math"
	"time"

	"github.com/TFMV/neongraph/geom"
	"github.com/TFMV/neongraph/models"
)

// Overview ring constants.
const (
	SlotWidth    = 200.0
	SlotHeight   = 60.0
	SlotPadding  = 100.0
	TitleMargin  = 100.0
	AppearStride = 200 * time.Millisecond
)

// Slot is where one department button sits on the overview ring.
type Slot struct {
	DepartmentID string        `json:"department_id"`
	Name         string        `json:"name"`
	X            float64       `json:"x"`
	Y            float64       `json:"y"`
	Width        float64       `json:"width"`
	Height       float64       `json:"height"`
	Delay        time.Duration `json:"delay"`
}

// TitleFallback is the title box assumed when the shell does not report one.
func TitleFallback(width, height float64) geom.Box {
	return geom.Rect(width*0.3, height*0.4, width*0.7, height*0.6)
}

// RingLayout spreads departments evenly on a circle around the title box,
// starting at the top and going clockwise. The ring clears the title's
// half-diagonal by TitleMargin; slots are the top-left corners of
// SlotWidth x SlotHeight buttons kept SlotPadding inside the canvas.
func RingLayout(departments []models.Department, width, height float64, title geom.Box) []Slot {
	if title.Empty() {
		title = TitleFallback(width, height)
	}
	size := title.Size()
	minRadius := math.Hypot(size.X, size.Y)/2 + TitleMargin
	short := math.Min(width, height)
	radius := math.Max(minRadius, math.Min(short*0.4, short*0.35))

	cx, cy := width/2, height/2
	n := float64(len(departments))
	out := make([]Slot, 0, len(departments))
	for i, d := range departments {
		angle := float64(i)/n*2*math.Pi - math.Pi/2
		x := cx + math.Cos(angle)*radius - SlotWidth/2
		y := cy + math.Sin(angle)*radius - SlotHeight/2
		x = math.Max(SlotPadding, math.Min(width-SlotPadding-SlotWidth, x))
		y = math.Max(SlotPadding, math.Min(height-SlotPadding-SlotHeight, y))
		out = append(out, Slot{
			DepartmentID: d.ID,
			Name:         d.Name,
			X:            x,
			Y:            y,
			Width:        SlotWidth,
			Height:       SlotHeight,
			Delay:        time.Duration(i) * AppearStride,
		})
	}
	return out
}
