// Package geom holds the small amount of 2D geometry the circuit intro and
// the partnership graph need: segment intersection, interpolation and
// color brightness.
package geom

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a position on the canvas.
type Point = r2.Vec

// Box is an axis-aligned rectangle on the canvas.
type Box = r2.Box

// Epsilon is the determinant below which two segments are treated as parallel.
const Epsilon = 0.001

// Segment is a straight line between two points.
type Segment struct {
	A, B Point
}

// Pt is shorthand for building a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Rect builds a Box from its left, top, right and bottom edges.
func Rect(left, top, right, bottom float64) Box {
	return r2.NewBox(left, top, right, bottom)
}

// Length returns the length of the segment.
func (s Segment) Length() float64 {
	return Distance(s.A, s.B)
}

// At returns the point at fraction t along the segment.
func (s Segment) At(t float64) Point {
	return Lerp(s.A, s.B, t)
}

// SegmentIntersection returns the point where segments a1-a2 and b1-b2 cross.
// Parallel or near-parallel segments and crossings outside either segment
// report false.
func SegmentIntersection(a1, a2, b1, b2 Point) (Point, bool) {
	denom := (a1.X-a2.X)*(b1.Y-b2.Y) - (a1.Y-a2.Y)*(b1.X-b2.X)
	if math.Abs(denom) < Epsilon {
		return Point{}, false
	}

	t := ((a1.X-b1.X)*(b1.Y-b2.Y) - (a1.Y-b1.Y)*(b1.X-b2.X)) / denom
	u := -((a1.X-a2.X)*(a1.Y-b1.Y) - (a1.Y-a2.Y)*(a1.X-b1.X)) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false
	}
	return Lerp(a1, a2, t), true
}

// Intersect is SegmentIntersection over two Segments.
func (s Segment) Intersect(o Segment) (Point, bool) {
	return SegmentIntersection(s.A, s.B, o.A, o.B)
}

// FirstIntersection returns the first crossing found between any segment of
// a and any segment of b, scanning a in order and b in order for each.
func FirstIntersection(a, b []Segment) (Point, bool) {
	for _, sa := range a {
		for _, sb := range b {
			if p, ok := sa.Intersect(sb); ok {
				return p, true
			}
		}
	}
	return Point{}, false
}

// Distance returns the euclidean distance between two points.
func Distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(b, a))
}

// Lerp returns the point at fraction t between a and b.
func Lerp(a, b Point, t float64) Point {
	return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
}

// Polar returns the point at the given angle and distance from origin.
func Polar(origin Point, angle, dist float64) Point {
	return Point{X: origin.X + math.Cos(angle)*dist, Y: origin.Y + math.Sin(angle)*dist}
}

// Angle returns the direction from a to b in radians.
func Angle(a, b Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// PolylineLength returns the summed length of consecutive points.
func PolylineLength(pts ...Point) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += Distance(pts[i-1], pts[i])
	}
	return total
}

// ColorBrightness returns the luma-weighted brightness of a "#rrggbb" color
// on a 0..255 scale. Unparseable colors report 0.
func ColorBrightness(hex string) float64 {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0
	}
	r, g, b := c.RGB255()
	return (float64(r)*299 + float64(g)*587 + float64(b)*114) / 1000
}

// BlendColors picks the brighter of two colors. Ties go to b.
func BlendColors(a, b string) string {
	if ColorBrightness(a) > ColorBrightness(b) {
		return a
	}
	return b
}
