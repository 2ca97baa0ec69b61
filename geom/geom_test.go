package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSegmentIntersection(t *testing.T) {
	tests := []struct {
		name   string
		a1, a2 Point
		b1, b2 Point
		want   Point
		ok     bool
	}{
		{"cross", Pt(0, 0), Pt(10, 10), Pt(0, 10), Pt(10, 0), Pt(5, 5), true},
		{"touching endpoints", Pt(0, 0), Pt(5, 5), Pt(5, 5), Pt(10, 0), Pt(5, 5), true},
		{"parallel", Pt(0, 0), Pt(10, 0), Pt(0, 1), Pt(10, 1), Point{}, false},
		{"collinear", Pt(0, 0), Pt(10, 0), Pt(5, 0), Pt(15, 0), Point{}, false},
		{"disjoint", Pt(0, 0), Pt(1, 1), Pt(5, 0), Pt(6, -1), Point{}, false},
		{"degenerate", Pt(3, 3), Pt(3, 3), Pt(0, 0), Pt(10, 10), Point{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SegmentIntersection(tt.a1, tt.a2, tt.b1, tt.b2)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want.X, got.X, 1e-9)
				assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			}
		})
	}
}

func distanceToSegment(p Point, s Segment) float64 {
	l2 := (s.B.X-s.A.X)*(s.B.X-s.A.X) + (s.B.Y-s.A.Y)*(s.B.Y-s.A.Y)
	if l2 == 0 {
		return Distance(p, s.A)
	}
	t := ((p.X-s.A.X)*(s.B.X-s.A.X) + (p.Y-s.A.Y)*(s.B.Y-s.A.Y)) / l2
	t = math.Max(0, math.Min(1, t))
	return Distance(p, s.At(t))
}

func TestSegmentIntersectionProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := Pt(rapid.Float64Range(-500, 500).Draw(t, "px"), rapid.Float64Range(-500, 500).Draw(t, "py"))
		angA := rapid.Float64Range(0, math.Pi).Draw(t, "angA")
		gap := rapid.Float64Range(0.2, math.Pi-0.2).Draw(t, "gap")
		angB := angA + gap

		la0 := rapid.Float64Range(1, 200).Draw(t, "la0")
		la1 := rapid.Float64Range(1, 200).Draw(t, "la1")
		lb0 := rapid.Float64Range(1, 200).Draw(t, "lb0")
		lb1 := rapid.Float64Range(1, 200).Draw(t, "lb1")

		a := Segment{Polar(p, angA+math.Pi, la0), Polar(p, angA, la1)}
		b := Segment{Polar(p, angB+math.Pi, lb0), Polar(p, angB, lb1)}

		got, ok := a.Intersect(b)
		if !ok {
			t.Fatalf("expected crossing at %v", p)
		}
		if d := distanceToSegment(got, a); d > 1e-6 {
			t.Fatalf("point %v is %g away from segment a", got, d)
		}
		if d := distanceToSegment(got, b); d > 1e-6 {
			t.Fatalf("point %v is %g away from segment b", got, d)
		}
	})
}

func TestParallelSegmentsNeverIntersect(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a1 := Pt(rapid.Float64Range(-500, 500).Draw(t, "x"), rapid.Float64Range(-500, 500).Draw(t, "y"))
		dir := rapid.Float64Range(0, 2*math.Pi).Draw(t, "dir")
		length := rapid.Float64Range(1, 300).Draw(t, "len")
		offset := rapid.Float64Range(-100, 100).Draw(t, "offset")
		shift := rapid.Float64Range(-50, 50).Draw(t, "shift")

		a2 := Polar(a1, dir, length)
		normal := dir + math.Pi/2
		b1 := Polar(Polar(a1, normal, offset), dir, shift)
		b2 := Polar(b1, dir, length)

		if _, ok := SegmentIntersection(a1, a2, b1, b2); ok {
			t.Fatalf("parallel segments reported a crossing")
		}
	})
}

func TestFirstIntersection(t *testing.T) {
	a := []Segment{{Pt(0, 0), Pt(10, 0)}, {Pt(10, 0), Pt(10, 10)}}
	b := []Segment{{Pt(5, -5), Pt(5, 5)}, {Pt(0, 5), Pt(20, 5)}}

	p, ok := FirstIntersection(a, b)
	require.True(t, ok)
	assert.Equal(t, Pt(5, 0), p)

	_, ok = FirstIntersection(a, []Segment{{Pt(-5, -5), Pt(-1, -1)}})
	assert.False(t, ok)
}

func TestColorBrightness(t *testing.T) {
	assert.InDelta(t, 255.0, ColorBrightness("#ffffff"), 1e-9)
	assert.InDelta(t, 0.0, ColorBrightness("#000000"), 1e-9)
	assert.InDelta(t, 225.93, ColorBrightness("#ffff00"), 1e-9)
	assert.InDelta(t, 0.0, ColorBrightness("not-a-color"), 1e-9)

	assert.Equal(t, "#ffff00", BlendColors("#ffff00", "#8000ff"))
	assert.Equal(t, "#00ff80", BlendColors("#8000ff", "#00ff80"))
	assert.Equal(t, "#ff0080", BlendColors("#ff0080", "#ff0080"))
}

func TestLerpAndLength(t *testing.T) {
	assert.Equal(t, Pt(5, 10), Lerp(Pt(0, 0), Pt(10, 20), 0.5))
	assert.InDelta(t, 25.0, PolylineLength(Pt(0, 0), Pt(3, 4), Pt(3, 24)), 1e-9)
}
