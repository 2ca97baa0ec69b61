package circuit

import (
	"testing"
	"time"

	"github.com/TFMV/neongraph/anim"
	"github.com/TFMV/neongraph/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSpawnPath_StopsBeforeTarget(t *testing.T) {
	g := NewGenerator(1200, 800, 1)
	box := g.Target()
	stop := GridSize * 4

	for i := 0; i < 40; i++ {
		p := g.SpawnNext()
		switch p.Edge {
		case EdgeTop:
			assert.Equal(t, -GridSize*2, p.Start.Y)
			assert.LessOrEqual(t, p.StraightEnd.Y, box.Min.Y-stop)
			assert.Equal(t, box.Min.Y, p.End.Y)
		case EdgeRight:
			assert.Equal(t, 1200+GridSize*2, p.Start.X)
			assert.GreaterOrEqual(t, p.StraightEnd.X, box.Max.X+stop)
			assert.Equal(t, box.Max.X, p.End.X)
		case EdgeBottom:
			assert.GreaterOrEqual(t, p.StraightEnd.Y, box.Max.Y+stop)
			assert.Equal(t, box.Max.Y, p.End.Y)
		case EdgeLeft:
			assert.LessOrEqual(t, p.StraightEnd.X, box.Min.X-stop)
			assert.Equal(t, box.Min.X, p.End.X)
		}
		assert.Contains(t, Palette, p.Color)
		assert.Contains(t, []float64{2, 3}, p.Width)
		assert.GreaterOrEqual(t, p.Glow, 0.5)
		assert.Less(t, p.Glow, 1.0)
		assert.LessOrEqual(t, len(p.Branches), 1)
	}
}

func TestSpawnNext_RoundRobin(t *testing.T) {
	g := NewGenerator(800, 600, 3)
	var edges []Edge
	for i := 0; i < 6; i++ {
		edges = append(edges, g.SpawnNext().Edge)
	}
	assert.Equal(t, []Edge{EdgeTop, EdgeRight, EdgeBottom, EdgeLeft, EdgeTop, EdgeRight}, edges)
}

func TestSetTarget_ClampsToCanvas(t *testing.T) {
	g := NewGenerator(800, 600, 1)
	assert.Equal(t, FallbackTarget(800, 600), g.Target())

	g.SetTarget(geom.Rect(-20, 250, 900, 350))
	assert.Equal(t, geom.Rect(0, 250, 800, 350), g.Target())

	g.ClearTarget()
	assert.Equal(t, FallbackTarget(800, 600), g.Target())
}

func TestIntersections_OnePerCrossingPair(t *testing.T) {
	g := NewGenerator(800, 600, 1)
	a := &Path{ID: "a", Start: geom.Pt(0, 300), StraightEnd: geom.Pt(400, 300), End: geom.Pt(400, 310), Color: "#8000ff"}
	g.paths = append(g.paths, a)

	b := &Path{ID: "b", Start: geom.Pt(200, 0), StraightEnd: geom.Pt(200, 600), End: geom.Pt(210, 600), Color: "#ffff00"}
	g.paths = append(g.paths, b)
	g.recordIntersections(b)

	require.Len(t, g.Intersections(), 1)
	require.Len(t, g.Pulses(), 1)
	in := g.Intersections()[0]
	assert.InDelta(t, 200, in.Pos.X, 1e-9)
	assert.InDelta(t, 300, in.Pos.Y, 1e-9)
	assert.Equal(t, "#ffff00", in.Color)
	assert.Equal(t, [2]string{"b", "a"}, in.Paths)
	assert.Equal(t, IntersectionMaxRadius, in.MaxRadius)
	assert.Equal(t, PulseMaxRadius, g.Pulses()[0].MaxRadius)
}

func TestUpdate_ProgressMonotoneAndCapped(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		spawns := rapid.IntRange(1, 12).Draw(t, "spawns")
		ticks := rapid.IntRange(1, 120).Draw(t, "ticks")

		g := NewGenerator(1024, 768, seed)
		for i := 0; i < spawns; i++ {
			g.SpawnNext()
		}
		prev := map[string]float64{}
		for i := 0; i < ticks; i++ {
			g.Update()
			for _, p := range g.Paths() {
				if p.Progress < prev[p.ID] || p.Progress > 1 {
					t.Fatalf("path %s progress %v after %v", p.ID, p.Progress, prev[p.ID])
				}
				prev[p.ID] = p.Progress
				for _, b := range p.Branches {
					if b.Progress > 0 && p.Progress < b.Threshold {
						t.Fatalf("branch %s grew before parent reached %v", b.ID, b.Threshold)
					}
					if b.Progress < prev[b.ID] || b.Progress > 1 {
						t.Fatalf("branch %s progress %v", b.ID, b.Progress)
					}
					prev[b.ID] = b.Progress
				}
			}
		}
	})
}

func TestUpdate_BranchWaitsForThreshold(t *testing.T) {
	g := NewGenerator(800, 600, 1)
	p := &Path{ID: "p", Start: geom.Pt(0, 0), StraightEnd: geom.Pt(100, 0), End: geom.Pt(100, 100)}
	b := &Branch{ID: "b", Start: geom.Pt(50, 0), End: geom.Pt(80, -30), Threshold: 0.25}
	p.Branches = []*Branch{b}
	g.paths = []*Path{p}

	for i := 0; i < 12; i++ {
		g.Update()
	}
	assert.InDelta(t, 0.24, p.Progress, 1e-9)
	assert.Zero(t, b.Progress)

	g.Update()
	assert.InDelta(t, 0.26, p.Progress, 1e-9)
	assert.InDelta(t, BranchStep, b.Progress, 1e-9)
}

func TestUpdate_GlowsAndPulsesFade(t *testing.T) {
	g := NewGenerator(800, 600, 1)
	g.intersections = []*Intersection{{ID: "i", Intensity: 1, MaxRadius: IntersectionMaxRadius}}
	g.pulses = []*Pulse{{ID: "p", Intensity: 1, MaxRadius: PulseMaxRadius, Speed: PulseSpeed}}

	g.Update()
	require.Len(t, g.Intersections(), 1)
	assert.Equal(t, 0.5, g.Intersections()[0].Radius)
	assert.InDelta(t, 0.995, g.Intersections()[0].Intensity, 1e-12)
	require.Len(t, g.Pulses(), 1)
	assert.Equal(t, 2.0, g.Pulses()[0].Radius)

	// Pulse reaches its max radius on the 15th tick.
	for i := 0; i < 14; i++ {
		g.Update()
	}
	assert.Empty(t, g.Pulses())
	assert.Equal(t, 7.5, g.Intersections()[0].Radius)

	// 0.995^n drops below 0.01 after 919 ticks.
	for i := 0; i < 1000; i++ {
		g.Update()
	}
	assert.Empty(t, g.Intersections())
}

func TestSpawnDelay(t *testing.T) {
	cases := []struct {
		count int
		delay time.Duration
		more  bool
	}{
		{1, 200 * time.Millisecond, true},
		{14, 200 * time.Millisecond, true},
		{15, 500 * time.Millisecond, true},
		{29, 500 * time.Millisecond, true},
		{30, time.Second, true},
		{39, time.Second, true},
		{40, 0, false},
	}
	for _, tc := range cases {
		d, more := SpawnDelay(tc.count)
		assert.Equal(t, tc.delay, d, "count %d", tc.count)
		assert.Equal(t, tc.more, more, "count %d", tc.count)
	}
}

func TestForceComplete(t *testing.T) {
	g := NewGenerator(800, 600, 9)
	for i := 0; i < 10; i++ {
		g.SpawnNext()
	}
	g.ForceComplete()
	for _, p := range g.Paths() {
		assert.True(t, p.Complete())
		assert.InDelta(t, p.End.X, p.Head().X, 1e-9)
		assert.InDelta(t, p.End.Y, p.Head().Y, 1e-9)
	}
}

func TestPath_Visible(t *testing.T) {
	p := &Path{Start: geom.Pt(0, 0), StraightEnd: geom.Pt(100, 0), End: geom.Pt(100, 100)}
	assert.Equal(t, 0.5, p.Split())

	p.Progress = 0.25
	assert.Equal(t, []geom.Point{geom.Pt(0, 0), geom.Pt(50, 0)}, p.Visible())

	p.Progress = 0.75
	assert.Equal(t, []geom.Point{geom.Pt(0, 0), geom.Pt(100, 0), geom.Pt(100, 50)}, p.Visible())
}

func TestAnimation_SpawnBudgetAndHalt(t *testing.T) {
	clock := anim.NewManualScheduler(epoch)
	frames := 0
	a := NewAnimation(NewGenerator(1200, 800, 5), clock, DefaultTiming(), func(Frame) { frames++ }, nil)

	a.Start()
	assert.True(t, a.Running())
	assert.Equal(t, 1, a.Count())

	clock.Advance(2800 * time.Millisecond)
	assert.Equal(t, 15, a.Count())

	clock.Advance(5200 * time.Millisecond)
	assert.Equal(t, 25, a.Count())

	clock.Advance(1900 * time.Millisecond)
	assert.Equal(t, 25, a.Count())
	assert.True(t, a.Running())

	clock.Advance(200 * time.Millisecond)
	assert.False(t, a.Running())
	assert.Zero(t, clock.Pending())
	assert.Greater(t, frames, 600)

	f := a.Snapshot()
	assert.False(t, f.Running)
	assert.Equal(t, 10*time.Second, f.Elapsed)
}

func TestAnimation_StopCancelsEverything(t *testing.T) {
	clock := anim.NewManualScheduler(epoch)
	a := NewAnimation(NewGenerator(800, 600, 2), clock, DefaultTiming(), nil, nil)
	a.Start()
	clock.Advance(500 * time.Millisecond)

	a.Stop()
	n := a.Count()
	assert.Zero(t, clock.Pending())
	clock.Advance(5 * time.Second)
	assert.Equal(t, n, a.Count())

	a.Stop()
	assert.False(t, a.Running())
}

func TestAnimation_ForceComplete(t *testing.T) {
	clock := anim.NewManualScheduler(epoch)
	a := NewAnimation(NewGenerator(800, 600, 4), clock, DefaultTiming(), nil, nil)
	a.Start()
	clock.Advance(time.Second)

	a.ForceComplete()
	for _, p := range a.Snapshot().Paths {
		assert.Equal(t, 1.0, p.Progress)
	}
	a.Stop()
}
