package physics

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Scatter produces small, reproducible offsets for nodes spawned at the
// same point, so they separate along different directions.
type Scatter struct {
	noise opensimplex.Noise
	calls int
}

// NewScatter creates a scatter source from a seed.
func NewScatter(seed int64) *Scatter {
	return &Scatter{noise: opensimplex.NewNormalized(seed)}
}

// Around returns a point within spread of (cx, cy) on both axes.
func (s *Scatter) Around(cx, cy, spread float64) (float64, float64) {
	s.calls++
	t := float64(s.calls) * 0.731
	nx := s.noise.Eval2(t, 0.5)
	ny := s.noise.Eval2(0.5, t)
	return cx + (nx*2-1)*spread, cy + (ny*2-1)*spread
}

// Shimmer returns a value in [0, 1] that varies smoothly over x, y and time.
// The intro renderer uses it to modulate grid dot brightness.
func (s *Scatter) Shimmer(x, y, t float64) float64 {
	return s.noise.Eval3(x*0.02, y*0.02, t)
}
