package reveal

import "sync"

// Visited remembers which departments have been fully revealed during this
// process so repeat visits skip the staggered reveal.
type Visited struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewVisited creates an empty set.
func NewVisited() *Visited {
	return &Visited{ids: make(map[string]struct{})}
}

// Has reports whether id was fully revealed before.
func (v *Visited) Has(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.ids[id]
	return ok
}

// Add marks id as fully revealed.
func (v *Visited) Add(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ids[id] = struct{}{}
}

// Reset forgets every department.
func (v *Visited) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	clear(v.ids)
}
