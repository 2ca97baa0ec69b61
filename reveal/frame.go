package reveal

import "github.com/TFMV/neongraph/models"

// Frame is a snapshot of what the detail view should draw.
type Frame struct {
	SessionID    string            `json:"session_id"`
	DepartmentID string            `json:"department_id"`
	Name         string            `json:"name"`
	State        State             `json:"state"`
	Width        float64           `json:"width"`
	Height       float64           `json:"height"`
	Zoom         float64           `json:"zoom"`
	Time         float64           `json:"time"`
	NodeCount    int               `json:"node_count"`
	Complex      bool              `json:"complex"`
	Enabled      []models.Category `json:"enabled"`
	Highlight    *models.Category  `json:"highlight,omitempty"`
	Links        []LinkFrame       `json:"links"`
	Nodes        []NodeFrame       `json:"nodes"`
}

// NodeFrame is one drawn node.
type NodeFrame struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  models.Category `json:"category"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	Radius    float64         `json:"radius"`
	Opacity   float64         `json:"opacity"`
	HasTracks bool            `json:"has_tracks,omitempty"`
}

// LinkFrame is one drawn link with resolved endpoint positions.
type LinkFrame struct {
	Source   string          `json:"source"`
	Target   string          `json:"target"`
	Category models.Category `json:"category"`
	X1       float64         `json:"x1"`
	Y1       float64         `json:"y1"`
	X2       float64         `json:"x2"`
	Y2       float64         `json:"y2"`
	Opacity  float64         `json:"opacity"`
}

// Frame snapshots the simulated nodes that are currently visible and the
// links between them.
func (s *Session) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := Frame{
		SessionID:    s.id,
		DepartmentID: s.dept.ID,
		Name:         s.dept.Name,
		State:        s.state,
		Width:        s.width,
		Height:       s.height,
		Zoom:         s.zoom,
		Time:         s.animClockLocked(),
		NodeCount:    s.graph.Len(),
		Complex:      s.dept.IsComplex(),
		Enabled:      s.enabled.Sorted(),
	}
	if s.highlight != nil {
		h := *s.highlight
		f.Highlight = &h
	}
	if s.sim == nil {
		return f
	}

	byID := make(map[string]*models.Node)
	for _, n := range s.sim.Nodes() {
		byID[n.ID] = n
		op := Opacity(s.enabled, s.highlight, n.Category)
		if op == 0 {
			continue
		}
		f.Nodes = append(f.Nodes, NodeFrame{
			ID:        n.ID,
			Name:      n.Name,
			Category:  n.Category,
			X:         n.X,
			Y:         n.Y,
			Radius:    n.Radius,
			Opacity:   op,
			HasTracks: n.HasTracks(),
		})
	}

	for _, l := range s.graph.LinksAmong(func(id string) bool { return byID[id] != nil }) {
		src, dst := byID[l.Source], byID[l.Target]
		op := Opacity(s.enabled, s.highlight, src.Category, dst.Category)
		if op == 0 {
			continue
		}
		f.Links = append(f.Links, LinkFrame{
			Source:   l.Source,
			Target:   l.Target,
			Category: l.Category,
			X1:       src.X,
			Y1:       src.Y,
			X2:       dst.X,
			Y2:       dst.Y,
			Opacity:  op,
		})
	}
	return f
}
