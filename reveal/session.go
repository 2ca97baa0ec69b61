// Package reveal drives the department detail view: it builds the
// partnership graph for one department, reveals its categories one at a
// time on a timer, and answers visibility and opacity queries for the
// renderer.
package reveal

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/TFMV/neongraph/anim"
	"github.com/TFMV/neongraph/events"
	"github.com/TFMV/neongraph/graph"
	"github.com/TFMV/neongraph/models"
	"github.com/TFMV/neongraph/physics"
	"github.com/google/uuid"
)

// ErrNotToggleable is returned when toggling a category the legend does not
// expose.
var ErrNotToggleable = errors.New("category cannot be toggled")

// Options controls canvas size and reveal pacing.
type Options struct {
	Width, Height float64
	// InitialDelay is the wait before the first category appears.
	InitialDelay time.Duration
	// Step is the wait between categories.
	Step time.Duration
	// PopDuration is how long newly revealed nodes get the strong outward push.
	PopDuration time.Duration
	// FrameInterval is the physics tick interval.
	FrameInterval time.Duration
	// Seed drives spawn scatter.
	Seed int64
}

// DefaultOptions returns the standard pacing on a 1280x800 canvas.
func DefaultOptions() Options {
	return Options{
		Width:         1280,
		Height:        800,
		InitialDelay:  time.Second,
		Step:          2 * time.Second,
		PopDuration:   time.Second,
		FrameInterval: 33 * time.Millisecond,
		Seed:          1,
	}
}

// Env carries the collaborators a session reports to. Zero fields get
// process defaults.
type Env struct {
	Scheduler anim.Scheduler
	Bus       *events.Bus
	Visited   *Visited
	Logger    *slog.Logger
}

type pending struct {
	topic   events.Topic
	payload any
}

// Session is the reveal controller for one visit to a department's detail
// view. It is safe for concurrent use.
type Session struct {
	id      string
	dept    *models.Department
	opts    Options
	sched   anim.Scheduler
	bus     *events.Bus
	visited *Visited
	log     *slog.Logger
	loop    *anim.Loop
	timers  anim.TimerSet

	mu        sync.Mutex
	state     State
	revealed  int
	width     float64
	height    float64
	zoom      float64
	animTime  float64
	idleSince time.Time // zero while the frame loop runs
	enabled   Categories
	highlight *models.Category
	hoverNode string
	trackIDs  []string
	graph     *graph.Graph
	sim       *physics.Simulation
	scatter   *physics.Scatter
}

// NewSession creates a session in the Created state. Nothing happens until
// Start.
func NewSession(dept *models.Department, opts Options, env Env) *Session {
	if env.Scheduler == nil {
		env.Scheduler = anim.RealScheduler{}
	}
	if env.Bus == nil {
		env.Bus = events.NewBus()
	}
	if env.Visited == nil {
		env.Visited = NewVisited()
	}
	if env.Logger == nil {
		env.Logger = slog.Default()
	}
	def := DefaultOptions()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = def.Width, def.Height
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = def.FrameInterval
	}

	s := &Session{
		id:      uuid.NewString(),
		dept:    dept,
		opts:    opts,
		sched:   env.Scheduler,
		bus:     env.Bus,
		visited: env.Visited,
		log:     env.Logger.With("department", dept.ID),
		state:   StateCreated,
		width:   opts.Width,
		height:  opts.Height,
		zoom:    1,
		enabled: NewCategories(),
		graph:   graph.New(),
		scatter: physics.NewScatter(opts.Seed),
	}
	s.loop = anim.NewLoop(s.sched, opts.FrameInterval, s.Tick)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Department returns the department being shown.
func (s *Session) Department() *models.Department { return s.dept }

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start builds the graph, settles the central node, starts the frame loop
// and schedules the reveal. Departments already visited in this process
// are revealed at once.
func (s *Session) Start() {
	s.mu.Lock()
	if s.state != StateCreated {
		s.mu.Unlock()
		return
	}
	s.state = StateBuilding
	revisit := s.visited.Has(s.dept.ID)
	s.buildLocked()

	evs := []pending{{events.TopicVisualizationCreated, events.VisualizationCreated{
		DepartmentID: s.dept.ID,
		SessionID:    s.id,
		Name:         s.dept.Name,
		Revisit:      revisit,
	}}}
	settle := false
	if revisit {
		for i, c := range models.RevealOrder {
			s.enabled[c] = true
			evs = append(evs, pending{events.TopicCategoryRevealed, events.CategoryRevealed{
				DepartmentID: s.dept.ID, Category: c, Index: i,
			}})
		}
		settle = s.addNodesLocked(models.RevealOrder)
		s.revealed = len(models.RevealOrder)
		s.state = StateFullyRevealed
	}
	s.mu.Unlock()

	s.log.Debug("visualization created", "session", s.id, "revisit", revisit)
	s.loop.Start()
	if revisit {
		if settle {
			s.timers.After(s.sched, s.opts.PopDuration, s.settlePop)
		}
	} else {
		s.timers.After(s.sched, s.opts.InitialDelay, s.revealNext)
	}
	s.emit(evs)
}

func (s *Session) buildLocked() {
	cx, cy := s.width/2, s.height/2
	nodes, links := BuildGraph(s.dept, cx, cy)
	for _, n := range nodes {
		if n.Category != models.CategoryCentral {
			n.SetPosition(s.scatter.Around(cx, cy, SpawnSpread/2))
		}
		if err := s.graph.AddNode(n); err != nil {
			s.log.Warn("skipping node", "id", n.ID, "error", err)
		}
	}
	for _, l := range links {
		if err := s.graph.AddLink(l); err != nil {
			s.log.Warn("skipping link", "source", l.Source, "target", l.Target, "error", err)
		}
	}

	s.sim = newSimulation(nodes[:1], nil, s.width, s.height, s.zoom)
	s.sim.Tick(WarmupTicks)
}

// revealNext enables the next category in reveal order.
func (s *Session) revealNext() {
	s.mu.Lock()
	if s.state != StateBuilding && s.state != StateRevealing {
		s.mu.Unlock()
		return
	}
	index := s.revealed
	c := models.RevealOrder[index]
	s.enabled[c] = true
	settle := s.addNodesLocked([]models.Category{c})
	s.revealed++
	more := s.revealed < len(models.RevealOrder)
	if more {
		s.state = StateRevealing
	} else {
		s.state = StateFullyRevealed
		s.visited.Add(s.dept.ID)
	}
	s.mu.Unlock()

	s.log.Debug("category revealed", "category", c, "index", index)
	if settle {
		s.timers.After(s.sched, s.opts.PopDuration, s.settlePop)
	}
	if more {
		s.timers.After(s.sched, s.opts.Step, s.revealNext)
	}
	s.emit([]pending{{events.TopicCategoryRevealed, events.CategoryRevealed{
		DepartmentID: s.dept.ID, Category: c, Index: index,
	}}})
}

// addNodesLocked moves every node of cats into the simulation, starting
// from the center, and reheats with an outward push. It reports whether
// any node was added.
func (s *Session) addNodesLocked(cats []models.Category) bool {
	cx, cy := s.width/2, s.height/2
	current := s.sim.Nodes()
	added := 0
	for _, n := range models.NodesByCategory(s.graph.Nodes(), cats...) {
		if s.sim.Contains(n.ID) {
			continue
		}
		n.SetPosition(s.scatter.Around(cx, cy, SpawnSpread))
		n.ApplyZoom(s.zoom)
		current = append(current, n)
		added++
	}
	if added == 0 {
		return false
	}
	s.sim.SetNodes(current)
	s.syncLinksLocked()
	s.reheatLocked(RevealAlpha)
	s.sim.SetForce(ForceRadialPop, physics.NewRadial(ringRadius(s.width, s.height, s.zoom), cx, cy, PopStrength))
	return true
}

func (s *Session) settlePop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		return
	}
	if pop, ok := s.sim.Force(ForceRadialPop).(*physics.Radial); ok {
		pop.Strength = PopSettled
	}
}

// syncLinksLocked gives the link force every link whose endpoints are both
// simulated.
func (s *Session) syncLinksLocked() {
	links := s.graph.LinksAmong(s.sim.Contains)
	if lf, ok := s.sim.Force(ForceLink).(*physics.Link); ok {
		lf.SetLinks(links, s.sim.Nodes())
	}
}

// Tick advances the layout one step and the animation clock one frame.
// Once the layout cools the frame loop pauses until the next reheat.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDestroyed || s.sim == nil {
		return
	}
	cooled := s.sim.Step()
	s.animTime += TimeStep
	if cooled {
		s.idleSince = s.sched.Now()
		s.loop.Stop()
	}
}

// reheatLocked restarts the layout at alpha and resumes a paused frame loop.
func (s *Session) reheatLocked(alpha float64) {
	s.sim.Restart(alpha)
	if s.state == StateCreated || s.state == StateDestroyed {
		return
	}
	if !s.idleSince.IsZero() {
		s.animTime = s.animClockLocked()
		s.idleSince = time.Time{}
	}
	s.loop.Start()
}

// animClockLocked is the pulse clock. It keeps running at the frame rate
// while the loop is paused.
func (s *Session) animClockLocked() float64 {
	if s.idleSince.IsZero() {
		return s.animTime
	}
	idle := s.sched.Now().Sub(s.idleSince)
	return s.animTime + idle.Seconds()/s.opts.FrameInterval.Seconds()*TimeStep
}

// Animating reports whether the frame loop is running.
func (s *Session) Animating() bool { return s.loop.Running() }

// Enabled returns the enabled categories.
func (s *Session) Enabled() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled.Sorted()
}

// IsEnabled reports whether c is enabled.
func (s *Session) IsEnabled(c models.Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled.Has(c)
}

// IsNodeVisible reports whether n should be drawn under the current
// enabled set.
func (s *Session) IsNodeVisible(n *models.Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled.Visible(n.Category)
}

// ElementOpacity returns the opacity of a node (one category) or link (two
// categories).
func (s *Session) ElementOpacity(cats ...models.Category) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Opacity(s.enabled, s.highlight, cats...)
}

// SetHoveredFilter highlights one legend category.
func (s *Session) SetHoveredFilter(c models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlight = &c
}

// ClearHoveredFilter removes the legend highlight.
func (s *Session) ClearHoveredFilter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlight = nil
}

// HoveredFilter returns the highlighted category, if any.
func (s *Session) HoveredFilter() (models.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.highlight == nil {
		return 0, false
	}
	return *s.highlight, true
}

// ToggleCategory flips a legend category and reflows the layout. It
// returns the new enabled flag.
func (s *Session) ToggleCategory(c models.Category) (bool, error) {
	if c == models.CategoryCentral || c == models.CategoryTrack {
		return false, ErrNotToggleable
	}
	s.mu.Lock()
	if s.state == StateDestroyed {
		s.mu.Unlock()
		return false, nil
	}
	s.enabled[c] = !s.enabled[c]
	on := s.enabled[c]
	if s.sim != nil {
		s.reheatLocked(ReflowAlpha)
	}
	s.mu.Unlock()

	s.emit([]pending{{events.TopicCategoryToggled, events.CategoryToggled{
		DepartmentID: s.dept.ID, Category: c, Enabled: on,
	}}})
	return on, nil
}

// HoverAt updates the pointer position. Hovering near a degree node that
// carries tracks fans its tracks out around it; moving away folds them
// back. It returns the id of the expanded degree node, or "".
func (s *Session) HoverAt(x, y float64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDestroyed || s.sim == nil {
		return ""
	}

	var hit *models.Node
	if s.enabled.Has(models.CategoryDegree) {
		for _, n := range s.sim.Nodes() {
			if n.HasTracks() && n.DistanceTo(x, y) < n.Radius+HoverSlack {
				hit = n
			}
		}
	}

	switch {
	case hit == nil && s.hoverNode != "":
		s.removeTracksLocked()
	case hit != nil && hit.ID != s.hoverNode:
		s.addTracksLocked(hit)
	}
	return s.hoverNode
}

func (s *Session) addTracksLocked(deg *models.Node) {
	s.removeTracksLocked()
	deg.Pin(deg.X, deg.Y)

	nodes := s.sim.Nodes()
	for i, pos := range trackPositions(deg.X, deg.Y, len(deg.Tracks)) {
		tn := models.NewNode(TrackID(deg.ID, i), deg.Tracks[i], models.CategoryTrack)
		tn.ParentID = deg.ID
		tn.SetPosition(pos[0], pos[1])
		tn.ApplyZoom(s.zoom)
		if err := s.graph.AddNode(tn); err != nil {
			s.log.Warn("skipping track", "id", tn.ID, "error", err)
			continue
		}
		if err := s.graph.AddLink(models.Link{Source: deg.ID, Target: tn.ID, Category: models.CategoryTrack}); err != nil {
			s.log.Warn("skipping track link", "id", tn.ID, "error", err)
		}
		s.trackIDs = append(s.trackIDs, tn.ID)
		nodes = append(nodes, tn)
	}
	s.sim.SetNodes(nodes)
	s.syncLinksLocked()
	s.reheatLocked(TrackAddAlpha)
	s.hoverNode = deg.ID
}

func (s *Session) removeTracksLocked() {
	if deg := s.graph.Node(s.hoverNode); deg != nil {
		deg.Unpin()
	}
	s.hoverNode = ""
	if len(s.trackIDs) == 0 {
		return
	}

	drop := make(map[string]bool, len(s.trackIDs))
	for _, id := range s.trackIDs {
		drop[id] = true
		s.graph.RemoveNode(id)
	}
	s.trackIDs = nil

	s.sim.SetNodes(models.FilterNodes(s.sim.Nodes(), func(n *models.Node) bool {
		return !drop[n.ID]
	}))
	s.syncLinksLocked()
	s.reheatLocked(TrackDropAlpha)
}

// Tracks returns the ids of the track nodes currently fanned out.
func (s *Session) Tracks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.trackIDs...)
}

// ClickAt publishes NodeClicked for the topmost visible node under (x, y).
func (s *Session) ClickAt(x, y float64) (*models.Node, bool) {
	s.mu.Lock()
	if s.state == StateDestroyed || s.sim == nil {
		s.mu.Unlock()
		return nil, false
	}
	var hit *models.Node
	for _, n := range s.sim.Nodes() {
		if s.enabled.Visible(n.Category) && n.DistanceTo(x, y) <= n.Radius {
			hit = n
		}
	}
	if hit == nil {
		s.mu.Unlock()
		return nil, false
	}
	clicked := *hit
	s.mu.Unlock()

	s.emit([]pending{{events.TopicNodeClicked, events.NodeClicked{
		DepartmentID: s.dept.ID,
		NodeID:       clicked.ID,
		Name:         clicked.Name,
		Category:     clicked.Category,
	}}})
	return &clicked, true
}

// ZoomIn increases the zoom one step, up to MaxZoom.
func (s *Session) ZoomIn() float64 {
	return s.zoomBy(ZoomStep)
}

// ZoomOut decreases the zoom one step, down to MinZoom.
func (s *Session) ZoomOut() float64 {
	return s.zoomBy(-ZoomStep)
}

// ZoomLevel returns the current zoom.
func (s *Session) ZoomLevel() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

func (s *Session) zoomBy(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	z := clampZoom(s.zoom + delta)
	if z == s.zoom || s.state == StateDestroyed {
		return s.zoom
	}
	s.zoom = z
	for _, n := range s.graph.Nodes() {
		n.ApplyZoom(z)
	}
	if s.sim != nil {
		cx, cy := s.width/2, s.height/2
		s.sim.SetForce(ForceCollide, physics.NewCollide(collideRadius(z), CollideStrength))
		s.sim.SetForce(ForceRadial, physics.NewRadial(ringRadius(s.width, s.height, z), cx, cy, RadialStrength))
		s.reheatLocked(ReflowAlpha)
	}
	return z
}

// Resize recenters the layout on a new canvas size.
func (s *Session) Resize(width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width <= 0 || height <= 0 || s.state == StateDestroyed {
		return
	}
	s.width, s.height = width, height
	cx, cy := width/2, height/2
	if c := s.graph.Node(CentralID); c != nil {
		c.Pin(cx, cy)
	}
	if s.sim == nil {
		return
	}
	s.sim.SetForce(ForceRadial, physics.NewRadial(ringRadius(width, height, s.zoom), cx, cy, RadialStrength))
	s.sim.SetForce(ForceCenter, physics.NewCenter(cx, cy, CenterStrength))
	s.sim.SetForce(ForceLegendAvoid, physics.NewLegendAvoid(width, height))
	s.sim.SetForce(ForceBounds, physics.NewBounds(width, height, BoundsPadding))
	if pop, ok := s.sim.Force(ForceRadialPop).(*physics.Radial); ok {
		s.sim.SetForce(ForceRadialPop, physics.NewRadial(ringRadius(width, height, s.zoom), cx, cy, pop.Strength))
	}
	s.reheatLocked(ReflowAlpha)
}

// Destroy tears the session down: pending reveals and frames are
// cancelled, the graph is cleared and the enabled set returns to central
// only. Destroying twice is a no-op.
func (s *Session) Destroy() {
	s.mu.Lock()
	if s.state == StateDestroyed {
		s.mu.Unlock()
		return
	}
	s.state = StateDestroyed
	if s.sim != nil {
		s.sim.Stop()
		s.sim = nil
	}
	s.graph = graph.New()
	s.enabled = NewCategories()
	s.highlight = nil
	s.hoverNode = ""
	s.trackIDs = nil
	s.mu.Unlock()

	s.loop.Stop()
	s.timers.StopAll()
	s.log.Debug("visualization destroyed", "session", s.id)
	s.emit([]pending{{events.TopicVisualizationDestroyed, events.VisualizationDestroyed{
		DepartmentID: s.dept.ID, SessionID: s.id,
	}}})
}

func (s *Session) emit(evs []pending) {
	for _, ev := range evs {
		s.bus.Publish(context.Background(), ev.topic, ev.payload)
	}
}
