// Package server exposes the intro, the department overview and detail-view
// sessions over HTTP, and streams bus events to browsers with SSE.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/TFMV/neongraph/anim"
	"github.com/TFMV/neongraph/circuit"
	"github.com/TFMV/neongraph/events"
	"github.com/TFMV/neongraph/geom"
	"github.com/TFMV/neongraph/ingest"
	"github.com/TFMV/neongraph/models"
	"github.com/TFMV/neongraph/reveal"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnknownDepartment is returned for department ids not in the dataset.
	ErrUnknownDepartment = errors.New("unknown department")
	// ErrSessionNotFound is returned for session ids that were never created
	// or are already destroyed.
	ErrSessionNotFound = errors.New("session not found")
)

// Configuration for the server
type Config struct {
	Addr            string
	Reveal          reveal.Options
	Intro           circuit.Timing
	Title           *geom.Box // intro paths converge here when set
	Seed            int64
	WatchPath       string // reload the dataset when this file changes
	Debounce        time.Duration
	ShutdownTimeout time.Duration
	MaxSessions     int           // opening one more evicts the least recently used
	SessionIdle     time.Duration // sessions untouched this long are destroyed
}

// session is an open detail view and when a request last touched it.
type session struct {
	sess     *reveal.Session
	lastUsed time.Time
	seq      uint64
}

// Server owns the dataset, the intro animation and every open session.
type Server struct {
	cfg     Config
	log     *slog.Logger
	bus     *events.Bus
	sched   anim.Scheduler
	visited *reveal.Visited
	hub     *Hub
	mux     *http.ServeMux
	sweeper *anim.Loop

	mu       sync.RWMutex
	dataset  *models.Dataset
	sessions map[string]*session
	touches  uint64
	intro    *circuit.Animation
	restarts int64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithBus shares an event bus with the server.
func WithBus(b *events.Bus) Option {
	return func(s *Server) { s.bus = b }
}

// WithScheduler drives the intro and sessions from sched.
func WithScheduler(sched anim.Scheduler) Option {
	return func(s *Server) { s.sched = sched }
}

// New creates a server over ds. Nothing runs until Serve or Run.
func New(cfg Config, ds *models.Dataset, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		log:      slog.Default(),
		sched:    anim.RealScheduler{},
		visited:  reveal.NewVisited(),
		dataset:  ds,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = events.NewBus(events.WithLogger(s.log))
	}
	if s.dataset == nil {
		s.dataset = ingest.Fallback()
	}
	if s.cfg.Intro.FrameInterval <= 0 {
		s.cfg.Intro = circuit.DefaultTiming()
	}
	if s.cfg.Reveal.Width <= 0 || s.cfg.Reveal.Height <= 0 {
		s.cfg.Reveal = reveal.DefaultOptions()
	}
	if s.cfg.ShutdownTimeout <= 0 {
		s.cfg.ShutdownTimeout = 5 * time.Second
	}
	if s.cfg.MaxSessions <= 0 {
		s.cfg.MaxSessions = 64
	}
	if s.cfg.SessionIdle <= 0 {
		s.cfg.SessionIdle = 10 * time.Minute
	}
	s.sweeper = anim.NewLoop(s.sched, max(s.cfg.SessionIdle/4, time.Second), func() {
		s.EvictIdle(context.Background())
	})
	s.hub = NewHub(s.bus, s.log)
	s.intro = s.newIntro()
	s.mux = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Bus returns the event bus sessions publish to.
func (s *Server) Bus() *events.Bus { return s.bus }

// Dataset returns the current dataset.
func (s *Server) Dataset() *models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Reload swaps in a new dataset. Open sessions keep the department they
// were created with.
func (s *Server) Reload(ds *models.Dataset) {
	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()
	s.log.Info("dataset reloaded", "source", ds.Source, "departments", len(ds.Departments))
}

// Run listens on cfg.Addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve starts the intro, serves HTTP on ln and, when configured, watches
// the data file. It returns after ctx is cancelled and shutdown completes,
// or as soon as any part fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("starting server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	if s.cfg.WatchPath != "" {
		w := ingest.NewWatcher(s.cfg.WatchPath,
			ingest.WithDebounce(s.cfg.Debounce),
			ingest.WithWatchLogger(s.log))
		g.Go(func() error {
			return w.Run(ctx, s.Reload)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down server")
		s.hub.Close()
		s.closeAll()
		sctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	s.intro.Start()
	return g.Wait()
}

func (s *Server) newIntro() *circuit.Animation {
	gen := circuit.NewGenerator(s.cfg.Reveal.Width, s.cfg.Reveal.Height, s.cfg.Seed+s.restarts)
	if s.cfg.Title != nil {
		gen.SetTarget(*s.cfg.Title)
	}
	return circuit.NewAnimation(gen, s.sched, s.cfg.Intro, nil, s.log)
}

// Intro returns the current intro animation.
func (s *Server) Intro() *circuit.Animation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.intro
}

// RestartIntro stops the current intro and starts a fresh one.
func (s *Server) RestartIntro() *circuit.Animation {
	s.mu.Lock()
	old := s.intro
	s.restarts++
	s.intro = s.newIntro()
	a := s.intro
	s.mu.Unlock()

	old.Stop()
	a.Start()
	return a
}

// SkipIntro force-completes the intro and publishes IntroSkipped.
func (s *Server) SkipIntro(ctx context.Context) int {
	a := s.Intro()
	a.ForceComplete()
	n := a.Count()
	s.bus.Publish(ctx, events.TopicIntroSkipped, events.IntroSkipped{Paths: n})
	return n
}

// OpenSession starts a detail view for the department and publishes
// DetailViewEntered. At MaxSessions the least recently used session is
// closed first.
func (s *Server) OpenSession(ctx context.Context, departmentID string) (*reveal.Session, error) {
	dept, ok := s.Dataset().FindDepartment(departmentID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDepartment, departmentID)
	}
	sess := reveal.NewSession(dept, s.cfg.Reveal, reveal.Env{
		Scheduler: s.sched,
		Bus:       s.bus,
		Visited:   s.visited,
		Logger:    s.log,
	})

	s.mu.Lock()
	var evicted []*reveal.Session
	for len(s.sessions) >= s.cfg.MaxSessions {
		evicted = append(evicted, s.removeLocked(s.oldestLocked()))
	}
	s.touches++
	s.sessions[sess.ID()] = &session{sess: sess, lastUsed: s.sched.Now(), seq: s.touches}
	s.sweeper.Start()
	s.mu.Unlock()

	for _, old := range evicted {
		s.log.Info("session evicted", "session", old.ID(), "reason", "limit")
		s.endSession(ctx, old)
	}
	s.bus.Publish(ctx, events.TopicDetailViewEntered, events.DetailViewEntered{DepartmentID: dept.ID})
	sess.Start()
	return sess, nil
}

// Session looks up an open session and marks it used.
func (s *Server) Session(id string) (*reveal.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.touches++
	e.lastUsed = s.sched.Now()
	e.seq = s.touches
	return e.sess, nil
}

// Sessions returns how many sessions are open.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CloseSession destroys a session and publishes DetailViewExited.
func (s *Server) CloseSession(ctx context.Context, id string) error {
	s.mu.Lock()
	sess := s.removeLocked(id)
	s.mu.Unlock()
	if sess == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.endSession(ctx, sess)
	return nil
}

// EvictIdle closes every session not used within SessionIdle and returns
// how many were closed.
func (s *Server) EvictIdle(ctx context.Context) int {
	cutoff := s.sched.Now().Add(-s.cfg.SessionIdle)

	s.mu.Lock()
	var idle []*reveal.Session
	for id, e := range s.sessions {
		if !e.lastUsed.After(cutoff) {
			idle = append(idle, s.removeLocked(id))
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		s.log.Info("session evicted", "session", sess.ID(), "reason", "idle")
		s.endSession(ctx, sess)
	}
	return len(idle)
}

func (s *Server) oldestLocked() string {
	var id string
	var seq uint64
	for k, e := range s.sessions {
		if id == "" || e.seq < seq {
			id, seq = k, e.seq
		}
	}
	return id
}

func (s *Server) removeLocked(id string) *reveal.Session {
	e, ok := s.sessions[id]
	if !ok {
		return nil
	}
	delete(s.sessions, id)
	if len(s.sessions) == 0 {
		s.sweeper.Stop()
	}
	return e.sess
}

func (s *Server) endSession(ctx context.Context, sess *reveal.Session) {
	sess.Destroy()
	s.bus.Publish(ctx, events.TopicDetailViewExited, events.DetailViewExited{DepartmentID: sess.Department().ID})
}

func (s *Server) closeAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.sweeper.Stop()
	intro := s.intro
	s.mu.Unlock()

	intro.Stop()
	for _, e := range sessions {
		e.sess.Destroy()
	}
}
