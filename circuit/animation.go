package circuit

import (
	"log/slog"
	"sync"
	"time"

	"github.com/TFMV/neongraph/anim"
	"github.com/TFMV/neongraph/geom"
)

// Timing controls how the intro runs against the clock.
type Timing struct {
	// FrameInterval is the delay between frames.
	FrameInterval time.Duration
	// SpawnBudget is how long new paths keep spawning.
	SpawnBudget time.Duration
	// HaltAfter stops the frame loop entirely.
	HaltAfter time.Duration
	// Schedule sets the delay between spawns.
	Schedule SpawnSchedule
}

// DefaultTiming is roughly 60fps for ten seconds.
func DefaultTiming() Timing {
	return Timing{
		FrameInterval: 16 * time.Millisecond,
		SpawnBudget:   8 * time.Second,
		HaltAfter:     10 * time.Second,
		Schedule:      DefaultSchedule,
	}
}

// Animation drives a Generator on a Scheduler: it spawns paths on the
// spawn schedule, ticks every frame and halts after HaltAfter.
type Animation struct {
	mu      sync.Mutex
	gen     *Generator
	sched   anim.Scheduler
	timing  Timing
	loop    *anim.Loop
	timers  anim.TimerSet
	started time.Time
	running bool
	frame   Frame
	onFrame func(Frame)
	log     *slog.Logger
}

// NewAnimation wires a generator to a scheduler. onFrame, if non-nil, is
// called after each tick with a fresh snapshot and without any lock held.
func NewAnimation(gen *Generator, sched anim.Scheduler, timing Timing, onFrame func(Frame), log *slog.Logger) *Animation {
	if log == nil {
		log = slog.Default()
	}
	if len(timing.Schedule) == 0 {
		timing.Schedule = DefaultSchedule
	}
	a := &Animation{
		gen:     gen,
		sched:   sched,
		timing:  timing,
		onFrame: onFrame,
		log:     log,
	}
	a.loop = anim.NewLoop(sched, timing.FrameInterval, a.tick)
	a.frame = gen.Snapshot()
	return a
}

// Start spawns the first path and begins the frame loop. Starting a running
// animation does nothing.
func (a *Animation) Start() {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	a.running = true
	a.started = a.sched.Now()
	a.mu.Unlock()

	a.log.Debug("intro started", "budget", a.timing.SpawnBudget, "halt", a.timing.HaltAfter)
	a.spawn()
	a.loop.Start()
	a.timers.After(a.sched, a.timing.HaltAfter, a.halt)
}

func (a *Animation) spawn() {
	a.mu.Lock()
	if !a.running || a.sched.Now().Sub(a.started) > a.timing.SpawnBudget {
		a.mu.Unlock()
		return
	}
	a.gen.SpawnNext()
	delay, more := a.timing.Schedule.Delay(a.gen.Count())
	a.mu.Unlock()

	if more {
		a.timers.After(a.sched, delay, a.spawn)
	}
}

func (a *Animation) tick() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.gen.Update()
	f := a.snapshotLocked()
	a.mu.Unlock()

	if a.onFrame != nil {
		a.onFrame(f)
	}
}

func (a *Animation) halt() {
	a.log.Debug("intro halted", "paths", a.Count())
	a.Stop()
}

// Stop cancels the frame loop and every pending spawn. The last frame stays
// available through Snapshot.
func (a *Animation) Stop() {
	a.mu.Lock()
	a.running = false
	a.snapshotLocked()
	a.mu.Unlock()

	a.loop.Stop()
	a.timers.StopAll()
}

// ForceComplete draws everything spawned so far to completion.
func (a *Animation) ForceComplete() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen.ForceComplete()
	a.frame = a.snapshotLocked()
}

// Running reports whether the animation is still producing frames.
func (a *Animation) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Count returns the number of spawned paths.
func (a *Animation) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen.Count()
}

// Snapshot returns the most recent frame.
func (a *Animation) Snapshot() Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frame
}

// SetTarget changes the title box new paths aim for.
func (a *Animation) SetTarget(box geom.Box) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen.SetTarget(box)
}

func (a *Animation) snapshotLocked() Frame {
	f := a.gen.Snapshot()
	f.Running = a.running
	if !a.started.IsZero() {
		f.Elapsed = a.sched.Now().Sub(a.started)
	}
	a.frame = f
	return f
}
