package anim

import (
	"sync"
	"time"
)

// Loop calls a frame function every interval until stopped. The frame
// function may call Stop, and Start again later, without deadlocking.
type Loop struct {
	sched    Scheduler
	interval time.Duration
	frame    func()

	mu      sync.Mutex
	timer   Timer
	running bool
	gen     uint64
}

// NewLoop creates a stopped frame loop.
func NewLoop(sched Scheduler, interval time.Duration, frame func()) *Loop {
	return &Loop{sched: sched, interval: interval, frame: frame}
}

// Start requests the first frame. Starting a running loop is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.running = true
	l.gen++
	l.scheduleLocked()
}

// Stop cancels the pending frame request.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.running = false
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

// Running reports whether frames are still being requested.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Loop) scheduleLocked() {
	gen := l.gen
	l.timer = l.sched.AfterFunc(l.interval, func() { l.tick(gen) })
}

// tick runs one frame. A Stop then Start from inside the frame begins a new
// generation, so the old chain must not reschedule.
func (l *Loop) tick(gen uint64) {
	l.mu.Lock()
	if !l.running || gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	l.frame()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running && gen == l.gen {
		l.scheduleLocked()
	}
}

// TimerSet tracks pending one-shot timers so they can be cancelled together.
// Timers drop out of the set once they fire.
type TimerSet struct {
	mu     sync.Mutex
	next   uint64
	timers map[uint64]Timer
}

// After schedules f and remembers the timer until it fires or is stopped.
func (s *TimerSet) After(sched Scheduler, d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timers == nil {
		s.timers = make(map[uint64]Timer)
	}
	s.next++
	id := s.next
	// Held across AfterFunc so a zero-delay real timer cannot forget id
	// before it is stored.
	s.timers[id] = sched.AfterFunc(d, func() {
		s.forget(id)
		f()
	})
}

func (s *TimerSet) forget(id uint64) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()
}

// Len reports how many timers are still pending.
func (s *TimerSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// StopAll cancels every remembered timer.
func (s *TimerSet) StopAll() {
	s.mu.Lock()
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()
	for _, t := range timers {
		t.Stop()
	}
}
