// Package anim schedules delayed callbacks and per-frame updates.
//
// Components never call time.AfterFunc directly; they take a Scheduler so
// that the same code runs against the wall clock in the server and against
// a manual clock in tests and offline frame rendering.
package anim

import (
	"container/heap"
	"sync"
	"time"
)

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// call stopped the timer.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler uses the process clock.
type RealScheduler struct{}

// Now returns the current time.
func (RealScheduler) Now() time.Time { return time.Now() }

// AfterFunc runs f on its own goroutine after d.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler is a virtual clock. Callbacks only run inside Advance, in
// deadline order, on the caller's goroutine.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending timerQueue
}

// NewManualScheduler returns a clock starting at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Now returns the virtual time.
func (m *ManualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc queues f to run once the clock has advanced by d.
func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{
		sched:    m,
		deadline: m.now.Add(d),
		seq:      m.seq,
		fn:       f,
	}
	heap.Push(&m.pending, t)
	return t
}

// Advance moves the clock forward by d, running every callback that falls
// due, including callbacks scheduled by callbacks run during this call.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	for m.pending.Len() > 0 && !m.pending[0].deadline.After(target) {
		t := heap.Pop(&m.pending).(*manualTimer)
		m.now = t.deadline
		t.fired = true
		m.mu.Unlock()
		t.fn()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// Pending returns the number of queued callbacks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending.Len()
}

type manualTimer struct {
	sched    *ManualScheduler
	deadline time.Time
	seq      uint64
	fn       func()
	index    int
	fired    bool
	stopped  bool
}

func (t *manualTimer) Stop() bool {
	m := t.sched
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	heap.Remove(&m.pending, t.index)
	return true
}

// timerQueue orders timers by deadline, then by scheduling order.
type timerQueue []*manualTimer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].deadline.Equal(q[j].deadline) {
		return q[i].seq < q[j].seq
	}
	return q[i].deadline.Before(q[j].deadline)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*manualTimer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
