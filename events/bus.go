package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Handler receives delivered events.
type Handler func(Event)

// Bus is an in-process fan-out of events. Handlers run synchronously on the
// publishing goroutine, in subscription order. After local delivery the
// event is forwarded to the configured Publisher.
type Bus struct {
	mu     sync.Mutex
	next   int
	subs   map[Topic][]subscription
	all    []subscription
	pub    Publisher
	now    func() time.Time
	logger *slog.Logger

	failures atomic.Int64
}

type subscription struct {
	id int
	fn Handler
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithPublisher mirrors every event to p.
func WithPublisher(p Publisher) BusOption {
	return func(b *Bus) { b.pub = p }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) BusOption {
	return func(b *Bus) { b.now = now }
}

// WithLogger sets the logger used for publisher failures.
func WithLogger(l *slog.Logger) BusOption {
	return func(b *Bus) { b.logger = l }
}

// NewBus creates an empty bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subs:   make(map[Topic][]subscription),
		pub:    &NoopPublisher{},
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn for one topic. The returned function removes it.
func (b *Bus) Subscribe(topic Topic, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.subs[topic] = remove(b.subs[topic], id)
	}
}

// SubscribeAll registers fn for every topic.
func (b *Bus) SubscribeAll(fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.all = append(b.all, subscription{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = remove(b.all, id)
	}
}

// Publish delivers payload to local subscribers and then to the Publisher.
// Delivery is fire-and-forget: a Publisher failure is logged and counted,
// never surfaced to the caller.
func (b *Bus) Publish(ctx context.Context, topic Topic, payload any) {
	ev := Event{Topic: topic, Time: b.now(), Payload: payload}

	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[topic])+len(b.all))
	for _, s := range b.subs[topic] {
		handlers = append(handlers, s.fn)
	}
	for _, s := range b.all {
		handlers = append(handlers, s.fn)
	}
	pub := b.pub
	b.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}

	if err := pub.Publish(ctx, string(topic), payload); err != nil {
		b.failures.Add(1)
		b.logger.Warn("event publish failed", "topic", topic, "error", err)
	}
}

// Failures reports how many Publisher calls have failed.
func (b *Bus) Failures() int64 { return b.failures.Load() }

// Close closes the Publisher.
func (b *Bus) Close() error {
	b.mu.Lock()
	pub := b.pub
	b.pub = &NoopPublisher{}
	b.mu.Unlock()
	return pub.Close()
}

func remove(subs []subscription, id int) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}
