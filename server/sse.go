package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TFMV/neongraph/events"
	"github.com/goccy/go-json"
)

const (
	sseClientBuffer      = 64
	sseKeepaliveInterval = 15 * time.Second
)

type sseEvent struct {
	ID    uint64
	Topic string
	Data  []byte
}

type sseClient struct {
	topics []string // empty matches everything
	ch     chan *sseEvent
}

// Hub fans bus events out to connected SSE clients. Slow clients drop
// events rather than block the publisher.
type Hub struct {
	mu      sync.RWMutex
	clients map[*sseClient]struct{}
	nextID  atomic.Uint64
	done    chan struct{}
	once    sync.Once
	unsub   func()
	log     *slog.Logger
}

// NewHub subscribes a hub to every topic on bus.
func NewHub(bus *events.Bus, log *slog.Logger) *Hub {
	h := &Hub{
		clients: make(map[*sseClient]struct{}),
		done:    make(chan struct{}),
		log:     log,
	}
	h.unsub = bus.SubscribeAll(h.deliver)
	return h
}

func (h *Hub) deliver(ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Warn("failed to marshal event for SSE broadcast", "topic", ev.Topic, "error", err)
		return
	}
	h.broadcast(string(ev.Topic), data)
}

func (h *Hub) broadcast(topic string, data []byte) {
	evt := &sseEvent{ID: h.nextID.Add(1), Topic: topic, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.matches(topic) {
			continue
		}
		select {
		case c.ch <- evt:
		default:
			h.log.Debug("dropping event for slow client", "topic", topic)
		}
	}
}

func (h *Hub) subscribe(topics []string) *sseClient {
	c := &sseClient{topics: topics, ch: make(chan *sseEvent, sseClientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close detaches the hub from the bus and ends every stream.
func (h *Hub) Close() {
	h.once.Do(func() {
		h.unsub()
		close(h.done)
	})
}

// ServeHTTP streams events until the client goes away or the hub closes.
// The optional topics query parameter is a comma-separated list of
// patterns where "*" matches one segment and ">" the rest.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	var topics []string
	if q := r.URL.Query().Get("topics"); q != "" {
		for _, t := range strings.Split(q, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}

	client := h.subscribe(topics)
	defer h.unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		case evt := <-client.ch:
			fmt.Fprintf(w, "id:%d\nevent:%s\ndata:%s\n\n", evt.ID, evt.Topic, evt.Data)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

func (c *sseClient) matches(topic string) bool {
	if len(c.topics) == 0 {
		return true
	}
	for _, p := range c.topics {
		if matchTopic(p, topic) {
			return true
		}
	}
	return false
}

// matchTopic matches dot-separated topics NATS style.
func matchTopic(pattern, topic string) bool {
	if pattern == topic {
		return true
	}
	pp := strings.Split(pattern, ".")
	tp := strings.Split(topic, ".")
	for i, part := range pp {
		if part == ">" {
			return i < len(tp)
		}
		if i >= len(tp) || (part != "*" && part != tp[i]) {
			return false
		}
	}
	return len(pp) == len(tp)
}
