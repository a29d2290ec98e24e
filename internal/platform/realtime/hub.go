// Package realtime is the single-process notification relay. Every connected
// client receives every event and filters by recipient itself.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/metrics"
)

// Envelope is the JSON frame sent to clients, keyed by event type.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Client is one connected listener with a bounded outbound queue.
type Client struct {
	send chan []byte
	once sync.Once
}

func newClient(buffer int) *Client {
	return &Client{send: make(chan []byte, buffer)}
}

// Send returns the outbound queue. It is closed when the hub drops the client.
func (c *Client) Send() <-chan []byte { return c.send }

func (c *Client) close() { c.once.Do(func() { close(c.send) }) }

type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	buffer  int
	closed  bool
	log     *zap.SugaredLogger
}

func NewHub(cfg *config.Config, log *zap.SugaredLogger) *Hub {
	buffer := cfg.Realtime.ClientBuffer
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{clients: make(map[*Client]struct{}), buffer: buffer, log: log}
}

var Module = fx.Options(
	fx.Provide(NewHub),
	fx.Invoke(registerHubClose),
)

func registerHubClose(lc fx.Lifecycle, h *Hub) {
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		h.Close()
		return nil
	}})
}

// Register adds a new client. It returns nil once the hub is closed.
func (h *Hub) Register() *Client {
	c := newClient(h.buffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.clients[c] = struct{}{}
	metrics.RealtimeClients.Inc()
	return c
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()
	metrics.RealtimeClients.Dec()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish encodes env once and offers it to every client without blocking.
// A client whose queue is full misses this event.
func (h *Hub) Publish(env Envelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		h.log.Errorw("realtime_encode_failed", "type", env.Type, "err", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- raw:
			metrics.RealtimeEvents.WithLabelValues(env.Type, "delivered").Inc()
		default:
			metrics.RealtimeEvents.WithLabelValues(env.Type, "dropped").Inc()
			h.log.Warnw("realtime_event_dropped", "type", env.Type)
		}
	}
}

// Close disconnects every client and rejects new registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
		metrics.RealtimeClients.Dec()
	}
}
