package sse

import (
	"net/http"
	"sync"
	"time"

	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
)

// Ensure Hub implements the EventSink interface
var _ ports.EventSink = (*Hub)(nil)

type client struct {
	events chan domain.RelayEvent
}

// Hub fans consumed bus events out to connected SSE clients. Delivery is
// best-effort: a client that cannot keep up loses events rather than backing
// the relay up into the broker.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	cfg     config.SSEConfig
	logger  infrastructure.Logger
}

func NewHub(cfg config.SSEConfig, logger infrastructure.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		cfg:     cfg,
		logger:  logger,
	}
}

// Broadcast delivers the event to every connected client without blocking.
func (h *Hub) Broadcast(event domain.RelayEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.events <- event:
		default:
			// Slow client, its buffer is full. Drop this event for it.
			h.logger.Debug().Str("topic", event.Topic).Msg("dropped event for slow sse client")
		}
	}
}

func (h *Hub) register() *client {
	c := &client{
		events: make(chan domain.RelayEvent, h.cfg.ClientBufferSize),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().Int("clients", count).Msg("sse client connected")

	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().Int("clients", count).Msg("sse client disconnected")
}

// ServeHTTP streams broadcast events to one client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	c := h.register()
	defer h.unregister(c)

	heartbeat := time.NewTicker(h.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case event := <-c.events:
			w.Write([]byte("event: " + event.Topic + "\n"))
			w.Write([]byte("data: " + string(event.Payload) + "\n\n"))
			flusher.Flush()

		case <-heartbeat.C:
			// Comment line keeps intermediaries from closing an idle stream.
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()
		}
	}
}
