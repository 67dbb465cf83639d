package sse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
)

func newTestHub(bufferSize int, heartbeat time.Duration) *Hub {
	return NewHub(
		config.SSEConfig{
			HeartbeatInterval: heartbeat,
			ClientBufferSize:  bufferSize,
		},
		infrastructure.NewTestLogger(),
	)
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func TestBroadcastWithoutClients(t *testing.T) {
	t.Parallel()

	hub := newTestHub(4, time.Minute)

	// Nothing to deliver to, nothing to block on.
	hub.Broadcast(domain.RelayEvent{Topic: "orders.created"})
}

func TestBroadcastDropsEventsForSlowClient(t *testing.T) {
	t.Parallel()

	hub := newTestHub(1, time.Minute)
	c := hub.register()
	defer hub.unregister(c)

	first := domain.RelayEvent{Topic: "orders.created", Payload: json.RawMessage(`{"seq":1}`)}
	second := domain.RelayEvent{Topic: "orders.created", Payload: json.RawMessage(`{"seq":2}`)}

	hub.Broadcast(first)
	hub.Broadcast(second)

	// The buffer held the first event; the second was dropped, not queued.
	require.Len(t, c.events, 1)
	got := <-c.events
	assert.Equal(t, first.Payload, got.Payload)
}

func TestServeHTTPStreamsBroadcastEvents(t *testing.T) {
	t.Parallel()

	hub := newTestHub(4, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.ServeHTTP(rec, req)
	}()

	require.Eventually(t, func() bool {
		return hub.clientCount() == 1
	}, time.Second, 5*time.Millisecond, "client never registered")

	hub.Broadcast(domain.RelayEvent{
		Topic:   "users.status-changed",
		Payload: json.RawMessage(`{"userId":"42"}`),
	})

	// Wait for the stream loop to pick the event up, then hang up. Once the
	// buffer is drained the write precedes the loop's next select, so the
	// cancellation cannot cut the frame short.
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()

		for c := range hub.clients {
			if len(c.events) != 0 {
				return false
			}
		}

		return true
	}, time.Second, 5*time.Millisecond, "event never drained to the stream")
	cancel()
	<-done

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: users.status-changed\n")
	assert.Contains(t, body, "data: {\"userId\":\"42\"}\n\n")

	assert.Zero(t, hub.clientCount(), "client must unregister on disconnect")
}

func TestServeHTTPSendsHeartbeats(t *testing.T) {
	t.Parallel()

	hub := newTestHub(4, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.ServeHTTP(rec, req)
	}()

	require.Eventually(t, func() bool {
		return hub.clientCount() == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.Contains(t, rec.Body.String(), ": heartbeat\n\n")
}
