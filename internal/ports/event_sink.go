package ports

import "github.com/mjolner/svc-commerce-events/internal/domain"

// EventSink receives relayed bus records for delivery to connected clients.
type EventSink interface {
	Broadcast(event domain.RelayEvent)
}
