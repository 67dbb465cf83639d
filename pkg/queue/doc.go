// Package queue provides a RabbitMQ client used as the event bus for the
// commerce services: the outbox drainers publish through it and the
// cross-service consumers and the fan-out relay subscribe through it.
//
// # Overview
//
// The package offers a thin abstraction over the amqp091-go client with
// automatic reconnection, retry-aware connection establishment, explicit
// message acknowledgement control, and idempotent topology declaration.
// Events travel as bare JSON payloads; the routing key is the topic name.
//
// # Basic Usage
//
// Creating a queue instance and declaring the topology:
//
//	config := queue.Config{
//		Scheme:   "amqp",
//		Username: "guest",
//		Password: "guest",
//		Host:     "localhost",
//		Port:     5672,
//		Vhost:    "/",
//	}
//
//	q := queue.NewRabbitMQQueue(config)
//	if err := q.ConnectWithRetry(ctx, 10); err != nil {
//		log.Fatal(err)
//	}
//	defer q.Close()
//
//	err := q.EnsureTopology("commerce-events", "orders-service", []string{"users.status-changed"})
//
// Publishing an event:
//
//	err := q.Publish(ctx, "commerce-events", "users.created", payload)
//
// Consuming events:
//
//	handler := func(ctx context.Context, msg queue.Message, ctrl *queue.MsgController) error {
//		var payload map[string]any
//		if err := msg.Unmarshal(&payload); err != nil {
//			// poison message: settle it so it cannot block the queue
//			return ctrl.Ack(msg)
//		}
//
//		if err := process(payload); err != nil {
//			// redelivered on the next poll
//			return ctrl.Nack(msg)
//		}
//
//		return ctrl.Ack(msg)
//	}
//
//	err := q.Consume(ctx, "orders-service", "reaction-worker", handler)
//
// # Acknowledgement Semantics
//
// Ack commits consumer progress. Nack requeues the delivery so the broker
// redelivers it, deliberately blocking the queue head on a persistently
// failing handler. Reject drops a delivery without requeueing. Requeue
// re-publishes to the tail with an incremented x-retry-count header.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The channel wrapper serializes
// channel access with a mutex and restores auto-deleted topology after
// reconnects.
package queue
