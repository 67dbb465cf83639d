package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	defaultMaxRetryCount = 10
	retryCountHeader     = "x-retry-count"
)

var (
	// ErrRetryCountExceeded describes that a message has reached the maximum allowed retry count.
	ErrRetryCountExceeded = errors.New("retries count exceeded")
)

// delivery interface for testing purposes
type delivery interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
	Reject(requeue bool) error
	GetHeaders() amqp.Table
	GetBody() []byte
	GetRoutingKey() string
}

// amqpDeliveryAdapter adapts amqp.Delivery to our delivery interface
type amqpDeliveryAdapter struct {
	amqp.Delivery
}

func (a *amqpDeliveryAdapter) GetHeaders() amqp.Table {
	return a.Headers
}

func (a *amqpDeliveryAdapter) GetBody() []byte {
	return a.Body
}

func (a *amqpDeliveryAdapter) GetRoutingKey() string {
	return a.RoutingKey
}

// NewAmqpDeliveryAdapter creates a new adapter for amqp.Delivery
func NewAmqpDeliveryAdapter(d amqp.Delivery) delivery {
	return &amqpDeliveryAdapter{Delivery: d}
}

// Message represents a message that can be published or consumed. The wire
// format is the bare JSON payload, no envelope, so any subscriber sees the
// event exactly as the producer serialized it.
type Message struct {
	Body any `json:"-"`

	raw          []byte
	amqpDelivery delivery
}

func (m *Message) marshal() ([]byte, error) {
	content, err := json.Marshal(m.Body)
	if err != nil {
		return nil, fmt.Errorf("could not marshal message: %w", err)
	}

	return content, nil
}

// Raw returns the consumed payload bytes as they arrived on the wire.
func (m *Message) Raw() []byte {
	return m.raw
}

// Topic returns the routing key the message was delivered with.
func (m *Message) Topic() string {
	if m.amqpDelivery == nil {
		return ""
	}

	return m.amqpDelivery.GetRoutingKey()
}

// Unmarshal parses the consumed payload and stores the result in the value pointed to by target.
func (m *Message) Unmarshal(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return errors.New("target must be a non-nil pointer")
	}

	data := m.raw
	if data == nil {
		var err error
		if data, err = json.Marshal(m.Body); err != nil {
			return fmt.Errorf("could not marshal message body: %w", err)
		}
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("could not unmarshal into target: %w", err)
	}

	return nil
}

// RetryCount returns the current number of retries for the receiver message.
func (m *Message) RetryCount() (int, error) {
	headers := m.amqpDelivery.GetHeaders()
	val, ok := headers[retryCountHeader]
	if !ok {
		return 0, nil // No retry count header means first attempt
	}

	strVal, ok := val.(string)
	if !ok {
		return 0, errors.New("custom header 'x-retry-count' does not contain a string")
	}

	intVal, err := strconv.Atoi(strVal)
	if err != nil {
		return 0, errors.New("could not convert value to integer")
	}

	return intVal, nil
}

// MsgController controls the positive or negative acknowledgement of consumed messages.
type MsgController struct {
	ch       channel
	exchange string
}

// Ack positively acknowledges a consumed message. For a durable named queue
// this is the consumer-group offset commit.
func (ctrl *MsgController) Ack(m Message) error {
	return m.amqpDelivery.Ack(false)
}

// Nack negatively acknowledges a consumed message and requeues it, so the
// broker redelivers it at the head of the queue. Repeated failures block the
// queue until an operator intervenes, which is the intended failure mode.
func (ctrl *MsgController) Nack(m Message) error {
	return m.amqpDelivery.Nack(false, true)
}

// Reject negatively acknowledges a consumed message without requeueing it.
func (ctrl *MsgController) Reject(m Message) error {
	return m.amqpDelivery.Reject(false)
}

// Requeue re-publishes a message to the tail of its topic with an incremented
// retry counter, then acks the original delivery.
func (ctrl *MsgController) Requeue(m Message) error {
	retryCount, err := m.RetryCount()
	if err != nil {
		return fmt.Errorf("failed to get retry count: %w", err)
	}
	if retryCount > defaultMaxRetryCount {
		return ErrRetryCountExceeded
	}

	body := m.raw
	if body == nil {
		if body, err = m.marshal(); err != nil {
			return err
		}
	}

	err = ctrl.ch.publish(
		ctrl.exchange,
		m.Topic(),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			Body: body,
			Headers: amqp.Table{
				retryCountHeader: strconv.Itoa(retryCount + 1),
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to re-publish message: %w", err)
	}

	if err := m.amqpDelivery.Ack(false); err != nil {
		return fmt.Errorf("failed to ack the message: %w", err)
	}

	return nil
}
