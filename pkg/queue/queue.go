package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue represents the main queue interface for publishing and consuming messages
type Queue interface {
	// Publisher operations
	Publish(ctx context.Context, exchange, routingKey string, payload any) error
	PublishWithOptions(ctx context.Context, exchange, routingKey string, payload any, opts ...PublisherOption) error

	// Consumer operations
	Consume(ctx context.Context, queue, consumer string, handler MessageHandler, opts ...ConsumerOption) error
	StartConsumer(ctx context.Context, queue, consumer string, handler MessageHandler, opts ...ConsumerOption) (<-chan error, error)

	// Infrastructure operations
	DeclareExchange(name, kind string, durable, autoDelete bool) error
	DeclareQueue(name string, durable, autoDelete bool) (amqp.Queue, error)
	BindQueue(queueName, routingKey, exchangeName string) error
	EnsureTopology(exchange, queueName string, bindingKeys []string) error

	// Connection management
	Connect() error
	ConnectWithRetry(ctx context.Context, maxAttempts int) error
	Close() error
	IsConnected() bool
}

// MessageHandler defines the function signature for message processing
type MessageHandler func(ctx context.Context, msg Message, ctrl *MsgController) error

// RabbitMQQueue implements the Queue interface using RabbitMQ
type RabbitMQQueue struct {
	config         Config
	conn           *amqp.Connection
	channel        *ChannelWrapper
	logger         Logger
	mutex          sync.RWMutex
	reconnectDelay time.Duration
	exchange       string
	closed         bool
}

// NewRabbitMQQueue creates a new RabbitMQ queue implementation
func NewRabbitMQQueue(config Config, opts ...connectionOption) *RabbitMQQueue {
	options := &connectionOptions{
		reconnectDelay: &[]time.Duration{5 * time.Second}[0],
	}

	for _, opt := range opts {
		opt(options)
	}

	queue := &RabbitMQQueue{
		config:         config,
		reconnectDelay: *options.reconnectDelay,
		logger:         options.logger,
	}

	return queue
}

// Connect establishes a connection to RabbitMQ
func (q *RabbitMQQueue) Connect() error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.conn != nil && !q.conn.IsClosed() {
		return nil // Already connected
	}

	var err error
	q.conn, err = amqp.Dial(getURL(q.config))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	amqpCh, err := q.conn.Channel()
	if err != nil {
		q.conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	q.channel = &ChannelWrapper{
		amqpChan:       amqpCh,
		logger:         q.logger,
		mutex:          &sync.Mutex{},
		reconnectDelay: q.reconnectDelay,
	}

	if q.logger != nil {
		q.logger.Info().Msg("Successfully connected to RabbitMQ")
	}

	return nil
}

// ConnectWithRetry dials the broker until it succeeds, the attempt budget is
// exhausted, or the context is cancelled. The delay between attempts doubles
// up to the configured reconnect delay.
func (q *RabbitMQQueue) ConnectWithRetry(ctx context.Context, maxAttempts int) error {
	delay := 500 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if lastErr = q.Connect(); lastErr == nil {
			return nil
		}

		if q.logger != nil {
			q.logger.Error().Err(lastErr).Str("attempt", fmt.Sprintf("%d/%d", attempt, maxAttempts)).Msg("broker not reachable yet")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > q.reconnectDelay {
			delay = q.reconnectDelay
		}
	}

	return fmt.Errorf("broker unreachable after %d attempts: %w", maxAttempts, lastErr)
}

// Close closes the connection to RabbitMQ
func (q *RabbitMQQueue) Close() error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.closed = true

	if q.channel != nil {
		q.channel.Close()
	}

	if q.conn != nil && !q.conn.IsClosed() {
		return q.conn.Close()
	}

	return nil
}

// IsConnected returns true if connected to RabbitMQ
func (q *RabbitMQQueue) IsConnected() bool {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	return q.conn != nil && !q.conn.IsClosed()
}

// DeclareExchange declares an exchange
func (q *RabbitMQQueue) DeclareExchange(name, kind string, durable, autoDelete bool) error {
	if !q.IsConnected() {
		return fmt.Errorf("not connected to RabbitMQ")
	}

	return q.channel.ExchangeDeclare(name, kind, durable, autoDelete, false, false, nil)
}

// DeclareQueue declares a queue
func (q *RabbitMQQueue) DeclareQueue(name string, durable, autoDelete bool) (amqp.Queue, error) {
	if !q.IsConnected() {
		return amqp.Queue{}, fmt.Errorf("not connected to RabbitMQ")
	}

	return q.channel.QueueDeclare(name, durable, autoDelete, false, false, nil)
}

// BindQueue binds a queue to an exchange with a routing key
func (q *RabbitMQQueue) BindQueue(queueName, routingKey, exchangeName string) error {
	if !q.IsConnected() {
		return fmt.Errorf("not connected to RabbitMQ")
	}

	return q.channel.QueueBind(queueName, routingKey, exchangeName, false, nil)
}

// EnsureTopology declares the durable topic exchange, the durable named queue
// and its bindings. Declarations are idempotent, so every process runs this on
// startup regardless of which one got there first. A durable named queue keeps
// consumer progress across restarts the way a committed group offset would.
func (q *RabbitMQQueue) EnsureTopology(exchange, queueName string, bindingKeys []string) error {
	if err := q.DeclareExchange(exchange, "topic", true, false); err != nil {
		return fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}

	q.mutex.Lock()
	q.exchange = exchange
	q.mutex.Unlock()

	if queueName == "" {
		return nil
	}

	if _, err := q.DeclareQueue(queueName, true, false); err != nil {
		return fmt.Errorf("failed to declare queue %q: %w", queueName, err)
	}

	for _, key := range bindingKeys {
		if err := q.BindQueue(queueName, key, exchange); err != nil {
			return fmt.Errorf("failed to bind %q to %q: %w", queueName, key, err)
		}
	}

	return nil
}

// Publish publishes a message to an exchange with default options
func (q *RabbitMQQueue) Publish(ctx context.Context, exchange, routingKey string, payload any) error {
	return q.PublishWithOptions(ctx, exchange, routingKey, payload)
}

// PublishWithOptions publishes a message to an exchange with custom options
func (q *RabbitMQQueue) PublishWithOptions(ctx context.Context, exchange, routingKey string, payload any, opts ...PublisherOption) error {
	if !q.IsConnected() {
		return fmt.Errorf("not connected to RabbitMQ")
	}

	options := defaultPublisherOptions()
	for _, opt := range opts {
		opt(&options)
	}

	msg := &Message{Body: payload}
	body, err := msg.marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent, // Make message persistent
		Timestamp:    time.Now(),
	}
	if options.messageID != "" {
		publishing.MessageId = options.messageID
	}
	if len(options.headers) > 0 {
		publishing.Headers = options.headers
	}

	return q.channel.Publish(exchange, routingKey, false, false, publishing)
}

// Consume consumes messages from a queue (blocking)
func (q *RabbitMQQueue) Consume(ctx context.Context, queue, consumer string, handler MessageHandler, opts ...ConsumerOption) error {
	errChan, err := q.StartConsumer(ctx, queue, consumer, handler, opts...)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// StartConsumer starts consuming messages from a queue (non-blocking). The
// handler owns acknowledgement through the MsgController; the loop never
// settles deliveries on its own.
func (q *RabbitMQQueue) StartConsumer(ctx context.Context, queue, consumer string, handler MessageHandler, opts ...ConsumerOption) (<-chan error, error) {
	if !q.IsConnected() {
		return nil, fmt.Errorf("not connected to RabbitMQ")
	}

	options := defaultConsumerOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.prefetchCount > 0 {
		if err := q.channel.Qos(options.prefetchCount, 0, false); err != nil {
			return nil, fmt.Errorf("failed to set channel QoS: %w", err)
		}
	}

	deliveries := q.channel.Consume(queue, consumer, false, false, false, false, nil)
	errChan := make(chan error, 1)

	go func() {
		defer close(errChan)

		msgCtrl := &MsgController{
			ch:       q.channel,
			exchange: q.exchange,
		}

		for {
			select {
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			case delivery, ok := <-deliveries:
				if !ok {
					errChan <- fmt.Errorf("delivery channel closed")
					return
				}

				msgData := Message{
					raw:          delivery.Body,
					amqpDelivery: NewAmqpDeliveryAdapter(delivery),
				}

				if err := handler(ctx, msgData, msgCtrl); err != nil {
					if q.logger != nil {
						q.logger.Error().Err(err).Msg("message handler failed")
					}
					if options.errHandler != nil {
						options.errHandler(err)
					}
					continue
				}
			}
		}
	}()

	return errChan, nil
}
