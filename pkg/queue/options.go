package queue

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type connectionOptions struct {
	timeout        *time.Duration
	reconnectDelay *time.Duration
	logger         Logger
}

type connectionOption func(options *connectionOptions)

// WithLogger returns a connectionOption which sets the logger when a connection is created.
func WithLogger(l Logger) connectionOption {
	return func(o *connectionOptions) {
		o.logger = l
	}
}

// WithConnectionTimeout returns a connectionOption which sets the timeout used when establishing a connection.
func WithConnectionTimeout(timeout time.Duration) connectionOption {
	return func(o *connectionOptions) {
		o.timeout = &timeout
	}
}

// WithReconnectDelay returns a connectionOption which sets the delay between reconnection attempts.
func WithReconnectDelay(delay time.Duration) connectionOption {
	return func(o *connectionOptions) {
		o.reconnectDelay = &delay
	}
}

// publisherOptions configure a publish call. publisherOptions are set by the
// PublisherOption values passed to PublishWithOptions.
type publisherOptions struct {
	timeout   time.Duration
	messageID string
	headers   amqp.Table
}

// PublisherOption configures a single publish call. The type is exported so
// alternative Queue implementations can carry the same signature.
type PublisherOption func(options *publisherOptions)

const (
	publishingTimeout = 3 * time.Second
)

// WithPublishingTimeout returns a PublisherOption which sets the timeout used when
// publishing the message.
func WithPublishingTimeout(d time.Duration) PublisherOption {
	return func(o *publisherOptions) {
		o.timeout = d
	}
}

// WithMessageID returns a PublisherOption which stamps the message-id property,
// letting consumers deduplicate under at-least-once delivery.
func WithMessageID(id string) PublisherOption {
	return func(o *publisherOptions) {
		o.messageID = id
	}
}

// WithHeaders returns a PublisherOption which sets custom message headers.
func WithHeaders(headers amqp.Table) PublisherOption {
	return func(o *publisherOptions) {
		o.headers = headers
	}
}

type consumerOptions struct {
	errHandler    func(error)
	logger        Logger
	prefetchCount int
}

// ConsumerOption configures a consume loop.
type ConsumerOption func(*consumerOptions)

// WithErrorHandler returns a ConsumerOption which sets a handler for errors that occur when consuming messages.
func WithErrorHandler(handler func(error)) ConsumerOption {
	return func(o *consumerOptions) {
		o.errHandler = handler
	}
}

// WithConsumingLogger returns a ConsumerOption which sets the logger when consuming messages.
func WithConsumingLogger(logger Logger) ConsumerOption {
	return func(o *consumerOptions) {
		o.logger = logger
	}
}

// WithPrefetchCount returns a ConsumerOption which bounds unacknowledged
// deliveries on the channel. A prefetch of 1 keeps redelivery on failure at
// the head of the queue.
func WithPrefetchCount(count int) ConsumerOption {
	return func(o *consumerOptions) {
		o.prefetchCount = count
	}
}

func defaultPublisherOptions() publisherOptions {
	return publisherOptions{
		timeout: publishingTimeout,
	}
}

func defaultConsumerOptions() consumerOptions {
	return consumerOptions{
		errHandler: func(_ error) {},
	}
}
