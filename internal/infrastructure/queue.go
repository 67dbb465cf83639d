package infrastructure

import (
	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/mjolner/svc-commerce-events/pkg/queue"
)

// Queue is an alias to the queue.Queue interface for backward compatibility
type Queue = queue.Queue

// NewQueue builds a RabbitMQ client from the service configuration.
func NewQueue(cfg config.QueueConfig, logger Logger) Queue {
	return queue.NewRabbitMQQueue(
		queue.Config{
			Scheme:   "amqp",
			Username: cfg.Username,
			Password: cfg.Password,
			Host:     cfg.Host,
			Port:     cfg.Port,
			Vhost:    cfg.VirtualHost,
		},
		queue.WithLogger(NewQueueLogger(logger)),
		queue.WithConnectionTimeout(cfg.ConnectTimeout),
	)
}
