package infrastructure

import (
	"github.com/mjolner/svc-commerce-events/pkg/queue"
	"github.com/rs/zerolog"
)

type (
	queueLogger struct {
		logger Logger
	}

	queueLogEvent struct {
		event *zerolog.Event
	}
)

// NewQueueLogger adapts the service logger to the queue package's logging interface.
func NewQueueLogger(logger Logger) queue.Logger {
	return queueLogger{logger: logger.WithComponent("queue")}
}

func (l queueLogger) Info() queue.LogEvent {
	return queueLogEvent{event: l.logger.Logger.Info()}
}

func (l queueLogger) Error() queue.LogEvent {
	return queueLogEvent{event: l.logger.Logger.Error()}
}

func (l queueLogger) Debug() queue.LogEvent {
	return queueLogEvent{event: l.logger.Logger.Debug()}
}

func (e queueLogEvent) Msg(msg string) {
	e.event.Msg(msg)
}

func (e queueLogEvent) Err(err error) queue.LogEvent {
	return queueLogEvent{event: e.event.Err(err)}
}

func (e queueLogEvent) Str(key, value string) queue.LogEvent {
	return queueLogEvent{event: e.event.Str(key, value)}
}
