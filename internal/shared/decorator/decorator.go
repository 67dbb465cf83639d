package decorator

import (
	"context"
	"fmt"
	"strings"

	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"go.opentelemetry.io/otel/trace"
)

type (
	// CommandHandler handles a write operation of type C and returns a result of type R.
	CommandHandler[C any, R any] interface {
		Handle(ctx context.Context, cmd C) (R, error)
	}

	// QueryHandler handles a read operation of type Q and returns a result of type R.
	QueryHandler[Q any, R any] interface {
		Execute(ctx context.Context, query Q) (R, error)
	}

	MetricsClient interface {
		Inc(key string, value int)
	}
)

func ApplyCommandDecorators[C any, R any](
	handler CommandHandler[C, R],
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient MetricsClient,
) CommandHandler[C, R] {
	return commandLoggingDecorator[C, R]{
		base: commandMetricsDecorator[C, R]{
			base: commandTracingDecorator[C, R]{
				base:           handler,
				tracerProvider: tracerProvider,
			},
			client: metricsClient,
		},
		logger: logger,
	}
}

func ApplyQueryDecorators[Q any, R any](
	handler QueryHandler[Q, R],
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient MetricsClient,
) QueryHandler[Q, R] {
	return queryLoggingDecorator[Q, R]{
		base: queryMetricsDecorator[Q, R]{
			base: queryTracingDecorator[Q, R]{
				base:           handler,
				tracerProvider: tracerProvider,
			},
			client: metricsClient,
		},
		logger: logger,
	}
}

// actionName derives a stable identifier from the command or query type name.
func actionName(action any) string {
	return strings.ToLower(strings.Split(fmt.Sprintf("%T", action), ".")[1])
}
