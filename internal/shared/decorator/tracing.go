package decorator

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "commerce-events/handlers"

type (
	commandTracingDecorator[C any, R any] struct {
		base           CommandHandler[C, R]
		tracerProvider trace.TracerProvider
	}

	queryTracingDecorator[Q any, R any] struct {
		base           QueryHandler[Q, R]
		tracerProvider trace.TracerProvider
	}
)

func (d commandTracingDecorator[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	tracer := d.tracerProvider.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, "command."+actionName(cmd))
	defer span.End()

	result, err := d.base.Handle(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return result, err
}

func (d queryTracingDecorator[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	tracer := d.tracerProvider.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, "query."+actionName(query))
	defer span.End()

	result, err := d.base.Execute(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return result, err
}
