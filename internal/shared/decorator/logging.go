package decorator

import (
	"context"

	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
)

type (
	commandLoggingDecorator[C any, R any] struct {
		base   CommandHandler[C, R]
		logger infrastructure.Logger
	}

	queryLoggingDecorator[Q any, R any] struct {
		base   QueryHandler[Q, R]
		logger infrastructure.Logger
	}
)

func (d commandLoggingDecorator[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	name := actionName(cmd)

	d.logger.Debug().
		Str("command", name).
		Msg("executing command")

	result, err := d.base.Handle(ctx, cmd)
	if err != nil {
		d.logger.Error().
			Err(err).
			Str("command", name).
			Msg("command failed")

		return result, err
	}

	d.logger.Debug().
		Str("command", name).
		Msg("command executed successfully")

	return result, nil
}

func (d queryLoggingDecorator[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	name := actionName(query)

	d.logger.Debug().
		Str("query", name).
		Msg("executing query")

	result, err := d.base.Execute(ctx, query)
	if err != nil {
		d.logger.Error().
			Err(err).
			Str("query", name).
			Msg("query failed")

		return result, err
	}

	d.logger.Debug().
		Str("query", name).
		Msg("query executed successfully")

	return result, nil
}
