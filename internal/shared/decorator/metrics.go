package decorator

import (
	"context"
	"fmt"
	"time"
)

type (
	commandMetricsDecorator[C any, R any] struct {
		base   CommandHandler[C, R]
		client MetricsClient
	}

	queryMetricsDecorator[Q any, R any] struct {
		base   QueryHandler[Q, R]
		client MetricsClient
	}
)

func (d commandMetricsDecorator[C, R]) Handle(ctx context.Context, cmd C) (result R, err error) {
	start := time.Now()

	name := actionName(cmd)

	defer func() {
		end := time.Since(start)

		d.client.Inc(fmt.Sprintf("commands.%s.duration", name), int(end.Seconds()))

		if err == nil {
			d.client.Inc(fmt.Sprintf("commands.%s.success", name), 1)
		} else {
			d.client.Inc(fmt.Sprintf("commands.%s.failure", name), 1)
		}
	}()

	return d.base.Handle(ctx, cmd)
}

func (d queryMetricsDecorator[Q, R]) Execute(ctx context.Context, query Q) (result R, err error) {
	start := time.Now()

	name := actionName(query)

	defer func() {
		end := time.Since(start)

		d.client.Inc(fmt.Sprintf("queries.%s.duration", name), int(end.Seconds()))

		if err == nil {
			d.client.Inc(fmt.Sprintf("queries.%s.success", name), 1)
		} else {
			d.client.Inc(fmt.Sprintf("queries.%s.failure", name), 1)
		}
	}()

	return d.base.Execute(ctx, query)
}
