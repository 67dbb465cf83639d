package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
	"github.com/mjolner/svc-commerce-events/internal/shared/backoff"
	"github.com/mjolner/svc-commerce-events/internal/usecases"
	"github.com/mjolner/svc-commerce-events/internal/usecases/commands"
)

// Ensure Drainer implements the BackgroundProcessor interface
var _ ports.BackgroundProcessor = (*Drainer)(nil)

// Drainer moves committed outbox rows to the event bus. It claims a locked
// batch each tick, publishes the rows in creation order, and settles every
// row according to the delivery outcome. Rows are only ever claimed with a
// lock, so multiple drainers can run against the same table.
type Drainer struct {
	app        *usecases.PublisherApplication
	outboxRepo ports.OutboxRepository
	cfg        config.OutboxConfig
	backoff    backoff.Strategy
	logger     infrastructure.Logger
	lockID     uuid.UUID
}

func NewDrainer(
	app *usecases.PublisherApplication,
	outboxRepo ports.OutboxRepository,
	cfg config.OutboxConfig,
	backoffStrategy backoff.Strategy,
	logger infrastructure.Logger,
) *Drainer {
	return &Drainer{
		app:        app,
		outboxRepo: outboxRepo,
		cfg:        cfg,
		backoff:    backoffStrategy,
		logger:     logger,
		lockID:     uuid.New(),
	}
}

func (d *Drainer) Start(ctx context.Context) error {
	d.logger.Info().
		Str("lock_id", d.lockID.String()).
		Dur("poll_interval", d.cfg.PollInterval).
		Msg("starting outbox drainer")

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	consecutiveFailures := 0

	for {
		select {
		case <-ctx.Done():
			d.flush()
			d.logger.Info().Msg("outbox drainer shutting down")

			return ctx.Err()

		case <-ticker.C:
			if err := d.drainCycle(ctx); err != nil {
				consecutiveFailures++
				wait := d.backoff.Backoff(consecutiveFailures)
				d.logger.Error().
					Err(err).
					Int("consecutive_failures", consecutiveFailures).
					Dur("backoff", wait).
					Msg("drain cycle failed")

				select {
				case <-ctx.Done():
				case <-time.After(wait):
				}

				continue
			}

			consecutiveFailures = 0
		}
	}
}

// flush runs one last cycle on a detached context so rows already committed
// by in-flight requests still leave the table before the process exits.
func (d *Drainer) flush() {
	flushCtx, cancel := context.WithTimeout(context.Background(), d.cfg.FlushGrace)
	defer cancel()

	if err := d.drainCycle(flushCtx); err != nil {
		d.logger.Error().Err(err).Msg("final drain cycle failed")
	}
}

func (d *Drainer) drainCycle(ctx context.Context) error {
	events, err := d.outboxRepo.AcquireBatch(ctx, d.cfg.BatchSize, d.cfg.MaxRetries, d.cfg.LockDuration, d.lockID)
	if err != nil {
		return fmt.Errorf("failed to acquire outbox batch: %w", err)
	}

	if len(events) == 0 {
		return nil
	}

	d.logger.Debug().Int("count", len(events)).Msg("draining outbox batch")

	// Sequential on purpose: rows were claimed in creation order and
	// publishing them one by one preserves per-aggregate ordering.
	for _, event := range events {
		d.drainOne(ctx, event)
	}

	return nil
}

func (d *Drainer) drainOne(ctx context.Context, event *domain.OutboxEvent) {
	defer func() {
		if r := recover(); r != nil {
			// One poisoned row must not take the whole drainer down. The
			// retry counter still advances so the row eventually dead-letters.
			retries := event.RetryCount + 1
			permanent := retries > d.cfg.MaxRetries
			d.logger.Error().
				Str("event_id", event.ID.String()).
				Interface("panic", r).
				Bool("permanent", permanent).
				Msg("recovered from panic while publishing outbox event")

			if err := d.outboxRepo.MarkFailed(ctx, event.ID, retries, fmt.Sprintf("panic: %v", r), permanent); err != nil {
				d.logger.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to settle panicked event")
			}
		}
	}()

	result, err := d.app.Commands.PublishOutboxEventHandler.Handle(ctx, commands.PublishOutboxEventCommand{
		Event: event,
	})
	if err != nil {
		d.settleFailure(ctx, event, err.Error(), false)

		return
	}

	switch result.Outcome {
	case domain.PublishSuccess:
		if err := d.outboxRepo.MarkSent(ctx, event.ID); err != nil {
			d.logger.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to mark event sent")
		}

	case domain.PublishTransientFailure:
		d.settleFailure(ctx, event, result.Error, false)

	case domain.PublishPermanentFailure:
		// Permanent failures are settled as sent so the row never drains
		// again, whether or not the dead-letter publish went through.
		d.settleFailure(ctx, event, result.Error, true)
	}
}

func (d *Drainer) settleFailure(ctx context.Context, event *domain.OutboxEvent, details string, permanent bool) {
	if err := d.outboxRepo.MarkFailed(ctx, event.ID, event.RetryCount+1, details, permanent); err != nil {
		d.logger.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to settle event failure")
	}
}
