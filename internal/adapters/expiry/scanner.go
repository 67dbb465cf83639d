package expiry

import (
	"context"
	"time"

	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
	"github.com/mjolner/svc-commerce-events/internal/usecases"
	"github.com/mjolner/svc-commerce-events/internal/usecases/commands"
)

// Ensure Scanner implements the BackgroundProcessor interface
var _ ports.BackgroundProcessor = (*Scanner)(nil)

// Scanner sweeps orders whose payment or pickup deadline passed and expires
// them in batches. Each sweep runs in its own transaction, so a crashed sweep
// leaves nothing half-done.
type Scanner struct {
	app    *usecases.OrdersApplication
	cfg    config.ExpiryConfig
	logger infrastructure.Logger
}

func NewScanner(
	app *usecases.OrdersApplication,
	cfg config.ExpiryConfig,
	logger infrastructure.Logger,
) *Scanner {
	return &Scanner{
		app:    app,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Scanner) Start(ctx context.Context) error {
	s.logger.Info().
		Dur("poll_interval", s.cfg.PollInterval).
		Int("batch_size", s.cfg.BatchSize).
		Msg("starting order expiry scanner")

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("order expiry scanner shutting down")

			return ctx.Err()

		case <-ticker.C:
			result, err := s.app.Commands.ExpireOrdersHandler.Handle(ctx, commands.ExpireOrdersCommand{
				BatchSize: s.cfg.BatchSize,
			})
			if err != nil {
				s.logger.Error().Err(err).Msg("expiry sweep failed")

				// Sit out one interval so a broken database connection does
				// not turn the scanner into a tight loop.
				select {
				case <-ctx.Done():
				case <-time.After(s.cfg.PollInterval):
				}

				continue
			}

			if n := len(result.ExpiredOrders); n > 0 {
				s.logger.Info().Int("expired_orders", n).Msg("expired overdue orders")
			}
		}
	}
}
