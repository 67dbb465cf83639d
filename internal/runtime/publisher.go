package runtime

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// PublisherCtx hosts a standalone outbox drainer, for deployments that take
// publishing out of the service process and point it at one outbox table.
type PublisherCtx struct {
	deps *Dependencies

	shutdownChannel chan os.Signal

	backgroundActorCtx      context.Context
	backgroundActorStopFunc context.CancelFunc
}

func NewPublisher(opt ...PublisherOption) *PublisherCtx {
	pCtx := &PublisherCtx{}

	for i := range opt {
		opt[i](pCtx)
	}

	if pCtx.shutdownChannel == nil {
		pCtx.shutdownChannel = make(chan os.Signal, 1)
	}

	return pCtx
}

func (c *PublisherCtx) Run() {
	c.build()
	c.start()
	c.monitorConfigChanges()
	c.shutdownHook()
	c.shutdown()
}

func (c *PublisherCtx) build() {
	c.backgroundActorCtx, c.backgroundActorStopFunc = context.WithCancel(context.Background())

	deps, err := initializeDependencies(c.backgroundActorCtx, WithPublisher(c.backgroundActorCtx))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	c.deps = deps
}

func (c *PublisherCtx) start() {
	c.deps.logger.Info().
		Str("table", c.deps.cfg.Outbox.Table).
		Msg("starting outbox drainer service")

	startBackgroundWorkers(c.backgroundActorCtx, c.deps, c.backgroundActorStopFunc)
}

func (c *PublisherCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

func (c *PublisherCtx) monitorConfigChanges() {
	reloadErrors := c.deps.configLoader.WatchConfigSignals(c.backgroundActorCtx)

	go func() {
		for err := range reloadErrors {
			if err != nil {
				c.deps.logger.Error().Err(err).Msg("failed to reload config")
				continue
			}

			c.deps.logger.Info().Msg("config reloaded successfully")
		}

		c.deps.logger.Info().Msg("stopping config monitor")
	}()
}

func (c *PublisherCtx) shutdown() {
	// Waits for one of the following shutdown conditions to happen.
	select {
	case <-c.backgroundActorCtx.Done():
	case <-c.shutdownChannel:
		defer close(c.shutdownChannel)
	}

	c.deps.logger.Info().Msg("received shutdown signal")

	// Cancel context that underlying processes would start cleanup. The
	// drainer gets its flush grace before the connections go away.
	c.backgroundActorStopFunc()
	time.Sleep(c.deps.cfg.Outbox.FlushGrace)

	c.cleanup()

	c.deps.logger.Info().Msg("outbox drainer service stopped")
}

func (c *PublisherCtx) cleanup() {
	c.deps.logger.Info().Msg("cleaning up resources...")

	if c.deps.Infra.QueueClient != nil {
		if err := c.deps.Infra.QueueClient.Close(); err != nil {
			c.deps.logger.Error().Err(err).Msg("failed to close queue")
		}
	}

	if c.deps.Infra.StorageClient != nil {
		if err := c.deps.Infra.StorageClient.Close(); err != nil {
			c.deps.logger.Error().Err(err).Msg("failed to close storage")
		}
	}

	c.deps.logger.Info().Msg("cleanup completed")
}
