package runtime

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// SubscriberCtx hosts a standalone reaction consumer: it drains the
// users.status-changed group queue and runs the cancellation cascade against
// the orders schema, without serving HTTP.
type SubscriberCtx struct {
	deps *Dependencies

	shutdownChannel chan os.Signal

	consumerCtx      context.Context
	consumerStopFunc context.CancelFunc
}

func NewSubscriber(opt ...SubscriberOption) *SubscriberCtx {
	sCtx := &SubscriberCtx{}

	for i := range opt {
		opt[i](sCtx)
	}

	if sCtx.shutdownChannel == nil {
		sCtx.shutdownChannel = make(chan os.Signal, 1)
	}

	return sCtx
}

func (c *SubscriberCtx) Run() {
	c.build()
	c.start()
	c.monitorConfigChanges()
	c.shutdownHook()
	c.shutdown()
}

func (c *SubscriberCtx) build() {
	c.consumerCtx, c.consumerStopFunc = context.WithCancel(context.Background())

	deps, err := initializeDependencies(c.consumerCtx, WithConsumer(c.consumerCtx))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	c.deps = deps
}

func (c *SubscriberCtx) start() {
	c.deps.logger.Info().Msg("starting reaction consumer service")

	startQueueConsumers(c.consumerCtx, c.deps, c.consumerStopFunc)
}

func (c *SubscriberCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

func (c *SubscriberCtx) monitorConfigChanges() {
	reloadErrors := c.deps.configLoader.WatchConfigSignals(c.consumerCtx)

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

func (c *SubscriberCtx) shutdown() {
	// Waits for one of the following shutdown conditions to happen.
	select {
	case <-c.consumerCtx.Done():
	case <-c.shutdownChannel:
		defer close(c.shutdownChannel)
	}

	c.deps.logger.Info().Msg("received shutdown signal")

	c.consumerStopFunc()

	c.cleanup()

	c.deps.logger.Info().Msg("reaction consumer service stopped")
}

func (c *SubscriberCtx) cleanup() {
	c.deps.logger.Info().Msg("cleaning up resources...")

	if c.deps.Infra.QueueClient != nil {
		if err := c.deps.Infra.QueueClient.Close(); err != nil {
			c.deps.logger.Error().Err(err).Msg("failed to close queue")
		}
	}

	if c.deps.Infra.CacheClient != nil {
		if err := c.deps.Infra.CacheClient.Close(); err != nil {
			c.deps.logger.Error().Err(err).Msg("failed to close cache connection")
		}
	}

	if c.deps.Infra.StorageClient != nil {
		if err := c.deps.Infra.StorageClient.Close(); err != nil {
			c.deps.logger.Error().Err(err).Msg("failed to close storage")
		}
	}

	c.deps.logger.Info().Msg("cleanup completed")
}
