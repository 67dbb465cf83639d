package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// ServiceCtx hosts one HTTP-facing role (users, orders or relay) together
// with the background workers and queue consumers that role registers.
type ServiceCtx struct {
	deps *Dependencies
	role func(context.Context) DependencyOption

	shutdownChannel chan os.Signal

	serverCtx      context.Context
	serverStopFunc context.CancelFunc

	serverReady chan struct{}
}

func New(opt ...ServiceOption) *ServiceCtx {
	sCtx := &ServiceCtx{}

	for i := range opt {
		opt[i](sCtx)
	}

	if sCtx.shutdownChannel == nil {
		sCtx.shutdownChannel = make(chan os.Signal, 1)
	}

	return sCtx
}

func (c *ServiceCtx) Run() {
	c.build()
	c.startService()
	c.monitorConfigChanges()
	c.shutdownHook()
	c.shutdown()
}

// build initializes the service components
func (c *ServiceCtx) build() {
	c.serverCtx, c.serverStopFunc = context.WithCancel(context.Background())

	if c.role == nil {
		fmt.Fprintln(os.Stderr, "FATAL: no service role configured")
		os.Exit(1)
	}

	deps, err := initializeDependencies(c.serverCtx, c.role(c.serverCtx))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	c.deps = deps
}

// startService starts the HTTP server, the background workers and the queue
// consumers the role registered.
func (c *ServiceCtx) startService() {
	go func() {
		c.deps.logger.Info().
			Str("address", c.deps.Infra.HTTPServer.Addr).
			Msg("service starting up")

		if c.serverReady != nil {
			c.serverReady <- struct{}{}
		}

		if err := c.deps.Infra.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.deps.logger.Error().Err(err).Msg("unable to start http server")
			c.serverStopFunc()
		}
	}()

	startBackgroundWorkers(c.serverCtx, c.deps, c.serverStopFunc)
	startQueueConsumers(c.serverCtx, c.deps, c.serverStopFunc)
}

func (c *ServiceCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

func (c *ServiceCtx) monitorConfigChanges() {
	reloadErrors := c.deps.configLoader.WatchConfigSignals(c.serverCtx)

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

func (c *ServiceCtx) shutdown() {
	// Waits for one of the following shutdown conditions to happen.
	select {
	case <-c.serverCtx.Done():
	case <-c.shutdownChannel:
		defer close(c.shutdownChannel)
	}

	c.deps.logger.Info().Msg("received shutdown signal")

	// Cancel context that underlying processes would start cleanup.
	c.serverStopFunc()

	// Shutdown signal with a grace period.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.deps.cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	go func() {
		<-shutdownCtx.Done()

		if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
			c.deps.logger.Error().Msg("graceful shutdown timed out.. forcing exit.")
			os.Exit(1)
		}
	}()

	c.cleanup(shutdownCtx)

	c.deps.logger.Info().Msg("service shutdown completed")
}

// WaitForServer blocks until the http server is running.
// If you want to be notified when the server is running,
// make sure you instantiate your server with WithWaitingForServer.
//
// Example:
//
//	srv := runtime.New(WithUsersRole(), WithWaitingForServer())
//	go func() {
//		srv.Run()
//	}()
//
//	srv.WaitForServer()
func (c *ServiceCtx) WaitForServer() {
	if c.serverReady != nil {
		<-c.serverReady
		close(c.serverReady)
	}
}

func (c *ServiceCtx) cleanup(shutdownCtx context.Context) {
	c.deps.logger.Info().Msg("cleaning up resources...")

	// Trigger graceful shutdown of the http server first so in-flight
	// commands still find their dependencies up.
	if err := c.deps.Infra.HTTPServer.Shutdown(shutdownCtx); err != nil {
		c.deps.logger.Error().Err(err).Msg("unable to gracefully shutdown http server")
	}

	if c.deps.Infra.QueueClient != nil {
		if err := c.deps.Infra.QueueClient.Close(); err != nil {
			c.deps.logger.Error().Err(err).Msg("failed to close queue connection")
		}
	}

	if c.deps.Infra.CacheClient != nil {
		if err := c.deps.Infra.CacheClient.Close(); err != nil {
			c.deps.logger.Error().Err(err).Msg("failed to close cache connection")
		}
	}

	if c.deps.Infra.StorageClient != nil {
		if err := c.deps.Infra.StorageClient.Close(); err != nil {
			c.deps.logger.Error().Err(err).Msg("failed to close storage connection")
		}
	}

	if c.deps.tracerShutdownFunc != nil {
		if err := c.deps.tracerShutdownFunc(shutdownCtx); err != nil {
			c.deps.logger.Error().Err(err).Msg("failed to shutdown tracer")
		}
	}

	c.deps.logger.Info().Msg("cleanup completed")
}
