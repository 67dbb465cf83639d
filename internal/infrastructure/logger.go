package infrastructure

import (
	"io"
	"os"
	"strings"

	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/rs/zerolog"
)

type (
	// Logger wraps zerolog so callers depend on one logging type across the codebase.
	Logger struct {
		zerolog.Logger
	}
)

func NewLogger(cfg config.LoggingConfig, appCfg config.AppConfig) Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", appCfg.ServiceName).
		Str("version", appCfg.ServiceVersion).
		Logger()

	return Logger{Logger: logger}
}

// NewTestLogger returns a logger that discards everything, for use in tests.
func NewTestLogger() Logger {
	return Logger{Logger: zerolog.Nop()}
}

// WithComponent returns a child logger tagged with the given component name.
func (l Logger) WithComponent(name string) Logger {
	return Logger{Logger: l.Logger.With().Str("component", name).Logger()}
}
