package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// ServiceName tags records sent through the OTel bridge and GELF.
const ServiceName = "elmarec"

// console is where records go when no log file is configured. Tool output
// stays on stdout.
var console io.Writer = os.Stderr

// SlogManager manages slog-based logging with optional OTel and GELF output.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider

	closers []io.Closer
}

// Options configures SlogManager.Setup.
type Options struct {
	// File receives text records. When nil, records go to the console.
	File  io.Writer
	Level string

	// Provider enables the OTel bridge when set.
	Provider *sdklog.LoggerProvider

	// GraylogAddress enables a GELF UDP handler when set.
	GraylogAddress string
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func handlerOptions(lvl slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}
}

// Setup (re)initializes the logging system. A GELF connection failure is
// returned, but the other handlers are still installed.
func (m *SlogManager) Setup(opts Options) error {
	m.closeHandlers()

	lvl := parseLevel(opts.Level)
	handlerOpts := handlerOptions(lvl)
	m.logProvider = opts.Provider

	var handlers []slog.Handler
	if opts.File != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.File, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(console, handlerOpts))
	}

	var gelfErr error
	if opts.GraylogAddress != "" {
		h, closer, err := NewGELFHandler(opts.GraylogAddress, handlerOpts)
		if err != nil {
			gelfErr = err
		} else {
			handlers = append(handlers, h)
			m.closers = append(m.closers, closer)
		}
	}

	if opts.Provider != nil {
		handlers = append(handlers, otelslog.NewHandler(ServiceName, otelslog.WithLoggerProvider(opts.Provider)))
	}

	m.logger = slog.New(NewMultiHandler(handlers...))
	m.logger.Debug("Logging initialized", "level", opts.Level)
	if gelfErr != nil {
		m.logger.Warn("Graylog output disabled", "address", opts.GraylogAddress, "error", gelfErr)
	}
	return gelfErr
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}

// Close releases network handlers opened by Setup.
func (m *SlogManager) Close() error {
	return m.closeHandlers()
}

func (m *SlogManager) closeHandlers() error {
	var errs []error
	for _, c := range m.closers {
		errs = append(errs, c.Close())
	}
	m.closers = nil
	return errors.Join(errs...)
}
