package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// SlogManager manages slog-based logging with optional OTel and Graylog output.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider
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

// Options configures optional log destinations beyond the console.
type Options struct {
	File            io.Writer
	OTelProvider    *sdklog.LoggerProvider
	GraylogAddress  string          // empty disables GELF output
	ContextProvider ContextProvider // nil disables dynamic context attrs
}

// Setup initializes the logging system. The console handler is always
// installed; file, OTel and Graylog handlers are added when configured.
func (m *SlogManager) Setup(level string, opts Options) {
	lvl := parseLevel(level)
	m.logProvider = opts.OTelProvider

	// Common handler options with RFC3339 time formatting
	handlerOpts := &slog.HandlerOptions{
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

	var handlers []slog.Handler

	// Console goes to stderr so command output on stdout stays parseable.
	handlers = append(handlers, slog.NewTextHandler(os.Stderr, handlerOpts))

	if opts.File != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.File, handlerOpts))
	}

	if opts.OTelProvider != nil {
		otelHandler := otelslog.NewHandler("horizon", otelslog.WithLoggerProvider(opts.OTelProvider))
		handlers = append(handlers, otelHandler)
	}

	if opts.GraylogAddress != "" {
		if gelfWriter, err := gelf.NewWriter(opts.GraylogAddress); err == nil {
			handlers = append(handlers, slog.NewJSONHandler(gelfWriter, handlerOpts))
		} else {
			slog.Warn("Graylog writer unavailable", "address", opts.GraylogAddress, "error", err)
		}
	}

	var handler slog.Handler = NewMultiHandler(handlers...)
	if opts.ContextProvider != nil {
		handler = NewContextHandler(handler, opts.ContextProvider)
	}

	m.logger = slog.New(handler)
	m.logger.Info("Logging initialized", "level", level)
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
