// Package logger configures the process-wide slog logger and provides
// attribute helpers used across packages.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"go.uber.org/fx"
)

var Module = fx.Module("logger",
	fx.Provide(NewLogger),
)

// NewLogger creates the application logger.
// LOG_LEVEL selects the minimum level (debug, info, warn/warning, error); unknown
// values fall back to info. GO_ENV=production switches to JSON output.
func NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}

	var handler slog.Handler
	if os.Getenv("GO_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Scope returns an attribute naming the component that emits a log record.
func Scope(scope string) slog.Attr {
	return slog.String("scope", scope)
}

// Error returns an attribute carrying err under the "error" key.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}
