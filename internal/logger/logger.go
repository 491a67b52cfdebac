// Package logger configures the process-wide slog logger: JSON output with
// source locations, suitable for log aggregation.
package logger

import (
	"log/slog"
	"os"
)

// Setup installs the default logger at the given level.
func Setup(level slog.Level) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})
	slog.SetDefault(slog.New(handler))
}

// ParseLevel maps "debug", "warn" and "error" to their slog levels;
// anything else is info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
