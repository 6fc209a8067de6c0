// Package logger configures the process-wide slog logger.
package logger

import (
	"log/slog"
	"os"
)

// New returns a structured logger. Dev gets human-readable text, everything
// else JSON for log shipping.
func New(env string) *slog.Logger {
	var handler slog.Handler
	if env == "dev" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.New(handler)
}
