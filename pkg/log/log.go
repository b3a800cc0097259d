// Package log provides slog setup helpers shared by the fluxo binaries.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the default text handler at the requested level. Unknown
// levels fall back to info so a typo in LOG_LEVEL never silences logging.
func Setup(logLevel string) {
	var level slog.Level

	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
