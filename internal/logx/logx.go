// Package logx sets up the engine's structured logging, thin enough to
// stay out of the way of the rest of the run.
package logx

import (
	"log/slog"
	"os"

	"github.com/cbl-diagnostics/logscope/internal/config"
)

// New builds the process-wide logger from environment configuration:
// LOGSCOPE_LOG_LEVEL selects the level, LOGSCOPE_LOG_FORMAT selects
// "json" or "text" (default "text").
func New() *slog.Logger {
	level := config.GetEnvLogLevel("LOGSCOPE_LOG_LEVEL", slog.LevelInfo)
	format := config.GetEnvStr("LOGSCOPE_LOG_FORMAT", "text")

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
