package observability

import (
	"log/slog"
	"os"

	"github.com/MHBws/dengue-climate-etl/internal/config"
)

// NewLogger builds the process logger from config. LOG_FORMAT selects the
// handler (json or text), LOG_LEVEL the threshold; unknown values fall back
// to json at info.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
