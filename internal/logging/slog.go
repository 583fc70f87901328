package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init configures the default slog logger. JSON when RISKCALC_JSON_LOG is
// 1/true/json, text otherwise; level from RISKCALC_LOG_LEVEL.
func Init(service string) *slog.Logger {
	return InitTo(os.Stderr, service)
}

// InitTo is Init writing to w.
func InitTo(w io.Writer, service string) *slog.Logger {
	mode := strings.ToLower(os.Getenv("RISKCALC_JSON_LOG"))
	jsonOut := mode == "1" || mode == "true" || mode == "json"
	opts := &slog.HandlerOptions{Level: levelFromEnv()}

	var handler slog.Handler
	if jsonOut {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler).With("service", service)
	slog.SetDefault(logger)
	logger.Debug("logging initialized", "json", jsonOut)
	return logger
}

func levelFromEnv() slog.Leveler {
	switch strings.ToLower(os.Getenv("RISKCALC_LOG_LEVEL")) {
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
