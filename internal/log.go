package internal

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLevel maps the LOG_LEVEL names onto slog levels. TRACE is folded
// into DEBUG; unknown names fall back to INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ERROR":
		return slog.LevelError
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "DEBUG", "TRACE":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a colorized console logger writing to w.
func NewLogger(w io.Writer, level slog.Level, noColor bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	}))
}

// SetupDefault installs a stderr logger as the process default and returns it.
func SetupDefault(levelName string, noColor bool) *slog.Logger {
	logger := NewLogger(os.Stderr, ParseLevel(levelName), noColor)
	slog.SetDefault(logger)
	return logger
}
