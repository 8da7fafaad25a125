package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init installs a JSON slog handler as the process default.
func Init(level string) {
	InitWithWriter(os.Stdout, level)
}

func InitWithWriter(w io.Writer, level string) {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	slog.SetDefault(slog.New(handler))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// With returns a logger carrying the given attributes, e.g. a user or round id.
func With(args ...any) *slog.Logger {
	return slog.Default().With(args...)
}
