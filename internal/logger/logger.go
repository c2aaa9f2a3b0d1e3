package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"interview-dashboard/internal/models"
)

// Logger is the process-wide structured logger
var Logger = slog.Default()

// Init configures Logger from the log section of the configuration
func Init(cfg models.LogConfig) error {
	writer, err := openWriter(cfg)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	return nil
}

func openWriter(cfg models.LogConfig) (io.Writer, error) {
	output := strings.ToLower(cfg.Output)
	if output != "file" && output != "both" {
		return os.Stdout, nil
	}

	if dir := filepath.Dir(cfg.FilePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	if output == "both" {
		return io.MultiWriter(os.Stdout, file), nil
	}
	return file, nil
}

func parseLevel(level string) slog.Level {
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

// Debug logs at debug level
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs at info level
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs at warn level
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs at error level
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}
