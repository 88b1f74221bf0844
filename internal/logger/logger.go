package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/balkashynov/punch/internal/config"
)

// New builds a JSON slog logger writing to stdout and/or a rotated file
func New(cfg config.LogConfig) *slog.Logger {
	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, os.Stdout)
	}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		})
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	h := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: ParseLevel(cfg.Level)})
	return slog.New(h)
}

// Init builds the logger and installs it as the slog default
func Init(cfg config.LogConfig) *slog.Logger {
	l := New(cfg)
	slog.SetDefault(l)
	l.Debug("logger initialized", "level", cfg.Level, "file", cfg.File)
	return l
}

// ParseLevel maps a config string to a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
