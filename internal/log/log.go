// Package log provides structured logging for pose-tools-mcp.
// It wraps slog and always writes to stderr, since stdout carries MCP traffic.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *slog.Logger
	mu     sync.RWMutex
)

// Options configure the global logger.
type Options struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "text" or "json"
	File   string // Optional rotating log file, in addition to stderr
}

// ParseLevel maps a level name to slog. Unknown names mean info.
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

// Init installs the global logger. It may be called again to reconfigure,
// e.g. once the config file has been read.
func Init(opts Options) {
	var w io.Writer = os.Stderr
	if opts.File != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
			LocalTime:  true,
		})
	}
	SetOutput(w, opts)
}

// SetOutput installs a logger writing to w. Tests use it to capture output.
func SetOutput(w io.Writer, opts Options) {
	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	}

	var l *slog.Logger
	if strings.EqualFold(opts.Format, "json") {
		l = slog.New(slog.NewJSONHandler(w, handlerOpts))
	} else {
		l = slog.New(slog.NewTextHandler(w, handlerOpts))
	}

	mu.Lock()
	logger = l
	mu.Unlock()
}

// L returns the global logger instance.
func L() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		Init(Options{Level: "info"})
		mu.RLock()
		l = logger
		mu.RUnlock()
	}
	return l
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
