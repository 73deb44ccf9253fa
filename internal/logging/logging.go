// Package logging provides the process-wide application logger (slog) and the
// zap logger used for HTTP access logs.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	initOnce sync.Once
	logger   *slog.Logger
	exitFunc = os.Exit
)

// L returns the shared application logger, initializing it on first use.
func L() *slog.Logger {
	initOnce.Do(func() {
		logger = slog.New(newHandler())
	})
	return logger
}

func newHandler() slog.Handler {
	level := parseLevel(os.Getenv("CLINICPULSE_LOG_LEVEL"))
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: strings.EqualFold(os.Getenv("CLINICPULSE_LOG_SOURCE"), "true"),
	}

	if jsonFormat() {
		return slog.NewJSONHandler(os.Stdout, opts)
	}
	// Text handler writes to stderr so JSON output remains clean if enabled later.
	return slog.NewTextHandler(os.Stderr, opts)
}

func jsonFormat() bool {
	switch strings.ToLower(os.Getenv("CLINICPULSE_LOG_FORMAT")) {
	case "json", "structured":
		return true
	default:
		return false
	}
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(value) {
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

// zapLevel mirrors parseLevel for the access logger.
func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level <= slog.LevelDebug:
		return zapcore.DebugLevel
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// Zap builds the access logger. It honours the same level and format
// variables as L: JSON encoding in structured mode, console otherwise.
func Zap() (*zap.Logger, error) {
	var cfg zap.Config
	if jsonFormat() {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(parseLevel(os.Getenv("CLINICPULSE_LOG_LEVEL"))))
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// With returns a child logger with additional attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}

// Fatal logs the message at error level and exits with status 1.
func Fatal(msg string, args ...any) {
	L().Error(msg, args...)
	exitFunc(1)
}
