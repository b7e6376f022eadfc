package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// LogLevelEnvVar selects the minimum level (debug, info, warn, error).
	LogLevelEnvVar = "FLOW_COVERAGE_REPORT_LOG_LEVEL"
	// LogFileEnvVar, when set, also appends logs to this file.
	LogFileEnvVar = "FLOW_COVERAGE_REPORT_LOG_FILE"
)

var defaultLogger *slog.Logger

// ParseLevel maps a level name to its slog level. Empty means warn.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("unknown log level %q", name)
}

// setupLogging points the default logger at stderr and, optionally, a file.
func setupLogging(stderr io.Writer, level slog.Level, logFilePath string) error {
	writers := []io.Writer{stderr}

	if logFilePath != "" {
		logDir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(logDir, 0750); err != nil {
			return fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
		// Left open for the lifetime of the process.
		file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", logFilePath, err)
		}
		writers = append(writers, file)
	}

	var finalWriter io.Writer
	if len(writers) == 1 {
		finalWriter = writers[0]
	} else {
		finalWriter = io.MultiWriter(writers...)
	}

	handler := slog.NewTextHandler(finalWriter, &slog.HandlerOptions{Level: level})
	defaultLogger = slog.New(handler)
	return nil
}

// InitLogger configures logging from the environment. It should be called
// once, before the first log call.
func InitLogger(stderr io.Writer) {
	level, levelErr := ParseLevel(os.Getenv(LogLevelEnvVar))

	err := setupLogging(stderr, level, os.Getenv(LogFileEnvVar))
	if err != nil {
		fmt.Fprintf(stderr, "Logger initialization failed: %v. Falling back to stderr logging.\n", err)
		defaultLogger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	}
	if levelErr != nil {
		Warn("Ignoring invalid log level.", "env", LogLevelEnvVar, "error", levelErr)
	}
}

// SetLogger replaces the default logger, mainly for tests.
func SetLogger(l *slog.Logger) {
	defaultLogger = l
}

func checkLogger() {
	if defaultLogger == nil {
		InitLogger(os.Stderr)
	}
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	checkLogger()
	defaultLogger.Info(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	checkLogger()
	defaultLogger.Error(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	checkLogger()
	defaultLogger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	checkLogger()
	defaultLogger.Warn(msg, args...)
}
