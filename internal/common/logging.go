// Package common provides shared utilities for marketplay
package common

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger to provide a consistent interface
type Logger struct {
	zerolog.Logger
	file *os.File
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLoggerWithOutput creates a logger writing to a specific output
func NewLoggerWithOutput(level string, w io.Writer) *Logger {
	logger := zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger}
}

// NewLoggerFromConfig builds a logger from the [logging] config section.
// Outputs may include "console" (stderr) and "file" (FilePath, appended).
// If the log file cannot be opened the logger falls back to console and
// says so. Call Close to release the file.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	level := parseLevel(cfg.Level)
	if level == zerolog.Disabled {
		return NewSilentLogger()
	}

	var (
		writers []io.Writer
		file    *os.File
		fileErr error
	)
	hasConsole := false
	for _, out := range cfg.Outputs {
		switch strings.ToLower(out) {
		case "console":
			hasConsole = true
			writers = append(writers, consoleWriter(cfg.Format))
		case "file":
			if file != nil {
				continue
			}
			file, fileErr = openLogFile(cfg.FilePath)
			if fileErr == nil {
				writers = append(writers, file)
			}
		}
	}
	if fileErr != nil && !hasConsole {
		writers = append(writers, consoleWriter(cfg.Format))
	}
	if len(writers) == 0 {
		writers = append(writers, consoleWriter(cfg.Format))
	}

	l := &Logger{
		Logger: zerolog.New(zerolog.MultiLevelWriter(writers...)).
			Level(level).
			With().
			Timestamp().
			Logger(),
		file: file,
	}
	if fileErr != nil {
		l.Warn().Err(fileErr).Str("file_path", cfg.FilePath).Msg("Log file unavailable, logging to console")
	}
	return l
}

func consoleWriter(format string) io.Writer {
	if strings.EqualFold(format, "json") {
		return os.Stderr
	}
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// Close releases the log file, if any. The logger must not be used afterwards
// when a file output was configured.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// NewSilentLogger creates a logger that discards all output
func NewSilentLogger() *Logger {
	logger := zerolog.New(io.Discard).Level(zerolog.Disabled)
	return &Logger{Logger: logger}
}
