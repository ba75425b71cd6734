// Package logging provides centralized logging functionality using logrus.
// It configures the level, the formatter (text for terminals, JSON for log
// collectors) and an optional log file, and provides convenience functions
// that tag every entry with the program name.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// programName is used as a field in all log entries for identification
var programName = filepath.Base(os.Args[0])

// Config selects how logs are written.
type Config struct {
	Level  string    // logrus level name; empty means "warning"
	Format string    // FormatText or FormatJSON; empty means text
	File   string    // optional file receiving a copy of every entry
	Output io.Writer // defaults to os.Stderr
}

// Setup applies cfg to the standard logrus logger. The returned closer
// releases the log file, if any.
func Setup(cfg Config) (io.Closer, error) {
	level := log.WarnLevel
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	switch cfg.Format {
	case "", FormatText:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format %q (must be %s or %s)", cfg.Format, FormatText, FormatJSON)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		logFile, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(out, logFile)
		closer = logFile
	}

	log.SetLevel(level)
	log.SetOutput(out)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// LogInfo logs an informational message with the programName field.
func LogInfo(msg string) {
	log.WithFields(log.Fields{"job": programName}).Info(msg)
}

// LogDebug logs a debug message with the programName field.
func LogDebug(msg string) {
	log.WithFields(log.Fields{"job": programName}).Debug(msg)
}

// LogError logs a recoverable error with the programName field.
func LogError(msg string) {
	log.WithFields(log.Fields{"job": programName}).Error(msg)
}

// HandleError logs err and exits with status 1.
func HandleError(err error) {
	log.WithFields(log.Fields{"job": programName}).Error(err)
	exit(1)
}

var exit = os.Exit
