// Package logging builds the slog.Logger used across docshelf. The CLI
// writes logs to stderr so they never mix with command output on stdout;
// text logs are trimmed to what a terminal user needs, JSON logs keep
// full timestamps for collection.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Config holds the log.* settings from config.yaml.
type Config struct {
	Level  Level  `yaml:"level"`
	Format Format `yaml:"format"`
}

// Finalize normalizes, defaults and validates the configuration. The CLI
// logs warnings and above unless asked for more.
func (c *Config) Finalize() error {
	level, err := ParseLevel(string(c.Level))
	if err != nil {
		return err
	}
	c.Level = level

	c.Format = Format(strings.ToLower(strings.TrimSpace(string(c.Format))))
	if c.Format == "" {
		c.Format = FormatText
	}
	return c.Format.Validate()
}

// Level is a logging severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var levels = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

// ParseLevel accepts a level name in any case, with "warning" as an alias
// for warn. An empty string is the default level, warn.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelWarn, nil
	}
	if l, ok := levels[s]; ok {
		return l, nil
	}
	return "", fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", s)
}

// ToSlogLevel converts the Level to its slog.Level equivalent. Anything
// unrecognised maps to warn.
func (l Level) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Format is the log output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Validate checks if the format is a valid logging format.
func (f Format) Validate() error {
	switch f {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", f)
	}
}

// New creates a logger writing to w. Text output shows the time of day
// only; JSON output keeps the full timestamp.
func New(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level.ToSlogLevel()}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		opts.ReplaceAttr = shortTime
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Component tags every record from logger with the docshelf part that
// emitted it.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", name)
}

func shortTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(slog.TimeKey, a.Value.Time().Format(time.TimeOnly))
	}
	return a
}
