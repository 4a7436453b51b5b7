package slogutil

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"asdocs/internal/config"
)

// LevelSilent is above every standard level.
const LevelSilent = slog.Level(100)

// NewLogger creates a new slog.Logger with the asdocs text format.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewFileLogger creates a new slog.Logger that writes to a file.
// The file is opened in append mode and created if it doesn't exist.
func NewFileLogger(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return NewLogger(f, level), f, nil
}

// NewDiscardLogger creates a logger that discards all output.
func NewDiscardLogger() *slog.Logger {
	return slog.New(NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelSilent}))
}

// LevelFromString converts a string to a slog.Level.
// Supports: debug, info, warn, error (case-insensitive).
// Returns slog.LevelInfo for unrecognized strings.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "silent", "quiet", "off":
		return LevelSilent
	default:
		return slog.LevelInfo
	}
}

// NewHandler returns the handler for format ("human" or "json").
func NewHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return NewTextHandler(w, opts)
}

// NewLoggerFromConfig builds the process logger: w in the configured format,
// plus a rotated log file when cfg.File is set. levelOverride, when not
// empty, replaces cfg.Level. The returned closer is never nil.
func NewLoggerFromConfig(cfg config.LoggingConfig, w io.Writer, levelOverride string) (*slog.Logger, io.Closer, error) {
	levelName := cfg.Level
	if levelOverride != "" {
		levelName = levelOverride
	}
	level := LevelFromString(levelName)
	primary := NewHandler(w, cfg.Format, level)

	if cfg.File == "" {
		return slog.New(primary), nopCloser{}, nil
	}

	fileLogger, closer, err := NewFileLoggerWithRotation(cfg.File, level, cfg.MaxSize, cfg.MaxBackups)
	if err != nil {
		return nil, nil, err
	}
	return NewTeeLogger(primary, fileLogger.Handler()), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// TeeHandler writes logs to multiple handlers.
type TeeHandler struct {
	handlers []slog.Handler
}

// NewTeeHandler creates a handler that writes to all provided handlers.
func NewTeeHandler(handlers ...slog.Handler) *TeeHandler {
	return &TeeHandler{handlers: handlers}
}

// Enabled returns true if any handler is enabled for the level.
func (t *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle writes the record to all enabled handlers and joins their errors.
func (t *TeeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// WithAttrs returns a new TeeHandler with attributes added to all handlers.
func (t *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &TeeHandler{handlers: newHandlers}
}

// WithGroup returns a new TeeHandler with the group added to all handlers.
func (t *TeeHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &TeeHandler{handlers: newHandlers}
}

// NewTeeLogger creates a logger that writes to multiple destinations.
func NewTeeLogger(handlers ...slog.Handler) *slog.Logger {
	return slog.New(NewTeeHandler(handlers...))
}
