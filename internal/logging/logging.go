// Package logging builds the service's slog logger: a console handler
// (colored text, plain text or JSON) optionally fanned out to Fluent Bit.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/lmittmann/tint"
)

// Config configures New.
type Config struct {
	// Writer receives console output. Defaults to os.Stdout.
	Writer io.Writer
	// Level is the minimum level for the console and Fluent handlers.
	Level slog.Leveler
	// AddSource adds file:line to console records.
	AddSource bool
	// JSON selects JSON console output. Otherwise the output is text.
	JSON bool
	// Color selects colored text output via tint.
	Color bool
	// Fluent enables forwarding when Host is set.
	Fluent FluentConfig
}

// FluentConfig holds the Fluent Bit forward endpoint.
type FluentConfig struct {
	Host      string
	Port      int
	TagPrefix string
}

// New creates the logger. The returned closer flushes and closes the
// Fluent client and is never nil.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	console := NewConsoleHandler(cfg)
	if cfg.Fluent.Host == "" {
		return slog.New(console), nopCloser{}, nil
	}

	tagPrefix := cfg.Fluent.TagPrefix
	if tagPrefix == "" {
		tagPrefix = "stay"
	}
	client, err := fluent.New(fluent.Config{
		FluentHost: cfg.Fluent.Host,
		FluentPort: cfg.Fluent.Port,
		TagPrefix:  tagPrefix,
		Async:      true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create fluent client: %w", err)
	}

	handler := NewMultiHandler(console, NewFluentHandler(client, cfg.Level))
	return slog.New(handler), client, nil
}

// NewConsoleHandler returns the stdout handler described by cfg.
func NewConsoleHandler(cfg Config) slog.Handler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Level == nil {
		cfg.Level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		AddSource: cfg.AddSource,
		Level:     cfg.Level,
	}

	switch {
	case cfg.JSON:
		return slog.NewJSONHandler(cfg.Writer, opts)
	case cfg.Color:
		return tint.NewHandler(cfg.Writer, &tint.Options{
			Level:      cfg.Level,
			AddSource:  cfg.AddSource,
			TimeFormat: "2006-01-02 15:04:05",
		})
	default:
		return slog.NewTextHandler(cfg.Writer, opts)
	}
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything
// else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// MultiHandler sends each record to every handler that accepts its level.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler fans records out to handlers.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: next}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: next}
}
