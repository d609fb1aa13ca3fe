package logging

import (
	"context"
	"log/slog"
	"maps"
	"strings"
	"time"
)

// Poster is the part of *fluent.Fluent the handler uses.
type Poster interface {
	Post(tag string, message interface{}) error
}

// FluentHandler forwards records to Fluent Bit, one message per record,
// tagged with the lower-case level name.
type FluentHandler struct {
	client Poster
	level  slog.Leveler
	fields map[string]any
	group  string
}

// NewFluentHandler creates a handler posting to client. A nil level means info.
func NewFluentHandler(client Poster, level slog.Leveler) *FluentHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &FluentHandler{client: client, level: level, fields: map[string]any{}}
}

func (h *FluentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *FluentHandler) Handle(_ context.Context, r slog.Record) error {
	data := make(map[string]any, len(h.fields)+r.NumAttrs()+3)
	maps.Copy(data, h.fields)
	r.Attrs(func(a slog.Attr) bool {
		h.put(data, h.group, a)
		return true
	})

	level := strings.ToLower(r.Level.String())
	data["level"] = level
	data["message"] = r.Message
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	data["timestamp"] = t.UTC().Format(time.RFC3339Nano)

	return h.client.Post(level, data)
}

func (h *FluentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		h.put(next.fields, h.group, a)
	}
	return next
}

func (h *FluentHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.group = join(h.group, name)
	return next
}

func (h *FluentHandler) clone() *FluentHandler {
	return &FluentHandler{
		client: h.client,
		level:  h.level,
		fields: maps.Clone(h.fields),
		group:  h.group,
	}
}

// put flattens a into data with dotted keys.
func (h *FluentHandler) put(data map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, ga := range v.Group() {
			h.put(data, join(prefix, a.Key), ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	switch v.Kind() {
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			data[join(prefix, a.Key)] = err.Error()
			return
		}
		data[join(prefix, a.Key)] = v.Any()
	case slog.KindTime:
		data[join(prefix, a.Key)] = v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindDuration:
		data[join(prefix, a.Key)] = v.Duration().Milliseconds()
	default:
		data[join(prefix, a.Key)] = v.Any()
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
