package logging

import (
	"context"
	"log/slog"
)

// MultiHandler fans each record out to every configured sink. Console,
// session file, OTel and Graylog all see the same stream; a sink that
// fails or is disabled never blocks the others.
type MultiHandler struct {
	sinks []slog.Handler
}

// NewMultiHandler builds a fan-out over the given handlers. Nil entries
// are skipped so callers can pass conditionally constructed sinks.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	m := &MultiHandler{sinks: make([]slog.Handler, 0, len(handlers))}
	for _, h := range handlers {
		if h != nil {
			m.sinks = append(m.sinks, h)
		}
	}
	return m
}

// Enabled reports whether at least one sink wants records at this level.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.sinks {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers the record to every sink enabled for its level. Sink
// errors are swallowed so one broken destination cannot silence the rest.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.sinks {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		_ = h.Handle(ctx, r.Clone())
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(m.sinks))
	for i, h := range m.sinks {
		next[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{sinks: next}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return m
	}
	next := make([]slog.Handler, len(m.sinks))
	for i, h := range m.sinks {
		next[i] = h.WithGroup(name)
	}
	return &MultiHandler{sinks: next}
}
