package logging

import (
	"context"
	"log/slog"
)

// ContextProvider supplies attributes describing the current selection
// session, evaluated once per record. It lets every log line carry live
// state (pass counts, catalog size) without threading it through call
// sites.
type ContextProvider func() []slog.Attr

type contextHandler struct {
	next     slog.Handler
	provider ContextProvider
}

// NewContextHandler wraps next so each record is stamped with the
// provider's attributes. A nil provider returns next unchanged.
func NewContextHandler(next slog.Handler, provider ContextProvider) slog.Handler {
	if provider == nil {
		return next
	}
	return &contextHandler{next: next, provider: provider}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	// Clone so shared records from the multi handler are not mutated.
	rec := r.Clone()
	rec.AddAttrs(h.provider()...)
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), provider: h.provider}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &contextHandler{next: h.next.WithGroup(name), provider: h.provider}
}
