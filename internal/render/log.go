package render

import (
	"context"
	"log/slog"

	"github.com/koo5/horizon/pkg/core"
)

// LogSurface writes each placement pass to the log. Useful headless and as
// the default surface in tests and the CLI.
type LogSurface struct {
	log *slog.Logger
}

// NewLogSurface creates a surface logging through l.
func NewLogSurface(l *slog.Logger) *LogSurface {
	return &LogSurface{log: l}
}

// ReplaceAll logs the new placement list.
func (s *LogSurface) ReplaceAll(_ context.Context, photos []core.PlacedPhoto) error {
	s.log.Info("Replacing photo strip", "count", len(photos))
	for _, p := range photos {
		s.log.Debug("Placed photo",
			"id", p.Record.ID,
			"x", p.Position.X,
			"y", p.Position.Y,
			"rank", p.Rank,
			"z", p.Z)
	}
	return nil
}
