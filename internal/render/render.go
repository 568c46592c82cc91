// Package render defines the boundary to the photo strip. Surfaces own all
// visual state; the pipeline only ever hands them a complete placement list.
package render

import (
	"context"

	"github.com/koo5/horizon/pkg/core"
)

// Surface materializes thumbnail placements.
type Surface interface {
	// ReplaceAll fully supersedes the previous visual state with the given
	// placements. Idempotent; an empty slice clears the surface.
	ReplaceAll(ctx context.Context, photos []core.PlacedPhoto) error
}

// Lifecycle is an optional interface for surfaces that hold connections or
// other resources.
type Lifecycle interface {
	Init() error
	Close() error
}
