// Package selector turns a viewport snapshot into an ordered, collision-free
// list of photo placements. Selection is a pure function of the snapshot,
// the catalog contents and the configuration, so identical inputs always
// produce identical output.
package selector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/spf13/viper"

	"github.com/koo5/horizon/internal/catalog"
	"github.com/koo5/horizon/internal/geo"
	"github.com/koo5/horizon/internal/viewport"
	"github.com/koo5/horizon/pkg/core"
)

// Config carries the selection parameters.
type Config struct {
	// MaxResults caps how many photos are placed. 0 places nothing.
	MaxResults int
	// ThumbnailSize is the rendered thumbnail edge in pixels.
	ThumbnailSize int
	// MinSeparationPx is the minimum Euclidean distance between any two
	// placed positions. Zero or negative falls back to ThumbnailSize.
	MinSeparationPx float64
	// OrientationFilter drops photos not facing roughly the same way as
	// the viewport bearing.
	OrientationFilter bool
	// OrientationToleranceDeg is the shortest-arc deviation allowed by the
	// orientation filter.
	OrientationToleranceDeg float64
}

// DefaultConfig returns the stock selection parameters.
func DefaultConfig() Config {
	return Config{
		MaxResults:              5,
		ThumbnailSize:           100,
		OrientationFilter:       false,
		OrientationToleranceDeg: 45,
	}
}

// FromViper reads the selection parameters from configuration.
func FromViper() Config {
	return Config{
		MaxResults:              viper.GetInt("selector.maxResults"),
		ThumbnailSize:           viper.GetInt("selector.thumbnailSize"),
		MinSeparationPx:         viper.GetFloat64("selector.minSeparationPx"),
		OrientationFilter:       viper.GetBool("selector.orientationFilter"),
		OrientationToleranceDeg: viper.GetFloat64("selector.orientationToleranceDeg"),
	}
}

func (c Config) normalized() Config {
	if c.MaxResults < 0 {
		c.MaxResults = 0
	}
	if c.ThumbnailSize <= 0 {
		c.ThumbnailSize = 100
	}
	if c.MinSeparationPx <= 0 {
		c.MinSeparationPx = float64(c.ThumbnailSize)
	}
	if c.OrientationToleranceDeg <= 0 {
		c.OrientationToleranceDeg = 45
	}
	return c
}

type candidate struct {
	record   core.PhotoRecord
	distance float64
}

// Select produces the placements for one viewport snapshot.
//
// Candidates inside the viewport's bounding region are optionally filtered
// by orientation, ranked by distance to the center (ties by ID), capped at
// MaxResults, projected to screen coordinates and then placed greedily: a
// candidate within MinSeparationPx of an already-placed one is dropped, not
// reflowed. The returned order is rank order; Z is its inverse so the
// closest photo draws on top.
//
// A failed catalog query surfaces as an error wrapping
// catalog.ErrCatalogUnavailable; an unusable snapshot surfaces
// viewport.ErrInvalidViewport. Both come with an empty result.
func Select(ctx context.Context, v core.Viewport, project viewport.ProjectFunc, cat catalog.Catalog, cfg Config) ([]core.PlacedPhoto, error) {
	if err := viewport.Validate(v); err != nil {
		return nil, err
	}
	cfg = cfg.normalized()
	if cfg.MaxResults == 0 {
		return []core.PlacedPhoto{}, nil
	}

	region := geo.BoundingRegion(v.Center, v.Zoom, v.Width, v.Height)
	records, err := cat.Query(ctx, region)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			err = fmt.Errorf("%w: %v", catalog.ErrCatalogUnavailable, err)
		}
		return nil, fmt.Errorf("querying catalog for %+v: %w", region, err)
	}

	candidates := make([]candidate, 0, len(records))
	for _, rec := range records {
		if cfg.OrientationFilter {
			if !rec.HasDirection() {
				continue
			}
			diff := geo.AngleDiff(v.Bearing, *rec.Direction)
			if math.Abs(diff) > cfg.OrientationToleranceDeg {
				continue
			}
		}
		candidates = append(candidates, candidate{
			record:   rec,
			distance: geo.HaversineKm(v.Center, rec.Location),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].record.ID < candidates[j].record.ID
	})

	if len(candidates) > cfg.MaxResults {
		candidates = candidates[:cfg.MaxResults]
	}

	placed := make([]core.PlacedPhoto, 0, len(candidates))
	for _, cand := range candidates {
		pos, err := project(v, cand.record.Location)
		if err != nil {
			// Records at the projection's latitude limit cannot be shown;
			// skipping them keeps the rest of the pass usable.
			continue
		}
		collides := false
		for _, prev := range placed {
			if math.Hypot(pos.X-prev.Position.X, pos.Y-prev.Position.Y) < cfg.MinSeparationPx {
				collides = true
				break
			}
		}
		if collides {
			continue
		}
		placed = append(placed, core.PlacedPhoto{
			Record:   cand.record,
			Position: pos,
		})
	}

	for i := range placed {
		placed[i].Rank = i
		placed[i].Z = len(placed) - 1 - i
	}
	return placed, nil
}
