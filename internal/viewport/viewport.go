// Package viewport tracks the visible map region and projects geographic
// coordinates into viewport pixels.
package viewport

import (
	"errors"
	"math"

	"github.com/koo5/horizon/pkg/core"
)

// MaxMercatorLat is the latitude limit of the web mercator projection.
const MaxMercatorLat = 85.05112878

// ErrInvalidViewport is returned when a viewport snapshot cannot be used for
// selection or projection.
var ErrInvalidViewport = errors.New("invalid viewport")

// ProjectFunc maps a geographic point to pixel coordinates within the
// viewport. Implementations must be pure so repeated selection passes over
// the same snapshot place photos identically.
type ProjectFunc func(v core.Viewport, p core.GeoPoint) (core.ScreenPoint, error)

// Validate checks a viewport snapshot against the projection domain.
func Validate(v core.Viewport) error {
	if v.Width <= 0 || v.Height <= 0 {
		return ErrInvalidViewport
	}
	if math.IsNaN(v.Zoom) || math.IsInf(v.Zoom, 0) || v.Zoom < 0 {
		return ErrInvalidViewport
	}
	if math.IsNaN(v.Bearing) || math.IsInf(v.Bearing, 0) {
		return ErrInvalidViewport
	}
	if math.IsNaN(v.Center.Lat) || math.IsNaN(v.Center.Lon) {
		return ErrInvalidViewport
	}
	if v.Center.Lat < -MaxMercatorLat || v.Center.Lat > MaxMercatorLat {
		return ErrInvalidViewport
	}
	if v.Center.Lon < -180 || v.Center.Lon > 180 {
		return ErrInvalidViewport
	}
	return nil
}
