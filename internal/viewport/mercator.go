package viewport

import (
	"math"

	"github.com/koo5/horizon/internal/geo"
	"github.com/koo5/horizon/pkg/core"
)

// MercatorProject maps a geographic point to viewport pixels using the web
// mercator projection. The viewport center lands on the pixel midpoint;
// screen Y grows downward. A non-zero bearing rotates the world around the
// center so that the bearing direction points up.
func MercatorProject(v core.Viewport, p core.GeoPoint) (core.ScreenPoint, error) {
	if err := Validate(v); err != nil {
		return core.ScreenPoint{}, err
	}
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) ||
		p.Lat < -MaxMercatorLat || p.Lat > MaxMercatorLat {
		return core.ScreenPoint{}, ErrInvalidViewport
	}

	cx, cy := geo.To3857(v.Center)
	px, py := geo.To3857(p)

	res := geo.ProjectedResolution(v.Zoom)
	dx := (px - cx) / res
	dy := (py - cy) / res

	// Rotate so the bearing direction points to the top of the screen.
	if v.Bearing != 0 {
		theta := v.Bearing * math.Pi / 180
		sin, cos := math.Sincos(theta)
		dx, dy = dx*cos-dy*sin, dx*sin+dy*cos
	}

	return core.ScreenPoint{
		X: float64(v.Width)/2 + dx,
		Y: float64(v.Height)/2 - dy,
	}, nil
}
