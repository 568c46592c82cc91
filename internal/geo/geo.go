package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/koo5/horizon/pkg/core"
	"github.com/wroge/wgs84"
)

// Distances are computed on the WGS84 sphere; screen-space work happens in
// EPSG:3857 (web mercator), which is what slippy-map widgets render.

const (
	// EarthRadiusKm is the mean Earth radius used for haversine distances.
	EarthRadiusKm = 6371.0

	// mercatorResolution is the web mercator ground resolution at the equator
	// for zoom 0 with 256px tiles, in meters per pixel.
	mercatorResolution = 156543.03392804097
)

// ErrInvalidCoordinates is returned when a coordinate string cannot be parsed.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// PointFromString parses a "lat,lon" string into a GeoPoint.
func PointFromString(coords string) (core.GeoPoint, error) {
	parts := strings.Split(coords, ",")
	if len(parts) != 2 {
		return core.GeoPoint{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return core.GeoPoint{}, ErrInvalidCoordinates
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return core.GeoPoint{}, ErrInvalidCoordinates
	}
	return core.GeoPoint{Lat: lat, Lon: lon}, nil
}

// To3857 converts a WGS84 coordinate to web mercator meters.
func To3857(p core.GeoPoint) (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(p.Lon, p.Lat, 0)
	return x, y
}

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(a, b core.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// InitialBearing returns the initial great-circle bearing from a to b in
// compass degrees (0-360, 0 = north).
func InitialBearing(a, b core.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	x := math.Sin(dLon) * math.Cos(lat2)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return math.Mod(math.Atan2(x, y)*180/math.Pi+360, 360)
}

// AngleDiff returns the signed shortest-arc difference b-a on the 0-360
// degree circle, in the range (-180, 180].
func AngleDiff(a, b float64) float64 {
	d := math.Mod(b-a+540, 360) - 180
	if d == -180 {
		return 180
	}
	return d
}

// NormalizeBearing wraps a bearing into [0, 360).
func NormalizeBearing(deg float64) float64 {
	return math.Mod(math.Mod(deg, 360)+360, 360)
}

// MetersPerPixel returns the web mercator ground resolution at the given
// latitude and zoom level.
func MetersPerPixel(lat, zoom float64) float64 {
	return mercatorResolution * math.Cos(lat*math.Pi/180) / math.Exp2(zoom)
}

// ProjectedResolution returns EPSG:3857 projected meters per pixel at the
// given zoom. Unlike MetersPerPixel this carries no latitude correction;
// use it when working with already-projected coordinates.
func ProjectedResolution(zoom float64) float64 {
	return mercatorResolution / math.Exp2(zoom)
}

// BoundingRegion returns the geographic region covered by a viewport of
// width x height pixels centered on center at the given zoom. Higher zoom
// yields a smaller region. Latitude spans are clamped to the valid domain.
func BoundingRegion(center core.GeoPoint, zoom float64, width, height int) core.Region {
	mpp := MetersPerPixel(center.Lat, zoom)
	halfWidthM := float64(width) / 2 * mpp
	halfHeightM := float64(height) / 2 * mpp

	// meters -> degrees; longitude degrees shrink with latitude
	latRad := center.Lat * math.Pi / 180
	dLat := halfHeightM / 1000 / EarthRadiusKm * 180 / math.Pi
	dLon := halfWidthM / 1000 / (EarthRadiusKm * math.Cos(latRad)) * 180 / math.Pi

	r := core.NewRegion(
		core.GeoPoint{Lat: center.Lat - dLat, Lon: center.Lon - dLon},
		core.GeoPoint{Lat: center.Lat + dLat, Lon: center.Lon + dLon},
	)
	if r.MinLat < -90 {
		r.MinLat = -90
	}
	if r.MaxLat > 90 {
		r.MaxLat = 90
	}
	return r
}
