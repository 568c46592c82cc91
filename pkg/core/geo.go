// pkg/core/geo.go
package core

import (
	geom "github.com/peterstace/simplefeatures/geom"
)

// GeoPoint is a geographic coordinate in decimal degrees (EPSG:4326).
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Point converts the coordinate to a simplefeatures XY point (lon/X, lat/Y).
func (p GeoPoint) Point() geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.Lon, Y: p.Lat},
		Type: geom.DimXY,
	})
}

// Region is an axis-aligned geographic bounding region in decimal degrees.
type Region struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// NewRegion builds a Region from two corner points, normalizing the order.
func NewRegion(a, b GeoPoint) Region {
	r := Region{
		MinLat: a.Lat, MaxLat: b.Lat,
		MinLon: a.Lon, MaxLon: b.Lon,
	}
	if r.MinLat > r.MaxLat {
		r.MinLat, r.MaxLat = r.MaxLat, r.MinLat
	}
	if r.MinLon > r.MaxLon {
		r.MinLon, r.MaxLon = r.MaxLon, r.MinLon
	}
	return r
}

// Contains reports whether the point falls inside the region (inclusive).
func (r Region) Contains(p GeoPoint) bool {
	return p.Lat >= r.MinLat && p.Lat <= r.MaxLat &&
		p.Lon >= r.MinLon && p.Lon <= r.MaxLon
}

// Envelope converts the region to a simplefeatures envelope (lon/X, lat/Y).
func (r Region) Envelope() geom.Envelope {
	return geom.NewEnvelope(
		geom.XY{X: r.MinLon, Y: r.MinLat},
		geom.XY{X: r.MaxLon, Y: r.MaxLat},
	)
}

// Center returns the midpoint of the region.
func (r Region) Center() GeoPoint {
	return GeoPoint{
		Lat: (r.MinLat + r.MaxLat) / 2,
		Lon: (r.MinLon + r.MaxLon) / 2,
	}
}
