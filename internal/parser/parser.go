// Package parser provides pure []string -> struct conversion for watch-mode
// control commands. It has zero external dependencies beyond a logger.
package parser

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/koo5/horizon/internal/geo"
	"github.com/koo5/horizon/pkg/core"
)

// Parser converts command arguments into domain values.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseViewportSet parses a full viewport snapshot.
// Args: "lat,lon" zoom bearing [width height]
func (p *Parser) ParseViewportSet(args []string, defaultWidth, defaultHeight int) (core.Viewport, error) {
	if len(args) < 3 {
		return core.Viewport{}, fmt.Errorf("viewport set expects at least 3 args, got %d", len(args))
	}

	center, err := geo.PointFromString(args[0])
	if err != nil {
		return core.Viewport{}, fmt.Errorf("error parsing viewport center: %w", err)
	}
	zoom, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return core.Viewport{}, fmt.Errorf("error parsing viewport zoom: %w", err)
	}
	bearing, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return core.Viewport{}, fmt.Errorf("error parsing viewport bearing: %w", err)
	}

	v := core.Viewport{
		Center:  center,
		Zoom:    zoom,
		Bearing: geo.NormalizeBearing(bearing),
		Width:   defaultWidth,
		Height:  defaultHeight,
	}

	if len(args) >= 5 {
		w, err := strconv.Atoi(args[3])
		if err != nil {
			return core.Viewport{}, fmt.Errorf("error parsing viewport width: %w", err)
		}
		h, err := strconv.Atoi(args[4])
		if err != nil {
			return core.Viewport{}, fmt.Errorf("error parsing viewport height: %w", err)
		}
		v.Width, v.Height = w, h
	}

	p.logger.Debug("Parsed viewport",
		"lat", center.Lat, "lon", center.Lon, "zoom", zoom, "bearing", v.Bearing)
	return v, nil
}

// ParseCenter parses a pan command. Args: "lat,lon"
func (p *Parser) ParseCenter(args []string) (core.GeoPoint, error) {
	if len(args) < 1 {
		return core.GeoPoint{}, fmt.Errorf("center expects 1 arg, got %d", len(args))
	}
	center, err := geo.PointFromString(args[0])
	if err != nil {
		return core.GeoPoint{}, fmt.Errorf("error parsing center: %w", err)
	}
	return center, nil
}

// ParseZoom parses a zoom command. Args: zoom
func (p *Parser) ParseZoom(args []string) (float64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("zoom expects 1 arg, got %d", len(args))
	}
	zoom, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing zoom: %w", err)
	}
	return zoom, nil
}

// ParseBearing parses a rotation command, normalized to [0, 360). Args: bearing
func (p *Parser) ParseBearing(args []string) (float64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("bearing expects 1 arg, got %d", len(args))
	}
	bearing, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing bearing: %w", err)
	}
	return geo.NormalizeBearing(bearing), nil
}

// ParsePhotoAdd parses a photo record.
// Args: id "lat,lon" direction thumbnail [takenAt]
// A direction of "-" means the camera heading was not recorded.
func (p *Parser) ParsePhotoAdd(args []string) (core.PhotoRecord, error) {
	if len(args) < 4 {
		return core.PhotoRecord{}, fmt.Errorf("photo add expects at least 4 args, got %d", len(args))
	}

	location, err := geo.PointFromString(args[1])
	if err != nil {
		return core.PhotoRecord{}, fmt.Errorf("error parsing photo location: %w", err)
	}

	rec := core.PhotoRecord{
		ID:        args[0],
		Location:  location,
		Thumbnail: args[3],
	}

	if args[2] != "-" {
		dir, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return core.PhotoRecord{}, fmt.Errorf("error parsing photo direction: %w", err)
		}
		dir = geo.NormalizeBearing(dir)
		rec.Direction = &dir
	}

	if len(args) >= 5 {
		takenAt, err := time.Parse(time.RFC3339, args[4])
		if err != nil {
			return core.PhotoRecord{}, fmt.Errorf("error parsing photo timestamp: %w", err)
		}
		rec.TakenAt = takenAt
	}

	return rec, nil
}
