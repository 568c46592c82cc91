// Package convert maps GORM catalog models to core domain types and back.
package convert

import (
	"github.com/koo5/horizon/internal/model"
	"github.com/koo5/horizon/pkg/core"
)

// PhotoToCore converts a persisted Photo row to a core.PhotoRecord.
// A negative stored direction means the EXIF carried no capture bearing.
func PhotoToCore(p model.Photo) core.PhotoRecord {
	rec := core.PhotoRecord{
		ID:        p.ID,
		Location:  core.GeoPoint{Lat: p.Latitude, Lon: p.Longitude},
		Thumbnail: p.Thumbnail,
		TakenAt:   p.TakenAt,
	}
	if p.Direction >= 0 {
		d := p.Direction
		rec.Direction = &d
	}
	return rec
}

// PhotoFromCore converts a core.PhotoRecord to its persisted form.
func PhotoFromCore(rec core.PhotoRecord) model.Photo {
	p := model.Photo{
		ID:        rec.ID,
		Latitude:  rec.Location.Lat,
		Longitude: rec.Location.Lon,
		Direction: -1,
		Thumbnail: rec.Thumbnail,
		TakenAt:   rec.TakenAt,
	}
	if rec.Direction != nil {
		p.Direction = *rec.Direction
	}
	return p
}
