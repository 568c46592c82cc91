package core

import "time"

// PhotoRecord is a geotagged photo known to the catalog.
// Records are created by the catalog and immutable from the selector's
// perspective; the catalog owns their lifetime.
type PhotoRecord struct {
	ID        string   // stable identifier, also the deterministic sort tiebreaker
	Location  GeoPoint // where the photo was taken
	Direction *float64 // capture bearing in degrees 0-360, nil when EXIF carried none
	Thumbnail string   // opaque thumbnail handle (file path or URI)
	TakenAt   time.Time
}

// HasDirection reports whether the record carries a capture bearing.
func (p PhotoRecord) HasDirection() bool {
	return p.Direction != nil
}
