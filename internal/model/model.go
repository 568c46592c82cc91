package model

import (
	"time"

	"gorm.io/datatypes"
)

// DatabaseModels lists the structs representing tables in the catalog schema.
var DatabaseModels = []interface{}{
	&Photo{},
}

// Photo is the persisted form of a geotagged photo record.
// Latitude/Longitude are stored as plain columns so the same schema works on
// SQLite (no spatial extension) and Postgres alike; region queries become
// range predicates over the indexed columns.
type Photo struct {
	ID        string  `gorm:"primaryKey"`
	Latitude  float64 `gorm:"index"`
	Longitude float64 `gorm:"index"`
	// Direction is the EXIF capture bearing in degrees; negative means absent.
	Direction float64 `gorm:"default:-1"`
	Thumbnail string
	TakenAt   time.Time
	// ExifTags keeps the raw tag set the scanner extracted, for debugging
	// and future re-indexing without touching the files again.
	ExifTags  datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}
