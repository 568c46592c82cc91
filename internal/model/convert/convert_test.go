package convert

import (
	"testing"
	"time"

	"github.com/koo5/horizon/internal/model"
	"github.com/koo5/horizon/pkg/core"
)

func TestPhotoToCore_WithDirection(t *testing.T) {
	p := model.Photo{
		ID:        "abc",
		Latitude:  59.9,
		Longitude: 10.7,
		Direction: 135,
		Thumbnail: "/photos/abc.jpg",
		TakenAt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	rec := PhotoToCore(p)

	if rec.ID != "abc" {
		t.Errorf("expected ID 'abc', got %q", rec.ID)
	}
	if rec.Location.Lat != 59.9 || rec.Location.Lon != 10.7 {
		t.Errorf("unexpected location %+v", rec.Location)
	}
	if rec.Direction == nil || *rec.Direction != 135 {
		t.Errorf("expected direction 135, got %v", rec.Direction)
	}
}

func TestPhotoToCore_NoDirection(t *testing.T) {
	p := model.Photo{ID: "x", Direction: -1}

	rec := PhotoToCore(p)

	if rec.Direction != nil {
		t.Errorf("expected nil direction, got %v", *rec.Direction)
	}
}

func TestPhotoToCore_ZeroDirectionIsNorth(t *testing.T) {
	p := model.Photo{ID: "x", Direction: 0}

	rec := PhotoToCore(p)

	if rec.Direction == nil || *rec.Direction != 0 {
		t.Error("expected direction 0 (due north) to survive conversion")
	}
}

func TestPhotoFromCore_RoundTrip(t *testing.T) {
	dir := 270.5
	rec := core.PhotoRecord{
		ID:        "rt",
		Location:  core.GeoPoint{Lat: -33.8, Lon: 151.2},
		Direction: &dir,
		Thumbnail: "file:///rt.jpg",
	}

	back := PhotoToCore(PhotoFromCore(rec))

	if back.ID != rec.ID {
		t.Errorf("expected ID %q, got %q", rec.ID, back.ID)
	}
	if back.Location != rec.Location {
		t.Errorf("expected location %+v, got %+v", rec.Location, back.Location)
	}
	if back.Direction == nil || *back.Direction != dir {
		t.Errorf("expected direction %f, got %v", dir, back.Direction)
	}
}

func TestPhotoFromCore_NilDirectionStoredNegative(t *testing.T) {
	p := PhotoFromCore(core.PhotoRecord{ID: "n"})

	if p.Direction != -1 {
		t.Errorf("expected -1 sentinel, got %f", p.Direction)
	}
}
