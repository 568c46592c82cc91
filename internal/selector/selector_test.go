package selector

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/koo5/horizon/internal/catalog"
	"github.com/koo5/horizon/internal/geo"
	"github.com/koo5/horizon/internal/viewport"
	"github.com/koo5/horizon/pkg/core"
)

type stubCatalog struct {
	records []core.PhotoRecord
	err     error
}

func (s *stubCatalog) Query(_ context.Context, region core.Region) ([]core.PhotoRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []core.PhotoRecord
	for _, r := range s.records {
		if region.Contains(r.Location) {
			out = append(out, r)
		}
	}
	return out, nil
}

func osloViewport() core.Viewport {
	return core.Viewport{
		Center: core.GeoPoint{Lat: 59.9483, Lon: 10.7695},
		Zoom:   14,
		Width:  800,
		Height: 600,
	}
}

func photoAt(id string, dLat, dLon float64) core.PhotoRecord {
	c := osloViewport().Center
	return core.PhotoRecord{
		ID:        id,
		Location:  core.GeoPoint{Lat: c.Lat + dLat, Lon: c.Lon + dLon},
		Thumbnail: id + ".jpg",
	}
}

func directed(rec core.PhotoRecord, dir float64) core.PhotoRecord {
	rec.Direction = &dir
	return rec
}

// Seven photos inside the zoom-14 region, every pair well over 100px apart
// on screen, with strictly increasing distance from the center.
func sevenPhotos() []core.PhotoRecord {
	return []core.PhotoRecord{
		photoAt("p1", 0, 0.010),
		photoAt("p2", 0, -0.012),
		photoAt("p3", 0.008, 0),
		photoAt("p4", -0.009, 0),
		photoAt("p5", 0.008, 0.020),
		photoAt("p6", -0.008, -0.022),
		photoAt("p7", 0.012, 0.012),
	}
}

func TestSelect_EmptyCatalog(t *testing.T) {
	got, err := Select(context.Background(), osloViewport(), viewport.MercatorProject, &stubCatalog{}, DefaultConfig())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d placements", len(got))
	}
}

func TestSelect_SevenCandidatesFiveResults(t *testing.T) {
	cat := &stubCatalog{records: sevenPhotos()}
	v := osloViewport()

	got, err := Select(context.Background(), v, viewport.MercatorProject, cat, DefaultConfig())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected exactly 5 placements, got %d", len(got))
	}

	wantOrder := []string{"p1", "p2", "p3", "p4", "p5"}
	for i, want := range wantOrder {
		if got[i].Record.ID != want {
			t.Errorf("placement %d: expected %s, got %s", i, want, got[i].Record.ID)
		}
	}

	// Ranking invariant: distances never decrease along the result.
	for i := 1; i < len(got); i++ {
		prev := geo.HaversineKm(v.Center, got[i-1].Record.Location)
		cur := geo.HaversineKm(v.Center, got[i].Record.Location)
		if prev > cur {
			t.Errorf("placement %d is closer than placement %d", i, i-1)
		}
	}

	// Z is the inverse of rank: closest photo draws on top.
	for i, p := range got {
		if p.Rank != i {
			t.Errorf("placement %d: expected rank %d, got %d", i, i, p.Rank)
		}
		if p.Z != len(got)-1-i {
			t.Errorf("placement %d: expected z %d, got %d", i, len(got)-1-i, p.Z)
		}
	}
}

func TestSelect_SeparationInvariant(t *testing.T) {
	cat := &stubCatalog{records: sevenPhotos()}
	cfg := DefaultConfig()

	got, err := Select(context.Background(), osloViewport(), viewport.MercatorProject, cat, cfg)
	if err != nil {
		t.Fatal(err)
	}
	minSep := float64(cfg.ThumbnailSize)
	for i := 0; i < len(got); i++ {
		for j := i + 1; j < len(got); j++ {
			d := math.Hypot(
				got[i].Position.X-got[j].Position.X,
				got[i].Position.Y-got[j].Position.Y,
			)
			if d < minSep {
				t.Errorf("placements %s and %s only %.1fpx apart, want >= %.0f",
					got[i].Record.ID, got[j].Record.ID, d, minSep)
			}
		}
	}
}

func TestSelect_OverlapDropsLowerRanked(t *testing.T) {
	// 0.0002 degrees of longitude is roughly 3px at zoom 14.
	near := photoAt("a-near", 0, 0.002)
	overlapping := photoAt("b-far", 0, 0.0022)
	cat := &stubCatalog{records: []core.PhotoRecord{overlapping, near}}

	cfg := DefaultConfig()
	cfg.MinSeparationPx = 100

	got, err := Select(context.Background(), osloViewport(), viewport.MercatorProject, cat, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(got))
	}
	if got[0].Record.ID != "a-near" {
		t.Errorf("expected the closer photo to win, got %s", got[0].Record.ID)
	}
}

func TestSelect_Deterministic(t *testing.T) {
	cat := &stubCatalog{records: sevenPhotos()}
	v := osloViewport()
	v.Bearing = 123.4

	first, err := Select(context.Background(), v, viewport.MercatorProject, cat, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Select(context.Background(), v, viewport.MercatorProject, cat, DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: expected %d placements, got %d", i, len(first), len(again))
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d: placement %d differs: %+v vs %+v", i, j, first[j], again[j])
			}
		}
	}
}

func TestSelect_TieBreakByID(t *testing.T) {
	// Mirror images east and west of center are equidistant.
	cat := &stubCatalog{records: []core.PhotoRecord{
		photoAt("west", 0, -0.01),
		photoAt("east", 0, 0.01),
	}}

	got, err := Select(context.Background(), osloViewport(), viewport.MercatorProject, cat, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(got))
	}
	if got[0].Record.ID != "east" || got[1].Record.ID != "west" {
		t.Errorf("expected tie broken by ID ascending, got %s then %s",
			got[0].Record.ID, got[1].Record.ID)
	}
}

func TestSelect_OrientationFilter(t *testing.T) {
	cat := &stubCatalog{records: []core.PhotoRecord{
		directed(photoAt("facing", 0, 0.010), 100),     // 10 degrees off
		directed(photoAt("opposite", 0, -0.012), 270),  // 180 degrees off
		directed(photoAt("sideways", 0.008, 0), 200),   // 110 degrees off
		photoAt("undirected", -0.009, 0),               // no direction recorded
		directed(photoAt("wrapped", 0.008, 0.020), 50), // 40 degrees off
	}}

	v := osloViewport()
	v.Bearing = 90
	cfg := DefaultConfig()
	cfg.OrientationFilter = true

	got, err := Select(context.Background(), v, viewport.MercatorProject, cat, cfg)
	if err != nil {
		t.Fatal(err)
	}
	ids := make(map[string]bool, len(got))
	for _, p := range got {
		ids[p.Record.ID] = true
	}
	if !ids["facing"] || !ids["wrapped"] {
		t.Errorf("expected photos within tolerance to survive, got %v", ids)
	}
	if ids["opposite"] || ids["sideways"] || ids["undirected"] {
		t.Errorf("expected off-bearing and undirected photos dropped, got %v", ids)
	}
}

func TestSelect_OrientationFilterWrapsAtNorth(t *testing.T) {
	cat := &stubCatalog{records: []core.PhotoRecord{
		directed(photoAt("west-of-north", 0, 0.010), 350),
	}}

	v := osloViewport()
	v.Bearing = 10
	cfg := DefaultConfig()
	cfg.OrientationFilter = true

	got, err := Select(context.Background(), v, viewport.MercatorProject, cat, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected shortest-arc comparison to keep the photo, got %d placements", len(got))
	}
}

func TestSelect_CatalogFailure(t *testing.T) {
	cat := &stubCatalog{err: catalog.ErrCatalogUnavailable}

	got, err := Select(context.Background(), osloViewport(), viewport.MercatorProject, cat, DefaultConfig())
	if !errors.Is(err, catalog.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result on catalog failure, got %d placements", len(got))
	}
}

type hangingCatalog struct{}

func (hangingCatalog) Query(ctx context.Context, _ core.Region) ([]core.PhotoRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSelect_TimeoutSurfacesCatalogUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	got, err := Select(ctx, osloViewport(), viewport.MercatorProject, hangingCatalog{}, DefaultConfig())
	if !errors.Is(err, catalog.ErrCatalogUnavailable) {
		t.Fatalf("expected timeout to surface ErrCatalogUnavailable, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d placements", len(got))
	}
}

func TestSelect_InvalidViewport(t *testing.T) {
	v := osloViewport()
	v.Zoom = math.NaN()

	got, err := Select(context.Background(), v, viewport.MercatorProject, &stubCatalog{}, DefaultConfig())
	if !errors.Is(err, viewport.ErrInvalidViewport) {
		t.Fatalf("expected ErrInvalidViewport, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d placements", len(got))
	}
}

func TestSelect_MaxResultsZero(t *testing.T) {
	cat := &stubCatalog{records: sevenPhotos()}
	cfg := DefaultConfig()
	cfg.MaxResults = 0

	got, err := Select(context.Background(), osloViewport(), viewport.MercatorProject, cat, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no placements with maxResults 0, got %d", len(got))
	}
}

func TestSelect_ResultNeverExceedsMaxResults(t *testing.T) {
	cat := &stubCatalog{records: sevenPhotos()}
	for max := 0; max <= 8; max++ {
		cfg := DefaultConfig()
		cfg.MaxResults = max
		got, err := Select(context.Background(), osloViewport(), viewport.MercatorProject, cat, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) > max {
			t.Errorf("maxResults %d: got %d placements", max, len(got))
		}
	}
}

func TestSelect_MinSeparationDefaultsToThumbnailSize(t *testing.T) {
	cfg := Config{MaxResults: 5, ThumbnailSize: 64}
	n := cfg.normalized()
	if n.MinSeparationPx != 64 {
		t.Errorf("expected separation to follow thumbnail size, got %f", n.MinSeparationPx)
	}
}
