package render

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/koo5/horizon/pkg/core"
)

func placement(id string, rank int) core.PlacedPhoto {
	return core.PlacedPhoto{
		Record:   core.PhotoRecord{ID: id, Thumbnail: id + ".jpg"},
		Position: core.ScreenPoint{X: float64(rank) * 150, Y: 0},
		Rank:     rank,
	}
}

func testLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestStripSurface_ReplaceAll(t *testing.T) {
	loads := 0
	loader := func(ref string) ([]byte, error) {
		loads++
		return []byte(ref), nil
	}
	s, err := NewStripSurface(loader, 8, testLog())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.ReplaceAll(context.Background(), []core.PlacedPhoto{placement("a", 0), placement("b", 1)}); err != nil {
		t.Fatal(err)
	}
	items := s.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if string(items[0].Thumb) != "a.jpg" {
		t.Errorf("expected thumbnail bytes for a.jpg, got %q", items[0].Thumb)
	}
	if loads != 2 {
		t.Errorf("expected 2 loader calls, got %d", loads)
	}
}

func TestStripSurface_ReplacesWholesale(t *testing.T) {
	s, err := NewStripSurface(func(ref string) ([]byte, error) { return nil, nil }, 8, testLog())
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := s.ReplaceAll(ctx, []core.PlacedPhoto{placement("a", 0), placement("b", 1), placement("c", 2)}); err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceAll(ctx, []core.PlacedPhoto{placement("d", 0)}); err != nil {
		t.Fatal(err)
	}

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("expected old items discarded, got %d items", len(items))
	}
	if items[0].Placement.Record.ID != "d" {
		t.Errorf("expected item d, got %s", items[0].Placement.Record.ID)
	}
}

func TestStripSurface_EmptyClears(t *testing.T) {
	s, err := NewStripSurface(nil, 8, testLog())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.ReplaceAll(ctx, []core.PlacedPhoto{placement("a", 0)}); err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceAll(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Items()); got != 0 {
		t.Fatalf("expected empty strip, got %d items", got)
	}
}

func TestStripSurface_CachesThumbnails(t *testing.T) {
	loads := map[string]int{}
	loader := func(ref string) ([]byte, error) {
		loads[ref]++
		return []byte(ref), nil
	}
	s, err := NewStripSurface(loader, 8, testLog())
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := s.ReplaceAll(ctx, []core.PlacedPhoto{placement("a", 0)}); err != nil {
			t.Fatal(err)
		}
	}
	if loads["a.jpg"] != 1 {
		t.Errorf("expected a single loader call for cached thumbnail, got %d", loads["a.jpg"])
	}
}

func TestStripSurface_LoaderFailureKeepsPlacement(t *testing.T) {
	loader := func(ref string) ([]byte, error) {
		return nil, errors.New("missing file")
	}
	s, err := NewStripSurface(loader, 8, testLog())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceAll(context.Background(), []core.PlacedPhoto{placement("a", 0)}); err != nil {
		t.Fatal(err)
	}
	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("expected placement kept on load failure, got %d items", len(items))
	}
	if items[0].Thumb != nil {
		t.Errorf("expected nil thumbnail bytes, got %q", items[0].Thumb)
	}
}
