package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/koo5/horizon/internal/catalog"
	"github.com/koo5/horizon/internal/logging"
	"github.com/koo5/horizon/internal/selector"
	"github.com/koo5/horizon/internal/viewport"
	"github.com/koo5/horizon/pkg/core"
)

type recordingSurface struct {
	mu     sync.Mutex
	calls  [][]core.PlacedPhoto
	signal chan struct{}
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{signal: make(chan struct{}, 64)}
}

func (s *recordingSurface) ReplaceAll(_ context.Context, photos []core.PlacedPhoto) error {
	s.mu.Lock()
	cp := make([]core.PlacedPhoto, len(photos))
	copy(cp, photos)
	s.calls = append(s.calls, cp)
	s.mu.Unlock()
	s.signal <- struct{}{}
	return nil
}

func (s *recordingSurface) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *recordingSurface) lastCall() []core.PlacedPhoto {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

type slowCatalog struct {
	mu      sync.Mutex
	queries int
	delay   time.Duration
	records []core.PhotoRecord
	err     error
}

func (c *slowCatalog) Query(ctx context.Context, region core.Region) ([]core.PhotoRecord, error) {
	c.mu.Lock()
	c.queries++
	delay := c.delay
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	var out []core.PhotoRecord
	for _, r := range c.records {
		if region.Contains(r.Location) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *slowCatalog) queryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queries
}

func testViewport(zoom float64) core.Viewport {
	return core.Viewport{
		Center: core.GeoPoint{Lat: 59.9483, Lon: 10.7695},
		Zoom:   zoom,
		Width:  800,
		Height: 600,
	}
}

func testDeps(t *testing.T, cat catalog.Catalog, surface *recordingSurface, changes <-chan core.Viewport) Dependencies {
	t.Helper()
	lm := logging.NewSlogManager()
	lm.Setup("error", logging.Options{})
	return Dependencies{
		Changes:    changes,
		Catalog:    cat,
		Project:    viewport.MercatorProject,
		Surface:    surface,
		Config:     selector.DefaultConfig(),
		LogManager: lm,
	}
}

func waitForCalls(t *testing.T, surface *recordingSurface, n int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for surface.callCount() < n {
		select {
		case <-surface.signal:
		case <-deadline:
			t.Fatalf("timed out waiting for %d surface calls, got %d", n, surface.callCount())
		}
	}
}

func TestDispatcher_ProcessesChange(t *testing.T) {
	changes := make(chan core.Viewport, 16)
	surface := newRecordingSurface()
	cat := &slowCatalog{records: []core.PhotoRecord{
		{ID: "p1", Location: core.GeoPoint{Lat: 59.9483, Lon: 10.7795}, Thumbnail: "p1.jpg"},
	}}

	d, err := New(testDeps(t, cat, surface, changes))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	changes <- testViewport(14)
	waitForCalls(t, surface, 1)

	got := surface.lastCall()
	if len(got) != 1 || got[0].Record.ID != "p1" {
		t.Fatalf("expected p1 placed, got %+v", got)
	}
	if d.Passes() != 1 {
		t.Errorf("expected 1 pass, got %d", d.Passes())
	}

	cancel()
	d.Wait()
}

func TestDispatcher_CoalescesBurst(t *testing.T) {
	changes := make(chan core.Viewport, 64)
	surface := newRecordingSurface()
	cat := &slowCatalog{delay: 30 * time.Millisecond}

	d, err := New(testDeps(t, cat, surface, changes))
	if err != nil {
		t.Fatal(err)
	}

	// Fill the channel before the loop starts so the burst is pending when
	// the first snapshot is picked up.
	for zoom := 10.0; zoom < 20; zoom++ {
		changes <- testViewport(zoom)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	waitForCalls(t, surface, 1)
	close(changes)
	d.Wait()

	// Ten snapshots were pending; the drain leaves at most the first plus
	// the newest to process.
	if got := cat.queryCount(); got > 2 {
		t.Errorf("expected burst coalesced to at most 2 queries, got %d", got)
	}
	if got := surface.callCount(); got > 2 {
		t.Errorf("expected at most 2 surface calls, got %d", got)
	}
}

func TestDispatcher_LatestSnapshotWins(t *testing.T) {
	changes := make(chan core.Viewport, 64)
	surface := newRecordingSurface()
	near := core.PhotoRecord{ID: "near", Location: core.GeoPoint{Lat: 59.9483, Lon: 10.7725}, Thumbnail: "n.jpg"}
	cat := &slowCatalog{records: []core.PhotoRecord{near}}

	d, err := New(testDeps(t, cat, surface, changes))
	if err != nil {
		t.Fatal(err)
	}

	// The stale snapshot points far away from the photo; the newest one
	// contains it. Only the newest must drive the final strip.
	stale := testViewport(14)
	stale.Center = core.GeoPoint{Lat: 40, Lon: -74}
	newest := testViewport(14)

	changes <- stale
	changes <- newest
	close(changes)

	ctx := context.Background()
	d.Start(ctx)
	d.Wait()

	got := surface.lastCall()
	if len(got) != 1 || got[0].Record.ID != "near" {
		t.Fatalf("expected final strip from newest snapshot, got %+v", got)
	}
}

func TestDispatcher_CatalogFailureRendersEmpty(t *testing.T) {
	changes := make(chan core.Viewport, 4)
	surface := newRecordingSurface()
	cat := &slowCatalog{err: catalog.ErrCatalogUnavailable}

	d, err := New(testDeps(t, cat, surface, changes))
	if err != nil {
		t.Fatal(err)
	}

	changes <- testViewport(14)
	close(changes)

	d.Start(context.Background())
	d.Wait()

	if got := surface.callCount(); got != 1 {
		t.Fatalf("expected 1 surface call, got %d", got)
	}
	if got := surface.lastCall(); len(got) != 0 {
		t.Fatalf("expected empty strip on catalog failure, got %d placements", len(got))
	}
	if d.Failures() != 1 {
		t.Errorf("expected 1 failure recorded, got %d", d.Failures())
	}
	info, ok := d.LastPass()
	if !ok || info.Err == "" {
		t.Errorf("expected last pass to record the error, got %+v (ok=%v)", info, ok)
	}
}

func TestDispatcher_QueryTimeoutDegradesToEmpty(t *testing.T) {
	changes := make(chan core.Viewport, 4)
	surface := newRecordingSurface()
	cat := &slowCatalog{delay: time.Second}

	deps := testDeps(t, cat, surface, changes)
	deps.QueryTimeout = 20 * time.Millisecond

	d, err := New(deps)
	if err != nil {
		t.Fatal(err)
	}

	changes <- testViewport(14)
	close(changes)

	start := time.Now()
	d.Start(context.Background())
	d.Wait()

	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("expected timeout to bound the pass, took %v", elapsed)
	}
	if got := surface.lastCall(); len(got) != 0 {
		t.Fatalf("expected empty strip on timeout, got %d placements", len(got))
	}
	if d.Failures() != 1 {
		t.Errorf("expected 1 failure, got %d", d.Failures())
	}
}

func TestDispatcher_InvalidViewportRendersEmpty(t *testing.T) {
	changes := make(chan core.Viewport, 4)
	surface := newRecordingSurface()
	cat := &slowCatalog{}

	d, err := New(testDeps(t, cat, surface, changes))
	if err != nil {
		t.Fatal(err)
	}

	bad := testViewport(14)
	bad.Width = 0
	changes <- bad
	close(changes)

	d.Start(context.Background())
	d.Wait()

	if got := surface.lastCall(); len(got) != 0 {
		t.Fatalf("expected empty strip for invalid viewport, got %d placements", len(got))
	}
	if cat.queryCount() != 0 {
		t.Errorf("expected no catalog query for invalid viewport, got %d", cat.queryCount())
	}
}

type countingSink struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSink) RecordPass(core.Viewport, time.Duration, int, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func TestDispatcher_PerfSinkReceivesPasses(t *testing.T) {
	changes := make(chan core.Viewport, 4)
	surface := newRecordingSurface()
	sink := &countingSink{}

	deps := testDeps(t, &slowCatalog{}, surface, changes)
	deps.PerfSink = sink

	d, err := New(deps)
	if err != nil {
		t.Fatal(err)
	}

	changes <- testViewport(14)
	changes <- testViewport(15)
	close(changes)

	d.Start(context.Background())
	d.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.calls == 0 {
		t.Fatal("expected perf sink to receive pass measurements")
	}
}
