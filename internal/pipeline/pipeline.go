// Package pipeline bridges viewport changes to selection passes. One
// dispatcher drives one selector per window: it takes the latest snapshot,
// runs select, and hands the result to the render surface.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/koo5/horizon/internal/cache"
	"github.com/koo5/horizon/internal/catalog"
	"github.com/koo5/horizon/internal/logging"
	"github.com/koo5/horizon/internal/render"
	"github.com/koo5/horizon/internal/selector"
	"github.com/koo5/horizon/internal/viewport"
	"github.com/koo5/horizon/pkg/core"
)

const defaultQueryTimeout = 500 * time.Millisecond

// PerfSink receives per-pass measurements. Optional.
type PerfSink interface {
	RecordPass(v core.Viewport, duration time.Duration, placed int, err error)
}

// Dependencies holds everything a dispatcher needs for selection passes.
type Dependencies struct {
	Changes    <-chan core.Viewport
	Catalog    catalog.Catalog
	Project    viewport.ProjectFunc
	Surface    render.Surface
	Config     selector.Config
	LogManager *logging.SlogManager

	// QueryTimeout bounds each catalog query so a slow catalog cannot stall
	// the loop. Zero means the default.
	QueryTimeout time.Duration

	// PerfSink, when set, receives one measurement per pass.
	PerfSink PerfSink
}

// Dispatcher runs the selection loop. Notifications arriving while a pass
// is in flight are coalesced: when the loop is free again it processes only
// the newest snapshot, never a stale backlog.
type Dispatcher struct {
	deps Dependencies

	passes    cache.SafeCounter
	failures  cache.SafeCounter
	stats     *cache.PassStats
	coalesced metric.Int64Counter
	processed metric.Int64Counter
	failed    metric.Int64Counter
	duration  metric.Float64Histogram

	wg sync.WaitGroup
}

// New creates a Dispatcher. Uses the global OTel meter for metrics (no-op
// if not configured).
func New(deps Dependencies) (*Dispatcher, error) {
	if deps.QueryTimeout <= 0 {
		deps.QueryTimeout = defaultQueryTimeout
	}

	d := &Dispatcher{
		deps:  deps,
		stats: cache.NewPassStats(),
	}

	m := meter()

	var err error
	d.processed, err = m.Int64Counter(
		"pipeline.passes.processed",
		metric.WithDescription("Total selection passes processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.failed, err = m.Int64Counter(
		"pipeline.passes.failed",
		metric.WithDescription("Total selection passes that surfaced an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	d.coalesced, err = m.Int64Counter(
		"pipeline.snapshots.coalesced",
		metric.WithDescription("Viewport snapshots superseded before processing"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating coalesced counter: %w", err)
	}

	d.duration, err = m.Float64Histogram(
		"pipeline.pass.duration",
		metric.WithDescription("Selection pass duration in milliseconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return d, nil
}

// Start launches the dispatch loop. It returns immediately; the loop exits
// when ctx is cancelled or the change channel closes.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(ctx)
	}()
}

// Wait blocks until the dispatch loop has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Passes returns how many selection passes have completed.
func (d *Dispatcher) Passes() int {
	return d.passes.Value()
}

// Failures returns how many passes surfaced an error.
func (d *Dispatcher) Failures() int {
	return d.failures.Value()
}

// LastPass returns the most recent pass outcome.
func (d *Dispatcher) LastPass() (cache.PassInfo, bool) {
	return d.stats.Last()
}

func (d *Dispatcher) run(ctx context.Context) {
	log := d.deps.LogManager.Logger()
	log.Info("Dispatch loop started", "queryTimeout", d.deps.QueryTimeout)

	for {
		select {
		case <-ctx.Done():
			log.Info("Dispatch loop stopped", "reason", ctx.Err())
			return
		case v, ok := <-d.deps.Changes:
			if !ok {
				log.Info("Dispatch loop stopped", "reason", "change channel closed")
				return
			}
			v = d.drainToLatest(ctx, v)
			d.process(ctx, v)
		}
	}
}

// drainToLatest empties the change channel and returns the newest snapshot.
// Superseded snapshots are discarded, never queued.
func (d *Dispatcher) drainToLatest(ctx context.Context, v core.Viewport) core.Viewport {
	for {
		select {
		case next, ok := <-d.deps.Changes:
			if !ok {
				return v
			}
			d.coalesced.Add(ctx, 1)
			v = next
		default:
			return v
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, v core.Viewport) {
	log := d.deps.LogManager.Logger()
	start := time.Now()

	qctx, cancel := context.WithTimeout(ctx, d.deps.QueryTimeout)
	placed, err := selector.Select(qctx, v, d.deps.Project, d.deps.Catalog, d.deps.Config)
	cancel()

	elapsed := time.Since(start)

	if err != nil {
		// Recoverable: show an empty strip instead of stale thumbnails and
		// keep the map interactive.
		d.failures.Inc()
		d.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("error", errorKind(err))))
		log.Error("Selection pass failed", "error", err, "duration", elapsed)
		placed = nil
	}

	if rerr := d.deps.Surface.ReplaceAll(ctx, placed); rerr != nil {
		log.Error("Render surface rejected placements", "error", rerr)
	}

	d.passes.Inc()
	d.processed.Add(ctx, 1)
	d.duration.Record(ctx, float64(elapsed.Microseconds())/1000)

	info := cache.PassInfo{
		At:       start,
		Duration: elapsed,
		Placed:   len(placed),
	}
	if err != nil {
		info.Err = err.Error()
	}
	d.stats.Record(info)

	if d.deps.PerfSink != nil {
		d.deps.PerfSink.RecordPass(v, elapsed, len(placed), err)
	}

	log.Debug("Selection pass complete",
		"placed", len(placed),
		"duration", elapsed,
		"zoom", v.Zoom,
		"bearing", v.Bearing)
}

func errorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		return "catalog_unavailable"
	case errors.Is(err, viewport.ErrInvalidViewport):
		return "invalid_viewport"
	default:
		return "other"
	}
}
