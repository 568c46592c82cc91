// Package memory implements an in-memory photo catalog backed by an R-tree,
// sized for the tens of thousands of records a local photo library produces.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/koo5/horizon/pkg/core"
)

const (
	// tolerance is the side length of the degenerate rectangle a point is
	// indexed under; rtreego rejects zero-area rects.
	tolerance   = 0.000001
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// spatialItem wraps a PhotoRecord for R-tree indexing.
type spatialItem struct {
	record core.PhotoRecord
	rect   *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// Catalog is a thread-safe R-tree backed photo catalog.
type Catalog struct {
	mu   sync.RWMutex
	tree *rtreego.Rtree
	byID map[string]*spatialItem
}

// New creates an empty in-memory catalog.
func New() *Catalog {
	return &Catalog{
		tree: rtreego.NewTree(dimensions, minChildren, maxChildren),
		byID: make(map[string]*spatialItem),
	}
}

// Add inserts or replaces records by ID.
func (c *Catalog) Add(_ context.Context, records ...core.PhotoRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, rec := range records {
		if prev, ok := c.byID[rec.ID]; ok {
			c.tree.Delete(prev)
		}
		pt := rtreego.Point{rec.Location.Lat, rec.Location.Lon}
		item := &spatialItem{record: rec, rect: pt.ToRect(tolerance)}
		c.tree.Insert(item)
		c.byID[rec.ID] = item
	}
	return nil
}

// Query returns all records inside the region, in no particular order.
func (c *Catalog) Query(_ context.Context, region core.Region) ([]core.PhotoRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bottomLeft := rtreego.Point{region.MinLat, region.MinLon}
	size := []float64{region.MaxLat - region.MinLat, region.MaxLon - region.MinLon}
	// degenerate regions still need a positive-area search rect
	for i := range size {
		if size[i] < tolerance {
			size[i] = tolerance
		}
	}

	bounds, err := rtreego.NewRect(bottomLeft, size)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding region: %w", err)
	}

	results := c.tree.SearchIntersect(bounds)

	// The R-tree indexes padded rects; re-check actual point containment.
	records := make([]core.PhotoRecord, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialItem)
		if !ok {
			continue
		}
		if region.Contains(item.record.Location) {
			records = append(records, item.record)
		}
	}
	return records, nil
}

// Len returns the number of records held.
func (c *Catalog) Len(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.byID)), nil
}

// Clear removes all records.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	c.byID = make(map[string]*spatialItem)
}
