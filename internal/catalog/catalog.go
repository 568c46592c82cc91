// Package catalog defines the photo catalog boundary: a read-mostly source of
// geotagged photo records queryable by bounding region.
package catalog

import (
	"context"
	"errors"

	"github.com/koo5/horizon/pkg/core"
)

// ErrCatalogUnavailable is returned when the catalog cannot be reached or a
// query times out. Callers treat it as recoverable and render an empty set.
var ErrCatalogUnavailable = errors.New("photo catalog unavailable")

// Catalog is the query interface the selector depends on. Results carry no
// ordering guarantee; the selector re-sorts. Implementations must be safe for
// concurrent reads.
type Catalog interface {
	// Query returns all records whose location falls inside the region.
	Query(ctx context.Context, region core.Region) ([]core.PhotoRecord, error)
}

// Writable is the optional ingestion side, implemented by catalogs that can
// be populated by the scanner.
type Writable interface {
	Catalog

	// Add inserts or replaces records by ID.
	Add(ctx context.Context, records ...core.PhotoRecord) error
	// Len returns the number of records held.
	Len(ctx context.Context) (int64, error)
}

// Lifecycle is implemented by backends that hold external resources.
type Lifecycle interface {
	Init() error
	Close() error
}
