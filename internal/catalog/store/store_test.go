package store

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/koo5/horizon/internal/catalog"
	"github.com/koo5/horizon/pkg/core"
)

// Compile-time interface checks
var (
	_ catalog.Writable  = (*Catalog)(nil)
	_ catalog.Lifecycle = (*Catalog)(nil)
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	c := NewWithDB(db, zerolog.Nop())
	require.NoError(t, c.Init())
	t.Cleanup(func() { c.Close() })
	return c
}

func dirPtr(d float64) *float64 { return &d }

func TestAddAndQuery(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.Add(ctx,
		core.PhotoRecord{ID: "a", Location: core.GeoPoint{Lat: 59.95, Lon: 10.75}, Direction: dirPtr(90), Thumbnail: "/a.jpg"},
		core.PhotoRecord{ID: "b", Location: core.GeoPoint{Lat: 59.96, Lon: 10.76}, Thumbnail: "/b.jpg"},
		core.PhotoRecord{ID: "far", Location: core.GeoPoint{Lat: 48.85, Lon: 2.35}, Thumbnail: "/far.jpg"},
	))

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	results, err := c.Query(ctx, core.NewRegion(
		core.GeoPoint{Lat: 59.90, Lon: 10.70},
		core.GeoPoint{Lat: 60.00, Lon: 10.80},
	))
	require.NoError(t, err)
	require.Len(t, results, 2)

	byID := map[string]core.PhotoRecord{}
	for _, r := range results {
		byID[r.ID] = r
	}
	require.Contains(t, byID, "a")
	require.Contains(t, byID, "b")
	require.NotNil(t, byID["a"].Direction)
	assert.Equal(t, 90.0, *byID["a"].Direction)
	assert.Nil(t, byID["b"].Direction)
}

func TestAdd_UpsertsByID(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, core.PhotoRecord{ID: "p", Location: core.GeoPoint{Lat: 1, Lon: 1}}))
	require.NoError(t, c.Add(ctx, core.PhotoRecord{ID: "p", Location: core.GeoPoint{Lat: 2, Lon: 2}}))

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	results, err := c.Query(ctx, core.NewRegion(core.GeoPoint{Lat: 1.5, Lon: 1.5}, core.GeoPoint{Lat: 2.5, Lon: 2.5}))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2.0, results[0].Location.Lat)
}

func TestQuery_EmptyRegion(t *testing.T) {
	c := newTestCatalog(t)

	results, err := c.Query(context.Background(), core.NewRegion(
		core.GeoPoint{Lat: 0, Lon: 0},
		core.GeoPoint{Lat: 1, Lon: 1},
	))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQuery_ClosedCatalogSurfacesUnavailable(t *testing.T) {
	c := newTestCatalog(t)
	require.NoError(t, c.Close())

	_, err := c.Query(context.Background(), core.NewRegion(
		core.GeoPoint{Lat: 0, Lon: 0},
		core.GeoPoint{Lat: 1, Lon: 1},
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrCatalogUnavailable))
}

func TestAdd_Empty(t *testing.T) {
	c := newTestCatalog(t)
	assert.NoError(t, c.Add(context.Background()))
}
