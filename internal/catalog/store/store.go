// Package store implements a GORM-backed photo catalog. Postgres is used when
// configured and reachable; otherwise it falls back to a local SQLite file so
// a scan is never lost to a missing database server.
package store

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/koo5/horizon/internal/catalog"
	"github.com/koo5/horizon/internal/model"
	"github.com/koo5/horizon/internal/model/convert"
	"github.com/koo5/horizon/pkg/core"
)

// Catalog is a photo catalog persisted through GORM.
type Catalog struct {
	db     *gorm.DB
	log    zerolog.Logger
	dbType string
}

// New creates a catalog for the configured database type ("postgres" or
// "sqlite"). Postgres failures fall back to SQLite.
func New(log zerolog.Logger) (*Catalog, error) {
	c := &Catalog{log: log}

	var err error
	if viper.GetString("catalog.type") == "postgres" {
		c.db, err = openPostgres()
		c.dbType = "postgres"
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to Postgres, falling back to SQLite")
		}
	}
	if c.db == nil {
		c.db, err = openSqlite(viper.GetString("catalog.sqlitePath"))
		c.dbType = "sqlite"
		if err != nil {
			return nil, fmt.Errorf("failed to open local SQLite catalog: %w", err)
		}
		log.Info().Str("path", viper.GetString("catalog.sqlitePath")).Msg("Using local SQLite catalog")
	}

	return c, nil
}

// NewWithDB wraps an existing GORM handle, used by tests and embedders that
// manage their own connection.
func NewWithDB(db *gorm.DB, log zerolog.Logger) *Catalog {
	return &Catalog{db: db, log: log, dbType: "external"}
}

// Init migrates the catalog schema.
func (c *Catalog) Init() error {
	if err := c.db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Add inserts or replaces records by ID.
func (c *Catalog) Add(ctx context.Context, records ...core.PhotoRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]model.Photo, len(records))
	for i, rec := range records {
		rows[i] = convert.PhotoFromCore(rec)
	}
	if err := c.db.WithContext(ctx).Save(&rows).Error; err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrCatalogUnavailable, err)
	}
	return nil
}

// Query returns all records inside the region. Range predicates over the
// indexed latitude/longitude columns keep this portable across SQLite and
// Postgres without a spatial extension.
func (c *Catalog) Query(ctx context.Context, region core.Region) ([]core.PhotoRecord, error) {
	var rows []model.Photo
	err := c.db.WithContext(ctx).
		Where("latitude BETWEEN ? AND ?", region.MinLat, region.MaxLat).
		Where("longitude BETWEEN ? AND ?", region.MinLon, region.MaxLon).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrCatalogUnavailable, err)
	}

	records := make([]core.PhotoRecord, len(rows))
	for i, row := range rows {
		records[i] = convert.PhotoToCore(row)
	}
	return records, nil
}

// Len returns the number of records held.
func (c *Catalog) Len(ctx context.Context) (int64, error) {
	var n int64
	if err := c.db.WithContext(ctx).Model(&model.Photo{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", catalog.ErrCatalogUnavailable, err)
	}
	return n, nil
}

// Type reports which database backs the catalog.
func (c *Catalog) Type() string {
	return c.dbType
}

func openPostgres() (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		viper.GetString("catalog.db.host"),
		viper.GetString("catalog.db.port"),
		viper.GetString("catalog.db.username"),
		viper.GetString("catalog.db.password"),
		viper.GetString("catalog.db.database"),
	)

	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        10000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

func openSqlite(path string) (*gorm.DB, error) {
	if path == "" {
		path = "file::memory:?cache=shared"
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        2000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}
