// Package factory creates the photo catalog selected by configuration.
package factory

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/koo5/horizon/internal/catalog"
	"github.com/koo5/horizon/internal/catalog/memory"
	"github.com/koo5/horizon/internal/catalog/remote"
	"github.com/koo5/horizon/internal/catalog/store"
)

// New creates a catalog based on the catalog.type configuration key.
func New(log zerolog.Logger) (catalog.Catalog, error) {
	catalogType := viper.GetString("catalog.type")
	switch catalogType {
	case "memory":
		return memory.New(), nil
	case "sqlite", "postgres":
		c, err := store.New(log)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "remote":
		timeout := time.Duration(viper.GetInt("catalog.queryTimeoutMs")) * time.Millisecond
		return remote.New(
			viper.GetString("catalog.remote.url"),
			viper.GetString("catalog.remote.apiKey"),
			timeout,
		), nil
	default:
		return nil, fmt.Errorf("unknown catalog type: %s", catalogType)
	}
}

// NewWritable creates a catalog that also accepts new records, for the
// scanner and watch modes. Remote catalogs are read only.
func NewWritable(log zerolog.Logger) (catalog.Writable, error) {
	catalogType := viper.GetString("catalog.type")
	switch catalogType {
	case "memory":
		return memory.New(), nil
	case "sqlite", "postgres":
		c, err := store.New(log)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "remote":
		return nil, fmt.Errorf("remote catalog is read only")
	default:
		return nil, fmt.Errorf("unknown catalog type: %s", catalogType)
	}
}
