package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/koo5/horizon/internal/catalog"
	"github.com/koo5/horizon/internal/catalog/factory"
	"github.com/koo5/horizon/internal/selector"
	"github.com/koo5/horizon/internal/viewport"
	"github.com/koo5/horizon/pkg/core"
)

var (
	queryLat     float64
	queryLon     float64
	queryZoom    float64
	queryBearing float64
	queryWidth   int
	queryHeight  int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run one selection pass for a viewport and print the placements",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := factory.New(newZerologLogger())
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		if lc, ok := cat.(catalog.Lifecycle); ok {
			if err := lc.Init(); err != nil {
				return fmt.Errorf("failed to initialize catalog: %w", err)
			}
			defer lc.Close()
		}

		if queryWidth == 0 {
			queryWidth = viper.GetInt("viewport.width")
		}
		if queryHeight == 0 {
			queryHeight = viper.GetInt("viewport.height")
		}

		v := core.Viewport{
			Center:  core.GeoPoint{Lat: queryLat, Lon: queryLon},
			Zoom:    queryZoom,
			Bearing: queryBearing,
			Width:   queryWidth,
			Height:  queryHeight,
		}

		timeout := time.Duration(viper.GetInt("catalog.queryTimeoutMs")) * time.Millisecond
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		start := time.Now()
		placed, err := selector.Select(ctx, v, viewport.MercatorProject, cat, selector.FromViper())
		if viper.GetBool("influx.enabled") {
			InfluxManager.RecordPass(v, time.Since(start), len(placed), err)
		}
		if err != nil {
			return fmt.Errorf("selection failed: %w", err)
		}

		if placed == nil {
			placed = []core.PlacedPhoto{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(placed)
	},
}

func init() {
	queryCmd.Flags().Float64Var(&queryLat, "lat", 0, "viewport center latitude")
	queryCmd.Flags().Float64Var(&queryLon, "lon", 0, "viewport center longitude")
	queryCmd.Flags().Float64Var(&queryZoom, "zoom", 14, "zoom level")
	queryCmd.Flags().Float64Var(&queryBearing, "bearing", 0, "compass heading in degrees, 0 = north-up")
	queryCmd.Flags().IntVar(&queryWidth, "width", 0, "viewport width in pixels (default from config)")
	queryCmd.Flags().IntVar(&queryHeight, "height", 0, "viewport height in pixels (default from config)")
	_ = queryCmd.MarkFlagRequired("lat")
	_ = queryCmd.MarkFlagRequired("lon")
}
