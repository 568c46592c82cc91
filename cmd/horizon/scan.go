package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/koo5/horizon/internal/catalog"
	"github.com/koo5/horizon/internal/catalog/factory"
	"github.com/koo5/horizon/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Walk a directory tree and index geotagged photos into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]

		cat, err := factory.NewWritable(newZerologLogger())
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		if lc, ok := cat.(catalog.Lifecycle); ok {
			if err := lc.Init(); err != nil {
				return fmt.Errorf("failed to initialize catalog: %w", err)
			}
			defer lc.Close()
		}

		sc := scanner.New(cat, Logger, viper.GetInt("catalog.scanWorkers"))

		start := time.Now()
		stats, err := sc.Scan(cmd.Context(), root)
		elapsed := time.Since(start)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		if viper.GetBool("influx.enabled") {
			InfluxManager.RecordScan(root, elapsed, stats.Scanned, stats.Added, stats.Skipped)
		}

		fmt.Printf("scanned %d files in %s: %d added, %d skipped\n",
			stats.Scanned, elapsed.Round(time.Millisecond), stats.Added, stats.Skipped)
		return nil
	},
}
