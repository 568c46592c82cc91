package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/koo5/horizon/internal/config"
	"github.com/koo5/horizon/internal/influx"
	"github.com/koo5/horizon/internal/logging"
	intotel "github.com/koo5/horizon/internal/otel"
)

// Version and BuildDate can be set at build time via ldflags.
var (
	Version   string = "0.1.0"
	BuildDate string = "unknown"
)

var (
	configDir string
	logLevel  string

	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intotel.Provider

	// InfluxManager records pass and scan measurements
	InfluxManager *influx.Manager

	logFile *os.File

	sessionStartTime time.Time = time.Now()
)

var rootCmd = &cobra.Command{
	Use:               "horizon",
	Short:             "Viewport-driven photo selection",
	Long:              "horizon selects the photos nearest to a map viewport center and places them on screen, keeping thumbnails from overlapping.",
	Version:           fmt.Sprintf("%s (built %s)", Version, BuildDate),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing horizon.cfg.json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(watchCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	SlogManager = logging.NewSlogManager()

	if err := config.Load(configDir); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := viper.GetString("logLevel")
	if logLevel != "" {
		level = logLevel
	}

	logsDir := viper.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}
	}

	logFilePath := logging.LogFilePath(logsDir, "horizon", sessionStartTime)
	var err error
	logFile, err = os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logFilePath, err)
	}

	var otelLogProvider *sdklog.LoggerProvider
	if viper.GetBool("otel.enabled") {
		OTelProvider, err = intotel.New(intotel.Config{
			Enabled:      true,
			ServiceName:  "horizon",
			BatchTimeout: 5 * time.Second,
			LogWriter:    logFile,
			Endpoint:     viper.GetString("otel.endpoint"),
			Insecure:     viper.GetBool("otel.insecure"),
		})
		if err != nil {
			return fmt.Errorf("failed to initialize OTel provider: %w", err)
		}
		otelLogProvider = OTelProvider.LoggerProvider()
	}

	graylogAddress := ""
	if viper.GetBool("graylog.enabled") {
		graylogAddress = viper.GetString("graylog.address")
	}

	SlogManager.Setup(level, logging.Options{
		File:           logFile,
		OTelProvider:   otelLogProvider,
		GraylogAddress: graylogAddress,
	})
	Logger = SlogManager.Logger()
	Logger.Debug("Logging to file", "path", logFilePath)

	backupPath := filepath.Join(logsDir,
		fmt.Sprintf("influx_backup.%s.gz", sessionStartTime.Format("20060102_150405")))
	InfluxManager = influx.NewManager(newZerologLogger(), backupPath)
	if viper.GetBool("influx.enabled") {
		if err := InfluxManager.Connect(); err != nil {
			Logger.Warn("InfluxDB unavailable", "error", err)
		}
	}

	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	if OTelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := OTelProvider.Flush(ctx); err != nil {
			Logger.Warn("Failed to flush OTel data", "error", err)
		}
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("Failed to shut down OTel provider", "error", err)
		}
	}
	if logFile != nil {
		logFile.Close()
	}
}

// newZerologLogger builds the zerolog logger the catalog and influx layers use.
func newZerologLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
