package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/koo5/horizon/internal/cache"
	"github.com/koo5/horizon/internal/catalog"
	"github.com/koo5/horizon/internal/catalog/factory"
	"github.com/koo5/horizon/internal/dispatcher"
	"github.com/koo5/horizon/internal/handlers"
	"github.com/koo5/horizon/internal/logging"
	"github.com/koo5/horizon/internal/parser"
	"github.com/koo5/horizon/internal/pipeline"
	"github.com/koo5/horizon/internal/render"
	"github.com/koo5/horizon/internal/render/websocket"
	"github.com/koo5/horizon/internal/selector"
	"github.com/koo5/horizon/internal/util"
	"github.com/koo5/horizon/internal/viewport"
	"github.com/koo5/horizon/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Read viewport and photo commands from stdin and keep the render surface current",
	Long: `watch reads line-oriented commands from stdin, one per line:

  :VIEWPORT:SET: "lat,lon" zoom bearing [width height]
  :VIEWPORT:CENTER: "lat,lon"
  :VIEWPORT:ZOOM: zoom
  :VIEWPORT:BEARING: bearing
  :PHOTO:ADD: id "lat,lon" direction|- thumbnail [takenAt]
  :STATUS:
  :STOP:

Each viewport change triggers a selection pass; bursts are coalesced so only
the newest viewport is rendered.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	surface, err := newSurface()
	if err != nil {
		return err
	}
	if lc, ok := surface.(render.Lifecycle); ok {
		if err := lc.Init(); err != nil {
			return fmt.Errorf("failed to initialize render surface: %w", err)
		}
		defer lc.Close()
	}
	if ws, ok := surface.(*websocket.Surface); ok {
		if err := ws.StartSession("watch", sessionStartTime); err != nil {
			Logger.Warn("Failed to start render session", "error", err)
		}
		defer ws.EndSession()
	}

	state := viewport.NewState(core.Viewport{
		Zoom:   viper.GetFloat64("viewport.minZoom"),
		Width:  viper.GetInt("viewport.width"),
		Height: viper.GetInt("viewport.height"),
	}, time.Duration(viper.GetInt("viewport.debounceMs"))*time.Millisecond)

	deps := pipeline.Dependencies{
		Changes:      state.Changes(),
		Catalog:      cat,
		Project:      viewport.MercatorProject,
		Surface:      surface,
		Config:       selector.FromViper(),
		LogManager:   SlogManager,
		QueryTimeout: time.Duration(viper.GetInt("catalog.queryTimeoutMs")) * time.Millisecond,
	}
	if viper.GetBool("influx.enabled") {
		deps.PerfSink = InfluxManager
	}

	pipe, err := pipeline.New(deps)
	if err != nil {
		return fmt.Errorf("failed to create selection pipeline: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	pipe.Start(ctx)

	d, err := dispatcher.New(logging.NewDispatcherLogger(Logger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	mgr := handlers.NewManager(handlers.Dependencies{
		State:         state,
		Catalog:       cat,
		PhotoCache:    cache.NewPhotoCache(),
		ParserService: parser.NewParser(Logger),
		LogManager:    SlogManager,
		Status: func() string {
			status := fmt.Sprintf("passes=%d failures=%d", pipe.Passes(), pipe.Failures())
			if last, ok := pipe.LastPass(); ok {
				status += fmt.Sprintf(" lastPlaced=%d lastDuration=%s",
					last.Placed, last.Duration.Round(time.Millisecond))
				if last.Err != "" {
					status += " lastErr=" + last.Err
				}
			}
			return status
		},
	})
	mgr.RegisterHandlers(d)

	Logger.Info("Watching stdin for commands")

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if line == ":STOP:" {
			break
		}

		command, cmdArgs := util.SplitCommandLine(line)
		result, err := d.Dispatch(dispatcher.Event{
			Command:   command,
			Args:      cmdArgs,
			Timestamp: time.Now(),
		})
		if err != nil {
			Logger.Error("Command failed", "command", command, "error", err)
			continue
		}
		if result != nil {
			fmt.Println(result)
		}
	}
	if err := in.Err(); err != nil {
		Logger.Error("Failed reading stdin", "error", err)
	}

	// Let the in-flight pass finish before tearing down the surface.
	state.Close()
	cancel()
	pipe.Wait()

	Logger.Info("Watch finished", "passes", pipe.Passes(), "failures", pipe.Failures())
	return nil
}

func newSurface() (render.Surface, error) {
	switch kind := viper.GetString("render.type"); kind {
	case "log":
		return render.NewLogSurface(Logger), nil
	case "strip":
		return render.NewStripSurface(os.ReadFile, viper.GetInt("render.thumbCacheSize"), Logger)
	case "websocket":
		return websocket.New(websocket.Config{
			URL:    viper.GetString("render.websocket.url"),
			Secret: viper.GetString("render.websocket.secret"),
		}, Logger), nil
	default:
		return nil, fmt.Errorf("unknown render type: %s", kind)
	}
}
