// Package handlers wires watch-mode control commands to the viewport state
// and the photo catalog.
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/koo5/horizon/internal/cache"
	"github.com/koo5/horizon/internal/catalog"
	"github.com/koo5/horizon/internal/dispatcher"
	"github.com/koo5/horizon/internal/logging"
	"github.com/koo5/horizon/internal/parser"
	"github.com/koo5/horizon/internal/viewport"
)

// Dependencies holds all dependencies for the handler manager.
type Dependencies struct {
	State         *viewport.State
	Catalog       catalog.Writable
	PhotoCache    *cache.PhotoCache
	ParserService *parser.Parser
	LogManager    *logging.SlogManager

	// AddTimeout bounds catalog writes from photo add commands.
	AddTimeout time.Duration

	// Status returns a status line for the :STATUS: command.
	Status func() string
}

// Manager routes parsed commands into the viewport state and catalog.
type Manager struct {
	deps Dependencies
}

// NewManager creates a new handler manager.
func NewManager(deps Dependencies) *Manager {
	if deps.AddTimeout <= 0 {
		deps.AddTimeout = 5 * time.Second
	}
	return &Manager{deps: deps}
}

// RegisterHandlers registers all command handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Viewport mutations - sync (the state holder debounces downstream)
	d.Register(":VIEWPORT:SET:", m.handleViewportSet, dispatcher.Logged())
	d.Register(":VIEWPORT:CENTER:", m.handleViewportCenter, dispatcher.Logged())
	d.Register(":VIEWPORT:ZOOM:", m.handleViewportZoom, dispatcher.Logged())
	d.Register(":VIEWPORT:BEARING:", m.handleViewportBearing, dispatcher.Logged())

	// Photo ingest - buffered, can arrive in bulk
	d.Register(":PHOTO:ADD:", m.handlePhotoAdd, dispatcher.Buffered(1000), dispatcher.Logged())
	d.Register(":PHOTO:REMOVE:", m.handlePhotoRemove, dispatcher.Logged())

	// Introspection - sync
	d.Register(":STATUS:", m.handleStatus)
}

func (m *Manager) handleViewportSet(e dispatcher.Event) (any, error) {
	current := m.deps.State.Viewport()
	v, err := m.deps.ParserService.ParseViewportSet(e.Args, current.Width, current.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}
	m.deps.State.Set(v)
	return nil, nil
}

func (m *Manager) handleViewportCenter(e dispatcher.Event) (any, error) {
	center, err := m.deps.ParserService.ParseCenter(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to pan viewport: %w", err)
	}
	m.deps.State.SetCenter(center)
	return nil, nil
}

func (m *Manager) handleViewportZoom(e dispatcher.Event) (any, error) {
	zoom, err := m.deps.ParserService.ParseZoom(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to zoom viewport: %w", err)
	}
	m.deps.State.SetZoom(zoom)
	return nil, nil
}

func (m *Manager) handleViewportBearing(e dispatcher.Event) (any, error) {
	bearing, err := m.deps.ParserService.ParseBearing(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate viewport: %w", err)
	}
	m.deps.State.SetBearing(bearing)
	return nil, nil
}

func (m *Manager) handlePhotoAdd(e dispatcher.Event) (any, error) {
	rec, err := m.deps.ParserService.ParsePhotoAdd(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to add photo: %w", err)
	}

	// Repeated adds of an unchanged record are common when a feed replays;
	// the cache lets us skip the catalog write.
	if cached, ok := m.deps.PhotoCache.Get(rec.ID); ok && cached.Location == rec.Location &&
		cached.Thumbnail == rec.Thumbnail && equalDirection(cached.Direction, rec.Direction) {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.deps.AddTimeout)
	defer cancel()
	if err := m.deps.Catalog.Add(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store photo %s: %w", rec.ID, err)
	}
	m.deps.PhotoCache.Set(rec)

	return nil, nil
}

func (m *Manager) handlePhotoRemove(e dispatcher.Event) (any, error) {
	if len(e.Args) < 1 {
		return nil, fmt.Errorf("photo remove expects 1 arg, got %d", len(e.Args))
	}
	// The catalog keeps the record; removal only forgets the dedupe entry so
	// a later add with the same ID overwrites it.
	m.deps.PhotoCache.Delete(e.Args[0])
	return nil, nil
}

func (m *Manager) handleStatus(_ dispatcher.Event) (any, error) {
	if m.deps.Status == nil {
		return "no status available", nil
	}
	return m.deps.Status(), nil
}

func equalDirection(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
