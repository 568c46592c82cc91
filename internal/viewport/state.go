package viewport

import (
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/koo5/horizon/internal/channel"
	"github.com/koo5/horizon/pkg/core"
)

// State holds the current viewport snapshot and publishes change
// notifications. Rapid mutations within the debounce window collapse into a
// single notification carrying the latest snapshot.
type State struct {
	mu      sync.RWMutex
	current core.Viewport

	changes  channel.Channel[core.Viewport]
	debounce func(f func())
	closed   bool
}

// NewState creates a State starting at initial. window > 0 debounces change
// notifications; window == 0 notifies on every mutation.
func NewState(initial core.Viewport, window time.Duration) *State {
	s := &State{
		current: initial,
		changes: channel.New[core.Viewport](16),
	}
	if window > 0 {
		s.debounce = debounce.New(window)
	} else {
		s.debounce = func(f func()) { f() }
	}
	return s
}

// Viewport returns the current snapshot.
func (s *State) Viewport() core.Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the snapshot wholesale.
func (s *State) Set(v core.Viewport) {
	s.mu.Lock()
	s.current = v
	s.mu.Unlock()
	s.notify()
}

// SetCenter pans the viewport.
func (s *State) SetCenter(p core.GeoPoint) {
	s.mu.Lock()
	s.current.Center = p
	s.mu.Unlock()
	s.notify()
}

// SetZoom changes the zoom level.
func (s *State) SetZoom(zoom float64) {
	s.mu.Lock()
	s.current.Zoom = zoom
	s.mu.Unlock()
	s.notify()
}

// SetBearing rotates the viewport.
func (s *State) SetBearing(bearing float64) {
	s.mu.Lock()
	s.current.Bearing = bearing
	s.mu.Unlock()
	s.notify()
}

// Changes returns the channel change notifications are published on. Each
// notification carries the snapshot that was current when the debounce
// window expired.
func (s *State) Changes() <-chan core.Viewport {
	return s.changes.Receive()
}

// Close stops notifications and closes the change channel.
func (s *State) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.changes.Close()
}

func (s *State) notify() {
	s.debounce(func() {
		// Holding the read lock across Send keeps Close from closing the
		// channel mid-send.
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.closed {
			return
		}
		s.changes.Send(s.current)
	})
}
