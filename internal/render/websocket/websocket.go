// Package websocket streams placement passes to a remote photo strip, for
// setups where the map and the strip live in different processes.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/koo5/horizon/pkg/core"
	"github.com/koo5/horizon/pkg/streaming"
)

// Config holds WebSocket surface configuration.
type Config struct {
	URL    string
	Secret string
}

// Surface streams placements over WebSocket. It implements render.Surface
// and render.Lifecycle.
type Surface struct {
	conn *connection
	cfg  Config
}

// New creates a WebSocket render surface.
func New(cfg Config, logger *slog.Logger) *Surface {
	return &Surface{
		conn: newConnection(logger),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (s *Surface) Init() error {
	return s.conn.dial(s.cfg.URL, s.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (s *Surface) Close() error {
	return s.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// StartSession announces the session and waits for the server ack.
func (s *Surface) StartSession(name string, startedAt time.Time) error {
	data, err := marshalEnvelope(streaming.TypeStartSession, streaming.StartSessionPayload{
		Name:      name,
		StartedAt: startedAt,
	})
	if err != nil {
		return err
	}
	return s.conn.sendAndWait(data, streaming.TypeStartSession, ackTimeout)
}

// EndSession ends the session and waits for the server ack.
func (s *Surface) EndSession() error {
	data, err := marshalEnvelope(streaming.TypeEndSession, nil)
	if err != nil {
		return err
	}
	err = s.conn.sendAndWait(data, streaming.TypeEndSession, ackTimeout)

	// Clear cached state regardless of error.
	s.conn.mu.Lock()
	s.conn.cachedStateMsg = nil
	s.conn.mu.Unlock()

	return err
}

// ReplaceAll streams one full placement pass, fire-and-forget. The message
// is cached for replay after a reconnect.
func (s *Surface) ReplaceAll(_ context.Context, photos []core.PlacedPhoto) error {
	data, err := marshalEnvelope(streaming.TypeReplaceAll, streaming.ReplaceAllPayload{Photos: photos})
	if err != nil {
		return err
	}

	s.conn.mu.Lock()
	s.conn.cachedStateMsg = data
	s.conn.mu.Unlock()

	s.conn.send(data)
	return nil
}

// SendViewport mirrors the viewport snapshot a pass was computed for,
// fire-and-forget.
func (s *Surface) SendViewport(v core.Viewport) error {
	data, err := marshalEnvelope(streaming.TypeViewport, streaming.ViewportPayload{Viewport: v})
	if err != nil {
		return err
	}
	s.conn.send(data)
	return nil
}
