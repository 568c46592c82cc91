package streaming

import (
	"encoding/json"
	"time"

	"github.com/koo5/horizon/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession = "start_session"
	TypeEndSession   = "end_session"
	TypeReplaceAll   = "replace_all"
	TypeViewport     = "viewport"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload announces a new viewing session.
type StartSessionPayload struct {
	Name      string    `json:"name"`
	StartedAt time.Time `json:"startedAt"`
}

// ReplaceAllPayload carries one full placement pass. The receiver discards
// everything it currently shows and materializes exactly these photos.
type ReplaceAllPayload struct {
	Photos []core.PlacedPhoto `json:"photos"`
}

// ViewportPayload mirrors the viewport snapshot a placement pass was
// computed for, so remote surfaces can line thumbnails up with their map.
type ViewportPayload struct {
	Viewport core.Viewport `json:"viewport"`
}
