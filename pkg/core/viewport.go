package core

// Viewport is a read-only snapshot of the visible map region at the moment a
// change notification fired. A snapshot is superseded wholesale by the next
// one; no history is retained.
type Viewport struct {
	Center  GeoPoint
	Zoom    float64 // higher = more detail
	Bearing float64 // compass heading the view is rotated to, degrees 0-360, 0 = north-up
	Width   int     // viewport width in pixels
	Height  int     // viewport height in pixels
}

// ScreenPoint is a pixel position within the viewport bounds.
type ScreenPoint struct {
	X float64
	Y float64
}

// PlacedPhoto is a photo with its screen placement for the current viewport.
// Placements are produced fresh on every selection pass; the previous pass's
// placements are discarded in full before new ones are emitted.
type PlacedPhoto struct {
	Record   PhotoRecord
	Position ScreenPoint
	Rank     int // 0 = closest to the viewport center
	Z        int // draw order, higher drawn on top; inverse of Rank
}
