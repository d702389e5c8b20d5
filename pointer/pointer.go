// Package pointer normalizes mouse and touch input into surface-local
// logical coordinates.
package pointer

import "github.com/ByLCY/tracepad/layout"

// Phase is the stage of a pointer interaction.
type Phase int

const (
	Down Phase = iota
	Move
	Up
	Leave
)

func (p Phase) String() string {
	switch p {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	case Leave:
		return "leave"
	default:
		return "unknown"
	}
}

// ParsePhase maps a phase name back to its value.
func ParsePhase(s string) (Phase, bool) {
	switch s {
	case "down":
		return Down, true
	case "move":
		return Move, true
	case "up":
		return Up, true
	case "leave":
		return Leave, true
	}
	return 0, false
}

// Rect is the on-screen bounding box of the surface in client coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Event is either a Mouse or a Touch event.
type Event interface {
	// client returns the client coordinates of the event and whether one exists.
	client() (float64, float64, bool)
}

// Mouse carries the client coordinates of a mouse event.
type Mouse struct {
	ClientX float64
	ClientY float64
}

func (m Mouse) client() (float64, float64, bool) { return m.ClientX, m.ClientY, true }

// TouchPoint is one contact of a touch event.
type TouchPoint struct {
	ClientX float64
	ClientY float64
}

// Touch carries the active contacts of a touch event. Only the first
// contact is used; multi-touch is not supported.
type Touch struct {
	Touches []TouchPoint
}

func (t Touch) client() (float64, float64, bool) {
	if len(t.Touches) == 0 {
		return 0, 0, false
	}
	return t.Touches[0].ClientX, t.Touches[0].ClientY, true
}

// Normalize converts an event to surface-local logical coordinates using
// the bounding box measured at the time of the event. It reports false
// for touch events without any contact.
//
// Points outside the surface are returned as-is; clipping happens when drawing.
func Normalize(ev Event, box Rect) (layout.Point, bool) {
	if ev == nil {
		return layout.Point{}, false
	}
	x, y, ok := ev.client()
	if !ok {
		return layout.Point{}, false
	}
	return layout.Point{X: x - box.Left, Y: y - box.Top}, true
}
