package pointer

import (
	"fmt"

	"golang.org/x/mobile/event/mouse"
)

// EventType identifies what a merged Event reports.
type EventType int

const (
	NoOp EventType = iota
	Motion
	Down
	Up
	Wheel
)

func (t EventType) String() string {
	switch t {
	case NoOp:
		return "nop"
	case Motion:
		return "motion"
	case Down:
		return "down"
	case Up:
		return "up"
	case Wheel:
		return "wheel"
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// Event is one merged pointer event as produced by Merger.Generate.
// X and Y are unset for NoOp. Wheel is only set for Wheel events and keeps
// the sign of the accumulated delta.
type Event struct {
	Type  EventType
	X, Y  int
	Wheel int
}

// Mouse converts e into the x/mobile mouse event model. It reports false for
// NoOp events.
func (e Event) Mouse() (mouse.Event, bool) {
	me := mouse.Event{X: float32(e.X), Y: float32(e.Y)}
	switch e.Type {
	case Motion:
		me.Direction = mouse.DirNone
	case Down:
		me.Button = mouse.ButtonLeft
		me.Direction = mouse.DirPress
	case Up:
		me.Button = mouse.ButtonLeft
		me.Direction = mouse.DirRelease
	case Wheel:
		me.Button = mouse.ButtonWheelUp
		if e.Wheel < 0 {
			me.Button = mouse.ButtonWheelDown
		}
		me.Direction = mouse.DirStep
	default:
		return mouse.Event{}, false
	}
	return me, true
}
