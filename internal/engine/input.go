package engine

import (
	"github.com/inamate/inamate/canvas-go/internal/canvas"
	"github.com/inamate/inamate/canvas-go/internal/geom"
)

// Modifiers are the keyboard modifiers held during a pointer event.
type Modifiers struct {
	Shift bool `json:"shiftKey"`
	Alt   bool `json:"altKey"`
	Ctrl  bool `json:"ctrlKey"`
	Meta  bool `json:"metaKey"`
	Touch bool `json:"touch"`
}

func (m Modifiers) event(x, y float64) canvas.PointerEvent {
	return canvas.PointerEvent{
		Point: geom.Pt(x, y),
		Shift: m.Shift,
		Alt:   m.Alt,
		Ctrl:  m.Ctrl,
		Meta:  m.Meta,
		Touch: m.Touch,
	}
}
