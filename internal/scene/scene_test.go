package scene

import (
	"github.com/inamate/inamate/canvas-go/internal/config"
	"github.com/inamate/inamate/canvas-go/internal/event"
	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/surface"
)

// testHost is a canvas stand-in with an identity viewport.
type testHost struct {
	engine   *config.Engine
	vpt      geom.Matrix2D
	width    float64
	height   float64
	active   Drawable
	fired    []string
	requests int
}

func newTestHost() *testHost {
	return &testHost{engine: config.DefaultEngine(), vpt: geom.Identity(), width: 300, height: 150}
}

func (h *testHost) Engine() *config.Engine           { return h.engine }
func (h *testHost) ViewportTransform() geom.Matrix2D { return h.vpt }
func (h *testHost) RetinaScaling() float64           { return 1 }
func (h *testHost) SkipOffscreen() bool              { return true }
func (h *testHost) ActiveObject() Drawable           { return h.active }
func (h *testHost) RequestRenderAll()                { h.requests++ }
func (h *testHost) Fire(name string, _ event.Event)  { h.fired = append(h.fired, name) }

func (h *testHost) ViewportCorners() (geom.Point, geom.Point) {
	inv := h.vpt.Invert()
	return geom.Pt(0, 0).Transform(inv, false), geom.Pt(h.width, h.height).Transform(inv, false)
}

func (h *testHost) Interaction() InteractionOptions {
	return InteractionOptions{
		UniformScaling:   true,
		UniScaleKey:      "shiftKey",
		CenteredRotation: true,
		CenteredKey:      "altKey",
		AltActionKey:     "shiftKey",
	}
}

// monoMeasurer gives every rune the same advance, half the font size.
type monoMeasurer struct{}

func (monoMeasurer) MeasureText(f surface.Font, s string) surface.TextMetrics {
	return surface.TextMetrics{Width: float64(len([]rune(s))) * f.Size / 2, Ascent: f.Size * 0.8, Descent: f.Size * 0.2}
}

// strokeless returns a rect without stroke so its box equals its size.
func strokeless(left, top, width, height float64) *Rect {
	r := NewRect(left, top, width, height)
	r.SetStrokeWidth(0)
	return r
}
