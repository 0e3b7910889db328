// Package engine wraps a canvas for the browser bridge: every call takes
// and returns plain values or JSON strings so the wasm layer stays thin.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/inamate/inamate/canvas-go/internal/anim"
	"github.com/inamate/inamate/canvas-go/internal/canvas"
	"github.com/inamate/inamate/canvas-go/internal/config"
	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/event"
	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/scene"
	"github.com/inamate/inamate/canvas-go/internal/surface"
)

// Engine owns one canvas rendered into command recordings. The frontend
// drives it: it forwards pointer input, calls Tick once per animation
// frame and replays the returned commands on its own 2D contexts.
type Engine struct {
	canvas    *canvas.Canvas
	scheduler *canvas.ManualScheduler
	logger    *slog.Logger

	// frames counts renders so the frontend can skip unchanged frames.
	frames int
	// modified is set by object:modified and cleared by TakeModified.
	modified []string
}

// Options configure a new engine.
type Options struct {
	Width, Height int
	Engine        *config.Engine
	Measurer      surface.TextMeasurer
	Loader        scene.ImageLoader
	Logger        *slog.Logger
}

// NewEngine creates an engine with an empty canvas.
func NewEngine(opts Options) *Engine {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 800, 600
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	e := &Engine{scheduler: canvas.NewManualScheduler(), logger: opts.Logger}

	reg := scene.DefaultRegistry()
	reg.Loader = opts.Loader

	copts := canvas.DefaultOptions(opts.Width, opts.Height)
	copts.Config = opts.Engine
	copts.Surfaces = surface.RecorderFactory(opts.Measurer)
	copts.Scheduler = e.scheduler
	copts.Registry = reg
	copts.Logger = opts.Logger
	e.canvas = canvas.New(copts)

	e.canvas.On("after:render", func(ev event.Event) { e.frames++ })
	e.canvas.On("object:modified", func(ev event.Event) {
		if d, ok := ev.Target.(scene.Drawable); ok {
			e.modified = append(e.modified, d.Base().ID)
		}
	})
	return e
}

// Canvas exposes the wrapped canvas.
func (e *Engine) Canvas() *canvas.Canvas { return e.canvas }

// --- Commands (frontend → engine) ---

// LoadDocument replaces the scene with a document and clears the selection.
func (e *Engine) LoadDocument(jsonData string) error {
	if err := e.canvas.LoadFromJSON(context.Background(), []byte(jsonData)); err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	e.modified = nil
	return nil
}

// UpdateDocument reloads a document while keeping the viewport and the
// selection of objects that still exist.
func (e *Engine) UpdateDocument(jsonData string) error {
	selected := e.canvas.SelectedIDs()
	vpt := e.canvas.ViewportTransform()
	if err := e.canvas.LoadFromJSON(context.Background(), []byte(jsonData)); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	e.canvas.SetViewportTransform(vpt)
	e.canvas.SelectIDs(selected)
	return nil
}

// LoadSampleDocument loads the built-in demo scene.
func (e *Engine) LoadSampleDocument() error {
	data, err := document.Sample().Marshal()
	if err != nil {
		return err
	}
	return e.LoadDocument(string(data))
}

// Resize changes the canvas size in CSS pixels.
func (e *Engine) Resize(width, height int) {
	e.canvas.SetDimensions(width, height)
}

// PointerDown, PointerMove and PointerUp forward input in viewport pixels.
func (e *Engine) PointerDown(x, y float64, mods Modifiers) {
	e.canvas.PointerDown(mods.event(x, y))
}

func (e *Engine) PointerMove(x, y float64, mods Modifiers) {
	e.canvas.PointerMove(mods.event(x, y))
}

func (e *Engine) PointerUp(x, y float64, mods Modifiers) {
	e.canvas.PointerUp(mods.event(x, y))
}

// SetSelection selects objects by id.
func (e *Engine) SetSelection(ids []string) {
	e.canvas.SelectIDs(ids)
	e.canvas.RequestRenderAll()
}

// ZoomToPoint zooms around a viewport point.
func (e *Engine) ZoomToPoint(x, y, zoom float64) {
	e.canvas.ZoomToPoint(geom.Pt(x, y), zoom)
}

// Pan moves the viewport by a delta in viewport pixels.
func (e *Engine) Pan(dx, dy float64) {
	e.canvas.RelativePan(geom.Pt(dx, dy))
}

// ResetView restores the identity viewport.
func (e *Engine) ResetView() {
	e.canvas.SetViewportTransform(geom.Identity())
}

// Animate tweens a numeric property of the object with id.
func (e *Engine) Animate(id, prop string, to float64, ms int) error {
	d := e.canvas.FindByID(id)
	if d == nil {
		return fmt.Errorf("animate: no object %q", id)
	}
	_, err := e.canvas.AnimateProperty(d, prop, to, time.Duration(ms)*time.Millisecond, anim.EaseInOutQuad)
	return err
}

// Tick runs the frame callbacks due at now and returns the draw commands
// when something was painted, or an empty string.
func (e *Engine) Tick(now time.Time) string {
	before := e.frames
	e.scheduler.Tick(now)
	if e.frames == before {
		return ""
	}
	return e.Render()
}

// --- Queries (frontend ← engine) ---

// Frame is what the frontend replays: the object layer, the controls
// layer and the cursor to show.
type Frame struct {
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Lower  []surface.Command `json:"lower"`
	Top    []surface.Command `json:"top"`
	Cursor string            `json:"cursor"`
}

// Render returns the last painted frame as JSON.
func (e *Engine) Render() string {
	f := Frame{
		Width:  e.canvas.Width,
		Height: e.canvas.Height,
		Lower:  commands(e.canvas.Lower()),
		Top:    commands(e.canvas.Top()),
		Cursor: e.canvas.Cursor(),
	}
	return toJSON(f)
}

func commands(s surface.Surface) []surface.Command {
	if r, ok := s.(*surface.Recorder); ok {
		return r.Commands()
	}
	return nil
}

// HitTest returns the id of the object under a viewport point, or "".
func (e *Engine) HitTest(x, y float64) string {
	d := e.canvas.FindTarget(canvas.PointerEvent{Point: geom.Pt(x, y)})
	if d == nil {
		return ""
	}
	return d.Base().ID
}

// GetSelectionBounds returns the scene bounding rect of the selection.
func (e *Engine) GetSelectionBounds() string {
	active := e.canvas.ActiveObject()
	if active == nil {
		return toJSON(geom.Rect{})
	}
	return toJSON(active.Base().BoundingRect())
}

// GetSelection returns the selected ids as a JSON array.
func (e *Engine) GetSelection() string {
	return toJSON(e.canvas.SelectedIDs())
}

// GetViewport returns the viewport transform as a JSON array.
func (e *Engine) GetViewport() string {
	return toJSON(e.canvas.ViewportTransform())
}

// GetDocument returns the canvas as a document JSON.
func (e *Engine) GetDocument() string {
	data, err := e.canvas.ToJSON()
	if err != nil {
		e.logger.Warn("engine: serialize document", "error", err)
		return "{}"
	}
	return string(data)
}

// GetSVG returns the canvas as an SVG document.
func (e *Engine) GetSVG() string {
	return e.canvas.ToSVG(canvas.SVGOptions{})
}

// TakeModified returns the ids of objects modified by pointer transforms
// since the last call.
func (e *Engine) TakeModified() []string {
	ids := e.modified
	e.modified = nil
	return ids
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
