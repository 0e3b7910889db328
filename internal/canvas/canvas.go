// Package canvas owns a scene: the root object list, the viewport, the
// render loop, selection and pointer driven transforms.
package canvas

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/inamate/inamate/canvas-go/internal/anim"
	"github.com/inamate/inamate/canvas-go/internal/config"
	"github.com/inamate/inamate/canvas-go/internal/event"
	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/scene"
	"github.com/inamate/inamate/canvas-go/internal/surface"
)

// ErrDisposed is returned by operations on a disposed canvas.
var ErrDisposed = errors.New("canvas disposed")

// Options configure a canvas. Start from DefaultOptions; the zero value
// turns every default-on switch off.
type Options struct {
	Width  int
	Height int

	BackgroundColor string
	OverlayColor    string
	BackgroundImage scene.Drawable
	OverlayImage    scene.Drawable
	// BackgroundVpt and OverlayVpt apply the viewport to the images.
	BackgroundVpt bool
	OverlayVpt    bool
	ClipPath      scene.Drawable

	// RenderOffscreen paints objects outside the viewport too.
	RenderOffscreen bool
	// PreserveStacking keeps selected objects at their z-index instead of
	// lifting them above the rest while active.
	PreserveStacking  bool
	RenderOnAddRemove bool
	Interactive       bool

	// Selection enables drag selection and multi selection.
	Selection bool
	// SelectionFullyContained only picks objects fully inside the drag box.
	SelectionFullyContained bool
	SelectionKey            string
	AltSelectionKey         string
	SelectionColor          string
	SelectionBorderColor    string
	SelectionLineWidth      float64
	SelectionDashArray      []float64

	UniformScaling   bool
	UniScaleKey      string
	CenteredScaling  bool
	CenteredRotation bool
	CenteredKey      string
	AltActionKey     string

	DefaultCursor string
	HoverCursor   string
	MoveCursor    string

	// Config tunes caches and serialization. Nil uses config.DefaultEngine.
	Config *config.Engine
	// Surfaces creates the lower and top surfaces. Nil records commands.
	Surfaces surface.Factory
	// Scheduler runs frame callbacks. Nil creates a ManualScheduler.
	Scheduler Scheduler
	// Registry enlivens records in LoadFromJSON. Nil uses the default set.
	Registry *scene.Registry
	Logger   *slog.Logger
}

// DefaultOptions returns the stock options for a width x height canvas.
func DefaultOptions(width, height int) Options {
	return Options{
		Width:                width,
		Height:               height,
		BackgroundVpt:        true,
		OverlayVpt:           true,
		RenderOnAddRemove:    true,
		Interactive:          true,
		Selection:            true,
		SelectionKey:         "shiftKey",
		SelectionColor:       "rgba(100, 100, 255, 0.3)",
		SelectionBorderColor: "rgba(255, 255, 255, 0.3)",
		SelectionLineWidth:   1,
		UniformScaling:       true,
		UniScaleKey:          "shiftKey",
		CenteredKey:          "altKey",
		AltActionKey:         "shiftKey",
		DefaultCursor:        "default",
		HoverCursor:          "move",
		MoveCursor:           "move",
	}
}

// Canvas is the root of a scene. All methods must be called from one
// goroutine, the one driving the scheduler.
type Canvas struct {
	event.Observable
	*scene.Collection
	Options

	Animations *anim.Registry

	lower surface.Surface
	top   surface.Surface

	vpt       geom.Matrix2D
	vptTL     geom.Point
	vptBR     geom.Point
	scheduler Scheduler

	frameMu      sync.Mutex
	pendingFrame bool
	cancelFrame  func()

	active        scene.Drawable
	hovered       scene.Drawable
	transform     *scene.Transform
	groupSelector *groupSelector
	pointerTarget scene.Drawable
	subTargets    []scene.Drawable
	isClick       bool
	cursor        string
	topDirty      bool

	disposed bool
}

// New creates a canvas. Objects are added with Add.
func New(opts Options) *Canvas {
	if opts.Config == nil {
		opts.Config = config.DefaultEngine()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Registry == nil {
		opts.Registry = scene.DefaultRegistry()
	}
	c := &Canvas{
		Options:    opts,
		Animations: anim.NewRegistry(),
		scheduler:  opts.Scheduler,
		vpt:        geom.Identity(),
	}
	if c.scheduler == nil {
		c.scheduler = NewManualScheduler()
	}
	factory := opts.Surfaces
	if factory == nil {
		factory = surface.RecorderFactory(nil)
	}
	r := c.RetinaScaling()
	w, h := int(float64(opts.Width)*r), int(float64(opts.Height)*r)
	c.lower = factory(w, h)
	c.top = factory(w, h)
	c.Collection = scene.NewCollection(scene.CollectionFuncs{
		Added:     c.onObjectAdded,
		Removed:   c.onObjectRemoved,
		Reordered: func(scene.Drawable) { c.requestOnAddRemove() },
	})
	c.cursor = c.DefaultCursor
	c.calcViewportBoundaries()
	return c
}

// Lower is the surface objects are painted on.
func (c *Canvas) Lower() surface.Surface { return c.lower }

// Top is the surface controls and the drag selection are painted on.
func (c *Canvas) Top() surface.Surface { return c.top }

// Cursor is the cursor the last pointer event resolved.
func (c *Canvas) Cursor() string { return c.cursor }

// --- scene.Host ---

func (c *Canvas) Engine() *config.Engine { return c.Config }

func (c *Canvas) ViewportTransform() geom.Matrix2D { return c.vpt }

// RetinaScaling is the device pixel ratio surfaces are allocated at.
func (c *Canvas) RetinaScaling() float64 {
	if c.Config.EnableRetinaScaling && c.Config.DevicePixelRatio > 1 {
		return c.Config.DevicePixelRatio
	}
	return 1
}

func (c *Canvas) ViewportCorners() (geom.Point, geom.Point) { return c.vptTL, c.vptBR }

func (c *Canvas) SkipOffscreen() bool { return !c.RenderOffscreen }

// PreserveObjectStacking reports whether active objects keep their z-index.
func (c *Canvas) PreserveObjectStacking() bool { return c.PreserveStacking }

func (c *Canvas) ActiveObject() scene.Drawable { return c.active }

func (c *Canvas) Interaction() scene.InteractionOptions {
	return scene.InteractionOptions{
		UniformScaling:   c.UniformScaling,
		UniScaleKey:      c.UniScaleKey,
		CenteredScaling:  c.CenteredScaling,
		CenteredRotation: c.CenteredRotation,
		CenteredKey:      c.CenteredKey,
		AltActionKey:     c.AltActionKey,
	}
}

// Objects returns the top level objects back to front.
func (c *Canvas) Objects(types ...string) []scene.Drawable {
	return c.Collection.Objects(types...)
}

// --- membership ---

func (c *Canvas) onObjectAdded(d scene.Drawable) {
	o := d.Base()
	if h := o.Canvas(); h != nil && h != scene.Host(c) {
		c.Logger.Warn("canvas: object belongs to another canvas, moving it", "id", o.ID)
		if other, ok := h.(*Canvas); ok {
			other.Remove(d)
		}
	}
	if g := o.Group(); g != nil {
		g.Remove(d)
	}
	o.SetCanvas(c)
	o.SetCoords()
	c.Fire("object:added", event.Event{Target: d})
	o.Fire("added", event.Event{Name: "added", Target: c})
	c.requestOnAddRemove()
}

func (c *Canvas) onObjectRemoved(d scene.Drawable) {
	o := d.Base()
	switch {
	case d == c.active:
		c.Fire("before:selection:cleared", event.Event{Payload: SelectionEvent{Deselected: []scene.Drawable{d}}})
		c.discardActive(PointerEvent{})
		c.Fire("selection:cleared", event.Event{Payload: SelectionEvent{Deselected: []scene.Drawable{d}}})
		o.Fire("deselected", event.Event{Name: "deselected", Target: d})
	case c.activeSelection() != nil && c.activeSelection().Contains(d, false):
		sel := c.activeSelection()
		before := sel.Objects()
		sel.Remove(d)
		if sel.Size() == 0 {
			c.discardActive(PointerEvent{})
		}
		c.fireSelectionEvents(before, PointerEvent{})
	}
	if d == c.hovered {
		c.hovered = nil
	}
	c.Fire("object:removed", event.Event{Target: d})
	o.Fire("removed", event.Event{Name: "removed", Target: c})
	o.SetCanvas(nil)
	c.requestOnAddRemove()
}

func (c *Canvas) requestOnAddRemove() {
	if c.RenderOnAddRemove {
		c.RequestRenderAll()
	}
}

// Clear removes every object and the canvas paint.
func (c *Canvas) Clear() {
	if c.active != nil {
		c.DiscardActiveObject()
	}
	c.transform = nil
	c.groupSelector = nil
	c.Collection.Remove(c.Collection.Objects()...)
	c.BackgroundImage, c.OverlayImage, c.ClipPath = nil, nil, nil
	c.BackgroundColor, c.OverlayColor = "", ""
	c.lower.Resize(c.lower.Width(), c.lower.Height())
	c.top.Resize(c.top.Width(), c.top.Height())
	c.Fire("canvas:cleared", event.Event{})
	c.requestOnAddRemove()
}

// SetDimensions resizes the canvas and its surfaces.
func (c *Canvas) SetDimensions(width, height int) {
	c.Width, c.Height = width, height
	r := c.RetinaScaling()
	c.lower.Resize(int(float64(width)*r), int(float64(height)*r))
	c.top.Resize(int(float64(width)*r), int(float64(height)*r))
	c.calcViewportBoundaries()
	c.setCoordsAll()
	c.RequestRenderAll()
}

// Dispose cancels the pending frame and animations and releases every
// object. A disposed canvas rejects further work with ErrDisposed.
func (c *Canvas) Dispose() error {
	if c.disposed {
		return ErrDisposed
	}
	c.disposed = true
	c.frameMu.Lock()
	if c.cancelFrame != nil {
		c.cancelFrame()
		c.cancelFrame = nil
	}
	c.pendingFrame = false
	c.frameMu.Unlock()
	c.Animations.CancelAll()
	if c.active != nil {
		c.discardActive(PointerEvent{})
	}
	for _, d := range c.Collection.Objects() {
		d.Base().Dispose()
	}
	c.Collection.Remove(c.Collection.Objects()...)
	for _, d := range []scene.Drawable{c.BackgroundImage, c.OverlayImage, c.ClipPath} {
		if d != nil {
			d.Base().Dispose()
		}
	}
	c.lower.Dispose()
	c.top.Dispose()
	c.Off("")
	return nil
}

// Disposed reports whether Dispose ran.
func (c *Canvas) Disposed() bool { return c.disposed }
