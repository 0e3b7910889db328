// Package surface provides the 2D drawing capability the scene renders into:
// a Canvas2D-shaped Context, Surfaces that own one, and two backends.
// Raster paints pixels through gg; Recorder captures a replayable command
// stream for the browser frontend.
package surface

import (
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/inamate/inamate/canvas-go/internal/geom"
)

// ErrAlreadyInitialized is returned when a surface is bound to a second owner.
var ErrAlreadyInitialized = errors.New("surface already initialized")

// CompositeOp mirrors the Canvas2D globalCompositeOperation names.
type CompositeOp string

const (
	SourceOver      CompositeOp = "source-over"
	SourceAtop      CompositeOp = "source-atop"
	DestinationIn   CompositeOp = "destination-in"
	DestinationOut  CompositeOp = "destination-out"
	DestinationOver CompositeOp = "destination-over"
	Multiply        CompositeOp = "multiply"
	Screen          CompositeOp = "screen"
	Overlay         CompositeOp = "overlay"
	Copy            CompositeOp = "copy"
)

// FillRule selects the winding rule for fill and clip.
type FillRule string

const (
	NonZero FillRule = "nonzero"
	EvenOdd FillRule = "evenodd"
)

// Shadow is the context shadow state. A zero value disables shadows.
type Shadow struct {
	Color   string
	Blur    float64
	OffsetX float64
	OffsetY float64
}

// IsZero reports whether the shadow would paint nothing.
func (s Shadow) IsZero() bool {
	return s.Color == "" || (s.Blur == 0 && s.OffsetX == 0 && s.OffsetY == 0)
}

// Font describes the face used by FillText and MeasureText.
type Font struct {
	Family string
	Size   float64
	Weight string
	Style  string
}

// CSS renders the font the way Canvas2D's font property expects it.
func (f Font) CSS() string {
	style, weight := f.Style, f.Weight
	if style == "" {
		style = "normal"
	}
	if weight == "" {
		weight = "normal"
	}
	return fmt.Sprintf("%s normal %s %gpx %s", style, weight, f.Size, f.Family)
}

// TextMetrics is the result of measuring one run of text.
type TextMetrics struct {
	Width   float64
	Ascent  float64
	Descent float64
}

// TextMeasurer measures text without drawing it.
type TextMeasurer interface {
	MeasureText(f Font, s string) TextMetrics
}

// Context is the drawing API objects render through. Coordinates passed to
// path and image operations are transformed by the current matrix at call
// time, as in Canvas2D.
type Context interface {
	Save()
	Restore()

	Transform(m geom.Matrix2D)
	SetTransform(m geom.Matrix2D)
	CurrentTransform() geom.Matrix2D
	Translate(x, y float64)
	Scale(x, y float64)
	Rotate(radians float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticCurveTo(cx, cy, x, y float64)
	BezierCurveTo(c1x, c1y, c2x, c2y, x, y float64)
	Arc(x, y, r, start, end float64, counterClockwise bool)
	Rect(x, y, w, h float64)
	ClosePath()

	Fill(rule FillRule)
	Stroke()
	Clip(rule FillRule)
	FillRect(x, y, w, h float64)
	ClearRect(x, y, w, h float64)

	SetFillStyle(style string)
	SetStrokeStyle(style string)
	SetLineWidth(w float64)
	SetLineCap(c string)
	SetLineJoin(j string)
	SetMiterLimit(l float64)
	SetLineDash(dash []float64)
	SetLineDashOffset(off float64)

	GlobalAlpha() float64
	SetGlobalAlpha(a float64)
	SetCompositeOperation(op CompositeOp)
	SetShadow(s Shadow)

	// DrawImage paints img into the destination rectangle.
	DrawImage(img image.Image, dx, dy, dw, dh float64)

	SetFont(f Font)
	FillText(s string, x, y float64)
	MeasureText(s string) TextMetrics

	// Spawn creates an off-screen surface this context can draw.
	Spawn(width, height int) Surface
}

// Surface owns a pixel (or command) buffer and the Context that draws on it.
type Surface interface {
	Width() int
	Height() int
	// Resize changes the size and clears the content.
	Resize(width, height int)
	Context() Context
	// Image exposes the content so it can be drawn onto another surface.
	Image() image.Image
	// Acquire binds the surface to one owner.
	Acquire() error
	Dispose()
}

// Factory creates a new surface; objects use it for their render caches.
type Factory func(width, height int) Surface

// NamedImage tags an image with the name the frontend resolves it by.
type NamedImage struct {
	image.Image
	Name string
}

type claim struct {
	taken atomic.Bool
}

func (c *claim) Acquire() error {
	if !c.taken.CompareAndSwap(false, true) {
		return ErrAlreadyInitialized
	}
	return nil
}

func (c *claim) release() { c.taken.Store(false) }

// state is the save/restore stack entry shared by both backends.
type state struct {
	matrix     geom.Matrix2D
	alpha      float64
	op         CompositeOp
	fill       string
	stroke     string
	lineWidth  float64
	lineCap    string
	lineJoin   string
	miterLimit float64
	dash       []float64
	dashOffset float64
	shadow     Shadow
	font       Font
}

func defaultState() state {
	return state{
		matrix:     geom.Identity(),
		alpha:      1,
		op:         SourceOver,
		fill:       "#000000",
		stroke:     "#000000",
		lineWidth:  1,
		lineCap:    "butt",
		lineJoin:   "miter",
		miterLimit: 10,
		font:       Font{Family: "sans-serif", Size: 10},
	}
}
