package scene

import (
	"math"
	"sort"

	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/intersect"
	"github.com/inamate/inamate/canvas-go/internal/surface"
)

// Action names reported by controls.
const (
	ActionDrag     = "drag"
	ActionScale    = "scale"
	ActionScaleX   = "scaleX"
	ActionScaleY   = "scaleY"
	ActionSkewX    = "skewX"
	ActionSkewY    = "skewY"
	ActionRotate   = "rotate"
	ActionResizing = "resizing"
)

// ActionHandler applies a pointer move at (x, y), in the target's parent
// plane, to the transform's target. It reports whether anything changed.
type ActionHandler func(e PointerEvent, t *Transform, x, y float64) bool

// CursorStyleHandler picks the cursor shown over a control.
type CursorStyleHandler func(e PointerEvent, c *Control, obj *Object) string

// ActionNameHandler picks the action a drag on a control performs.
type ActionNameHandler func(e PointerEvent, c *Control, obj *Object) string

// ControlRenderer paints a control centered at (left, top) in viewport
// pixels.
type ControlRenderer func(ctx surface.Context, left, top float64, style ControlStyle, obj *Object)

// ControlStyle overrides the object's corner styling when drawing controls.
type ControlStyle struct {
	CornerSize         float64
	CornerStyle        string
	CornerColor        string
	CornerStrokeColor  string
	CornerDashArray    []float64
	TransparentCorners *bool
	BorderColor        string
	BorderDashArray    []float64
	HasBorders         *bool
	HasControls        *bool
	ForActiveSelection bool
}

// Control is one transform handle. X and Y place it on the bounding box in
// [-0.5, 0.5] units; offsets are in viewport pixels.
type Control struct {
	Visible    bool
	ActionName string
	Angle      float64

	X, Y             float64
	OffsetX, OffsetY float64
	SizeX, SizeY     float64
	TouchSizeX       float64
	TouchSizeY       float64

	CursorStyle    string
	WithConnection bool

	ActionHandler      ActionHandler
	MouseDownHandler   ActionHandler
	MouseUpHandler     ActionHandler
	CursorStyleHandler CursorStyleHandler
	GetActionName      ActionNameHandler
	Render             ControlRenderer
}

// ControlCoords is a control's position and hit areas in viewport pixels.
type ControlCoords struct {
	geom.Point
	Corner      Corners
	TouchCorner Corners
}

// NewControl returns a visible scale control at (x, y).
func NewControl(x, y float64) *Control {
	return &Control{
		Visible:     true,
		ActionName:  ActionScale,
		X:           x,
		Y:           y,
		CursorStyle: "crosshair",
	}
}

// DefaultControls builds the stock set: edge scale-or-skew handles, corner
// scale handles and a rotation handle above the top edge.
func DefaultControls() map[string]*Control {
	edge := func(x, y float64, handler ActionHandler) *Control {
		c := NewControl(x, y)
		c.CursorStyleHandler = ScaleSkewCursorStyleHandler
		c.ActionHandler = handler
		c.GetActionName = ScaleOrSkewActionName
		return c
	}
	corner := func(x, y float64) *Control {
		c := NewControl(x, y)
		c.CursorStyleHandler = ScaleCursorStyleHandler
		c.ActionHandler = ScalingEqually
		return c
	}
	mtr := NewControl(0, -0.5)
	mtr.ActionHandler = RotationWithSnapping
	mtr.CursorStyleHandler = RotationStyleHandler
	mtr.OffsetY = -40
	mtr.WithConnection = true
	mtr.ActionName = ActionRotate

	return map[string]*Control{
		"ml":  edge(-0.5, 0, ScalingXOrSkewingY),
		"mr":  edge(0.5, 0, ScalingXOrSkewingY),
		"mb":  edge(0, 0.5, ScalingYOrSkewingX),
		"mt":  edge(0, -0.5, ScalingYOrSkewingX),
		"tl":  corner(-0.5, -0.5),
		"tr":  corner(0.5, -0.5),
		"bl":  corner(-0.5, 0.5),
		"br":  corner(0.5, 0.5),
		"mtr": mtr,
	}
}

// TextboxControls replaces the horizontal edge handles with width resizing.
func TextboxControls() map[string]*Control {
	cs := DefaultControls()
	for _, key := range []string{"ml", "mr"} {
		c := cs[key]
		c.ActionHandler = ChangeWidth
		c.ActionName = ActionResizing
		c.GetActionName = nil
	}
	return cs
}

var controlOrder = map[string]int{
	"ml": 0, "mr": 1, "mb": 2, "mt": 3, "tl": 4, "tr": 5, "bl": 6, "br": 7, "mtr": 8,
}

// controlKeys lists the keys in drawing order: the stock handles first,
// then custom ones by name.
func controlKeys(cs map[string]*Control) []string {
	keys := make([]string, 0, len(cs))
	for k, c := range cs {
		if c != nil {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, iok := controlOrder[keys[i]]
		oj, jok := controlOrder[keys[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Visibility resolves the per-object override before the control default.
func (c *Control) Visibility(obj *Object, key string) bool {
	if v, ok := obj.controlsVisibility[key]; ok {
		return v
	}
	return c.Visible
}

// ShouldActivate reports whether pointer (viewport pixels) hits the control
// on the active object.
func (c *Control) ShouldActivate(key string, obj *Object, pointer geom.Point, area Corners) bool {
	if obj.canvas == nil {
		return false
	}
	active := obj.canvas.ActiveObject()
	if active == nil || active.Base() != obj || !obj.IsControlVisible(key) {
		return false
	}
	return intersect.IsPointInPolygon(pointer, area.Points())
}

// Action returns the handler for a drag on the control.
func (c *Control) Action() ActionHandler { return c.ActionHandler }

// Cursor returns the cursor for the control.
func (c *Control) Cursor(e PointerEvent, obj *Object) string {
	if c.CursorStyleHandler != nil {
		return c.CursorStyleHandler(e, c, obj)
	}
	return c.CursorStyle
}

// Name returns the action name for a drag on the control.
func (c *Control) Name(e PointerEvent, obj *Object) string {
	if c.GetActionName != nil {
		return c.GetActionName(e, c, obj)
	}
	return c.ActionName
}

// PositionHandler places the control given the current box size dim and
// the box-to-viewport matrix.
func (c *Control) PositionHandler(dim geom.Point, final geom.Matrix2D) geom.Point {
	return geom.Pt(c.X*dim.X+c.OffsetX, c.Y*dim.Y+c.OffsetY).Transform(final, false)
}

// CalcCornerCoords is the rotated hit square around (centerX, centerY).
func (c *Control) CalcCornerCoords(angle, objectCornerSize, centerX, centerY float64, touch bool) Corners {
	sx, sy := c.SizeX, c.SizeY
	if touch {
		sx, sy = c.TouchSizeX, c.TouchSizeY
	}
	if sx == 0 {
		sx = objectCornerSize
	}
	if sy == 0 {
		sy = objectCornerSize
	}
	t := geom.MultiplyAll(false,
		geom.Ref(geom.Translate(centerX, centerY)),
		geom.Ref(geom.Rotate(angle, geom.Point{})),
		geom.Ref(geom.Scale(sx, sy)))
	return Corners{
		TL: geom.Pt(-0.5, -0.5).Transform(t, false),
		TR: geom.Pt(0.5, -0.5).Transform(t, false),
		BR: geom.Pt(0.5, 0.5).Transform(t, false),
		BL: geom.Pt(-0.5, 0.5).Transform(t, false),
	}
}

// Draw paints the control with its renderer, or by the object's corner
// style.
func (c *Control) Draw(ctx surface.Context, left, top float64, style ControlStyle, obj *Object) {
	if c.Render != nil {
		c.Render(ctx, left, top, style, obj)
		return
	}
	cornerStyle := style.CornerStyle
	if cornerStyle == "" {
		cornerStyle = obj.CornerStyle
	}
	if cornerStyle == "circle" {
		c.renderCircle(ctx, left, top, style, obj)
		return
	}
	c.renderSquare(ctx, left, top, style, obj)
}

type controlPaint struct {
	sizeX, sizeY float64
	transparent  bool
	fill, stroke string
	strokeCorner bool
}

func (c *Control) paint(style ControlStyle, obj *Object) controlPaint {
	size := style.CornerSize
	if size == 0 {
		size = obj.CornerSize
	}
	p := controlPaint{sizeX: c.SizeX, sizeY: c.SizeY}
	if p.sizeX == 0 {
		p.sizeX = size
	}
	if p.sizeY == 0 {
		p.sizeY = size
	}
	p.transparent = obj.TransparentCorners
	if style.TransparentCorners != nil {
		p.transparent = *style.TransparentCorners
	}
	p.fill = style.CornerColor
	if p.fill == "" {
		p.fill = obj.CornerColor
	}
	p.stroke = style.CornerStrokeColor
	if p.stroke == "" {
		p.stroke = obj.CornerStrokeColor
	}
	p.strokeCorner = !p.transparent && p.stroke != ""
	return p
}

func (c *Control) renderSquare(ctx surface.Context, left, top float64, style ControlStyle, obj *Object) {
	p := c.paint(style, obj)
	ctx.Save()
	ctx.SetFillStyle(p.fill)
	ctx.SetStrokeStyle(p.stroke)
	ctx.Translate(left, top)
	ctx.Rotate(geom.DegreesToRadians(obj.TotalAngle()))
	ctx.BeginPath()
	ctx.Rect(-p.sizeX/2, -p.sizeY/2, p.sizeX, p.sizeY)
	if p.transparent {
		ctx.SetStrokeStyle(p.fill)
		ctx.Stroke()
	} else {
		ctx.Fill(surface.NonZero)
	}
	if p.strokeCorner {
		ctx.SetStrokeStyle(p.stroke)
		ctx.Stroke()
	}
	ctx.Restore()
}

func (c *Control) renderCircle(ctx surface.Context, left, top float64, style ControlStyle, obj *Object) {
	p := c.paint(style, obj)
	ctx.Save()
	ctx.SetFillStyle(p.fill)
	ctx.SetStrokeStyle(p.stroke)
	ctx.Translate(left, top)
	ctx.Rotate(geom.DegreesToRadians(obj.TotalAngle()))
	if p.sizeX != p.sizeY {
		ctx.Scale(1, p.sizeY/p.sizeX)
	}
	ctx.BeginPath()
	ctx.Arc(0, 0, p.sizeX/2, 0, 2*math.Pi, false)
	if p.transparent {
		ctx.SetStrokeStyle(p.fill)
		ctx.Stroke()
	} else {
		ctx.Fill(surface.NonZero)
	}
	if p.strokeCorner {
		ctx.SetStrokeStyle(p.stroke)
		ctx.Stroke()
	}
	ctx.Restore()
}
