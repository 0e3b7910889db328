// Package scene is the retained object model: shapes, groups, their
// geometry, render caches, layout and interactive controls.
package scene

import (
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/inamate/inamate/canvas-go/internal/config"
	"github.com/inamate/inamate/canvas-go/internal/event"
	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/surface"
	"github.com/inamate/inamate/canvas-go/internal/typeid"
)

// Version is stamped on serialized records.
const Version = "1.0.0"

// Drawable is implemented by every object kind.
type Drawable interface {
	Base() *Object
	Type() string
	// DrawShape paints the shape in its own plane, centered on the origin.
	DrawShape(ctx surface.Context)
	// Render paints the object with its full transform, opacity and cache.
	Render(ctx surface.Context)
}

// Serializable objects produce their persisted record.
type Serializable interface {
	ToObject() any
}

// SVGExporter objects produce an SVG fragment.
type SVGExporter interface {
	ToSVG() string
}

// Host is what objects need from the canvas that owns them.
type Host interface {
	Engine() *config.Engine
	ViewportTransform() geom.Matrix2D
	RetinaScaling() float64
	// ViewportCorners returns the scene-plane corners of the visible area.
	ViewportCorners() (tl, br geom.Point)
	SkipOffscreen() bool
	ActiveObject() Drawable
	Interaction() InteractionOptions
	Fire(name string, e event.Event)
	RequestRenderAll()
}

// InteractionOptions are the canvas level switches control handlers read.
type InteractionOptions struct {
	UniformScaling   bool
	UniScaleKey      string
	CenteredScaling  bool
	CenteredRotation bool
	CenteredKey      string
	AltActionKey     string
}

var generation atomic.Uint64

func nextGeneration() uint64 { return generation.Add(1) }

// Object holds the state shared by every shape. Geometry is only reachable
// through accessors so each change stamps the matrix caches. Paint and
// interaction fields are plain: their setters (SetFill, SetStroke, ...) and
// Set apply the dirty rules, a direct write must be followed by MarkDirty.
type Object struct {
	event.Observable

	self Drawable

	ID string

	left, top      float64
	width, height  float64
	scaleX, scaleY float64
	angle          float64
	skewX, skewY   float64
	flipX, flipY   bool
	originX        geom.Origin
	originY        geom.Origin
	strokeWidth    float64
	strokeUniform  bool

	Fill                     string
	FillRule                 string
	Stroke                   string
	StrokeDashArray          []float64
	StrokeDashOffset         float64
	StrokeLineCap            string
	StrokeLineJoin           string
	StrokeMiterLimit         float64
	Opacity                  float64
	Shadow                   *Shadow
	ClipPath                 Drawable
	Inverted                 bool
	AbsolutePositioned       bool
	GlobalCompositeOperation string
	Visible                  bool
	BackgroundColor          string
	PaintFirst               string

	ObjectCaching bool
	NoScaleCache  bool
	Dirty         bool

	Selectable              bool
	Evented                 bool
	HasControls             bool
	HasBorders              bool
	Padding                 float64
	BorderColor             string
	BorderDashArray         []float64
	BorderScaleFactor       float64
	BorderOpacityWhenMoving float64
	CornerColor             string
	CornerStrokeColor       string
	CornerStyle             string
	CornerSize              float64
	TouchCornerSize         float64
	TransparentCorners      bool
	SelectionBackground     string
	HoverCursor             string
	MoveCursor              string
	ExcludeFromExport       bool
	PerPixelTargetFind      bool

	LockMovementX    bool
	LockMovementY    bool
	LockRotation     bool
	LockScalingX     bool
	LockScalingY     bool
	LockSkewingX     bool
	LockSkewingY     bool
	LockScalingFlip  bool
	MinScaleLimit    float64
	CenteredScaling  bool
	CenteredRotation bool
	SnapAngle        float64
	SnapThreshold    float64

	Controls map[string]*Control
	// IsMoving is set while a drag is moving the object.
	IsMoving bool

	controlsVisibility map[string]bool
	activeControl      string

	group  *Group
	parent *Group
	canvas Host

	aCoords Corners
	oCoords map[string]*ControlCoords

	stamp        uint64
	ownStamp     uint64
	ownMatrix    geom.Matrix2D
	fullStamp    uint64
	fullMatrix   geom.Matrix2D
	fullSkipping bool

	cache renderCache

	// set on groups while their render applied the full matrix
	transformDone bool
}

func (o *Object) init(self Drawable) {
	o.self = self
	o.ID = typeid.NewObjectID()
	o.scaleX, o.scaleY = 1, 1
	o.originX, o.originY = geom.OriginLeft, geom.OriginTop
	o.strokeWidth = 1

	o.Fill = "rgb(0,0,0)"
	o.FillRule = "nonzero"
	o.StrokeLineCap = "butt"
	o.StrokeLineJoin = "miter"
	o.StrokeMiterLimit = 4
	o.Opacity = 1
	o.GlobalCompositeOperation = string(surface.SourceOver)
	o.Visible = true
	o.PaintFirst = "fill"

	o.ObjectCaching = true
	o.NoScaleCache = true
	o.Dirty = true

	o.Selectable = true
	o.Evented = true
	o.HasControls = true
	o.HasBorders = true
	o.BorderColor = "rgb(178,204,255)"
	o.BorderScaleFactor = 1
	o.BorderOpacityWhenMoving = 0.4
	o.CornerColor = "rgb(178,204,255)"
	o.CornerStyle = "rect"
	o.CornerSize = 13
	o.TouchCornerSize = 24
	o.TransparentCorners = true
	o.CenteredRotation = true
	o.Controls = DefaultControls()

	o.stamp = nextGeneration()
}

// Base returns the object itself; shapes inherit it through embedding.
func (o *Object) Base() *Object { return o }

// Self returns the concrete shape this object belongs to.
func (o *Object) Self() Drawable { return o.self }

func (o *Object) Left() float64        { return o.left }
func (o *Object) Top() float64         { return o.top }
func (o *Object) Width() float64       { return o.width }
func (o *Object) Height() float64      { return o.height }
func (o *Object) ScaleX() float64      { return o.scaleX }
func (o *Object) ScaleY() float64      { return o.scaleY }
func (o *Object) Angle() float64       { return o.angle }
func (o *Object) SkewX() float64       { return o.skewX }
func (o *Object) SkewY() float64       { return o.skewY }
func (o *Object) FlipX() bool          { return o.flipX }
func (o *Object) FlipY() bool          { return o.flipY }
func (o *Object) OriginX() geom.Origin { return o.originX }
func (o *Object) OriginY() geom.Origin { return o.originY }
func (o *Object) StrokeWidth() float64 { return o.strokeWidth }
func (o *Object) StrokeUniform() bool  { return o.strokeUniform }
func (o *Object) Group() *Group        { return o.group }
func (o *Object) Parent() *Group       { return o.parent }
func (o *Object) Canvas() Host         { return o.canvas }
func (o *Object) ACoords() Corners     { return o.aCoords }

// touch stamps a geometry change.
func (o *Object) touch() { o.stamp = nextGeneration() }

func (o *Object) setFloat(field *float64, v float64, cacheProp bool) {
	if *field == v {
		return
	}
	*field = v
	o.touch()
	o.changed(cacheProp)
}

func (o *Object) setBool(field *bool, v bool, cacheProp bool) {
	if *field == v {
		return
	}
	*field = v
	o.touch()
	o.changed(cacheProp)
}

// changed applies the dirty rules after a property write.
func (o *Object) changed(cacheProp bool) {
	groupNeedsUpdate := o.group != nil && o.group.IsOnACache()
	if cacheProp {
		o.Dirty = true
	}
	if groupNeedsUpdate {
		o.group.MarkDirty()
	}
}

// MarkDirty flags the render cache stale, up through cached ancestors.
func (o *Object) MarkDirty() {
	o.changed(true)
}

func (o *Object) SetLeft(v float64)  { o.setFloat(&o.left, v, false) }
func (o *Object) SetTop(v float64)   { o.setFloat(&o.top, v, false) }
func (o *Object) SetAngle(v float64) { o.setFloat(&o.angle, v, false) }
func (o *Object) SetSkewX(v float64) { o.setFloat(&o.skewX, v, false) }
func (o *Object) SetSkewY(v float64) { o.setFloat(&o.skewY, v, false) }
func (o *Object) SetFlipX(v bool)    { o.setBool(&o.flipX, v, false) }
func (o *Object) SetFlipY(v bool)    { o.setBool(&o.flipY, v, false) }

func (o *Object) SetWidth(v float64)       { o.setFloat(&o.width, v, true) }
func (o *Object) SetHeight(v float64)      { o.setFloat(&o.height, v, true) }
func (o *Object) SetStrokeWidth(v float64) { o.setFloat(&o.strokeWidth, v, true) }
func (o *Object) SetStrokeUniform(v bool)  { o.setBool(&o.strokeUniform, v, true) }

func (o *Object) setString(field *string, v string, cacheProp bool) {
	if *field == v {
		return
	}
	*field = v
	o.changed(cacheProp)
}

func (o *Object) SetFill(v string)            { o.setString(&o.Fill, v, true) }
func (o *Object) SetFillRule(v string)        { o.setString(&o.FillRule, v, true) }
func (o *Object) SetStroke(v string)          { o.setString(&o.Stroke, v, true) }
func (o *Object) SetStrokeLineCap(v string)   { o.setString(&o.StrokeLineCap, v, true) }
func (o *Object) SetStrokeLineJoin(v string)  { o.setString(&o.StrokeLineJoin, v, true) }
func (o *Object) SetBackgroundColor(v string) { o.setString(&o.BackgroundColor, v, true) }
func (o *Object) SetPaintFirst(v string)      { o.setString(&o.PaintFirst, v, true) }
func (o *Object) SetGlobalCompositeOperation(v string) {
	o.setString(&o.GlobalCompositeOperation, v, false)
}

func (o *Object) SetStrokeDashOffset(v float64) { o.setPlain(&o.StrokeDashOffset, v, true) }
func (o *Object) SetStrokeMiterLimit(v float64) { o.setPlain(&o.StrokeMiterLimit, v, true) }
func (o *Object) SetOpacity(v float64)          { o.setPlain(&o.Opacity, v, false) }

// setPlain is setFloat for fields that do not feed the matrices.
func (o *Object) setPlain(field *float64, v float64, cacheProp bool) {
	if *field == v {
		return
	}
	*field = v
	o.changed(cacheProp)
}

func (o *Object) SetVisible(v bool) {
	if o.Visible == v {
		return
	}
	o.Visible = v
	o.changed(false)
}

func (o *Object) SetStrokeDashArray(v []float64) {
	if slices.Equal(o.StrokeDashArray, v) {
		return
	}
	o.StrokeDashArray = slices.Clone(v)
	o.changed(true)
}

// SetShadow replaces the shadow. Shadows are drawn outside the cache, so
// only a cached ancestor goes stale.
func (o *Object) SetShadow(sh *Shadow) {
	o.Shadow = sh
	o.changed(false)
}

// SetClipPath replaces the clip path and binds it to the object's canvas.
func (o *Object) SetClipPath(d Drawable) {
	if d != nil {
		d.Base().SetCanvas(o.canvas)
	}
	o.ClipPath = d
	o.changed(true)
}

// Set writes one property by its record key, applying the same dirty rules
// as the typed setters.
func (o *Object) Set(key string, value any) error {
	switch v := value.(type) {
	case string:
		setters := map[string]func(string){
			"fill":                     o.SetFill,
			"fillRule":                 o.SetFillRule,
			"stroke":                   o.SetStroke,
			"strokeLineCap":            o.SetStrokeLineCap,
			"strokeLineJoin":           o.SetStrokeLineJoin,
			"backgroundColor":          o.SetBackgroundColor,
			"paintFirst":               o.SetPaintFirst,
			"globalCompositeOperation": o.SetGlobalCompositeOperation,
		}
		if set, ok := setters[key]; ok {
			set(v)
			return nil
		}
	case float64:
		setters := map[string]func(float64){
			"left":             o.SetLeft,
			"top":              o.SetTop,
			"width":            o.SetWidth,
			"height":           o.SetHeight,
			"scaleX":           o.SetScaleX,
			"scaleY":           o.SetScaleY,
			"angle":            o.SetAngle,
			"skewX":            o.SetSkewX,
			"skewY":            o.SetSkewY,
			"strokeWidth":      o.SetStrokeWidth,
			"strokeDashOffset": o.SetStrokeDashOffset,
			"strokeMiterLimit": o.SetStrokeMiterLimit,
			"opacity":          o.SetOpacity,
		}
		if set, ok := setters[key]; ok {
			set(v)
			return nil
		}
	case bool:
		setters := map[string]func(bool){
			"flipX":         o.SetFlipX,
			"flipY":         o.SetFlipY,
			"strokeUniform": o.SetStrokeUniform,
			"visible":       o.SetVisible,
		}
		if set, ok := setters[key]; ok {
			set(v)
			return nil
		}
	case []float64:
		if key == "strokeDashArray" {
			o.SetStrokeDashArray(v)
			return nil
		}
	case *Shadow:
		if key == "shadow" {
			o.SetShadow(v)
			return nil
		}
	case Drawable:
		if key == "clipPath" {
			o.SetClipPath(v)
			return nil
		}
	case nil:
		switch key {
		case "clipPath":
			o.SetClipPath(nil)
			return nil
		case "shadow":
			o.SetShadow(nil)
			return nil
		case "strokeDashArray":
			o.SetStrokeDashArray(nil)
			return nil
		}
	}
	return fmt.Errorf("set %s: unsupported value %T", key, value)
}

// SetPosition moves the origin point to (left, top).
func (o *Object) SetPosition(left, top float64) {
	o.SetLeft(left)
	o.SetTop(top)
}

// SetScaleX stores a constrained scale. Negative values toggle FlipX and are
// stored positive.
func (o *Object) SetScaleX(v float64) {
	v = o.constrainScale(v)
	if v < 0 {
		o.SetFlipX(!o.flipX)
		v = -v
	}
	o.setFloat(&o.scaleX, v, false)
}

// SetScaleY is SetScaleX for the vertical axis.
func (o *Object) SetScaleY(v float64) {
	v = o.constrainScale(v)
	if v < 0 {
		o.SetFlipY(!o.flipY)
		v = -v
	}
	o.setFloat(&o.scaleY, v, false)
}

func (o *Object) constrainScale(v float64) float64 {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	if abs < o.MinScaleLimit {
		if v < 0 {
			return -o.MinScaleLimit
		}
		return o.MinScaleLimit
	}
	if v == 0 {
		return 0.0001
	}
	return v
}

func (o *Object) SetOriginX(v geom.Origin) {
	if o.originX == v {
		return
	}
	o.originX = v
	o.touch()
}

func (o *Object) SetOriginY(v geom.Origin) {
	if o.originY == v {
		return
	}
	o.originY = v
	o.touch()
}

// SetCanvas binds the object (and its clip path) to a host.
func (o *Object) SetCanvas(h Host) {
	o.canvas = h
	if o.ClipPath != nil {
		o.ClipPath.Base().SetCanvas(h)
	}
	if c, ok := o.self.(interface{ setChildrenCanvas(Host) }); ok {
		c.setChildrenCanvas(h)
	}
}

func (o *Object) engine() *config.Engine {
	if o.canvas != nil {
		if e := o.canvas.Engine(); e != nil {
			return e
		}
	}
	return defaultEngine
}

var defaultEngine = config.DefaultEngine()

func (o *Object) logger() *slog.Logger { return slog.Default() }

// FireEvent fires name on the object with payload attached.
func (o *Object) FireEvent(name string, payload any) {
	o.Fire(name, event.Event{Name: name, Target: o.self, Payload: payload})
}

// IsDescendantOf reports whether target is an ancestor through group or
// parent links.
func (o *Object) IsDescendantOf(target *Group) bool {
	for g, p := o.group, o.parent; g != nil || p != nil; {
		if g == target || p == target {
			return true
		}
		next := g
		if next == nil {
			next = p
		}
		g, p = next.group, next.parent
	}
	return false
}

// Ancestors lists the parent groups from the nearest outward. An active
// selection is never an ancestor; its members keep their parent.
func (o *Object) Ancestors() []*Group {
	var out []*Group
	for g := o.parent; g != nil; g = g.parent {
		out = append(out, g)
	}
	return out
}

// IsInFrontOf reports whether o paints above other. Both must share a
// container somewhere up the tree.
func (o *Object) IsInFrontOf(other *Object) bool {
	if o == other {
		return false
	}
	mine := append([]*Group{nil}, reverse(o.Ancestors())...)
	theirs := append([]*Group{nil}, reverse(other.Ancestors())...)
	i := 0
	for i+1 < len(mine) && i+1 < len(theirs) && mine[i+1] == theirs[i+1] {
		i++
	}
	// mine[i] is the deepest shared container (nil is the canvas root)
	a, b := o.self, other.self
	if i+1 < len(mine) {
		a = mine[i+1].self
	}
	if i+1 < len(theirs) {
		b = theirs[i+1].self
	}
	if a == b {
		// one object contains the other
		return i+1 >= len(theirs)
	}
	var objects []Drawable
	if mine[i] != nil {
		objects = mine[i].objects
	} else if o.canvas != nil {
		if c, ok := o.canvas.(interface{ Objects(...string) []Drawable }); ok {
			objects = c.Objects()
		}
	}
	ia, ib := indexOf(objects, a), indexOf(objects, b)
	return ia > -1 && ia > ib
}

func reverse(gs []*Group) []*Group {
	out := make([]*Group, len(gs))
	for i, g := range gs {
		out[len(gs)-1-i] = g
	}
	return out
}

// Complexity is the number of primitive shapes drawn.
func (o *Object) Complexity() int {
	if c, ok := o.self.(interface{ complexity() int }); ok {
		return c.complexity()
	}
	return 1
}

// Dispose releases the render cache and every listener.
func (o *Object) Dispose() {
	o.cache.release()
	o.Off("")
	if d, ok := o.self.(interface{ dispose() }); ok {
		d.dispose()
	}
}
