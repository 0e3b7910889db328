package scene

import (
	"fmt"
	"math"

	"github.com/inamate/inamate/canvas-go/internal/event"
	"github.com/inamate/inamate/canvas-go/internal/geom"
)

// NotAllowedCursor is shown over controls whose action is locked.
const NotAllowedCursor = "not-allowed"

// PointerEvent is the input a control handler sees. Point is in viewport
// pixels.
type PointerEvent struct {
	Point geom.Point
	Shift bool
	Alt   bool
	Ctrl  bool
	Meta  bool
	Touch bool
}

// Modifier reports whether the named modifier key is held. Names follow
// the DOM: "shiftKey", "altKey", "ctrlKey", "metaKey"; the bare forms are
// accepted too.
func (e PointerEvent) Modifier(key string) bool {
	switch key {
	case "shiftKey", "shift":
		return e.Shift
	case "altKey", "alt":
		return e.Alt
	case "ctrlKey", "ctrl":
		return e.Ctrl
	case "metaKey", "meta":
		return e.Meta
	}
	return false
}

// TransformSnapshot is the state an object had when a transform started.
type TransformSnapshot struct {
	Left, Top      float64
	ScaleX, ScaleY float64
	SkewX, SkewY   float64
	Angle          float64
	FlipX, FlipY   bool
	OriginX        geom.Origin
	OriginY        geom.Origin
}

// SaveObjectTransform captures the object's transform fields.
func SaveObjectTransform(o *Object) TransformSnapshot {
	return TransformSnapshot{
		Left: o.left, Top: o.top,
		ScaleX: o.scaleX, ScaleY: o.scaleY,
		SkewX: o.skewX, SkewY: o.skewY,
		Angle: o.angle,
		FlipX: o.flipX, FlipY: o.flipY,
		OriginX: o.originX, OriginY: o.originY,
	}
}

// RestoreObjectTransform puts back the fields SaveObjectTransform captured.
func RestoreObjectTransform(o *Object, s TransformSnapshot) {
	o.left, o.top = s.Left, s.Top
	o.scaleX, o.scaleY = s.ScaleX, s.ScaleY
	o.skewX, o.skewY = s.SkewX, s.SkewY
	o.angle = s.Angle
	o.flipX, o.flipY = s.FlipX, s.FlipY
	o.originX, o.originY = s.OriginX, s.OriginY
	o.touch()
	o.SetCoords()
}

// Transform is one drag session on an object or one of its controls.
// Points are in the target's parent plane.
type Transform struct {
	Target        Drawable
	Action        string
	ActionHandler ActionHandler
	Corner        string

	ScaleX, ScaleY   float64
	SkewX, SkewY     float64
	OffsetX, OffsetY float64
	OriginX          geom.Origin
	OriginY          geom.Origin
	Ex, Ey           float64
	LastX, LastY     float64
	Theta            float64
	Width, Height    float64
	ShiftKey         bool
	AltKey           bool
	Original         TransformSnapshot

	SignX, SignY int
	// GestureScale, when set, scales uniformly from the session start.
	GestureScale float64
	skewingSide  float64

	ActionPerformed bool
}

func (t *Transform) object() *Object { return t.Target.Base() }

// TransformEventInfo is the payload of transform events.
type TransformEventInfo struct {
	E         PointerEvent
	Transform *Transform
	Pointer   geom.Point
}

// FireTransformEvent fires "object:"+name on the canvas and name on the
// target.
func FireTransformEvent(name string, info TransformEventInfo) {
	target := info.Transform.Target
	o := target.Base()
	if o.canvas != nil {
		o.canvas.Fire("object:"+name, event.Event{Name: "object:" + name, Target: target, Payload: info})
	}
	o.Fire(name, event.Event{Name: name, Target: target, Payload: info})
}

// WrapWithFireEvent fires name after every move that changed something.
func WrapWithFireEvent(name string, h ActionHandler) ActionHandler {
	return func(e PointerEvent, t *Transform, x, y float64) bool {
		performed := h(e, t, x, y)
		if performed {
			FireTransformEvent(name, TransformEventInfo{E: e, Transform: t, Pointer: geom.Pt(x, y)})
		}
		return performed
	}
}

// WrapWithFixedAnchor keeps the transform's origin point where it was
// before h ran.
func WrapWithFixedAnchor(h ActionHandler) ActionHandler {
	return func(e PointerEvent, t *Transform, x, y float64) bool {
		target := t.object()
		anchor := target.PositionByOrigin(t.OriginX, t.OriginY)
		performed := h(e, t, x, y)
		target.SetPositionByOrigin(anchor, t.OriginX, t.OriginY)
		return performed
	}
}

// ActionFromCorner names the action a drag starting on corner performs.
func ActionFromCorner(alreadySelected bool, corner string, e PointerEvent, target *Object) string {
	if corner == "" || !alreadySelected {
		return ActionDrag
	}
	c, ok := target.Controls[corner]
	if !ok {
		return ActionDrag
	}
	return c.Name(e, target)
}

// IsTransformCentered reports whether the transform scales from the center.
func IsTransformCentered(t *Transform) bool {
	return geom.ResolveOrigin(t.OriginX) == 0 && geom.ResolveOrigin(t.OriginY) == 0
}

// findCornerQuadrant maps a control's on-screen direction to one of eight
// compass sectors.
func findCornerQuadrant(o *Object, c *Control) int {
	cornerAngle := o.TotalAngle() + geom.RadiansToDegrees(math.Atan2(c.Y, c.X)) + 360
	return int(math.Round(math.Mod(cornerAngle, 360) / 45))
}

func normalizePoint(target *Object, point geom.Point, originX, originY geom.Origin) geom.Point {
	center := target.RelativeCenterPoint()
	var p geom.Point
	if originX != "" && originY != "" {
		p = target.TranslateToGivenOrigin(center, geom.OriginCenter, geom.OriginCenter, originX, originY)
	} else {
		p = geom.Pt(target.left, target.top)
	}
	p2 := point
	if target.angle != 0 {
		p2 = point.Rotate(-geom.DegreesToRadians(target.angle), center)
	}
	return p2.Subtract(p)
}

// LocalPoint expresses (x, y) relative to the given origin of the target,
// unrotated, with padding and control offsets removed.
func LocalPoint(t *Transform, originX, originY geom.Origin, x, y float64) geom.Point {
	target := t.object()
	zoom := 1.0
	if target.canvas != nil {
		if z := target.canvas.ViewportTransform()[0]; z != 0 {
			zoom = z
		}
	}
	padding := target.Padding / zoom
	p := normalizePoint(target, geom.Pt(x, y), originX, originY)
	if p.X >= padding {
		p.X -= padding
	}
	if p.X <= -padding {
		p.X += padding
	}
	if p.Y >= padding {
		p.Y -= padding
	}
	if p.Y <= -padding {
		p.Y += padding
	}
	if c, ok := target.Controls[t.Corner]; ok && c != nil {
		p.X -= c.OffsetX
		p.Y -= c.OffsetY
	}
	return p
}

// DragHandler moves the target by the pointer delta, honoring movement
// locks.
func DragHandler(e PointerEvent, t *Transform, x, y float64) bool {
	target := t.object()
	newLeft, newTop := x-t.OffsetX, y-t.OffsetY
	moveX := !target.LockMovementX && target.left != newLeft
	moveY := !target.LockMovementY && target.top != newTop
	if moveX {
		target.SetLeft(newLeft)
	}
	if moveY {
		target.SetTop(newTop)
	}
	if moveX || moveY {
		FireTransformEvent("moving", TransformEventInfo{E: e, Transform: t, Pointer: geom.Pt(x, y)})
	}
	return moveX || moveY
}

func interaction(o *Object) InteractionOptions {
	if o.canvas != nil {
		return o.canvas.Interaction()
	}
	return InteractionOptions{UniformScaling: true, UniScaleKey: "shiftKey", CenteredKey: "altKey", AltActionKey: "shiftKey"}
}

// ScaleIsProportional reports whether a corner drag keeps the aspect
// ratio: the canvas default, inverted while the uniform key is held.
func ScaleIsProportional(e PointerEvent, o *Object) bool {
	opts := interaction(o)
	return opts.UniformScaling != e.Modifier(opts.UniScaleKey)
}

// ScalingIsForbidden reports whether locks or a zero dimension prevent
// scaling along by ("x", "y" or "" for both).
func ScalingIsForbidden(o *Object, by string, proportional bool) bool {
	lockX, lockY := o.LockScalingX, o.LockScalingY
	switch {
	case lockX && lockY:
		return true
	case by == "" && (lockX || lockY) && proportional:
		return true
	case lockX && by == "x":
		return true
	case lockY && by == "y":
		return true
	case o.width == 0 && o.strokeWidth == 0 && by != "y":
		return true
	case o.height == 0 && o.strokeWidth == 0 && by != "x":
		return true
	}
	return false
}

var scaleMap = []string{"e", "se", "s", "sw", "w", "nw", "n", "ne", "e"}

// ScaleCursorStyleHandler shows a resize arrow matching the control's
// on-screen direction.
func ScaleCursorStyleHandler(e PointerEvent, c *Control, o *Object) string {
	by := ""
	switch {
	case c.X != 0 && c.Y == 0:
		by = "x"
	case c.X == 0 && c.Y != 0:
		by = "y"
	}
	if ScalingIsForbidden(o, by, ScaleIsProportional(e, o)) {
		return NotAllowedCursor
	}
	return scaleMap[findCornerQuadrant(o, c)] + "-resize"
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func firstNonZero(v float64, fallbacks ...int) float64 {
	if v != 0 {
		return v
	}
	for _, f := range fallbacks {
		if f != 0 {
			return float64(f)
		}
	}
	return 0
}

func scaleObject(e PointerEvent, t *Transform, x, y float64, by string) bool {
	target := t.object()
	proportional := ScaleIsProportional(e, target)
	if ScalingIsForbidden(target, by, proportional) {
		return false
	}
	var scaleX, scaleY float64
	if t.GestureScale != 0 {
		scaleX = t.ScaleX * t.GestureScale
		scaleY = t.ScaleY * t.GestureScale
	} else {
		p := LocalPoint(t, t.OriginX, t.OriginY, x, y)
		signX, signY := 1, 1
		if by != "y" {
			signX = sign(firstNonZero(p.X, t.SignX, 1))
		}
		if by != "x" {
			signY = sign(firstNonZero(p.Y, t.SignY, 1))
		}
		if t.SignX == 0 {
			t.SignX = signX
		}
		if t.SignY == 0 {
			t.SignY = signY
		}
		if target.LockScalingFlip && (t.SignX != signX || t.SignY != signY) {
			return false
		}
		dim := target.transformedDimensions()
		if proportional && by == "" {
			distance := math.Abs(p.X) + math.Abs(p.Y)
			orig := t.Original
			originalDistance := math.Abs(dim.X*orig.ScaleX/target.scaleX) + math.Abs(dim.Y*orig.ScaleY/target.scaleY)
			scale := distance / originalDistance
			scaleX, scaleY = orig.ScaleX*scale, orig.ScaleY*scale
		} else {
			scaleX = math.Abs(p.X * target.scaleX / dim.X)
			scaleY = math.Abs(p.Y * target.scaleY / dim.Y)
		}
		if IsTransformCentered(t) {
			scaleX *= 2
			scaleY *= 2
		}
		if t.SignX != signX && by != "y" {
			t.OriginX = geom.InvertOrigin(t.OriginX)
			scaleX = -scaleX
			t.SignX = signX
		}
		if t.SignY != signY && by != "x" {
			t.OriginY = geom.InvertOrigin(t.OriginY)
			scaleY = -scaleY
			t.SignY = signY
		}
	}
	oldX, oldY, oldFlipX, oldFlipY := target.scaleX, target.scaleY, target.flipX, target.flipY
	switch by {
	case "":
		if !target.LockScalingX {
			target.SetScaleX(scaleX)
		}
		if !target.LockScalingY {
			target.SetScaleY(scaleY)
		}
	case "x":
		target.SetScaleX(scaleX)
	case "y":
		target.SetScaleY(scaleY)
	}
	return oldX != target.scaleX || oldY != target.scaleY || oldFlipX != target.flipX || oldFlipY != target.flipY
}

// ScaleObjectFromCorner scales both axes.
func ScaleObjectFromCorner(e PointerEvent, t *Transform, x, y float64) bool {
	return scaleObject(e, t, x, y, "")
}

func scaleObjectX(e PointerEvent, t *Transform, x, y float64) bool {
	return scaleObject(e, t, x, y, "x")
}

func scaleObjectY(e PointerEvent, t *Transform, x, y float64) bool {
	return scaleObject(e, t, x, y, "y")
}

// Stock scale handlers, anchored at the opposite side.
var (
	ScalingEqually = WrapWithFireEvent("scaling", WrapWithFixedAnchor(ScaleObjectFromCorner))
	ScalingX       = WrapWithFireEvent("scaling", WrapWithFixedAnchor(scaleObjectX))
	ScalingY       = WrapWithFireEvent("scaling", WrapWithFixedAnchor(scaleObjectY))
)

// RotationStyleHandler shows the control cursor unless rotation is locked.
func RotationStyleHandler(_ PointerEvent, c *Control, o *Object) string {
	if o.LockRotation {
		return NotAllowedCursor
	}
	return c.CursorStyle
}

func rotateObjectWithSnapping(_ PointerEvent, t *Transform, x, y float64) bool {
	target := t.object()
	if target.LockRotation {
		return false
	}
	pivot := target.TranslateToOriginPoint(target.RelativeCenterPoint(), t.OriginX, t.OriginY)
	lastAngle := math.Atan2(t.Ey-pivot.Y, t.Ex-pivot.X)
	curAngle := math.Atan2(y-pivot.Y, x-pivot.X)
	angle := geom.RadiansToDegrees(curAngle - lastAngle + t.Theta)
	if snap := target.SnapAngle; snap > 0 {
		threshold := target.SnapThreshold
		if threshold == 0 {
			threshold = snap
		}
		right := math.Ceil(angle/snap) * snap
		left := math.Floor(angle/snap) * snap
		if math.Abs(angle-left) < threshold {
			angle = left
		} else if math.Abs(angle-right) < threshold {
			angle = right
		}
	}
	if angle < 0 {
		angle += 360
	}
	angle = math.Mod(angle, 360)
	rotated := target.angle != angle
	target.SetAngle(angle)
	return rotated
}

// RotationWithSnapping rotates around the transform origin, snapping to
// the target's SnapAngle.
var RotationWithSnapping = WrapWithFireEvent("rotating", WrapWithFixedAnchor(rotateObjectWithSnapping))

var skewMap = []string{"ns", "nesw", "ew", "nwse"}

// SkewCursorStyleHandler shows a skew arrow unless skewing is locked.
func SkewCursorStyleHandler(_ PointerEvent, c *Control, o *Object) string {
	if c.X != 0 && o.LockSkewingY {
		return NotAllowedCursor
	}
	if c.Y != 0 && o.LockSkewingX {
		return NotAllowedCursor
	}
	return skewMap[findCornerQuadrant(o, c)%4] + "-resize"
}

type axisKeys struct {
	counter     string
	locked      func(*Object) bool
	skew        func(*Object) float64
	setSkew     func(*Object, float64)
	flip        func(*Object) bool
	origin      func(*Transform) geom.Origin
	setOrigin   func(*Transform, geom.Origin)
	startSkew   func(*Transform) float64
	pointAxis   func(geom.Point) float64
	counterFlip func(*Object) bool
}

var skewAxes = map[string]axisKeys{
	"x": {
		counter:     "y",
		locked:      func(o *Object) bool { return o.LockSkewingX },
		skew:        func(o *Object) float64 { return o.skewX },
		setSkew:     func(o *Object, v float64) { o.SetSkewX(v) },
		flip:        func(o *Object) bool { return o.flipX },
		origin:      func(t *Transform) geom.Origin { return t.OriginY },
		setOrigin:   func(t *Transform, v geom.Origin) { t.OriginX = v },
		startSkew:   func(t *Transform) float64 { return t.SkewX },
		pointAxis:   func(p geom.Point) float64 { return p.X },
		counterFlip: func(o *Object) bool { return o.flipY },
	},
	"y": {
		counter:     "x",
		locked:      func(o *Object) bool { return o.LockSkewingY },
		skew:        func(o *Object) float64 { return o.skewY },
		setSkew:     func(o *Object, v float64) { o.SetSkewY(v) },
		flip:        func(o *Object) bool { return o.flipY },
		origin:      func(t *Transform) geom.Origin { return t.OriginX },
		setOrigin:   func(t *Transform, v geom.Origin) { t.OriginY = v },
		startSkew:   func(t *Transform) float64 { return t.SkewY },
		pointAxis:   func(p geom.Point) float64 { return p.Y },
		counterFlip: func(o *Object) bool { return o.flipX },
	},
}

func skewObject(axis string, t *Transform, pointer geom.Point) bool {
	keys := skewAxes[axis]
	target := t.object()
	offset := keys.pointAxis(pointer.Subtract(geom.Pt(t.Ex, t.Ey)).Divide(geom.Pt(target.scaleX, target.scaleY)))
	before := keys.skew(target)
	shearingStart := math.Tan(geom.DegreesToRadians(keys.startSkew(t)))

	one, zero := 1.0, 0.0
	// the counter side length; skewY applies before skewX
	var b float64
	if axis == "y" {
		b = target.TransformedDimensions(Dimensions{ScaleX: &one, ScaleY: &one, SkewX: &zero}).X
	} else {
		b = target.TransformedDimensions(Dimensions{ScaleX: &one, ScaleY: &one}).Y
	}
	shearing := 2*offset*t.skewingSide/math.Max(b, 1) + shearingStart
	keys.setSkew(target, geom.RadiansToDegrees(math.Atan(shearing)))

	changed := before != keys.skew(target)
	if changed && axis == "y" {
		dimBefore := target.TransformedDimensions(Dimensions{SkewY: &before})
		dimAfter := target.transformedDimensions()
		if target.skewX != 0 {
			if f := dimBefore.X / dimAfter.X; f != 1 {
				target.SetScaleX(f * target.scaleX)
			}
		}
	}
	return changed
}

func skewHandler(axis string, e PointerEvent, t *Transform, x, y float64) bool {
	keys := skewAxes[axis]
	target := t.object()
	if keys.locked(target) {
		return false
	}
	counterFactor := geom.ResolveOrigin(keys.origin(t))
	if keys.counterFlip(target) {
		counterFactor = -counterFactor
	}
	direction := -float64(sign(counterFactor))
	if keys.flip(target) {
		direction = -direction
	}
	skew := keys.skew(target)
	positive := (skew == 0 && keys.pointAxis(LocalPoint(t, geom.OriginCenter, geom.OriginCenter, x, y)) > 0) || skew > 0
	side := -1.0
	if positive {
		side = 1
	}
	side *= direction

	// anchor at the side opposite to the skewing direction
	session := *t
	keys.setOrigin(&session, geom.NumericOrigin(-side*0.5+0.5))
	session.skewingSide = side
	h := WrapWithFireEvent("skewing", WrapWithFixedAnchor(func(_ PointerEvent, st *Transform, x, y float64) bool {
		return skewObject(axis, st, geom.Pt(x, y))
	}))
	return h(e, &session, x, y)
}

// SkewHandlerX skews along the horizontal axis.
func SkewHandlerX(e PointerEvent, t *Transform, x, y float64) bool {
	return skewHandler("x", e, t, x, y)
}

// SkewHandlerY skews along the vertical axis.
func SkewHandlerY(e PointerEvent, t *Transform, x, y float64) bool {
	return skewHandler("y", e, t, x, y)
}

func isAltAction(e PointerEvent, o *Object) bool {
	return e.Modifier(interaction(o).AltActionKey)
}

// ScaleOrSkewActionName is "scaleX"/"scaleY" on edge handles, or the skew
// of the other axis while the alt action key is held.
func ScaleOrSkewActionName(e PointerEvent, c *Control, o *Object) string {
	alt := isAltAction(e, o)
	switch {
	case c.X == 0 && alt:
		return ActionSkewX
	case c.X == 0:
		return ActionScaleY
	case c.Y == 0 && alt:
		return ActionSkewY
	case c.Y == 0:
		return ActionScaleX
	}
	return ""
}

// ScaleSkewCursorStyleHandler follows ScaleOrSkewActionName.
func ScaleSkewCursorStyleHandler(e PointerEvent, c *Control, o *Object) string {
	if isAltAction(e, o) {
		return SkewCursorStyleHandler(e, c, o)
	}
	return ScaleCursorStyleHandler(e, c, o)
}

// ScalingXOrSkewingY scales horizontally, or skews vertically with the alt
// action key.
func ScalingXOrSkewingY(e PointerEvent, t *Transform, x, y float64) bool {
	if isAltAction(e, t.object()) {
		return SkewHandlerY(e, t, x, y)
	}
	return ScalingX(e, t, x, y)
}

// ScalingYOrSkewingX scales vertically, or skews horizontally with the alt
// action key.
func ScalingYOrSkewingX(e PointerEvent, t *Transform, x, y float64) bool {
	if isAltAction(e, t.object()) {
		return SkewHandlerX(e, t, x, y)
	}
	return ScalingY(e, t, x, y)
}

func changeObjectWidth(_ PointerEvent, t *Transform, x, y float64) bool {
	p := LocalPoint(t, t.OriginX, t.OriginY, x, y)
	ox := geom.ResolveOrigin(t.OriginX)
	if !(ox == 0 || (ox == 0.5 && p.X < 0) || (ox == -0.5 && p.X > 0)) {
		return false
	}
	target := t.object()
	strokePadding := target.strokeWidth
	if target.strokeUniform {
		strokePadding /= target.scaleX
	}
	multiplier := 1.0
	if IsTransformCentered(t) {
		multiplier = 2
	}
	old := target.width
	w := math.Abs(p.X*multiplier/target.scaleX) - strokePadding
	w = math.Max(w, 1)
	if r, ok := target.self.(interface{ resizeWidth(float64) }); ok {
		r.resizeWidth(w)
	} else {
		target.SetWidth(w)
	}
	return old != target.width
}

// ChangeWidth resizes the box width instead of scaling.
var ChangeWidth = WrapWithFireEvent("resizing", WrapWithFixedAnchor(changeObjectWidth))

// OriginFromControl anchors a control drag at the side opposite the named
// corner. Other controls, rotation included, keep the object's origin.
func OriginFromControl(o *Object, key string) (geom.Origin, geom.Origin) {
	ox, oy := o.originX, o.originY
	switch key {
	case "ml", "tl", "bl":
		ox = geom.OriginRight
	case "mr", "tr", "br":
		ox = geom.OriginLeft
	}
	switch key {
	case "tl", "mt", "tr":
		oy = geom.OriginBottom
	case "bl", "mb", "br":
		oy = geom.OriginTop
	}
	return ox, oy
}

// String describes the transform for logs.
func (t *Transform) String() string {
	return fmt.Sprintf("%s on %s (corner %q)", t.Action, t.Target.Type(), t.Corner)
}
