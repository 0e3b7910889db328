package scene

import (
	"math"

	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/intersect"
)

// Corners are the four corners of an object's box.
type Corners struct {
	TL, TR, BR, BL geom.Point
}

// Points lists the corners clockwise from top-left.
func (c Corners) Points() []geom.Point {
	return []geom.Point{c.TL, c.TR, c.BR, c.BL}
}

// Dimensions overrides the inputs of TransformedDimensions. Nil fields use
// the object's current values.
type Dimensions struct {
	ScaleX, ScaleY *float64
	SkewX, SkewY   *float64
	Width, Height  *float64
	StrokeWidth    *float64
}

func pick(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

// TransformedDimensions is the box size after scale and skew, stroke
// included before scaling, or after it when the stroke is uniform.
func (o *Object) TransformedDimensions(d Dimensions) geom.Point {
	scaleX, scaleY := pick(d.ScaleX, o.scaleX), pick(d.ScaleY, o.scaleY)
	skewX, skewY := pick(d.SkewX, o.skewX), pick(d.SkewY, o.skewY)
	width, height := pick(d.Width, o.width), pick(d.Height, o.height)
	strokeWidth := pick(d.StrokeWidth, o.strokeWidth)

	pre, post := strokeWidth, 0.0
	if o.strokeUniform {
		pre, post = 0, strokeWidth
	}
	dimX, dimY := width+pre, height+pre
	var size geom.Point
	if skewX == 0 && skewY == 0 {
		size = geom.Pt(dimX*scaleX, dimY*scaleY)
	} else {
		size = geom.SizeAfterTransform(dimX, dimY, geom.CalcDimensionsMatrix(geom.TransformOptions{
			ScaleX: scaleX, ScaleY: scaleY, SkewX: skewX, SkewY: skewY,
		}))
	}
	return size.ScalarAdd(post)
}

func (o *Object) transformedDimensions() geom.Point {
	return o.TransformedDimensions(Dimensions{})
}

// NonTransformedDimensions is width and height plus the stroke.
func (o *Object) NonTransformedDimensions() geom.Point {
	return geom.Pt(o.width, o.height).ScalarAdd(o.strokeWidth)
}

// TranslateToGivenOrigin moves point from one origin convention to another.
func (o *Object) TranslateToGivenOrigin(point geom.Point, fromX, fromY, toX, toY geom.Origin) geom.Point {
	x, y := point.X, point.Y
	offsetX := geom.ResolveOrigin(toX) - geom.ResolveOrigin(fromX)
	offsetY := geom.ResolveOrigin(toY) - geom.ResolveOrigin(fromY)
	if offsetX != 0 || offsetY != 0 {
		dim := o.transformedDimensions()
		x += offsetX * dim.X
		y += offsetY * dim.Y
	}
	return geom.Pt(x, y)
}

// TranslateToCenterPoint maps a point at the given origin to the center.
func (o *Object) TranslateToCenterPoint(point geom.Point, originX, originY geom.Origin) geom.Point {
	if geom.ResolveOrigin(originX) == 0 && geom.ResolveOrigin(originY) == 0 {
		return point
	}
	p := o.TranslateToGivenOrigin(point, originX, originY, geom.OriginCenter, geom.OriginCenter)
	if o.angle != 0 {
		return p.Rotate(geom.DegreesToRadians(o.angle), point)
	}
	return p
}

// TranslateToOriginPoint maps the center to the given origin.
func (o *Object) TranslateToOriginPoint(center geom.Point, originX, originY geom.Origin) geom.Point {
	p := o.TranslateToGivenOrigin(center, geom.OriginCenter, geom.OriginCenter, originX, originY)
	if o.angle != 0 {
		return p.Rotate(geom.DegreesToRadians(o.angle), center)
	}
	return p
}

// RelativeCenterPoint is the center in the parent's plane.
func (o *Object) RelativeCenterPoint() geom.Point {
	return o.TranslateToCenterPoint(geom.Pt(o.left, o.top), o.originX, o.originY)
}

// CenterPoint is the center in the canvas plane.
func (o *Object) CenterPoint() geom.Point {
	c := o.RelativeCenterPoint()
	if o.group != nil {
		return c.Transform(o.group.CalcTransformMatrix(false), false)
	}
	return c
}

// PositionByOrigin returns the parent-plane point at the given origin.
func (o *Object) PositionByOrigin(originX, originY geom.Origin) geom.Point {
	return o.TranslateToOriginPoint(o.RelativeCenterPoint(), originX, originY)
}

// SetPositionByOrigin places the object so its (originX, originY) point
// lands on pos.
func (o *Object) SetPositionByOrigin(pos geom.Point, originX, originY geom.Origin) {
	center := o.TranslateToCenterPoint(pos, originX, originY)
	p := o.TranslateToOriginPoint(center, o.originX, o.originY)
	o.SetPosition(p.X, p.Y)
}

// XY is the origin point in the canvas plane.
func (o *Object) XY() geom.Point {
	p := geom.Pt(o.left, o.top)
	if o.group != nil {
		return p.Transform(o.group.CalcTransformMatrix(false), false)
	}
	return p
}

// SetXY places the given origin at a canvas-plane point.
func (o *Object) SetXY(p geom.Point, originX, originY geom.Origin) {
	if o.group != nil {
		p = p.Transform(o.group.CalcTransformMatrix(false).Invert(), false)
	}
	o.SetPositionByOrigin(p, originX, originY)
}

// chainStamp is the newest geometry stamp along the ancestor chain.
func (o *Object) chainStamp() uint64 {
	s := o.stamp
	if o.group != nil {
		s = max(s, o.group.chainStamp())
	}
	return s
}

// CalcOwnMatrix composes translate(center), rotate, then scale, skew and
// flip. The result is cached until the next geometry change.
func (o *Object) CalcOwnMatrix() geom.Matrix2D {
	if o.ownStamp == o.stamp {
		return o.ownMatrix
	}
	c := o.RelativeCenterPoint()
	o.ownMatrix = geom.ComposeMatrix(geom.TransformOptions{
		TranslateX: c.X,
		TranslateY: c.Y,
		Angle:      o.angle,
		ScaleX:     o.scaleX,
		ScaleY:     o.scaleY,
		SkewX:      o.skewX,
		SkewY:      o.skewY,
		FlipX:      o.flipX,
		FlipY:      o.flipY,
	})
	o.ownStamp = o.stamp
	return o.ownMatrix
}

// CalcTransformMatrix is the own matrix premultiplied by every ancestor's.
// It is cached until anything along the ancestor chain changes.
func (o *Object) CalcTransformMatrix(skipGroup bool) geom.Matrix2D {
	if skipGroup || o.group == nil {
		return o.CalcOwnMatrix()
	}
	stamp := o.chainStamp()
	if o.fullStamp == stamp {
		return o.fullMatrix
	}
	o.fullMatrix = geom.Multiply(o.group.CalcTransformMatrix(false), o.CalcOwnMatrix(), false)
	o.fullStamp = stamp
	return o.fullMatrix
}

// CalcACoords computes the corners in the parent's plane.
func (o *Object) CalcACoords() Corners {
	c := o.RelativeCenterPoint()
	m := geom.Multiply(geom.Translate(c.X, c.Y), geom.Rotate(o.angle, geom.Point{}), false)
	dim := o.transformedDimensions()
	w, h := dim.X/2, dim.Y/2
	return Corners{
		TL: geom.Pt(-w, -h).Transform(m, false),
		TR: geom.Pt(w, -h).Transform(m, false),
		BL: geom.Pt(-w, h).Transform(m, false),
		BR: geom.Pt(w, h).Transform(m, false),
	}
}

// SetCoords refreshes the cached corners and control positions. Call it
// after geometry changes and before hit testing.
func (o *Object) SetCoords() {
	o.aCoords = o.CalcACoords()
	if o.canvas != nil {
		o.oCoords = o.CalcOCoords()
	}
	if n, ok := o.self.(interface{ setNestedCoords() }); ok {
		n.setNestedCoords()
	}
}

// Coords are the corners in the canvas plane.
func (o *Object) Coords() []geom.Point {
	if o.aCoords == (Corners{}) {
		o.aCoords = o.CalcACoords()
	}
	pts := o.aCoords.Points()
	if o.group != nil {
		t := o.group.CalcTransformMatrix(false)
		for i := range pts {
			pts[i] = pts[i].Transform(t, false)
		}
	}
	return pts
}

// BoundingRect is the axis-aligned box around Coords.
func (o *Object) BoundingRect() geom.Rect {
	return geom.MakeBoundingBoxFromPoints(o.Coords())
}

func (o *Object) IntersectsWithRect(tl, br geom.Point) bool {
	return intersect.PolygonRectangle(o.Coords(), tl, br).Status == intersect.Found
}

func (o *Object) IntersectsWithObject(other *Object) bool {
	r := intersect.PolygonPolygon(o.Coords(), other.Coords())
	return r.Status == intersect.Found || r.Status == intersect.Coincident ||
		other.IsContainedWithinObject(o) || o.IsContainedWithinObject(other)
}

func (o *Object) IsContainedWithinObject(other *Object) bool {
	for _, p := range o.Coords() {
		if !other.ContainsPoint(p) {
			return false
		}
	}
	return true
}

func (o *Object) IsContainedWithinRect(tl, br geom.Point) bool {
	r := o.BoundingRect()
	return r.Left >= tl.X && r.Left+r.Width <= br.X && r.Top >= tl.Y && r.Top+r.Height <= br.Y
}

func (o *Object) IsOverlapping(other *Object) bool {
	return o.IntersectsWithObject(other) || o.IsContainedWithinObject(other) || other.IsContainedWithinObject(o)
}

// ContainsPoint tests a canvas-plane point against the object's corners.
func (o *Object) ContainsPoint(p geom.Point) bool {
	return intersect.IsPointInPolygon(p, o.Coords())
}

// IsOnScreen reports whether any part of the object is in the viewport.
func (o *Object) IsOnScreen() bool {
	if o.canvas == nil {
		return false
	}
	tl, br := o.canvas.ViewportCorners()
	for _, p := range o.Coords() {
		if p.X <= br.X && p.X >= tl.X && p.Y <= br.Y && p.Y >= tl.Y {
			return true
		}
	}
	if o.IntersectsWithRect(tl, br) {
		return true
	}
	return o.ContainsPoint(tl.MidPointFrom(br))
}

// IsPartiallyOnScreen reports whether the object crosses the viewport edge.
func (o *Object) IsPartiallyOnScreen() bool {
	if o.canvas == nil {
		return false
	}
	tl, br := o.canvas.ViewportCorners()
	if o.IntersectsWithRect(tl, br) {
		return true
	}
	for _, p := range o.Coords() {
		if !((p.X >= br.X || p.X <= tl.X) && (p.Y >= br.Y || p.Y <= tl.Y)) {
			return false
		}
	}
	return o.ContainsPoint(tl.MidPointFrom(br))
}

func (o *Object) ScaledWidth() float64  { return o.transformedDimensions().X }
func (o *Object) ScaledHeight() float64 { return o.transformedDimensions().Y }

// Scale sets both scale factors and refreshes the coords.
func (o *Object) Scale(v float64) {
	o.SetScaleX(v)
	o.SetScaleY(v)
	o.SetCoords()
}

// ScaleToWidth scales uniformly so the bounding box is v wide.
func (o *Object) ScaleToWidth(v float64) {
	factor := o.BoundingRect().Width / o.ScaledWidth()
	o.Scale(v / o.width / factor)
}

// ScaleToHeight scales uniformly so the bounding box is v tall.
func (o *Object) ScaleToHeight(v float64) {
	factor := o.BoundingRect().Height / o.ScaledHeight()
	o.Scale(v / o.height / factor)
}

// Rotate sets the angle. With CenteredRotation the center stays put.
func (o *Object) Rotate(angle float64) {
	originX, originY := o.originX, o.originY
	if o.CenteredRotation {
		c := o.RelativeCenterPoint()
		o.originX, o.originY = geom.OriginCenter, geom.OriginCenter
		o.left, o.top = c.X, c.Y
		o.touch()
	}
	o.SetAngle(angle)
	if o.CenteredRotation {
		p := o.TranslateToOriginPoint(o.RelativeCenterPoint(), originX, originY)
		o.left, o.top = p.X, p.Y
		o.originX, o.originY = originX, originY
		o.touch()
	}
}

// TotalAngle is the rotation in the canvas plane.
func (o *Object) TotalAngle() float64 {
	if o.group != nil {
		return geom.QRDecompose(o.CalcTransformMatrix(false)).Angle
	}
	return o.angle
}

// ObjectScaling is the absolute scale including ancestors.
func (o *Object) ObjectScaling() geom.Point {
	if o.group == nil {
		return geom.Pt(math.Abs(o.scaleX), math.Abs(o.scaleY))
	}
	d := geom.QRDecompose(o.CalcTransformMatrix(false))
	return geom.Pt(math.Abs(d.ScaleX), math.Abs(d.ScaleY))
}

// TotalObjectScaling adds viewport zoom and retina scaling.
func (o *Object) TotalObjectScaling() geom.Point {
	s := o.ObjectScaling()
	if o.canvas != nil {
		return s.ScalarMultiply(o.canvas.ViewportTransform()[0] * o.canvas.RetinaScaling())
	}
	return s
}

// ObjectOpacity multiplies the opacity of every ancestor.
func (o *Object) ObjectOpacity() float64 {
	op := o.Opacity
	if o.group != nil {
		op *= o.group.ObjectOpacity()
	}
	return op
}

func (o *Object) viewportTransform() geom.Matrix2D {
	if o.canvas != nil {
		return o.canvas.ViewportTransform()
	}
	return geom.Identity()
}

func (o *Object) retinaScaling() float64 {
	if o.canvas != nil {
		if r := o.canvas.RetinaScaling(); r > 0 {
			return r
		}
	}
	return 1
}

// SendObjectToPlane rewrites obj's geometry so it looks the same after
// moving from plane from to plane to. It returns the applied matrix.
func SendObjectToPlane(obj *Object, from, to *geom.Matrix2D) geom.Matrix2D {
	t := geom.CalcPlaneChangeMatrix(from, to)
	applyTransformToObject(obj, geom.Multiply(t, obj.CalcOwnMatrix(), false))
	return t
}

// ApplyTransform composes m after obj's own transform, the way an SVG
// transform attribute acts on the element it is set on.
func ApplyTransform(obj *Object, m geom.Matrix2D) {
	applyTransformToObject(obj, geom.Multiply(m, obj.CalcOwnMatrix(), false))
}

// applyTransformToObject decomposes m into obj's fields, keeping its center
// at the translation and resetting flips.
func applyTransformToObject(obj *Object, m geom.Matrix2D) {
	d := geom.QRDecompose(m)
	obj.flipX, obj.flipY = false, false
	obj.touch()
	obj.SetScaleX(d.ScaleX)
	obj.SetScaleY(d.ScaleY)
	obj.SetSkewX(d.SkewX)
	obj.SetSkewY(d.SkewY)
	obj.SetAngle(d.Angle)
	obj.SetPositionByOrigin(geom.Pt(d.TranslateX, d.TranslateY), geom.OriginCenter, geom.OriginCenter)
}
