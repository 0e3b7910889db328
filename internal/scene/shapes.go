package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/surface"
)

// kappa places cubic control points so four curves approximate a circle:
// 4 * (sqrt(2) - 1) / 3.
const kappa = 0.5522847498

// Rect is a rectangle centered on its origin, optionally with rounded
// corners.
type Rect struct {
	Object

	rx, ry float64
}

// NewRect returns a rect with its top-left corner at (left, top).
func NewRect(left, top, width, height float64) *Rect {
	r := &Rect{}
	r.init(r)
	r.left, r.top = left, top
	r.width, r.height = width, height
	return r
}

func (r *Rect) Type() string { return "rect" }

func (r *Rect) Rx() float64 { return r.rx }
func (r *Rect) Ry() float64 { return r.ry }

func (r *Rect) SetRx(v float64) { r.setFloat(&r.rx, v, true) }
func (r *Rect) SetRy(v float64) { r.setFloat(&r.ry, v, true) }

func (r *Rect) DrawShape(ctx surface.Context) {
	w, h := r.width, r.height
	x, y := -w/2, -h/2
	rx, ry := 0.0, 0.0
	if r.rx != 0 {
		rx = math.Min(r.rx, w/2)
	}
	if r.ry != 0 {
		ry = math.Min(r.ry, h/2)
	}
	rounded := rx != 0 || ry != 0
	k := 1 - kappa

	ctx.BeginPath()
	ctx.MoveTo(x+rx, y)
	ctx.LineTo(x+w-rx, y)
	if rounded {
		ctx.BezierCurveTo(x+w-k*rx, y, x+w, y+k*ry, x+w, y+ry)
	}
	ctx.LineTo(x+w, y+h-ry)
	if rounded {
		ctx.BezierCurveTo(x+w, y+h-k*ry, x+w-k*rx, y+h, x+w-rx, y+h)
	}
	ctx.LineTo(x+rx, y+h)
	if rounded {
		ctx.BezierCurveTo(x+k*rx, y+h, x, y+h-k*ry, x, y+h-ry)
	}
	ctx.LineTo(x, y+ry)
	if rounded {
		ctx.BezierCurveTo(x, y+k*ry, x+k*rx, y, x+rx, y)
	}
	ctx.ClosePath()
	r.RenderPaintInOrder(ctx)
}

func (r *Rect) svgElement(common string, digits int) string {
	w, h := geom.ToFixed(r.width, digits), geom.ToFixed(r.height, digits)
	return fmt.Sprintf(`<rect %sx="%s" y="%s" rx="%s" ry="%s" width="%s" height="%s" />`+"\n",
		common, num(-w/2), num(-h/2), num(geom.ToFixed(r.rx, digits)), num(geom.ToFixed(r.ry, digits)), num(w), num(h))
}

// Circle is a circle or circular arc of Radius around its center.
type Circle struct {
	Object

	radius           float64
	StartAngle       float64
	EndAngle         float64
	CounterClockwise bool
}

// NewCircle returns a full circle whose bounding box starts at (left, top).
func NewCircle(left, top, radius float64) *Circle {
	c := &Circle{EndAngle: 360}
	c.init(c)
	c.left, c.top = left, top
	c.setRadius(radius)
	return c
}

func (c *Circle) Type() string { return "circle" }

func (c *Circle) Radius() float64 { return c.radius }

// SetRadius resizes the circle's box to the diameter.
func (c *Circle) SetRadius(v float64) {
	c.setRadius(v)
	c.MarkDirty()
}

func (c *Circle) setRadius(v float64) {
	c.radius = v
	c.setFloat(&c.width, 2*v, true)
	c.setFloat(&c.height, 2*v, true)
}

// RadiusX is the radius on screen along x.
func (c *Circle) RadiusX() float64 { return c.radius * c.scaleX }

// RadiusY is the radius on screen along y.
func (c *Circle) RadiusY() float64 { return c.radius * c.scaleY }

func (c *Circle) DrawShape(ctx surface.Context) {
	ctx.BeginPath()
	ctx.Arc(0, 0, c.radius, geom.DegreesToRadians(c.StartAngle), geom.DegreesToRadians(c.EndAngle), c.CounterClockwise)
	c.RenderPaintInOrder(ctx)
}

func (c *Circle) svgElement(common string, digits int) string {
	r := geom.ToFixed(c.radius, digits)
	angle := math.Mod(c.EndAngle-c.StartAngle, 360)
	if angle == 0 {
		return fmt.Sprintf(`<circle %scx="0" cy="0" r="%s" />`+"\n", common, num(r))
	}
	start, end := geom.DegreesToRadians(c.StartAngle), geom.DegreesToRadians(c.EndAngle)
	large, sweep := 0, 1
	if angle > 180 {
		large = 1
	}
	if c.CounterClockwise {
		sweep = 0
	}
	return fmt.Sprintf(`<path d="M %s %s A %s %s 0 %d %d %s %s" %s/>`+"\n",
		num(geom.ToFixed(geom.Cos(start)*r, digits)), num(geom.ToFixed(geom.Sin(start)*r, digits)),
		num(r), num(r), large, sweep,
		num(geom.ToFixed(geom.Cos(end)*r, digits)), num(geom.ToFixed(geom.Sin(end)*r, digits)), common)
}

// Ellipse is an axis-aligned ellipse with radii rx and ry.
type Ellipse struct {
	Object

	rx, ry float64
}

// NewEllipse returns an ellipse whose bounding box starts at (left, top).
func NewEllipse(left, top, rx, ry float64) *Ellipse {
	e := &Ellipse{}
	e.init(e)
	e.left, e.top = left, top
	e.SetRx(rx)
	e.SetRy(ry)
	return e
}

func (e *Ellipse) Type() string { return "ellipse" }

func (e *Ellipse) Rx() float64 { return e.rx }
func (e *Ellipse) Ry() float64 { return e.ry }

// SetRx sets the horizontal radius and the box width.
func (e *Ellipse) SetRx(v float64) {
	e.rx = v
	e.SetWidth(2 * v)
	e.MarkDirty()
}

// SetRy sets the vertical radius and the box height.
func (e *Ellipse) SetRy(v float64) {
	e.ry = v
	e.SetHeight(2 * v)
	e.MarkDirty()
}

// DrawShape traces the ellipse with four cubic curves.
func (e *Ellipse) DrawShape(ctx surface.Context) {
	rx, ry := e.rx, e.ry
	kx, ky := rx*kappa, ry*kappa
	ctx.BeginPath()
	ctx.MoveTo(rx, 0)
	ctx.BezierCurveTo(rx, ky, kx, ry, 0, ry)
	ctx.BezierCurveTo(-kx, ry, -rx, ky, -rx, 0)
	ctx.BezierCurveTo(-rx, -ky, -kx, -ry, 0, -ry)
	ctx.BezierCurveTo(kx, -ry, rx, -ky, rx, 0)
	ctx.ClosePath()
	e.RenderPaintInOrder(ctx)
}

func (e *Ellipse) svgElement(common string, digits int) string {
	return fmt.Sprintf(`<ellipse %scx="0" cy="0" rx="%s" ry="%s" />`+"\n",
		common, num(geom.ToFixed(e.rx, digits)), num(geom.ToFixed(e.ry, digits)))
}

// Line is a segment between two points of its parent plane.
type Line struct {
	Object

	x1, y1, x2, y2 float64
}

// NewLine returns the segment (x1, y1)-(x2, y2), positioned so it is drawn
// exactly there.
func NewLine(x1, y1, x2, y2 float64) *Line {
	l := &Line{x1: x1, y1: y1, x2: x2, y2: y2}
	l.init(l)
	l.setWidthHeight()
	return l
}

func (l *Line) Type() string { return "line" }

// Points returns the endpoints as given.
func (l *Line) Points() (x1, y1, x2, y2 float64) { return l.x1, l.y1, l.x2, l.y2 }

// SetPoints moves the endpoints and refits the box.
func (l *Line) SetPoints(x1, y1, x2, y2 float64) {
	l.x1, l.y1, l.x2, l.y2 = x1, y1, x2, y2
	l.setWidthHeight()
	l.MarkDirty()
}

func (l *Line) setWidthHeight() {
	l.SetWidth(math.Abs(l.x2 - l.x1))
	l.SetHeight(math.Abs(l.y2 - l.y1))
	box := geom.MakeBoundingBoxFromPoints([]geom.Point{geom.Pt(l.x1, l.y1), geom.Pt(l.x2, l.y2)})
	l.SetPositionByOrigin(box.Center(), geom.OriginCenter, geom.OriginCenter)
}

// CalcLinePoints returns the endpoints relative to the box center.
func (l *Line) CalcLinePoints() (x1, y1, x2, y2 float64) {
	xMult, yMult := 1.0, 1.0
	if l.x1 <= l.x2 {
		xMult = -1
	}
	if l.y1 <= l.y2 {
		yMult = -1
	}
	x1, y1 = xMult*l.width/2, yMult*l.height/2
	return x1, y1, -x1, -y1
}

func (l *Line) DrawShape(ctx surface.Context) {
	x1, y1, x2, y2 := l.CalcLinePoints()
	ctx.BeginPath()
	ctx.MoveTo(x1, y1)
	ctx.LineTo(x2, y2)
	l.RenderStroke(ctx)
}

func (l *Line) svgElement(common string, digits int) string {
	x1, y1, x2, y2 := l.CalcLinePoints()
	return fmt.Sprintf(`<line %sx1="%s" y1="%s" x2="%s" y2="%s" />`+"\n", common,
		num(geom.ToFixed(x1, digits)), num(geom.ToFixed(y1, digits)),
		num(geom.ToFixed(x2, digits)), num(geom.ToFixed(y2, digits)))
}

// Polyline is an open chain of points. Points live in their own plane;
// PathOffset is their box center, which maps to the object's center.
type Polyline struct {
	Object

	points     []geom.Point
	pathOffset geom.Point
	closed     bool
}

// NewPolyline returns an open polyline positioned where its points are.
func NewPolyline(points []geom.Point) *Polyline {
	p := &Polyline{}
	p.init(p)
	p.setPoints(points, true)
	return p
}

// Polygon is a closed Polyline.
type Polygon struct {
	Polyline
}

// NewPolygon returns a closed polygon positioned where its points are.
func NewPolygon(points []geom.Point) *Polygon {
	p := &Polygon{}
	p.closed = true
	p.init(p)
	p.setPoints(points, true)
	return p
}

func (p *Polyline) Type() string { return "polyline" }
func (p *Polygon) Type() string  { return "polygon" }

// Points returns a copy of the points.
func (p *Polyline) Points() []geom.Point { return append([]geom.Point(nil), p.points...) }

// PathOffset is the center of the points' bounding box.
func (p *Polyline) PathOffset() geom.Point { return p.pathOffset }

// SetPoints replaces the points and refits the box around them; with
// adjustPosition the object moves so the points stay in place.
func (p *Polyline) SetPoints(points []geom.Point, adjustPosition bool) {
	p.setPoints(points, adjustPosition)
	p.MarkDirty()
}

func (p *Polyline) setPoints(points []geom.Point, adjustPosition bool) {
	p.points = append([]geom.Point(nil), points...)
	p.setBoundingBox(adjustPosition)
}

func (p *Polyline) setBoundingBox(adjustPosition bool) {
	if len(p.points) == 0 {
		p.SetWidth(0)
		p.SetHeight(0)
		p.pathOffset = geom.Point{}
		return
	}
	box := geom.MakeBoundingBoxFromPoints(p.points)
	p.SetWidth(box.Width)
	p.SetHeight(box.Height)
	p.pathOffset = box.Center()
	if adjustPosition {
		p.SetPositionByOrigin(p.pathOffset, geom.OriginCenter, geom.OriginCenter)
	}
}

func (p *Polyline) complexity() int { return len(p.points) }

func (p *Polyline) DrawShape(ctx surface.Context) {
	n := len(p.points)
	if n == 0 || math.IsNaN(p.points[n-1].Y) {
		return
	}
	x, y := p.pathOffset.X, p.pathOffset.Y
	ctx.BeginPath()
	ctx.MoveTo(p.points[0].X-x, p.points[0].Y-y)
	for _, pt := range p.points {
		ctx.LineTo(pt.X-x, pt.Y-y)
	}
	if p.closed {
		ctx.ClosePath()
	}
	p.RenderPaintInOrder(ctx)
}

func (p *Polyline) svgElement(common string, digits int) string {
	var b strings.Builder
	for _, pt := range p.points {
		fmt.Fprintf(&b, "%s,%s ", num(geom.ToFixed(pt.X-p.pathOffset.X, digits)), num(geom.ToFixed(pt.Y-p.pathOffset.Y, digits)))
	}
	tag := "polyline"
	if p.closed {
		tag = "polygon"
	}
	return fmt.Sprintf(`<%s %spoints="%s" />`+"\n", tag, common, b.String())
}
