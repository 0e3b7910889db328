package surface

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	pcolor "github.com/inamate/inamate/canvas-go/internal/color"
	"github.com/inamate/inamate/canvas-go/internal/geom"
)

// Raster is a pixel Surface painted through a gg context. Fills and strokes
// go through gg; images, shadows and composite operations other than
// source-over are composited on the pixel buffer directly. Clip regions
// apply to vector operations only.
type Raster struct {
	claim
	dc      *gg.Context
	width   int
	height  int
	book    *FontBook
	cur     state
	stack   []state
	current bool
	err     error
}

// NewRaster creates a transparent pixel surface.
func NewRaster(width, height int) *Raster {
	r := &Raster{book: DefaultMeasurer(), cur: defaultState()}
	r.alloc(width, height)
	return r
}

// RasterFactory returns a Factory producing pixel surfaces.
func RasterFactory() Factory {
	return func(w, h int) Surface { return NewRaster(w, h) }
}

func (r *Raster) alloc(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if r.dc != nil {
		_ = r.dc.Close()
	}
	r.dc = gg.NewContext(width, height)
	r.width, r.height = width, height
	r.cur = defaultState()
	r.stack = nil
	r.current = false
}

func (r *Raster) Width() int       { return r.width }
func (r *Raster) Height() int      { return r.height }
func (r *Raster) Context() Context { return r }

// Err returns the first rasterizer failure since the last Resize.
func (r *Raster) Err() error { return r.err }

func (r *Raster) Resize(width, height int) {
	r.alloc(width, height)
	r.err = nil
}

// Image returns a snapshot of the pixels.
func (r *Raster) Image() image.Image {
	_ = r.dc.FlushGPU()
	return r.dc.ResizeTarget().ToImage()
}

// RGBA exposes the live pixel buffer without copying.
func (r *Raster) RGBA() *image.RGBA {
	_ = r.dc.FlushGPU()
	pm := r.dc.ResizeTarget()
	return &image.RGBA{
		Pix:    pm.Data(),
		Stride: pm.Width() * 4,
		Rect:   image.Rect(0, 0, pm.Width(), pm.Height()),
	}
}

func (r *Raster) Dispose() {
	if r.dc != nil {
		_ = r.dc.Close()
	}
	r.release()
}

func (r *Raster) record(err error) {
	if err != nil && r.err == nil {
		r.err = err
	}
}

func toGG(m geom.Matrix2D) gg.Matrix {
	return gg.Matrix{A: m[0], B: m[2], C: m[4], D: m[1], E: m[3], F: m[5]}
}

func (r *Raster) sync() { r.dc.SetTransform(toGG(r.cur.matrix)) }

func (r *Raster) Save() {
	r.stack = append(r.stack, r.cur)
	r.dc.Push()
}

func (r *Raster) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.cur = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.dc.Pop()
	r.sync()
}

func (r *Raster) Transform(m geom.Matrix2D) {
	r.cur.matrix = r.cur.matrix.Multiply(m)
	r.sync()
}

func (r *Raster) SetTransform(m geom.Matrix2D) {
	r.cur.matrix = m
	r.sync()
}

func (r *Raster) CurrentTransform() geom.Matrix2D { return r.cur.matrix }

func (r *Raster) Translate(x, y float64) { r.Transform(geom.Translate(x, y)) }
func (r *Raster) Scale(x, y float64)     { r.Transform(geom.Scale(x, y)) }

func (r *Raster) Rotate(radians float64) {
	r.Transform(geom.Rotate(geom.RadiansToDegrees(radians), geom.Point{}))
}

func (r *Raster) BeginPath() {
	r.dc.ClearPath()
	r.current = false
}

func (r *Raster) MoveTo(x, y float64) {
	r.dc.MoveTo(x, y)
	r.current = true
}

func (r *Raster) LineTo(x, y float64) {
	if !r.current {
		r.MoveTo(x, y)
		return
	}
	r.dc.LineTo(x, y)
}

func (r *Raster) QuadraticCurveTo(cx, cy, x, y float64) {
	if !r.current {
		r.MoveTo(cx, cy)
	}
	r.dc.QuadraticTo(cx, cy, x, y)
}

func (r *Raster) BezierCurveTo(c1x, c1y, c2x, c2y, x, y float64) {
	if !r.current {
		r.MoveTo(c1x, c1y)
	}
	r.dc.CubicTo(c1x, c1y, c2x, c2y, x, y)
}

// Arc appends a circular arc as cubic segments of at most a quarter turn,
// joined to the current point by a straight line like Canvas2D.
func (r *Raster) Arc(x, y, radius, start, end float64, ccw bool) {
	sweep := arcSweep(start, end, ccw)
	sx, sy := x+radius*math.Cos(start), y+radius*math.Sin(start)
	r.LineTo(sx, sy)
	if sweep == 0 || radius <= 0 {
		return
	}
	segments := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	step := sweep / float64(segments)
	k := 4.0 / 3.0 * math.Tan(step/4)
	a := start
	for i := 0; i < segments; i++ {
		b := a + step
		cosA, sinA := math.Cos(a), math.Sin(a)
		cosB, sinB := math.Cos(b), math.Sin(b)
		r.dc.CubicTo(
			x+radius*(cosA-k*sinA), y+radius*(sinA+k*cosA),
			x+radius*(cosB+k*sinB), y+radius*(sinB-k*cosB),
			x+radius*cosB, y+radius*sinB,
		)
		a = b
	}
}

func arcSweep(start, end float64, ccw bool) float64 {
	const tau = 2 * math.Pi
	if !ccw {
		if end-start >= tau {
			return tau
		}
		s := math.Mod(end-start, tau)
		if s < 0 {
			s += tau
		}
		return s
	}
	if start-end >= tau {
		return -tau
	}
	s := math.Mod(start-end, tau)
	if s < 0 {
		s += tau
	}
	return -s
}

func (r *Raster) Rect(x, y, w, h float64) {
	r.MoveTo(x, y)
	r.dc.LineTo(x+w, y)
	r.dc.LineTo(x+w, y+h)
	r.dc.LineTo(x, y+h)
	r.dc.ClosePath()
}

func (r *Raster) ClosePath() { r.dc.ClosePath() }

func ggRule(rule FillRule) gg.FillRule {
	if rule == EvenOdd {
		return gg.FillRuleEvenOdd
	}
	return gg.FillRuleNonZero
}

func (r *Raster) paintColor(style string) (color.NRGBA, bool) {
	if style == "" || pcolor.IsTransparent(style) {
		return color.NRGBA{}, false
	}
	c := pcolor.Parse(style)
	c.A *= r.cur.alpha
	return c.Std(), c.A > 0
}

func (r *Raster) Fill(rule FillRule) {
	col, ok := r.paintColor(r.cur.fill)
	if !ok {
		return
	}
	r.draw(func() error {
		r.dc.SetColor(col)
		r.dc.SetFillRule(ggRule(rule))
		return r.dc.FillPreserve()
	})
}

func (r *Raster) Stroke() {
	col, ok := r.paintColor(r.cur.stroke)
	if !ok || r.cur.lineWidth <= 0 {
		return
	}
	r.draw(func() error {
		r.dc.SetColor(col)
		r.applyStroke()
		return r.dc.StrokePreserve()
	})
}

// lineScale is the factor the current matrix applies to lengths.
func (r *Raster) lineScale() float64 {
	return math.Sqrt(math.Abs(r.cur.matrix.Determinant()))
}

func (r *Raster) applyStroke() {
	k := r.lineScale()
	r.dc.SetLineWidth(r.cur.lineWidth * k)
	switch r.cur.lineCap {
	case "round":
		r.dc.SetLineCap(gg.LineCapRound)
	case "square":
		r.dc.SetLineCap(gg.LineCapSquare)
	default:
		r.dc.SetLineCap(gg.LineCapButt)
	}
	switch r.cur.lineJoin {
	case "round":
		r.dc.SetLineJoin(gg.LineJoinRound)
	case "bevel":
		r.dc.SetLineJoin(gg.LineJoinBevel)
	default:
		r.dc.SetLineJoin(gg.LineJoinMiter)
	}
	r.dc.SetMiterLimit(r.cur.miterLimit)
	dash := make([]float64, len(r.cur.dash))
	for i, d := range r.cur.dash {
		dash[i] = d * k
	}
	r.dc.SetDash(dash...)
	if len(dash) > 0 {
		r.dc.SetDashOffset(r.cur.dashOffset * k)
	}
}

func (r *Raster) Clip(rule FillRule) {
	r.dc.SetFillRule(ggRule(rule))
	r.dc.ClipPreserve()
}

func (r *Raster) FillRect(x, y, w, h float64) {
	r.BeginPath()
	r.Rect(x, y, w, h)
	r.Fill(NonZero)
	r.BeginPath()
}

// ClearRect clears the device-space bounding box of the rectangle.
func (r *Raster) ClearRect(x, y, w, h float64) {
	bounds := r.cur.matrix.TransformRect(geom.Rect{Left: x, Top: y, Width: w, Height: h})
	rect := image.Rect(
		int(math.Floor(bounds.Left)), int(math.Floor(bounds.Top)),
		int(math.Ceil(bounds.Left+bounds.Width)), int(math.Ceil(bounds.Top+bounds.Height)),
	)
	_ = r.dc.FlushGPU()
	pm := r.dc.ResizeTarget()
	pm.FillRect(rect, 0, 0, 0, 0)
	pm.NotifyPixelsChanged()
}

func (r *Raster) SetFillStyle(s string)                { r.cur.fill = s }
func (r *Raster) SetStrokeStyle(s string)              { r.cur.stroke = s }
func (r *Raster) SetLineWidth(w float64)               { r.cur.lineWidth = w }
func (r *Raster) SetLineCap(c string)                  { r.cur.lineCap = c }
func (r *Raster) SetLineJoin(j string)                 { r.cur.lineJoin = j }
func (r *Raster) SetMiterLimit(l float64)              { r.cur.miterLimit = l }
func (r *Raster) SetLineDashOffset(off float64)        { r.cur.dashOffset = off }
func (r *Raster) GlobalAlpha() float64                 { return r.cur.alpha }
func (r *Raster) SetGlobalAlpha(a float64)             { r.cur.alpha = math.Max(0, math.Min(1, a)) }
func (r *Raster) SetCompositeOperation(op CompositeOp) { r.cur.op = op }
func (r *Raster) SetShadow(s Shadow)                   { r.cur.shadow = s }
func (r *Raster) SetFont(f Font)                       { r.cur.font = f }

func (r *Raster) SetLineDash(dash []float64) {
	// Canvas2D repeats odd-length patterns to make them even.
	if len(dash)%2 == 1 {
		dash = append(append([]float64(nil), dash...), dash...)
	}
	r.cur.dash = dash
}

func (r *Raster) MeasureText(s string) TextMetrics {
	return r.book.MeasureText(r.cur.font, s)
}

func (r *Raster) FillText(s string, x, y float64) {
	col, ok := r.paintColor(r.cur.fill)
	face := r.book.Face(r.cur.font)
	if !ok || face == nil {
		return
	}
	r.draw(func() error {
		r.dc.SetColor(col)
		r.dc.SetFont(face)
		r.dc.DrawString(s, x, y)
		return nil
	})
}

// DrawImage blits img through the current matrix. Recordings carry no
// pixels and are skipped.
func (r *Raster) DrawImage(img image.Image, dx, dy, dw, dh float64) {
	if named, ok := img.(NamedImage); ok {
		img = named.Image
	}
	if _, ok := img.(*Recording); ok || img == nil {
		return
	}
	b := img.Bounds()
	if b.Empty() || dw == 0 || dh == 0 {
		return
	}
	m := geom.MultiplyAll(false,
		&r.cur.matrix,
		geom.Ref(geom.Translate(dx, dy)),
		geom.Ref(geom.Scale(dw/float64(b.Dx()), dh/float64(b.Dy()))),
		geom.Ref(geom.Translate(-float64(b.Min.X), -float64(b.Min.Y))),
	)
	aff := f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
	opts := &draw.Options{}
	if r.cur.alpha < 1 {
		opts.SrcMask = image.NewUniform(color.Alpha16{A: uint16(r.cur.alpha * 0xffff)})
	}
	if r.cur.op == SourceOver && r.cur.shadow.IsZero() {
		draw.BiLinear.Transform(r.RGBA(), aff, img, b, draw.Over, opts)
		r.dc.ResizeTarget().NotifyPixelsChanged()
		return
	}
	layer := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.BiLinear.Transform(layer, aff, img, b, draw.Over, opts)
	r.composite(layer)
}

func (r *Raster) Spawn(width, height int) Surface { return NewRaster(width, height) }

// draw runs paint directly, or on a scratch layer when the result must be
// composited by hand.
func (r *Raster) draw(paint func() error) {
	if r.cur.op == SourceOver && r.cur.shadow.IsZero() {
		r.record(paint())
		return
	}
	r.dc.PushLayer(gg.BlendNormal, 1)
	r.record(paint())
	_ = r.dc.FlushGPU()
	pm := r.dc.ResizeTarget()
	layer := pm.ToImage()
	pm.Clear(gg.Transparent)
	r.dc.PopLayer()
	r.composite(layer)
}

func (r *Raster) composite(layer *image.RGBA) {
	dst := r.RGBA()
	if !r.cur.shadow.IsZero() {
		if sh := shadowLayer(layer, r.cur.shadow); sh != nil {
			compositeRGBA(dst, sh, r.cur.op)
		}
	}
	compositeRGBA(dst, layer, r.cur.op)
	r.dc.ResizeTarget().NotifyPixelsChanged()
}
