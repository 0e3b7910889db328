package surface

import (
	"image"
	"image/color"

	"github.com/inamate/inamate/canvas-go/internal/geom"
)

// Command is a single drawing operation for the frontend to execute.
// The frontend receives a list of these and replays them on a Canvas2D context.
type Command struct {
	Op    string    `json:"op"`              // Canvas2D method or property name
	Args  []float64 `json:"args,omitempty"`  // Numeric arguments in call order
	Value string    `json:"value,omitempty"` // Style, rule, cap, font or composite value
	Text  string    `json:"text,omitempty"`  // fillText payload
	Image string    `json:"image,omitempty"` // Named image for drawImage

	// Nested recording drawn as an image (object caches).
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	Commands []Command `json:"commands,omitempty"`
}

// Recording is the image a Recorder exposes. Drawing it onto another
// Recorder nests its commands; it has no pixels of its own.
type Recording struct {
	Width, Height int
	Commands      []Command
}

func (r *Recording) ColorModel() color.Model { return color.RGBAModel }
func (r *Recording) Bounds() image.Rectangle { return image.Rect(0, 0, r.Width, r.Height) }
func (r *Recording) At(x, y int) color.Color { return color.RGBA{} }

// Recorder is a Surface whose Context records every call.
type Recorder struct {
	claim
	width, height int
	measurer      TextMeasurer
	cur           state
	stack         []state
	commands      []Command
}

// NewRecorder creates a recording surface. A nil measurer uses the gg faces.
func NewRecorder(width, height int, measurer TextMeasurer) *Recorder {
	if measurer == nil {
		measurer = DefaultMeasurer()
	}
	return &Recorder{width: width, height: height, measurer: measurer, cur: defaultState()}
}

// RecorderFactory returns a Factory producing recorders that share measurer.
func RecorderFactory(measurer TextMeasurer) Factory {
	return func(w, h int) Surface { return NewRecorder(w, h, measurer) }
}

func (r *Recorder) Width() int          { return r.width }
func (r *Recorder) Height() int         { return r.height }
func (r *Recorder) Context() Context    { return r }
func (r *Recorder) Commands() []Command { return r.commands }

func (r *Recorder) Resize(width, height int) {
	r.width, r.height = width, height
	r.Reset()
}

// Reset drops the recorded commands and the state stack.
func (r *Recorder) Reset() {
	r.commands = nil
	r.stack = nil
	r.cur = defaultState()
}

func (r *Recorder) Image() image.Image {
	return &Recording{Width: r.width, Height: r.height, Commands: r.commands}
}

func (r *Recorder) Dispose() {
	r.commands = nil
	r.release()
}

func (r *Recorder) emit(op string, args ...float64) {
	r.commands = append(r.commands, Command{Op: op, Args: args})
}

func (r *Recorder) emitValue(op, value string) {
	r.commands = append(r.commands, Command{Op: op, Value: value})
}

func (r *Recorder) Save() {
	r.stack = append(r.stack, r.cur)
	r.emit("save")
}

func (r *Recorder) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.cur = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.emit("restore")
}

func (r *Recorder) Transform(m geom.Matrix2D) {
	r.cur.matrix = r.cur.matrix.Multiply(m)
	r.emit("transform", m.ToSlice()...)
}

func (r *Recorder) SetTransform(m geom.Matrix2D) {
	r.cur.matrix = m
	r.emit("setTransform", m.ToSlice()...)
}

func (r *Recorder) CurrentTransform() geom.Matrix2D { return r.cur.matrix }

func (r *Recorder) Translate(x, y float64) {
	r.cur.matrix = r.cur.matrix.Multiply(geom.Translate(x, y))
	r.emit("translate", x, y)
}

func (r *Recorder) Scale(x, y float64) {
	r.cur.matrix = r.cur.matrix.Multiply(geom.Scale(x, y))
	r.emit("scale", x, y)
}

func (r *Recorder) Rotate(radians float64) {
	r.cur.matrix = r.cur.matrix.Multiply(geom.Rotate(geom.RadiansToDegrees(radians), geom.Point{}))
	r.emit("rotate", radians)
}

func (r *Recorder) BeginPath()          { r.emit("beginPath") }
func (r *Recorder) MoveTo(x, y float64) { r.emit("moveTo", x, y) }
func (r *Recorder) LineTo(x, y float64) { r.emit("lineTo", x, y) }
func (r *Recorder) ClosePath()          { r.emit("closePath") }

func (r *Recorder) QuadraticCurveTo(cx, cy, x, y float64) {
	r.emit("quadraticCurveTo", cx, cy, x, y)
}

func (r *Recorder) BezierCurveTo(c1x, c1y, c2x, c2y, x, y float64) {
	r.emit("bezierCurveTo", c1x, c1y, c2x, c2y, x, y)
}

func (r *Recorder) Arc(x, y, radius, start, end float64, ccw bool) {
	dir := 0.0
	if ccw {
		dir = 1
	}
	r.emit("arc", x, y, radius, start, end, dir)
}

func (r *Recorder) Rect(x, y, w, h float64) { r.emit("rect", x, y, w, h) }

func (r *Recorder) Fill(rule FillRule) { r.emitValue("fill", string(rule)) }
func (r *Recorder) Stroke()            { r.emit("stroke") }
func (r *Recorder) Clip(rule FillRule) { r.emitValue("clip", string(rule)) }

func (r *Recorder) FillRect(x, y, w, h float64) { r.emit("fillRect", x, y, w, h) }

// ClearRect records a clear. Clearing the whole surface under the identity
// matrix discards everything recorded so far instead.
func (r *Recorder) ClearRect(x, y, w, h float64) {
	if r.cur.matrix.IsIdentity() && x <= 0 && y <= 0 &&
		x+w >= float64(r.width) && y+h >= float64(r.height) {
		r.commands = nil
		for range r.stack {
			r.emit("save")
		}
		return
	}
	r.emit("clearRect", x, y, w, h)
}

func (r *Recorder) SetFillStyle(s string) {
	r.cur.fill = s
	r.emitValue("fillStyle", s)
}

func (r *Recorder) SetStrokeStyle(s string) {
	r.cur.stroke = s
	r.emitValue("strokeStyle", s)
}

func (r *Recorder) SetLineWidth(w float64) {
	r.cur.lineWidth = w
	r.emit("lineWidth", w)
}

func (r *Recorder) SetLineCap(c string) {
	r.cur.lineCap = c
	r.emitValue("lineCap", c)
}

func (r *Recorder) SetLineJoin(j string) {
	r.cur.lineJoin = j
	r.emitValue("lineJoin", j)
}

func (r *Recorder) SetMiterLimit(l float64) {
	r.cur.miterLimit = l
	r.emit("miterLimit", l)
}

func (r *Recorder) SetLineDash(dash []float64) {
	r.cur.dash = append([]float64(nil), dash...)
	r.commands = append(r.commands, Command{Op: "setLineDash", Args: r.cur.dash})
}

func (r *Recorder) SetLineDashOffset(off float64) {
	r.cur.dashOffset = off
	r.emit("lineDashOffset", off)
}

func (r *Recorder) GlobalAlpha() float64 { return r.cur.alpha }

func (r *Recorder) SetGlobalAlpha(a float64) {
	r.cur.alpha = a
	r.emit("globalAlpha", a)
}

func (r *Recorder) SetCompositeOperation(op CompositeOp) {
	r.cur.op = op
	r.emitValue("globalCompositeOperation", string(op))
}

func (r *Recorder) SetShadow(s Shadow) {
	r.cur.shadow = s
	r.commands = append(r.commands, Command{
		Op:    "shadow",
		Value: s.Color,
		Args:  []float64{s.Blur, s.OffsetX, s.OffsetY},
	})
}

func (r *Recorder) DrawImage(img image.Image, dx, dy, dw, dh float64) {
	cmd := Command{Op: "drawImage", Args: []float64{dx, dy, dw, dh}}
	switch src := img.(type) {
	case *Recording:
		cmd.Width, cmd.Height = src.Width, src.Height
		cmd.Commands = src.Commands
	case NamedImage:
		cmd.Image = src.Name
	case *NamedImage:
		cmd.Image = src.Name
	}
	r.commands = append(r.commands, cmd)
}

func (r *Recorder) SetFont(f Font) {
	r.cur.font = f
	r.emitValue("font", f.CSS())
}

func (r *Recorder) FillText(s string, x, y float64) {
	r.commands = append(r.commands, Command{Op: "fillText", Text: s, Args: []float64{x, y}})
}

func (r *Recorder) MeasureText(s string) TextMetrics {
	return r.measurer.MeasureText(r.cur.font, s)
}

func (r *Recorder) Spawn(width, height int) Surface {
	return NewRecorder(width, height, r.measurer)
}
