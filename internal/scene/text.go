package scene

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/surface"
)

const (
	fontSizeMult     = 1.13
	fontSizeFraction = 0.222
)

// decoration offsets, in font sizes from the line's baseline band
var decorationOffsets = map[string]float64{
	"underline":   0.10,
	"linethrough": -0.315,
	"overline":    -0.88,
}

// Text is single-style text. Lines break on newlines only; the box is as
// wide as the longest line.
type Text struct {
	Object

	text       string
	fontSize   float64
	fontFamily string
	fontWeight string
	fontStyle  string
	lineHeight float64

	TextAlign   string
	Underline   bool
	Linethrough bool
	Overline    bool

	measurer   surface.TextMeasurer
	lines      []string
	lineWidths []float64
}

// NewText creates text at (left, top) measured with the default font book.
func NewText(text string, left, top float64) *Text {
	t := &Text{}
	t.initText(t, text)
	t.left, t.top = left, top
	t.initDimensions()
	return t
}

func (t *Text) initText(self Drawable, text string) {
	t.init(self)
	t.Stroke = ""
	t.text = text
	t.fontSize = 40
	t.fontFamily = "Times New Roman"
	t.fontWeight = "normal"
	t.fontStyle = "normal"
	t.lineHeight = 1.16
	t.TextAlign = "left"
	t.measurer = surface.DefaultMeasurer()
}

func (t *Text) Type() string { return "text" }

func (t *Text) Text() string          { return t.text }
func (t *Text) FontSize() float64     { return t.fontSize }
func (t *Text) FontFamily() string    { return t.fontFamily }
func (t *Text) FontWeight() string    { return t.fontWeight }
func (t *Text) FontStyle() string     { return t.fontStyle }
func (t *Text) LineHeight() float64   { return t.lineHeight }
func (t *Text) Lines() []string       { return t.lines }
func (t *Text) LineWidths() []float64 { return t.lineWidths }

// SetMeasurer swaps the text measurer and relays out the text.
func (t *Text) SetMeasurer(m surface.TextMeasurer) {
	if m == nil {
		m = surface.DefaultMeasurer()
	}
	t.measurer = m
	t.relayout()
}

func (t *Text) SetText(v string) {
	t.text = v
	t.relayout()
}

func (t *Text) SetFontSize(v float64) {
	t.fontSize = v
	t.relayout()
}

func (t *Text) SetFontFamily(v string) {
	t.fontFamily = v
	t.relayout()
}

func (t *Text) SetFontWeight(v string) {
	t.fontWeight = v
	t.relayout()
}

func (t *Text) SetFontStyle(v string) {
	t.fontStyle = v
	t.relayout()
}

func (t *Text) SetLineHeight(v float64) {
	t.lineHeight = v
	t.relayout()
}

func (t *Text) relayout() {
	t.initDimensions()
	t.touch()
	t.MarkDirty()
}

func (t *Text) font() surface.Font {
	return surface.Font{Family: t.fontFamily, Size: t.fontSize, Weight: t.fontWeight, Style: t.fontStyle}
}

func (t *Text) measure(s string) float64 {
	return t.measurer.MeasureText(t.font(), s).Width
}

// initDimensions splits and measures the lines, then sizes the box.
func (t *Text) initDimensions() {
	lines := strings.Split(t.text, "\n")
	if w, ok := t.self.(interface{ wrapLines([]string) []string }); ok {
		lines = w.wrapLines(lines)
	}
	t.lines = lines
	t.lineWidths = make([]float64, len(lines))
	maxWidth := 0.0
	for i, l := range lines {
		t.lineWidths[i] = t.measure(l)
		maxWidth = max(maxWidth, t.lineWidths[i])
	}
	if _, fixed := t.self.(interface{ wrapLines([]string) []string }); !fixed {
		t.width = maxWidth
	}
	t.height = t.calcTextHeight()
}

// HeightOfLine is the advance of one line, line height included.
func (t *Text) HeightOfLine() float64 {
	return t.fontSize * t.lineHeight * fontSizeMult
}

func (t *Text) calcTextHeight() float64 {
	if len(t.lines) == 0 {
		return 0
	}
	h := t.HeightOfLine()
	return h*float64(len(t.lines)-1) + h/t.lineHeight
}

func (t *Text) lineLeftOffset(i int) float64 {
	extra := t.width - t.lineWidths[i]
	switch t.TextAlign {
	case "center":
		return extra / 2
	case "right":
		return extra
	}
	return 0
}

func (t *Text) isStrokeAccountedForInDimensions() bool { return false }

func (t *Text) DrawShape(ctx surface.Context) {
	ctx.SetFont(t.font())
	if t.Fill != "" {
		ctx.SetFillStyle(t.Fill)
		t.renderLines(ctx)
	}
	t.renderDecorations(ctx)
}

func (t *Text) renderLines(ctx surface.Context) {
	left, top := -t.width/2, -t.height/2
	advance := t.HeightOfLine()
	maxHeight := advance / t.lineHeight
	for i, line := range t.lines {
		y := top + float64(i)*advance + maxHeight - maxHeight*fontSizeFraction
		x := left + t.lineLeftOffset(i)
		if t.TextAlign == "justify" && i < len(t.lines)-1 {
			t.renderJustified(ctx, line, x, y)
			continue
		}
		ctx.FillText(line, x, y)
	}
}

func (t *Text) renderJustified(ctx surface.Context, line string, x, y float64) {
	words := strings.FieldsFunc(line, unicode.IsSpace)
	if len(words) < 2 {
		ctx.FillText(line, x, y)
		return
	}
	used := 0.0
	for _, w := range words {
		used += t.measure(w)
	}
	gap := (t.width - used) / float64(len(words)-1)
	for _, w := range words {
		ctx.FillText(w, x, y)
		x += t.measure(w) + gap
	}
}

func (t *Text) renderDecorations(ctx surface.Context) {
	color := t.Fill
	if color == "" {
		return
	}
	left, top := -t.width/2, -t.height/2
	advance := t.HeightOfLine()
	maxHeight := advance / t.lineHeight
	thickness := t.fontSize / 15
	for _, kind := range []string{"underline", "linethrough", "overline"} {
		if !t.decoration(kind) {
			continue
		}
		ctx.SetFillStyle(color)
		for i := range t.lines {
			if t.lineWidths[i] == 0 {
				continue
			}
			y := top + float64(i)*advance + maxHeight*(1-fontSizeFraction) + decorationOffsets[kind]*t.fontSize
			w := t.lineWidths[i]
			if t.TextAlign == "justify" && i < len(t.lines)-1 {
				w = t.width
			}
			ctx.FillRect(left+t.lineLeftOffset(i), y, w, thickness)
		}
	}
}

func (t *Text) decoration(kind string) bool {
	switch kind {
	case "underline":
		return t.Underline
	case "linethrough":
		return t.Linethrough
	}
	return t.Overline
}

func (t *Text) svgElement(common string, digits int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<text xml:space="preserve" font-family="%s" font-size="%s" font-style="%s" font-weight="%s" %s>`,
		html.EscapeString(t.fontFamily), num(t.fontSize), t.fontStyle, t.fontWeight, common)
	advance := t.HeightOfLine()
	maxHeight := advance / t.lineHeight
	top := -t.height / 2
	for i, line := range t.lines {
		x := -t.width/2 + t.lineLeftOffset(i)
		y := top + float64(i)*advance + maxHeight - maxHeight*fontSizeFraction
		fmt.Fprintf(&b, `<tspan x="%s" y="%s" >%s</tspan>`,
			num(geom.ToFixed(x, digits)), num(geom.ToFixed(y, digits)), html.EscapeString(line))
	}
	b.WriteString("</text>\n")
	return b.String()
}

// Textbox is text that wraps words to a fixed width. Resizing it from the
// side controls changes the width and rewraps.
type Textbox struct {
	Text

	// MinWidth is the narrowest the box can be resized to.
	MinWidth float64
}

// NewTextbox creates a textbox width units wide.
func NewTextbox(text string, left, top, width float64) *Textbox {
	t := &Textbox{MinWidth: 20}
	t.initText(t, text)
	t.Controls = TextboxControls()
	t.left, t.top = left, top
	t.width = max(width, t.MinWidth)
	t.initDimensions()
	return t
}

func (t *Textbox) Type() string { return "textbox" }

func (t *Textbox) resizeWidth(w float64) {
	t.SetWidth(w)
	t.relayout()
}

// wrapLines greedily fills each line with whole words. A word wider than
// the box widens the box.
func (t *Textbox) wrapLines(lines []string) []string {
	widest := 0.0
	var out []string
	for _, line := range lines {
		words := strings.Split(line, " ")
		cur := ""
		for _, w := range words {
			widest = max(widest, t.measure(w))
			candidate := w
			if cur != "" {
				candidate = cur + " " + w
			}
			if cur != "" && t.measure(candidate) > t.width {
				out = append(out, cur)
				cur = w
				continue
			}
			cur = candidate
		}
		out = append(out, cur)
	}
	if widest > t.width {
		t.width = widest
	}
	t.width = max(t.width, t.MinWidth)
	return out
}
