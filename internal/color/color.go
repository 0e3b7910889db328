// Package color parses CSS color strings into RGBA values and formats them back.
package color

import (
	"fmt"
	stdcolor "image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is straight (non premultiplied) RGBA with alpha in [0, 1].
// Unrecognized marks a string that could not be parsed; such colors are
// opaque black so rendering can continue.
type Color struct {
	R, G, B      uint8
	A            float64
	Unrecognized bool
}

var (
	Black       = Color{A: 1}
	Transparent = Color{}
)

// Parse accepts hex (#rgb, #rgba, #rrggbb, #rrggbbaa), rgb()/rgba(),
// hsl()/hsla(), "transparent" and the CSS named colors.
func Parse(s string) Color {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return Color{A: 1, Unrecognized: true}
	case s == "transparent":
		return Transparent
	case strings.HasPrefix(s, "#"):
		if c, ok := parseHex(s[1:]); ok {
			return c
		}
	case strings.HasPrefix(s, "rgb"):
		if c, ok := parseRGB(s); ok {
			return c
		}
	case strings.HasPrefix(s, "hsl"):
		if c, ok := parseHSL(s); ok {
			return c
		}
	default:
		if named, ok := colornames.Map[s]; ok {
			return FromStd(named)
		}
		if c, ok := parseHex(s); ok {
			return c
		}
	}
	return Color{A: 1, Unrecognized: true}
}

// IsTransparent reports whether s parses to zero alpha.
func IsTransparent(s string) bool {
	c := Parse(s)
	return !c.Unrecognized && c.A == 0
}

// FromStd converts a standard library color.
func FromStd(c stdcolor.Color) Color {
	n := stdcolor.NRGBAModel.Convert(c).(stdcolor.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: float64(n.A) / 255}
}

// Std returns the color as a standard library NRGBA.
func (c Color) Std() stdcolor.NRGBA {
	return stdcolor.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(clamp(c.A, 0, 1) * 255))}
}

// WithAlpha returns a copy with alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A = clamp(c.A*a, 0, 1)
	return c
}

// ToRgba formats as rgba(r,g,b,a).
func (c Color) ToRgba() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// ToRgb formats as rgb(r,g,b), dropping alpha.
func (c Color) ToRgb() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// ToHex formats as RRGGBB without the leading hash.
func (c Color) ToHex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// ToHexa formats as RRGGBBAA.
func (c Color) ToHexa() string {
	return fmt.Sprintf("%s%02X", c.ToHex(), c.Std().A)
}

// ToLive formats for use as an SVG or canvas paint: rgb() when opaque,
// rgba() otherwise.
func (c Color) ToLive() string {
	if c.A == 1 {
		return c.ToRgb()
	}
	return c.ToRgba()
}

// Lerp mixes toward o by t in [0, 1].
func (c Color) Lerp(o Color, t float64) Color {
	t = clamp(t, 0, 1)
	mix := func(a, b uint8) uint8 { return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t)) }
	return Color{R: mix(c.R, o.R), G: mix(c.G, o.G), B: mix(c.B, o.B), A: c.A + (o.A-c.A)*t}
}

func parseHex(h string) (Color, bool) {
	for _, r := range h {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return Color{}, false
		}
	}
	expand := func(s string) string {
		var b strings.Builder
		for _, r := range s {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		return b.String()
	}
	switch len(h) {
	case 3, 4:
		h = expand(h)
	case 6, 8:
	default:
		return Color{}, false
	}
	v, err := strconv.ParseUint(h, 16, 64)
	if err != nil {
		return Color{}, false
	}
	if len(h) == 6 {
		return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, true
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: float64(uint8(v)) / 255}, true
}

// args splits "name(a, b, c / d)" into its arguments.
func args(s string) ([]string, bool) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return nil, false
	}
	inner := strings.NewReplacer(",", " ", "/", " ").Replace(s[open+1 : end])
	return strings.Fields(inner), true
}

func parseRGB(s string) (Color, bool) {
	parts, ok := args(s)
	if !ok || len(parts) < 3 || len(parts) > 4 {
		return Color{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := number(parts[i], 255)
		if !ok {
			return Color{}, false
		}
		ch[i] = uint8(math.Round(clamp(v, 0, 255)))
	}
	a := 1.0
	if len(parts) == 4 {
		v, ok := number(parts[3], 1)
		if !ok {
			return Color{}, false
		}
		a = clamp(v, 0, 1)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: a}, true
}

func parseHSL(s string) (Color, bool) {
	parts, ok := args(s)
	if !ok || len(parts) < 3 || len(parts) > 4 {
		return Color{}, false
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(parts[0], "deg"), 64)
	if err != nil {
		return Color{}, false
	}
	sat, ok1 := number(parts[1], 1)
	light, ok2 := number(parts[2], 1)
	if !ok1 || !ok2 {
		return Color{}, false
	}
	a := 1.0
	if len(parts) == 4 {
		v, ok := number(parts[3], 1)
		if !ok {
			return Color{}, false
		}
		a = clamp(v, 0, 1)
	}
	r, g, b := hslToRGB(math.Mod(math.Mod(h, 360)+360, 360)/360, clamp(sat, 0, 1), clamp(light, 0, 1))
	return Color{R: r, G: g, B: b, A: a}, true
}

// number parses a plain number or a percentage of scale.
func number(s string, scale float64) (float64, bool) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		return v / 100 * scale, err == nil
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	if s == 0 {
		v := uint8(math.Round(l * 255))
		return v, v, v
	}
	q := l * (1 + s)
	if l >= 0.5 {
		q = l + s - l*s
	}
	p := 2*l - q
	conv := func(t float64) uint8 {
		return uint8(math.Round(hueToRGB(p, q, t) * 255))
	}
	return conv(h + 1.0/3), conv(h), conv(h - 1.0/3)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
