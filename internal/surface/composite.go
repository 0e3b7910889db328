package surface

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"

	pcolor "github.com/inamate/inamate/canvas-go/internal/color"
)

// compositeRGBA blends src onto dst, both premultiplied and the same size,
// with the Porter-Duff or separable blend named by op.
func compositeRGBA(dst, src *image.RGBA, op CompositeOp) {
	n := min(len(dst.Pix), len(src.Pix))
	for i := 0; i+3 < n; i += 4 {
		sa := float64(src.Pix[i+3]) / 255
		da := float64(dst.Pix[i+3]) / 255
		if op == SourceOver && sa == 0 {
			continue
		}
		var out [4]float64
		for c := 0; c < 4; c++ {
			s := float64(src.Pix[i+c]) / 255
			d := float64(dst.Pix[i+c]) / 255
			switch op {
			case DestinationIn:
				out[c] = d * sa
			case DestinationOut:
				out[c] = d * (1 - sa)
			case DestinationOver:
				out[c] = d + s*(1-da)
			case SourceAtop:
				if c == 3 {
					out[c] = da
				} else {
					out[c] = s*da + d*(1-sa)
				}
			case Copy:
				out[c] = s
			case Multiply, Screen, Overlay:
				if c == 3 {
					out[c] = sa + da - sa*da
				} else {
					out[c] = (1-da)*s + (1-sa)*d + sa*da*blend(op, unpremul(s, sa), unpremul(d, da))
				}
			default:
				out[c] = s + d*(1-sa)
			}
		}
		for c := 0; c < 4; c++ {
			dst.Pix[i+c] = uint8(math.Round(math.Max(0, math.Min(1, out[c])) * 255))
		}
	}
}

func unpremul(v, a float64) float64 {
	if a == 0 {
		return 0
	}
	return v / a
}

func blend(op CompositeOp, s, d float64) float64 {
	switch op {
	case Multiply:
		return s * d
	case Screen:
		return s + d - s*d
	}
	// overlay is hard-light with the layers swapped
	if d <= 0.5 {
		return 2 * s * d
	}
	return 1 - 2*(1-s)*(1-d)
}

// shadowLayer builds the shadow cast by layer: its coverage tinted with the
// shadow color, blurred, then offset.
func shadowLayer(layer *image.RGBA, s Shadow) *image.RGBA {
	col := pcolor.Parse(s.Color)
	if col.A == 0 {
		return nil
	}
	b := layer.Bounds()
	tint := image.NewRGBA(b)
	for i := 0; i+3 < len(layer.Pix); i += 4 {
		a := float64(layer.Pix[i+3]) / 255 * col.A
		if a == 0 {
			continue
		}
		tint.Pix[i+0] = uint8(float64(col.R) * a)
		tint.Pix[i+1] = uint8(float64(col.G) * a)
		tint.Pix[i+2] = uint8(float64(col.B) * a)
		tint.Pix[i+3] = uint8(a * 255)
	}
	if s.Blur > 0 {
		tint = blur.Gaussian(tint, s.Blur/2)
	}
	dx, dy := int(math.Round(s.OffsetX)), int(math.Round(s.OffsetY))
	if dx == 0 && dy == 0 {
		return tint
	}
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		sy := y - dy
		if sy < b.Min.Y || sy >= b.Max.Y {
			continue
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			sx := x - dx
			if sx < b.Min.X || sx >= b.Max.X {
				continue
			}
			copy(out.Pix[out.PixOffset(x, y):out.PixOffset(x, y)+4], tint.Pix[tint.PixOffset(sx, sy):tint.PixOffset(sx, sy)+4])
		}
	}
	return out
}
