package scene

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/inamate/inamate/canvas-go/internal/filter"
	"github.com/inamate/inamate/canvas-go/internal/surface"
)

// ImageLoader resolves an image source (asset name, path or URL) to pixels.
type ImageLoader interface {
	LoadImage(ctx context.Context, src string) (image.Image, error)
}

// Image draws a bitmap, optionally cropped and filtered.
type Image struct {
	Object

	src      string
	element  image.Image
	filtered image.Image

	CropX, CropY float64
	Filters      []filter.Filter

	backend filter.Backend
}

// NewImage wraps img; the box takes the image size.
func NewImage(img image.Image, src string) *Image {
	m := &Image{}
	m.init(m)
	m.strokeWidth = 0
	m.Stroke = ""
	m.src = src
	m.backend = filter.Default()
	m.SetElement(img)
	return m
}

// LoadImage fetches src through loader and wraps it.
func LoadImage(ctx context.Context, loader ImageLoader, src string) (*Image, error) {
	if loader == nil {
		return nil, fmt.Errorf("load image %q: no loader", src)
	}
	img, err := loader.LoadImage(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load image %q: %w", src, err)
	}
	return NewImage(img, src), nil
}

func (m *Image) Type() string { return "image" }

// Src is the source the image was loaded from.
func (m *Image) Src() string { return m.src }

// Element is the unfiltered bitmap.
func (m *Image) Element() image.Image { return m.element }

// SetElement replaces the bitmap and resizes the box to it.
func (m *Image) SetElement(img image.Image) {
	m.element = img
	m.filtered = nil
	if img != nil {
		b := img.Bounds()
		m.SetWidth(float64(b.Dx()))
		m.SetHeight(float64(b.Dy()))
	}
	m.MarkDirty()
}

// SetBackend picks the filter backend ApplyFilters runs on.
func (m *Image) SetBackend(b filter.Backend) { m.backend = b }

// ApplyFilters runs Filters over the element. An empty chain restores the
// original pixels.
func (m *Image) ApplyFilters(ctx context.Context) error {
	if m.element == nil {
		return nil
	}
	if len(m.Filters) == 0 {
		m.filtered = nil
		m.MarkDirty()
		return nil
	}
	out, err := m.backend.Apply(ctx, m.Filters, m.element)
	if err != nil {
		return fmt.Errorf("apply image filters: %w", err)
	}
	m.filtered = out
	m.MarkDirty()
	return nil
}

func (m *Image) source() image.Image {
	if m.filtered != nil {
		return m.filtered
	}
	return m.element
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// cropped returns the visible part of the source. Filtered sources that
// were downsized are cropped proportionally.
func (m *Image) cropped() image.Image {
	src := m.source()
	if src == nil || m.element == nil {
		return nil
	}
	sb, eb := src.Bounds(), m.element.Bounds()
	if m.CropX == 0 && m.CropY == 0 && float64(eb.Dx()) == m.width && float64(eb.Dy()) == m.height {
		return src
	}
	sub, ok := src.(subImager)
	if !ok {
		return src
	}
	rx := float64(sb.Dx()) / float64(max(eb.Dx(), 1))
	ry := float64(sb.Dy()) / float64(max(eb.Dy(), 1))
	r := image.Rect(
		sb.Min.X+int(m.CropX*rx), sb.Min.Y+int(m.CropY*ry),
		sb.Min.X+int((m.CropX+m.width)*rx), sb.Min.Y+int((m.CropY+m.height)*ry),
	).Intersect(sb)
	return sub.SubImage(r)
}

func (m *Image) DrawShape(ctx surface.Context) {
	if img := m.cropped(); img != nil {
		ctx.DrawImage(img, -m.width/2, -m.height/2, m.width, m.height)
	}
	if m.hasStroke() {
		ctx.BeginPath()
		ctx.Rect(-m.width/2, -m.height/2, m.width, m.height)
		m.RenderStroke(ctx)
	}
}

func (m *Image) dispose() {
	m.element = nil
	m.filtered = nil
}

// dataURL encodes the visible pixels as a PNG data URL.
func (m *Image) dataURL() (string, error) {
	img := m.cropped()
	if img == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (m *Image) svgElement(common string, digits int) string {
	href := m.src
	if href == "" || len(m.Filters) > 0 || m.CropX != 0 || m.CropY != 0 {
		u, err := m.dataURL()
		if err != nil {
			m.logger().Warn("encode image for svg", "id", m.ID, "error", err)
		}
		href = u
	}
	return fmt.Sprintf(`<image %sxlink:href="%s" x="%s" y="%s" width="%s" height="%s"></image>`+"\n",
		common, href, num(-m.width/2), num(-m.height/2), num(m.width), num(m.height))
}
