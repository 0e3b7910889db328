// Package export renders canvas documents to PNG or SVG files.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"

	"github.com/inamate/inamate/canvas-go/internal/canvas"
	"github.com/inamate/inamate/canvas-go/internal/config"
	"github.com/inamate/inamate/canvas-go/internal/scene"
	"github.com/inamate/inamate/canvas-go/internal/surface"
)

// ErrFormat is returned for an output format other than png or svg.
var ErrFormat = errors.New("unsupported export format")

const maxMultiplier = 8

// Format is an output format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case SVG:
		return "image/svg+xml"
	default:
		return "image/png"
	}
}

// Options tune one export.
type Options struct {
	Format Format
	// Multiplier scales the output in pixels. Zero means 1.
	Multiplier float64
	// Width and Height override the document size.
	Width, Height int
}

// Renderer turns documents into files. The zero value is not usable; build
// one with NewRenderer.
type Renderer struct {
	Engine   *config.Engine
	Registry *scene.Registry
	Logger   *slog.Logger
}

// NewRenderer creates a renderer resolving images through loader.
func NewRenderer(engine *config.Engine, loader scene.ImageLoader, logger *slog.Logger) *Renderer {
	reg := scene.DefaultRegistry()
	reg.Loader = loader
	if engine == nil {
		engine = config.DefaultEngine()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{Engine: engine, Registry: reg, Logger: logger}
}

// Render loads the document in data and writes it to w in opts.Format.
func (r *Renderer) Render(ctx context.Context, data []byte, w io.Writer, opts Options) error {
	if opts.Format == "" {
		opts.Format = PNG
	}
	if opts.Format != PNG && opts.Format != SVG {
		return fmt.Errorf("%w: %q", ErrFormat, opts.Format)
	}
	mult := opts.Multiplier
	if mult <= 0 {
		mult = 1
	}
	mult = min(mult, maxMultiplier)

	copts := canvas.DefaultOptions(1, 1)
	copts.Interactive = false
	copts.RenderOnAddRemove = false
	copts.Config = r.Engine
	copts.Registry = r.Registry
	copts.Logger = r.Logger
	if opts.Format == PNG {
		copts.Surfaces = surface.RasterFactory()
	}
	c := canvas.New(copts)
	defer c.Dispose()

	if err := c.LoadFromJSON(ctx, data); err != nil {
		return err
	}
	width, height := c.Width, c.Height
	if opts.Width > 0 && opts.Height > 0 {
		width, height = opts.Width, opts.Height
	}

	if opts.Format == SVG {
		_, err := io.WriteString(w, c.ToSVG(canvas.SVGOptions{NoViewportTransform: true}))
		return err
	}

	c.SetDimensions(int(float64(width)*mult), int(float64(height)*mult))
	c.SetZoom(mult)
	c.RenderAll()

	raster, ok := c.Lower().(*surface.Raster)
	if !ok {
		return fmt.Errorf("render png: lower surface is %T", c.Lower())
	}
	if err := raster.Err(); err != nil {
		return fmt.Errorf("rasterize: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, raster.Image()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
