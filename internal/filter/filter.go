// Package filter applies image filters to the pixels of image objects.
package filter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"
)

// ErrUnknownFilter is returned for a filter type the backend cannot run.
var ErrUnknownFilter = errors.New("unknown filter")

// Filter types, named as they appear in serialized documents.
const (
	TypeBrightness  = "Brightness"
	TypeContrast    = "Contrast"
	TypeSaturation  = "Saturation"
	TypeHueRotation = "HueRotation"
	TypeGrayscale   = "Grayscale"
	TypeInvert      = "Invert"
	TypeSepia       = "Sepia"
	TypeBlur        = "Blur"
	TypeResize      = "Resize"
)

// Filter is one step of a filter chain. Only the field matching Type is read.
type Filter struct {
	Type       string  `json:"type"`
	Brightness float64 `json:"brightness,omitempty"` // [-1, 1]
	Contrast   float64 `json:"contrast,omitempty"`   // [-1, 1]
	Saturation float64 `json:"saturation,omitempty"` // [-1, 1]
	Rotation   float64 `json:"rotation,omitempty"`   // [-1, 1] of a half turn
	Blur       float64 `json:"blur,omitempty"`       // [0, 1] of the longest side
	ScaleX     float64 `json:"scaleX,omitempty"`
	ScaleY     float64 `json:"scaleY,omitempty"`
}

// Backend runs filter chains over source pixels.
type Backend interface {
	Apply(ctx context.Context, filters []Filter, src image.Image) (*image.RGBA, error)
}

// Bild is the CPU Backend built on bild. Results can be cached by key so an
// unchanged image is filtered once.
type Bild struct {
	maxSize int
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]*image.RGBA
}

var (
	shared     *Bild
	sharedOnce sync.Once
)

// Default returns the process-wide backend, created on first use.
func Default() *Bild {
	sharedOnce.Do(func() { shared = NewBild(4096, nil) })
	return shared
}

// NewBild creates a backend that downsizes sources larger than maxSize on
// their longest side before filtering.
func NewBild(maxSize int, logger *slog.Logger) *Bild {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bild{maxSize: maxSize, logger: logger, cache: make(map[string]*image.RGBA)}
}

// Apply runs filters in order. The context is checked between steps.
func (b *Bild) Apply(ctx context.Context, filters []Filter, src image.Image) (*image.RGBA, error) {
	out := b.limit(src)
	for _, f := range filters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := applyOne(f, out)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// ApplyCached is Apply memoized under key. An empty key disables caching.
func (b *Bild) ApplyCached(ctx context.Context, key string, filters []Filter, src image.Image) (*image.RGBA, error) {
	if key != "" {
		b.mu.Lock()
		hit, ok := b.cache[key]
		b.mu.Unlock()
		if ok {
			return hit, nil
		}
	}
	out, err := b.Apply(ctx, filters, src)
	if err != nil || key == "" {
		return out, err
	}
	b.mu.Lock()
	b.cache[key] = out
	b.mu.Unlock()
	return out, nil
}

// Evict drops the cached result for key.
func (b *Bild) Evict(key string) {
	b.mu.Lock()
	delete(b.cache, key)
	b.mu.Unlock()
}

// Dispose releases every cached result.
func (b *Bild) Dispose() {
	b.mu.Lock()
	b.cache = make(map[string]*image.RGBA)
	b.mu.Unlock()
}

func (b *Bild) limit(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := max(w, h)
	if b.maxSize <= 0 || longest <= b.maxSize {
		return clone.AsRGBA(src)
	}
	ratio := float64(b.maxSize) / float64(longest)
	nw, nh := max(1, int(float64(w)*ratio)), max(1, int(float64(h)*ratio))
	b.logger.Debug("downsizing filter source", "width", w, "height", h, "to_width", nw, "to_height", nh)
	return transform.Resize(src, nw, nh, transform.Linear)
}

func applyOne(f Filter, img *image.RGBA) (*image.RGBA, error) {
	switch f.Type {
	case TypeBrightness:
		return adjust.Brightness(img, f.Brightness), nil
	case TypeContrast:
		return adjust.Contrast(img, f.Contrast), nil
	case TypeSaturation:
		return adjust.Saturation(img, f.Saturation), nil
	case TypeHueRotation:
		return adjust.Hue(img, int(math.Round(f.Rotation*180))), nil
	case TypeGrayscale:
		return effect.Grayscale(img), nil
	case TypeInvert:
		return effect.Invert(img), nil
	case TypeSepia:
		return effect.Sepia(img), nil
	case TypeBlur:
		if f.Blur <= 0 {
			return img, nil
		}
		b := img.Bounds()
		radius := f.Blur * float64(max(b.Dx(), b.Dy())) * 0.05
		return blur.Gaussian(img, radius), nil
	case TypeResize:
		b := img.Bounds()
		sx, sy := f.ScaleX, f.ScaleY
		if sx <= 0 {
			sx = 1
		}
		if sy <= 0 {
			sy = 1
		}
		w := max(1, int(math.Round(float64(b.Dx())*sx)))
		h := max(1, int(math.Round(float64(b.Dy())*sy)))
		return transform.Resize(img, w, h, transform.Linear), nil
	}
	return nil, fmt.Errorf("apply %q: %w", f.Type, ErrUnknownFilter)
}
