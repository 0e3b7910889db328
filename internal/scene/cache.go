package scene

import (
	"math"

	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/surface"
)

// aliasingLimit pads every cache so antialiased edges are not clipped.
const aliasingLimit = 2

// renderCache is an object's off-screen bitmap.
type renderCache struct {
	surface surface.Surface

	width, height int
	zoomX, zoomY  float64
	translateX    float64
	translateY    float64
	capped        bool
}

func (c *renderCache) release() {
	if c.surface != nil {
		c.surface.Dispose()
		c.surface = nil
	}
	c.width, c.height = 0, 0
	c.zoomX, c.zoomY = 0, 0
}

// CacheDims is a cache size request: pixel size, zoom, and the unpadded
// drawing size.
type CacheDims struct {
	Width, Height int
	ZoomX, ZoomY  float64
	X, Y          float64
	Capped        bool
}

// CacheCanvasDimensions is the pixel size needed to cache the object at its
// current on-screen scale.
func (o *Object) CacheCanvasDimensions() CacheDims {
	scale := o.TotalObjectScaling()
	var zero float64
	dim := o.TransformedDimensions(Dimensions{SkewX: &zero, SkewY: &zero})
	neededX := dim.X * scale.X / o.scaleX
	neededY := dim.Y * scale.Y / o.scaleY
	return CacheDims{
		Width:  int(math.Ceil(neededX + aliasingLimit)),
		Height: int(math.Ceil(neededY + aliasingLimit)),
		ZoomX:  scale.X,
		ZoomY:  scale.Y,
		X:      neededX,
		Y:      neededY,
	}
}

// LimitDimsByArea splits the total pixel budget along aspect ratio ar.
func LimitDimsByArea(total int, ar float64) (int, int) {
	rough := math.Sqrt(float64(total) * ar)
	return int(math.Floor(rough)), int(math.Floor(float64(total) / rough))
}

func capInt(lo, v, hi int) int { return max(lo, min(v, hi)) }

// LimitCacheSize clamps d to the engine's side and area limits, reducing
// the zoom on each axis it had to shrink.
func LimitCacheSize(cfg cacheLimits, d CacheDims) CacheDims {
	w, h := d.Width, d.Height
	maxSide, minSide := cfg.MaxCacheSideLimit, cfg.MinCacheSideLimit
	if w <= maxSide && h <= maxSide && w*h <= cfg.PerfLimitSizeTotal {
		d.Width = max(w, minSide)
		d.Height = max(h, minSide)
		return d
	}
	limX, limY := LimitDimsByArea(cfg.PerfLimitSizeTotal, float64(w)/float64(h))
	x := capInt(minSide, limX, maxSide)
	y := capInt(minSide, limY, maxSide)
	if w > x {
		d.ZoomX /= float64(w) / float64(x)
		d.Width = x
		d.Capped = true
	}
	if h > y {
		d.ZoomY /= float64(h) / float64(y)
		d.Height = y
		d.Capped = true
	}
	return d
}

type cacheLimits struct {
	PerfLimitSizeTotal int
	MaxCacheSideLimit  int
	MinCacheSideLimit  int
}

func (o *Object) cacheLimits() cacheLimits {
	e := o.engine()
	return cacheLimits{e.PerfLimitSizeTotal, e.MaxCacheSideLimit, e.MinCacheSideLimit}
}

// ShouldCache decides whether the object renders through its own bitmap.
func (o *Object) ShouldCache() bool {
	if c, ok := o.self.(interface{ shouldCache() bool }); ok {
		return c.shouldCache()
	}
	return o.shouldCacheBase()
}

func (o *Object) shouldCacheBase() bool {
	parent := o.parent
	return (o.ObjectCaching && (parent == nil || !parent.IsOnACache())) || o.NeedsItsOwnCache()
}

// NeedsItsOwnCache reports whether compositing forces a private cache.
func (o *Object) NeedsItsOwnCache() bool {
	if o.PaintFirst == "stroke" && o.hasFill() && o.hasStroke() && o.Shadow != nil {
		return true
	}
	return o.ClipPath != nil
}

func (o *Object) hasFill() bool { return o.Fill != "" && o.Fill != "transparent" }
func (o *Object) hasStroke() bool {
	return o.Stroke != "" && o.Stroke != "transparent" && o.strokeWidth > 0
}

// Cache exposes the cache geometry, mostly for tests and diagnostics.
func (o *Object) Cache() CacheDims {
	return CacheDims{
		Width: o.cache.width, Height: o.cache.height,
		ZoomX: o.cache.zoomX, ZoomY: o.cache.zoomY,
		X: o.cache.translateX, Y: o.cache.translateY,
		Capped: o.cache.capped,
	}
}

// updateCacheCanvas resizes or clears the cache when the needed size or
// zoom changed. It reports whether it did.
func (o *Object) updateCacheCanvas() bool {
	c := &o.cache
	if c.surface == nil {
		return false
	}
	d := LimitCacheSize(o.cacheLimits(), o.CacheCanvasDimensions())
	dimsChanged := d.Width != c.surface.Width() || d.Height != c.surface.Height()
	zoomChanged := c.zoomX != d.ZoomX || c.zoomY != d.ZoomY
	if !dimsChanged && !zoomChanged {
		return false
	}
	if dimsChanged {
		c.surface.Resize(d.Width, d.Height)
	} else {
		ctx := c.surface.Context()
		ctx.SetTransform(geom.Identity())
		ctx.ClearRect(0, 0, float64(d.Width), float64(d.Height))
	}
	if d.Capped {
		o.logger().Debug("object cache capped", "id", o.ID, "width", d.Width, "height", d.Height)
	}
	drawW, drawH := d.X/2, d.Y/2
	c.width, c.height = d.Width, d.Height
	c.translateX = math.Round(float64(d.Width)/2-drawW) + drawW
	c.translateY = math.Round(float64(d.Height)/2-drawH) + drawH
	c.zoomX, c.zoomY = d.ZoomX, d.ZoomY
	c.capped = d.Capped
	return true
}

// IsCacheDirty reports whether the cached bitmap must be redrawn. Unless
// skipCanvas is set it also clears or resizes the bitmap.
func (o *Object) IsCacheDirty(skipCanvas bool) bool {
	if o.IsNotVisible() {
		return false
	}
	if c, ok := o.self.(interface{ isCacheDirty(bool) bool }); ok {
		return c.isCacheDirty(skipCanvas)
	}
	return o.isCacheDirtyBase(skipCanvas)
}

func (o *Object) isCacheDirtyBase(skipCanvas bool) bool {
	if o.cache.surface != nil && !skipCanvas && o.updateCacheCanvas() {
		return true
	}
	if o.Dirty || (o.ClipPath != nil && o.ClipPath.Base().AbsolutePositioned) {
		if o.cache.surface != nil && !skipCanvas {
			ctx := o.cache.surface.Context()
			ctx.Save()
			ctx.SetTransform(geom.Identity())
			ctx.ClearRect(0, 0, float64(o.cache.width), float64(o.cache.height))
			ctx.Restore()
		}
		return true
	}
	return false
}

// createCacheCanvas allocates the cache from the context being drawn so it
// matches that backend.
func (o *Object) createCacheCanvas(from surface.Context) {
	d := LimitCacheSize(o.cacheLimits(), o.CacheCanvasDimensions())
	o.cache.surface = from.Spawn(d.Width, d.Height)
	o.cache.zoomX, o.cache.zoomY = -1, -1
	o.updateCacheCanvas()
	o.Dirty = true
}

// drawContext carries the cache geometry clip path layers are built with.
type drawContext struct {
	width, height int
	zoomX, zoomY  float64
	translateX    float64
	translateY    float64
	parentClips   []Drawable
}

func (o *Object) cacheDrawContext() *drawContext {
	c := &o.cache
	return &drawContext{
		width: c.width, height: c.height,
		zoomX: c.zoomX, zoomY: c.zoomY,
		translateX: c.translateX, translateY: c.translateY,
	}
}

// RenderCache redraws the cache if it is dirty. from supplies the backend
// for a cache created on first use.
func (o *Object) RenderCache(from surface.Context, forClipping bool) {
	if o.cache.surface == nil {
		o.createCacheCanvas(from)
	}
	if !o.IsCacheDirty(false) {
		return
	}
	ctx := o.cache.surface.Context()
	ctx.Save()
	ctx.SetTransform(geom.Multiply(
		geom.Translate(o.cache.translateX, o.cache.translateY),
		geom.Scale(o.cache.zoomX, o.cache.zoomY), false))
	o.drawObject(ctx, forClipping, o.cacheDrawContext())
	ctx.Restore()
	o.Dirty = false
}

// DrawCacheOnCanvas paints the cached bitmap in the object's plane.
func (o *Object) DrawCacheOnCanvas(ctx surface.Context) {
	c := &o.cache
	ctx.Scale(1/c.zoomX, 1/c.zoomY)
	ctx.DrawImage(c.surface.Image(), -c.translateX, -c.translateY, float64(c.width), float64(c.height))
}

func (o *Object) removeCacheCanvas() {
	o.cache.release()
}
