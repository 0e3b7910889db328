package scene

import (
	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/surface"
)

// IsNotVisible reports whether rendering would paint nothing.
func (o *Object) IsNotVisible() bool {
	return o.Opacity == 0 || (o.width == 0 && o.height == 0 && o.strokeWidth == 0) || !o.Visible
}

// Render paints the object onto ctx, which must carry the viewport
// transform. Objects in a group are rendered by that group.
func (o *Object) Render(ctx surface.Context) {
	if o.IsNotVisible() {
		return
	}
	if o.canvas != nil && o.canvas.SkipOffscreen() && o.group == nil && !o.IsOnScreen() {
		return
	}
	ctx.Save()
	ctx.SetCompositeOperation(surface.CompositeOp(o.GlobalCompositeOperation))
	o.drawSelectionBackground(ctx)
	o.applyTransform(ctx)
	o.setOpacity(ctx)
	o.setShadow(ctx)
	if o.ShouldCache() {
		o.RenderCache(ctx, false)
		o.DrawCacheOnCanvas(ctx)
	} else {
		o.removeCacheCanvas()
		o.drawObject(ctx, false, nil)
		o.Dirty = false
	}
	ctx.Restore()
}

// applyTransform multiplies the object's matrix into ctx. A group that
// already applied its own transform lets children use their own matrix.
func (o *Object) applyTransform(ctx surface.Context) {
	needFull := o.group != nil && !o.group.transformDone
	ctx.Transform(o.CalcTransformMatrix(!needFull))
}

func (o *Object) setOpacity(ctx surface.Context) {
	if o.group != nil && !o.group.transformDone {
		ctx.SetGlobalAlpha(o.ObjectOpacity())
		return
	}
	ctx.SetGlobalAlpha(ctx.GlobalAlpha() * o.Opacity)
}

func (o *Object) setShadow(ctx surface.Context) {
	if o.Shadow == nil {
		return
	}
	s := o.Shadow
	vpt := o.viewportTransform()
	retina := o.retinaScaling()
	multX, multY := vpt[0]*retina, vpt[3]*retina
	scaling := geom.Pt(1, 1)
	if !s.NonScaling {
		scaling = o.ObjectScaling()
	}
	ctx.SetShadow(surface.Shadow{
		Color:   s.Color,
		Blur:    s.Blur * o.engine().BrowserShadowBlurConstant * (multX + multY) * (scaling.X + scaling.Y) / 4,
		OffsetX: s.OffsetX * multX * scaling.X,
		OffsetY: s.OffsetY * multY * scaling.Y,
	})
}

func (o *Object) removeShadow(ctx surface.Context) {
	if o.Shadow == nil {
		return
	}
	ctx.SetShadow(surface.Shadow{})
}

// WillDrawShadow reports whether a visible shadow offset is set.
func (o *Object) WillDrawShadow() bool {
	if w, ok := o.self.(interface{ willDrawShadow() bool }); ok {
		return w.willDrawShadow()
	}
	return o.willDrawOwnShadow()
}

func (o *Object) willDrawOwnShadow() bool {
	return o.Shadow != nil && (o.Shadow.OffsetX != 0 || o.Shadow.OffsetY != 0)
}

// drawObject paints background, shape and clip path in the object's plane.
// With forClipping the shape is drawn as an opaque black mask.
func (o *Object) drawObject(ctx surface.Context, forClipping bool, dc *drawContext) {
	if d, ok := o.self.(interface {
		drawObject(surface.Context, bool, *drawContext)
	}); ok {
		d.drawObject(ctx, forClipping, dc)
		return
	}
	fill, stroke := o.Fill, o.Stroke
	if forClipping {
		o.Fill, o.Stroke = "black", ""
		ctx.SetGlobalAlpha(1)
		ctx.SetStrokeStyle("transparent")
		ctx.SetFillStyle("#000000")
	} else {
		o.renderBackground(ctx)
	}
	o.self.DrawShape(ctx)
	o.drawClipPath(ctx, o.ClipPath, dc)
	o.Fill, o.Stroke = fill, stroke
}

func (o *Object) renderBackground(ctx surface.Context) {
	if o.BackgroundColor == "" {
		return
	}
	dim := o.NonTransformedDimensions()
	ctx.SetFillStyle(o.BackgroundColor)
	ctx.FillRect(-dim.X/2, -dim.Y/2, dim.X, dim.Y)
	o.removeShadow(ctx)
}

// RenderPaintInOrder fills and strokes the current path in paintFirst order.
func (o *Object) RenderPaintInOrder(ctx surface.Context) {
	if o.PaintFirst == "stroke" {
		o.RenderStroke(ctx)
		o.RenderFill(ctx)
		return
	}
	o.RenderFill(ctx)
	o.RenderStroke(ctx)
}

// RenderFill fills the current path.
func (o *Object) RenderFill(ctx surface.Context) {
	if o.Fill == "" {
		return
	}
	ctx.Save()
	ctx.SetFillStyle(o.Fill)
	ctx.Fill(surface.FillRule(o.FillRule))
	ctx.Restore()
}

// RenderStroke strokes the current path. Uniform strokes undo the object
// scale so the width stays constant on screen.
func (o *Object) RenderStroke(ctx surface.Context) {
	if o.Stroke == "" || o.strokeWidth == 0 {
		return
	}
	if o.Shadow != nil && !o.Shadow.AffectStroke {
		o.removeShadow(ctx)
	}
	ctx.Save()
	if o.strokeUniform {
		s := o.ObjectScaling()
		ctx.Scale(1/s.X, 1/s.Y)
	}
	if len(o.StrokeDashArray) > 0 {
		ctx.SetLineDash(o.StrokeDashArray)
	}
	o.setStrokeStyles(ctx)
	ctx.Stroke()
	ctx.Restore()
}

func (o *Object) setStrokeStyles(ctx surface.Context) {
	ctx.SetLineWidth(o.strokeWidth)
	ctx.SetLineCap(o.StrokeLineCap)
	ctx.SetLineDashOffset(o.StrokeDashOffset)
	ctx.SetLineJoin(o.StrokeLineJoin)
	ctx.SetMiterLimit(o.StrokeMiterLimit)
	ctx.SetStrokeStyle(o.Stroke)
}

// drawClipPath masks what was drawn so far with clip. It needs the cache
// geometry, so it only runs while rendering into a cache.
func (o *Object) drawClipPath(ctx surface.Context, clip Drawable, dc *drawContext) {
	if clip == nil || dc == nil {
		return
	}
	cb := clip.Base()
	cb.SetCanvas(o.canvas)
	cb.ShouldCache()
	cb.transformDone = true
	layer := o.createClipPathLayer(ctx, clip, dc)
	defer layer.Dispose()

	ctx.Save()
	if cb.Inverted {
		ctx.SetCompositeOperation(surface.DestinationOut)
	} else {
		ctx.SetCompositeOperation(surface.DestinationIn)
	}
	ctx.SetTransform(geom.Identity())
	ctx.DrawImage(layer.Image(), 0, 0, float64(dc.width), float64(dc.height))
	ctx.Restore()
}

func (o *Object) createClipPathLayer(ctx surface.Context, clip Drawable, dc *drawContext) surface.Surface {
	layer := ctx.Spawn(dc.width, dc.height)
	lc := layer.Context()
	lc.Translate(dc.translateX, dc.translateY)
	lc.Scale(dc.zoomX, dc.zoomY)
	for _, prev := range dc.parentClips {
		prev.Base().applyTransform(lc)
	}
	dc.parentClips = append(dc.parentClips, clip)
	cb := clip.Base()
	if cb.AbsolutePositioned {
		lc.Transform(o.CalcTransformMatrix(false).Invert())
	}
	cb.applyTransform(lc)
	cb.drawObject(lc, true, dc)
	return layer
}

// MaskWithClipPath keeps (or, for an inverted clip, removes) the part of
// the width x height surface behind ctx that clip covers. ctx must carry
// the transform of the plane clip lives in.
func MaskWithClipPath(ctx surface.Context, clip Drawable, width, height int) {
	cb := clip.Base()
	layer := ctx.Spawn(width, height)
	defer layer.Dispose()
	lc := layer.Context()
	lc.SetTransform(ctx.CurrentTransform())
	cb.transformDone = true
	cb.applyTransform(lc)
	cb.drawObject(lc, true, nil)
	cb.transformDone = false

	ctx.Save()
	if cb.Inverted {
		ctx.SetCompositeOperation(surface.DestinationOut)
	} else {
		ctx.SetCompositeOperation(surface.DestinationIn)
	}
	ctx.SetTransform(geom.Identity())
	ctx.DrawImage(layer.Image(), 0, 0, float64(width), float64(height))
	ctx.Restore()
}
