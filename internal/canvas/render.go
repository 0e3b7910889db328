package canvas

import (
	"time"

	"github.com/inamate/inamate/canvas-go/internal/event"
	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/scene"
	"github.com/inamate/inamate/canvas-go/internal/surface"
)

// RenderEvent is the payload of before:render and after:render.
type RenderEvent struct {
	Ctx surface.Context
}

// RequestRenderAll schedules one render on the next frame. Calls made
// before that frame runs share it.
func (c *Canvas) RequestRenderAll() {
	if c.disposed {
		return
	}
	c.frameMu.Lock()
	defer c.frameMu.Unlock()
	if c.pendingFrame {
		return
	}
	c.pendingFrame = true
	c.cancelFrame = c.scheduler.RequestFrame(c.frame)
}

func (c *Canvas) frame(now time.Time) {
	c.frameMu.Lock()
	c.pendingFrame = false
	c.cancelFrame = nil
	c.frameMu.Unlock()
	if c.disposed {
		return
	}
	running := c.Animations.Tick(now)
	c.RenderAll()
	if running {
		c.RequestRenderAll()
	}
}

func (c *Canvas) cancelRequestedRender() {
	c.frameMu.Lock()
	defer c.frameMu.Unlock()
	if c.cancelFrame != nil {
		c.cancelFrame()
		c.cancelFrame = nil
	}
	c.pendingFrame = false
}

// RenderAll repaints both surfaces now, dropping any scheduled frame.
func (c *Canvas) RenderAll() {
	if c.disposed {
		return
	}
	c.cancelRequestedRender()
	c.renderCanvas(c.lower, c.objectsToRender())
	c.RenderTop()
}

// objectsToRender lifts the active object above the rest unless stacking
// is preserved. Members of an active selection paint through it.
func (c *Canvas) objectsToRender() []scene.Drawable {
	objects := c.Collection.Objects()
	if c.PreserveStacking || c.active == nil {
		return objects
	}
	out := make([]scene.Drawable, 0, len(objects)+1)
	for _, d := range objects {
		if d.Base().Group() == nil && d != c.active {
			out = append(out, d)
		}
	}
	return append(out, c.active)
}

func (c *Canvas) clearSurface(s surface.Surface) surface.Context {
	ctx := s.Context()
	ctx.SetTransform(geom.Identity())
	ctx.ClearRect(0, 0, float64(s.Width()), float64(s.Height()))
	r := c.RetinaScaling()
	ctx.SetTransform(geom.Scale(r, r))
	return ctx
}

func (c *Canvas) renderCanvas(s surface.Surface, objects []scene.Drawable) {
	ctx := c.clearSurface(s)
	c.Fire("before:render", event.Event{Payload: RenderEvent{Ctx: ctx}})
	c.renderBackgroundOrOverlay(ctx, c.BackgroundColor, c.BackgroundImage, c.BackgroundVpt)

	ctx.Save()
	ctx.Transform(c.vpt)
	for _, d := range objects {
		d.Render(ctx)
	}
	ctx.Restore()

	if c.ClipPath != nil {
		c.ClipPath.Base().SetCanvas(c)
		ctx.Save()
		ctx.Transform(c.vpt)
		scene.MaskWithClipPath(ctx, c.ClipPath, s.Width(), s.Height())
		ctx.Restore()
	}
	c.renderBackgroundOrOverlay(ctx, c.OverlayColor, c.OverlayImage, c.OverlayVpt)
	c.Fire("after:render", event.Event{Payload: RenderEvent{Ctx: ctx}})
}

func (c *Canvas) renderBackgroundOrOverlay(ctx surface.Context, fill string, img scene.Drawable, needsVpt bool) {
	if fill == "" && img == nil {
		return
	}
	w, h := float64(c.Width), float64(c.Height)
	if fill != "" {
		ctx.Save()
		ctx.BeginPath()
		ctx.MoveTo(0, 0)
		ctx.LineTo(w, 0)
		ctx.LineTo(w, h)
		ctx.LineTo(0, h)
		ctx.ClosePath()
		ctx.SetFillStyle(fill)
		if needsVpt {
			ctx.Transform(c.vpt)
		}
		ctx.Fill(surface.NonZero)
		ctx.Restore()
	}
	if img != nil {
		if img.Base().Canvas() == nil {
			img.Base().SetCanvas(c)
		}
		ctx.Save()
		offscreen := c.RenderOffscreen
		c.RenderOffscreen = !needsVpt
		if needsVpt {
			ctx.Transform(c.vpt)
		}
		img.Render(ctx)
		c.RenderOffscreen = offscreen
		ctx.Restore()
	}
}

// RenderTop repaints the top surface: controls of the active object and
// the drag selection rectangle.
func (c *Canvas) RenderTop() {
	if c.disposed {
		return
	}
	ctx := c.clearSurface(c.top)
	c.drawControls(ctx)
	if c.Selection && c.groupSelector != nil {
		c.drawSelection(ctx)
	}
	c.topDirty = true
	c.Fire("after:render", event.Event{Target: c.top, Payload: RenderEvent{Ctx: ctx}})
}

func (c *Canvas) drawControls(ctx surface.Context) {
	if c.active == nil {
		return
	}
	if sel := c.activeSelection(); sel != nil {
		ctx.Save()
		if sel.IsMoving {
			ctx.SetGlobalAlpha(sel.BorderOpacityWhenMoving)
		}
		noControls := false
		for _, d := range sel.Objects() {
			d.Base().RenderControls(ctx, scene.ControlStyle{HasControls: &noControls, ForActiveSelection: true})
		}
		sel.RenderControls(ctx, scene.ControlStyle{})
		ctx.Restore()
		return
	}
	c.active.Base().RenderControls(ctx, scene.ControlStyle{})
}

// drawSelection paints the drag selection box. The selector is kept in the
// scene plane and drawn in viewport pixels.
func (c *Canvas) drawSelection(ctx surface.Context) {
	g := c.groupSelector
	start := geom.Pt(g.x, g.y).Transform(c.vpt, false)
	extent := geom.Pt(g.x+g.deltaX, g.y+g.deltaY).Transform(c.vpt, false)
	lo, hi := start.Min(extent), start.Max(extent)
	if c.SelectionColor != "" {
		ctx.SetFillStyle(c.SelectionColor)
		ctx.FillRect(lo.X, lo.Y, hi.X-lo.X, hi.Y-lo.Y)
	}
	if c.SelectionLineWidth == 0 || c.SelectionBorderColor == "" {
		return
	}
	off := c.SelectionLineWidth / 2
	lo, hi = lo.ScalarAdd(off), hi.ScalarSubtract(off)
	ctx.SetLineDash(c.SelectionDashArray)
	ctx.SetLineWidth(c.SelectionLineWidth)
	ctx.SetStrokeStyle(c.SelectionBorderColor)
	ctx.BeginPath()
	ctx.Rect(lo.X, lo.Y, hi.X-lo.X, hi.Y-lo.Y)
	ctx.Stroke()
}
