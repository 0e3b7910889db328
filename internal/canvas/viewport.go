package canvas

import (
	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

// SetViewportTransform replaces the viewport matrix and refreshes every
// object's coordinates.
func (c *Canvas) SetViewportTransform(vpt geom.Matrix2D) {
	c.vpt = vpt
	for _, d := range []scene.Drawable{c.BackgroundImage, c.OverlayImage} {
		if d != nil {
			d.Base().SetCoords()
		}
	}
	c.calcViewportBoundaries()
	c.setCoordsAll()
	c.RequestRenderAll()
}

// Zoom is the viewport's horizontal scale.
func (c *Canvas) Zoom() float64 { return c.vpt[0] }

// SetZoom zooms around the viewport origin.
func (c *Canvas) SetZoom(v float64) {
	c.ZoomToPoint(geom.Point{}, v)
}

// ZoomToPoint sets the zoom keeping the scene point under viewport point p
// fixed.
func (c *Canvas) ZoomToPoint(p geom.Point, v float64) {
	vpt := c.vpt
	sp := p.Transform(vpt.Invert(), false)
	vpt[0], vpt[3] = v, v
	after := sp.Transform(vpt, false)
	vpt[4] += p.X - after.X
	vpt[5] += p.Y - after.Y
	c.SetViewportTransform(vpt)
}

// AbsolutePan moves the viewport so p sits at its top left corner.
func (c *Canvas) AbsolutePan(p geom.Point) {
	vpt := c.vpt
	vpt[4], vpt[5] = -p.X, -p.Y
	c.SetViewportTransform(vpt)
}

// RelativePan shifts the viewport by p.
func (c *Canvas) RelativePan(p geom.Point) {
	c.AbsolutePan(geom.Pt(-p.X-c.vpt[4], -p.Y-c.vpt[5]))
}

// calcViewportBoundaries caches the scene-plane corners of the visible
// area.
func (c *Canvas) calcViewportBoundaries() {
	inv := c.vpt.Invert()
	a := geom.Pt(0, 0).Transform(inv, false)
	b := geom.Pt(float64(c.Width), float64(c.Height)).Transform(inv, false)
	c.vptTL = a.Min(b)
	c.vptBR = a.Max(b)
}

// ScenePoint maps a viewport pixel to the scene plane.
func (c *Canvas) ScenePoint(p geom.Point) geom.Point {
	return p.Transform(c.vpt.Invert(), false)
}

// ViewportPoint maps a scene point to viewport pixels.
func (c *Canvas) ViewportPoint(p geom.Point) geom.Point {
	return p.Transform(c.vpt, false)
}

func (c *Canvas) setCoordsAll() {
	for _, d := range c.Collection.Objects() {
		d.Base().SetCoords()
	}
	if sel := c.activeSelection(); sel != nil {
		sel.SetCoords()
	}
}
