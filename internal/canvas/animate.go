package canvas

import (
	"fmt"
	"time"

	"github.com/inamate/inamate/canvas-go/internal/anim"
	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

// Animate starts a tween on the canvas registry. Frames keep being
// requested until every running tween finishes.
func (c *Canvas) Animate(s anim.Spec) *anim.Handle {
	h := c.Animations.Animate(s)
	c.RequestRenderAll()
	return h
}

// AnimateColor starts a color tween, see Animate.
func (c *Canvas) AnimateColor(s anim.ColorSpec) *anim.Handle {
	h := c.Animations.AnimateColor(s)
	c.RequestRenderAll()
	return h
}

type numericProp struct {
	get func(*scene.Object) float64
	set func(*scene.Object, float64)
}

var animatable = map[string]numericProp{
	"left":    {(*scene.Object).Left, (*scene.Object).SetLeft},
	"top":     {(*scene.Object).Top, (*scene.Object).SetTop},
	"angle":   {(*scene.Object).Angle, (*scene.Object).SetAngle},
	"scaleX":  {(*scene.Object).ScaleX, (*scene.Object).SetScaleX},
	"scaleY":  {(*scene.Object).ScaleY, (*scene.Object).SetScaleY},
	"skewX":   {(*scene.Object).SkewX, (*scene.Object).SetSkewX},
	"skewY":   {(*scene.Object).SkewY, (*scene.Object).SetSkewY},
	"width":   {(*scene.Object).Width, (*scene.Object).SetWidth},
	"height":  {(*scene.Object).Height, (*scene.Object).SetHeight},
	"opacity": {func(o *scene.Object) float64 { return o.Opacity }, (*scene.Object).SetOpacity},
}

// AnimateProperty tweens one numeric property of d from its current value
// to to.
func (c *Canvas) AnimateProperty(d scene.Drawable, prop string, to float64, dur time.Duration, easing string) (*anim.Handle, error) {
	p, ok := animatable[prop]
	if !ok {
		return nil, fmt.Errorf("animate %s: property %q is not animatable", d.Type(), prop)
	}
	o := d.Base()
	return c.Animate(anim.Spec{
		Target:     d,
		StartValue: p.get(o),
		EndValue:   to,
		Duration:   dur,
		Easing:     easing,
		OnChange: func(v, _ float64) {
			p.set(o, v)
			o.SetCoords()
		},
		OnComplete: func(float64) {
			o.SetCoords()
			o.FireEvent("animation:end", prop)
		},
	}), nil
}

// AnimateZoom tweens the zoom around p over d.
func (c *Canvas) AnimateZoom(p geom.Point, to float64, d time.Duration) *anim.Handle {
	return c.Animate(anim.Spec{
		Target:     c,
		StartValue: c.Zoom(),
		EndValue:   to,
		Duration:   d,
		Easing:     anim.EaseInOutQuad,
		OnChange:   func(v, _ float64) { c.ZoomToPoint(p, v) },
	})
}
