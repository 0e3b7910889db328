package scene

import (
	"math"

	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/surface"
)

// calculateCurrentDimensions is the on-screen box size, padding included.
// opts replaces the object's own scale and skew when set.
func (o *Object) calculateCurrentDimensions(opts *geom.Decomposition) geom.Point {
	var d Dimensions
	if opts != nil {
		d = Dimensions{ScaleX: &opts.ScaleX, ScaleY: &opts.ScaleY, SkewX: &opts.SkewX, SkewY: &opts.SkewY}
	}
	return o.TransformedDimensions(d).
		Transform(o.viewportTransform(), true).
		ScalarAdd(2 * o.Padding)
}

// CalcOCoords positions every control in viewport pixels.
func (o *Object) CalcOCoords() map[string]*ControlCoords {
	vpt := o.viewportTransform()
	center := o.CenterPoint()
	angle := o.TotalAngle()
	if o.group != nil && o.flipX {
		angle -= 180
	}
	final := geom.MultiplyAll(false,
		&vpt,
		geom.Ref(geom.Translate(center.X, center.Y)),
		geom.Ref(geom.Rotate(angle, geom.Point{})),
		geom.Ref(geom.Scale(1/vpt[0], 1/vpt[3])))

	var opts *geom.Decomposition
	if o.group != nil {
		d := geom.QRDecompose(o.CalcTransformMatrix(false))
		d.ScaleX, d.ScaleY = math.Abs(d.ScaleX), math.Abs(d.ScaleY)
		opts = &d
	}
	dim := o.calculateCurrentDimensions(opts)

	totalAngle := o.TotalAngle()
	coords := make(map[string]*ControlCoords, len(o.Controls))
	for _, key := range controlKeys(o.Controls) {
		c := o.Controls[key]
		p := c.PositionHandler(dim, final)
		coords[key] = &ControlCoords{
			Point:       p,
			Corner:      c.CalcCornerCoords(totalAngle, o.CornerSize, p.X, p.Y, false),
			TouchCorner: c.CalcCornerCoords(totalAngle, o.TouchCornerSize, p.X, p.Y, true),
		}
	}
	return coords
}

// OCoords returns the control coordinates computed by the last SetCoords.
func (o *Object) OCoords() map[string]*ControlCoords { return o.oCoords }

// IsControlVisible reports whether the control exists and is shown.
func (o *Object) IsControlVisible(key string) bool {
	c, ok := o.Controls[key]
	return ok && c != nil && c.Visibility(o, key)
}

// SetControlVisible overrides one control's visibility on this object.
func (o *Object) SetControlVisible(key string, visible bool) {
	if o.controlsVisibility == nil {
		o.controlsVisibility = make(map[string]bool)
	}
	o.controlsVisibility[key] = visible
}

// SetControlsVisibility overrides several controls at once.
func (o *Object) SetControlsVisibility(v map[string]bool) {
	for k, vis := range v {
		o.SetControlVisible(k, vis)
	}
}

// FindControl returns the control under pointer (viewport pixels), testing
// the last drawn first. The hit is remembered as the active control.
func (o *Object) FindControl(pointer geom.Point, forTouch bool) (string, *Control, bool) {
	if !o.HasControls || o.canvas == nil {
		return "", nil, false
	}
	o.activeControl = ""
	keys := controlKeys(o.Controls)
	for i := len(keys) - 1; i >= 0; i-- {
		key := keys[i]
		coords, ok := o.oCoords[key]
		if !ok {
			continue
		}
		area := coords.Corner
		if forTouch {
			area = coords.TouchCorner
		}
		c := o.Controls[key]
		if c.ShouldActivate(key, o, pointer, area) {
			o.activeControl = key
			return key, c, true
		}
	}
	return "", nil, false
}

// ActiveControl is the control the last FindControl hit.
func (o *Object) ActiveControl() (string, *Control) {
	if o.activeControl == "" {
		return "", nil
	}
	return o.activeControl, o.Controls[o.activeControl]
}

// ClearActiveControl forgets the control hit.
func (o *Object) ClearActiveControl() { o.activeControl = "" }

// OnSelect is asked before the object becomes active; true cancels.
func (o *Object) OnSelect() bool { return false }

// OnDeselect is asked before the object stops being active; true cancels.
func (o *Object) OnDeselect() bool { return false }

func (o *Object) drawSelectionBackground(ctx surface.Context) {
	if o.SelectionBackground == "" {
		return
	}
	if o.canvas != nil {
		if a := o.canvas.ActiveObject(); a == nil || a.Base() != o {
			return
		}
	}
	ctx.Save()
	center := o.RelativeCenterPoint()
	wh := o.calculateCurrentDimensions(nil)
	vpt := o.viewportTransform()
	ctx.Translate(center.X, center.Y)
	ctx.Scale(1/vpt[0], 1/vpt[3])
	ctx.Rotate(geom.DegreesToRadians(o.angle))
	ctx.SetFillStyle(o.SelectionBackground)
	ctx.FillRect(-wh.X/2, -wh.Y/2, wh.X, wh.Y)
	ctx.Restore()
}

// RenderControls draws borders and controls on the top layer. ctx must
// carry the retina scaling only; the viewport is applied here.
func (o *Object) RenderControls(ctx surface.Context, style ControlStyle) {
	hasBorders, hasControls := o.HasBorders, o.HasControls
	if style.HasBorders != nil {
		hasBorders = *style.HasBorders
	}
	if style.HasControls != nil {
		hasControls = *style.HasControls
	}
	vpt := o.viewportTransform()
	d := geom.QRDecompose(geom.Multiply(vpt, o.CalcTransformMatrix(false), false))
	ctx.Save()
	ctx.Translate(d.TranslateX, d.TranslateY)
	ctx.SetLineWidth(o.BorderScaleFactor)
	if o.group == nil {
		if o.IsMoving {
			ctx.SetGlobalAlpha(o.BorderOpacityWhenMoving)
		} else {
			ctx.SetGlobalAlpha(1)
		}
	}
	if o.flipX {
		d.Angle -= 180
	}
	angle := o.angle
	if o.group != nil {
		angle = d.Angle
	}
	ctx.Rotate(geom.DegreesToRadians(angle))
	if hasBorders {
		o.DrawBorders(ctx, d, style)
	}
	if hasControls {
		o.DrawControls(ctx, style)
	}
	ctx.Restore()
}

// DrawBorders strokes the selection border around the box described by d.
func (o *Object) DrawBorders(ctx surface.Context, d geom.Decomposition, style ControlStyle) {
	var size geom.Point
	if style.ForActiveSelection || o.group != nil {
		box := geom.SizeAfterTransform(o.width, o.height, geom.CalcDimensionsMatrix(d.Options()))
		var stroke geom.Point
		accounted := false
		if s, ok := o.self.(interface{ isStrokeAccountedForInDimensions() bool }); ok {
			accounted = s.isStrokeAccountedForInDimensions()
		}
		if !accounted {
			if o.strokeUniform {
				stroke = geom.Pt(o.strokeWidth, o.strokeWidth)
			} else {
				stroke = geom.Pt(d.ScaleX, d.ScaleY).ScalarMultiply(o.strokeWidth)
			}
		}
		size = box.Add(stroke).ScalarAdd(o.BorderScaleFactor).ScalarAdd(2 * o.Padding)
	} else {
		size = o.calculateCurrentDimensions(nil).ScalarAdd(o.BorderScaleFactor)
	}

	color, dash := style.BorderColor, style.BorderDashArray
	if color == "" {
		color = o.BorderColor
	}
	if dash == nil {
		dash = o.BorderDashArray
	}
	hasControls := o.HasControls
	if style.HasControls != nil {
		hasControls = *style.HasControls
	}
	ctx.Save()
	ctx.SetStrokeStyle(color)
	ctx.SetLineDash(dash)
	ctx.BeginPath()
	ctx.Rect(-size.X/2, -size.Y/2, size.X, size.Y)
	ctx.Stroke()
	if hasControls {
		o.drawControlsConnectingLines(ctx, size)
	}
	ctx.Restore()
}

func (o *Object) drawControlsConnectingLines(ctx surface.Context, size geom.Point) {
	stroke := false
	ctx.BeginPath()
	for _, key := range controlKeys(o.Controls) {
		c := o.Controls[key]
		if !c.WithConnection || !c.Visibility(o, key) {
			continue
		}
		stroke = true
		ctx.MoveTo(c.X*size.X, c.Y*size.Y)
		ctx.LineTo(c.X*size.X+c.OffsetX, c.Y*size.Y+c.OffsetY)
	}
	if stroke {
		ctx.Stroke()
	}
}

// DrawControls paints every visible control at its oCoords position.
func (o *Object) DrawControls(ctx surface.Context, style ControlStyle) {
	ctx.Save()
	r := o.retinaScaling()
	ctx.SetTransform(geom.Scale(r, r))
	color := style.CornerColor
	if color == "" {
		color = o.CornerColor
	}
	ctx.SetFillStyle(color)
	ctx.SetStrokeStyle(color)
	if !o.TransparentCorners {
		sc := style.CornerStrokeColor
		if sc == "" {
			sc = o.CornerStrokeColor
		}
		ctx.SetStrokeStyle(sc)
	}
	ctx.SetLineDash(style.CornerDashArray)
	if o.oCoords == nil {
		o.SetCoords()
	}
	for _, key := range controlKeys(o.Controls) {
		c := o.Controls[key]
		p, ok := o.oCoords[key]
		if !ok || !c.Visibility(o, key) {
			continue
		}
		c.Draw(ctx, p.X, p.Y, style, o)
	}
	ctx.Restore()
}
