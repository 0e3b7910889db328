package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/canvas-go/internal/event"
	"github.com/inamate/inamate/canvas-go/internal/geom"
)

func newTransform(d Drawable, corner string, x, y float64) *Transform {
	o := d.Base()
	ox, oy := OriginFromControl(o, corner)
	return &Transform{
		Target:   d,
		Corner:   corner,
		ScaleX:   o.ScaleX(),
		ScaleY:   o.ScaleY(),
		SkewX:    o.SkewX(),
		SkewY:    o.SkewY(),
		OriginX:  ox,
		OriginY:  oy,
		Ex:       x,
		Ey:       y,
		LastX:    x,
		LastY:    y,
		OffsetX:  x - o.Left(),
		OffsetY:  y - o.Top(),
		Theta:    geom.DegreesToRadians(o.Angle()),
		Width:    o.Width(),
		Original: SaveObjectTransform(o),
	}
}

func TestControlKeysOrder(t *testing.T) {
	cs := DefaultControls()
	cs["zz"] = NewControl(0, 0)
	cs["aa"] = NewControl(0, 0)
	cs["tr"] = nil
	assert.Equal(t, []string{"ml", "mr", "mb", "mt", "tl", "bl", "br", "mtr", "aa", "zz"}, controlKeys(cs))
}

func TestOriginFromControl(t *testing.T) {
	r := strokeless(0, 0, 10, 10)
	tests := []struct {
		key    string
		ox, oy geom.Origin
	}{
		{"tl", geom.OriginRight, geom.OriginBottom},
		{"br", geom.OriginLeft, geom.OriginTop},
		{"mr", geom.OriginLeft, geom.OriginTop},
		{"ml", geom.OriginRight, geom.OriginTop},
		{"mt", geom.OriginLeft, geom.OriginBottom},
		{"tr", geom.OriginLeft, geom.OriginBottom},
		{"bl", geom.OriginRight, geom.OriginTop},
		{"mb", geom.OriginLeft, geom.OriginTop},
		{"mtr", geom.OriginLeft, geom.OriginTop},
		{"missing", geom.OriginLeft, geom.OriginTop},
	}
	for _, tt := range tests {
		ox, oy := OriginFromControl(&r.Object, tt.key)
		assert.Equal(t, tt.ox, ox, tt.key)
		assert.Equal(t, tt.oy, oy, tt.key)
	}

	// Rotation pivots on the object's own origin, whatever it is.
	r.SetOriginX(geom.OriginCenter)
	r.SetOriginY(geom.OriginBottom)
	ox, oy := OriginFromControl(&r.Object, "mtr")
	assert.Equal(t, geom.OriginCenter, ox)
	assert.Equal(t, geom.OriginBottom, oy)
	ox, oy = OriginFromControl(&r.Object, "mr")
	assert.Equal(t, geom.OriginLeft, ox)
	assert.Equal(t, geom.OriginBottom, oy)
}

func TestActionFromCorner(t *testing.T) {
	r := strokeless(0, 0, 10, 10)
	tests := []struct {
		selected bool
		corner   string
		e        PointerEvent
		want     string
	}{
		{false, "tl", PointerEvent{}, ActionDrag},
		{true, "", PointerEvent{}, ActionDrag},
		{true, "tl", PointerEvent{}, ActionScale},
		{true, "ml", PointerEvent{}, ActionScaleX},
		{true, "ml", PointerEvent{Shift: true}, ActionSkewY},
		{true, "mt", PointerEvent{}, ActionScaleY},
		{true, "mb", PointerEvent{Shift: true}, ActionSkewX},
		{true, "mtr", PointerEvent{}, ActionRotate},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ActionFromCorner(tt.selected, tt.corner, tt.e, &r.Object), "%s selected=%v", tt.corner, tt.selected)
	}
}

func TestFindControl(t *testing.T) {
	h := newTestHost()
	r := strokeless(100, 100, 100, 100)
	r.SetCanvas(h)
	r.SetCoords()

	_, _, ok := r.FindControl(geom.Pt(100, 100), false)
	assert.False(t, ok, "controls are only live on the active object")

	h.active = r
	tests := []struct {
		p     geom.Point
		key   string
		found bool
	}{
		{geom.Pt(101, 99), "tl", true},
		{geom.Pt(200, 200), "br", true},
		{geom.Pt(150, 60), "mtr", true},
		{geom.Pt(200, 150), "mr", true},
		{geom.Pt(150, 150), "", false},
	}
	for _, tt := range tests {
		key, c, found := r.FindControl(tt.p, false)
		assert.Equal(t, tt.found, found, "%v", tt.p)
		assert.Equal(t, tt.key, key, "%v", tt.p)
		if found {
			assert.Same(t, r.Controls[tt.key], c)
			active, _ := r.ActiveControl()
			assert.Equal(t, tt.key, active)
		}
	}

	r.SetControlVisible("mtr", false)
	_, _, ok = r.FindControl(geom.Pt(150, 60), false)
	assert.False(t, ok)
}

func TestScaleFromCornerKeepsOppositeCorner(t *testing.T) {
	r := strokeless(100, 100, 100, 100)
	tr := newTransform(r, "tl", 100, 100)
	require.Equal(t, geom.OriginRight, tr.OriginX)

	var scaling int
	r.On("scaling", func(event.Event) { scaling++ })

	assert.True(t, ScalingEqually(PointerEvent{}, tr, 50, 50))
	assert.InDelta(t, 1.5, r.ScaleX(), 1e-9)
	assert.InDelta(t, 1.5, r.ScaleY(), 1e-9)
	assertPointInDelta(t, geom.Pt(50, 50), geom.Pt(r.Left(), r.Top()), 1e-9)
	assertPointInDelta(t, geom.Pt(200, 200), r.PositionByOrigin(geom.OriginRight, geom.OriginBottom), 1e-9)
	assert.Equal(t, 1, scaling)

	// crossing the anchor flips the object
	assert.True(t, ScalingEqually(PointerEvent{}, tr, 250, 250))
	assert.True(t, r.FlipX())
	assert.True(t, r.FlipY())
	assert.InDelta(t, 0.5, r.ScaleX(), 1e-9)
	assertPointInDelta(t, geom.Pt(200, 200), geom.Pt(r.Left(), r.Top()), 1e-9)
}

func TestScaleXFromSide(t *testing.T) {
	r := strokeless(0, 0, 100, 50)
	tr := newTransform(r, "mr", 100, 25)
	assert.True(t, ScalingX(PointerEvent{}, tr, 200, 25))
	assert.InDelta(t, 2, r.ScaleX(), 1e-9)
	assert.Equal(t, 1.0, r.ScaleY())
	assert.InDelta(t, 0, r.Left(), 1e-9)

	r.LockScalingX = true
	assert.False(t, ScalingX(PointerEvent{}, tr, 300, 25))
	assert.InDelta(t, 2, r.ScaleX(), 1e-9)
}

func TestScalingIsForbidden(t *testing.T) {
	tests := []struct {
		name         string
		lockX, lockY bool
		by           string
		proportional bool
		want         bool
	}{
		{"free", false, false, "", true, false},
		{"both locked", true, true, "x", false, true},
		{"one lock blocks proportional", true, false, "", true, true},
		{"one lock allows free corner", true, false, "", false, false},
		{"x lock blocks x", true, false, "x", false, true},
		{"x lock allows y", true, false, "y", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := strokeless(0, 0, 10, 10)
			r.LockScalingX, r.LockScalingY = tt.lockX, tt.lockY
			assert.Equal(t, tt.want, ScalingIsForbidden(&r.Object, tt.by, tt.proportional))
		})
	}

	flat := strokeless(0, 0, 0, 10)
	assert.True(t, ScalingIsForbidden(&flat.Object, "x", false))
	assert.False(t, ScalingIsForbidden(&flat.Object, "y", false))
}

func TestScaleCursorStyle(t *testing.T) {
	r := strokeless(0, 0, 10, 10)
	assert.Equal(t, "nw-resize", ScaleCursorStyleHandler(PointerEvent{}, r.Controls["tl"], &r.Object))
	assert.Equal(t, "e-resize", ScaleCursorStyleHandler(PointerEvent{}, r.Controls["mr"], &r.Object))

	r.SetAngle(90)
	assert.Equal(t, "ne-resize", ScaleCursorStyleHandler(PointerEvent{}, r.Controls["tl"], &r.Object))

	r.LockScalingX, r.LockScalingY = true, true
	assert.Equal(t, NotAllowedCursor, ScaleCursorStyleHandler(PointerEvent{}, r.Controls["tl"], &r.Object))
}

func TestRotationWithSnapping(t *testing.T) {
	r := strokeless(0, 0, 100, 100)
	tr := newTransform(r, "mtr", 50, -10)
	tr.OriginX, tr.OriginY = geom.OriginCenter, geom.OriginCenter

	assert.True(t, RotationWithSnapping(PointerEvent{}, tr, 110, 50))
	assert.InDelta(t, 90, r.Angle(), 1e-9)
	assertPointInDelta(t, geom.Pt(50, 50), r.CenterPoint(), 1e-9)

	r.SnapAngle = 45
	r.SnapThreshold = 10
	RotationWithSnapping(PointerEvent{}, tr, 112, 45)
	assert.Equal(t, 90.0, r.Angle())

	r.LockRotation = true
	assert.False(t, RotationWithSnapping(PointerEvent{}, tr, 50, 110))
	assert.Equal(t, 90.0, r.Angle())
}

func TestDragHandler(t *testing.T) {
	r := strokeless(0, 0, 10, 10)
	tr := newTransform(r, "", 5, 5)

	assert.True(t, DragHandler(PointerEvent{}, tr, 25, 45))
	assert.Equal(t, 20.0, r.Left())
	assert.Equal(t, 40.0, r.Top())
	assert.False(t, DragHandler(PointerEvent{}, tr, 25, 45))

	r.LockMovementX = true
	assert.True(t, DragHandler(PointerEvent{}, tr, 100, 100))
	assert.Equal(t, 20.0, r.Left())
	assert.Equal(t, 95.0, r.Top())
}

func TestSkewFromSide(t *testing.T) {
	r := strokeless(0, 0, 100, 100)
	tr := newTransform(r, "mb", 50, 100)
	e := PointerEvent{Shift: true}

	assert.True(t, ScalingYOrSkewingX(e, tr, 100, 100))
	assert.InDelta(t, 45, r.SkewX(), 1e-9)
	assert.Equal(t, 1.0, r.ScaleY())

	r.LockSkewingX = true
	assert.False(t, ScalingYOrSkewingX(e, tr, 150, 100))
}
