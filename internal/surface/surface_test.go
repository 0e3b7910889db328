package surface

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/canvas-go/internal/geom"
)

func TestRecorderTracksState(t *testing.T) {
	r := NewRecorder(100, 100, nil)
	ctx := r.Context()

	ctx.Save()
	ctx.Translate(10, 20)
	ctx.SetGlobalAlpha(0.5)
	assert.Equal(t, geom.Translate(10, 20), ctx.CurrentTransform())
	assert.Equal(t, 0.5, ctx.GlobalAlpha())
	ctx.Restore()

	assert.Equal(t, geom.Identity(), ctx.CurrentTransform())
	assert.Equal(t, 1.0, ctx.GlobalAlpha())

	ops := make([]string, 0, len(r.Commands()))
	for _, c := range r.Commands() {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []string{"save", "translate", "globalAlpha", "restore"}, ops)
}

func TestRecorderUnbalancedRestore(t *testing.T) {
	r := NewRecorder(10, 10, nil)
	r.Restore()
	assert.Empty(t, r.Commands())
}

func TestRecorderNestsRecordings(t *testing.T) {
	cache := NewRecorder(20, 10, nil)
	cache.FillRect(0, 0, 20, 10)

	top := NewRecorder(100, 100, nil)
	top.DrawImage(cache.Image(), -10, -5, 20, 10)
	top.DrawImage(NamedImage{Image: image.NewRGBA(image.Rect(0, 0, 1, 1)), Name: "asset_1"}, 0, 0, 1, 1)

	cmds := top.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, 20, cmds[0].Width)
	require.Len(t, cmds[0].Commands, 1)
	assert.Equal(t, "fillRect", cmds[0].Commands[0].Op)
	assert.Equal(t, "asset_1", cmds[1].Image)
}

func TestAcquireTwice(t *testing.T) {
	r := NewRecorder(10, 10, nil)
	require.NoError(t, r.Acquire())
	assert.ErrorIs(t, r.Acquire(), ErrAlreadyInitialized)
	r.Dispose()
	assert.NoError(t, r.Acquire())
}

func TestArcSweep(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		ccw        bool
		want       float64
	}{
		{"full circle", 0, 2 * math.Pi, false, 2 * math.Pi},
		{"quarter", 0, math.Pi / 2, false, math.Pi / 2},
		{"wraps clockwise", math.Pi / 2, 0, false, 3 * math.Pi / 2},
		{"counter clockwise", 0, math.Pi / 2, true, -3 * math.Pi / 2},
		{"full counter clockwise", 2 * math.Pi, 0, true, -2 * math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, arcSweep(tt.start, tt.end, tt.ccw), 1e-9)
		})
	}
}

func TestCompositeDestinationIn(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	copy(dst.Pix, []uint8{255, 0, 0, 255, 255, 0, 0, 255})
	copy(src.Pix, []uint8{0, 0, 0, 255, 0, 0, 0, 0})

	compositeRGBA(dst, src, DestinationIn)
	assert.Equal(t, []uint8{255, 0, 0, 255, 0, 0, 0, 0}, dst.Pix)
}

func TestCompositeDestinationOut(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	copy(dst.Pix, []uint8{255, 0, 0, 255, 255, 0, 0, 255})
	copy(src.Pix, []uint8{0, 0, 0, 255, 0, 0, 0, 0})

	compositeRGBA(dst, src, DestinationOut)
	assert.Equal(t, []uint8{0, 0, 0, 0, 255, 0, 0, 255}, dst.Pix)
}

func TestRasterFillRect(t *testing.T) {
	r := NewRaster(20, 20)
	ctx := r.Context()
	ctx.SetFillStyle("#ff0000")
	ctx.FillRect(0, 0, 10, 10)
	require.NoError(t, r.Err())

	img := r.RGBA()
	inside := img.RGBAAt(5, 5)
	assert.Equal(t, uint8(255), inside.R)
	assert.Equal(t, uint8(255), inside.A)
	assert.Equal(t, uint8(0), img.RGBAAt(15, 15).A)
}

func TestRasterDrawImageTranslated(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(src.Pix); i += 4 {
		copy(src.Pix[i:i+4], []uint8{0, 0, 255, 255})
	}
	r := NewRaster(20, 20)
	r.Translate(10, 10)
	r.DrawImage(src, 0, 0, 4, 4)

	img := r.RGBA()
	assert.Equal(t, uint8(255), img.RGBAAt(11, 11).B)
	assert.Equal(t, uint8(0), img.RGBAAt(2, 2).A)
}

func TestFontBookMeasures(t *testing.T) {
	m := DefaultMeasurer().MeasureText(Font{Family: "sans-serif", Size: 20}, "hello")
	assert.Greater(t, m.Width, 0.0)
	assert.Greater(t, m.Ascent, 0.0)

	wider := DefaultMeasurer().MeasureText(Font{Family: "sans-serif", Size: 20}, "hello world")
	assert.Greater(t, wider.Width, m.Width)
}
