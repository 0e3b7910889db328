package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/canvas-go/internal/surface"
)

func TestLimitCacheSize(t *testing.T) {
	limits := cacheLimits{PerfLimitSizeTotal: 2097152, MaxCacheSideLimit: 4096, MinCacheSideLimit: 256}
	tests := []struct {
		name         string
		in           CacheDims
		width        int
		height       int
		zoomX, zoomY float64
		capped       bool
	}{
		{
			name:  "within limits",
			in:    CacheDims{Width: 600, Height: 400, ZoomX: 1, ZoomY: 1},
			width: 600, height: 400, zoomX: 1, zoomY: 1,
		},
		{
			name:  "raised to the minimum side",
			in:    CacheDims{Width: 10, Height: 300, ZoomX: 1, ZoomY: 1},
			width: 256, height: 300, zoomX: 1, zoomY: 1,
		},
		{
			name:  "area over budget",
			in:    CacheDims{Width: 5000, Height: 5000, ZoomX: 1, ZoomY: 1},
			width: 1448, height: 1448, zoomX: 1448.0 / 5000, zoomY: 1448.0 / 5000,
			capped: true,
		},
		{
			name:  "long and thin",
			in:    CacheDims{Width: 10000, Height: 10, ZoomX: 2, ZoomY: 2},
			width: 4096, height: 10, zoomX: 2 * 4096.0 / 10000, zoomY: 2,
			capped: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LimitCacheSize(limits, tt.in)
			assert.Equal(t, tt.width, got.Width)
			assert.Equal(t, tt.height, got.Height)
			assert.InDelta(t, tt.zoomX, got.ZoomX, 1e-12)
			assert.InDelta(t, tt.zoomY, got.ZoomY, 1e-12)
			assert.Equal(t, tt.capped, got.Capped)
			assert.LessOrEqual(t, got.Width*got.Height, limits.PerfLimitSizeTotal)
		})
	}
}

func TestLimitDimsByArea(t *testing.T) {
	w, h := LimitDimsByArea(2097152, 1)
	assert.Equal(t, 1448, w)
	assert.Equal(t, 1448, h)

	w, h = LimitDimsByArea(10000, 4)
	assert.Equal(t, 200, w)
	assert.Equal(t, 50, h)
}

func TestCacheCanvasDimensions(t *testing.T) {
	r := NewRect(0, 0, 100, 50)
	d := r.CacheCanvasDimensions()
	assert.Equal(t, 103, d.Width)
	assert.Equal(t, 53, d.Height)
	assert.Equal(t, 1.0, d.ZoomX)
	assert.Equal(t, 101.0, d.X)

	h := newTestHost()
	h.vpt[0], h.vpt[3] = 2, 2
	r.SetCanvas(h)
	r.SetScaleX(3)
	d = r.CacheCanvasDimensions()
	assert.Equal(t, 6.0, d.ZoomX)
	assert.Equal(t, 2.0, d.ZoomY)
	assert.Equal(t, 608, d.Width)
	assert.Equal(t, 104, d.Height)
}

func TestShouldCache(t *testing.T) {
	r := NewRect(0, 0, 10, 10)
	assert.True(t, r.ShouldCache())

	r.ObjectCaching = false
	assert.False(t, r.ShouldCache())

	r.ClipPath = NewCircle(0, 0, 5)
	assert.True(t, r.NeedsItsOwnCache())
	assert.True(t, r.ShouldCache())

	r.ClipPath = nil
	r.PaintFirst = "stroke"
	r.Stroke = "red"
	r.Shadow = &Shadow{Color: "black", Blur: 2}
	assert.True(t, r.NeedsItsOwnCache())
}

func cacheCommands(t *testing.T, o *Object) []surface.Command {
	t.Helper()
	require.NotNil(t, o.cache.surface)
	rec, ok := o.cache.surface.Image().(*surface.Recording)
	require.True(t, ok)
	return rec.Commands
}

func findOp(cmds []surface.Command, op string) int {
	for i, c := range cmds {
		if c.Op == op {
			return i
		}
	}
	return -1
}

func TestRenderCacheRedrawsOnlyWhenDirty(t *testing.T) {
	r := NewRect(0, 0, 100, 50)
	from := surface.NewRecorder(300, 150, nil)

	r.RenderCache(from, false)
	assert.False(t, r.Dirty)
	first := cacheCommands(t, &r.Object)
	require.NotEmpty(t, first)
	assert.GreaterOrEqual(t, findOp(first, "fill"), 0)

	r.RenderCache(from, false)
	assert.Len(t, cacheCommands(t, &r.Object), len(first))

	r.SetFill("red")
	assert.True(t, r.IsCacheDirty(true))
	r.RenderCache(from, false)
	assert.False(t, r.Dirty)
	redrawn := cacheCommands(t, &r.Object)
	assert.Len(t, redrawn, len(first))
	assert.Contains(t, redrawn, surface.Command{Op: "fillStyle", Value: "red"})
}

func TestIsCacheDirty(t *testing.T) {
	from := surface.NewRecorder(300, 150, nil)

	t.Run("clean after render", func(t *testing.T) {
		r := NewRect(0, 0, 100, 50)
		r.RenderCache(from, false)
		assert.False(t, r.IsCacheDirty(true))
		assert.False(t, r.IsCacheDirty(false))
	})
	t.Run("paint write", func(t *testing.T) {
		r := NewRect(0, 0, 100, 50)
		r.RenderCache(from, false)
		r.SetBackgroundColor("blue")
		assert.True(t, r.IsCacheDirty(true))
	})
	t.Run("size change", func(t *testing.T) {
		r := NewRect(0, 0, 100, 50)
		r.RenderCache(from, false)
		r.Dirty = false
		r.width = 200
		assert.True(t, r.IsCacheDirty(false))
		assert.Equal(t, 203, r.Cache().Width)
	})
	t.Run("absolute positioned clip path", func(t *testing.T) {
		r := NewRect(0, 0, 100, 50)
		clip := NewCircle(0, 0, 20)
		clip.AbsolutePositioned = true
		r.SetClipPath(clip)
		r.RenderCache(from, false)
		assert.False(t, r.Dirty)
		assert.True(t, r.IsCacheDirty(true))
		assert.True(t, r.IsCacheDirty(false))
	})
	t.Run("invisible", func(t *testing.T) {
		r := NewRect(0, 0, 100, 50)
		r.RenderCache(from, false)
		r.SetFill("red")
		r.SetVisible(false)
		assert.False(t, r.IsCacheDirty(true))
	})
}

func TestRenderCacheMasksWithClipPath(t *testing.T) {
	tests := []struct {
		name     string
		inverted bool
		op       surface.CompositeOp
	}{
		{name: "keeps the inside", op: surface.DestinationIn},
		{name: "inverted removes the inside", inverted: true, op: surface.DestinationOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRect(0, 0, 100, 50)
			clip := NewCircle(0, 0, 20)
			clip.Inverted = tt.inverted
			r.SetClipPath(clip)
			r.RenderCache(surface.NewRecorder(300, 150, nil), false)

			cmds := cacheCommands(t, &r.Object)
			d := r.Cache()
			i := -1
			for j, c := range cmds {
				if c.Op == "drawImage" && c.Commands != nil {
					i = j
				}
			}
			require.GreaterOrEqual(t, i, 2)
			layer := cmds[i]
			assert.Equal(t, d.Width, layer.Width)
			assert.Equal(t, d.Height, layer.Height)
			assert.Equal(t, []float64{0, 0, float64(d.Width), float64(d.Height)}, layer.Args)
			assert.Equal(t, surface.Command{Op: "globalCompositeOperation", Value: string(tt.op)}, cmds[i-2])
			assert.Equal(t, "setTransform", cmds[i-1].Op)

			assert.Equal(t, surface.Command{Op: "translate", Args: []float64{d.X, d.Y}}, layer.Commands[0])
			assert.Equal(t, surface.Command{Op: "scale", Args: []float64{d.ZoomX, d.ZoomY}}, layer.Commands[1])
			assert.Contains(t, layer.Commands, surface.Command{Op: "fillStyle", Value: "#000000"})
		})
	}
}

func TestDrawCacheOnCanvasUndoesZoom(t *testing.T) {
	h := newTestHost()
	h.vpt[0], h.vpt[3] = 2, 2
	r := NewRect(0, 0, 100, 50)
	r.SetCanvas(h)
	r.SetScaleX(3)
	r.RenderCache(surface.NewRecorder(300, 150, nil), false)

	d := r.Cache()
	require.Equal(t, 6.0, d.ZoomX)
	require.Equal(t, 2.0, d.ZoomY)

	target := surface.NewRecorder(300, 150, nil)
	r.DrawCacheOnCanvas(target)
	cmds := target.Commands()
	require.Len(t, cmds, 2)

	assert.Equal(t, "scale", cmds[0].Op)
	assert.InDeltaSlice(t, []float64{1.0 / 6, 0.5}, cmds[0].Args, 1e-12)

	assert.Equal(t, "drawImage", cmds[1].Op)
	assert.Equal(t, []float64{-d.X, -d.Y, float64(d.Width), float64(d.Height)}, cmds[1].Args)
	assert.Equal(t, d.Width, cmds[1].Width)
	assert.Equal(t, d.Height, cmds[1].Height)
	assert.NotEmpty(t, cmds[1].Commands)
}
