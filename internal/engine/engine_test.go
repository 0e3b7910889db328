package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

func twoRects(t *testing.T) (string, string, string) {
	t.Helper()
	a := scene.NewRect(10, 10, 40, 40)
	a.SetStrokeWidth(0)
	b := scene.NewRect(100, 10, 40, 40)
	b.SetStrokeWidth(0)
	doc := document.NewEmpty(200, 100)
	for _, r := range []*scene.Rect{a, b} {
		raw, err := json.Marshal(r.Base())
		require.NoError(t, err)
		doc.Objects = append(doc.Objects, raw)
	}
	data, err := doc.Marshal()
	require.NoError(t, err)
	return string(data), a.ID, b.ID
}

func TestLoadAndHitTest(t *testing.T) {
	e := NewEngine(Options{Width: 200, Height: 100})
	doc, a, b := twoRects(t)
	require.NoError(t, e.LoadDocument(doc))

	assert.Equal(t, a, e.HitTest(20, 20))
	assert.Equal(t, b, e.HitTest(120, 20))
	assert.Equal(t, "", e.HitTest(80, 80))

	assert.Error(t, e.LoadDocument(`{"objects":[{"type":"nope"}]}`))
	assert.Equal(t, a, e.HitTest(20, 20))
}

func TestTickRendersOnce(t *testing.T) {
	e := NewEngine(Options{Width: 200, Height: 100})
	doc, _, _ := twoRects(t)
	require.NoError(t, e.LoadDocument(doc))

	out := e.Tick(time.Now())
	require.NotEmpty(t, out)
	var f Frame
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.Equal(t, 200, f.Width)
	assert.NotEmpty(t, f.Lower)
	assert.Equal(t, "default", f.Cursor)

	assert.Empty(t, e.Tick(time.Now()))
}

func TestDragThroughEngine(t *testing.T) {
	e := NewEngine(Options{Width: 200, Height: 100})
	doc, a, _ := twoRects(t)
	require.NoError(t, e.LoadDocument(doc))

	e.PointerDown(30, 30, Modifiers{})
	e.PointerMove(35, 40, Modifiers{})
	e.PointerUp(35, 40, Modifiers{})

	assert.Equal(t, `["`+a+`"]`, e.GetSelection())
	assert.Equal(t, []string{a}, e.TakeModified())
	assert.Nil(t, e.TakeModified())

	var bounds geom.Rect
	require.NoError(t, json.Unmarshal([]byte(e.GetSelectionBounds()), &bounds))
	assert.InDelta(t, 15, bounds.Left, 1e-9)
	assert.InDelta(t, 20, bounds.Top, 1e-9)
}

func TestUpdateDocumentKeepsSelectionAndView(t *testing.T) {
	e := NewEngine(Options{Width: 200, Height: 100})
	doc, a, b := twoRects(t)
	require.NoError(t, e.LoadDocument(doc))
	e.SetSelection([]string{a, b, "obj_missing"})
	e.ZoomToPoint(0, 0, 2)

	require.NoError(t, e.UpdateDocument(e.GetDocument()))
	assert.Equal(t, `["`+a+`","`+b+`"]`, e.GetSelection())
	assert.Equal(t, `[2,0,0,2,0,0]`, e.GetViewport())

	e.ResetView()
	assert.Equal(t, `[1,0,0,1,0,0]`, e.GetViewport())
}

func TestAnimate(t *testing.T) {
	e := NewEngine(Options{Width: 200, Height: 100})
	doc, a, _ := twoRects(t)
	require.NoError(t, e.LoadDocument(doc))

	require.NoError(t, e.Animate(a, "top", 50, 10))
	start := time.Now()
	e.Tick(start)
	e.Tick(start.Add(20 * time.Millisecond))
	assert.InDelta(t, 50, e.Canvas().FindByID(a).Base().Top(), 1e-9)

	assert.Error(t, e.Animate("obj_missing", "top", 1, 10))
	assert.Error(t, e.Animate(a, "stroke", 1, 10))
}
