//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/inamate/inamate/canvas-go/internal/surface"
)

// measurer asks the page's 2D context for text metrics so layout matches
// what the browser draws. Without a usable context it falls back to the
// bundled font book.
type measurer struct {
	ctx      js.Value
	fallback *surface.FontBook
}

func newMeasurer() *measurer {
	m := &measurer{fallback: surface.NewFontBook()}
	doc := js.Global().Get("document")
	if doc.Truthy() {
		canvas := doc.Call("createElement", "canvas")
		m.ctx = canvas.Call("getContext", "2d")
	}
	return m
}

func (m *measurer) MeasureText(f surface.Font, s string) surface.TextMetrics {
	if !m.ctx.Truthy() {
		return m.fallback.MeasureText(f, s)
	}
	m.ctx.Set("font", f.CSS())
	tm := m.ctx.Call("measureText", s)
	metrics := surface.TextMetrics{Width: tm.Get("width").Float()}
	if a := tm.Get("fontBoundingBoxAscent"); a.Type() == js.TypeNumber {
		metrics.Ascent = a.Float()
		metrics.Descent = tm.Get("fontBoundingBoxDescent").Float()
	} else {
		metrics.Ascent, metrics.Descent = f.Size*0.8, f.Size*0.2
	}
	return metrics
}
