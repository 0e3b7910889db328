//go:build js && wasm

package main

import (
	"syscall/js"
	"time"

	"github.com/inamate/inamate/canvas-go/internal/engine"
)

var eng *engine.Engine

func main() {
	width, height := 800, 600
	if w := js.Global().Get("innerWidth"); w.Type() == js.TypeNumber {
		width, height = w.Int(), js.Global().Get("innerHeight").Int()
	}
	eng = engine.NewEngine(engine.Options{
		Width:    width,
		Height:   height,
		Measurer: newMeasurer(),
	})

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("loadDocument", js.FuncOf(loadDocument))
	api.Set("updateDocument", js.FuncOf(updateDocument))
	api.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	api.Set("resize", js.FuncOf(resize))
	api.Set("pointerDown", js.FuncOf(pointer(eng.PointerDown)))
	api.Set("pointerMove", js.FuncOf(pointer(eng.PointerMove)))
	api.Set("pointerUp", js.FuncOf(pointer(eng.PointerUp)))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("zoomToPoint", js.FuncOf(zoomToPoint))
	api.Set("pan", js.FuncOf(pan))
	api.Set("resetView", js.FuncOf(resetView))
	api.Set("animate", js.FuncOf(animate))
	api.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← engine) ---
	api.Set("render", js.FuncOf(query(eng.Render)))
	api.Set("getSelectionBounds", js.FuncOf(query(eng.GetSelectionBounds)))
	api.Set("getSelection", js.FuncOf(query(eng.GetSelection)))
	api.Set("getViewport", js.FuncOf(query(eng.GetViewport)))
	api.Set("getDocument", js.FuncOf(query(eng.GetDocument)))
	api.Set("getSVG", js.FuncOf(query(eng.GetSVG)))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("takeModified", js.FuncOf(takeModified))

	js.Global().Set("inamateEngine", api)
	js.Global().Set("inamateWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func result(err error) any {
	if err != nil {
		return js.ValueOf(map[string]any{"error": err.Error()})
	}
	return js.ValueOf(map[string]any{"ok": true})
}

func missing(what string) any {
	return js.ValueOf(map[string]any{"error": "missing " + what})
}

func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("document JSON")
	}
	return result(eng.LoadDocument(args[0].String()))
}

func updateDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("document JSON")
	}
	return result(eng.UpdateDocument(args[0].String()))
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	return result(eng.LoadSampleDocument())
}

func resize(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("width and height")
	}
	eng.Resize(args[0].Int(), args[1].Int())
	return nil
}

// pointer adapts pointerDown/Move/Up(x, y, event). The third argument is
// the DOM event or any object with its modifier flags.
func pointer(fn func(x, y float64, mods engine.Modifiers)) func(js.Value, []js.Value) any {
	return func(this js.Value, args []js.Value) any {
		if len(args) < 2 {
			return nil
		}
		var mods engine.Modifiers
		if len(args) > 2 && args[2].Type() == js.TypeObject {
			ev := args[2]
			mods = engine.Modifiers{
				Shift: ev.Get("shiftKey").Truthy(),
				Alt:   ev.Get("altKey").Truthy(),
				Ctrl:  ev.Get("ctrlKey").Truthy(),
				Meta:  ev.Get("metaKey").Truthy(),
				Touch: ev.Get("pointerType").Truthy() && ev.Get("pointerType").String() == "touch",
			}
		}
		fn(args[0].Float(), args[1].Float(), mods)
		return nil
	}
}

func setSelection(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}
	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

func zoomToPoint(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return nil
	}
	eng.ZoomToPoint(args[0].Float(), args[1].Float(), args[2].Float())
	return nil
}

func pan(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return nil
	}
	eng.Pan(args[0].Float(), args[1].Float())
	return nil
}

func resetView(this js.Value, args []js.Value) any {
	eng.ResetView()
	return nil
}

func animate(this js.Value, args []js.Value) any {
	if len(args) < 4 {
		return missing("id, property, value and duration")
	}
	return result(eng.Animate(args[0].String(), args[1].String(), args[2].Float(), args[3].Int()))
}

// tick is called once per requestAnimationFrame. It returns
// the frame JSON, or null when nothing was painted.
func tick(this js.Value, args []js.Value) any {
	frame := eng.Tick(time.Now())
	if frame == "" {
		return js.Null()
	}
	return js.ValueOf(frame)
}

func query(fn func() string) func(js.Value, []js.Value) any {
	return func(this js.Value, args []js.Value) any {
		return js.ValueOf(fn())
	}
}

func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.Null()
	}
	id := eng.HitTest(args[0].Float(), args[1].Float())
	if id == "" {
		return js.Null()
	}
	return js.ValueOf(id)
}

func takeModified(this js.Value, args []js.Value) any {
	ids := eng.TakeModified()
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return js.ValueOf(out)
}
