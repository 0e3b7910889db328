package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/event"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

// withRealizedTransform runs fn with d expressed in the canvas plane when
// it sits in the active selection, restoring it afterwards.
func (c *Canvas) withRealizedTransform(d scene.Drawable, fn func()) {
	o := d.Base()
	sel := c.activeSelection()
	if sel == nil || o.Group() != &sel.Group {
		fn()
		return
	}
	saved := scene.SaveObjectTransform(o)
	m := sel.CalcOwnMatrix()
	scene.SendObjectToPlane(o, &m, nil)
	defer scene.RestoreObjectTransform(o, saved)
	fn()
}

func (c *Canvas) record(d scene.Drawable) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	c.withRealizedTransform(d, func() {
		data, err = json.Marshal(d.Base())
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s %s: %w", d.Type(), d.Base().ID, err)
	}
	return data, nil
}

func (c *Canvas) optionalRecord(d scene.Drawable) (json.RawMessage, error) {
	if d == nil || d.Base().ExcludeFromExport {
		return nil, nil
	}
	return c.record(d)
}

// ToObject returns the canvas as a document. Objects in the active
// selection are recorded where they appear on screen.
func (c *Canvas) ToObject() (*document.Document, error) {
	doc := document.NewEmpty(c.Width, c.Height)
	doc.Background = c.BackgroundColor
	doc.Overlay = c.OverlayColor
	for _, d := range c.Collection.Objects() {
		if d.Base().ExcludeFromExport {
			continue
		}
		raw, err := c.record(d)
		if err != nil {
			return nil, err
		}
		doc.Objects = append(doc.Objects, raw)
	}
	var err error
	if doc.BackgroundImage, err = c.optionalRecord(c.BackgroundImage); err != nil {
		return nil, err
	}
	if doc.OverlayImage, err = c.optionalRecord(c.OverlayImage); err != nil {
		return nil, err
	}
	if doc.ClipPath, err = c.optionalRecord(c.ClipPath); err != nil {
		return nil, err
	}
	return doc, nil
}

// ToJSON marshals ToObject.
func (c *Canvas) ToJSON() ([]byte, error) {
	doc, err := c.ToObject()
	if err != nil {
		return nil, err
	}
	return doc.Marshal()
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// LoadFromJSON replaces the canvas content with a document. Every record
// is enlivened first; the canvas is only cleared and repopulated once all
// of them succeed, so on error or cancellation it is left untouched.
func (c *Canvas) LoadFromJSON(ctx context.Context, data []byte) error {
	if c.disposed {
		return ErrDisposed
	}
	doc, err := document.Parse(data)
	if err != nil {
		return err
	}

	var (
		objects             []scene.Drawable
		bg, overlay, clipTo scene.Drawable
	)
	g, gctx := errgroup.WithContext(ctx)
	optional := func(raw json.RawMessage, dst *scene.Drawable) func() error {
		return func() error {
			if !present(raw) {
				return nil
			}
			d, err := c.Registry.Enliven(gctx, raw)
			if err != nil {
				return err
			}
			*dst = d
			return nil
		}
	}
	g.Go(func() error {
		var err error
		objects, err = c.Registry.EnlivenObjects(gctx, doc.Objects)
		return err
	})
	g.Go(optional(doc.BackgroundImage, &bg))
	g.Go(optional(doc.OverlayImage, &overlay))
	g.Go(optional(doc.ClipPath, &clipTo))
	if err := g.Wait(); err != nil {
		for _, d := range append(objects, bg, overlay, clipTo) {
			if d != nil {
				d.Base().Dispose()
			}
		}
		if ctx.Err() != nil {
			return scene.ErrAborted
		}
		return fmt.Errorf("load document: %w", err)
	}

	renderOnAddRemove := c.RenderOnAddRemove
	c.RenderOnAddRemove = false
	c.Clear()
	if doc.Width > 0 && doc.Height > 0 && (doc.Width != c.Width || doc.Height != c.Height) {
		c.SetDimensions(doc.Width, doc.Height)
	}
	c.BackgroundColor = doc.Background
	c.OverlayColor = doc.Overlay
	c.BackgroundImage, c.OverlayImage, c.ClipPath = bg, overlay, clipTo
	for _, d := range []scene.Drawable{bg, overlay, clipTo} {
		if d != nil {
			d.Base().SetCanvas(c)
		}
	}
	c.Add(objects...)
	c.RenderOnAddRemove = renderOnAddRemove
	c.Logger.Debug("canvas: document loaded", "objects", len(objects))
	c.Fire("canvas:loaded", event.Event{Payload: doc})
	c.RequestRenderAll()
	return nil
}
