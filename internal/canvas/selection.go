package canvas

import (
	"slices"

	"github.com/inamate/inamate/canvas-go/internal/event"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

// PointerEvent is a pointer input in viewport pixels with its modifiers.
type PointerEvent = scene.PointerEvent

// SelectionEvent is the payload of the selection:* events.
type SelectionEvent struct {
	E          PointerEvent
	Selected   []scene.Drawable
	Deselected []scene.Drawable
}

func (c *Canvas) activeSelection() *scene.ActiveSelection {
	s, _ := c.active.(*scene.ActiveSelection)
	return s
}

// ActiveObjects returns the selected objects: the members of an active
// selection, or the single active object.
func (c *Canvas) ActiveObjects() []scene.Drawable {
	if s := c.activeSelection(); s != nil {
		return s.Objects()
	}
	if c.active != nil {
		return []scene.Drawable{c.active}
	}
	return nil
}

// SetActiveObject selects d and fires the selection events. It reports
// whether d became active.
func (c *Canvas) SetActiveObject(d scene.Drawable) bool {
	return c.setActiveObjectWithEvent(d, PointerEvent{})
}

func (c *Canvas) setActiveObjectWithEvent(d scene.Drawable, e PointerEvent) bool {
	before := c.ActiveObjects()
	ok := c.setActiveObject(d, e)
	c.fireSelectionEvents(before, e)
	return ok
}

// SelectObjects makes an active selection of objects, or selects the one
// object given.
func (c *Canvas) SelectObjects(objects ...scene.Drawable) bool {
	switch len(objects) {
	case 0:
		return c.DiscardActiveObject()
	case 1:
		return c.SetActiveObject(objects[0])
	}
	return c.SetActiveObject(c.newActiveSelection(objects...))
}

func (c *Canvas) newActiveSelection(objects ...scene.Drawable) *scene.ActiveSelection {
	sel := scene.NewActiveSelection(nil)
	sel.SetCanvas(c)
	sel.MultiSelectAdd(objects...)
	return sel
}

func (c *Canvas) setActiveObject(d scene.Drawable, e PointerEvent) bool {
	prev := c.active
	if prev == d {
		return false
	}
	if !c.discardActive(e) && c.active != nil {
		return false
	}
	if s, ok := d.(interface{ OnSelect() bool }); ok && s.OnSelect() {
		return false
	}
	c.active = d
	if sel, ok := d.(*scene.ActiveSelection); ok && sel.Canvas() == nil {
		sel.SetCanvas(c)
	}
	d.Base().SetCoords()
	return true
}

// discardActive drops the active object without firing selection events.
// It reports false when there was nothing to drop or the object refused.
func (c *Canvas) discardActive(e PointerEvent) bool {
	obj := c.active
	if obj == nil {
		return false
	}
	if d, ok := obj.(interface{ OnDeselect() bool }); ok && d.OnDeselect() {
		return false
	}
	if c.transform != nil && c.transform.Target == obj {
		c.endCurrentTransform(e)
	}
	if _, isSel := obj.(*scene.ActiveSelection); isSel && obj == c.hovered {
		c.hovered = nil
	}
	c.active = nil
	return true
}

// DiscardActiveObject clears the selection and fires the events.
func (c *Canvas) DiscardActiveObject() bool {
	return c.discardActiveObjectWithEvent(PointerEvent{})
}

func (c *Canvas) discardActiveObjectWithEvent(e PointerEvent) bool {
	before := c.ActiveObjects()
	if len(before) > 0 {
		c.Fire("before:selection:cleared", event.Event{Payload: SelectionEvent{E: e, Deselected: []scene.Drawable{c.active}}})
	}
	ok := c.discardActive(e)
	c.fireSelectionEvents(before, e)
	return ok
}

func (c *Canvas) fireSelectionEvents(before []scene.Drawable, e PointerEvent) {
	now := c.ActiveObjects()
	var added, removed []scene.Drawable
	for _, d := range before {
		if !slices.Contains(now, d) {
			d.Base().Fire("deselected", event.Event{Name: "deselected", Target: d, Payload: e})
			removed = append(removed, d)
		}
	}
	for _, d := range now {
		if !slices.Contains(before, d) {
			d.Base().Fire("selected", event.Event{Name: "selected", Target: d, Payload: e})
			added = append(added, d)
		}
	}
	switch {
	case len(before) > 0 && len(now) > 0:
		if len(added) > 0 || len(removed) > 0 {
			c.Fire("selection:updated", event.Event{Payload: SelectionEvent{E: e, Selected: added, Deselected: removed}})
		}
	case len(now) > 0:
		c.Fire("selection:created", event.Event{Payload: SelectionEvent{E: e, Selected: added}})
	case len(before) > 0:
		c.Fire("selection:cleared", event.Event{Payload: SelectionEvent{E: e, Deselected: removed}})
	}
}
