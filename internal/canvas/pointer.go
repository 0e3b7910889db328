package canvas

import (
	"math"

	"github.com/inamate/inamate/canvas-go/internal/event"
	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/intersect"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

// PointerInfo is the payload of the mouse:* events.
type PointerInfo struct {
	E             PointerEvent
	Target        scene.Drawable
	SubTargets    []scene.Drawable
	ScenePoint    geom.Point
	ViewportPoint geom.Point
	IsClick       bool
	Transform     *scene.Transform
}

// TransformEndInfo is the payload of object:modified.
type TransformEndInfo struct {
	E         PointerEvent
	Target    scene.Drawable
	Transform *scene.Transform
	Action    string
}

// groupSelector is the drag selection box, anchored at (x, y) in the scene
// plane.
type groupSelector struct {
	x, y           float64
	deltaX, deltaY float64
}

// Transform is the drag session in progress, if any.
func (c *Canvas) Transform() *scene.Transform { return c.transform }

// Hovered is the object the pointer last moved over.
func (c *Canvas) Hovered() scene.Drawable { return c.hovered }

// PointerDown starts a drag: a transform when the press lands on the
// active object or one of its controls, a drag selection on empty space.
func (c *Canvas) PointerDown(e PointerEvent) {
	if c.disposed || !c.Interactive {
		return
	}
	c.isClick = true
	c.cacheTarget(e)
	c.handleEvent(e, "down:before")
	if c.transform != nil {
		return
	}
	target := c.pointerTarget
	shouldRender := c.shouldRender(target)
	grouped := false
	if c.handleMultiSelection(e, target) {
		target = c.active
		grouped = true
		shouldRender = true
	} else if c.shouldClearSelection(e, target) {
		c.discardActiveObjectWithEvent(e)
	}

	if c.Selection && (target == nil || (!target.Base().Selectable && target != c.active)) {
		p := c.ScenePoint(e.Point)
		c.groupSelector = &groupSelector{x: p.X, y: p.Y}
	}

	if target != nil {
		o := target.Base()
		alreadySelected := target == c.active
		if o.Selectable {
			c.setActiveObjectWithEvent(target, e)
		}
		_, control, onControl := o.FindControl(e.Point, e.Touch)
		if target == c.active && (onControl || !grouped) {
			c.setupCurrentTransform(e, target, alreadySelected)
			if onControl && control.MouseDownHandler != nil {
				p := c.ScenePoint(e.Point)
				control.MouseDownHandler(e, c.transform, p.X, p.Y)
			}
		}
	}
	c.handleEvent(e, "down")
	if shouldRender {
		c.RequestRenderAll()
	}
}

// PointerMove grows the drag selection, runs the transform in progress or
// updates hover state and the cursor.
func (c *Canvas) PointerMove(e PointerEvent) {
	if c.disposed || !c.Interactive {
		return
	}
	c.isClick = false
	c.cacheTarget(e)
	c.handleEvent(e, "move:before")
	switch {
	case c.groupSelector != nil:
		p := c.ScenePoint(e.Point)
		c.groupSelector.deltaX = p.X - c.groupSelector.x
		c.groupSelector.deltaY = p.Y - c.groupSelector.y
		c.RenderTop()
	case c.transform == nil:
		target := c.FindTarget(e)
		c.setCursorFromEvent(e, target)
		c.fireOverOutEvents(e, target)
	default:
		c.transformObject(e)
	}
	c.handleEvent(e, "move")
}

// PointerUp ends the transform or the drag selection.
func (c *Canvas) PointerUp(e PointerEvent) {
	if c.disposed || !c.Interactive {
		return
	}
	t := c.transform
	c.cacheTarget(e)
	target, isClick := c.pointerTarget, c.isClick
	c.handleEvent(e, "up:before")

	shouldRender := false
	if t != nil {
		c.finalizeCurrentTransform(e)
		shouldRender = t.ActionPerformed
	}
	if !isClick {
		wasActive := target != nil && target == c.active
		c.handleSelection(e)
		if !shouldRender {
			shouldRender = c.shouldRender(target) || (!wasActive && target != nil && target == c.active)
		}
	}

	var corner string
	if target != nil {
		o := target.Base()
		key, control, ok := o.FindControl(e.Point, e.Touch)
		corner = key
		if ok && control.MouseUpHandler != nil {
			p := c.ScenePoint(e.Point)
			control.MouseUpHandler(e, t, p.X, p.Y)
		}
		o.IsMoving = false
	}
	if t != nil && (t.Target != target || t.Corner != corner) {
		if original, ok := t.Target.Base().Controls[t.Corner]; ok && original.MouseUpHandler != nil {
			p := c.ScenePoint(e.Point)
			original.MouseUpHandler(e, t, p.X, p.Y)
		}
	}
	c.setCursorFromEvent(e, target)
	c.handleEvent(e, "up")
	c.groupSelector = nil
	c.transform = nil
	if target != nil {
		target.Base().ClearActiveControl()
	}
	if shouldRender {
		c.RequestRenderAll()
	} else if !isClick {
		c.RenderTop()
	}
}

func (c *Canvas) cacheTarget(e PointerEvent) {
	if c.transform != nil {
		c.pointerTarget = c.transform.Target
		return
	}
	c.pointerTarget = c.FindTarget(e)
}

func (c *Canvas) handleEvent(e PointerEvent, kind string) {
	info := PointerInfo{
		E:             e,
		Target:        c.pointerTarget,
		SubTargets:    c.subTargets,
		ScenePoint:    c.ScenePoint(e.Point),
		ViewportPoint: e.Point,
		IsClick:       c.isClick,
		Transform:     c.transform,
	}
	c.Fire("mouse:"+kind, event.Event{Target: c.pointerTarget, Payload: info})
	if c.pointerTarget == nil {
		return
	}
	name := "mouse" + kind
	c.pointerTarget.Base().Fire(name, event.Event{Name: name, Target: c.pointerTarget, Payload: info})
	for _, sub := range c.subTargets {
		sub.Base().Fire(name, event.Event{Name: name, Target: sub, Payload: info})
	}
}

// shouldRender reports whether pressing on target changes what the
// controls layer shows.
func (c *Canvas) shouldRender(target scene.Drawable) bool {
	return (c.active == nil) != (target == nil) || (c.active != nil && target != nil && c.active != target)
}

func (c *Canvas) selectionKeyPressed(e PointerEvent) bool {
	return c.SelectionKey != "" && e.Modifier(c.SelectionKey)
}

func (c *Canvas) shouldClearSelection(e PointerEvent, target scene.Drawable) bool {
	if target == nil {
		return true
	}
	o := target.Base()
	actives := c.ActiveObjects()
	switch {
	case c.active != nil && len(actives) > 1 && !containsDrawable(actives, target) &&
		c.active != target && !c.selectionKeyPressed(e):
		return true
	case !o.Evented:
		return true
	case !o.Selectable && c.active != nil && c.active != target:
		return true
	}
	return false
}

func containsDrawable(list []scene.Drawable, d scene.Drawable) bool {
	for _, x := range list {
		if x == d {
			return true
		}
	}
	return false
}

func asGroup(d scene.Drawable) *scene.Group {
	if g, ok := d.(interface{ AsGroup() *scene.Group }); ok {
		return g.AsGroup()
	}
	return nil
}

// handleMultiSelection adds target to (or removes it from) the selection
// when the selection key is held. It reports whether it did.
func (c *Canvas) handleMultiSelection(e PointerEvent, target scene.Drawable) bool {
	active := c.active
	if active == nil || target == nil || !c.Selection || !c.selectionKeyPressed(e) {
		return false
	}
	sel := c.activeSelection()
	if !target.Base().Selectable || (active == target && sel == nil) {
		return false
	}
	if sel == nil {
		ag, tg := asGroup(active), asGroup(target)
		if (ag != nil && target.Base().IsDescendantOf(ag)) || (tg != nil && active.Base().IsDescendantOf(tg)) {
			return false
		}
	}
	if s, ok := target.(interface{ OnSelect() bool }); ok && s.OnSelect() {
		return false
	}
	if key, _ := active.Base().ActiveControl(); key != "" {
		return false
	}

	if sel != nil {
		before := sel.Objects()
		if target == active {
			target = c.searchPossibleTargets(before, e.Point)
			if target == nil {
				target = c.searchPossibleTargets(c.Collection.Objects(), e.Point)
			}
			if target == nil || !target.Base().Selectable {
				return false
			}
		}
		if target.Base().Group() == &sel.Group {
			sel.Remove(target)
			c.hovered = target
			if sel.Size() == 1 {
				c.setActiveObject(sel.Item(0), e)
			}
		} else {
			sel.MultiSelectAdd(target)
			c.hovered = sel
		}
		c.fireSelectionEvents(before, e)
		return true
	}

	created := c.newActiveSelection(active, target)
	c.hovered = created
	c.setActiveObject(created, e)
	c.fireSelectionEvents([]scene.Drawable{active}, e)
	return true
}

// handleSelection turns the drag selection box into a selection.
func (c *Canvas) handleSelection(e PointerEvent) bool {
	g := c.groupSelector
	if !c.Selection || g == nil {
		return false
	}
	p1 := geom.Pt(g.x, g.y)
	p2 := p1.Add(geom.Pt(g.deltaX, g.deltaY))
	tl, br := p1.Min(p2), p1.Max(p2)
	size := br.Subtract(tl)
	collected := c.CollectObjects(geom.Rect{Left: tl.X, Top: tl.Y, Width: size.X, Height: size.Y}, !c.SelectionFullyContained)

	var objects []scene.Drawable
	switch {
	case p1.Eq(p2):
		if len(collected) > 0 {
			objects = collected[:1]
		}
	case len(collected) > 1:
		for i := len(collected) - 1; i >= 0; i-- {
			d := collected[i]
			if s, ok := d.(interface{ OnSelect() bool }); ok && s.OnSelect() {
				continue
			}
			objects = append(objects, d)
		}
	default:
		objects = collected
	}
	switch {
	case len(objects) == 1:
		c.setActiveObjectWithEvent(objects[0], e)
	case len(objects) > 1:
		c.setActiveObjectWithEvent(c.newActiveSelection(objects...), e)
	}
	c.groupSelector = nil
	return true
}

// FindTarget returns the object under the pointer. Controls and the body
// of the active object win over objects stacked above it.
func (c *Canvas) FindTarget(e PointerEvent) scene.Drawable {
	pointer := e.Point
	c.subTargets = nil
	if c.active != nil {
		if _, _, ok := c.active.Base().FindControl(pointer, e.Touch); ok {
			return c.active
		}
		if c.activeSelection() != nil && c.searchPossibleTargets([]scene.Drawable{c.active}, pointer) != nil {
			return c.active
		}
		if c.searchPossibleTargets([]scene.Drawable{c.active}, pointer) == c.active {
			if !c.PreserveStacking {
				return c.active
			}
			subs := c.subTargets
			c.subTargets = nil
			target := c.searchPossibleTargets(c.Collection.Objects(), pointer)
			if c.AltSelectionKey != "" && e.Modifier(c.AltSelectionKey) && target != nil && target != c.active {
				c.subTargets = subs
				return c.active
			}
			return target
		}
	}
	return c.searchPossibleTargets(c.Collection.Objects(), pointer)
}

func (c *Canvas) checkTarget(d scene.Drawable, pointer geom.Point) bool {
	o := d.Base()
	return o.Visible && o.Evented && c.pointIsInSelectionArea(o, c.ScenePoint(pointer))
}

// pointIsInSelectionArea tests p against the object's corners grown by
// its padding.
func (c *Canvas) pointIsInSelectionArea(o *scene.Object, p geom.Point) bool {
	coords := o.Coords()
	if padding := o.Padding / c.Zoom(); padding != 0 && len(coords) == 4 {
		tl, tr, br, bl := coords[0], coords[1], coords[2], coords[3]
		a := math.Atan2(tr.Y-tl.Y, tr.X-tl.X)
		cosP, sinP := math.Cos(a)*padding, math.Sin(a)*padding
		sum, diff := cosP+sinP, cosP-sinP
		coords = []geom.Point{
			geom.Pt(tl.X-diff, tl.Y-sum),
			geom.Pt(tr.X+sum, tr.Y-diff),
			geom.Pt(br.X+diff, br.Y+sum),
			geom.Pt(bl.X-sum, bl.Y+diff),
		}
	}
	return intersect.IsPointInPolygon(p, coords)
}

func (c *Canvas) searchTargets(objects []scene.Drawable, pointer geom.Point) scene.Drawable {
	for i := len(objects) - 1; i >= 0; i-- {
		d := objects[i]
		if !c.checkTarget(d, pointer) {
			continue
		}
		if g := asGroup(d); g != nil && g.SubTargetCheck {
			if sub := c.searchTargets(g.Objects(), pointer); sub != nil {
				c.subTargets = append(c.subTargets, sub)
			}
		}
		return d
	}
	return nil
}

// searchPossibleTargets finds the topmost hit. Inside interactive groups
// the deepest non-interactive sub target is returned instead.
func (c *Canvas) searchPossibleTargets(objects []scene.Drawable, pointer geom.Point) scene.Drawable {
	target := c.searchTargets(objects, pointer)
	if g := asGroup(target); g != nil && g.Interactive && len(c.subTargets) > 0 {
		for i := len(c.subTargets) - 1; i > 0; i-- {
			t := c.subTargets[i]
			if tg := asGroup(t); tg == nil || !tg.Interactive {
				return t
			}
		}
		return c.subTargets[0]
	}
	return target
}

func (c *Canvas) setCursorFromEvent(e PointerEvent, target scene.Drawable) {
	if target == nil {
		c.cursor = c.DefaultCursor
		return
	}
	o := target.Base()
	hover := o.HoverCursor
	if hover == "" {
		hover = c.HoverCursor
	}
	sel := c.activeSelection()
	var control *scene.Control
	onControl := false
	if sel == nil || o.Group() != &sel.Group {
		_, control, onControl = o.FindControl(e.Point, e.Touch)
	}
	if onControl {
		c.cursor = control.Cursor(e, o)
		return
	}
	if g := asGroup(target); g != nil && g.SubTargetCheck {
		for i := len(c.subTargets) - 1; i >= 0; i-- {
			if h := c.subTargets[i].Base().HoverCursor; h != "" {
				hover = h
			}
		}
	}
	c.cursor = hover
}

// fireOverOutEvents fires mouse:out on the previous hover target and
// mouse:over on the new one.
func (c *Canvas) fireOverOutEvents(e PointerEvent, target scene.Drawable) {
	old := c.hovered
	if old == target {
		return
	}
	if old != nil {
		c.Fire("mouse:out", event.Event{Target: old, Payload: PointerInfo{E: e, Target: target}})
		old.Base().Fire("mouseout", event.Event{Name: "mouseout", Target: old, Payload: e})
	}
	if target != nil {
		c.Fire("mouse:over", event.Event{Target: target, Payload: PointerInfo{E: e, Target: old}})
		target.Base().Fire("mouseover", event.Event{Name: "mouseover", Target: target, Payload: e})
	}
	c.hovered = target
}

// --- transforms ---

// shouldCenterTransform reports whether action runs around the center.
// The centered key inverts the canvas or object default.
func (c *Canvas) shouldCenterTransform(o *scene.Object, action string, modifier bool) bool {
	var centered bool
	switch action {
	case scene.ActionScale, scene.ActionScaleX, scene.ActionScaleY, scene.ActionResizing:
		centered = c.CenteredScaling || o.CenteredScaling
	case scene.ActionRotate:
		centered = c.CenteredRotation || o.CenteredRotation
	}
	if centered {
		return !modifier
	}
	return modifier
}

// parentPlanePoint expresses a viewport point in the plane the target's
// geometry lives in.
func (c *Canvas) parentPlanePoint(o *scene.Object, viewport geom.Point) geom.Point {
	p := c.ScenePoint(viewport)
	if g := o.Group(); g != nil {
		p = p.Transform(g.CalcTransformMatrix(false).Invert(), false)
	}
	return p
}

func (c *Canvas) setupCurrentTransform(e PointerEvent, target scene.Drawable, alreadySelected bool) {
	o := target.Base()
	p := c.parentPlanePoint(o, e.Point)
	corner, control := o.ActiveControl()
	handler := scene.ActionHandler(scene.DragHandler)
	if alreadySelected && control != nil {
		handler = control.ActionHandler
	}
	action := scene.ActionFromCorner(alreadySelected, corner, e, o)
	altKey := c.CenteredKey != "" && e.Modifier(c.CenteredKey)
	ox, oy := scene.OriginFromControl(o, corner)
	if c.shouldCenterTransform(o, action, altKey) {
		ox, oy = geom.OriginCenter, geom.OriginCenter
	}
	original := scene.SaveObjectTransform(o)
	original.OriginX, original.OriginY = ox, oy
	c.transform = &scene.Transform{
		Target:        target,
		Action:        action,
		ActionHandler: handler,
		Corner:        corner,
		ScaleX:        o.ScaleX(),
		ScaleY:        o.ScaleY(),
		SkewX:         o.SkewX(),
		SkewY:         o.SkewY(),
		OffsetX:       p.X - o.Left(),
		OffsetY:       p.Y - o.Top(),
		OriginX:       ox,
		OriginY:       oy,
		Ex:            p.X,
		Ey:            p.Y,
		LastX:         p.X,
		LastY:         p.Y,
		Theta:         geom.DegreesToRadians(o.Angle()),
		Width:         o.Width(),
		Height:        o.Height(),
		ShiftKey:      e.Shift,
		AltKey:        altKey,
		Original:      original,
	}
	c.Fire("before:transform", event.Event{Target: target, Payload: c.transform})
}

func (c *Canvas) transformObject(e PointerEvent) {
	t := c.transform
	o := t.Target.Base()
	p := c.parentPlanePoint(o, e.Point)
	t.ShiftKey = e.Shift
	t.AltKey = c.CenteredKey != "" && e.Modifier(c.CenteredKey)

	performed := t.ActionHandler != nil && t.ActionHandler(e, t, p.X, p.Y)
	if performed {
		o.SetCoords()
	}
	if t.Action == scene.ActionDrag && performed {
		o.IsMoving = true
		c.cursor = o.MoveCursor
		if c.cursor == "" {
			c.cursor = c.MoveCursor
		}
	}
	t.ActionPerformed = t.ActionPerformed || performed
	if t.ActionPerformed {
		c.RequestRenderAll()
	}
}

func (c *Canvas) finalizeCurrentTransform(e PointerEvent) {
	t := c.transform
	o := t.Target.Base()
	o.SetCoords()
	if !t.ActionPerformed {
		return
	}
	info := TransformEndInfo{E: e, Target: t.Target, Transform: t, Action: t.Action}
	c.Fire("object:modified", event.Event{Target: t.Target, Payload: info})
	o.Fire("modified", event.Event{Name: "modified", Target: t.Target, Payload: info})
}

func (c *Canvas) endCurrentTransform(e PointerEvent) {
	t := c.transform
	if t == nil {
		return
	}
	c.finalizeCurrentTransform(e)
	t.Target.Base().IsMoving = false
	c.transform = nil
}
