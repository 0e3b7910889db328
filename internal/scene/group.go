package scene

import (
	"github.com/inamate/inamate/canvas-go/internal/event"
	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/surface"
)

// Group is an object that owns other objects and renders them in its plane.
type Group struct {
	Object
	Collection

	LayoutManager *LayoutManager
	// SubTargetCheck lets pointer targeting reach into the group.
	SubTargetCheck bool
	// Interactive lets members be selected while grouped.
	Interactive bool

	ownCaching bool
}

// GroupOptions configure NewGroup. Nil position fields let the initial
// layout place the group around its members.
type GroupOptions struct {
	Layout  *LayoutManager
	Left    *float64
	Top     *float64
	OriginX geom.Origin
	OriginY geom.Origin
}

// groupBehaviour holds the membership steps ActiveSelection overrides.
type groupBehaviour interface {
	enterGroup(d Drawable, removeParentTransform bool) bool
	exitGroup(d Drawable, removeParentTransform bool)
	canEnterGroup(d Drawable) bool
	onAfterObjectsChange(t LayoutTrigger, targets []Drawable)
}

// NewGroup groups objects without moving them on screen.
func NewGroup(objects []Drawable, opts GroupOptions) *Group {
	g := &Group{}
	g.initGroup(g, objects, opts)
	return g
}

func (g *Group) initGroup(self Drawable, objects []Drawable, opts GroupOptions) {
	g.Object.init(self)
	g.strokeWidth = 0
	if opts.OriginX != "" {
		g.originX = opts.OriginX
	}
	if opts.OriginY != "" {
		g.originY = opts.OriginY
	}
	g.hooks = g
	g.objects = append([]Drawable(nil), objects...)
	for _, o := range g.objects {
		g.behaviour().enterGroup(o, false)
	}
	g.LayoutManager = opts.Layout
	if g.LayoutManager == nil {
		g.LayoutManager = NewLayoutManager(nil)
	}
	g.LayoutManager.PerformLayout(LayoutContext{
		Type:    LayoutInitialization,
		Target:  g,
		Targets: append([]Drawable(nil), objects...),
		X:       opts.Left,
		Y:       opts.Top,
	})
}

func (g *Group) Type() string { return "group" }

// AsGroup returns the group part of a group-like object.
func (g *Group) AsGroup() *Group { return g }

func (g *Group) behaviour() groupBehaviour {
	if b, ok := g.self.(groupBehaviour); ok {
		return b
	}
	return g
}

// DrawShape is a no-op; groups paint through their members.
func (g *Group) DrawShape(surface.Context) {}

// Render paints the group and its members. Members rendered during the call
// only apply their own matrix.
func (g *Group) Render(ctx surface.Context) {
	g.transformDone = true
	g.Object.Render(ctx)
	g.transformDone = false
}

func (g *Group) drawObject(ctx surface.Context, _ bool, dc *drawContext) {
	g.renderBackground(ctx)
	preserve := false
	if p, ok := g.canvas.(interface{ PreserveObjectStacking() bool }); ok && g.canvas != nil {
		preserve = p.PreserveObjectStacking()
	}
	for _, d := range g.objects {
		o := d.Base()
		switch {
		case preserve && o.group != g:
			ctx.Save()
			ctx.Transform(g.CalcTransformMatrix(false).Invert())
			d.Render(ctx)
			ctx.Restore()
		case o.group == g:
			d.Render(ctx)
		}
	}
	g.drawClipPath(ctx, g.ClipPath, dc)
}

// IsOnACache reports whether the group or an ancestor paints from a cache.
func (g *Group) IsOnACache() bool {
	if c, ok := g.self.(interface{ isOnACache() bool }); ok {
		return c.isOnACache()
	}
	return g.ownCaching || (g.parent != nil && g.parent.IsOnACache())
}

func (g *Group) shouldCache() bool {
	own := g.shouldCacheBase()
	if own {
		for _, d := range g.objects {
			if d.Base().WillDrawShadow() {
				g.ownCaching = false
				return false
			}
		}
	}
	g.ownCaching = own
	return own
}

func (g *Group) willDrawShadow() bool {
	if g.willDrawOwnShadow() {
		return true
	}
	for _, d := range g.objects {
		if d.Base().WillDrawShadow() {
			return true
		}
	}
	return false
}

func (g *Group) setChildrenCanvas(h Host) {
	for _, d := range g.objects {
		d.Base().SetCanvas(h)
	}
}

func (g *Group) setNestedCoords() {
	if !g.SubTargetCheck {
		return
	}
	for _, d := range g.objects {
		d.Base().SetCoords()
	}
}

// isStrokeAccountedForInDimensions: a group's size already covers member
// strokes.
func (g *Group) isStrokeAccountedForInDimensions() bool { return true }

func (g *Group) dispose() {
	g.LayoutManager.unsubscribeAll()
	for _, d := range g.objects {
		d.Base().Dispose()
	}
}

func (g *Group) canEnterGroup(d Drawable) bool {
	if d.Base() == &g.Object {
		g.logger().Error("group: circular object trees are not supported")
		return false
	}
	if other, ok := d.(interface{ AsGroup() *Group }); ok && g.IsDescendantOf(other.AsGroup()) {
		g.logger().Error("group: circular object trees are not supported")
		return false
	}
	if indexOf(g.objects, d) != -1 {
		g.logger().Error("group: duplicate objects are not supported")
		return false
	}
	return true
}

func (g *Group) filterObjectsBeforeEnteringGroup(objects []Drawable) []Drawable {
	var out []Drawable
	for i, d := range objects {
		if indexOf(objects, d) == i && g.behaviour().canEnterGroup(d) {
			out = append(out, d)
		}
	}
	return out
}

// Add appends members, moving them into the group plane, and relayouts.
func (g *Group) Add(objects ...Drawable) int {
	allowed := g.filterObjectsBeforeEnteringGroup(objects)
	n := g.Collection.Add(allowed...)
	g.behaviour().onAfterObjectsChange(LayoutAdded, allowed)
	return n
}

// InsertAt inserts members at index and relayouts.
func (g *Group) InsertAt(index int, objects ...Drawable) int {
	allowed := g.filterObjectsBeforeEnteringGroup(objects)
	n := g.Collection.InsertAt(index, allowed...)
	g.behaviour().onAfterObjectsChange(LayoutAdded, allowed)
	return n
}

// Remove takes members out, restoring their canvas plane geometry.
func (g *Group) Remove(objects ...Drawable) []Drawable {
	removed := g.Collection.Remove(objects...)
	g.behaviour().onAfterObjectsChange(LayoutRemoved, removed)
	return removed
}

// RemoveAll empties the group.
func (g *Group) RemoveAll() []Drawable {
	return g.Remove(g.Objects()...)
}

func (g *Group) onObjectAdded(d Drawable) {
	g.behaviour().enterGroup(d, true)
	g.Fire("object:added", event.Event{Name: "object:added", Target: d})
	d.Base().Fire("added", event.Event{Name: "added", Target: g.self})
}

func (g *Group) onObjectRemoved(d Drawable) {
	g.behaviour().exitGroup(d, false)
	g.Fire("object:removed", event.Event{Name: "object:removed", Target: d})
	d.Base().Fire("removed", event.Event{Name: "removed", Target: g.self})
}

func (g *Group) onStackOrderChanged(Drawable) { g.MarkDirty() }

func (g *Group) onAfterObjectsChange(t LayoutTrigger, targets []Drawable) {
	g.LayoutManager.PerformLayout(LayoutContext{Type: t, Targets: targets, Target: g})
}

// enterGroup makes g the member's group and parent, leaving any previous
// group first.
func (g *Group) enterGroup(d Drawable, removeParentTransform bool) bool {
	o := d.Base()
	if o.group != nil {
		o.group.Remove(d)
	}
	o.parent = g
	g.attach(d, removeParentTransform)
	return true
}

func (g *Group) exitGroup(d Drawable, removeParentTransform bool) {
	g.detach(d, removeParentTransform)
	o := d.Base()
	o.parent = nil
	o.SetCanvas(nil)
}

// attach links the member to g. With removeParentTransform the member's
// geometry is rewritten from its current plane into g's plane.
func (g *Group) attach(d Drawable, removeParentTransform bool) {
	o := d.Base()
	if removeParentTransform {
		applyTransformToObject(o, geom.Multiply(
			g.CalcTransformMatrix(false).Invert(), o.CalcTransformMatrix(false), false))
	}
	o.group = g
	o.touch()
	o.SetCanvas(g.canvas)
	o.SetCoords()
}

// detach unlinks the member. Without removeParentTransform its geometry is
// rewritten into the plane g lives in, so it stays put on screen.
func (g *Group) detach(d Drawable, removeParentTransform bool) {
	o := d.Base()
	o.group = nil
	o.touch()
	if !removeParentTransform {
		applyTransformToObject(o, geom.Multiply(g.CalcTransformMatrix(false), o.CalcTransformMatrix(false), false))
		o.SetCoords()
	}
}

// TriggerLayout runs an imperative layout, optionally with a new strategy or
// explicit result overrides.
func (g *Group) TriggerLayout(ctx LayoutContext) {
	ctx.Type = LayoutImperative
	ctx.Target = g
	g.LayoutManager.PerformLayout(ctx)
}
