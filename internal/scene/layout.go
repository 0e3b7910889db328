package scene

import (
	"slices"

	"github.com/inamate/inamate/canvas-go/internal/event"
	"github.com/inamate/inamate/canvas-go/internal/geom"
)

// LayoutTrigger names why a layout runs.
type LayoutTrigger string

const (
	LayoutInitialization  LayoutTrigger = "initialization"
	LayoutAdded           LayoutTrigger = "added"
	LayoutRemoved         LayoutTrigger = "removed"
	LayoutObjectModified  LayoutTrigger = "object_modified"
	LayoutObjectModifying LayoutTrigger = "object_modifying"
	LayoutImperative      LayoutTrigger = "imperative"
)

// LayoutContext describes one layout pass.
type LayoutContext struct {
	Type    LayoutTrigger
	Target  *Group
	Targets []Drawable

	// Strategy overrides the manager's strategy for this pass.
	Strategy     LayoutStrategy
	PrevStrategy LayoutStrategy

	// Trigger and Event are set for member modification passes.
	Trigger string
	Event   *event.Event

	// X and Y place the group on initialization.
	X, Y *float64
	// Overrides replaces the computed result on imperative passes.
	Overrides *LayoutResult
	// Deep relayouts nested groups first on imperative passes.
	Deep bool

	// NoBubble keeps the pass from reaching the parent group.
	NoBubble bool
	Path     []*Group
}

// StopPropagation keeps the pass from bubbling to the parent group.
func (c *LayoutContext) StopPropagation() { c.NoBubble = true }

// LayoutResult is a strategy's answer: the new center in the group's parent
// plane, the new size, and optional corrections.
type LayoutResult struct {
	Center             geom.Point
	Size               geom.Point
	Correction         geom.Point
	RelativeCorrection geom.Point
}

// committedLayout is what a pass applied.
type committedLayout struct {
	Result     *LayoutResult
	PrevCenter geom.Point
	NextCenter geom.Point
	Offset     geom.Point
}

// LayoutManager recomputes a group's size and position from its members.
type LayoutManager struct {
	Strategy LayoutStrategy

	prevStrategy  LayoutStrategy
	subscriptions map[Drawable][]func()
}

// NewLayoutManager returns a manager using s, or FitContent when s is nil.
func NewLayoutManager(s LayoutStrategy) *LayoutManager {
	if s == nil {
		s = FitContent
	}
	return &LayoutManager{Strategy: s, subscriptions: make(map[Drawable][]func())}
}

// PerformLayout runs one layout pass.
func (m *LayoutManager) PerformLayout(ctx LayoutContext) {
	if ctx.Strategy == nil {
		ctx.Strategy = m.Strategy
	}
	ctx.PrevStrategy = m.prevStrategy

	m.onBeforeLayout(&ctx)
	res := m.layoutResult(&ctx)
	if res != nil {
		m.commitLayout(&ctx, res)
	}
	m.onAfterLayout(&ctx, res)
	m.prevStrategy = ctx.Strategy
}

var layoutEvents = []string{
	"modified", "moving", "resizing", "rotating", "scaling", "skewing",
	"changed", "modifyPoly", "modifyPath",
}

func (m *LayoutManager) subscribe(d Drawable, target *Group) {
	m.unsubscribe(d)
	disposers := make([]func(), 0, len(layoutEvents))
	for _, name := range layoutEvents {
		trigger := name
		disposers = append(disposers, d.Base().On(trigger, func(e event.Event) {
			t := LayoutObjectModifying
			if trigger == "modified" {
				t = LayoutObjectModified
			}
			m.PerformLayout(LayoutContext{Type: t, Trigger: trigger, Event: &e, Target: target})
		}))
	}
	m.subscriptions[d] = disposers
}

func (m *LayoutManager) unsubscribe(d Drawable) {
	for _, dispose := range m.subscriptions[d] {
		dispose()
	}
	delete(m.subscriptions, d)
}

func (m *LayoutManager) unsubscribeAll() {
	for d := range m.subscriptions {
		m.unsubscribe(d)
	}
}

func (m *LayoutManager) onBeforeLayout(ctx *LayoutContext) {
	target := ctx.Target
	switch {
	case len(ctx.Path) > 0:
		// bubbled from a nested group; the targets are not our members
	case ctx.Type == LayoutInitialization || ctx.Type == LayoutAdded:
		for _, d := range ctx.Targets {
			m.subscribe(d, target)
		}
	case ctx.Type == LayoutRemoved:
		for _, d := range ctx.Targets {
			m.unsubscribe(d)
		}
	}
	target.Fire("layout:before", event.Event{Name: "layout:before", Target: target.self, Payload: ctx})
	if target.canvas != nil {
		target.canvas.Fire("object:layout:before", event.Event{Name: "object:layout:before", Target: target.self, Payload: ctx})
	}
	if ctx.Type == LayoutImperative && ctx.Deep {
		for _, d := range target.objects {
			sub, ok := d.(interface{ AsGroup() *Group })
			if !ok || sub.AsGroup().LayoutManager == nil {
				continue
			}
			child := sub.AsGroup()
			child.LayoutManager.PerformLayout(LayoutContext{
				Type: ctx.Type, Targets: ctx.Targets, Deep: true, Target: child,
				Overrides: ctx.Overrides, NoBubble: true,
			})
		}
	}
}

func (m *LayoutManager) layoutResult(ctx *LayoutContext) *committedLayout {
	target := ctx.Target
	res := ctx.Strategy.CalcLayoutResult(ctx, target.objects)
	if res == nil {
		return nil
	}
	var prev geom.Point
	toOwn := geom.Identity()
	if ctx.Type != LayoutInitialization {
		prev = target.RelativeCenterPoint()
		toOwn = target.CalcOwnMatrix().Invert()
	}
	offset := prev.Subtract(res.Center).Add(res.Correction).Transform(toOwn, true).Add(res.RelativeCorrection)
	return &committedLayout{Result: res, PrevCenter: prev, NextCenter: res.Center, Offset: offset}
}

func (m *LayoutManager) commitLayout(ctx *LayoutContext, l *committedLayout) {
	target := ctx.Target
	size := l.Result.Size
	target.SetWidth(size.X)
	target.SetHeight(size.Y)
	m.layoutObjects(ctx, l)
	if ctx.Type == LayoutInitialization {
		left := l.NextCenter.X + size.X*geom.ResolveOrigin(target.originX)
		top := l.NextCenter.Y + size.Y*geom.ResolveOrigin(target.originY)
		if ctx.X != nil {
			left = *ctx.X
		}
		if ctx.Y != nil {
			top = *ctx.Y
		}
		target.SetPosition(left, top)
		return
	}
	target.SetPositionByOrigin(l.NextCenter, geom.OriginCenter, geom.OriginCenter)
	target.SetCoords()
	target.Dirty = true
}

func (m *LayoutManager) layoutObjects(ctx *LayoutContext, l *committedLayout) {
	target := ctx.Target
	for _, d := range target.objects {
		if o := d.Base(); o.group == target {
			layoutObject(o, l.Offset)
		}
	}
	if ctx.Strategy.ShouldLayoutClipPath(ctx) {
		layoutObject(target.ClipPath.Base(), l.Offset)
	}
}

func layoutObject(o *Object, offset geom.Point) {
	o.SetPosition(o.left+offset.X, o.top+offset.Y)
}

func (m *LayoutManager) onAfterLayout(ctx *LayoutContext, l *committedLayout) {
	target := ctx.Target
	target.Fire("layout:after", event.Event{Name: "layout:after", Target: target.self, Payload: l})
	if target.canvas != nil {
		target.canvas.Fire("object:layout:after", event.Event{Name: "object:layout:after", Target: target.self, Payload: l})
	}
	if parent := target.parent; !ctx.NoBubble && parent != nil && parent.LayoutManager != nil {
		parent.LayoutManager.PerformLayout(LayoutContext{
			Type:    ctx.Type,
			Targets: ctx.Targets,
			Trigger: ctx.Trigger,
			Event:   ctx.Event,
			Target:  parent,
			Path:    append(slices.Clone(ctx.Path), target),
		})
	}
	target.Dirty = true
}

// ObjectBounds returns the two extreme corners of d's box in dest's plane.
func ObjectBounds(dest *Group, d Drawable) (geom.Point, geom.Point) {
	o := d.Base()
	var t *geom.Matrix2D
	if o.group != nil && o.group != dest {
		t = geom.Ref(geom.CalcPlaneChangeMatrix(geom.Ref(o.group.CalcTransformMatrix(false)), geom.Ref(dest.CalcTransformMatrix(false))))
	}
	center := o.RelativeCenterPoint()
	if t != nil {
		center = center.Transform(*t, false)
	}
	accountForStroke := true
	if s, ok := o.self.(interface{ isStrokeAccountedForInDimensions() bool }); ok {
		accountForStroke = !s.isStrokeAccountedForInDimensions()
	}
	var uniform geom.Point
	if o.strokeUniform && accountForStroke {
		uniform = geom.SendVectorToPlane(geom.Pt(o.strokeWidth, o.strokeWidth), nil, geom.Ref(dest.CalcTransformMatrix(false)))
	}
	scaling := 0.0
	if !o.strokeUniform && accountForStroke {
		scaling = o.strokeWidth
	}
	own := o.CalcOwnMatrix()
	size := geom.SizeAfterTransform(o.width+scaling, o.height+scaling, geom.MultiplyAll(true, t, &own)).
		Add(uniform).ScalarDivide(2)
	return center.Subtract(size), center.Add(size)
}
