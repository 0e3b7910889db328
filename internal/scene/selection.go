package scene

// Stacking orders for ActiveSelection.MultiSelectAdd.
const (
	StackingCanvas    = "canvas-stacking"
	StackingSelection = "selection-order"
)

// ActiveSelection temporarily groups objects picked together. Members keep
// their parent so they return to it on deselect.
type ActiveSelection struct {
	Group

	MultiSelectionStacking string
}

// NewActiveSelection wraps objects in a selection.
func NewActiveSelection(objects []Drawable) *ActiveSelection {
	s := &ActiveSelection{MultiSelectionStacking: StackingCanvas}
	s.initGroup(s, objects, GroupOptions{})
	s.SetCoords()
	return s
}

func (s *ActiveSelection) Type() string { return "activeselection" }

func (s *ActiveSelection) shouldCache() bool { return false }
func (s *ActiveSelection) isOnACache() bool  { return false }

func (s *ActiveSelection) setNestedCoords() {
	for _, d := range s.objects {
		d.Base().SetCoords()
	}
}

// MultiSelectAdd adds targets keeping canvas stacking order unless the
// selection keeps pick order.
func (s *ActiveSelection) MultiSelectAdd(targets ...Drawable) {
	if s.MultiSelectionStacking == StackingSelection {
		s.Add(targets...)
		return
	}
	for _, t := range targets {
		at := len(s.objects)
		for i, d := range s.objects {
			if d.Base().IsInFrontOf(t.Base()) {
				at = i
				break
			}
		}
		s.InsertAt(at, t)
	}
}

func (s *ActiveSelection) canEnterGroup(d Drawable) bool {
	o := d.Base()
	other, isGroup := d.(interface{ AsGroup() *Group })
	for _, m := range s.objects {
		mb := m.Base()
		mg, mIsGroup := m.(interface{ AsGroup() *Group })
		if (isGroup && mb.IsDescendantOf(other.AsGroup())) || (mIsGroup && o.IsDescendantOf(mg.AsGroup())) {
			s.logger().Error("active selection: cannot select an object and its ancestor together")
			return false
		}
	}
	return s.Group.canEnterGroup(d)
}

// enterGroup takes the member out of its own group without touching its
// parent link.
func (s *ActiveSelection) enterGroup(d Drawable, removeParentTransform bool) bool {
	o := d.Base()
	switch {
	case o.parent != nil && o.parent == o.group:
		o.parent.detach(d, false)
	case o.group != nil && o.parent != o.group:
		o.group.Remove(d)
	}
	s.attach(d, removeParentTransform)
	return true
}

// exitGroup hands the member back to its parent.
func (s *ActiveSelection) exitGroup(d Drawable, removeParentTransform bool) {
	s.detach(d, removeParentTransform)
	if p := d.Base().parent; p != nil {
		p.attach(d, true)
	}
}

func (s *ActiveSelection) onAfterObjectsChange(t LayoutTrigger, targets []Drawable) {
	s.Group.onAfterObjectsChange(t, targets)
	seen := map[*Group]bool{}
	for _, d := range targets {
		p := d.Base().parent
		if p == nil || seen[p] {
			continue
		}
		seen[p] = true
		if t == LayoutRemoved {
			p.behaviour().onAfterObjectsChange(LayoutAdded, targets)
		} else {
			p.MarkDirty()
		}
	}
}

// OnDeselect releases every member.
func (s *ActiveSelection) OnDeselect() bool {
	s.RemoveAll()
	return false
}
