package scene

import (
	"slices"

	"github.com/inamate/inamate/canvas-go/internal/geom"
)

// collectionHooks are the callbacks an owner of a Collection implements.
type collectionHooks interface {
	onObjectAdded(d Drawable)
	onObjectRemoved(d Drawable)
	onStackOrderChanged(d Drawable)
}

// Collection is an ordered, back-to-front list of objects.
type Collection struct {
	objects []Drawable
	hooks   collectionHooks
}

// CollectionFuncs reports membership changes to an owner outside this
// package. Nil funcs are skipped.
type CollectionFuncs struct {
	Added     func(Drawable)
	Removed   func(Drawable)
	Reordered func(Drawable)
}

func (f CollectionFuncs) onObjectAdded(d Drawable) {
	if f.Added != nil {
		f.Added(d)
	}
}

func (f CollectionFuncs) onObjectRemoved(d Drawable) {
	if f.Removed != nil {
		f.Removed(d)
	}
}

func (f CollectionFuncs) onStackOrderChanged(d Drawable) {
	if f.Reordered != nil {
		f.Reordered(d)
	}
}

// NewCollection returns an empty collection reporting to f.
func NewCollection(f CollectionFuncs) *Collection {
	return &Collection{hooks: f}
}

// Container is anything holding a Collection.
type Container interface {
	Objects(types ...string) []Drawable
	Contains(d Drawable, deep bool) bool
}

func indexOf(objects []Drawable, d Drawable) int {
	for i, o := range objects {
		if o == d {
			return i
		}
	}
	return -1
}

// Add appends objects and returns the new size.
func (c *Collection) Add(objects ...Drawable) int {
	c.objects = append(c.objects, objects...)
	for _, o := range objects {
		c.hooks.onObjectAdded(o)
	}
	return len(c.objects)
}

// InsertAt inserts objects at index and returns the new size.
func (c *Collection) InsertAt(index int, objects ...Drawable) int {
	index = max(0, min(index, len(c.objects)))
	c.objects = slices.Insert(c.objects, index, objects...)
	for _, o := range objects {
		c.hooks.onObjectAdded(o)
	}
	return len(c.objects)
}

// Remove drops the given objects and returns the ones that were members.
func (c *Collection) Remove(objects ...Drawable) []Drawable {
	var removed []Drawable
	for _, o := range objects {
		i := indexOf(c.objects, o)
		if i == -1 {
			continue
		}
		c.objects = slices.Delete(c.objects, i, i+1)
		removed = append(removed, o)
		c.hooks.onObjectRemoved(o)
	}
	return removed
}

// Objects returns a copy of the members, optionally filtered by type.
func (c *Collection) Objects(types ...string) []Drawable {
	if len(types) == 0 {
		return slices.Clone(c.objects)
	}
	var out []Drawable
	for _, o := range c.objects {
		if slices.Contains(types, o.Type()) {
			out = append(out, o)
		}
	}
	return out
}

func (c *Collection) Item(i int) Drawable {
	if i < 0 || i >= len(c.objects) {
		return nil
	}
	return c.objects[i]
}

func (c *Collection) IsEmpty() bool { return len(c.objects) == 0 }
func (c *Collection) Size() int     { return len(c.objects) }

// Contains reports membership; deep also searches nested containers.
func (c *Collection) Contains(d Drawable, deep bool) bool {
	if indexOf(c.objects, d) > -1 {
		return true
	}
	if !deep {
		return false
	}
	for _, o := range c.objects {
		if sub, ok := o.(Container); ok && sub.Contains(d, true) {
			return true
		}
	}
	return false
}

func (c *Collection) complexity() int {
	n := 0
	for _, o := range c.objects {
		n += o.Base().Complexity()
	}
	return n
}

func (c *Collection) move(d Drawable, to int) {
	i := indexOf(c.objects, d)
	if i > -1 {
		c.objects = slices.Delete(c.objects, i, i+1)
	}
	to = max(0, min(to, len(c.objects)))
	c.objects = slices.Insert(c.objects, to, d)
	c.hooks.onStackOrderChanged(d)
}

// SendObjectToBack moves d to index 0.
func (c *Collection) SendObjectToBack(d Drawable) bool {
	if d == nil || len(c.objects) == 0 || c.objects[0] == d {
		return false
	}
	c.move(d, 0)
	return true
}

// BringObjectToFront moves d to the top.
func (c *Collection) BringObjectToFront(d Drawable) bool {
	if d == nil || len(c.objects) == 0 || c.objects[len(c.objects)-1] == d {
		return false
	}
	c.move(d, len(c.objects))
	return true
}

// SendObjectBackwards moves d down one step, or below the nearest
// overlapping object when intersecting is set.
func (c *Collection) SendObjectBackwards(d Drawable, intersecting bool) bool {
	if d == nil {
		return false
	}
	i := indexOf(c.objects, d)
	if i <= 0 {
		return false
	}
	c.move(d, c.findNewLowerIndex(d, i, intersecting))
	return true
}

// BringObjectForward moves d up one step, or above the nearest overlapping
// object when intersecting is set.
func (c *Collection) BringObjectForward(d Drawable, intersecting bool) bool {
	if d == nil {
		return false
	}
	i := indexOf(c.objects, d)
	if i == -1 || i == len(c.objects)-1 {
		return false
	}
	c.move(d, c.findNewUpperIndex(d, i, intersecting))
	return true
}

// MoveObjectTo repositions d at index.
func (c *Collection) MoveObjectTo(d Drawable, index int) bool {
	if index >= 0 && index < len(c.objects) && c.objects[index] == d {
		return false
	}
	c.move(d, index)
	return true
}

func (c *Collection) findNewLowerIndex(d Drawable, idx int, intersecting bool) int {
	if !intersecting {
		return idx - 1
	}
	for i := idx - 1; i >= 0; i-- {
		if d.Base().IsOverlapping(c.objects[i].Base()) {
			return i
		}
	}
	return idx
}

func (c *Collection) findNewUpperIndex(d Drawable, idx int, intersecting bool) int {
	if !intersecting {
		return idx + 1
	}
	for i := idx + 1; i < len(c.objects); i++ {
		if d.Base().IsOverlapping(c.objects[i].Base()) {
			return i
		}
	}
	return idx
}

// CollectObjects returns the selectable, visible objects touching r, topmost
// first. Without includeIntersecting only fully contained objects match.
func (c *Collection) CollectObjects(r geom.Rect, includeIntersecting bool) []Drawable {
	tl := geom.Pt(r.Left, r.Top)
	br := tl.Add(geom.Pt(r.Width, r.Height))
	var out []Drawable
	for i := len(c.objects) - 1; i >= 0; i-- {
		o := c.objects[i].Base()
		if !o.Selectable || !o.Visible {
			continue
		}
		if (includeIntersecting && o.IntersectsWithRect(tl, br)) ||
			o.IsContainedWithinRect(tl, br) ||
			(includeIntersecting && o.ContainsPoint(tl)) ||
			(includeIntersecting && o.ContainsPoint(br)) {
			out = append(out, c.objects[i])
		}
	}
	return out
}
