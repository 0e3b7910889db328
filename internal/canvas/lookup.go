package canvas

import "github.com/inamate/inamate/canvas-go/internal/scene"

// FindByID returns the object with id, searching inside groups too.
func (c *Canvas) FindByID(id string) scene.Drawable {
	if id == "" {
		return nil
	}
	return findByID(c.Collection.Objects(), id)
}

func findByID(objects []scene.Drawable, id string) scene.Drawable {
	for _, d := range objects {
		if d.Base().ID == id {
			return d
		}
		if g := asGroup(d); g != nil {
			if found := findByID(g.Objects(), id); found != nil {
				return found
			}
		}
	}
	return nil
}

// SelectIDs selects the objects with the given ids; unknown ids are
// skipped. It reports whether the selection changed.
func (c *Canvas) SelectIDs(ids []string) bool {
	var objects []scene.Drawable
	for _, id := range ids {
		if d := c.FindByID(id); d != nil && d.Base().Selectable {
			objects = append(objects, d)
		}
	}
	return c.SelectObjects(objects...)
}

// SelectedIDs returns the ids of the selected objects.
func (c *Canvas) SelectedIDs() []string {
	active := c.ActiveObjects()
	ids := make([]string, len(active))
	for i, d := range active {
		ids[i] = d.Base().ID
	}
	return ids
}
