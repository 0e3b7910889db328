package scene

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/inamate/inamate/canvas-go/internal/filter"
)

var (
	// ErrUnknownType is returned for a record whose type is not registered.
	ErrUnknownType = errors.New("unknown object type")
	// ErrAborted is returned when enlivening is cancelled. It matches
	// context.Canceled with errors.Is.
	ErrAborted = fmt.Errorf("enliven aborted: %w", context.Canceled)
)

// Factory returns a fresh object of one type with default state.
type Factory func() Drawable

// Registry turns records back into live objects.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory

	// Loader resolves image sources; records with a src fail without it
	// only when the image has to be fetched.
	Loader ImageLoader
	// Filters runs image filter chains. Nil keeps each image's default.
	Filters filter.Backend
}

// NewRegistry returns a registry with no types.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with every built-in object kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("rect", func() Drawable { return NewRect(0, 0, 0, 0) })
	r.Register("circle", func() Drawable { return NewCircle(0, 0, 0) })
	r.Register("ellipse", func() Drawable { return NewEllipse(0, 0, 0, 0) })
	r.Register("line", func() Drawable { return NewLine(0, 0, 0, 0) })
	r.Register("polyline", func() Drawable { return NewPolyline(nil) })
	r.Register("polygon", func() Drawable { return NewPolygon(nil) })
	r.Register("path", func() Drawable { return NewPathFromCommands(nil) })
	r.Register("text", func() Drawable { return NewText("", 0, 0) })
	r.Register("textbox", func() Drawable { return NewTextbox("", 0, 0, 0) })
	r.Register("image", func() Drawable { return NewImage(nil, "") })
	r.Register("group", func() Drawable { return NewGroup(nil, GroupOptions{}) })
	r.Register("activeselection", func() Drawable { return NewActiveSelection(nil) })
	return r
}

// Register adds or replaces the factory for typ.
func (r *Registry) Register(typ string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typ] = f
}

// Types lists the registered type names.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New creates a default object of typ.
func (r *Registry) New(typ string) (Drawable, error) {
	r.mu.RLock()
	f, ok := r.factories[typ]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	return f(), nil
}

// Enliven builds the object a record describes, including its clip path
// and members.
func (r *Registry) Enliven(ctx context.Context, data []byte) (Drawable, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrAborted
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	d, err := r.New(head.Type)
	if err != nil {
		return nil, err
	}
	if err := d.Base().decode(ctx, r, data); err != nil {
		d.Base().Dispose()
		if ctx.Err() != nil {
			return nil, ErrAborted
		}
		return nil, fmt.Errorf("enliven %s: %w", head.Type, err)
	}
	d.Base().SetCoords()
	return d, nil
}

// EnlivenObjects builds every record concurrently and returns them in
// input order. On failure or cancellation nothing is returned and the
// objects already built are disposed.
func (r *Registry) EnlivenObjects(ctx context.Context, records []json.RawMessage) ([]Drawable, error) {
	out := make([]Drawable, len(records))
	g, gctx := errgroup.WithContext(ctx)
	for i, raw := range records {
		g.Go(func() error {
			d, err := r.Enliven(gctx, raw)
			if err != nil {
				return err
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, d := range out {
			if d != nil {
				d.Base().Dispose()
			}
		}
		if ctx.Err() != nil {
			return nil, ErrAborted
		}
		return nil, err
	}
	return out, nil
}
