package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/inamate/inamate/canvas-go/internal/canvas"
	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

var (
	// ErrUnknownOperation is returned for an operation type the server
	// does not apply.
	ErrUnknownOperation = errors.New("unknown operation type")
	// ErrObjectNotFound is returned when an operation names a missing object.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidOperation is returned for malformed operation fields.
	ErrInvalidOperation = errors.New("invalid operation")
)

// transformKeys are the properties object.transform may change.
var transformKeys = []string{"left", "top", "scaleX", "scaleY", "angle", "skewX", "skewY"}

// DocumentState holds the authoritative document of a room. Operations are
// applied to live scene objects on a headless canvas so every mutation goes
// through the same decoding and grouping rules as the editor.
type DocumentState struct {
	mu        sync.Mutex
	canvas    *canvas.Canvas
	serverSeq int64
	savedSeq  int64
}

// Size of the document a room starts from when the project has none.
const (
	blankWidth  = 1280
	blankHeight = 720
)

// NewDocumentState enlivens a document. An empty data starts from a blank
// document.
func NewDocumentState(ctx context.Context, data []byte, reg *scene.Registry, logger *slog.Logger) (*DocumentState, error) {
	doc := document.NewEmpty(blankWidth, blankHeight)
	if len(data) > 0 {
		var err error
		if doc, err = document.Parse(data); err != nil {
			return nil, err
		}
	}
	width, height := doc.Width, doc.Height
	if width <= 0 || height <= 0 {
		width, height = blankWidth, blankHeight
	}
	data, err := doc.Marshal()
	if err != nil {
		return nil, err
	}

	opts := canvas.DefaultOptions(width, height)
	opts.Interactive = false
	opts.Selection = false
	opts.RenderOnAddRemove = false
	opts.Registry = reg
	opts.Logger = logger
	c := canvas.New(opts)
	if err := c.LoadFromJSON(ctx, data); err != nil {
		_ = c.Dispose()
		return nil, err
	}
	return &DocumentState{canvas: c}, nil
}

// Seq returns the sequence of the last applied operation.
func (ds *DocumentState) Seq() int64 {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.serverSeq
}

// Document returns the current document and the sequence it reflects.
func (ds *DocumentState) Document() (*document.Document, int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	doc, err := ds.canvas.ToObject()
	if err != nil {
		return nil, 0, fmt.Errorf("serialize document: %w", err)
	}
	return doc, ds.serverSeq, nil
}

// Dirty reports whether operations were applied since the last MarkSaved.
func (ds *DocumentState) Dirty() bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.serverSeq != ds.savedSeq
}

// MarkSaved records that the document at seq is persisted.
func (ds *DocumentState) MarkSaved(seq int64) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.savedSeq = max(ds.savedSeq, seq)
}

// Close releases the canvas.
func (ds *DocumentState) Close() {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	_ = ds.canvas.Dispose()
}

// ApplyOperation applies an operation and returns its server sequence.
// A failed operation leaves the document unchanged.
func (ds *DocumentState) ApplyOperation(ctx context.Context, op Operation) (int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := ds.apply(ctx, op); err != nil {
		return 0, fmt.Errorf("%s: %w", op.Type, err)
	}
	ds.serverSeq++
	return ds.serverSeq, nil
}

func (ds *DocumentState) apply(ctx context.Context, op Operation) error {
	switch op.Type {
	case OpObjectAdd:
		return ds.applyAdd(ctx, op)
	case OpObjectRemove:
		return ds.applyRemove(op)
	case OpObjectSet:
		return ds.applySet(ctx, op)
	case OpObjectTransform:
		return ds.applyTransform(ctx, op)
	case OpObjectReorder:
		return ds.applyReorder(op)
	case OpGroupCreate:
		return ds.applyGroup(op)
	case OpGroupUngroup:
		return ds.applyUngroup(op)
	case OpCanvasSet:
		return ds.applyCanvasSet(op)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op.Type)
	}
}

func (ds *DocumentState) find(id string) (scene.Drawable, error) {
	d := ds.canvas.FindByID(id)
	if d == nil {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	return d, nil
}

// siblings is the collection d is stacked in.
func (ds *DocumentState) siblings(d scene.Drawable) *scene.Collection {
	if g := d.Base().Group(); g != nil {
		return &g.Collection
	}
	return ds.canvas.Collection
}

func (ds *DocumentState) applyAdd(ctx context.Context, op Operation) error {
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(op.Object, &head); err != nil {
		return fmt.Errorf("%w: object: %w", ErrInvalidOperation, err)
	}
	if head.ID == "" {
		return fmt.Errorf("%w: object has no id", ErrInvalidOperation)
	}
	if ds.canvas.FindByID(head.ID) != nil {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidOperation, head.ID)
	}
	d, err := ds.canvas.Registry.Enliven(ctx, op.Object)
	if err != nil {
		return err
	}
	if op.Index != nil {
		ds.canvas.InsertAt(*op.Index, d)
	} else {
		ds.canvas.Add(d)
	}
	return nil
}

func (ds *DocumentState) applyRemove(op Operation) error {
	d, err := ds.find(op.ObjectID)
	if err != nil {
		return err
	}
	if g := d.Base().Group(); g != nil {
		g.Remove(d)
	} else {
		ds.canvas.Remove(d)
	}
	d.Base().Dispose()
	return nil
}

func (ds *DocumentState) applySet(ctx context.Context, op Operation) error {
	d, err := ds.find(op.ObjectID)
	if err != nil {
		return err
	}
	var props map[string]json.RawMessage
	if err := json.Unmarshal(op.Props, &props); err != nil || props == nil {
		return fmt.Errorf("%w: props must be an object", ErrInvalidOperation)
	}
	for _, key := range []string{"id", "type", "objects"} {
		if _, ok := props[key]; ok {
			return fmt.Errorf("%w: %q cannot be set", ErrInvalidOperation, key)
		}
	}
	return scene.Patch(ctx, ds.canvas.Registry, d, op.Props)
}

func (ds *DocumentState) applyTransform(ctx context.Context, op Operation) error {
	d, err := ds.find(op.ObjectID)
	if err != nil {
		return err
	}
	if len(op.Transform) == 0 {
		return fmt.Errorf("%w: empty transform", ErrInvalidOperation)
	}
	for key := range op.Transform {
		if !slices.Contains(transformKeys, key) {
			return fmt.Errorf("%w: %q is not a transform property", ErrInvalidOperation, key)
		}
	}
	data, err := json.Marshal(op.Transform)
	if err != nil {
		return err
	}
	return scene.Patch(ctx, ds.canvas.Registry, d, data)
}

func (ds *DocumentState) applyReorder(op Operation) error {
	d, err := ds.find(op.ObjectID)
	if err != nil {
		return err
	}
	if op.Index == nil {
		return fmt.Errorf("%w: missing index", ErrInvalidOperation)
	}
	ds.siblings(d).MoveObjectTo(d, *op.Index)
	return nil
}

func (ds *DocumentState) applyGroup(op Operation) error {
	if op.GroupID == "" || len(op.ObjectIDs) == 0 {
		return fmt.Errorf("%w: group needs an id and members", ErrInvalidOperation)
	}
	if ds.canvas.FindByID(op.GroupID) != nil {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidOperation, op.GroupID)
	}
	for _, id := range op.ObjectIDs {
		d, err := ds.find(id)
		if err != nil {
			return err
		}
		if d.Base().Group() != nil {
			return fmt.Errorf("%w: %s is already grouped", ErrInvalidOperation, id)
		}
	}

	// Members keep their stacking order; the group takes the place of the
	// lowest one.
	var members []scene.Drawable
	index := -1
	for i, d := range ds.canvas.Objects() {
		if slices.Contains(op.ObjectIDs, d.Base().ID) {
			if index == -1 {
				index = i
			}
			members = append(members, d)
		}
	}
	ds.canvas.Remove(members...)
	g := scene.NewGroup(members, scene.GroupOptions{})
	g.ID = op.GroupID
	ds.canvas.InsertAt(index, g)
	return nil
}

func (ds *DocumentState) applyUngroup(op Operation) error {
	d, err := ds.find(op.ObjectID)
	if err != nil {
		return err
	}
	g, ok := d.(*scene.Group)
	if !ok || d.Base().Group() != nil {
		return fmt.Errorf("%w: %s is not a top level group", ErrInvalidOperation, op.ObjectID)
	}
	index := slices.Index(ds.canvas.Objects(), d)
	members := g.RemoveAll()
	ds.canvas.Remove(g)
	g.Dispose()
	ds.canvas.InsertAt(index, members...)
	return nil
}

type canvasProps struct {
	Background *string `json:"background"`
	Overlay    *string `json:"overlay"`
	Width      *int    `json:"width"`
	Height     *int    `json:"height"`
}

func (ds *DocumentState) applyCanvasSet(op Operation) error {
	var props canvasProps
	if err := json.Unmarshal(op.Props, &props); err != nil {
		return fmt.Errorf("%w: props: %w", ErrInvalidOperation, err)
	}
	w, h := ds.canvas.Width, ds.canvas.Height
	if props.Width != nil {
		w = *props.Width
	}
	if props.Height != nil {
		h = *props.Height
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidOperation, w, h)
	}
	if props.Background != nil {
		ds.canvas.BackgroundColor = *props.Background
	}
	if props.Overlay != nil {
		ds.canvas.OverlayColor = *props.Overlay
	}
	if w != ds.canvas.Width || h != ds.canvas.Height {
		ds.canvas.SetDimensions(w, h)
	}
	return nil
}

// ServerTimestamp returns the current server time in milliseconds.
func ServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
