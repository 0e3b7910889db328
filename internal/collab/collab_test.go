package collab

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/project"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

func rectRecord(t *testing.T, left, top float64) (string, json.RawMessage) {
	t.Helper()
	r := scene.NewRect(left, top, 20, 20)
	raw, err := json.Marshal(r.Base())
	require.NoError(t, err)
	return r.ID, raw
}

func intPtr(v int) *int { return &v }

func newState(t *testing.T) *DocumentState {
	t.Helper()
	ds, err := NewDocumentState(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	t.Cleanup(ds.Close)
	return ds
}

func apply(t *testing.T, ds *DocumentState, op Operation) {
	t.Helper()
	_, err := ds.ApplyOperation(context.Background(), op)
	require.NoError(t, err)
}

func currentDoc(t *testing.T, ds *DocumentState) *document.Document {
	t.Helper()
	doc, _, err := ds.Document()
	require.NoError(t, err)
	return doc
}

func objectProps(t *testing.T, doc *document.Document, id string) map[string]any {
	t.Helper()
	i := doc.IndexOf(id)
	require.NotEqual(t, -1, i, "object %s", id)
	var m map[string]any
	require.NoError(t, json.Unmarshal(doc.Objects[i], &m))
	return m
}

func TestDocumentStateOperations(t *testing.T) {
	ds := newState(t)
	doc := currentDoc(t, ds)
	assert.Equal(t, blankWidth, doc.Width)
	assert.Empty(t, doc.Objects)

	a, rawA := rectRecord(t, 10, 10)
	b, rawB := rectRecord(t, 50, 10)
	c, rawC := rectRecord(t, 90, 10)

	apply(t, ds, Operation{Type: OpObjectAdd, Object: rawA})
	apply(t, ds, Operation{Type: OpObjectAdd, Object: rawB})
	apply(t, ds, Operation{Type: OpObjectAdd, Object: rawC, Index: intPtr(0)})
	assert.Equal(t, []string{c, a, b}, currentDoc(t, ds).IDs())

	apply(t, ds, Operation{Type: OpObjectReorder, ObjectID: c, Index: intPtr(2)})
	assert.Equal(t, []string{a, b, c}, currentDoc(t, ds).IDs())

	apply(t, ds, Operation{Type: OpObjectSet, ObjectID: a, Props: json.RawMessage(`{"fill":"#ff0000"}`)})
	assert.Equal(t, "#ff0000", objectProps(t, currentDoc(t, ds), a)["fill"])

	apply(t, ds, Operation{Type: OpObjectTransform, ObjectID: b, Transform: map[string]float64{"left": 77}})
	assert.InDelta(t, 77, objectProps(t, currentDoc(t, ds), b)["left"], 1e-9)

	apply(t, ds, Operation{Type: OpGroupCreate, GroupID: "obj_group", ObjectIDs: []string{b, a}})
	doc = currentDoc(t, ds)
	assert.Equal(t, []string{"obj_group", c}, doc.IDs())
	group := objectProps(t, doc, "obj_group")
	assert.Equal(t, "group", group["type"])
	assert.Len(t, group["objects"], 2)

	apply(t, ds, Operation{Type: OpGroupUngroup, ObjectID: "obj_group"})
	doc = currentDoc(t, ds)
	assert.Equal(t, []string{a, b, c}, doc.IDs())
	assert.InDelta(t, 77, objectProps(t, doc, b)["left"], 1e-6)
	assert.InDelta(t, 10, objectProps(t, doc, b)["top"], 1e-6)

	apply(t, ds, Operation{Type: OpObjectRemove, ObjectID: c})
	apply(t, ds, Operation{Type: OpCanvasSet, Props: json.RawMessage(`{"background":"#eeeeee","width":640}`)})
	doc = currentDoc(t, ds)
	assert.Equal(t, []string{a, b}, doc.IDs())
	assert.Equal(t, "#eeeeee", doc.Background)
	assert.Equal(t, 640, doc.Width)
	assert.Equal(t, blankHeight, doc.Height)

	assert.Equal(t, int64(10), ds.Seq())
	assert.True(t, ds.Dirty())
	ds.MarkSaved(10)
	assert.False(t, ds.Dirty())
}

func TestDocumentStateRejects(t *testing.T) {
	ds := newState(t)
	a, rawA := rectRecord(t, 10, 10)
	apply(t, ds, Operation{Type: OpObjectAdd, Object: rawA})
	before, err := currentDoc(t, ds).Marshal()
	require.NoError(t, err)

	tests := []struct {
		name string
		op   Operation
		want error
	}{
		{"unknown type", Operation{Type: "object.explode"}, ErrUnknownOperation},
		{"remove missing", Operation{Type: OpObjectRemove, ObjectID: "obj_missing"}, ErrObjectNotFound},
		{"add duplicate", Operation{Type: OpObjectAdd, Object: rawA}, ErrInvalidOperation},
		{"add without id", Operation{Type: OpObjectAdd, Object: json.RawMessage(`{"type":"rect"}`)}, ErrInvalidOperation},
		{"add unknown kind", Operation{Type: OpObjectAdd, Object: json.RawMessage(`{"type":"blob","id":"obj_x"}`)}, scene.ErrUnknownType},
		{"set id", Operation{Type: OpObjectSet, ObjectID: a, Props: json.RawMessage(`{"id":"obj_y"}`)}, ErrInvalidOperation},
		{"set non object", Operation{Type: OpObjectSet, ObjectID: a, Props: json.RawMessage(`[1]`)}, ErrInvalidOperation},
		{"transform fill", Operation{Type: OpObjectTransform, ObjectID: a, Transform: map[string]float64{"fill": 1}}, ErrInvalidOperation},
		{"transform empty", Operation{Type: OpObjectTransform, ObjectID: a}, ErrInvalidOperation},
		{"reorder without index", Operation{Type: OpObjectReorder, ObjectID: a}, ErrInvalidOperation},
		{"group without id", Operation{Type: OpGroupCreate, ObjectIDs: []string{a}}, ErrInvalidOperation},
		{"group missing member", Operation{Type: OpGroupCreate, GroupID: "obj_g", ObjectIDs: []string{a, "obj_missing"}}, ErrObjectNotFound},
		{"ungroup rect", Operation{Type: OpGroupUngroup, ObjectID: a}, ErrInvalidOperation},
		{"zero width", Operation{Type: OpCanvasSet, Props: json.RawMessage(`{"width":0}`)}, ErrInvalidOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ds.ApplyOperation(context.Background(), tt.op)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	after, err := currentDoc(t, ds).Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
	assert.Equal(t, int64(1), ds.Seq())
}

func TestNewDocumentStateFromData(t *testing.T) {
	id, raw := rectRecord(t, 5, 5)
	doc := document.NewEmpty(300, 200)
	doc.Objects = append(doc.Objects, raw)
	data, err := doc.Marshal()
	require.NoError(t, err)

	ds, err := NewDocumentState(context.Background(), data, nil, nil)
	require.NoError(t, err)
	defer ds.Close()
	got := currentDoc(t, ds)
	assert.Equal(t, []string{id}, got.IDs())
	assert.Equal(t, 300, got.Width)

	_, err = NewDocumentState(context.Background(), []byte(`"nope"`), nil, nil)
	assert.ErrorIs(t, err, document.ErrInvalid)
}

func TestPresenceManager(t *testing.T) {
	pm := NewPresenceManager()
	pm.Update("u1", &PresencePayload{Cursor: &CursorPos{X: 1, Y: 2}, Selection: []string{"a", "b"}})
	pm.Update("u1", &PresencePayload{Selection: []string{"a", "b"}})
	pm.Deselect("a")

	all := pm.GetAll()
	require.Contains(t, all, "u1")
	assert.Equal(t, &CursorPos{X: 1, Y: 2}, all["u1"].Cursor)
	assert.Equal(t, []string{"b"}, all["u1"].Selection)

	pm.Remove("u1")
	assert.Empty(t, pm.GetAll())

	var state PresenceStatePayload
	require.NoError(t, json.Unmarshal(pm.StateMessage().Payload, &state))
	assert.Empty(t, state.Presences)
}

type memStore struct {
	mu      sync.Mutex
	data    json.RawMessage
	loadErr error
	saved   []*document.Document
}

func (s *memStore) LoadDocument(ctx context.Context, projectID string) (json.RawMessage, error) {
	return s.data, s.loadErr
}

func (s *memStore) SaveSnapshot(ctx context.Context, projectID string, doc *document.Document) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, doc)
	return int32(len(s.saved)), nil
}

func (s *memStore) savedDocs() []*document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*document.Document(nil), s.saved...)
}

func next(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "client closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(time.Second):
		t.Fatal("no message")
		return nil
	}
}

func expectTypes(t *testing.T, c *Client, types ...string) []*Message {
	t.Helper()
	var out []*Message
	for _, typ := range types {
		msg := next(t, c)
		assert.Equal(t, typ, msg.Type)
		out = append(out, msg)
	}
	return out
}

func submit(t *testing.T, h *Hub, c *Client, op Operation) {
	t.Helper()
	payload, err := json.Marshal(OperationSubmitPayload{Operation: op})
	require.NoError(t, err)
	h.handleMessage(context.Background(), c, &Message{Type: TypeOpSubmit, Payload: payload})
}

func TestHubSession(t *testing.T) {
	store := &memStore{loadErr: project.ErrNotFound}
	h := NewHub(HubOptions{Store: store})
	ctx := context.Background()

	alice := NewClient(h, nil, "user_alice", "Alice", "proj_1")
	bob := NewClient(h, nil, "user_bob", "Bob", "proj_1")
	assert.NotEqual(t, alice.ClientID, bob.ClientID)

	require.NoError(t, h.Register(ctx, alice))
	msgs := expectTypes(t, alice, TypeWelcome, TypeDocSync, TypePresenceState)
	var welcome WelcomePayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &welcome))
	assert.Equal(t, alice.ClientID, welcome.ClientID)

	require.NoError(t, h.Register(ctx, bob))
	expectTypes(t, bob, TypeWelcome, TypeDocSync, TypePresenceState)
	expectTypes(t, alice, TypePresenceJoin)
	assert.Equal(t, 1, h.Rooms())

	id, raw := rectRecord(t, 0, 0)
	submit(t, h, alice, Operation{ID: "op_1", Type: OpObjectAdd, Object: raw})
	ack := next(t, alice)
	require.Equal(t, TypeOpAck, ack.Type)
	var ackPayload OperationAckPayload
	require.NoError(t, json.Unmarshal(ack.Payload, &ackPayload))
	assert.Equal(t, "op_1", ackPayload.OperationID)
	assert.Equal(t, int64(1), ackPayload.ServerSeq)

	bc := next(t, bob)
	require.Equal(t, TypeOpBroadcast, bc.Type)
	var bcPayload OperationBroadcastPayload
	require.NoError(t, json.Unmarshal(bc.Payload, &bcPayload))
	assert.Equal(t, "user_alice", bcPayload.UserID)
	assert.Equal(t, OpObjectAdd, bcPayload.Operation.Type)

	submit(t, h, bob, Operation{ID: "op_2", Type: OpObjectRemove, ObjectID: "obj_missing"})
	nack := next(t, bob)
	require.Equal(t, TypeOpNack, nack.Type)
	var nackPayload OperationNackPayload
	require.NoError(t, json.Unmarshal(nack.Payload, &nackPayload))
	assert.Equal(t, "op_2", nackPayload.OperationID)
	assert.NotEmpty(t, nackPayload.Reason)

	h.handleMessage(ctx, bob, &Message{Type: TypePresenceUpdate, Payload: json.RawMessage(`{"cursor":{"x":3,"y":4},"selection":["` + id + `"]}`)})
	presence := next(t, alice)
	require.Equal(t, TypePresenceUpdate, presence.Type)
	assert.Equal(t, "user_bob", presence.UserID)

	h.handleMessage(ctx, bob, &Message{Type: TypeDocRequest})
	resync := next(t, bob)
	require.Equal(t, TypeDocSync, resync.Type)
	var syncPayload DocSyncPayload
	require.NoError(t, json.Unmarshal(resync.Payload, &syncPayload))
	assert.Equal(t, int64(1), syncPayload.ServerSeq)
	doc, err := document.Parse(syncPayload.Document)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, doc.IDs())

	h.SaveAll(ctx)
	require.Len(t, store.savedDocs(), 1)
	h.SaveAll(ctx)
	assert.Len(t, store.savedDocs(), 1, "clean rooms are not saved again")

	h.Unregister(bob)
	expectTypes(t, alice, TypePresenceLeave)
	h.Unregister(alice)
	assert.Equal(t, 0, h.Rooms())
	assert.Len(t, store.savedDocs(), 1)

	_, ok := <-alice.send
	assert.False(t, ok)
	alice.Send(newMessage(TypeError, ErrorPayload{}))
}

func TestHubSavesOnLastLeave(t *testing.T) {
	store := &memStore{}
	h := NewHub(HubOptions{Store: store})
	ctx := context.Background()

	c := NewClient(h, nil, "user_1", "One", "proj_1")
	require.NoError(t, h.Register(ctx, c))
	_, raw := rectRecord(t, 0, 0)
	submit(t, h, c, Operation{ID: "op_1", Type: OpObjectAdd, Object: raw})

	h.Unregister(c)
	saved := store.savedDocs()
	require.Len(t, saved, 1)
	assert.Len(t, saved[0].Objects, 1)
}

func TestHubRegisterLoadError(t *testing.T) {
	h := NewHub(HubOptions{Store: &memStore{loadErr: errors.New("db down")}})
	c := NewClient(h, nil, "user_1", "One", "proj_1")
	assert.Error(t, h.Register(context.Background(), c))
	assert.Equal(t, 0, h.Rooms())
}

func TestHubRunSavesOnShutdown(t *testing.T) {
	store := &memStore{}
	h := NewHub(HubOptions{Store: store, SaveInterval: time.Hour})
	c := NewClient(h, nil, "user_1", "One", "proj_1")
	require.NoError(t, h.Register(context.Background(), c))
	_, raw := rectRecord(t, 0, 0)
	submit(t, h, c, Operation{ID: "op_1", Type: OpObjectAdd, Object: raw})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
	assert.Len(t, store.savedDocs(), 1)
}
