package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/project"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

const (
	defaultSaveInterval = 30 * time.Second
	saveTimeout         = 10 * time.Second
)

// DocumentStore loads and persists room documents. project.Service
// implements it.
type DocumentStore interface {
	LoadDocument(ctx context.Context, projectID string) (json.RawMessage, error)
	SaveSnapshot(ctx context.Context, projectID string, doc *document.Document) (int32, error)
}

// Room is the set of clients editing one project and their shared state.
type Room struct {
	projectID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	doc       *DocumentState

	// ops serializes apply and broadcast so peers see operations in
	// server sequence order.
	ops sync.Mutex
}

func NewRoom(projectID string, doc *DocumentState) *Room {
	return &Room{
		projectID: projectID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		doc:       doc,
	}
}

// HubOptions configure NewHub.
type HubOptions struct {
	// Store persists documents. Nil keeps rooms in memory only.
	Store    DocumentStore
	Registry *scene.Registry
	Logger   *slog.Logger
	// SaveInterval is how often Run snapshots edited rooms.
	SaveInterval time.Duration
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room // projectID -> room

	store        DocumentStore
	registry     *scene.Registry
	logger       *slog.Logger
	saveInterval time.Duration
}

func NewHub(opts HubOptions) *Hub {
	if opts.Registry == nil {
		opts.Registry = scene.DefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SaveInterval <= 0 {
		opts.SaveInterval = defaultSaveInterval
	}
	return &Hub{
		rooms:        make(map[string]*Room),
		store:        opts.Store,
		registry:     opts.Registry,
		logger:       opts.Logger,
		saveInterval: opts.SaveInterval,
	}
}

// Run snapshots edited rooms periodically until ctx is done, then saves
// once more.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.saveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.SaveAll(ctx)
		case <-ctx.Done():
			saveCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
			h.SaveAll(saveCtx)
			cancel()
			return
		}
	}
}

// Register adds a client to its project's room, loading the document when
// the room is new, and sends it the welcome, the document and the
// presence state.
func (h *Hub) Register(ctx context.Context, client *Client) error {
	h.mu.Lock()
	room, ok := h.rooms[client.ProjectID]
	if !ok {
		doc, err := h.load(ctx, client.ProjectID)
		if err != nil {
			h.mu.Unlock()
			return err
		}
		room = NewRoom(client.ProjectID, doc)
		h.rooms[client.ProjectID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	client.Send(newMessage(TypeWelcome, WelcomePayload{ClientID: client.ClientID, UserID: client.UserID}))
	h.sendDocument(room, client)
	client.Send(room.presence.StateMessage())

	join := newMessage(TypePresenceJoin, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	join.UserID = client.UserID
	h.broadcastToRoom(client.ProjectID, join, client.ClientID)

	h.logger.Info("client joined", "user", client.UserID, "project", client.ProjectID, "client", client.ClientID)
	return nil
}

func (h *Hub) load(ctx context.Context, projectID string) (*DocumentState, error) {
	var data json.RawMessage
	if h.store != nil {
		var err error
		data, err = h.store.LoadDocument(ctx, projectID)
		if err != nil && !errors.Is(err, project.ErrNotFound) {
			return nil, fmt.Errorf("load document: %w", err)
		}
	}
	doc, err := NewDocumentState(ctx, data, h.registry, h.logger)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return doc, nil
}

// Unregister removes a client. The last client out saves and closes the
// room.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.ProjectID]
	if !ok || room.clients[client.ClientID] != client {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.close()
	room.presence.Remove(client.UserID)

	if len(room.clients) == 0 {
		delete(h.rooms, client.ProjectID)
		// Saved under the lock so a client rejoining right away loads
		// this version.
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := h.save(ctx, room); err != nil {
			h.logger.Error("save room", "project", room.projectID, "error", err)
		}
		cancel()
		room.doc.Close()
	}
	h.mu.Unlock()

	leave := newMessage(TypePresenceLeave, PresenceLeavePayload{UserID: client.UserID})
	leave.UserID = client.UserID
	h.broadcastToRoom(client.ProjectID, leave, "")

	h.logger.Info("client left", "user", client.UserID, "project", client.ProjectID, "client", client.ClientID)
}

// SaveAll snapshots every room edited since its last save.
func (h *Hub) SaveAll(ctx context.Context) {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	for _, r := range rooms {
		if err := h.save(ctx, r); err != nil {
			h.logger.Error("save room", "project", r.projectID, "error", err)
		}
	}
}

func (h *Hub) save(ctx context.Context, room *Room) error {
	if h.store == nil || !room.doc.Dirty() {
		return nil
	}
	doc, seq, err := room.doc.Document()
	if err != nil {
		return err
	}
	version, err := h.store.SaveSnapshot(ctx, room.projectID, doc)
	if err != nil {
		return err
	}
	room.doc.MarkSaved(seq)
	h.logger.Debug("room saved", "project", room.projectID, "version", version, "seq", seq)
	return nil
}

// Rooms returns the number of open rooms.
func (h *Hub) Rooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) room(projectID string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[projectID]
}

func (h *Hub) handleMessage(ctx context.Context, sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOperation(ctx, sender, msg)
	case TypeDocRequest:
		if room := h.room(sender.ProjectID); room != nil {
			h.sendDocument(room, sender)
		}
	default:
		h.logger.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		sender.Send(newMessage(TypeError, ErrorPayload{Message: "unknown message type " + msg.Type}))
	}
}

func (h *Hub) sendDocument(room *Room, client *Client) {
	doc, seq, err := room.doc.Document()
	if err != nil {
		h.logger.Error("serialize room document", "project", room.projectID, "error", err)
		client.Send(newMessage(TypeError, ErrorPayload{Message: "document unavailable"}))
		return
	}
	data, err := doc.Marshal()
	if err != nil {
		h.logger.Error("marshal room document", "project", room.projectID, "error", err)
		return
	}
	msg := newMessage(TypeDocSync, DocSyncPayload{Document: data, ServerSeq: seq})
	msg.Seq = seq
	client.Send(msg)
}

func (h *Hub) handleOperation(ctx context.Context, sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		h.logger.Warn("invalid operation payload", "error", err, "user", sender.UserID)
		sender.Send(newMessage(TypeError, ErrorPayload{Message: "invalid operation payload"}))
		return
	}
	op := submit.Operation

	room := h.room(sender.ProjectID)
	if room == nil {
		return
	}
	room.ops.Lock()
	defer room.ops.Unlock()

	seq, err := room.doc.ApplyOperation(ctx, op)
	if err != nil {
		h.logger.Warn("operation rejected", "op", op.ID, "type", op.Type, "user", sender.UserID, "error", err)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{OperationID: op.ID, Reason: err.Error()}))
		return
	}
	if op.Type == OpObjectRemove {
		room.presence.Deselect(op.ObjectID)
	}

	ack := newMessage(TypeOpAck, OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       seq,
		ServerTimestamp: ServerTimestamp(),
	})
	ack.Seq = seq
	sender.Send(ack)

	out := newMessage(TypeOpBroadcast, OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: seq,
	})
	out.Seq = seq
	out.UserID = sender.UserID
	h.broadcastToRoom(sender.ProjectID, out, sender.ClientID)
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		h.logger.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	room := h.room(sender.ProjectID)
	if room == nil {
		return
	}
	room.presence.Update(sender.UserID, &presence)

	out := newMessage(TypePresenceUpdate, presence)
	out.UserID = sender.UserID
	h.broadcastToRoom(sender.ProjectID, out, sender.ClientID)
}

func (h *Hub) broadcastToRoom(projectID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[projectID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
