package collab

import "encoding/json"

// Message is the envelope of every websocket frame. The server fills
// ProjectID, ClientID and UserID from the connection, never from the wire.
type Message struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"projectId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

// CursorPos is a pointer position in scene coordinates.
type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

// WelcomePayload tells a new connection who it is.
type WelcomePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

// DocSyncPayload carries the full document and the sequence it reflects.
type DocSyncPayload struct {
	Document  json.RawMessage `json:"document"`
	ServerSeq int64           `json:"serverSeq"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync    = "doc.sync"
	TypeDocRequest = "doc.request"

	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// Operation types.
const (
	OpObjectAdd       = "object.add"
	OpObjectRemove    = "object.remove"
	OpObjectSet       = "object.set"
	OpObjectTransform = "object.transform"
	OpObjectReorder   = "object.reorder"
	OpGroupCreate     = "group.create"
	OpGroupUngroup    = "group.ungroup"
	OpCanvasSet       = "canvas.set"
)

// Operation is one document mutation submitted by a client.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ClientSeq int64  `json:"clientSeq"`
	ObjectID  string `json:"objectId,omitempty"`

	// object.add: the object record. Index places it in the stack, the
	// default appends it on top.
	Object json.RawMessage `json:"object,omitempty"`
	Index  *int            `json:"index,omitempty"`

	// object.set and canvas.set: properties to merge.
	Props json.RawMessage `json:"props,omitempty"`

	// object.transform: numeric geometry properties.
	Transform map[string]float64 `json:"transform,omitempty"`

	// group.create: the members, and GroupID names the new group.
	ObjectIDs []string `json:"objectIds,omitempty"`
	GroupID   string   `json:"groupId,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}

func newMessage(typ string, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("null")
	}
	return &Message{Type: typ, Payload: data}
}
