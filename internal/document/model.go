package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/inamate/canvas-go/internal/scene"
)

// ErrInvalid is returned for documents that are not a canvas record.
var ErrInvalid = errors.New("invalid document")

// Document is a persisted canvas: the object records back to front plus the
// canvas level paint.
type Document struct {
	Version         string            `json:"version"`
	Objects         []json.RawMessage `json:"objects"`
	Background      string            `json:"background,omitempty"`
	BackgroundImage json.RawMessage   `json:"backgroundImage,omitempty"`
	Overlay         string            `json:"overlay,omitempty"`
	OverlayImage    json.RawMessage   `json:"overlayImage,omitempty"`
	ClipPath        json.RawMessage   `json:"clipPath,omitempty"`

	// Width and Height are the size the document was authored at. Zero
	// leaves a canvas at its current size.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// NewEmpty creates an empty document of the given size.
func NewEmpty(width, height int) *Document {
	return &Document{
		Version: scene.Version,
		Objects: []json.RawMessage{},
		Width:   width,
		Height:  height,
	}
}

// Parse decodes and checks a document.
func Parse(data []byte) (*Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalid)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if doc.Objects == nil {
		doc.Objects = []json.RawMessage{}
	}
	if doc.Version == "" {
		doc.Version = scene.Version
	}
	for i, raw := range doc.Objects {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil || head.Type == "" {
			return nil, fmt.Errorf("%w: object %d has no type", ErrInvalid, i)
		}
	}
	return &doc, nil
}

// Marshal encodes the document.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

type objectHead struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// IndexOf returns the position of the top level object with id, or -1.
func (d *Document) IndexOf(id string) int {
	for i, raw := range d.Objects {
		var h objectHead
		if json.Unmarshal(raw, &h) == nil && h.ID == id {
			return i
		}
	}
	return -1
}

// IDs lists the top level object IDs back to front.
func (d *Document) IDs() []string {
	ids := make([]string, 0, len(d.Objects))
	for _, raw := range d.Objects {
		var h objectHead
		if json.Unmarshal(raw, &h) == nil {
			ids = append(ids, h.ID)
		}
	}
	return ids
}
