package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/canvas-go/internal/scene"
)

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(`  {"objects":[{"type":"rect","id":"a"},{"type":"circle","id":"b"}],"background":"red","width":640,"height":480}`))
	require.NoError(t, err)
	assert.Equal(t, scene.Version, doc.Version)
	assert.Equal(t, "red", doc.Background)
	assert.Equal(t, 640, doc.Width)
	assert.Equal(t, 480, doc.Height)
	assert.Equal(t, []string{"a", "b"}, doc.IDs())

	empty, err := Parse([]byte(`{"version":"5.3.0"}`))
	require.NoError(t, err)
	assert.Equal(t, "5.3.0", empty.Version)
	assert.NotNil(t, empty.Objects)
	assert.Empty(t, empty.Objects)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "array", data: `[]`},
		{name: "truncated", data: `{"objects":[`},
		{name: "object without type", data: `{"objects":[{"id":"a"}]}`},
		{name: "object not a record", data: `{"objects":[42]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestIndexOf(t *testing.T) {
	doc := NewEmpty(100, 100)
	doc.Objects = []json.RawMessage{
		json.RawMessage(`{"type":"rect","id":"a"}`),
		json.RawMessage(`{"type":"rect","id":"b"}`),
	}
	assert.Equal(t, 0, doc.IndexOf("a"))
	assert.Equal(t, 1, doc.IndexOf("b"))
	assert.Equal(t, -1, doc.IndexOf("c"))
}

func TestMarshalRoundTrip(t *testing.T) {
	doc := NewEmpty(320, 240)
	doc.Overlay = "rgba(0,0,0,0.5)"
	doc.Objects = append(doc.Objects, json.RawMessage(`{"type":"rect","id":"a"}`))

	data, err := doc.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "backgroundImage")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Overlay, back.Overlay)
	assert.Equal(t, 320, back.Width)
	assert.Equal(t, []string{"a"}, back.IDs())
}

func TestSample(t *testing.T) {
	doc := Sample()
	assert.Equal(t, 1280, doc.Width)
	assert.Equal(t, 720, doc.Height)
	require.Len(t, doc.Objects, 6)

	ids := doc.IDs()
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}

	data, err := doc.Marshal()
	require.NoError(t, err)
	_, err = Parse(data)
	require.NoError(t, err)
}
