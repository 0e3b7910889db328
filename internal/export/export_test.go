package export

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

func sampleDoc(t *testing.T) []byte {
	t.Helper()
	doc := document.NewEmpty(40, 20)
	doc.Background = "#ffffff"
	data, err := doc.Marshal()
	require.NoError(t, err)
	return data
}

func TestRenderPNG(t *testing.T) {
	r := NewRenderer(nil, nil, nil)
	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), sampleDoc(t), &buf, Options{Multiplier: 2}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 80, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
	_, _, _, a := img.At(10, 10).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestRenderSVG(t *testing.T) {
	r := NewRenderer(nil, nil, nil)
	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), sampleDoc(t), &buf, Options{Format: SVG}))
	assert.True(t, strings.HasPrefix(buf.String(), "<?xml"))
	assert.Contains(t, buf.String(), `fill="#ffffff"`)
}

func TestRenderErrors(t *testing.T) {
	r := NewRenderer(nil, nil, nil)
	var buf bytes.Buffer
	assert.ErrorIs(t, r.Render(context.Background(), sampleDoc(t), &buf, Options{Format: "gif"}), ErrFormat)
	assert.ErrorIs(t, r.Render(context.Background(), []byte(`[1]`), &buf, Options{}), document.ErrInvalid)
	assert.ErrorIs(t, r.Render(context.Background(), []byte(`{"objects":[{"type":"blob"}]}`), &buf, Options{}), scene.ErrUnknownType)
}

func TestExportDocumentEndpoint(t *testing.T) {
	h := NewHandler(NewRenderer(nil, nil, nil), nil)
	router := mux.NewRouter()
	router.HandleFunc("/export/{format}", h.ExportDocument)

	tests := []struct {
		path        string
		body        []byte
		status      int
		contentType string
	}{
		{"/export/svg?name=my%20scene", sampleDoc(t), http.StatusOK, "image/svg+xml"},
		{"/export/png", sampleDoc(t), http.StatusOK, "image/png"},
		{"/export/tiff", sampleDoc(t), http.StatusBadRequest, ""},
		{"/export/png?multiplier=-1", sampleDoc(t), http.StatusBadRequest, ""},
		{"/export/png", []byte("nope"), http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/export/svg?name=my%20scene", bytes.NewReader(sampleDoc(t)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, `attachment; filename="my-scene.svg"`, rec.Header().Get("Content-Disposition"))
}
