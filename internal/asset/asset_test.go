package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestStore(t *testing.T) {
	h := NewHandler(t.TempDir())
	resp, err := h.Store(bytes.NewReader(testPNG(t, 3, 2)))
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Width)
	assert.Equal(t, 2, resp.Height)
	assert.Equal(t, "/assets/"+resp.ID+".png", resp.URL)
	assert.FileExists(t, filepath.Join(h.Dir(), resp.ID+".png"))

	require.NoError(t, h.Delete(resp.ID))
	assert.NoFileExists(t, filepath.Join(h.Dir(), resp.ID+".png"))
	assert.Error(t, h.Delete("../etc/passwd"))
}

func TestStoreRejects(t *testing.T) {
	h := NewHandler(t.TempDir())
	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("hello, this is not an image")},
		{"pdf", []byte("%PDF-1.4 not really")},
		{"truncated png", testPNG(t, 4, 4)[:40]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Store(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrUnsupported)
		})
	}

	_, err := h.Store(bytes.NewReader(make([]byte, maxUploadSize+1)))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestUploadEndpoint(t *testing.T) {
	h := NewHandler(t.TempDir())
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "dot.png")
	require.NoError(t, err)
	_, err = part.Write(testPNG(t, 5, 5))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/assets/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"dot.png"`)
	assert.Contains(t, rec.Body.String(), `"width":5`)
}

func TestRemoveEndpoint(t *testing.T) {
	h := NewHandler(t.TempDir())
	resp, err := h.Store(bytes.NewReader(testPNG(t, 2, 2)))
	require.NoError(t, err)

	remove := func(id string) int {
		req := httptest.NewRequest(http.MethodDelete, "/api/assets/"+id, nil)
		req = mux.SetURLVars(req, map[string]string{"assetId": id})
		rec := httptest.NewRecorder()
		h.Remove(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, remove(resp.ID))
	assert.Equal(t, http.StatusNotFound, remove(resp.ID))
	assert.Equal(t, http.StatusBadRequest, remove("proj_nope"))
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), testPNG(t, 7, 3), 0o644))
	l := NewLoader(dir)
	ctx := context.Background()

	for _, src := range []string{"/assets/a.png", "a.png"} {
		img, err := l.LoadImage(ctx, src)
		require.NoError(t, err, src)
		assert.Equal(t, image.Rect(0, 0, 7, 3), img.Bounds())
	}

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(testPNG(t, 2, 9))
	img, err := l.LoadImage(ctx, dataURL)
	require.NoError(t, err)
	assert.Equal(t, 9, img.Bounds().Dy())

	for _, src := range []string{"../a.png", "/assets/", "missing.png", ".hidden"} {
		_, err := l.LoadImage(ctx, src)
		assert.ErrorIs(t, err, ErrNotFound, src)
	}

	_, err = l.LoadImage(ctx, "data:text/plain,hello")
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = l.LoadImage(cancelled, "a.png")
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, strings.HasPrefix(truncate(strings.Repeat("x", 100)), strings.Repeat("x", 48)))
}
