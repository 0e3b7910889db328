package asset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/inamate/inamate/canvas-go/internal/auth"
	"github.com/inamate/inamate/canvas-go/internal/typeid"
)

const maxUploadSize = 10 << 20 // 10MB

// sniffLen is how much of a file filetype needs to recognise it.
const sniffLen = 261

var (
	ErrTooLarge    = errors.New("file too large")
	ErrUnsupported = errors.New("unsupported image type")
)

var supported = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// UploadResponse is returned from the upload endpoint.
type UploadResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Type   string `json:"type"`
	Name   string `json:"name"`
}

// Handler serves asset upload and retrieval endpoints.
type Handler struct {
	dir string
}

// NewHandler creates an asset handler that stores files in dir.
func NewHandler(dir string) *Handler {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("create asset dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir}
}

// Dir is the directory assets are stored in.
func (h *Handler) Dir() string { return h.dir }

// Upload handles POST /assets/upload (multipart form with a "file" field).
// The content is sniffed rather than trusted from the part header, decoded
// and stored as PNG.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	resp, err := h.Store(file)
	switch {
	case errors.Is(err, ErrUnsupported), errors.Is(err, ErrTooLarge):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		slog.Error("store asset", "error", err)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}
	resp.Name = header.Filename

	auth.WriteJSON(w, http.StatusOK, resp)
}

// Store validates an image from src and writes it to the asset directory
// as PNG.
func (h *Handler) Store(src io.Reader) (*UploadResponse, error) {
	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxUploadSize {
		return nil, ErrTooLarge
	}

	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	kind, err := filetype.Match(head)
	if err != nil || !supported[kind.MIME.Value] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind.MIME.Value)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	assetID := typeid.NewAssetID()
	filename := assetID + ".png"
	filePath := filepath.Join(h.dir, filename)
	if err := writePNG(filePath, img); err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &UploadResponse{
		ID:     assetID,
		URL:    "/assets/" + filename,
		Width:  b.Dx(),
		Height: b.Dy(),
		Type:   "png",
	}, nil
}

func writePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create asset file: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("encode png: %w", err)
	}
	return out.Close()
}

// Serve returns an http.Handler that serves stored asset files with caching headers.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.StripPrefix("/assets/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Asset IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}

// Delete removes an asset file from disk.
func (h *Handler) Delete(assetID string) error {
	if err := typeid.Validate(assetID, typeid.PrefixAsset); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(h.dir, assetID+".png")); err != nil {
		return fmt.Errorf("delete asset %s: %w", assetID, err)
	}
	return nil
}

// Remove handles DELETE /api/assets/{assetId}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	err := h.Delete(mux.Vars(r)["assetId"])
	switch {
	case errors.Is(err, os.ErrNotExist):
		http.Error(w, "asset not found", http.StatusNotFound)
	case errors.Is(err, typeid.ErrInvalid):
		http.Error(w, "invalid asset id", http.StatusBadRequest)
	case err != nil:
		slog.Error("delete asset", "error", err)
		http.Error(w, "failed to delete asset", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
