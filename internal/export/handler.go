package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/inamate/canvas-go/internal/auth"
	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

const maxDocumentSize = 20 << 20 // 20MB

// DocumentSource loads the latest document of a project for a member.
type DocumentSource interface {
	GetLatestSnapshot(ctx context.Context, projectID, userID string) (json.RawMessage, error)
}

type Handler struct {
	renderer *Renderer
	docs     DocumentSource
}

func NewHandler(renderer *Renderer, docs DocumentSource) *Handler {
	return &Handler{renderer: renderer, docs: docs}
}

// ExportDocument handles POST /export/{format}: the body is a canvas
// document and the response the rendered file.
func (h *Handler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		http.Error(w, "request too large", http.StatusBadRequest)
		return
	}
	h.render(w, r, data)
}

// ExportProject handles GET /api/projects/{projectId}/export/{format}.
func (h *Handler) ExportProject(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	data, err := h.docs.GetLatestSnapshot(r.Context(), mux.Vars(r)["projectId"], userID)
	if err != nil {
		slog.Warn("export project", "error", err)
		http.Error(w, "project not available", http.StatusNotFound)
		return
	}
	h.render(w, r, data)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data []byte) {
	opts, err := parseOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	name := sanitizeName(r.URL.Query().Get("name"))

	var buf bytes.Buffer
	err = h.renderer.Render(r.Context(), data, &buf, opts)
	switch {
	case errors.Is(err, document.ErrInvalid), errors.Is(err, scene.ErrUnknownType), errors.Is(err, ErrFormat):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		slog.Error("export failed", "format", opts.Format, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", opts.Format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, name, opts.Format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)

	slog.Info("export complete", "format", opts.Format, "size", buf.Len())
}

func parseOptions(r *http.Request) (Options, error) {
	opts := Options{Format: Format(strings.ToLower(mux.Vars(r)["format"]))}
	q := r.URL.Query()
	if v := q.Get("multiplier"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil || m <= 0 {
			return opts, fmt.Errorf("invalid multiplier %q", v)
		}
		opts.Multiplier = m
	}
	return opts, nil
}

func sanitizeName(name string) string {
	if name == "" {
		return "canvas"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
