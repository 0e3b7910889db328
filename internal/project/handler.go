package project

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inamate/inamate/canvas-go/internal/auth"
	"github.com/inamate/inamate/canvas-go/internal/document"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Sample bool   `json:"sample"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	project, err := h.service.Create(r.Context(), req.Name, userID, req.Width, req.Height, req.Sample)
	if err != nil {
		slog.Error("create project failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	auth.WriteJSON(w, http.StatusCreated, project)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	projectID := mux.Vars(r)["projectId"]

	project, err := h.service.Get(r.Context(), projectID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, project)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	projects, err := h.service.List(r.Context(), userID)
	if err != nil {
		slog.Error("list projects failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	auth.WriteJSON(w, http.StatusOK, projects)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	projectID := mux.Vars(r)["projectId"]

	if err := h.service.Delete(r.Context(), projectID, userID); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	projectID := mux.Vars(r)["projectId"]

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.service.InviteByEmail(r.Context(), projectID, userID, req.Email); err != nil {
		handleServiceError(w, err)
		return
	}
	auth.WriteJSON(w, http.StatusCreated, map[string]string{"status": "invited"})
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	projectID := mux.Vars(r)["projectId"]

	members, err := h.service.ListMembers(r.Context(), projectID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, members)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	vars := mux.Vars(r)

	if err := h.service.RemoveMember(r.Context(), vars["projectId"], userID, vars["userId"]); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	projectID := mux.Vars(r)["projectId"]

	doc, err := h.service.GetLatestSnapshot(r.Context(), projectID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// SaveSnapshot stores the posted canvas document as a new version.
func (h *Handler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	projectID := mux.Vars(r)["projectId"]

	if err := h.service.CheckMembership(r.Context(), projectID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	var raw json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentSize)).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	doc, err := document.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	version, err := h.service.SaveSnapshot(r.Context(), projectID, doc)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	auth.WriteJSON(w, http.StatusCreated, map[string]int32{"version": version})
}

const maxDocumentSize = 20 << 20 // 20MB

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrNotMember):
		writeError(w, http.StatusForbidden, "not a project member")
	case errors.Is(err, ErrCannotRemoveOwner):
		writeError(w, http.StatusBadRequest, "cannot remove project owner")
	default:
		slog.Error("service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	auth.WriteJSON(w, status, map[string]string{"error": msg})
}
