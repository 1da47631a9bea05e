package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/previewdeck/internal/apperr"
	"github.com/starford/previewdeck/internal/catalog"
	"github.com/starford/previewdeck/internal/models"
	"github.com/starford/previewdeck/internal/notestore"
	"github.com/starford/previewdeck/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	catalog *catalog.Service
	store   notestore.Store
	broker  *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil when live updates are
// not wired (tests, MCP mode).
func NewHandler(catalogSvc *catalog.Service, store notestore.Store, broker *sse.Broker) *Handler {
	return &Handler{catalog: catalogSvc, store: store, broker: broker}
}

// projectName extracts and decodes the {projectName} URL parameter.
func projectName(r *http.Request) string {
	raw := chi.URLParam(r, "projectName")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListProjects handles GET /api/projects: the full aggregated catalog,
// projects and versions both ordered most recent first.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.catalog.Projects(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrNoBackend) {
			writeJSON(w, http.StatusServiceUnavailable, errorBody("storage backend not configured"))
			return
		}
		slog.Error("list projects failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to fetch projects"))
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// GetNote handles GET /api/notes/{projectName}. A project without a note
// yields a JSON null body, not a 404.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	name := projectName(r)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("project name is required"))
		return
	}
	note, err := h.store.GetNote(r.Context(), name)
	if err != nil {
		slog.Error("get note failed", slog.String("project", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// SaveNote handles POST /api/notes: create-or-overwrite, never a second row
// for the same project.
func (h *Handler) SaveNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SaveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.ProjectName == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("projectName is required"))
		return
	}
	note, err := h.store.SaveNote(r.Context(), req.ProjectName, req.Content)
	if err != nil {
		slog.Error("save note failed", slog.String("project", req.ProjectName), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to save note"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// ListUploads handles GET /api/uploads: the append-only upload history,
// newest first.
func (h *Handler) ListUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.store.ListUploads(r.Context())
	if err != nil {
		slog.Error("list uploads failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if uploads == nil {
		uploads = []models.Upload{}
	}
	writeJSON(w, http.StatusOK, UploadListResponse{Uploads: uploads})
}
