package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/previewdeck/internal/catalog"
	"github.com/starford/previewdeck/internal/notestore"
	"github.com/starford/previewdeck/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker, if non-nil, is mounted as the SSE endpoint at GET /events.
func NewRouter(catalogSvc *catalog.Service, store notestore.Store, broker *sse.Broker, authEnabled bool, token string) chi.Router {
	h := NewHandler(catalogSvc, store, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Catalog.
	r.Get("/projects", h.ListProjects)

	// Notes.
	r.Get("/notes/{projectName}", h.GetNote)
	r.Post("/notes", h.SaveNote)

	// Uploads.
	r.Post("/upload", h.Upload)
	r.Get("/uploads", h.ListUploads)

	// SSE endpoint (protected by same auth middleware).
	if broker != nil {
		r.Method(http.MethodGet, "/events", broker)
	}

	return r
}
