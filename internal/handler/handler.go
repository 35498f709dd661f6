// Package handler implements the storefront HTTP API on gorilla/mux with
// go-faster/jx bodies.
package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xenking/velostore/internal/domain/product"
	"github.com/xenking/velostore/internal/search"
	"github.com/xenking/velostore/internal/session"
	"github.com/xenking/velostore/pkg/httpmiddleware"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in responses.
	// When empty, image paths are returned as stored in the catalog.
	ImageBaseURL string
}

// Searcher answers site search queries.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Sessions resolves per-client state.
type Sessions interface {
	Get(ctx context.Context, id string) *session.Session
	RecordMutation(ctx context.Context, op string)
}

var _ Sessions = (*session.Registry)(nil)

// Handler serves the /api routes.
type Handler struct {
	products     product.Repository
	search       Searcher
	sessions     Sessions
	imageBaseURL string
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(cfg Config, products product.Repository, searcher Searcher, sessions Sessions) *Handler {
	return &Handler{
		products:     products,
		search:       searcher,
		sessions:     sessions,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Register mounts the API routes under /api on r and answers unmatched
// requests on r with JSON errors. The fallbacks live on r because a subrouter
// not-found handler would also capture method mismatches.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/bikes", h.ListBikes).Methods(http.MethodGet)
	api.HandleFunc("/bikes/featured", h.FeaturedBikes).Methods(http.MethodGet)
	api.HandleFunc("/bikes/{id:[0-9]+}", h.GetBike).Methods(http.MethodGet)
	api.HandleFunc("/search", h.Search).Methods(http.MethodGet)

	api.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", h.ClearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/toggle", h.ToggleCart).Methods(http.MethodPost)
	api.HandleFunc("/cart/items", h.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{id:[0-9]+}", h.UpdateItem).Methods(http.MethodPatch)
	api.HandleFunc("/cart/items/{id:[0-9]+}", h.RemoveItem).Methods(http.MethodDelete)

	api.HandleFunc("/toasts", h.ListToasts).Methods(http.MethodGet)
	api.HandleFunc("/toasts/{id}", h.DismissToast).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})
}

// session returns the caller's session. The Session middleware must run
// first.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := httpmiddleware.SessionIDFromContext(r.Context())
	if id == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "missing session")
		return nil, false
	}
	return h.sessions.Get(r.Context(), id), true
}
