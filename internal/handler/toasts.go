package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/gorilla/mux"
)

// ListToasts serves GET /api/toasts.
func (h *Handler) ListToasts(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var e jx.Encoder
	encodeToasts(&e, s.Toasts.List())
	writeJSON(w, http.StatusOK, &e)
}

// DismissToast serves DELETE /api/toasts/{id}.
func (h *Handler) DismissToast(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if !s.Toasts.Remove(mux.Vars(r)["id"]) {
		writeError(w, http.StatusNotFound, codeNotFound, "toast not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
