package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Search serves GET /api/search?q=. A blank query returns an empty array.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.search.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.internalError(w, r, errors.Wrap(err, "search"))
		return
	}

	var e jx.Encoder
	encodeResults(&e, results)
	writeJSON(w, http.StatusOK, &e)
}
