package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xenking/velostore/internal/catalog"
	"github.com/xenking/velostore/internal/domain/product"
)

// ListBikes serves GET /api/bikes?category=&q=&sort=. A category outside
// the catalog matches nothing.
func (h *Handler) ListBikes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := r.URL.Query()

	products, err := h.products.List(ctx)
	if err != nil {
		h.internalError(w, r, errors.Wrap(err, "list products"))
		return
	}

	out := catalog.Apply(products, catalog.Query{
		Category: product.Category(params.Get("category")),
		Search:   params.Get("q"),
		Sort:     catalog.SortKey(params.Get("sort")),
	})

	var e jx.Encoder
	h.encodeProducts(&e, out)
	writeJSON(w, http.StatusOK, &e)
}

// FeaturedBikes serves GET /api/bikes/featured.
func (h *Handler) FeaturedBikes(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.internalError(w, r, errors.Wrap(err, "list products"))
		return
	}

	var e jx.Encoder
	h.encodeProducts(&e, catalog.Featured(products))
	writeJSON(w, http.StatusOK, &e)
}

// GetBike serves GET /api/bikes/{id}.
func (h *Handler) GetBike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, "bike not found")
			return
		}
		h.internalError(w, r, errors.Wrap(err, "get product"))
		return
	}

	var e jx.Encoder
	h.encodeProduct(&e, *p)
	writeJSON(w, http.StatusOK, &e)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
