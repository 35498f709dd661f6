package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/velostore/internal/apperr"
	"github.com/xenking/velostore/internal/domain/cart"
	"github.com/xenking/velostore/internal/domain/product"
	"github.com/xenking/velostore/internal/notify"
	"github.com/xenking/velostore/internal/session"
)

const maxBodySize = 4 << 10

// readIntField decodes a JSON object body and returns the integer value of
// field. Other fields are ignored.
func readIntField(r *http.Request, field string) (int, error) {
	d := jx.Decode(io.LimitReader(r.Body, maxBodySize), 512)

	var (
		v     int
		found bool
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != field {
			return d.Skip()
		}
		n, err := d.Int()
		if err != nil {
			return errors.Wrap(err, field)
		}
		v, found = n, true
		return nil
	}); err != nil {
		return 0, errors.Wrap(err, "decode body")
	}
	if !found {
		return 0, errors.Errorf("field %q is required", field)
	}
	return v, nil
}

func (h *Handler) writeCart(w http.ResponseWriter, s *session.Session) {
	var e jx.Encoder
	encodeCart(&e, s.Cart.State())
	writeJSON(w, http.StatusOK, &e)
}

// GetCart serves GET /api/cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeCart(w, s)
}

// ClearCart serves DELETE /api/cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	s.Cart.Clear(ctx)
	h.sessions.RecordMutation(ctx, "clear")
	s.Toasts.Notify(ctx, "Cart cleared", notify.SeverityInfo)
	h.writeCart(w, s)
}

// ToggleCart serves POST /api/cart/toggle.
func (h *Handler) ToggleCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Cart.Toggle()
	h.writeCart(w, s)
}

// AddItem serves POST /api/cart/items with body {"id": 1}. The product is
// resolved in the catalog and its name, price label and image are captured
// in the line item.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	id, err := readIntField(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	res := apperr.Try(ctx, apperr.NewHandler(s.Toasts), "Cart", func(ctx context.Context) (cart.LineItem, error) {
		p, err := h.products.GetByID(ctx, id)
		if err != nil {
			return cart.LineItem{}, err
		}
		return s.Cart.AddItem(ctx, cart.ItemSummary{
			ID:    p.ID,
			Name:  p.Name,
			Price: p.PriceLabel(),
			Image: h.imageURL(p.Image),
		}), nil
	})
	if !res.OK() {
		if errors.Is(res.Err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, res.Err.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternal, res.Err.Message)
		return
	}

	h.sessions.RecordMutation(ctx, "add")
	s.Toasts.Notify(ctx, res.Data.Name+" added to cart", notify.SeveritySuccess)
	h.writeCart(w, s)
}

// UpdateItem serves PATCH /api/cart/items/{id} with body {"quantity": 3}.
// Quantities below one are clamped to one; unknown ids are ignored.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	quantity, err := readIntField(r, "quantity")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	if _, updated := s.Cart.UpdateQuantity(ctx, id, quantity); updated {
		h.sessions.RecordMutation(ctx, "update")
	}
	h.writeCart(w, s)
}

// RemoveItem serves DELETE /api/cart/items/{id}. Unknown ids are ignored.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if s.Cart.RemoveItem(ctx, id) {
		h.sessions.RecordMutation(ctx, "remove")
		s.Toasts.Notify(ctx, "Item removed from cart", notify.SeverityInfo)
	}
	h.writeCart(w, s)
}
