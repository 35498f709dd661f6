package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/velostore/internal/domain/cart"
	"github.com/xenking/velostore/internal/domain/product"
	"github.com/xenking/velostore/internal/notify"
	"github.com/xenking/velostore/internal/search"
)

const (
	codeBadRequest       = "BAD_REQUEST"
	codeNotFound         = "NOT_FOUND"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	codeInternal         = "INTERNAL"
)

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("error", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("code", func(e *jx.Encoder) { e.Str(code) })
				e.Field("message", func(e *jx.Encoder) { e.Str(message) })
			})
		})
	})
	writeJSON(w, status, &e)
}

func str(e *jx.Encoder, name, v string) {
	e.Field(name, func(e *jx.Encoder) { e.Str(v) })
}

// money renders d as a JSON number with two decimals.
func money(e *jx.Encoder, name string, d decimal.Decimal) {
	e.Field(name, func(e *jx.Encoder) { e.Num(jx.Num(d.StringFixed(2))) })
}

// imageURL prefixes relative paths with the configured base URL.
func (h *Handler) imageURL(path string) string {
	if path == "" || h.imageBaseURL == "" || strings.Contains(path, "://") {
		return path
	}
	return strings.TrimSuffix(h.imageBaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

func (h *Handler) encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int(p.ID) })
		str(e, "name", p.Name)
		str(e, "category", string(p.Category))
		e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(p.Price.String())) })
		str(e, "priceLabel", p.PriceLabel())
		str(e, "description", p.Description)
		str(e, "image", h.imageURL(p.Image))
		e.Field("specs", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				str(e, "frame", p.Specs.Frame)
				str(e, "gears", p.Specs.Gears)
				str(e, "brakes", p.Specs.Brakes)
				str(e, "weight", p.Specs.Weight)
			})
		})
		if p.Performance > 0 {
			e.Field("performance", func(e *jx.Encoder) { e.Int(p.Performance) })
		}
		if p.Featured.Enabled {
			e.Field("featured", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					str(e, "badge", p.Featured.Badge)
					str(e, "reason", p.Featured.Reason)
					e.Field("salesCount", func(e *jx.Encoder) { e.Int(p.Featured.SalesCount) })
				})
			})
		}
		d := p.DetailImages
		if d != (product.DetailImages{}) {
			e.Field("detailImages", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					str(e, "frame", h.imageURL(d.Frame))
					str(e, "gears", h.imageURL(d.Gears))
					str(e, "brakes", h.imageURL(d.Brakes))
					str(e, "cockpit", h.imageURL(d.Cockpit))
				})
			})
		}
	})
}

func (h *Handler) encodeProducts(e *jx.Encoder, products []product.Product) {
	e.Arr(func(e *jx.Encoder) {
		for _, p := range products {
			h.encodeProduct(e, p)
		}
	})
}

func encodeLineItem(e *jx.Encoder, item cart.LineItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int(item.ID) })
		str(e, "name", item.Name)
		str(e, "price", item.Price)
		str(e, "image", item.Image)
		e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
	})
}

func encodeCart(e *jx.Encoder, s cart.State) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range s.Items {
					encodeLineItem(e, item)
				}
			})
		})
		e.Field("open", func(e *jx.Encoder) { e.Bool(s.Open) })
		e.Field("totalItems", func(e *jx.Encoder) { e.Int(s.TotalItems) })
		money(e, "subtotal", s.Subtotal)
		money(e, "tax", s.Tax)
		money(e, "total", s.Total)
	})
}

func encodeResults(e *jx.Encoder, results []search.Result) {
	e.Arr(func(e *jx.Encoder) {
		for _, r := range results {
			e.Obj(func(e *jx.Encoder) {
				str(e, "id", r.ID)
				str(e, "title", r.Title)
				str(e, "description", r.Description)
				str(e, "category", string(r.Category))
				str(e, "to", r.To)
				str(e, "icon", r.Icon)
			})
		}
	})
}

func encodeToasts(e *jx.Encoder, toasts []notify.Toast) {
	e.Arr(func(e *jx.Encoder) {
		for _, t := range toasts {
			e.Obj(func(e *jx.Encoder) {
				str(e, "id", t.ID)
				str(e, "message", t.Message)
				str(e, "type", string(t.Severity))
				str(e, "createdAt", t.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
			})
		}
	})
}
