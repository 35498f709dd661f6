// Package catalog implements the product filter, sort and search pipeline.
//
// Every function is pure: inputs are never mutated and results are fresh
// slices (or the input itself when a stage is a no-op).
package catalog

import (
	"slices"
	"strings"

	"github.com/xenking/velostore/internal/domain/product"
)

// Query is the combined filter/search/sort request.
type Query struct {
	Category product.Category
	Search   string
	Sort     SortKey
}

// Apply runs category filter, then text search, then sort.
func Apply(products []product.Product, q Query) []product.Product {
	out := FilterByCategory(products, q.Category)
	out = FilterBySearch(out, q.Search)
	return Sort(out, q.Sort)
}

// FilterByCategory keeps products whose category equals c exactly.
// CategoryAll and the empty category return the input unchanged.
func FilterByCategory(products []product.Product, c product.Category) []product.Product {
	if c == product.CategoryAll || c == "" {
		return products
	}
	return filter(products, func(p product.Product) bool {
		return p.Category == c
	})
}

// FilterBySearch keeps products whose name or category contains query,
// ignoring case. A blank query returns the input unchanged; otherwise the
// query is matched as given, surrounding spaces included.
func FilterBySearch(products []product.Product, query string) []product.Product {
	if strings.TrimSpace(query) == "" {
		return products
	}
	needle := strings.ToLower(query)
	return filter(products, func(p product.Product) bool {
		return Matches(p, needle)
	})
}

// Matches reports whether the lower-cased needle occurs in the product name
// or category.
func Matches(p product.Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(string(p.Category)), needle)
}

// Featured returns the featured-collection members ordered by descending
// sales count, ties broken by ascending id.
func Featured(products []product.Product) []product.Product {
	out := filter(products, func(p product.Product) bool {
		return p.Featured.Enabled
	})
	slices.SortStableFunc(out, func(a, b product.Product) int {
		if a.Featured.SalesCount != b.Featured.SalesCount {
			return b.Featured.SalesCount - a.Featured.SalesCount
		}
		return a.ID - b.ID
	})
	return out
}

func filter(products []product.Product, keep func(product.Product) bool) []product.Product {
	out := make([]product.Product, 0, len(products))
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
