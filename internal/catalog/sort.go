package catalog

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/xenking/velostore/internal/domain/product"
)

// SortKey selects the product ordering.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortName      SortKey = "name"
)

// SortKeys lists the recognized keys.
func SortKeys() []SortKey {
	return []SortKey{SortFeatured, SortPriceLow, SortPriceHigh, SortName}
}

// Sort returns a sorted copy of products. The empty key means SortFeatured;
// unknown keys return a copy in input order. All orderings are stable.
func Sort(products []product.Product, key SortKey) []product.Product {
	out := slices.Clone(products)

	switch key {
	case SortPriceLow:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortPriceHigh:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return b.Price.Cmp(a.Price)
		})
	case SortName:
		// Collator carries a buffer and is not safe for concurrent use.
		c := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return c.CompareString(a.Name, b.Name)
		})
	case SortFeatured, "":
		slices.SortStableFunc(out, func(a, b product.Product) int {
			if a.Performance != b.Performance {
				return b.Performance - a.Performance
			}
			return a.ID - b.ID
		})
	}
	return out
}
