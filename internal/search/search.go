// Package search merges catalog hits with static informational pages.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/velostore/internal/catalog"
	"github.com/xenking/velostore/internal/domain/product"
)

// Category groups search results for display.
type Category string

const (
	CategoryProduct Category = "Product"
	CategorySupport Category = "Support"
	CategoryCompany Category = "Company"
)

// Result is a single search hit.
type Result struct {
	ID          string
	Title       string
	Description string
	Category    Category
	To          string
	Icon        string
}

// Page is a static informational page that participates in search.
type Page struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Category    Category `yaml:"category"`
	To          string   `yaml:"to"`
	Icon        string   `yaml:"icon"`
}

// PageSource supplies the static page list in display order.
type PageSource interface {
	Pages(ctx context.Context) ([]Page, error)
}

// Index answers site search queries.
type Index struct {
	products product.Repository
	pages    PageSource
}

// NewIndex creates an Index. pages may be nil.
func NewIndex(products product.Repository, pages PageSource) *Index {
	return &Index{products: products, pages: pages}
}

// Search returns product hits followed by static page hits. Products match on
// name or category, pages on title or description, both ignoring case. A
// blank query yields no results.
func (x *Index) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	q := strings.ToLower(query)

	products, err := x.products.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	var results []Result
	for _, p := range products {
		if catalog.Matches(p, q) {
			results = append(results, productResult(p))
		}
	}

	if x.pages == nil {
		return results, nil
	}
	pages, err := x.pages.Pages(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list pages")
	}
	for _, pg := range pages {
		if strings.Contains(strings.ToLower(pg.Title), q) ||
			strings.Contains(strings.ToLower(pg.Description), q) {
			results = append(results, Result(pg))
		}
	}
	return results, nil
}

func productResult(p product.Product) Result {
	return Result{
		ID:          fmt.Sprintf("bike-%d", p.ID),
		Title:       p.Name,
		Description: fmt.Sprintf("%s Bike - %s", p.Category, p.PriceLabel()),
		Category:    CategoryProduct,
		To:          fmt.Sprintf("/bikes/%d", p.ID),
		Icon:        "bike",
	}
}
