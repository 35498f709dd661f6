package product

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrUnknownCategory is returned when a catalog record names a category
// outside the closed set.
var ErrUnknownCategory = errors.New("unknown category")

// Category is the closed set of bike categories sold in the store.
type Category string

const (
	CategoryRoad     Category = "Road"
	CategoryMountain Category = "Mountain"
	CategoryGravel   Category = "Gravel"
	CategoryElectric Category = "Electric"
	CategoryCity     Category = "City"
)

// CategoryAll is the filter sentinel matching every category. It is never a
// valid product category.
const CategoryAll Category = "All"

var categories = []Category{
	CategoryRoad,
	CategoryMountain,
	CategoryGravel,
	CategoryElectric,
	CategoryCity,
}

// Categories returns the closed category set in display order.
func Categories() []Category {
	return slices.Clone(categories)
}

// Valid reports whether c is one of the closed category set.
func (c Category) Valid() bool {
	return slices.Contains(categories, c)
}

// Product represents a bike available in the catalog.
type Product struct {
	ID           int
	Name         string
	Category     Category
	Price        decimal.Decimal
	Description  string
	Image        string
	DetailImages DetailImages
	Specs        Specs
	// Performance is the 1-3 rating (entry, mid, premium). Zero means unrated.
	Performance int
	Featured    Featured
}

// Specs holds free-text technical specifications.
type Specs struct {
	Frame  string
	Gears  string
	Brakes string
	Weight string
}

// DetailImages holds close-up image URLs shown on the product page.
type DetailImages struct {
	Frame   string
	Gears   string
	Brakes  string
	Cockpit string
}

// Featured is the optional featured-collection metadata.
type Featured struct {
	Enabled    bool
	Badge      string
	Reason     string
	SalesCount int
}

// PriceLabel returns the formatted display price, e.g. "$2,999".
func (p Product) PriceLabel() string {
	return FormatPrice(p.Price)
}

// Validate checks the record invariants enforced at catalog load time.
func (p Product) Validate() error {
	if p.ID <= 0 {
		return errors.Errorf("product %q: id must be positive", p.Name)
	}
	if p.Name == "" {
		return errors.Errorf("product %d: name required", p.ID)
	}
	if !p.Category.Valid() {
		return errors.Wrapf(ErrUnknownCategory, "product %d: %q", p.ID, p.Category)
	}
	if p.Price.IsNegative() {
		return errors.Errorf("product %d: negative price", p.ID)
	}
	if p.Performance < 0 || p.Performance > 3 {
		return errors.Errorf("product %d: performance %d out of range", p.ID, p.Performance)
	}
	return nil
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int) (*Product, error)
}
