package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/velostore/internal/domain/product"
)

// TaxRate is the flat sales tax applied to every cart.
var TaxRate = decimal.RequireFromString("0.10")

// Totals holds the values derived from a cart's line items.
type Totals struct {
	TotalItems int
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
}

// ComputeTotals derives item count, subtotal, tax and total from items.
// Prices are parsed from their display strings; an unparseable price counts
// as zero.
func ComputeTotals(items []LineItem) Totals {
	var (
		count    int
		subtotal = decimal.Zero
	)
	for _, item := range items {
		count += item.Quantity
		line := product.ParsePrice(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	tax := subtotal.Mul(TaxRate)
	return Totals{
		TotalItems: count,
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      subtotal.Add(tax),
	}
}
