package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/xenking/velostore/internal/domain/cart"
	"github.com/xenking/velostore/internal/domain/product"
	"github.com/xenking/velostore/internal/notify"
	"github.com/xenking/velostore/internal/search"
)

// truncate shortens s to at most n runes, appending "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func rating(p product.Product) string {
	if p.Performance == 0 {
		return "-"
	}
	return strconv.Itoa(p.Performance) + "/3"
}

func printProducts(w io.Writer, products []product.Product) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "No bikes found.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tRATING\tDESCRIPTION")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, p.Category, p.PriceLabel(), rating(p), truncate(p.Description, 40))
	}
	return tw.Flush()
}

func printResults(w io.Writer, results []search.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "CATEGORY\tTITLE\tLINK\tDESCRIPTION")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Category, r.Title, r.To, truncate(r.Description, 50))
	}
	return tw.Flush()
}

func printCart(w io.Writer, s cart.State) error {
	if len(s.Items) == 0 {
		_, err := fmt.Fprintln(w, "Your cart is empty.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY")
	for _, item := range s.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", item.ID, item.Name, item.Price, item.Quantity)
	}
	fmt.Fprintln(tw, "\t\t\t")
	fmt.Fprintf(tw, "\tItems\t\t%d\n", s.TotalItems)
	fmt.Fprintf(tw, "\tSubtotal\t%s\t\n", s.Subtotal.StringFixed(2))
	fmt.Fprintf(tw, "\tTax (10%%)\t%s\t\n", s.Tax.StringFixed(2))
	fmt.Fprintf(tw, "\tTotal\t%s\t\n", s.Total.StringFixed(2))
	return tw.Flush()
}

// printNotifier shows notifications as single lines.
type printNotifier struct {
	w io.Writer
}

var _ notify.Notifier = printNotifier{}

func (n printNotifier) Notify(_ context.Context, message string, severity notify.Severity) {
	fmt.Fprintf(n.w, "[%s] %s\n", severity, message)
}
