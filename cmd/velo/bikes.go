package main

import (
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/xenking/velostore/internal/catalog"
	"github.com/xenking/velostore/internal/domain/product"
)

func newBikesCmd(opts *options) *cobra.Command {
	var (
		category string
		query    string
		sortKey  string
		featured bool
	)

	cmd := &cobra.Command{
		Use:   "bikes",
		Short: "List bikes",
		Long: `List bikes from the catalog.

Filters apply in order: category, then search, then sort.
Sort keys: featured (default), price-low, price-high, name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.openCatalog()
			if err != nil {
				return err
			}
			products, err := c.List(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "list products")
			}

			if featured {
				return printProducts(cmd.OutOrStdout(), catalog.Featured(products))
			}

			return printProducts(cmd.OutOrStdout(), catalog.Apply(products, catalog.Query{
				Category: product.Category(category),
				Search:   query,
				Sort:     catalog.SortKey(sortKey),
			}))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&category, "category", "c", string(product.CategoryAll), "Road, Mountain, Gravel, Electric, City or All")
	f.StringVarP(&query, "query", "q", "", "match name or category")
	f.StringVarP(&sortKey, "sort", "s", string(catalog.SortFeatured), "sort key")
	f.BoolVar(&featured, "featured", false, "show the featured collection only")
	return cmd
}
