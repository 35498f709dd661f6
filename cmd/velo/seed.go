package main

import (
	"fmt"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xenking/velostore/internal/storage/postgres"
)

func newSeedCmd(opts *options) *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the catalog into PostgreSQL",
		Long: `Run migrations and upsert every catalog product into PostgreSQL.

The catalog is the embedded one unless --catalog points to a YAML file
(plain or gzipped).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			lg := zctx.From(ctx)

			if databaseURL == "" {
				databaseURL = os.Getenv("DATABASE_URL")
			}
			if databaseURL == "" {
				return errors.New("database URL is required: set --database-url or DATABASE_URL")
			}

			c, err := opts.openCatalog()
			if err != nil {
				return errors.Wrap(err, "open catalog")
			}
			products := c.Snapshot().Products

			lg.Debug("Connecting to database")
			pool, err := postgres.NewPool(ctx, databaseURL)
			if err != nil {
				return errors.Wrap(err, "connect to database")
			}
			defer pool.Close()

			if err := postgres.RunMigrations(ctx, pool); err != nil {
				return errors.Wrap(err, "run migrations")
			}
			if err := postgres.NewProductRepository(pool).Upsert(ctx, products); err != nil {
				return errors.Wrap(err, "seed products")
			}

			lg.Debug("Seed completed", zap.Int("products", len(products)))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products.\n", len(products))
			return err
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	return cmd
}
