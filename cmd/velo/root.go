package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xenking/velostore/internal/domain/cart"
	"github.com/xenking/velostore/internal/session"
	"github.com/xenking/velostore/internal/storage/memory"
	"github.com/xenking/velostore/internal/storage/sqlite"
)

type options struct {
	catalogFile string
	dataFile    string
	session     string
	verbose     bool
}

func defaultDataFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".velostore", "cart.db")
	}
	return filepath.Join(dir, "velostore", "cart.db")
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "velo",
		Short:         "Browse bikes and manage a local cart",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			lg, err := newLogger(opts.verbose)
			if err != nil {
				return err
			}
			cmd.SetContext(zctx.Base(cmd.Context(), lg))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.catalogFile, "catalog", "", "catalog YAML file (.yaml or .yaml.gz); embedded catalog when empty")
	flags.StringVar(&opts.dataFile, "data", defaultDataFile(), "SQLite file holding the local cart")
	flags.StringVar(&opts.session, "session", "local", "cart session id")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newBikesCmd(opts),
		newSearchCmd(opts),
		newCartCmd(opts),
		newSeedCmd(opts),
	)
	return root
}

// newLogger logs to stderr so that command output stays clean.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	lg, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return lg, nil
}

func (o *options) openCatalog() (*memory.Catalog, error) {
	if o.catalogFile == "" {
		return memory.DefaultCatalog()
	}
	return memory.OpenCatalog(o.catalogFile)
}

// openCart loads the session cart from the local SQLite file. The returned
// close function releases the database.
func (o *options) openCart(ctx context.Context) (*cart.Store, func(), error) {
	storage, err := sqlite.Open(ctx, o.dataFile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open local cart")
	}
	store := cart.NewStore(session.DefaultKeyPrefix+":"+o.session, storage)
	store.Initialize(ctx)
	return store, func() { _ = storage.Close() }, nil
}
