// Command api-server runs the storefront HTTP API.
package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	velostore "github.com/xenking/velostore/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := velostore.LoadConfig()
		if err != nil {
			return errors.Wrap(err, "config")
		}
		return velostore.Run(ctx, lg.Named("velostore"), m, cfg)
	})
}
