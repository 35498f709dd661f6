// Package app wires the storefront server together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/velostore/internal/domain/cart"
	"github.com/xenking/velostore/internal/domain/product"
	"github.com/xenking/velostore/internal/handler"
	"github.com/xenking/velostore/internal/search"
	"github.com/xenking/velostore/internal/session"
	"github.com/xenking/velostore/internal/storage/memory"
	"github.com/xenking/velostore/internal/storage/postgres"
	"github.com/xenking/velostore/internal/storage/redis"
	"github.com/xenking/velostore/internal/storage/sqlite"
	"github.com/xenking/velostore/pkg/health"
	"github.com/xenking/velostore/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("catalog", cfg.Catalog.Source),
		zap.String("storage", cfg.Storage.Driver),
	)

	healthSvc := health.New()
	healthSvc.Add(health.Liveness, "goroutines", time.Second, health.GoroutineCountCheck(10000))

	// PostgreSQL pool + migrations, only when a component lives there.
	var pool *pgxpool.Pool
	if cfg.needsPostgres() {
		var err error
		pool, err = postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.Add(health.Readiness, "postgres", 5*time.Second, pool.Ping)
	}

	// The file catalog always backs static pages, and products unless they
	// come from PostgreSQL.
	fileCatalog, err := openCatalog(cfg.Catalog)
	if err != nil {
		return errors.Wrap(err, "open catalog")
	}
	var products product.Repository = fileCatalog
	if cfg.Catalog.Source == SourcePostgres {
		repo := postgres.NewProductRepository(pool)
		if cfg.Catalog.Seed {
			if err := repo.Upsert(ctx, fileCatalog.Snapshot().Products); err != nil {
				return errors.Wrap(err, "seed catalog")
			}
			lg.Info("Catalog seeded", zap.Int("products", len(fileCatalog.Snapshot().Products)))
		}
		products = repo
	}
	healthSvc.Add(health.Readiness, "catalog", 5*time.Second, health.PingCheck(fileCatalog))

	storage, closeStorage, err := openStorage(ctx, cfg.Storage, pool)
	if err != nil {
		return errors.Wrap(err, "open cart storage")
	}
	defer closeStorage()
	healthSvc.Add(health.Readiness, "storage", 5*time.Second, health.PingCheck(storage))

	sessions, err := session.NewRegistry(session.Config{
		KeyPrefix:   cfg.Storage.Key,
		IdleTimeout: cfg.Session.IdleTimeout,
		ToastTTL:    cfg.Toast.TTL,
	}, storage, m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create session registry")
	}

	h := handler.NewHandler(
		handler.Config{ImageBaseURL: cfg.ImageBaseURL},
		products,
		search.NewIndex(products, fileCatalog),
		sessions,
	)

	router := mux.NewRouter()
	router.Use(httpmiddleware.RouteLabel())
	router.HandleFunc("/livez", healthSvc.LiveEndpoint).Methods(http.MethodGet)
	router.HandleFunc("/readyz", healthSvc.ReadyEndpoint).Methods(http.MethodGet)
	h.Register(router)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(router,
			httpmiddleware.Instrument("velostore-api", m),
			httpmiddleware.RequestID(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", httpmiddleware.SessionHeader, httpmiddleware.RequestIDHeader},
				ExposeHeaders:    []string{httpmiddleware.SessionHeader, httpmiddleware.RequestIDHeader},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.Session(httpmiddleware.SessionConfig{
				Cookie: cfg.Session.Cookie,
				MaxAge: cfg.Session.CookieMaxAge,
				Secure: cfg.Session.SecureCookie,
			}),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Recovery(),
			httpmiddleware.LogRequests(),
		),
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sessions.Run(gctx)
	})
	if cfg.Catalog.Watch {
		g.Go(func() error {
			return fileCatalog.Watch(gctx, cfg.Catalog.File, memory.DefaultDebounce)
		})
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})

	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})

	return g.Wait()
}

func openCatalog(cfg CatalogConfig) (*memory.Catalog, error) {
	if cfg.File == "" {
		return memory.DefaultCatalog()
	}
	return memory.OpenCatalog(cfg.File)
}

// cartStorage is a cart storage medium that can be health checked.
type cartStorage interface {
	cart.Storage
	health.Pinger
}

// openStorage opens the configured cart storage. The returned close function
// is never nil.
func openStorage(ctx context.Context, cfg StorageConfig, pool *pgxpool.Pool) (cartStorage, func(), error) {
	noop := func() {}
	switch cfg.Driver {
	case DriverMemory:
		return memory.NewKV(), noop, nil
	case DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	case DriverRedis:
		s, err := redis.Dial(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	case DriverPostgres:
		return postgres.NewCartStorage(pool), noop, nil
	default:
		return nil, noop, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

var (
	_ cartStorage = (*memory.KV)(nil)
	_ cartStorage = (*sqlite.Storage)(nil)
	_ cartStorage = (*redis.Storage)(nil)
	_ cartStorage = (*postgres.CartStorage)(nil)
)
