package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/actuallystonmai/alt-choice/internal/auth"
	"github.com/actuallystonmai/alt-choice/internal/config"
	"github.com/actuallystonmai/alt-choice/internal/handler"
	"github.com/actuallystonmai/alt-choice/internal/logging"
	"github.com/actuallystonmai/alt-choice/internal/repository"
	"github.com/actuallystonmai/alt-choice/internal/router"
	"github.com/actuallystonmai/alt-choice/internal/service"
	"github.com/actuallystonmai/alt-choice/migrations"
	"github.com/actuallystonmai/alt-choice/seeds"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:   "alt-choice",
		Usage:  "Alternative choice API server",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "migrate-up",
				Usage:  "Create the Postgres document table",
				Action: migrate(migrations.Up),
			},
			{
				Name:   "migrate-down",
				Usage:  "Drop the Postgres document table",
				Action: migrate(migrations.Down),
			},
			{
				Name:  "seed",
				Usage: "Insert sample queries and recommendations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "seed even when queries already exist",
					},
				},
				Action: seed,
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		logging.Fatal().Err(err).Msg("exiting")
	}
}

// setup loads configuration and opens the store. Callers own the store.
func setup(ctx context.Context) (*config.Config, repository.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}

	if err := waitForStore(ctx, store); err != nil {
		closeStore(store)
		return nil, nil, fmt.Errorf("store not ready: %w", err)
	}
	logging.Info().Str("driver", cfg.StoreDriver).Msg("connected to store")
	return cfg, store, nil
}

func serve(ctx context.Context, _ *cli.Command) error {
	cfg, store, err := setup(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	authManager, err := auth.NewManager(cfg.TokenSecret, cfg.TokenTTL, cfg.Production)
	if err != nil {
		return fmt.Errorf("failed to build auth manager: %w", err)
	}

	h := handler.NewHandler(service.NewService(store), authManager, store)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.Setup(h, authManager, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Bool("production", cfg.Production).Msg("server running")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func migrate(sql string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		_, store, err := setup(ctx)
		if err != nil {
			return err
		}
		defer closeStore(store)

		pg, ok := store.(*repository.PostgresStore)
		if !ok {
			return fmt.Errorf("%s only applies to STORE_DRIVER=%s", cmd.Name, config.DriverPostgres)
		}
		if err := pg.Migrate(ctx, sql); err != nil {
			return err
		}
		logging.Info().Str("command", cmd.Name).Msg("migrations applied successfully")
		return nil
	}
}

func seed(ctx context.Context, cmd *cli.Command) error {
	_, store, err := setup(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	return seeds.Setup(ctx, service.NewService(store), cmd.Bool("force"))
}

func waitForStore(ctx context.Context, store repository.Store) error {
	for i := 0; i < 30; i++ {
		if err := store.Ping(ctx); err == nil {
			return nil
		}
		logging.Info().Msgf("waiting for store... (%d/30)", i+1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}
	return fmt.Errorf("store connection timeout after 30s")
}

func closeStore(store repository.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		logging.Warn().Err(err).Msg("failed to close store")
	}
}
