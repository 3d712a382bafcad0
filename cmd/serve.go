package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"splitters/internal/core/config"
	"splitters/internal/core/container"
	"splitters/internal/core/routes"
	"splitters/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the sync loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			defer log.Sync()

			if migrate, _ := cmd.Flags().GetBool("migrate"); migrate && cfg.Backend == config.BackendPostgres {
				if err := runMigrations(cfg, cfg.MigrationsDir, log); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
	cmd.Flags().Bool("migrate", false, "Apply database migrations before starting")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	app, err := container.NewAppContainer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log), middleware.RequestLogger(log.Named("http")))
	routes.RegisterPublicRoutes(router, app)
	routes.RegisterInventoryRoutes(router, app)
	routes.RegisterUtilityRoutes(router, app)

	if err := app.Store.Refresh(ctx); err != nil {
		return fmt.Errorf("initial sync: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:              cfg.AppHost,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		return runSync(gctx, app.Store, app.Health, log)
	})

	g.Go(func() error {
		log.Info("Starting server", zap.String("addr", cfg.AppHost), zap.String("backend", cfg.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		log.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

type syncRunner interface {
	Run(ctx context.Context) error
}

// runSync follows backend changes. A sync failure after startup leaves the API serving the
// last loaded snapshot and reports the service as degraded.
func runSync(ctx context.Context, runner syncRunner, health *middleware.Health, log *zap.Logger) error {
	if err := runner.Run(ctx); err != nil {
		log.Error("Sync loop stopped, serving last snapshot", zap.Error(err))
		health.SetStatus("degraded")
	}

	return nil
}
