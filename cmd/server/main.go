// cmd/server/main.go
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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/sapmusicgroup/sap-backend/internal/config"
	"github.com/sapmusicgroup/sap-backend/internal/database"
	"github.com/sapmusicgroup/sap-backend/internal/i18n"
	"github.com/sapmusicgroup/sap-backend/internal/router"
)

func main() {
	var skipMigrate bool

	rootCmd := &cobra.Command{
		Use:          "sap-server",
		Short:        "Sap Music Group publishing API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), !skipMigrate)
		},
	}
	rootCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not run migrations before serving")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)
			return database.RunMigrations(db)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create the first admin and the default agreement template",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := database.RunMigrations(db); err != nil {
				return err
			}
			return database.SeedInitialData(db, cfg.Seed)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.DebugLevel)
}

// bootstrap loads configuration and opens the database.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg)

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, db, nil
}

func serve(ctx context.Context, migrate bool) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer database.Close(db)

	if migrate {
		if err := database.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		return fmt.Errorf("failed to initialize i18n: %w", err)
	}

	rdb, err := database.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// Without Redis the cache lives in memory and realtime events stay
		// on this instance.
		logrus.WithError(err).Warn("Redis unavailable, running single instance")
		rdb = nil
	}
	if rdb != nil {
		defer func(c *redis.Client) { _ = c.Close() }(rdb)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := router.Initialize(db, cfg, rdb)
	if err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	stopCleanup := make(chan struct{})
	app.Limiters.Cleanup(stopCleanup)
	defer close(stopCleanup)

	if app.Broadcaster != nil {
		ready := make(chan struct{})
		g.Go(func() error {
			err := app.Broadcaster.Run(gctx, ready)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		select {
		case <-ready:
		case <-gctx.Done():
		}
	}

	g.Go(func() error {
		logrus.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down server...")

		// Create a deadline for shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		app.Chat.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logrus.Info("Server exited")
	return nil
}
