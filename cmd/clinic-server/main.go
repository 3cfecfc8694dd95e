package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Adi-aygd/liver-cirrhosis/internal/config"
	"github.com/Adi-aygd/liver-cirrhosis/internal/domain/clinic"
	"github.com/Adi-aygd/liver-cirrhosis/internal/domain/identity"
	"github.com/Adi-aygd/liver-cirrhosis/internal/domain/staging"
	"github.com/Adi-aygd/liver-cirrhosis/internal/platform/auth"
	"github.com/Adi-aygd/liver-cirrhosis/internal/platform/db"
	"github.com/Adi-aygd/liver-cirrhosis/internal/platform/middleware"
	"github.com/Adi-aygd/liver-cirrhosis/internal/platform/report"
	"github.com/Adi-aygd/liver-cirrhosis/internal/platform/sandbox"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Liver cirrhosis clinic API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for migrations")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for migrations")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-30s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				applied := "-"
				if s.AppliedAt != nil {
					applied = s.AppliedAt.Format(time.RFC3339)
				}
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Printf("%-10d %-30s %-10s %s\n", s.Version, s.Name, state, applied)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo dataset into PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger("development")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for seeding; the in-memory store seeds itself at startup")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := clinic.NewService(clinic.NewPGRepos(pool))
			return sandbox.Seed(ctx, svc, logger)
		},
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	// Record store: PostgreSQL when DATABASE_URL is set, in-memory otherwise.
	var (
		repos clinic.Repos
		pool  *pgxpool.Pool
	)
	if cfg.UseMemoryStore() {
		repos = clinic.NewMemRepos()
		logger.Info().Msg("using in-memory record store")
	} else {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		repos = clinic.NewPGRepos(pool)
		logger.Info().Msg("connected to database")
	}

	clinicSvc := clinic.NewService(repos)
	if cfg.UseMemoryStore() && cfg.SeedDemoData {
		if err := sandbox.Seed(ctx, clinicSvc, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	secret := cfg.AuthSecret
	if secret == "" {
		// Dev only; Validate rejects an empty secret outside development.
		secret = "dev-secret"
	}
	signer := auth.NewSigner(secret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	identitySvc := identity.NewService(repos, signer)
	stagingSvc := staging.NewService()
	renderer := report.NewRenderer("Liver Care Clinic")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	apiV1 := e.Group("/api/v1")
	clinic.NewHandler(clinicSvc, renderer).RegisterRoutes(apiV1)
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1)
	staging.NewHandler(stagingSvc).RegisterRoutes(apiV1)

	addr := ":" + cfg.Port
	go func() {
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
