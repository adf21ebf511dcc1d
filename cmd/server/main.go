package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sumire/issuetracker/internal/config"
	"github.com/sumire/issuetracker/internal/handler"
	"github.com/sumire/issuetracker/internal/repository"
	"github.com/sumire/issuetracker/internal/repository/postgres"
	"github.com/sumire/issuetracker/internal/service"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "issuetracker",
		Short:         "Serve the issue tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "optional YAML config file; env vars take precedence")

	root.AddCommand(&cobra.Command{
		Use:   "bootstrap",
		Short: "Create the store's tables or indexes and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return bootstrap(cmd.Context(), cfg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})

	return root
}

func loadConfig(path string, logOut io.Writer) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler = slog.NewJSONHandler(logOut, opts)
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(logOut, opts)
	}
	slog.SetDefault(slog.New(h))

	return cfg, nil
}

func openBackend(ctx context.Context, cfg config.Config) (*repository.Backend, error) {
	backend, err := repository.Open(ctx, repository.Options{
		Driver:        cfg.StoreDriver,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
		DatabaseURL:   cfg.DatabaseURL,
		Pool: postgres.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	slog.Info("store connected", "driver", backend.Driver)

	if err := backend.EnsureSchema(ctx); err != nil {
		closeBackend(backend)
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return backend, nil
}

func closeBackend(backend *repository.Backend) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := backend.Close(ctx); err != nil {
		slog.Error("close store", "error", err)
	}
}

func bootstrap(ctx context.Context, cfg config.Config) error {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend(backend)

	slog.Info("schema ready", "driver", backend.Driver)
	return nil
}

func run(ctx context.Context, cfg config.Config) error {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend(backend)

	issueSvc := service.NewIssueService(backend.Projects, backend.Issues, handler.NewAppValidator())

	routes := handler.RouterConfig{
		Issues:         issueSvc,
		Store:          backend,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.MetricsEnabled {
		routes.Metrics = handler.NewMetrics()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler.NewRouter(routes),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "driver", backend.Driver)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
