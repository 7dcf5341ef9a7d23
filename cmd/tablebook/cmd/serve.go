package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/tablebook/internal/application"
	"github.com/example/tablebook/internal/config"
	httptransport "github.com/example/tablebook/internal/http"
	"github.com/example/tablebook/internal/persistence/sqlite"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reservation API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	tableRepo := sqlite.NewTableRepository(storage)
	bookingRepo := sqlite.NewBookingRepository(storage)

	idGenerator := func() string { return uuid.NewString() }
	service := application.NewBookingServiceWithLogger(tableRepo, bookingRepo, cfg.Policy(), idGenerator, time.Now, logger)
	service.ConfigureAvailabilityCache(0, cfg.AvailabilityCacheTTL)

	if cfg.SeedDefaultTables {
		if err := service.EnsureDefaultRoster(ctx); err != nil {
			return fmt.Errorf("seed default roster: %w", err)
		}
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Bookings: httptransport.NewBookingHandler(service, logger),
		Tables:   httptransport.NewTableHandler(service, logger),
		Health:   storage.Ping,
		Metrics:  httptransport.MetricsHandler(),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Metrics(),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservation API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
