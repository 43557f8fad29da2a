package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/efreitasn/marketcore/internal/config"
	"github.com/efreitasn/marketcore/internal/engine"
	"github.com/efreitasn/marketcore/internal/handler"
	"github.com/efreitasn/marketcore/internal/logger"
	"github.com/efreitasn/marketcore/internal/metrics"
	"github.com/efreitasn/marketcore/internal/persist"
	"github.com/efreitasn/marketcore/internal/service"
	"github.com/efreitasn/marketcore/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "marketplace",
	Short: "Peer-to-peer marketplace core",
	Long: `marketplace keeps the authoritative record of users, products, listings
and orders, and serves it over HTTP.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Probe a running server's /healthz endpoint",
	RunE:  runHealthcheck,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthcheckCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// Restore state, or start empty.
	ds, err := persist.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer ds.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state, found, err := persist.Load(ctx, ds)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	var market *engine.Marketplace
	if found {
		if market, err = engine.Restore(state); err != nil {
			return fmt.Errorf("failed to restore state: %w", err)
		}
		log.Info().
			Int("users", len(state.Users)).
			Int("listings", len(state.Listings)).
			Int("orders", len(state.Orders)).
			Msg("state restored")
	} else {
		market = engine.New()
	}

	m := metrics.New()

	// Services.
	webhookSvc := service.NewWebhookService(store.NewWebhookStore(), market, cfg.WebhookTimeout, log, m)
	marketSvc := service.NewMarketService(market, webhookSvc, log, m)

	router := handler.NewRouter(marketSvc, webhookSvc, log, m)
	snapshotter := persist.NewSnapshotter(cfg.SnapshotInterval, ds, market, market.Version(), log, m)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return snapshotter.Run(gctx)
	})

	err = g.Wait()
	webhookSvc.Wait()
	log.Info().Uint64("version", snapshotter.SavedVersion()).Msg("server stopped")
	return err
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/healthz", cfg.Port))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
