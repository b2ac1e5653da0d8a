package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/obsidianstack/dcrcalc/internal/api"
	"github.com/obsidianstack/dcrcalc/internal/auth"
	"github.com/obsidianstack/dcrcalc/internal/config"
	"github.com/obsidianstack/dcrcalc/internal/dcr"
	"github.com/obsidianstack/dcrcalc/internal/metrics"
	"github.com/obsidianstack/dcrcalc/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator over HTTP, WebSocket and /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := setupLogger(os.Stdout, cfg.Log); err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.HTTPPort = port
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().IntVar(&port, "port", config.DefaultHTTPPort, "HTTP port (overrides server.http_port)")
	return cmd
}

// newMux wires the API, the WebSocket hub and the metrics endpoint onto one
// mux. API routes go through the auth middleware.
func newMux(cfg *config.Config, calc *dcr.Reloadable, reg *metrics.Registry, hub *ws.Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/", auth.APIKey(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.Header,
		cfg.Server.Auth.Key(),
		api.New(calc, reg),
	))
	mux.Handle("/ws/calc", hub)
	mux.Handle("/metrics", reg)
	return mux
}

func serve(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Server.Auth.RequireKey(); err != nil {
		return err
	}

	slog.Info("dcrcalc serve starting",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"default_ramp_degrees", cfg.Calculator.DefaultRampDegrees,
		"rod_ratio_estimate", cfg.Calculator.RodRatioEstimate,
	)

	reg := metrics.New()
	calc := dcr.NewReloadable(dcr.New(
		cfg.Calculator.Params(),
		dcr.MultiObserver{dcr.SlogObserver{}, reg},
	))

	hub := ws.New(calc, reg)
	go hub.Run(ctx)

	// Only the calculator constants hot-reload; port and auth need a restart.
	if flagConfig != "" {
		go func() {
			err := config.Watch(ctx, flagConfig, func(next *config.Config) {
				p := next.Calculator.Params()
				calc.SetParams(p)
				hub.BroadcastParams(p)
			})
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           newMux(cfg, calc, reg, hub),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("dcrcalc serve shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
