package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/churnsight/churnsight/internal/alerts"
	"github.com/churnsight/churnsight/internal/analytics"
	"github.com/churnsight/churnsight/internal/api"
	"github.com/churnsight/churnsight/internal/auth"
	"github.com/churnsight/churnsight/internal/config"
	"github.com/churnsight/churnsight/internal/dataset"
	"github.com/churnsight/churnsight/internal/metrics"
	"github.com/churnsight/churnsight/internal/session"
	"github.com/churnsight/churnsight/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	uiDir := flag.String("ui-dir", "", "serve the dashboard static files from this directory (e.g. ui/dist); leave empty to disable")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("churnsight-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"predictions", cfg.Server.Data.PredictionsPath,
		"attributions", cfg.Server.Data.AttributionsPath,
		"session_ttl", cfg.Server.Sessions.TTL,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load the prediction artifacts once at startup. A dataset that cannot
	// be loaded or yields no importance ranking is fatal — there is nothing
	// to serve without it.
	ds, err := dataset.Load(cfg.Server.Data)
	if err != nil {
		slog.Error("failed to load dataset", "err", err)
		os.Exit(1)
	}
	snap, err := analytics.NewSnapshot(ds, cfg.Server.Data.TopFeatures)
	if err != nil {
		slog.Error("failed to analyze dataset", "err", err)
		os.Exit(1)
	}
	provider := analytics.NewProvider(snap)

	reg := metrics.NewRegistry()
	reg.SetDatasetRows(ds.Predictions.Len())

	slog.Info("dataset loaded",
		"employees", ds.Predictions.Len(),
		"features", len(ds.Attributions.Features),
	)

	// Session store with background TTL eviction.
	sessions := session.New(cfg.Server.Sessions.TTL, cfg.Server.Slider.Default)
	go sessions.Run(ctx)
	reg.SetSessionCounter(sessions.Count)

	// Alerts engine — evaluates rules on every dataset load and reload.
	alertEngine := alerts.New(cfg.Server.Alerts)
	alertEngine.Evaluate(analytics.Summarize(ds.Predictions, cfg.Server.Slider.Default))

	// Optional hot reload of the CSV artifacts.
	if cfg.Server.Data.Watch {
		go func() {
			err := dataset.Watch(ctx, cfg.Server.Data, func(next *dataset.Dataset) {
				nextSnap, err := analytics.NewSnapshot(next, cfg.Server.Data.TopFeatures)
				if err != nil {
					slog.Error("reloaded dataset unusable, keeping previous", "err", err)
					return
				}
				provider.Swap(nextSnap)
				reg.IncReload()
				reg.SetDatasetRows(next.Predictions.Len())
				alertEngine.Evaluate(analytics.Summarize(next.Predictions, cfg.Server.Slider.Default))
				slog.Info("dataset reloaded", "employees", next.Predictions.Len())
			})
			if err != nil {
				slog.Error("dataset watcher stopped", "err", err)
			}
		}()
	}

	// WebSocket hub — broadcasts the overview to dashboard clients.
	hub := ws.New(provider, cfg.Server.Slider, cfg.Server.Stream.Interval)
	go hub.Run(ctx)
	reg.SetWSClientCounter(hub.Count)

	// REST API with optional API key authentication.
	middleware := auth.APIKeyMiddleware(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)
	apiHandler := api.New(provider, sessions, alertEngine, cfg.Server.Slider)

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", middleware(reg.Middleware(apiHandler)))
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", reg.Handler())

	// Optional: serve the pre-built dashboard UI from a local directory.
	// Usage:  ./bin/churnsight-server -config config/server.yaml -ui-dir ui/dist
	// The "/" catch-all serves index.html for any unknown path (SPA routing).
	if *uiDir != "" {
		fs := http.FileServer(http.Dir(*uiDir))
		httpMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			// SPA fallback: if the requested file doesn't exist, serve index.html.
			path := *uiDir + r.URL.Path
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, *uiDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
		slog.Info("serving UI static files", "dir", *uiDir)
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("churnsight-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
