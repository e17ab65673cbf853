package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/app"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/collect"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/config"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/gemini"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/logger"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/metrics"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/seen"
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/xpost"
)

func main() {
	// .env is optional; in production everything comes from real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init(false)
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.Debug)

	if cfg.MonitoringPort != "" {
		go startMonitoringServer(cfg.MonitoringPort)
	}

	if err := run(cfg); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	feeds, err := collect.LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		return err
	}

	gen, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GenerateTimeout)
	if err != nil {
		return err
	}
	defer gen.Close()

	pipeline := app.NewPipeline(app.Deps{
		Config:    cfg,
		Collector: collect.New(feeds, cfg.PerFeedLimit, cfg.FeedTimeout, cfg.ResolveTimeout),
		Store:     seen.NewFileStore(cfg.SeenFilePath),
		Generator: gen,
		Publisher: xpost.NewClient(cfg.XBearerToken, xpost.DefaultBaseURL, cfg.PublishTimeout),
	})
	return pipeline.Run(ctx)
}

func startMonitoringServer(port string) {
	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("starting monitoring server", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("monitoring server error", "error", err)
	}
}

// healthHandler summarizes the last run: whether it succeeded, when, and how
// much the pipeline actually posted.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":             status,
		"last_run":           stats["last_run_time"],
		"posts_published":    stats["posts_published"],
		"duplicates_skipped": stats["duplicates_skipped"],
		"last_error":         stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
