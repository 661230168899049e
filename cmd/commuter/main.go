package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commuter/internal/cache"
	"commuter/internal/config"
	"commuter/internal/handler"
	"commuter/internal/hub"
	"commuter/internal/ingestor"
	"commuter/internal/middleware"
	"commuter/internal/store"
	"commuter/pkg/layout"
)

const version = "1.0.0"

func main() {
	start := time.Now()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	source := layout.NewSource(cfg.NetworkSource, logger)

	logger.Info("starting commuter server",
		"log_level", cfg.LogLevel.String(),
		"http_addr", cfg.HTTPAddr,
		"network_source", source.String(),
		"reload_interval", cfg.NetworkReloadInterval,
		"redis_enabled", cfg.RedisEnabled,
	)

	networkStore := store.New()
	wsHub := hub.NewHub(networkStore.SnapshotForCells, logger)
	ing := ingestor.NewNetworkIngestor(source, networkStore, cfg.NetworkReloadInterval, logger)

	var (
		redisCache *cache.RedisCache
		warmer     *cache.CacheWarmer
	)
	if cfg.RedisEnabled {
		redisCache, err = cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache", "error", err)
		} else {
			defer redisCache.Close()
			warmer = cache.NewCacheWarmer(redisCache, networkStore, cfg.CacheTTL, logger)
		}
	}

	firstLoad := true
	ing.SetOnUpdate(func(ctx context.Context) {
		if warmer != nil && (!firstLoad || cfg.CacheWarmOnStart) {
			warmer.Refresh(ctx)
		}
		firstLoad = false
		wsHub.NotifyReload()
	})

	var snapshotCache handler.SnapshotCache
	if redisCache != nil {
		snapshotCache = redisCache
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerWindow, cfg.RateLimitWindow, cfg.RateLimitWhitelist, logger)
	limiter.OnBlocked(handler.ServerStats.IncRateLimitBlocked)

	networkHandler := handler.NewNetworkHandler(networkStore, snapshotCache, cfg.CacheTTL, cfg.MaxRangeCells, logger)
	wsHandler := handler.NewWSHandler(wsHub, cfg.CORSAllowedOrigins, logger)
	healthHandler := handler.NewHealthHandler(ing, networkStore)
	statsHandler := handler.NewStatsHandler(networkStore, wsHub, limiter, version)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /range/{x0}/{y0}/{x1}/{y1}", networkHandler.Range)
	mux.HandleFunc("GET /v1/path/{from}/{to}", networkHandler.Path)
	mux.HandleFunc("GET /v1/entities/{id}", networkHandler.Entity)
	mux.HandleFunc("GET /v1/network", networkHandler.Network)
	mux.HandleFunc("GET /v1/stats", statsHandler.GetStats)

	mux.HandleFunc("GET /healthz", healthHandler.Healthz)
	mux.HandleFunc("GET /readyz", healthHandler.Readyz)

	var api http.Handler = mux
	if cfg.GzipEnabled {
		api = handler.GzipMiddleware(api)
	}

	// websocket upgrades bypass gzip
	top := http.NewServeMux()
	top.HandleFunc("/v1/ws", wsHandler.ServeWS)
	top.Handle("/", api)

	var root http.Handler = limiter.Middleware(top)
	root = handler.CORSMiddleware(cfg.CORSAllowedOrigins)(root)
	root = handler.CountRequests(root)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      root,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go wsHub.Run(ctx)
	go limiter.Run(ctx)
	go ing.Start(ctx)

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("shutdown complete", "uptime", time.Since(start).Round(time.Second))
}
