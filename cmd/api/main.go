// ABOUTME: Main entry point for the Content Shield API server
// ABOUTME: Wires together all components and starts the HTTP server

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-shield-api/api"
	"content-shield-api/api/handlers"
	"content-shield-api/core/detection"
	"content-shield-api/core/interfaces"
	"content-shield-api/core/providers"
	"content-shield-api/infrastructure/cache/memory"
	"content-shield-api/infrastructure/cache/redis"
	stdhttp "content-shield-api/infrastructure/http/standard"
	logrusimpl "content-shield-api/infrastructure/logger/logrus"
	"content-shield-api/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logrusimpl.NewLogger(cfg.LogLevel)
	logger.Info("Starting Content Shield API", map[string]interface{}{
		"port":       cfg.Server.Port,
		"cache_type": cfg.Cache.Type,
		"provider":   cfg.Provider.Name,
	})

	// Create cache
	var cache interfaces.Cache
	var cacheMax int
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := redis.NewRedisCache(cfg.Cache.Redis)
		if err != nil {
			logger.Error("Failed to create Redis cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			cache = memory.NewMemoryCache(cfg.Cache.MaxEntries)
			cacheMax = cfg.Cache.MaxEntries
		} else {
			cache = redisCache
			logger.Info("Using Redis cache", map[string]interface{}{
				"address": cfg.Cache.Redis.Address,
			})
		}
	default:
		cache = memory.NewMemoryCache(cfg.Cache.MaxEntries)
		cacheMax = cfg.Cache.MaxEntries
		logger.Info("Using memory cache", map[string]interface{}{
			"max_entries": cfg.Cache.MaxEntries,
		})
	}

	httpClient := stdhttp.NewStandardHTTPClient(time.Duration(cfg.Provider.TimeoutSeconds) * time.Second)

	deps := interfaces.Dependencies{
		Cache:      cache,
		HTTPClient: httpClient,
		Logger:     logger,
	}

	// Create the provider and the detection pipeline around it
	provider := providers.New(providers.Config{
		Name:              cfg.Provider.Name,
		SaplingAPIKey:     cfg.Provider.SaplingAPIKey,
		HiveAPIKey:        cfg.Provider.HiveAPIKey,
		HiveEndpoint:      cfg.Provider.HiveEndpoint,
		ModelServiceURL:   cfg.Provider.ModelServiceURL,
		Timeout:           time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.Provider.RequestsPerSecond,
	}, deps)

	service := detection.NewService(provider, deps, detection.Config{
		CacheTTL:      time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		MinTextLength: cfg.Detection.MinTextLength,
		MaxTextLength: cfg.Detection.MaxTextLength,
		ChunkSize:     cfg.Detection.ChunkSize,
		MaxRetries:    cfg.Detection.MaxRetries,
	})

	// Create API with middleware
	humaAPI, router := api.NewAPIWithMiddleware(api.APIConfig{
		Logger:     logger,
		RateLimit:  cfg.Server.RateLimit,
		RateWindow: time.Duration(cfg.Server.RateWindowSeconds) * time.Second,
	})

	handlers.NewDetectHandler(service).RegisterRoutes(humaAPI)
	handlers.NewHealthHandler(service, cache, cacheMax).RegisterRoutes(humaAPI)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server stopped", nil)
}
