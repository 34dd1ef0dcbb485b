package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"

	"github.com/pantrychef/sous/internal/cache"
	"github.com/pantrychef/sous/internal/config"
	"github.com/pantrychef/sous/internal/db"
	"github.com/pantrychef/sous/internal/logger"
	"github.com/pantrychef/sous/internal/metrics"
	"github.com/pantrychef/sous/internal/sentry"
	"github.com/pantrychef/sous/internal/services/completion"
	"github.com/pantrychef/sous/internal/services/suggest"
	"github.com/pantrychef/sous/internal/services/units"
	"github.com/pantrychef/sous/internal/store"
	"github.com/pantrychef/sous/internal/telemetry"
	"github.com/pantrychef/sous/internal/worker"
	"github.com/redis/go-redis/v9"
)

func main() {
	defer func() {
		sentry.Recover()
	}()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName+"-worker", cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, nil)
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName+"-worker", cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	} else {
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize business metrics
	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init business metrics", "error", err)
	}

	// Initialize logger with OTel support
	logger := logger.New(cfg.Env)
	slog.SetDefault(logger) // Set as default so slog.Info() uses our handler

	// Database connection
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	st := store.New(pool)

	// Redis client for the result cache
	var redisClient *redis.Client
	if opt, err := redis.ParseURL(cfg.RedisURL); err == nil {
		redisClient = redis.NewClient(opt)
	} else {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	}
	defer redisClient.Close()

	// Completion provider with fallback
	provider := completion.NewProvider(cfg.Suggestion, cfg.GroqKey, cfg.OpenAIKey)

	// Suggestion pipeline
	suggester := suggest.New(provider, units.NewNormalizer(), st, st)
	suggester.SetResultCache(
		cache.NewRedisCache(redisClient),
		time.Duration(cfg.Suggestion.CacheTTLMinutes)*time.Minute,
	)

	workerMetrics, err := worker.NewWorkerMetrics()
	if err != nil {
		slog.Warn("Failed to init worker metrics", "error", err)
	}

	// Suggestion processor
	processor := worker.NewSuggestionProcessor(st, suggester, workerMetrics)

	// Asynq server
	srv := worker.NewServer(cfg.RedisURL)

	// Register handlers
	mux := asynq.NewServeMux()
	mux.Use(worker.SentryMiddleware)
	mux.Use(worker.OTelMiddleware)
	mux.HandleFunc(worker.TypeSuggestRecipes, processor.HandleSuggestRecipes)
	mux.HandleFunc(worker.TypeCleanupJobs, processor.HandleCleanupJobs)

	// Periodic cleanup of finished jobs
	scheduler := worker.NewScheduler(cfg.RedisURL)
	if _, err := scheduler.Register("@every 24h", worker.NewCleanupJobsTask()); err != nil {
		log.Fatalf("Failed to register cleanup task: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutting down worker...")
		scheduler.Shutdown()
		srv.Shutdown()
	}()

	slog.Info("Starting worker", "redis", cfg.RedisURL)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
