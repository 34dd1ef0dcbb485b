package main

import (
	"context"
	_ "github.com/joho/godotenv/autoload"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/pantrychef/sous/internal/api"
	"github.com/pantrychef/sous/internal/cache"
	"github.com/pantrychef/sous/internal/config"
	"github.com/pantrychef/sous/internal/db"
	"github.com/pantrychef/sous/internal/logger"
	"github.com/pantrychef/sous/internal/metrics"
	"github.com/pantrychef/sous/internal/middleware"
	"github.com/pantrychef/sous/internal/sentry"
	"github.com/pantrychef/sous/internal/services/completion"
	"github.com/pantrychef/sous/internal/services/suggest"
	"github.com/pantrychef/sous/internal/services/units"
	"github.com/pantrychef/sous/internal/store"
	"github.com/pantrychef/sous/internal/telemetry"
	"github.com/pantrychef/sous/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	otelchimetric "github.com/riandyrn/otelchi/metric"
	"go.opentelemetry.io/otel"
)

func main() {
	defer sentry.Recover()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, nil)
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion); err != nil {
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

	// Asynq client for enqueuing tasks
	asynqClient := worker.NewClient(cfg.RedisURL)
	defer asynqClient.Close()

	// Completion provider with fallback
	provider := completion.NewProvider(cfg.Suggestion, cfg.GroqKey, cfg.OpenAIKey)

	// Suggestion pipeline
	suggester := suggest.New(provider, units.NewNormalizer(), st, st)
	suggester.SetResultCache(
		cache.NewRedisCache(redisClient),
		time.Duration(cfg.Suggestion.CacheTTLMinutes)*time.Minute,
	)

	// API handlers
	apiServer := api.NewServer(cfg, st, suggester, asynqClient)

	// Router
	r := chi.NewRouter()

	// Middleware
	r.Use(otelchi.Middleware("sous-server",
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	))

	// HTTP metrics
	metricCfg := otelchimetric.NewBaseConfig("sous-server", otelchimetric.WithMeterProvider(otel.GetMeterProvider()))
	r.Use(otelchimetric.NewRequestDurationMillis(metricCfg))
	r.Use(otelchimetric.NewRequestInFlight(metricCfg))
	r.Use(otelchimetric.NewResponseSizeBytes(metricCfg))

	r.Use(sentry.HTTPMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Protected API routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg))
		r.Post("/api/suggestions", apiServer.HandleSuggest)
		r.Post("/api/suggestions/async", apiServer.HandleSuggestAsync)
		r.Get("/api/suggestion-status", apiServer.HandleSuggestionStatus)
		r.Get("/api/suggestions/history", apiServer.HandleSuggestionHistory)
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	slog.Info("Starting server", "port", port)

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
