// cmd/api/main.go
// Main entry point for the matching service
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imadgeboyega/kiekky-matching/internal/analytics"
	"github.com/imadgeboyega/kiekky-matching/internal/auth"
	"github.com/imadgeboyega/kiekky-matching/internal/common/database"
	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matching/internal/config"
	"github.com/imadgeboyega/kiekky-matching/internal/dating"
	"github.com/imadgeboyega/kiekky-matching/internal/events"
	"github.com/imadgeboyega/kiekky-matching/internal/matching"
	"github.com/imadgeboyega/kiekky-matching/internal/trust"
)

var startTime = time.Now()

func main() {
	// 1. Load environment variables
	envErr := godotenv.Load()

	// 2. Load and validate configuration
	cfg := config.Load()
	log := logger.NewStructured(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		log.Warn("no .env file found, using environment variables", map[string]interface{}{"error": envErr.Error()})
	}
	if err := cfg.Validate(); err != nil {
		fatal(log, "configuration validation failed", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Connect to PostgreSQL
	db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal(log, "failed to connect to PostgreSQL", err)
	}
	defer db.Close()
	log.Info("connected to PostgreSQL", nil)

	// 4. Connect to Redis (optional outside production)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			if cfg.IsProduction() {
				fatal(log, "failed to connect to Redis", err)
			}
			log.Warn("continuing without Redis", map[string]interface{}{"error": err.Error()})
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info("connected to Redis", nil)
		}
	}

	// 5. Run migrations for owned tables
	if err := matching.Migrate(ctx, db); err != nil {
		fatal(log, "failed to migrate matching tables", err)
	}
	if err := trust.Migrate(ctx, db); err != nil {
		fatal(log, "failed to migrate trust tables", err)
	}

	// 6. Event stream
	var stream events.Stream
	if redisClient != nil {
		stream = events.NewRedisStream(redisClient, cfg.EventStream, cfg.EventStreamMaxLen)
	} else {
		log.Warn("using in-process event stream", map[string]interface{}{"stream": cfg.EventStream})
		stream = events.NewMemoryStream(cfg.EventStream)
	}
	publisher := events.NewPublisher(stream, log.WithFields(map[string]interface{}{"component": "publisher"}))

	// 7. Matching intelligence
	matchingRepo := matching.NewPostgresRepository(db)
	var vectorStore matching.VectorStore = matchingRepo
	if redisClient != nil {
		vectorStore = matching.NewCachedVectorStore(matchingRepo, redisClient, cfg.VectorCacheTTL, log)
	}
	matchingService := matching.NewService(matchingRepo, vectorStore, publisher, matching.ServiceConfig{
		SuggestionThreshold: cfg.SuggestionThreshold,
		SuggestionLimit:     cfg.SuggestionLimit,
		SuggestionPoolSize:  cfg.CandidatePoolSize,
	}, log.WithFields(map[string]interface{}{"component": "matching"}))
	matchingHandler := matching.NewHandler(matchingService)

	// 8. Recommendations
	ranker := dating.NewRanker(dating.NewPostgresRepository(db), matchingService, vectorStore, dating.RankerConfig{
		Limit:    cfg.RecommendationLimit,
		PoolSize: cfg.CandidatePoolSize,
		Seed:     cfg.ShuffleSeed,
	}, log.WithFields(map[string]interface{}{"component": "dating"}))
	datingHandler := dating.NewHandler(ranker)

	// 9. Trust & safety
	trustRepo := trust.NewPostgresRepository(db)
	trustLog := log.WithFields(map[string]interface{}{"component": "trust"})
	trustSystem := trust.NewSystem(trustRepo, publisher, cfg.BehavioralTrustThreshold, trustLog)
	safetyMonitor := trust.NewSafetyMonitor(trustRepo, publisher, cfg.SafetyMessageRate, trustLog)
	trustHandler := trust.NewHandler(trustSystem, safetyMonitor)

	// 10. Analytics
	tracker := analytics.NewTracker(matchingRepo, analytics.NewPostgresRepository(db),
		log.WithFields(map[string]interface{}{"component": "analytics"}))
	analyticsHandler := analytics.NewHandler(tracker)

	// 11. Routes
	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck(stream)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	authMiddleware := auth.NewMiddleware()
	dating.RegisterRoutes(router, datingHandler, authMiddleware)
	matching.RegisterRoutes(router, matchingHandler, authMiddleware)
	trust.RegisterRoutes(router, trustHandler, authMiddleware)
	analytics.RegisterRoutes(router, analyticsHandler, authMiddleware)

	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware)

	// 12. Background workers
	var workers sync.WaitGroup
	if cfg.EnableConsumers {
		handlers := map[string]events.Handler{
			events.GroupAI:         matching.NewEventHandler(matchingService, log.WithFields(map[string]interface{}{"group": events.GroupAI})),
			events.GroupAnalytics:  tracker,
			events.GroupModeration: trust.NewModerationHandler(safetyMonitor, trustLog),
		}
		for group, handler := range handlers {
			consumer := events.NewConsumer(stream, events.ConsumerConfig{
				Group: group,
				Name:  cfg.ConsumerName,
				Count: cfg.ConsumerBatch,
				Block: cfg.ConsumerBlock,
			}, handler, log.WithFields(map[string]interface{}{"group": group}))

			workers.Add(1)
			go func() {
				defer workers.Done()
				if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
					log.Error("consumer stopped", map[string]interface{}{"group": consumer.Group(), "error": err.Error()})
				}
			}()
		}
		log.Info("event consumers started", map[string]interface{}{"groups": len(handlers)})
	}

	matching.NewScheduler(matchingService, cfg.VectorRefreshInterval, cfg.VectorStaleAfter,
		log.WithFields(map[string]interface{}{"component": "scheduler"})).Start(ctx)

	// 13. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", map[string]interface{}{"addr": srv.Addr, "environment": cfg.Environment})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal(log, "failed to start server", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutdown signal received", nil)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", map[string]interface{}{"error": err.Error()})
	}
	workers.Wait()

	log.Info("server exited gracefully", nil)
}

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, map[string]interface{}{"error": err.Error()})
	os.Exit(1)
}
