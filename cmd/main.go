package main

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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/racefan-dev/fantasy-chase/cache"
	"github.com/racefan-dev/fantasy-chase/config"
	"github.com/racefan-dev/fantasy-chase/db"
	"github.com/racefan-dev/fantasy-chase/handlers"
	"github.com/racefan-dev/fantasy-chase/live"
	appMiddleware "github.com/racefan-dev/fantasy-chase/middleware"
	"github.com/racefan-dev/fantasy-chase/metrics"
	"github.com/racefan-dev/fantasy-chase/nascar"
	"github.com/racefan-dev/fantasy-chase/repositories"
	api "github.com/racefan-dev/fantasy-chase/routes"
	"github.com/racefan-dev/fantasy-chase/services"
	"github.com/racefan-dev/fantasy-chase/storage"
	"github.com/racefan-dev/fantasy-chase/tiebreak"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("redis connection established", slog.String("addr", cfg.RedisAddr))

	// Avatar storage is optional. Without R2 credentials the profiles
	// surface simply rejects uploads.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 credentials not set, avatar uploads disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	hub := live.NewHub(logger)
	go hub.Run()
	logger.Info("websocket hub started")

	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	pickRepo := repositories.NewPostgresPickRepository(dbConn)
	freePickRepo := repositories.NewPostgresFreePickRaceRepository(dbConn)
	scoreRepo := repositories.NewPostgresRaceScoreRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	roundRepo := repositories.NewPostgresChaseRoundRepository(dbConn)
	elimRepo := repositories.NewPostgresChaseEliminationRepository(dbConn)
	resultRepo := repositories.NewPostgresResultCacheRepository(dbConn)
	logger.Info("repositories initialized")

	txRunner := db.NewTxRunner(dbConn)
	feedClient := nascar.NewHTTPClient(cfg.FeedBaseURL, cfg.FeedTimeout, logger)
	resultsCache := cache.NewResultsCache(redisClient)
	rateLimiter := cache.NewRateLimiter(redisClient, cache.DefaultRequestLimit, time.Minute)

	scoringService := services.NewScoringService(
		leagueRepo,
		pickRepo,
		scoreRepo,
		standingRepo,
		freePickRepo,
		resultRepo,
		feedClient,
		txRunner,
		hub,
		appMetrics,
		logger,
	)
	chaseService := services.NewChaseService(
		leagueRepo,
		standingRepo,
		roundRepo,
		elimRepo,
		tiebreak.NewProportionalCutoff(),
		txRunner,
		hub,
		appMetrics,
		logger,
	)
	standingsService := services.NewStandingsService(leagueRepo, standingRepo, userRepo, uploader)
	pickService := services.NewPickService(leagueRepo, pickRepo, freePickRepo, feedClient, logger)
	userService := services.NewUserService(userRepo, uploader, logger)
	demoService := services.NewDemoService(leagueRepo, userRepo, pickRepo, feedClient, scoringService, txRunner, logger)
	logger.Info("services initialized")

	if cfg.ScoreInterval > 0 {
		go runScoreScheduler(scoringService, cfg.ScoreInterval, logger)
	} else {
		logger.Info("auto-score scheduler disabled")
	}

	auth := appMiddleware.NewAuthenticator(cfg.JWTSecretKey)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		auth,
		registry,
		handlers.NewScoringHandler(scoringService, logger),
		handlers.NewChaseHandler(chaseService, logger),
		handlers.NewStandingsHandler(standingsService, logger),
		handlers.NewPickHandler(pickService, logger),
		handlers.NewUserHandler(userService, logger),
		handlers.NewProxyHandler(feedClient, resultsCache, rateLimiter, appMetrics, logger),
		handlers.NewWebSocketHandler(hub, logger),
		handlers.NewDemoHandler(demoService, logger),
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// runScoreScheduler periodically scores races that completed since the
// last pass, across every league.
func runScoreScheduler(scorer *services.ScoringService, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("auto-score scheduler started", slog.Duration("interval", interval))

	if err := scorer.ScoreCompletedRaces(context.Background()); err != nil {
		logger.Error("scheduler: initial scoring sweep failed", slog.Any("error", err))
	}

	for range ticker.C {
		if err := scorer.ScoreCompletedRaces(context.Background()); err != nil {
			logger.Error("scheduler: scoring sweep failed", slog.Any("error", err))
		}
	}
}
