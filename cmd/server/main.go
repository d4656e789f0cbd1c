package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/golf-edge/internal/api"
	"github.com/jstittsworth/golf-edge/internal/api/middleware"
	"github.com/jstittsworth/golf-edge/internal/ledger"
	"github.com/jstittsworth/golf-edge/internal/models"
	"github.com/jstittsworth/golf-edge/internal/providers"
	"github.com/jstittsworth/golf-edge/internal/scanner"
	"github.com/jstittsworth/golf-edge/internal/services"
	"github.com/jstittsworth/golf-edge/pkg/config"
	"github.com/jstittsworth/golf-edge/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize services
	cacheService := services.NewCacheService(redisClient)
	feedClient := providers.NewOddsFeedClient(
		cfg.OddsFeedURL, cfg.OddsFeedAPIKey, cfg.OddsFeedRateLimit, cfg.OddsFeedTimeout, logger)
	feedService := services.NewFeedService(feedClient, cacheService, cfg.FeedCacheTTL, logger)
	mentalService := services.NewMentalFormService(db.DB, cacheService, logger)

	ledgerStore := ledger.NewGormStore(db.DB, logger)
	oppScanner := scanner.New(ledgerStore, logger)

	// Alert channel
	var smsService services.SMSService
	switch cfg.SMSProvider {
	case "twilio":
		rateLimiter := services.NewSMSRateLimiter(cfg.AlertRateLimit, cfg.AlertRateWindow)
		smsService = services.NewTwilioSMSService(
			cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, rateLimiter, logger)
	default:
		smsService = services.NewMockSMSService(logger)
	}

	// Scheduled scans
	if cfg.EnableScanScheduler {
		markets := make([]models.Market, 0, len(cfg.ScanMarkets))
		for _, code := range cfg.ScanMarkets {
			market, err := models.ParseMarket(code)
			if err != nil {
				logrus.Fatalf("Invalid scan market %q: %v", code, err)
			}
			markets = append(markets, market)
		}

		schedulerCfg := services.ScanSchedulerConfig{
			Schedule: cfg.ScanSchedule,
			Event:    cfg.ScanEvent,
			Markets:  markets,
			Filters: scanner.Filters{
				MinEV:           cfg.MinEV,
				MinStake:        cfg.MinStake,
				Bankroll:        cfg.Bankroll,
				KellyMultiplier: cfg.KellyMultiplier,
			},
			TopN:       cfg.AlertTopN,
			Recipients: cfg.AlertRecipients,
		}
		scheduler := services.NewScanScheduler(
			feedService, mentalService, oppScanner, smsService, logger, schedulerCfg)
		if err := scheduler.Start(); err != nil {
			logrus.Errorf("Failed to start scan scheduler: %v", err)
		} else {
			defer scheduler.Stop()
		}
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	// Setup API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, db, ledgerStore, feedService, mentalService, oppScanner, cfg, logger)

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
