package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/golf-edge/internal/api/handlers"
	"github.com/jstittsworth/golf-edge/internal/api/middleware"
	"github.com/jstittsworth/golf-edge/internal/ledger"
	"github.com/jstittsworth/golf-edge/internal/scanner"
	"github.com/jstittsworth/golf-edge/internal/services"
	"github.com/jstittsworth/golf-edge/pkg/config"
	"github.com/jstittsworth/golf-edge/pkg/database"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(
	group *gin.RouterGroup,
	db *database.DB,
	store *ledger.GormStore,
	feed *services.FeedService,
	mental *services.MentalFormService,
	sc *scanner.Scanner,
	cfg *config.Config,
	logger *logrus.Logger,
) {
	// Initialize handlers
	opportunityHandler := handlers.NewOpportunityHandler(feed, mental, sc, cfg, logger)
	betHandler := handlers.NewBetHandler(store, logger)
	reportHandler := handlers.NewReportHandler(ledger.NewReporter(store), logger)
	mentalHandler := handlers.NewMentalFormHandler(mental, logger)
	healthHandler := handlers.NewHealthHandler()

	group.GET("/health", healthHandler.GetHealth)

	// Read paths - public
	group.GET("/opportunities/scan", opportunityHandler.Scan)
	group.GET("/bets", betHandler.List)
	group.GET("/bets/:id", betHandler.Get)
	group.GET("/reports/performance", reportHandler.Performance)
	group.GET("/reports/buckets", reportHandler.Buckets)
	group.GET("/players/:id/mental-form", mentalHandler.Get)

	// Write paths - money movement and score ingestion require auth
	auth := group.Group("")
	auth.Use(middleware.AuthRequired(cfg.JWTSecret))
	{
		auth.POST("/bets", betHandler.Record)
		auth.POST("/bets/:id/settle", betHandler.Settle)
		auth.PUT("/players/:id/mental-form", mentalHandler.Upsert)
		auth.POST("/players/:id/mental-form/stale", mentalHandler.MarkStale)
	}
}
