package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/golf-edge/internal/models"
	"github.com/jstittsworth/golf-edge/pkg/config"
	"github.com/jstittsworth/golf-edge/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	// Enable UUID extension for PostgreSQL
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	// Create indexes
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_bets_outcome ON bets(outcome)",
		"CREATE INDEX IF NOT EXISTS idx_bets_event ON bets(event)",
		"CREATE INDEX IF NOT EXISTS idx_bets_placed_at ON bets(placed_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_mental_form_stale ON mental_form_scores(stale)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	tables := []string{
		"bets",
		"mental_form_scores",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}

func seedData(db *database.DB) error {
	// Sample mental form scores covering the full range of adjustment signs
	scores := []models.MentalFormScore{
		{
			PlayerID:       "18417",
			PlayerName:     "Scottie Scheffler",
			Score:          0.6,
			Summary:        "Back-to-back top fives, relaxed in pressers after the birth of his son.",
			InsightSources: pq.StringArray{"press_conference", "recent_results"},
		},
		{
			PlayerID:       "14577",
			PlayerName:     "Rory McIlroy",
			Score:          -0.4,
			Summary:        "Visibly frustrated on Sunday, equipment change mid-season.",
			InsightSources: pq.StringArray{"broadcast", "social_media"},
		},
		{
			PlayerID:       "22085",
			PlayerName:     "Ludvig Aberg",
			Score:          0.0,
			Summary:        "No notable signals either way this week.",
			InsightSources: pq.StringArray{},
		},
	}

	for i := range scores {
		if err := db.Create(&scores[i]).Error; err != nil {
			logrus.Warnf("Failed to seed mental form score for %s (may already exist): %v", scores[i].PlayerName, err)
		}
	}

	logrus.Infof("Seeded %d mental form scores", len(scores))
	return nil
}
