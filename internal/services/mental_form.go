package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jstittsworth/golf-edge/internal/models"
)

// ErrInvalidScore is returned when an ingested mental form score falls
// outside [-1, 1].
var ErrInvalidScore = errors.New("mental form score must be in [-1, 1]")

// MentalFormService stores per-player mental form scores produced by the
// external text scorer. Scores are opaque floats here; how they were derived
// is the scorer's business.
type MentalFormService struct {
	db     *gorm.DB
	cache  *CacheService
	logger *logrus.Logger
}

func NewMentalFormService(db *gorm.DB, cache *CacheService, logger *logrus.Logger) *MentalFormService {
	return &MentalFormService{db: db, cache: cache, logger: logger}
}

// Upsert stores a freshly computed score for a player, replacing any prior
// one and clearing its staleness.
func (s *MentalFormService) Upsert(ctx context.Context, score *models.MentalFormScore) error {
	if score.Score < -1 || score.Score > 1 {
		return fmt.Errorf("%w: got %.3f", ErrInvalidScore, score.Score)
	}
	if score.ComputedAt.IsZero() {
		score.ComputedAt = time.Now().UTC()
	}
	score.Stale = false

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"player_name", "score", "summary", "insight_sources", "stale", "computed_at", "updated_at",
		}),
	}).Create(score).Error
	if err != nil {
		return fmt.Errorf("mental form upsert failed: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, MentalScoreCacheKey(score.PlayerID)); err != nil {
			s.logger.WithError(err).Debug("Mental score cache invalidation failed")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"player": score.PlayerID,
		"score":  score.Score,
	}).Info("Stored mental form score")
	return nil
}

// Get returns the player's current score, or nil if none exists.
func (s *MentalFormService) Get(ctx context.Context, playerID string) (*models.MentalFormScore, error) {
	var score models.MentalFormScore
	err := s.db.WithContext(ctx).First(&score, "player_id = ?", playerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mental form lookup failed: %w", err)
	}
	return &score, nil
}

// All returns every stored score keyed by player, the shape the scanner
// consumes. Stale scores are still returned; staleness is advisory.
func (s *MentalFormService) All(ctx context.Context) (map[string]*models.MentalFormScore, error) {
	var scores []models.MentalFormScore
	if err := s.db.WithContext(ctx).Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("mental form query failed: %w", err)
	}

	out := make(map[string]*models.MentalFormScore, len(scores))
	for i := range scores {
		out[scores[i].PlayerID] = &scores[i]
	}
	return out, nil
}

// MarkStale flags a player's score as outdated, typically because newer
// textual insights have arrived and the scorer has not rerun yet.
func (s *MentalFormService) MarkStale(ctx context.Context, playerID string) error {
	result := s.db.WithContext(ctx).Model(&models.MentalFormScore{}).
		Where("player_id = ?", playerID).
		Update("stale", true)
	if result.Error != nil {
		return fmt.Errorf("mental form stale update failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
