package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jstittsworth/golf-edge/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GormStore persists the ledger in a relational database through GORM.
//
// Record serializes per fingerprint: the pending check and the insert run
// under a fingerprint-keyed lock and inside one transaction, so two
// concurrent scans cannot both open exposure on the same fingerprint.
type GormStore struct {
	db     *gorm.DB
	logger *logrus.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGormStore creates a ledger store backed by the given database.
func NewGormStore(db *gorm.DB, logger *logrus.Logger) *GormStore {
	return &GormStore{
		db:     db,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// fingerprintLock returns the mutex serializing one fingerprint's
// check-then-act. Locks are never evicted; the fingerprint space for a
// tournament week is small.
func (s *GormStore) fingerprintLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func (s *GormStore) HasPending(ctx context.Context, fp models.Fingerprint) (bool, error) {
	var count int64
	err := s.pendingQuery(ctx, fp).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("pending lookup failed: %w", err)
	}
	return count > 0, nil
}

func (s *GormStore) pendingQuery(ctx context.Context, fp models.Fingerprint) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Bet{}).
		Where("event = ? AND bet_type = ? AND market = ? AND player_id = ? AND opponent = ? AND round = ? AND outcome = ?",
			fp.Event, fp.BetType, fp.Market, fp.PlayerID, fp.Opponent, fp.Round, models.OutcomePending)
}

func (s *GormStore) Record(ctx context.Context, bet *models.Bet) (uuid.UUID, error) {
	lock := s.fingerprintLock(bet.Fingerprint.Key())
	lock.Lock()
	defer lock.Unlock()

	if bet.ID == uuid.Nil {
		bet.ID = uuid.New()
	}
	bet.Outcome = models.OutcomePending
	if bet.PlacedAt.IsZero() {
		bet.PlacedAt = time.Now().UTC()
	}
	bet.PotentialReturn = bet.Stake * bet.Odds

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Bet{}).
			Where("event = ? AND bet_type = ? AND market = ? AND player_id = ? AND opponent = ? AND round = ? AND outcome = ?",
				bet.Fingerprint.Event, bet.Fingerprint.BetType, bet.Fingerprint.Market,
				bet.Fingerprint.PlayerID, bet.Fingerprint.Opponent, bet.Fingerprint.Round,
				models.OutcomePending).
			Count(&count).Error; err != nil {
			return fmt.Errorf("pending lookup failed: %w", err)
		}
		if count > 0 {
			return ErrDuplicatePending
		}
		return tx.Create(bet).Error
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"bet_id": bet.ID,
		"player": bet.Fingerprint.PlayerID,
		"market": bet.Fingerprint.Market,
		"stake":  bet.Stake,
		"odds":   bet.Odds,
	}).Info("Recorded bet")

	return bet.ID, nil
}

func (s *GormStore) Settle(ctx context.Context, id uuid.UUID, outcome models.BetOutcome) (*models.Bet, error) {
	if !outcome.Terminal() {
		return nil, fmt.Errorf("invalid settlement outcome: %q", outcome)
	}

	var settled models.Bet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bet models.Bet
		if err := tx.First(&bet, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownBet
			}
			return fmt.Errorf("bet lookup failed: %w", err)
		}
		if bet.Outcome != models.OutcomePending {
			return ErrAlreadySettled
		}

		now := time.Now().UTC()
		bet.Outcome = outcome
		bet.ProfitLoss = profitLoss(bet.Stake, bet.Odds, outcome)
		bet.SettledAt = &now

		if err := tx.Model(&models.Bet{}).Where("id = ?", bet.ID).
			Updates(map[string]interface{}{
				"outcome":     bet.Outcome,
				"profit_loss": bet.ProfitLoss,
				"settled_at":  bet.SettledAt,
			}).Error; err != nil {
			return fmt.Errorf("settlement update failed: %w", err)
		}
		settled = bet
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"bet_id":      settled.ID,
		"outcome":     settled.Outcome,
		"profit_loss": settled.ProfitLoss,
	}).Info("Settled bet")

	return &settled, nil
}

func (s *GormStore) QuerySettled(ctx context.Context) ([]models.Bet, error) {
	var bets []models.Bet
	err := s.db.WithContext(ctx).
		Where("outcome <> ?", models.OutcomePending).
		Order("placed_at ASC").
		Find(&bets).Error
	if err != nil {
		return nil, fmt.Errorf("settled query failed: %w", err)
	}
	return bets, nil
}

// Get fetches a single bet by id.
func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	var bet models.Bet
	if err := s.db.WithContext(ctx).First(&bet, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownBet
		}
		return nil, fmt.Errorf("bet lookup failed: %w", err)
	}
	return &bet, nil
}

// List returns bets filtered by outcome ("" for all), newest first.
func (s *GormStore) List(ctx context.Context, outcome models.BetOutcome, limit, offset int) ([]models.Bet, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Bet{})
	if outcome != "" {
		query = query.Where("outcome = ?", outcome)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("bet count failed: %w", err)
	}

	var bets []models.Bet
	if err := query.Order("placed_at DESC").Limit(limit).Offset(offset).Find(&bets).Error; err != nil {
		return nil, 0, fmt.Errorf("bet list failed: %w", err)
	}
	return bets, total, nil
}
