package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jstittsworth/golf-edge/internal/models"
)

// MemoryStore is an in-memory Store with the same semantics as GormStore,
// used in tests and for dry-run scans without a database.
type MemoryStore struct {
	mu   sync.Mutex
	bets map[uuid.UUID]*models.Bet
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bets: make(map[uuid.UUID]*models.Bet)}
}

func (s *MemoryStore) HasPending(_ context.Context, fp models.Fingerprint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPendingLocked(fp), nil
}

func (s *MemoryStore) hasPendingLocked(fp models.Fingerprint) bool {
	for _, b := range s.bets {
		if b.Outcome == models.OutcomePending && b.Fingerprint == fp {
			return true
		}
	}
	return false
}

func (s *MemoryStore) Record(_ context.Context, bet *models.Bet) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasPendingLocked(bet.Fingerprint) {
		return uuid.Nil, ErrDuplicatePending
	}

	if bet.ID == uuid.Nil {
		bet.ID = uuid.New()
	}
	bet.Outcome = models.OutcomePending
	if bet.PlacedAt.IsZero() {
		bet.PlacedAt = time.Now().UTC()
	}
	bet.PotentialReturn = bet.Stake * bet.Odds

	stored := *bet
	s.bets[bet.ID] = &stored
	return bet.ID, nil
}

func (s *MemoryStore) Settle(_ context.Context, id uuid.UUID, outcome models.BetOutcome) (*models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !outcome.Terminal() {
		return nil, fmt.Errorf("invalid settlement outcome: %q", outcome)
	}
	bet, ok := s.bets[id]
	if !ok {
		return nil, ErrUnknownBet
	}
	if bet.Outcome != models.OutcomePending {
		return nil, ErrAlreadySettled
	}

	now := time.Now().UTC()
	bet.Outcome = outcome
	bet.ProfitLoss = profitLoss(bet.Stake, bet.Odds, outcome)
	bet.SettledAt = &now

	settled := *bet
	return &settled, nil
}

func (s *MemoryStore) QuerySettled(_ context.Context) ([]models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Bet
	for _, b := range s.bets {
		if b.Outcome != models.OutcomePending {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.Before(out[j].PlacedAt) })
	return out, nil
}
