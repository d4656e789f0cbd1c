// Package ledger is the durable record of placed bets: recording, one-shot
// settlement, pending-exposure lookups, and performance reports over settled
// bets.
package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jstittsworth/golf-edge/internal/models"
)

var (
	// ErrUnknownBet is returned for settle/lookup on a nonexistent bet id.
	ErrUnknownBet = errors.New("unknown bet id")

	// ErrAlreadySettled is returned when settling a bet that has already
	// left the pending state. Settlement is single-writer, one-shot.
	ErrAlreadySettled = errors.New("bet already settled")

	// ErrDuplicatePending is returned by Record when a pending bet with the
	// same fingerprint already exists. This is the dedupe guarantee: at most
	// one open exposure per fingerprint.
	ErrDuplicatePending = errors.New("pending bet already exists for fingerprint")
)

// Store is the persistence boundary for the ledger. Implementations must
// make Record's pending-fingerprint check and insert atomic: two concurrent
// Record calls for the same fingerprint must not both succeed.
type Store interface {
	// HasPending reports whether a pending bet exists with the exact
	// fingerprint (event, bet type, market, player, opponent, round).
	HasPending(ctx context.Context, fp models.Fingerprint) (bool, error)

	// Record persists a new pending bet, capturing stake, odds and the
	// probability/EV snapshot as of now; these are never recomputed later.
	// Fails with ErrDuplicatePending if the fingerprint already has an open
	// bet.
	Record(ctx context.Context, bet *models.Bet) (uuid.UUID, error)

	// Settle transitions a bet out of pending exactly once, fixing its
	// profit/loss: stake*(odds-1) for a win, -stake for a loss, 0 for void.
	Settle(ctx context.Context, id uuid.UUID, outcome models.BetOutcome) (*models.Bet, error)

	// QuerySettled returns all settled bets, oldest first. Pending bets are
	// never included.
	QuerySettled(ctx context.Context) ([]models.Bet, error)
}

// profitLoss computes the realized P&L for a terminal outcome.
func profitLoss(stake, decimalOdds float64, outcome models.BetOutcome) float64 {
	switch outcome {
	case models.OutcomeWin:
		return stake * (decimalOdds - 1)
	case models.OutcomeLoss:
		return -stake
	default: // void
		return 0
	}
}
