package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BetOutcome represents the settlement state of a bet
type BetOutcome string

const (
	OutcomePending BetOutcome = "pending"
	OutcomeWin     BetOutcome = "win"
	OutcomeLoss    BetOutcome = "loss"
	OutcomeVoid    BetOutcome = "void"
)

// Terminal reports whether the outcome ends the bet lifecycle.
func (o BetOutcome) Terminal() bool {
	return o == OutcomeWin || o == OutcomeLoss || o == OutcomeVoid
}

// ParseBetOutcome validates a settlement outcome. Pending is not a valid
// settlement target.
func ParseBetOutcome(s string) (BetOutcome, error) {
	switch o := BetOutcome(s); o {
	case OutcomeWin, OutcomeLoss, OutcomeVoid:
		return o, nil
	default:
		return "", fmt.Errorf("invalid settlement outcome: %q", s)
	}
}

// BetType classifies how a wager is structured
type BetType string

const (
	BetTypeOutright BetType = "outright"
	BetTypeMatchup  BetType = "matchup"
)

// Fingerprint identifies a unique betting opportunity for deduplication.
// Two bets with the same fingerprint represent the same exposure; at most
// one of them may be pending at any time.
type Fingerprint struct {
	Event    string  `gorm:"index:idx_fingerprint,priority:1;not null" json:"event"`
	BetType  BetType `gorm:"index:idx_fingerprint,priority:2;not null" json:"bet_type"`
	Market   Market  `gorm:"index:idx_fingerprint,priority:3;not null" json:"market"`
	PlayerID string  `gorm:"index:idx_fingerprint,priority:4;not null" json:"player_id"`
	Opponent string  `gorm:"index:idx_fingerprint,priority:5" json:"opponent,omitempty"`
	Round    int     `gorm:"index:idx_fingerprint,priority:6" json:"round,omitempty"`
}

// Key renders the fingerprint as a flat string, used for per-fingerprint
// serialization of the check-then-act record path.
func (f Fingerprint) Key() string {
	return strings.Join([]string{
		f.Event, string(f.BetType), string(f.Market), f.PlayerID,
		f.Opponent, fmt.Sprintf("%d", f.Round),
	}, "|")
}

// BetSnapshot captures the probability/EV context at placement time. It is
// written once when the bet is recorded and never recomputed, so post-hoc
// performance analysis grades the decision that was actually made.
type BetSnapshot struct {
	BaseProbability  float64  `json:"base_probability"`
	AdjProbability   float64  `json:"adjusted_probability"`
	BaseEV           float64  `json:"base_ev_pct"`
	AdjEV            float64  `json:"adjusted_ev_pct"`
	MentalScore      *float64 `json:"mental_score,omitempty"`
	MentalAdjustment float64  `json:"mental_adjustment_pct"`
	KellyMultiplier  float64  `json:"kelly_multiplier"`
	Bankroll         float64  `json:"bankroll"`
}

// Bet is a placed wager tracked by the ledger. Lifecycle: created pending,
// settled exactly once to win/loss/void, after which profit/loss is fixed.
type Bet struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Fingerprint Fingerprint `gorm:"embedded" json:"fingerprint"`
	PlayerName  string      `json:"player_name"`
	Sportsbook  string      `json:"sportsbook"`

	Odds            float64 `gorm:"not null" json:"odds"` // decimal
	Stake           float64 `gorm:"not null" json:"stake"`
	PotentialReturn float64 `json:"potential_return"`

	Outcome    BetOutcome `gorm:"type:varchar(20);default:'pending';index" json:"outcome"`
	ProfitLoss float64    `json:"profit_loss"`

	Snapshot datatypes.JSON `gorm:"type:jsonb" json:"snapshot"`

	PlacedAt  time.Time  `gorm:"not null;index" json:"placed_at"`
	SettledAt *time.Time `json:"settled_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Bet) TableName() string {
	return "bets"
}
