package models

import (
	"time"

	"github.com/lib/pq"
)

// Quote is one sportsbook's decimal price for one player in one market.
// A zero or missing price means the book is not offering the market, not a
// zero-probability outcome; such quotes are dropped at the boundary.
type Quote struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Market     Market  `json:"market"`
	Sportsbook string  `json:"sportsbook"`
	Price      float64 `json:"price"` // decimal odds, > 1.0
}

// Offered reports whether the quote carries a usable price.
func (q Quote) Offered() bool {
	return q.Price > 1.0
}

// ProbabilityKey identifies a (player, market) model probability.
type ProbabilityKey struct {
	PlayerID string
	Market   Market
}

// ModelProbability is the baseline statistical probability for a player in a
// market, as a percentage in (0, 100]. Produced upstream from the model's
// decimal odds (100 / model_odds) and treated as ground truth here.
type ModelProbability struct {
	PlayerID   string  `json:"player_id"`
	Market     Market  `json:"market"`
	Percent    float64 `json:"percent"`
	ModelOdds  float64 `json:"model_odds"`
	PlayerName string  `json:"player_name"`
}

// MentalFormScore is the qualitative per-player modifier in [-1, 1] derived
// from free-text insights. -1 severely compromised, 0 neutral, +1 exceptional.
// A player without a score simply gets no adjustment.
type MentalFormScore struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	PlayerID       string         `gorm:"uniqueIndex;not null" json:"player_id"`
	PlayerName     string         `json:"player_name"`
	Score          float64        `gorm:"not null" json:"score"`
	Summary        string         `json:"summary"`
	InsightSources pq.StringArray `gorm:"type:text[]" json:"insight_sources"`
	Stale          bool           `gorm:"default:false" json:"stale"`
	ComputedAt     time.Time      `json:"computed_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (MentalFormScore) TableName() string {
	return "mental_form_scores"
}

// Opportunity is a candidate bet surfaced by a scan. It is a transient value
// object recomputed on every scan; only a recorded Bet has durable identity.
type Opportunity struct {
	PlayerID         string   `json:"player_id"`
	PlayerName       string   `json:"player_name"`
	Market           Market   `json:"market"`
	Sportsbook       string   `json:"sportsbook"`
	Price            float64  `json:"price"`
	AmericanOdds     string   `json:"american_odds"`
	BaseProbability  float64  `json:"base_probability"`
	MentalScore      *float64 `json:"mental_score,omitempty"`
	MentalAdjustment float64  `json:"mental_adjustment_pct"`
	AdjProbability   float64  `json:"adjusted_probability"`
	BaseEV           float64  `json:"base_ev_pct"`
	AdjEV            float64  `json:"adjusted_ev_pct"`
	Stake            float64  `json:"recommended_stake"`
	StakePct         float64  `json:"stake_pct_of_bankroll"`
}
