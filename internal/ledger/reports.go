package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jstittsworth/golf-edge/internal/models"
)

// PerformanceReport aggregates realized results over settled bets only;
// pending bets never contribute to stake or return totals.
type PerformanceReport struct {
	SettledBets   int     `json:"settled_bets"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Voids         int     `json:"voids"`
	TotalStaked   float64 `json:"total_staked"`
	TotalReturn   float64 `json:"total_return"`
	ProfitLoss    float64 `json:"profit_loss"`
	ROIPct        float64 `json:"roi_pct"`
	WinRatePct    float64 `json:"win_rate_pct"`
	AvgStake      float64 `json:"avg_stake"`
	AvgOdds       float64 `json:"avg_odds"`
	AvgSnapshotEV float64 `json:"avg_snapshot_ev_pct"`
}

// BucketStat is one row of a breakdown report.
type BucketStat struct {
	Bucket     string  `json:"bucket"`
	Bets       int     `json:"bets"`
	Wins       int     `json:"wins"`
	Staked     float64 `json:"staked"`
	ProfitLoss float64 `json:"profit_loss"`
	ROIPct     float64 `json:"roi_pct"`
}

// Reporter derives read-only performance views from a ledger store.
type Reporter struct {
	store Store
}

// NewReporter creates a reporter over the given store.
func NewReporter(store Store) *Reporter {
	return &Reporter{store: store}
}

// Performance computes the realized P&L summary. Voids count as settled but
// contribute zero profit; they are excluded from the win-rate denominator.
func (r *Reporter) Performance(ctx context.Context) (*PerformanceReport, error) {
	bets, err := r.store.QuerySettled(ctx)
	if err != nil {
		return nil, fmt.Errorf("settled query failed: %w", err)
	}

	report := &PerformanceReport{}
	var sumOdds, sumEV float64
	for _, b := range bets {
		report.SettledBets++
		report.TotalStaked += b.Stake
		report.ProfitLoss += b.ProfitLoss
		report.TotalReturn += b.Stake + b.ProfitLoss
		sumOdds += b.Odds

		switch b.Outcome {
		case models.OutcomeWin:
			report.Wins++
		case models.OutcomeLoss:
			report.Losses++
		case models.OutcomeVoid:
			report.Voids++
		}

		if snap, ok := decodeSnapshot(b); ok {
			sumEV += snap.AdjEV
		}
	}

	if report.TotalStaked > 0 {
		report.ROIPct = report.ProfitLoss / report.TotalStaked * 100
	}
	if decided := report.Wins + report.Losses; decided > 0 {
		report.WinRatePct = float64(report.Wins) / float64(decided) * 100
	}
	if report.SettledBets > 0 {
		report.AvgStake = report.TotalStaked / float64(report.SettledBets)
		report.AvgOdds = sumOdds / float64(report.SettledBets)
		report.AvgSnapshotEV = sumEV / float64(report.SettledBets)
	}
	return report, nil
}

// EVBuckets breaks settled results down by the adjusted EV captured at
// placement time, grading the decision rather than a moving target.
func (r *Reporter) EVBuckets(ctx context.Context) ([]BucketStat, error) {
	return r.buckets(ctx, func(b models.Bet) string {
		snap, ok := decodeSnapshot(b)
		if !ok {
			return "unknown"
		}
		switch {
		case snap.AdjEV < 5:
			return "ev_under_5"
		case snap.AdjEV < 10:
			return "ev_5_10"
		case snap.AdjEV < 20:
			return "ev_10_20"
		default:
			return "ev_over_20"
		}
	}, []string{"ev_under_5", "ev_5_10", "ev_10_20", "ev_over_20", "unknown"})
}

// MentalBuckets breaks settled results down by the mental form score in the
// placement snapshot.
func (r *Reporter) MentalBuckets(ctx context.Context) ([]BucketStat, error) {
	return r.buckets(ctx, func(b models.Bet) string {
		snap, ok := decodeSnapshot(b)
		if !ok || snap.MentalScore == nil {
			return "no_score"
		}
		switch s := *snap.MentalScore; {
		case s <= -0.3:
			return "negative"
		case s < 0.3:
			return "neutral"
		default:
			return "positive"
		}
	}, []string{"negative", "neutral", "positive", "no_score"})
}

func (r *Reporter) buckets(ctx context.Context, classify func(models.Bet) string, order []string) ([]BucketStat, error) {
	bets, err := r.store.QuerySettled(ctx)
	if err != nil {
		return nil, fmt.Errorf("settled query failed: %w", err)
	}

	byName := make(map[string]*BucketStat)
	for _, b := range bets {
		name := classify(b)
		stat, ok := byName[name]
		if !ok {
			stat = &BucketStat{Bucket: name}
			byName[name] = stat
		}
		stat.Bets++
		stat.Staked += b.Stake
		stat.ProfitLoss += b.ProfitLoss
		if b.Outcome == models.OutcomeWin {
			stat.Wins++
		}
	}

	var out []BucketStat
	for _, name := range order {
		stat, ok := byName[name]
		if !ok {
			continue
		}
		if stat.Staked > 0 {
			stat.ROIPct = stat.ProfitLoss / stat.Staked * 100
		}
		out = append(out, *stat)
	}
	return out, nil
}

func decodeSnapshot(b models.Bet) (models.BetSnapshot, bool) {
	var snap models.BetSnapshot
	if len(b.Snapshot) == 0 {
		return snap, false
	}
	if err := json.Unmarshal(b.Snapshot, &snap); err != nil {
		return snap, false
	}
	return snap, true
}
