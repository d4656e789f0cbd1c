// Package mental applies qualitative mental-form scores to baseline model
// probabilities.
package mental

import (
	"github.com/jstittsworth/golf-edge/internal/models"
	"github.com/jstittsworth/golf-edge/internal/odds"
)

// MaxSwing caps the probability swing a mental form score can produce: a
// score of +/-1.0 moves the probability by at most 15%. Exposed as a named
// constant so the dampening is testable.
const MaxSwing = 0.15

// Adjustment is the result of applying a mental form score to a baseline
// probability against one price.
type Adjustment struct {
	Probability   float64 // adjusted probability, percent, clamped to [0,100]
	EV            float64 // EV% recomputed at the adjusted probability
	AdjustmentPct float64 // probability swing as a percentage (not EV swing)
}

// Apply adjusts the baseline probability by the player's mental form score.
// A nil score is the no-op path: baseline probability, baseline EV, zero
// adjustment. The market supplies the sign: for miss_cut a negative score
// raises the probability instead of lowering it. Never fails; malformed
// optional input degrades to the unadjusted path.
func Apply(score *float64, basePct float64, market models.Market, price float64) Adjustment {
	if score == nil {
		return Adjustment{
			Probability:   basePct,
			EV:            odds.ExpectedValuePct(basePct, price),
			AdjustmentPct: 0,
		}
	}

	s := clamp(*score, -1, 1)
	factor := s * MaxSwing * market.Direction()
	adjusted := clamp(basePct*(1+factor), 0, 100)

	return Adjustment{
		Probability:   adjusted,
		EV:            odds.ExpectedValuePct(adjusted, price),
		AdjustmentPct: factor * 100,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
