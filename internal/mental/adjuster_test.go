package mental

import (
	"testing"

	"github.com/jstittsworth/golf-edge/internal/models"
	"github.com/jstittsworth/golf-edge/internal/odds"
	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestApplyNoScore(t *testing.T) {
	// Without a score the adjuster is a no-op: base probability, base EV,
	// zero adjustment.
	adj := Apply(nil, 50, models.MarketWin, 2.5)

	assert.Equal(t, 50.0, adj.Probability)
	assert.InDelta(t, odds.ExpectedValuePct(50, 2.5), adj.EV, 1e-9)
	assert.Equal(t, 0.0, adj.AdjustmentPct)
}

func TestApplyPositiveScore(t *testing.T) {
	// Score +0.3 on the win market: factor 0.3*0.15 = 0.045, so 50 -> 52.25
	// and EV (0.5225*1.5 - 0.4775)*100 = 30.625.
	adj := Apply(floatPtr(0.3), 50, models.MarketWin, 2.5)

	assert.InDelta(t, 52.25, adj.Probability, 1e-9)
	assert.InDelta(t, 4.5, adj.AdjustmentPct, 1e-9)
	assert.InDelta(t, 30.625, adj.EV, 1e-6)
}

func TestApplyClampAtHundred(t *testing.T) {
	// 95% base with a perfect score would be 95*1.15 = 109.25; must clamp
	// to 100.
	adj := Apply(floatPtr(1.0), 95, models.MarketWin, 1.5)

	assert.Equal(t, 100.0, adj.Probability)
	assert.InDelta(t, 15.0, adj.AdjustmentPct, 1e-9)
}

func TestApplyClampAtZero(t *testing.T) {
	adj := Apply(floatPtr(-1.0), 0, models.MarketWin, 2.0)
	assert.Equal(t, 0.0, adj.Probability)
}

func TestMissCutSignFlip(t *testing.T) {
	// Identical negative score: win probability drops, miss-cut probability
	// rises, because poor mental form makes missing the cut MORE likely.
	score := floatPtr(-0.5)

	win := Apply(score, 40, models.MarketWin, 3.0)
	missCut := Apply(score, 40, models.MarketMissCut, 3.0)

	assert.InDelta(t, 37.0, win.Probability, 1e-9)
	assert.InDelta(t, 43.0, missCut.Probability, 1e-9)
	assert.Greater(t, missCut.Probability, 40.0)
	assert.Less(t, win.Probability, 40.0)
}

func TestApplyOutOfRangeScoreClamped(t *testing.T) {
	// Scores beyond [-1,1] are treated as the extreme, never amplified past
	// the 15% ceiling.
	adj := Apply(floatPtr(3.0), 50, models.MarketWin, 2.5)
	assert.InDelta(t, 57.5, adj.Probability, 1e-9)
	assert.InDelta(t, 15.0, adj.AdjustmentPct, 1e-9)
}

func TestMaxSwingConstant(t *testing.T) {
	assert.Equal(t, 0.15, MaxSwing)
}
