package ledger

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jstittsworth/golf-edge/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see its own empty in-memory db.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Bet{}))

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return NewGormStore(db, log)
}

func testFingerprint(player string) models.Fingerprint {
	return models.Fingerprint{
		Event:    "the-open-2026",
		BetType:  models.BetTypeOutright,
		Market:   models.MarketWin,
		PlayerID: player,
	}
}

func testBet(player string, odds, stake float64) *models.Bet {
	snap, _ := json.Marshal(models.BetSnapshot{
		BaseProbability: 50,
		AdjProbability:  52.25,
		BaseEV:          25,
		AdjEV:           30.625,
		KellyMultiplier: 0.25,
		Bankroll:        1000,
	})
	return &models.Bet{
		Fingerprint: testFingerprint(player),
		PlayerName:  player,
		Sportsbook:  "draftkings",
		Odds:        odds,
		Stake:       stake,
		Snapshot:    snap,
	}
}

func TestRecordAndHasPending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fp := testFingerprint("rahm")
	pending, err := store.HasPending(ctx, fp)
	require.NoError(t, err)
	assert.False(t, pending)

	id, err := store.Record(ctx, testBet("rahm", 2.5, 50))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	pending, err = store.HasPending(ctx, fp)
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestRecordDuplicatePending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Record(ctx, testBet("rahm", 2.5, 50))
	require.NoError(t, err)

	_, err = store.Record(ctx, testBet("rahm", 2.6, 40))
	assert.ErrorIs(t, err, ErrDuplicatePending)

	// Different player is a different fingerprint; different market too.
	_, err = store.Record(ctx, testBet("scheffler", 3.0, 30))
	assert.NoError(t, err)

	top5 := testBet("rahm", 1.8, 50)
	top5.Fingerprint.Market = models.MarketTop5
	_, err = store.Record(ctx, top5)
	assert.NoError(t, err)
}

func TestRecordAfterSettlementAllowed(t *testing.T) {
	// Settlement closes the exposure, so the same fingerprint may be bet
	// again afterwards.
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Record(ctx, testBet("rahm", 2.5, 50))
	require.NoError(t, err)

	_, err = store.Settle(ctx, id, models.OutcomeLoss)
	require.NoError(t, err)

	_, err = store.Record(ctx, testBet("rahm", 2.4, 50))
	assert.NoError(t, err)
}

func TestSettleOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		outcome  models.BetOutcome
		expected float64
	}{
		{"Win pays stake times odds minus one", models.OutcomeWin, 20.0},
		{"Loss forfeits the stake", models.OutcomeLoss, -10.0},
		{"Void returns the stake", models.OutcomeVoid, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			ctx := context.Background()

			id, err := store.Record(ctx, testBet("rahm", 3.0, 10))
			require.NoError(t, err)

			settled, err := store.Settle(ctx, id, tt.outcome)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, settled.Outcome)
			assert.InDelta(t, tt.expected, settled.ProfitLoss, 1e-9)
			assert.NotNil(t, settled.SettledAt)
		})
	}
}

func TestSettleOneShot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Record(ctx, testBet("rahm", 3.0, 10))
	require.NoError(t, err)

	_, err = store.Settle(ctx, id, models.OutcomeWin)
	require.NoError(t, err)

	// A terminal state is terminal; any second settlement fails.
	for _, outcome := range []models.BetOutcome{models.OutcomeWin, models.OutcomeLoss, models.OutcomeVoid} {
		_, err = store.Settle(ctx, id, outcome)
		assert.ErrorIs(t, err, ErrAlreadySettled)
	}
}

func TestSettleUnknownBet(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Settle(context.Background(), uuid.New(), models.OutcomeWin)
	assert.ErrorIs(t, err, ErrUnknownBet)
}

func TestQuerySettledExcludesPending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id1, err := store.Record(ctx, testBet("rahm", 2.5, 50))
	require.NoError(t, err)
	_, err = store.Record(ctx, testBet("scheffler", 3.0, 30))
	require.NoError(t, err)

	_, err = store.Settle(ctx, id1, models.OutcomeWin)
	require.NoError(t, err)

	settled, err := store.QuerySettled(ctx)
	require.NoError(t, err)
	require.Len(t, settled, 1)
	assert.Equal(t, "rahm", settled[0].Fingerprint.PlayerID)
}

func TestConcurrentRecordSingleWinner(t *testing.T) {
	// The check-then-act must be serialized per fingerprint: many
	// concurrent records for one fingerprint yield exactly one pending bet.
	store := newTestStore(t)
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Record(ctx, testBet("rahm", 2.5, 50))
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrDuplicatePending)
		}
	}
	assert.Equal(t, 1, successes)
}

func TestGetAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Record(ctx, testBet("rahm", 2.5, 50))
	require.NoError(t, err)

	bet, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "rahm", bet.Fingerprint.PlayerID)
	assert.InDelta(t, 125.0, bet.PotentialReturn, 1e-9)

	_, err = store.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUnknownBet)

	bets, total, err := store.List(ctx, models.OutcomePending, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, bets, 1)
}
