package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jstittsworth/golf-edge/internal/ledger"
	"github.com/jstittsworth/golf-edge/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func defaultFilters() Filters {
	return Filters{
		MinEV:           5,
		MinStake:        1,
		Bankroll:        1000,
		KellyMultiplier: 0.25,
	}
}

func baseInput() Input {
	return Input{
		Event: "masters-2026",
		Quotes: []models.Quote{
			{PlayerID: "rahm", PlayerName: "Jon Rahm", Market: models.MarketWin, Sportsbook: "draftkings", Price: 2.5},
		},
		Probabilities: map[models.ProbabilityKey]models.ModelProbability{
			{PlayerID: "rahm", Market: models.MarketWin}: {PlayerID: "rahm", Market: models.MarketWin, Percent: 50},
		},
		MentalScores: map[string]*models.MentalFormScore{},
		Filters:      defaultFilters(),
		AsOf:         time.Now().UTC(),
	}
}

func TestScanEndToEnd(t *testing.T) {
	// price 2.5, base 50%, mental +0.3, quarter Kelly on $1000:
	// base EV 25%, adjusted probability 52.25,
	// adjusted EV (0.5225*1.5 - 0.4775)*100 = 30.625%,
	// kelly fraction ((1.5*0.5225-0.4775)/1.5)*0.25 ~= 0.05104 -> $51.04.
	store := ledger.NewMemoryStore()
	s := New(store, testLogger())

	in := baseInput()
	in.MentalScores["rahm"] = &models.MentalFormScore{PlayerID: "rahm", Score: 0.3}

	opps, err := s.Scan(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, opps, 1)

	opp := opps[0]
	assert.Equal(t, "rahm", opp.PlayerID)
	assert.Equal(t, models.MarketWin, opp.Market)
	assert.Equal(t, "+150", opp.AmericanOdds)
	assert.InDelta(t, 25.0, opp.BaseEV, 1e-9)
	assert.InDelta(t, 4.5, opp.MentalAdjustment, 1e-9)
	assert.InDelta(t, 52.25, opp.AdjProbability, 1e-9)
	assert.InDelta(t, 30.625, opp.AdjEV, 1e-6)
	assert.InDelta(t, 51.04, opp.Stake, 0.01)
	assert.InDelta(t, 5.104, opp.StakePct, 0.001)
}

func TestScanMinEVFilter(t *testing.T) {
	s := New(ledger.NewMemoryStore(), testLogger())

	in := baseInput()
	in.Filters.MinEV = 30 // base EV is 25%, no mental boost

	opps, err := s.Scan(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestScanMinStakeFilter(t *testing.T) {
	s := New(ledger.NewMemoryStore(), testLogger())

	in := baseInput()
	in.Filters.MinStake = 100 // quarter Kelly on $1000 stakes ~$41.67

	opps, err := s.Scan(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestScanSportsbookFilter(t *testing.T) {
	s := New(ledger.NewMemoryStore(), testLogger())

	in := baseInput()
	in.Quotes = append(in.Quotes, models.Quote{
		PlayerID: "rahm", PlayerName: "Jon Rahm", Market: models.MarketWin,
		Sportsbook: "fanduel", Price: 2.6,
	})

	// Without a book filter both books surface independently.
	opps, err := s.Scan(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, opps, 2)

	in.Filters.Sportsbook = "fanduel"
	opps, err = s.Scan(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, "fanduel", opps[0].Sportsbook)
}

func TestScanSkipsDegenerateQuotes(t *testing.T) {
	s := New(ledger.NewMemoryStore(), testLogger())

	in := baseInput()
	in.Quotes = append(in.Quotes,
		models.Quote{PlayerID: "rahm", Market: models.MarketWin, Sportsbook: "bet365", Price: 0},
		models.Quote{PlayerID: "rahm", Market: models.MarketWin, Sportsbook: "caesars", Price: 1.0},
		models.Quote{PlayerID: "rahm", Market: "handicap", Sportsbook: "draftkings", Price: 2.5},
	)

	opps, err := s.Scan(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, opps, 1)
}

func TestScanNoProbabilityNoOpportunity(t *testing.T) {
	s := New(ledger.NewMemoryStore(), testLogger())

	in := baseInput()
	in.Quotes = append(in.Quotes, models.Quote{
		PlayerID: "scheffler", Market: models.MarketWin, Sportsbook: "draftkings", Price: 5.0,
	})

	opps, err := s.Scan(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, opps, 1) // only rahm, who has a model probability
}

func TestScanSortedByAdjustedEV(t *testing.T) {
	s := New(ledger.NewMemoryStore(), testLogger())

	in := baseInput()
	in.Quotes = []models.Quote{
		{PlayerID: "scheffler", Market: models.MarketWin, Sportsbook: "draftkings", Price: 2.2},
		{PlayerID: "rahm", Market: models.MarketWin, Sportsbook: "draftkings", Price: 2.5},
		{PlayerID: "mcilroy", Market: models.MarketWin, Sportsbook: "draftkings", Price: 2.3},
	}
	in.Probabilities = map[models.ProbabilityKey]models.ModelProbability{
		{PlayerID: "scheffler", Market: models.MarketWin}: {Percent: 50},
		{PlayerID: "rahm", Market: models.MarketWin}:      {Percent: 50},
		{PlayerID: "mcilroy", Market: models.MarketWin}:   {Percent: 50},
	}

	opps, err := s.Scan(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, opps, 3)
	assert.Equal(t, "rahm", opps[0].PlayerID)      // EV 25%
	assert.Equal(t, "mcilroy", opps[1].PlayerID)   // EV 15%
	assert.Equal(t, "scheffler", opps[2].PlayerID) // EV 10%
}

func TestScanDeterministicAndDedupesAfterRecord(t *testing.T) {
	store := ledger.NewMemoryStore()
	s := New(store, testLogger())
	ctx := context.Background()
	in := baseInput()

	// Two scans with no intervening record are identical.
	first, err := s.Scan(ctx, in)
	require.NoError(t, err)
	second, err := s.Scan(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, first, 1)

	// Recording the opportunity removes it from subsequent scans.
	_, err = store.Record(ctx, &models.Bet{
		Fingerprint: models.Fingerprint{
			Event:    in.Event,
			BetType:  models.BetTypeOutright,
			Market:   first[0].Market,
			PlayerID: first[0].PlayerID,
		},
		Odds:  first[0].Price,
		Stake: first[0].Stake,
	})
	require.NoError(t, err)

	third, err := s.Scan(ctx, in)
	require.NoError(t, err)
	assert.Empty(t, third)
}

func TestScanIndependentMarketsPerPlayer(t *testing.T) {
	// No cross-market exclusivity: the same player may surface in win and
	// top_5 at once.
	s := New(ledger.NewMemoryStore(), testLogger())

	in := baseInput()
	in.Quotes = append(in.Quotes, models.Quote{
		PlayerID: "rahm", Market: models.MarketTop5, Sportsbook: "draftkings", Price: 1.9,
	})
	in.Probabilities[models.ProbabilityKey{PlayerID: "rahm", Market: models.MarketTop5}] =
		models.ModelProbability{Percent: 60}

	opps, err := s.Scan(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, opps, 2)
}

// failingStore wraps a Store and fails HasPending for one player.
type failingStore struct {
	ledger.Store
	failPlayer string
}

func (f *failingStore) HasPending(ctx context.Context, fp models.Fingerprint) (bool, error) {
	if fp.PlayerID == f.failPlayer {
		return false, errors.New("ledger unavailable")
	}
	return f.Store.HasPending(ctx, fp)
}

func TestScanLedgerFailureSkipsSingleCombination(t *testing.T) {
	// A ledger failure aborts only the affected combination, not the scan.
	store := &failingStore{Store: ledger.NewMemoryStore(), failPlayer: "rahm"}
	s := New(store, testLogger())

	in := baseInput()
	in.Quotes = append(in.Quotes, models.Quote{
		PlayerID: "scheffler", Market: models.MarketWin, Sportsbook: "draftkings", Price: 2.5,
	})
	in.Probabilities[models.ProbabilityKey{PlayerID: "scheffler", Market: models.MarketWin}] =
		models.ModelProbability{Percent: 50}

	opps, err := s.Scan(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, "scheffler", opps[0].PlayerID)
}
