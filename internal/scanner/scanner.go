// Package scanner turns one snapshot of quotes, model probabilities and
// mental form scores into a ranked, deduplicated list of betting
// opportunities.
package scanner

import (
	"context"
	"sort"
	"time"

	"github.com/jstittsworth/golf-edge/internal/ledger"
	"github.com/jstittsworth/golf-edge/internal/mental"
	"github.com/jstittsworth/golf-edge/internal/models"
	"github.com/jstittsworth/golf-edge/internal/odds"
	"github.com/sirupsen/logrus"
)

// Filters controls which opportunities a scan surfaces.
type Filters struct {
	// Sportsbook restricts the scan to one book when set. Books are never
	// merged; each is priced independently.
	Sportsbook string

	// MinEV is the minimum adjusted EV% an opportunity must clear.
	MinEV float64

	// MinStake is the minimum recommended stake; anything below it is too
	// small to be worth placing.
	MinStake float64

	Bankroll        float64
	KellyMultiplier float64
}

// Input is one scan's complete snapshot. All data is pre-fetched by the
// caller; the scan itself performs no network I/O.
type Input struct {
	Event         string
	Quotes        []models.Quote
	Probabilities map[models.ProbabilityKey]models.ModelProbability
	MentalScores  map[string]*models.MentalFormScore
	Filters       Filters

	// AsOf is the snapshot timestamp, threaded through explicitly rather
	// than held as shared mutable state.
	AsOf time.Time
}

// Scanner produces opportunities from quote snapshots, deduplicating against
// pending exposure in the ledger.
type Scanner struct {
	store  ledger.Store
	logger *logrus.Logger
}

// New creates a scanner over the given ledger store.
func New(store ledger.Store, logger *logrus.Logger) *Scanner {
	return &Scanner{store: store, logger: logger}
}

// Scan evaluates every quote with a known model probability and returns the
// qualifying opportunities sorted by adjusted EV descending (stable, so ties
// keep insertion order). A ledger failure for one combination skips that
// combination only; the rest of the scan proceeds. Truncation to a maximum
// count is the caller's concern.
func (s *Scanner) Scan(ctx context.Context, in Input) ([]models.Opportunity, error) {
	var out []models.Opportunity

	for _, quote := range in.Quotes {
		if !quote.Offered() {
			continue
		}
		if !quote.Market.Valid() {
			s.logger.WithFields(logrus.Fields{
				"player": quote.PlayerID,
				"market": quote.Market,
			}).Warn("Skipping quote with unknown market")
			continue
		}
		if in.Filters.Sportsbook != "" && quote.Sportsbook != in.Filters.Sportsbook {
			continue
		}

		prob, ok := in.Probabilities[models.ProbabilityKey{PlayerID: quote.PlayerID, Market: quote.Market}]
		if !ok {
			continue
		}

		opp, ok := s.evaluate(ctx, in, quote, prob)
		if ok {
			out = append(out, opp)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AdjEV > out[j].AdjEV
	})
	return out, nil
}

// evaluate prices a single (player, market, book) combination against the
// scan filters and the ledger's pending exposure.
func (s *Scanner) evaluate(ctx context.Context, in Input, quote models.Quote, prob models.ModelProbability) (models.Opportunity, bool) {
	baseEV := odds.ExpectedValuePct(prob.Percent, quote.Price)

	var score *float64
	if ms, ok := in.MentalScores[quote.PlayerID]; ok && ms != nil {
		score = &ms.Score
	}
	adj := mental.Apply(score, prob.Percent, quote.Market, quote.Price)

	if adj.EV < in.Filters.MinEV {
		return models.Opportunity{}, false
	}

	fraction, err := odds.KellyFraction(adj.Probability/100, quote.Price, in.Filters.KellyMultiplier)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"player": quote.PlayerID,
			"market": quote.Market,
			"book":   quote.Sportsbook,
		}).Warn("Skipping quote with invalid price")
		return models.Opportunity{}, false
	}
	stake := fraction * in.Filters.Bankroll
	if stake < in.Filters.MinStake {
		return models.Opportunity{}, false
	}

	// The dedupe guarantee: never re-surface an opportunity the caller
	// already has open exposure to.
	fp := models.Fingerprint{
		Event:    in.Event,
		BetType:  models.BetTypeOutright,
		Market:   quote.Market,
		PlayerID: quote.PlayerID,
	}
	pending, err := s.store.HasPending(ctx, fp)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"player": quote.PlayerID,
			"market": quote.Market,
			"book":   quote.Sportsbook,
		}).Warn("Ledger lookup failed, skipping combination")
		return models.Opportunity{}, false
	}
	if pending {
		return models.Opportunity{}, false
	}

	american, err := odds.DecimalToAmerican(quote.Price)
	if err != nil {
		return models.Opportunity{}, false
	}

	return models.Opportunity{
		PlayerID:         quote.PlayerID,
		PlayerName:       quote.PlayerName,
		Market:           quote.Market,
		Sportsbook:       quote.Sportsbook,
		Price:            quote.Price,
		AmericanOdds:     american,
		BaseProbability:  prob.Percent,
		MentalScore:      score,
		MentalAdjustment: adj.AdjustmentPct,
		AdjProbability:   adj.Probability,
		BaseEV:           baseEV,
		AdjEV:            adj.EV,
		Stake:            stake,
		StakePct:         fraction * 100,
	}, true
}
