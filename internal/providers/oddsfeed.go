// Package providers holds clients for the external data feeds the engine
// consumes. The statistical odds feed is an external collaborator: the
// engine treats its model probabilities as ground truth.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/jstittsworth/golf-edge/internal/models"
	"github.com/jstittsworth/golf-edge/internal/odds"
)

// FeedEntry is one player's row in the feed response for a market: prices
// per sportsbook plus the model's own decimal odds.
type FeedEntry struct {
	PlayerID   string             `json:"player_id"`
	PlayerName string             `json:"player_name"`
	Prices     map[string]float64 `json:"per_sportsbook_price"`
	ModelOdds  float64            `json:"model_decimal_odds"`
}

type feedResponse struct {
	Event   string      `json:"event"`
	Market  string      `json:"market"`
	Entries []FeedEntry `json:"entries"`
}

// MarketSnapshot is the parsed feed output for one market: quotes per book
// and the model probability (100 / model odds) per player.
type MarketSnapshot struct {
	Quotes        []models.Quote
	Probabilities []models.ModelProbability
}

// OddsFeedClient fetches quotes and model probabilities from the upstream
// statistical odds provider. Calls are rate limited and wrapped in a circuit
// breaker so a struggling feed degrades to fast failures instead of piling
// up timeouts.
type OddsFeedClient struct {
	httpClient *http.Client
	logger     *logrus.Logger
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// NewOddsFeedClient creates a feed client. ratePerSecond throttles outgoing
// requests; the breaker opens after repeated consecutive failures.
func NewOddsFeedClient(baseURL, apiKey string, ratePerSecond float64, timeout time.Duration, logger *logrus.Logger) *OddsFeedClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "odds-feed",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Odds feed circuit breaker state change")
		},
	})

	return &OddsFeedClient{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		breaker:    breaker,
	}
}

// FetchMarket retrieves the full quote set and model probabilities for one
// market of an event. Entries with degenerate prices or model odds are
// dropped at this boundary.
func (c *OddsFeedClient) FetchMarket(ctx context.Context, event string, market models.Market) (*MarketSnapshot, error) {
	if !market.Valid() {
		return nil, fmt.Errorf("unknown market code: %q", market)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, event, market)
	})
	if err != nil {
		return nil, err
	}
	resp := result.(*feedResponse)

	snapshot := &MarketSnapshot{}
	for _, entry := range resp.Entries {
		if entry.ModelOdds > 1.0 {
			snapshot.Probabilities = append(snapshot.Probabilities, models.ModelProbability{
				PlayerID:   entry.PlayerID,
				PlayerName: entry.PlayerName,
				Market:     market,
				Percent:    odds.ImpliedProbabilityPct(entry.ModelOdds),
				ModelOdds:  entry.ModelOdds,
			})
		}
		for book, price := range entry.Prices {
			quote := models.Quote{
				PlayerID:   entry.PlayerID,
				PlayerName: entry.PlayerName,
				Market:     market,
				Sportsbook: book,
				Price:      price,
			}
			// Zero or missing price means the book is off this market.
			if quote.Offered() {
				snapshot.Quotes = append(snapshot.Quotes, quote)
			}
		}
	}

	c.logger.WithFields(logrus.Fields{
		"event":   event,
		"market":  market,
		"quotes":  len(snapshot.Quotes),
		"players": len(snapshot.Probabilities),
	}).Debug("Fetched market snapshot")

	return snapshot, nil
}

func (c *OddsFeedClient) fetch(ctx context.Context, event string, market models.Market) (*feedResponse, error) {
	endpoint := fmt.Sprintf("%s/betting-tools/outrights?event=%s&market=%s&key=%s",
		c.baseURL, url.QueryEscape(event), url.QueryEscape(market.String()), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("odds feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("odds feed returned status %d", resp.StatusCode)
	}

	var parsed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}
	return &parsed, nil
}
