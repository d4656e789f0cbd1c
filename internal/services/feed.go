package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/golf-edge/internal/models"
	"github.com/jstittsworth/golf-edge/internal/providers"
)

// FeedService assembles scan inputs from the external odds feed, caching
// per-market snapshots in redis so repeated scans within the TTL do not hit
// the upstream provider again.
type FeedService struct {
	feed   *providers.OddsFeedClient
	cache  *CacheService
	logger *logrus.Logger
	ttl    time.Duration
}

// EventSnapshot is the combined feed data for one event across markets,
// shaped for the scanner.
type EventSnapshot struct {
	Event         string
	Quotes        []models.Quote
	Probabilities map[models.ProbabilityKey]models.ModelProbability
	FetchedAt     time.Time
}

func NewFeedService(feed *providers.OddsFeedClient, cache *CacheService, ttl time.Duration, logger *logrus.Logger) *FeedService {
	return &FeedService{
		feed:   feed,
		cache:  cache,
		logger: logger,
		ttl:    ttl,
	}
}

// Snapshot fetches quotes and model probabilities for the given markets of
// an event. A feed failure for one market skips that market and continues;
// an event with no usable markets at all is an error.
func (s *FeedService) Snapshot(ctx context.Context, event string, markets []models.Market) (*EventSnapshot, error) {
	snapshot := &EventSnapshot{
		Event:         event,
		Probabilities: make(map[models.ProbabilityKey]models.ModelProbability),
		FetchedAt:     time.Now().UTC(),
	}

	var fetched int
	for _, market := range markets {
		ms, err := s.marketSnapshot(ctx, event, market)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"event":  event,
				"market": market,
			}).Warn("Skipping market, feed fetch failed")
			continue
		}
		fetched++

		snapshot.Quotes = append(snapshot.Quotes, ms.Quotes...)
		for _, prob := range ms.Probabilities {
			snapshot.Probabilities[models.ProbabilityKey{PlayerID: prob.PlayerID, Market: market}] = prob
		}
	}

	if fetched == 0 {
		return nil, fmt.Errorf("no markets available from odds feed for event %q", event)
	}
	return snapshot, nil
}

func (s *FeedService) marketSnapshot(ctx context.Context, event string, market models.Market) (*providers.MarketSnapshot, error) {
	key := FeedMarketCacheKey(event, market.String())

	var cached providers.MarketSnapshot
	if s.cache != nil {
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.WithError(err).Debug("Feed cache read failed, fetching from provider")
		}
	}

	ms, err := s.feed.FetchMarket(ctx, event, market)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, ms, s.ttl); err != nil {
			s.logger.WithError(err).Debug("Feed cache write failed")
		}
	}
	return ms, nil
}
