package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/golf-edge/internal/models"
	"github.com/jstittsworth/golf-edge/internal/scanner"
	"github.com/jstittsworth/golf-edge/internal/services"
	"github.com/jstittsworth/golf-edge/pkg/config"
	"github.com/jstittsworth/golf-edge/pkg/utils"
)

// OpportunityHandler serves the scan endpoint: the single read path for
// betting recommendations.
type OpportunityHandler struct {
	feed    *services.FeedService
	mental  *services.MentalFormService
	scanner *scanner.Scanner
	cfg     *config.Config
	logger  *logrus.Logger
}

func NewOpportunityHandler(
	feed *services.FeedService,
	mental *services.MentalFormService,
	sc *scanner.Scanner,
	cfg *config.Config,
	logger *logrus.Logger,
) *OpportunityHandler {
	return &OpportunityHandler{
		feed:    feed,
		mental:  mental,
		scanner: sc,
		cfg:     cfg,
		logger:  logger,
	}
}

// Scan runs one opportunity scan for an event. Filters default from config
// and can be overridden per request.
func (h *OpportunityHandler) Scan(c *gin.Context) {
	event := c.Query("event")
	if event == "" {
		utils.SendValidationError(c, "event is required", "")
		return
	}

	markets, err := parseMarkets(c.DefaultQuery("markets", strings.Join(h.cfg.ScanMarkets, ",")))
	if err != nil {
		utils.SendValidationError(c, "invalid markets", err.Error())
		return
	}

	minEV, err := queryFloat(c, "min_ev", h.cfg.MinEV)
	if err != nil {
		utils.SendValidationError(c, "invalid query parameter", err.Error())
		return
	}
	minStake, err := queryFloat(c, "min_stake", h.cfg.MinStake)
	if err != nil {
		utils.SendValidationError(c, "invalid query parameter", err.Error())
		return
	}
	bankroll, err := queryFloat(c, "bankroll", h.cfg.Bankroll)
	if err != nil {
		utils.SendValidationError(c, "invalid query parameter", err.Error())
		return
	}
	kellyMultiplier, err := queryFloat(c, "kelly_multiplier", h.cfg.KellyMultiplier)
	if err != nil {
		utils.SendValidationError(c, "invalid query parameter", err.Error())
		return
	}
	maxResults, err := queryInt(c, "max", h.cfg.MaxRecommended)
	if err != nil {
		utils.SendValidationError(c, "invalid query parameter", err.Error())
		return
	}

	filters := scanner.Filters{
		Sportsbook:      c.Query("sportsbook"),
		MinEV:           minEV,
		MinStake:        minStake,
		Bankroll:        bankroll,
		KellyMultiplier: kellyMultiplier,
	}

	ctx := c.Request.Context()
	snapshot, err := h.feed.Snapshot(ctx, event, markets)
	if err != nil {
		h.logger.WithError(err).WithField("event", event).Error("Feed snapshot failed")
		utils.SendError(c, 502, utils.NewAppError(utils.ErrCodeFeedUnavailable, "odds feed unavailable", err.Error()))
		return
	}

	scores, err := h.mental.All(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("Mental scores unavailable, scanning unadjusted")
		scores = map[string]*models.MentalFormScore{}
	}

	opps, err := h.scanner.Scan(ctx, scanner.Input{
		Event:         event,
		Quotes:        snapshot.Quotes,
		Probabilities: snapshot.Probabilities,
		MentalScores:  scores,
		Filters:       filters,
		AsOf:          snapshot.FetchedAt,
	})
	if err != nil {
		h.logger.WithError(err).Error("Scan failed")
		utils.SendInternalError(c, "scan failed")
		return
	}

	// Truncation happens here, after the scanner's ranking.
	if maxResults > 0 && len(opps) > maxResults {
		opps = opps[:maxResults]
	}

	utils.SendSuccess(c, gin.H{
		"event":         event,
		"as_of":         snapshot.FetchedAt.Format(time.RFC3339),
		"opportunities": opps,
	})
}

func parseMarkets(raw string) ([]models.Market, error) {
	var out []models.Market
	for _, code := range strings.Split(raw, ",") {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		market, err := models.ParseMarket(code)
		if err != nil {
			return nil, err
		}
		out = append(out, market)
	}
	return out, nil
}

func queryFloat(c *gin.Context, key string, fallback float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, raw)
	}
	return v, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return v, nil
}
