package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/golf-edge/internal/ledger"
	"github.com/jstittsworth/golf-edge/internal/models"
	"github.com/jstittsworth/golf-edge/pkg/utils"
)

// BetHandler serves the ledger write paths (record, settle) and bet reads.
type BetHandler struct {
	store  *ledger.GormStore
	logger *logrus.Logger
}

func NewBetHandler(store *ledger.GormStore, logger *logrus.Logger) *BetHandler {
	return &BetHandler{store: store, logger: logger}
}

// RecordBetRequest is the payload for placing a tracked wager.
type RecordBetRequest struct {
	Event      string  `json:"event" binding:"required"`
	BetType    string  `json:"bet_type"`
	Market     string  `json:"market" binding:"required"`
	PlayerID   string  `json:"player_id" binding:"required"`
	PlayerName string  `json:"player_name"`
	Opponent   string  `json:"opponent"`
	Round      int     `json:"round"`
	Sportsbook string  `json:"sportsbook"`
	Odds       float64 `json:"odds" binding:"required"`
	Stake      float64 `json:"stake" binding:"required"`

	Snapshot models.BetSnapshot `json:"snapshot"`
}

// Record places a new pending bet. The probability/EV snapshot is captured
// as submitted and never recomputed.
func (h *BetHandler) Record(c *gin.Context) {
	var req RecordBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid bet payload", err.Error())
		return
	}

	market, err := models.ParseMarket(req.Market)
	if err != nil {
		utils.SendValidationError(c, "invalid market", err.Error())
		return
	}
	if req.Odds <= 1.0 {
		utils.SendError(c, 400, utils.NewAppError(utils.ErrCodeInvalidOdds, "decimal odds must be > 1.0"))
		return
	}
	if req.Stake <= 0 {
		utils.SendValidationError(c, "stake must be positive", "")
		return
	}

	betType := models.BetType(req.BetType)
	if betType == "" {
		betType = models.BetTypeOutright
	}

	snapshot, err := json.Marshal(req.Snapshot)
	if err != nil {
		utils.SendValidationError(c, "invalid snapshot", err.Error())
		return
	}

	bet := &models.Bet{
		Fingerprint: models.Fingerprint{
			Event:    req.Event,
			BetType:  betType,
			Market:   market,
			PlayerID: req.PlayerID,
			Opponent: req.Opponent,
			Round:    req.Round,
		},
		PlayerName: req.PlayerName,
		Sportsbook: req.Sportsbook,
		Odds:       req.Odds,
		Stake:      req.Stake,
		Snapshot:   snapshot,
	}

	id, err := h.store.Record(c.Request.Context(), bet)
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicatePending) {
			utils.SendConflict(c, utils.ErrCodeDuplicateBet, "a pending bet already exists for this fingerprint")
			return
		}
		h.logger.WithError(err).Error("Bet record failed")
		utils.SendInternalError(c, "failed to record bet")
		return
	}

	utils.SendCreated(c, gin.H{"bet_id": id, "bet": bet})
}

// SettleBetRequest names the terminal outcome for a pending bet.
type SettleBetRequest struct {
	Outcome string `json:"outcome" binding:"required"`
}

// Settle transitions a bet to win/loss/void exactly once.
func (h *BetHandler) Settle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "invalid bet id", err.Error())
		return
	}

	var req SettleBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid settle payload", err.Error())
		return
	}
	outcome, err := models.ParseBetOutcome(req.Outcome)
	if err != nil {
		utils.SendValidationError(c, "invalid outcome", err.Error())
		return
	}

	bet, err := h.store.Settle(c.Request.Context(), id, outcome)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrUnknownBet):
			utils.SendError(c, 404, utils.NewAppError(utils.ErrCodeUnknownBet, "bet not found"))
		case errors.Is(err, ledger.ErrAlreadySettled):
			utils.SendConflict(c, utils.ErrCodeAlreadySettled, "bet is already settled")
		default:
			h.logger.WithError(err).Error("Bet settlement failed")
			utils.SendInternalError(c, "failed to settle bet")
		}
		return
	}

	utils.SendSuccess(c, bet)
}

// Get returns a single tracked bet.
func (h *BetHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "invalid bet id", err.Error())
		return
	}

	bet, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrUnknownBet) {
			utils.SendError(c, 404, utils.NewAppError(utils.ErrCodeUnknownBet, "bet not found"))
			return
		}
		h.logger.WithError(err).Error("Bet lookup failed")
		utils.SendInternalError(c, "failed to fetch bet")
		return
	}
	utils.SendSuccess(c, bet)
}

// List returns tracked bets, optionally filtered by outcome.
func (h *BetHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit > 200 {
		limit = 200
	}

	var outcome models.BetOutcome
	if raw := c.Query("outcome"); raw != "" {
		outcome = models.BetOutcome(raw)
	}

	bets, total, err := h.store.List(c.Request.Context(), outcome, limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Bet list failed")
		utils.SendInternalError(c, "failed to list bets")
		return
	}

	utils.SendSuccessWithMeta(c, bets, &utils.Meta{Limit: limit, Offset: offset, Total: total})
}
