package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/jstittsworth/golf-edge/internal/models"
	"github.com/jstittsworth/golf-edge/internal/services"
	"github.com/jstittsworth/golf-edge/pkg/utils"
)

// MentalFormHandler ingests scores from the external text scorer and
// exposes the stored ones.
type MentalFormHandler struct {
	mental *services.MentalFormService
	logger *logrus.Logger
}

func NewMentalFormHandler(mental *services.MentalFormService, logger *logrus.Logger) *MentalFormHandler {
	return &MentalFormHandler{mental: mental, logger: logger}
}

// UpsertScoreRequest carries one freshly computed score. The score itself
// is opaque here; validation is range-only.
type UpsertScoreRequest struct {
	PlayerName     string   `json:"player_name"`
	Score          *float64 `json:"score" binding:"required"`
	Summary        string   `json:"summary"`
	InsightSources []string `json:"insight_sources"`
	ComputedAt     string   `json:"computed_at"`
}

// Upsert stores a player's mental form score.
func (h *MentalFormHandler) Upsert(c *gin.Context) {
	playerID := c.Param("id")

	var req UpsertScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid score payload", err.Error())
		return
	}

	score := &models.MentalFormScore{
		PlayerID:       playerID,
		PlayerName:     req.PlayerName,
		Score:          *req.Score,
		Summary:        req.Summary,
		InsightSources: pq.StringArray(req.InsightSources),
	}
	if req.ComputedAt != "" {
		t, err := time.Parse(time.RFC3339, req.ComputedAt)
		if err != nil {
			utils.SendValidationError(c, "invalid computed_at timestamp", err.Error())
			return
		}
		score.ComputedAt = t
	}

	if err := h.mental.Upsert(c.Request.Context(), score); err != nil {
		if errors.Is(err, services.ErrInvalidScore) {
			utils.SendValidationError(c, "score out of range", err.Error())
			return
		}
		h.logger.WithError(err).Error("Mental form upsert failed")
		utils.SendInternalError(c, "failed to store mental form score")
		return
	}

	utils.SendSuccess(c, score)
}

// Get returns a player's current score, if any.
func (h *MentalFormHandler) Get(c *gin.Context) {
	score, err := h.mental.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Mental form lookup failed")
		utils.SendInternalError(c, "failed to fetch mental form score")
		return
	}
	if score == nil {
		utils.SendNotFound(c, "no mental form score for player")
		return
	}
	utils.SendSuccess(c, score)
}

// MarkStale flags a score as outdated after new insights arrive.
func (h *MentalFormHandler) MarkStale(c *gin.Context) {
	err := h.mental.MarkStale(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "no mental form score for player")
			return
		}
		h.logger.WithError(err).Error("Mental form stale update failed")
		utils.SendInternalError(c, "failed to update mental form score")
		return
	}
	utils.SendSuccess(c, gin.H{"player_id": c.Param("id"), "stale": true})
}
