package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/golf-edge/internal/ledger"
	"github.com/jstittsworth/golf-edge/pkg/utils"
)

// ReportHandler serves read-only performance views derived from settled
// bets.
type ReportHandler struct {
	reporter *ledger.Reporter
	logger   *logrus.Logger
}

func NewReportHandler(reporter *ledger.Reporter, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{reporter: reporter, logger: logger}
}

// Performance returns ROI, win rate and realized P&L over settled bets.
func (h *ReportHandler) Performance(c *gin.Context) {
	report, err := h.reporter.Performance(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Performance report failed")
		utils.SendInternalError(c, "failed to build performance report")
		return
	}
	utils.SendSuccess(c, report)
}

// Buckets returns the EV-bucket and mental-form-bucket breakdowns.
func (h *ReportHandler) Buckets(c *gin.Context) {
	ctx := c.Request.Context()

	evBuckets, err := h.reporter.EVBuckets(ctx)
	if err != nil {
		h.logger.WithError(err).Error("EV bucket report failed")
		utils.SendInternalError(c, "failed to build bucket report")
		return
	}

	mentalBuckets, err := h.reporter.MentalBuckets(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Mental bucket report failed")
		utils.SendInternalError(c, "failed to build bucket report")
		return
	}

	utils.SendSuccess(c, gin.H{
		"ev_buckets":     evBuckets,
		"mental_buckets": mentalBuckets,
	})
}
