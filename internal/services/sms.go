package services

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/golf-edge/internal/models"
)

// SMSService sends opportunity alerts to bettors' phones.
type SMSService interface {
	SendMessage(phoneNumber, message string) error
}

// MockSMSService for development - logs to console instead of sending real SMS
type MockSMSService struct {
	logger *logrus.Logger
}

func NewMockSMSService(logger *logrus.Logger) *MockSMSService {
	return &MockSMSService{logger: logger}
}

func (s *MockSMSService) SendMessage(phoneNumber, message string) error {
	s.logger.WithField("phone", phoneNumber).Infof("MOCK SMS: %s", message)
	return nil
}

// FormatOpportunityAlert renders the top opportunities of a scan as a short
// SMS body.
func FormatOpportunityAlert(event string, opps []models.Opportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Golf Edge: %d value picks for %s\n", len(opps), event)
	for i, opp := range opps {
		fmt.Fprintf(&b, "%d. %s %s @ %s (%s): EV %.1f%%, stake $%.0f\n",
			i+1, opp.PlayerName, opp.Market, opp.AmericanOdds, opp.Sportsbook,
			opp.AdjEV, opp.Stake)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
