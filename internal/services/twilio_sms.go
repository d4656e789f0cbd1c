package services

import (
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSMSService implements SMSService using the Twilio API
type TwilioSMSService struct {
	client      *twilio.RestClient
	fromNumber  string
	logger      *logrus.Logger
	rateLimiter *SMSRateLimiter
}

// NewTwilioSMSService creates a new Twilio SMS service
func NewTwilioSMSService(accountSID, authToken, fromNumber string, rateLimiter *SMSRateLimiter, logger *logrus.Logger) *TwilioSMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSMSService{
		client:      client,
		fromNumber:  fromNumber,
		logger:      logger,
		rateLimiter: rateLimiter,
	}
}

// SendMessage sends an SMS message via Twilio
func (s *TwilioSMSService) SendMessage(phoneNumber, message string) error {
	normalized, err := normalizePhoneNumber(phoneNumber)
	if err != nil {
		return fmt.Errorf("invalid phone number format: %w", err)
	}

	if s.rateLimiter != nil {
		if err := s.rateLimiter.Allow(normalized); err != nil {
			s.logger.WithField("phone", normalized).Warn("SMS rate limited")
			return fmt.Errorf("rate limit exceeded: %w", err)
		}
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(normalized)
	params.SetFrom(s.fromNumber)
	params.SetBody(message)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		s.logger.WithError(err).Error("Twilio SMS send failed")
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	if resp.Sid != nil {
		s.logger.WithField("sid", *resp.Sid).Info("Twilio SMS sent")
	}
	return nil
}

// normalizePhoneNumber ensures phone number is in E.164 format
func normalizePhoneNumber(phone string) (string, error) {
	re := regexp.MustCompile(`[^\d+]`)
	cleaned := re.ReplaceAllString(phone, "")

	if !regexp.MustCompile(`^\+`).MatchString(cleaned) {
		// Assume US number if no country code
		if regexp.MustCompile(`^\d{10}$`).MatchString(cleaned) {
			cleaned = "+1" + cleaned
		} else {
			return "", fmt.Errorf("invalid phone number format")
		}
	}

	if !regexp.MustCompile(`^\+[1-9]\d{1,14}$`).MatchString(cleaned) {
		return "", fmt.Errorf("invalid phone number format")
	}

	return cleaned, nil
}
