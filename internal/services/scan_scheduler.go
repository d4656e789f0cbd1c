package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/golf-edge/internal/models"
	"github.com/jstittsworth/golf-edge/internal/scanner"
)

// ScanSchedulerConfig controls the periodic scan job.
type ScanSchedulerConfig struct {
	Schedule   string // cron spec, e.g. "@every 1h"
	Event      string
	Markets    []models.Market
	Filters    scanner.Filters
	TopN       int
	Recipients []string
}

// ScanScheduler runs the opportunity scan on a cron schedule and texts the
// top picks to configured recipients.
type ScanScheduler struct {
	feed    *FeedService
	mental  *MentalFormService
	scanner *scanner.Scanner
	sms     SMSService
	logger  *logrus.Logger
	cfg     ScanSchedulerConfig

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewScanScheduler(
	feed *FeedService,
	mental *MentalFormService,
	sc *scanner.Scanner,
	sms SMSService,
	logger *logrus.Logger,
	cfg ScanSchedulerConfig,
) *ScanScheduler {
	return &ScanScheduler{
		feed:    feed,
		mental:  mental,
		scanner: sc,
		sms:     sms,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(),
	}
}

// Start begins the scheduled scans.
func (s *ScanScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scan scheduler is already running")
	}
	if s.cfg.Event == "" {
		return fmt.Errorf("scan scheduler requires an event")
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.runScan); err != nil {
		return fmt.Errorf("failed to schedule scans: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	// Run initial scan
	go s.runScan()

	s.logger.WithFields(logrus.Fields{
		"schedule": s.cfg.Schedule,
		"event":    s.cfg.Event,
	}).Info("Scan scheduler started")
	return nil
}

// Stop halts the scheduled scans.
func (s *ScanScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	s.logger.Info("Scan scheduler stopped")
}

func (s *ScanScheduler) runScan() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	snapshot, err := s.feed.Snapshot(ctx, s.cfg.Event, s.cfg.Markets)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled scan: feed snapshot failed")
		return
	}

	scores, err := s.mental.All(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Scheduled scan: mental scores unavailable, scanning unadjusted")
		scores = map[string]*models.MentalFormScore{}
	}

	opps, err := s.scanner.Scan(ctx, scanner.Input{
		Event:         s.cfg.Event,
		Quotes:        snapshot.Quotes,
		Probabilities: snapshot.Probabilities,
		MentalScores:  scores,
		Filters:       s.cfg.Filters,
		AsOf:          snapshot.FetchedAt,
	})
	if err != nil {
		s.logger.WithError(err).Error("Scheduled scan failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"event":         s.cfg.Event,
		"opportunities": len(opps),
	}).Info("Scheduled scan complete")

	if len(opps) == 0 || s.sms == nil || len(s.cfg.Recipients) == 0 {
		return
	}

	top := opps
	if s.cfg.TopN > 0 && len(top) > s.cfg.TopN {
		top = top[:s.cfg.TopN]
	}
	message := FormatOpportunityAlert(s.cfg.Event, top)

	for _, recipient := range s.cfg.Recipients {
		if err := s.sms.SendMessage(recipient, message); err != nil {
			s.logger.WithError(err).WithField("phone", recipient).Warn("Opportunity alert failed")
		}
	}
}
