package services

import (
	"fmt"
	"sync"
	"time"
)

// SMSRateLimiter caps how many alerts a single recipient can receive per
// window, so a busy scan schedule cannot flood a phone.
type SMSRateLimiter struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	maxRequests int
	window      time.Duration
}

// NewSMSRateLimiter creates a rate limiter allowing maxRequests per window
// per phone number.
func NewSMSRateLimiter(maxRequests int, window time.Duration) *SMSRateLimiter {
	return &SMSRateLimiter{
		requests:    make(map[string][]time.Time),
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow checks if the request is allowed for the given phone number
func (rl *SMSRateLimiter) Allow(phoneNumber string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.cleanupOldRequests(phoneNumber, now)

	if len(rl.requests[phoneNumber]) >= rl.maxRequests {
		return fmt.Errorf("rate limit exceeded: maximum %d SMS per %v", rl.maxRequests, rl.window)
	}

	rl.requests[phoneNumber] = append(rl.requests[phoneNumber], now)
	return nil
}

// cleanupOldRequests removes requests outside the time window
func (rl *SMSRateLimiter) cleanupOldRequests(phoneNumber string, now time.Time) {
	requests, exists := rl.requests[phoneNumber]
	if !exists {
		return
	}

	cutoff := now.Add(-rl.window)
	valid := make([]time.Time, 0, len(requests))
	for _, req := range requests {
		if req.After(cutoff) {
			valid = append(valid, req)
		}
	}

	if len(valid) == 0 {
		delete(rl.requests, phoneNumber)
	} else {
		rl.requests[phoneNumber] = valid
	}
}
