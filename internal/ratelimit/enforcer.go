package ratelimit

import (
	"fmt"
	"time"

	"github.com/ppiankov/tariffwatch/internal/model"
)

// CheckResult is the outcome of a rate limit check.
type CheckResult struct {
	Exceeded  bool
	Operation string
	Current   int
	Limit     int
	Reason    string
}

// Err returns a model.ErrRateLimited error for an exceeded result, nil otherwise.
func (r CheckResult) Err() error {
	if !r.Exceeded {
		return nil
	}
	return fmt.Errorf("%w: %s", model.ErrRateLimited, r.Reason)
}

// Limiter enforces per-caller limits for named operations.
type Limiter struct {
	cfg     RateLimitConfig
	tracker *Tracker
	now     func() time.Time
}

// NewLimiter creates a Limiter over cfg using tracker for bookkeeping.
// A nil tracker gets a fresh one.
func NewLimiter(cfg RateLimitConfig, tracker *Tracker) *Limiter {
	if tracker == nil {
		tracker = NewTracker()
	}
	return &Limiter{cfg: cfg, tracker: tracker, now: time.Now}
}

// Allow checks and, when admitted, records one request by caller for
// operation. Operations without a configured limit are always admitted.
func (l *Limiter) Allow(caller, operation string) CheckResult {
	if l == nil {
		return CheckResult{}
	}
	limit := l.cfg[operation]
	if !limit.Enabled() {
		return CheckResult{}
	}

	key := operation + "|" + caller
	count, ok := l.tracker.Take(key, limit.MaxRequests, limit.Window, l.now())
	if ok {
		return CheckResult{}
	}
	return CheckResult{
		Exceeded:  true,
		Operation: operation,
		Current:   count,
		Limit:     limit.MaxRequests,
		Reason: fmt.Sprintf("rate limit exceeded: %d/%d %s requests in %s window",
			count, limit.MaxRequests, operation, limit.Window),
	}
}
