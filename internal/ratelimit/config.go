package ratelimit

import "time"

// Limit defines a sliding-window rate limit.
// Zero values mean no limit.
type Limit struct {
	MaxRequests int           `yaml:"max_requests" json:"max_requests"`
	Window      time.Duration `yaml:"window"       json:"window"`
}

// Enabled reports whether the limit constrains anything.
func (l *Limit) Enabled() bool {
	return l != nil && l.MaxRequests > 0 && l.Window > 0
}

// RateLimitConfig maps operation names (e.g. "classify") to their limits.
type RateLimitConfig map[string]*Limit

// HasLimits returns true if any operation has a configured limit.
func (c RateLimitConfig) HasLimits() bool {
	for _, l := range c {
		if l.Enabled() {
			return true
		}
	}
	return false
}
