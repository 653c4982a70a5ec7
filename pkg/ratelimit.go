package pkg

import (
	"errors"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// AdmissionLimiter caps the request rate a single replica admits.
type AdmissionLimiter struct {
	limiter *rate.Limiter // nil means unlimited
	logger  *zap.Logger
}

// NewAdmissionLimiter creates a token bucket refilled at ratePerSec; if ratePerSec=0, it's unlimited.
// A non-positive burst defaults to ratePerSec.
func NewAdmissionLimiter(ratePerSec, burst int, logger *zap.Logger) *AdmissionLimiter {
	var l *rate.Limiter
	if ratePerSec > 0 {
		if burst <= 0 {
			burst = ratePerSec
		}
		l = rate.NewLimiter(rate.Limit(ratePerSec), burst)
	}
	return &AdmissionLimiter{limiter: l, logger: logger}
}

// Allow reports whether a token is available without waiting.
func (a *AdmissionLimiter) Allow() bool {
	if a.limiter == nil {
		return true
	}
	if !a.limiter.Allow() {
		a.logger.Debug("admission_rate_exceeded", zap.Float64("limit", float64(a.limiter.Limit())))
		return false
	}
	return true
}
