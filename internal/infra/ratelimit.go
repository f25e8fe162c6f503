package infra

import "golang.org/x/time/rate"

// NewRateLimiter returns a limiter allowing perSecond requests per second
// with a burst of the same size.
func NewRateLimiter(perSecond int) *rate.Limiter {
	if perSecond < 1 {
		perSecond = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), perSecond)
}
