package infra

import (
	"golang.org/x/time/rate"

	"fitplan-gateway/middleware/ratelimit/domain"
)

// NewThrottle cria o token bucket global que protege o upstream (agentes LLM).
// rps <= 0 desliga o throttle (sempre permite).
func NewThrottle(rps float64, burst int) domain.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
