package ratelimit

import (
	"net/http"
	"time"

	"fitplan-gateway/middleware/ratelimit/domain"
)

type ThrottleOptions struct {
	Limiter      domain.Limiter
	RejectStatus int
	RetryAfter   time.Duration
}

// ThrottleMiddleware aplica um orçamento global (todas as origens somadas) antes do upstream.
func ThrottleMiddleware(opts ThrottleOptions) func(next http.Handler) http.Handler {
	if opts.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = time.Second
	}
	retry := int(opts.RetryAfter / time.Second)
	if retry < 1 {
		retry = 1
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !opts.Limiter.Allow() {
				w.Header().Set("Retry-After", formatInt(retry))
				writeJSON(w, opts.RejectStatus, errorBody{Error: "Muitas requisições no momento. Tente novamente em instantes.", RetryAfter: retry})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
