package ratelimit

import (
	"net/http"
	"time"

	"fitplan-gateway/middleware/ratelimit/application"
	"fitplan-gateway/middleware/ratelimit/domain"
	"fitplan-gateway/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	// Pool tem precedência sobre Max. Sem Pool e com Max <= 0 o middleware não limita nada.
	Pool           domain.SlotPool
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
}

// ConcurrencyMiddleware limita quantas requisições caras (geração de PDF) passam ao mesmo tempo.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Pool == nil {
		if opts.Max <= 0 {
			return func(next http.Handler) http.Handler { return next }
		}
		opts.Pool = infra.NewChanPool(opts.Max)
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	svc := application.ConcurrencyService{
		Pool:           opts.Pool,
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				writeJSON(w, opts.RejectStatus, errorBody{Error: "Servidor ocupado. Tente novamente em instantes."})
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
