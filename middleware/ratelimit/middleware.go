package ratelimit

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"fitplan-gateway/middleware/ratelimit/domain"
)

type Options struct {
	Guard *Guard
	Stats domain.StatsStore
	// Category da rota. PDF usa a checagem composta (BURST + PDF + suspeitos).
	Category            domain.Category
	RejectStatus        int
	AddRateLimitHeaders bool
	Logger              logrus.FieldLogger
}

// Middleware aplica o Guard a cada requisição: fingerprint, checagem de penalidade
// ativa e depois o limite da categoria.
//
// Negar é resultado normal, não falha: vai para o log em nível debug.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Guard == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.Category == "" {
		opts.Category = domain.CategoryGeneral
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			meta := MetaFromRequest(r)
			fp := opts.Guard.Fingerprint(meta)

			dec := opts.Guard.CheckBlocked(fp)
			if dec.Allowed {
				if opts.Category == domain.CategoryPDF {
					dec = opts.Guard.CheckPDF(fp, &meta)
				} else {
					dec = opts.Guard.CheckLimit(fp, opts.Category, &meta)
				}
			}

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Fingerprint", string(fp))
				w.Header().Set("X-RateLimit-Category", string(dec.Category))
			}

			if opts.Stats != nil {
				err := opts.Stats.Record(r.Context(), domain.StatsEvent{
					Fingerprint: fp,
					Category:    dec.Category,
					Allowed:     dec.Allowed,
					Method:      r.Method,
					Path:        r.URL.Path,
					At:          time.Now(),
				})
				if err != nil {
					opts.Logger.WithError(err).Warn("ratelimit: failed to record stats")
				}
			}

			if !dec.Allowed {
				opts.Logger.WithFields(logrus.Fields{
					"fingerprint": fp,
					"category":    dec.Category,
					"retry_after": dec.RetryAfterSeconds(),
					"path":        r.URL.Path,
				}).Debug("ratelimit: request denied")

				w.Header().Set("Retry-After", formatInt(dec.RetryAfterSeconds()))
				writeJSON(w, opts.RejectStatus, errorBody{Error: dec.Message, RetryAfter: dec.RetryAfterSeconds()})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
