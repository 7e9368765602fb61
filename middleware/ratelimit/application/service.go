package application

import (
	"fmt"
	"math"
	"time"

	"fitplan-gateway/middleware/ratelimit/domain"
)

const (
	// penalidade progressiva: a partir da 6ª violação, bloqueio de violations × 5min.
	penaltyThreshold = 5
	penaltyStep      = 5 * time.Minute
)

const (
	msgBlocked  = "Bloqueado temporariamente. Tente em %dmin."
	msgExceeded = "Limite excedido. Tente em %dmin."
)

// Service concentra a regra de decisão do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
// Negar não é erro: não há retorno de erro em nenhum caminho.
type Service struct {
	Store    domain.EntryStore
	Limits   domain.Limits
	Detector *Detector
	// Now permite controlar o relógio nos testes. nil usa time.Now.
	Now func() time.Time
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Service) limits() domain.Limits {
	if s.Limits == nil {
		return domain.DefaultLimits()
	}
	return s.Limits
}

// CheckLimit avalia uma requisição do fingerprint na categoria informada.
//
// Com categoria PDF e meta presente, clientes suspeitos passam a ser contados na
// categoria SUSPICIOUS.
func (s Service) CheckLimit(fp domain.Fingerprint, category domain.Category, meta *domain.RequestMeta) domain.Decision {
	if category == domain.CategoryPDF && meta != nil && s.Detector != nil {
		if s.Detector.IsSuspicious(meta.ClientIP(), meta.UserAgent) {
			category = domain.CategorySuspicious
		}
	}
	category, limit := s.limits().For(category)
	if s.Store == nil {
		return domain.Decision{Allowed: true, Category: category}
	}

	now := s.now()
	dec := domain.Decision{Allowed: true, Category: category}

	s.Store.Update(domain.EntryKey{Fingerprint: fp, Category: category}, func(cur domain.Entry, found bool) domain.Entry {
		switch {
		case !found || cur.WindowExpired(now):
			// janela nova: só as violações sobrevivem
			return domain.Entry{
				Count:      1,
				ResetTime:  now.Add(limit.Window),
				Violations: cur.Violations,
			}

		case cur.Penalized(now):
			dec = deny(category, msgBlocked, cur.PenaltyUntil.Sub(now))
			return cur

		case cur.Count >= limit.Requests:
			cur.Violations++
			if cur.Violations > penaltyThreshold {
				// recalculada a cada violação, nunca estendida
				cur.PenaltyUntil = now.Add(time.Duration(cur.Violations) * penaltyStep)
			}
			dec = deny(category, msgExceeded, cur.ResetTime.Sub(now))
			return cur

		default:
			cur.Count++
			return cur
		}
	})

	return dec
}

// CheckPDF aplica primeiro o BURST e, se passar, o limite de PDF (com escalonamento
// para SUSPICIOUS). BURST e PDF têm contadores independentes.
func (s Service) CheckPDF(fp domain.Fingerprint, meta *domain.RequestMeta) domain.Decision {
	burst := s.CheckLimit(fp, domain.CategoryBurst, nil)
	if !burst.Allowed {
		return burst
	}
	return s.CheckLimit(fp, domain.CategoryPDF, meta)
}

// CheckBlocked é a checagem barata feita antes da avaliação completa: nega se o
// fingerprint estiver em penalidade em qualquer categoria. Não altera estado.
func (s Service) CheckBlocked(fp domain.Fingerprint) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	now := s.now()

	var (
		until    time.Time
		category domain.Category
	)
	for _, c := range domain.Categories() {
		e, ok := s.Store.Get(domain.EntryKey{Fingerprint: fp, Category: c})
		if !ok || !e.Penalized(now) {
			continue
		}
		if e.PenaltyUntil.After(until) {
			until, category = e.PenaltyUntil, c
		}
	}
	if until.IsZero() {
		return domain.Decision{Allowed: true}
	}
	return deny(category, msgBlocked, until.Sub(now))
}

func (s Service) IsBlocked(fp domain.Fingerprint) bool {
	return !s.CheckBlocked(fp).Allowed
}

func deny(category domain.Category, format string, remaining time.Duration) domain.Decision {
	secs := ceilSeconds(remaining)
	return domain.Decision{
		Allowed:    false,
		Category:   category,
		Message:    fmt.Sprintf(format, ceilDiv(secs, 60)),
		RetryAfter: time.Duration(secs) * time.Second,
	}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
