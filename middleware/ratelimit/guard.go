package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fitplan-gateway/middleware/ratelimit/application"
	"fitplan-gateway/middleware/ratelimit/domain"
	"fitplan-gateway/middleware/ratelimit/infra"
)

type GuardOptions struct {
	// Limits sobrescreve a tabela padrão por categoria (merge).
	Limits domain.Limits
	// CleanupEvery é o intervalo do janitor. Zero usa 10min; negativo desliga.
	CleanupEvery         time.Duration
	FingerprintCacheSize int
	Logger               logrus.FieldLogger
	// Now substitui o relógio (testes).
	Now func() time.Time
}

// Guard é o serviço anti-abuso do processo: dono do store, do cache de fingerprints,
// do conjunto de suspeitos e do janitor. Crie um por processo (ou um por teste).
type Guard struct {
	fingerprints application.Fingerprinter
	detector     *application.Detector
	service      application.Service

	store    *infra.Store
	cache    *infra.FingerprintCache
	suspects *infra.SuspiciousSet
	janitor  *infra.Janitor

	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewGuard monta o estado e já inicia o janitor. Pare com Close.
func NewGuard(opts GuardOptions) (*Guard, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CleanupEvery == 0 {
		opts.CleanupEvery = infra.DefaultJanitorInterval
	}

	cache, err := infra.NewFingerprintCache(opts.FingerprintCacheSize)
	if err != nil {
		return nil, err
	}
	store := infra.NewStore()
	suspects := infra.NewSuspiciousSet()
	detector := &application.Detector{Set: suspects}

	g := &Guard{
		fingerprints: application.Fingerprinter{Cache: cache, Now: opts.Now},
		detector:     detector,
		service: application.Service{
			Store:    store,
			Limits:   domain.DefaultLimits().Merge(opts.Limits),
			Detector: detector,
			Now:      opts.Now,
		},
		store:    store,
		cache:    cache,
		suspects: suspects,
		janitor: infra.NewJanitor(store, cache, suspects,
			infra.WithJanitorInterval(opts.CleanupEvery),
			infra.WithJanitorLogger(opts.Logger),
			infra.WithJanitorClock(opts.Now),
		),
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.janitor.Start(ctx)
	return g, nil
}

func (g *Guard) Fingerprint(meta domain.RequestMeta) domain.Fingerprint {
	return g.fingerprints.Fingerprint(meta)
}

func (g *Guard) CheckLimit(fp domain.Fingerprint, category domain.Category, meta *domain.RequestMeta) domain.Decision {
	return g.service.CheckLimit(fp, category, meta)
}

func (g *Guard) CheckPDF(fp domain.Fingerprint, meta *domain.RequestMeta) domain.Decision {
	return g.service.CheckPDF(fp, meta)
}

func (g *Guard) CheckBlocked(fp domain.Fingerprint) domain.Decision {
	return g.service.CheckBlocked(fp)
}

func (g *Guard) IsBlocked(fp domain.Fingerprint) bool {
	return g.service.IsBlocked(fp)
}

func (g *Guard) IsSuspicious(ip, userAgent string) bool {
	return g.detector.IsSuspicious(ip, userAgent)
}

// Limits retorna a tabela efetiva de limites.
func (g *Guard) Limits() domain.Limits {
	return g.service.Limits.Merge(nil)
}

// Snapshot é o tamanho atual do estado em memória.
type Snapshot struct {
	RateLimits    int `json:"rateLimits"`
	SuspiciousIPs int `json:"suspiciousIPs"`
	CacheSize     int `json:"cacheSize"`
}

func (g *Guard) Stats() Snapshot {
	return Snapshot{
		RateLimits:    g.store.Len(),
		SuspiciousIPs: g.suspects.Len(),
		CacheSize:     g.cache.Len(),
	}
}

// Sweep roda uma limpeza síncrona, fora do agendamento do janitor.
func (g *Guard) Sweep() infra.SweepReport {
	return g.janitor.RunOnce()
}

// Close para o janitor e espera a goroutine terminar. Pode ser chamado mais de uma vez.
func (g *Guard) Close() {
	g.closeOnce.Do(func() {
		g.cancel()
		<-g.janitor.Done()
	})
}
