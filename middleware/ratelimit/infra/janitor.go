package infra

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultJanitorInterval = 10 * time.Minute
	DefaultCacheMaxAge     = 24 * time.Hour
	DefaultSuspectsMax     = 1000
)

// SweepReport resume uma passada do janitor.
type SweepReport struct {
	Entries      int
	Fingerprints int
	Suspects     int
}

func (r SweepReport) Total() int { return r.Entries + r.Fingerprints + r.Suspects }

// Janitor limpa periodicamente o Store, o FingerprintCache e o SuspiciousSet.
//
// Start roda no máximo uma vez por Janitor; a goroutine termina quando o ctx é cancelado.
type Janitor struct {
	store    *Store
	cache    *FingerprintCache
	suspects *SuspiciousSet

	every       time.Duration
	cacheMaxAge time.Duration
	suspectsMax int
	log         logrus.FieldLogger
	now         func() time.Time

	once sync.Once
	done chan struct{}
}

type JanitorOption func(*Janitor)

func WithJanitorInterval(d time.Duration) JanitorOption {
	return func(j *Janitor) { j.every = d }
}

func WithCacheMaxAge(d time.Duration) JanitorOption {
	return func(j *Janitor) { j.cacheMaxAge = d }
}

func WithSuspectsMax(n int) JanitorOption {
	return func(j *Janitor) { j.suspectsMax = n }
}

func WithJanitorLogger(l logrus.FieldLogger) JanitorOption {
	return func(j *Janitor) { j.log = l }
}

func WithJanitorClock(now func() time.Time) JanitorOption {
	return func(j *Janitor) { j.now = now }
}

// NewJanitor aceita cache e suspects nil; store também pode ser nil.
func NewJanitor(store *Store, cache *FingerprintCache, suspects *SuspiciousSet, opts ...JanitorOption) *Janitor {
	j := &Janitor{
		store:       store,
		cache:       cache,
		suspects:    suspects,
		every:       DefaultJanitorInterval,
		cacheMaxAge: DefaultCacheMaxAge,
		suspectsMax: DefaultSuspectsMax,
		log:         logrus.StandardLogger(),
		now:         time.Now,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// RunOnce faz uma passada síncrona de limpeza.
func (j *Janitor) RunOnce() SweepReport {
	now := j.now()
	var r SweepReport

	if j.store != nil {
		r.Entries = j.store.Sweep(now)
	}
	if j.cache != nil {
		r.Fingerprints = j.cache.SweepOlderThan(now.Add(-j.cacheMaxAge))
	}
	if j.suspects != nil {
		r.Suspects = j.suspects.ClearIfOver(j.suspectsMax)
	}

	if r.Total() > 0 {
		j.log.WithFields(logrus.Fields{
			"entries":      r.Entries,
			"fingerprints": r.Fingerprints,
			"suspects":     r.Suspects,
		}).Infof("janitor: %d entradas removidas", r.Total())
	}
	return r
}

// Start inicia a goroutine de limpeza. Chamadas repetidas não têm efeito.
// Com intervalo <= 0 nada é agendado e Done fecha imediatamente.
func (j *Janitor) Start(ctx context.Context) {
	j.once.Do(func() {
		if j.every <= 0 {
			close(j.done)
			return
		}

		t := time.NewTicker(j.every)
		go func() {
			defer close(j.done)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					j.RunOnce()
				}
			}
		}()
	})
}

// Done fecha quando a goroutine iniciada por Start termina.
func (j *Janitor) Done() <-chan struct{} { return j.done }
