package infra

import (
	"context"
	"sync"

	"fitplan-gateway/middleware/ratelimit/domain"
)

type Counters struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

func (c *Counters) add(allowed bool) {
	if allowed {
		c.Allowed++
		return
	}
	c.Denied++
}

// MemoryStatsStore conta decisões em memória, por categoria, rota e
// (opcionalmente) fingerprint. É o que alimenta /internal/stats.
//
// Não faz expiração; com WithTrackKeys(true) a cardinalidade cresce com os clientes.
type MemoryStatsStore struct {
	mu         sync.Mutex
	total      Counters
	byCategory map[domain.Category]Counters
	byRoute    map[string]Counters
	byKey      map[domain.Fingerprint]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byCategory: make(map[domain.Category]Counters),
		byRoute:    make(map[string]Counters),
		byKey:      make(map[domain.Fingerprint]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Allowed)

	c := s.byCategory[ev.Category]
	c.add(ev.Allowed)
	s.byCategory[ev.Category] = c

	r := s.byRoute[route]
	r.add(ev.Allowed)
	s.byRoute[route] = r

	if s.trackKeys && ev.Fingerprint != "" {
		k := s.byKey[ev.Fingerprint]
		k.add(ev.Allowed)
		s.byKey[ev.Fingerprint] = k
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByCategory() map[domain.Category]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCounters(s.byCategory)
}

// Counters devolve o total e a visão por categoria numa única chamada.
func (s *MemoryStatsStore) Counters(context.Context) (Counters, map[domain.Category]Counters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total, copyCounters(s.byCategory), nil
}

func (s *MemoryStatsStore) ByRoute() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCounters(s.byRoute)
}

func (s *MemoryStatsStore) ByKey() map[domain.Fingerprint]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCounters(s.byKey)
}

func copyCounters[K comparable](in map[K]Counters) map[K]Counters {
	out := make(map[K]Counters, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
