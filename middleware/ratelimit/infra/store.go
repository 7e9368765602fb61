package infra

import (
	"sync"
	"time"

	"fitplan-gateway/middleware/ratelimit/domain"
)

// Store é o armazenamento em memória das entradas de rate limit.
//
// Um único mutex protege o mapa; o janitor usa o mesmo lock do caminho da requisição.
// O estado é local ao processo e some num restart.
type Store struct {
	mu      sync.Mutex
	entries map[domain.EntryKey]domain.Entry
}

func NewStore() *Store {
	return &Store{entries: make(map[domain.EntryKey]domain.Entry)}
}

// Get implementa domain.EntryStore.
func (s *Store) Get(key domain.EntryKey) (domain.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	return e, ok
}

// Update implementa domain.EntryStore.
func (s *Store) Update(key domain.EntryKey, fn func(cur domain.Entry, found bool) domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, found := s.entries[key]
	s.entries[key] = fn(cur, found)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep remove as entradas com janela e penalidade expiradas e retorna quantas saíram.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for k, e := range s.entries {
		if e.Evictable(now) {
			delete(s.entries, k)
			deleted++
		}
	}
	return deleted
}
