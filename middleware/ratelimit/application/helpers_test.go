package application

import (
	"time"

	"fitplan-gateway/middleware/ratelimit/domain"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeStore struct {
	entries map[domain.EntryKey]domain.Entry
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[domain.EntryKey]domain.Entry)}
}

func (s *fakeStore) Get(key domain.EntryKey) (domain.Entry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

func (s *fakeStore) Update(key domain.EntryKey, fn func(domain.Entry, bool) domain.Entry) {
	cur, ok := s.entries[key]
	s.entries[key] = fn(cur, ok)
}

type fakeSet map[string]bool

func (s fakeSet) Contains(ip string) bool { return s[ip] }
func (s fakeSet) Add(ip string)           { s[ip] = true }

func key(fp string, c domain.Category) domain.EntryKey {
	return domain.EntryKey{Fingerprint: domain.Fingerprint(fp), Category: c}
}
