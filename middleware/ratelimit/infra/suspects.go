package infra

import "sync"

// SuspiciousSet é o conjunto de IPs marcados como bot.
// Não há expiração por item: o janitor esvazia tudo quando passa do limite.
type SuspiciousSet struct {
	mu      sync.RWMutex
	members map[string]struct{}
}

func NewSuspiciousSet() *SuspiciousSet {
	return &SuspiciousSet{members: make(map[string]struct{})}
}

func (s *SuspiciousSet) Contains(ip string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[ip]
	return ok
}

func (s *SuspiciousSet) Add(ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[ip] = struct{}{}
}

func (s *SuspiciousSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

// ClearIfOver esvazia o conjunto quando ele tem mais de max membros.
func (s *SuspiciousSet) ClearIfOver(max int) (cleared int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.members) <= max {
		return 0
	}
	cleared = len(s.members)
	s.members = make(map[string]struct{})
	return cleared
}
