package ratelimit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"fitplan-gateway/middleware/ratelimit/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestGuard cria um Guard sem janitor agendado e com relógio controlado.
func newTestGuard(t *testing.T, clock *fakeClock, limits domain.Limits) *Guard {
	t.Helper()
	g, err := NewGuard(GuardOptions{
		Limits:       limits,
		CleanupEvery: -1,
		Logger:       quietLogger(),
		Now:          clock.Now,
	})
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	t.Cleanup(g.Close)
	return g
}

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
}

func postFrom(path, ip, ua string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "http://example"+path, nil)
	if ip != "" {
		r.Header.Set("X-Forwarded-For", ip)
	}
	if ua != "" {
		r.Header.Set("User-Agent", ua)
	}
	return r
}

type recordingStats struct {
	mu     sync.Mutex
	events []domain.StatsEvent
	err    error
}

func (s *recordingStats) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

var errStatsDown = errors.New("stats down")
