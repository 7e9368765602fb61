package infra

import (
	"context"
	"testing"

	"fitplan-gateway/middleware/ratelimit/domain"
)

func TestMemoryStatsStore_Record(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackKeys(true))
	ctx := context.Background()

	events := []domain.StatsEvent{
		{Fingerprint: "a", Category: domain.CategoryPDF, Allowed: true, Method: "POST", Path: "/api/pdf"},
		{Fingerprint: "a", Category: domain.CategoryPDF, Allowed: false, Method: "POST", Path: "/api/pdf"},
		{Fingerprint: "b", Category: domain.CategoryGeneral, Allowed: true, Method: "POST", Path: "/api/chat"},
	}
	for _, ev := range events {
		if err := s.Record(ctx, ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	if got := s.Total(); got != (Counters{Allowed: 2, Denied: 1}) {
		t.Fatalf("unexpected total %+v", got)
	}
	if got := s.ByCategory()[domain.CategoryPDF]; got != (Counters{Allowed: 1, Denied: 1}) {
		t.Fatalf("unexpected PDF counters %+v", got)
	}
	if got := s.ByRoute()["POST /api/chat"]; got != (Counters{Allowed: 1}) {
		t.Fatalf("unexpected route counters %+v", got)
	}
	if got := s.ByKey()["a"]; got != (Counters{Allowed: 1, Denied: 1}) {
		t.Fatalf("unexpected fingerprint counters %+v", got)
	}
}

func TestMemoryStatsStore_KeysNotTrackedByDefault(t *testing.T) {
	s := NewMemoryStatsStore()
	_ = s.Record(context.Background(), domain.StatsEvent{Fingerprint: "a", Allowed: true})

	if len(s.ByKey()) != 0 {
		t.Fatalf("expected no per-fingerprint counters")
	}
}

func TestMemoryStatsStore_SnapshotsAreCopies(t *testing.T) {
	s := NewMemoryStatsStore()
	_ = s.Record(context.Background(), domain.StatsEvent{Category: domain.CategoryBurst, Allowed: true})

	snap := s.ByCategory()
	snap[domain.CategoryBurst] = Counters{Allowed: 99}

	if got := s.ByCategory()[domain.CategoryBurst]; got.Allowed != 1 {
		t.Fatalf("expected internal counters untouched, got %+v", got)
	}
}

func TestMemoryStatsStore_Counters(t *testing.T) {
	s := NewMemoryStatsStore()
	_ = s.Record(context.Background(), domain.StatsEvent{Category: domain.CategoryBurst, Allowed: false})

	total, byCategory, err := s.Counters(context.Background())
	if err != nil {
		t.Fatalf("Counters: %v", err)
	}
	if total.Denied != 1 || byCategory[domain.CategoryBurst].Denied != 1 {
		t.Fatalf("unexpected counters %+v %+v", total, byCategory)
	}
}
