package infra

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"fitplan-gateway/middleware/ratelimit/domain"
)

// Precisa de um Redis local; sem ele o teste é ignorado.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("redis indisponível em %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisStatsStore_Record(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	prefix := "test:stats:" + time.Now().Format("150405.000000")
	t.Cleanup(func() {
		keys, _ := rdb.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			rdb.Del(ctx, keys...)
		}
	})

	s := NewRedisStatsStore(rdb, WithStatsPrefix(prefix), WithStatsTrackKeys(true))
	at := time.Date(2025, 3, 10, 12, 34, 0, 0, time.UTC)

	if err := s.Record(ctx, domain.StatsEvent{Fingerprint: "abc", Category: domain.CategoryPDF, Allowed: true, Method: "POST", Path: "/api/pdf", At: at}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(ctx, domain.StatsEvent{Fingerprint: "abc", Category: domain.CategoryPDF, Allowed: false, Method: "POST", Path: "/api/pdf", At: at}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	total, err := rdb.HGetAll(ctx, prefix+":total").Result()
	if err != nil {
		t.Fatalf("HGetAll: %v", err)
	}
	if total["allowed"] != "1" || total["denied"] != "1" {
		t.Fatalf("unexpected total %v", total)
	}
	if v, _ := rdb.HGet(ctx, prefix+":category", "PDF:denied").Result(); v != "1" {
		t.Fatalf("expected PDF:denied=1, got %q", v)
	}
	if v, _ := rdb.HGet(ctx, prefix+":route", "POST /api/pdf:allowed").Result(); v != "1" {
		t.Fatalf("expected route counter, got %q", v)
	}
	bucket := prefix + ":minute:202503101234"
	if ttl, _ := rdb.TTL(ctx, bucket).Result(); ttl <= 0 {
		t.Fatalf("expected minute bucket with TTL, got %s", ttl)
	}
	if v, _ := rdb.HGet(ctx, prefix+":fp:abc", "allowed").Result(); v != "1" {
		t.Fatalf("expected fingerprint counter, got %q", v)
	}

	total2, byCategory, err := s.Counters(ctx)
	if err != nil {
		t.Fatalf("Counters: %v", err)
	}
	if total2 != (Counters{Allowed: 1, Denied: 1}) {
		t.Fatalf("unexpected total %+v", total2)
	}
	if byCategory[domain.CategoryPDF] != (Counters{Allowed: 1, Denied: 1}) {
		t.Fatalf("unexpected byCategory %+v", byCategory)
	}
}

func TestRedisStatsStore_PerMinuteDisabled(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	prefix := "test:stats:nominute:" + time.Now().Format("150405.000000")
	t.Cleanup(func() {
		keys, _ := rdb.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			rdb.Del(ctx, keys...)
		}
	})

	s := NewRedisStatsStore(rdb, WithStatsPrefix(prefix), WithStatsPerMinute(false))
	if err := s.Record(ctx, domain.StatsEvent{Allowed: true}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	keys, err := rdb.Keys(ctx, prefix+":minute:*").Result()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected no minute buckets, got %v", keys)
	}
}

func TestRedisStatsStore_ReportsConnectionErrors(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	s := NewRedisStatsStore(rdb)
	if err := s.Record(context.Background(), domain.StatsEvent{Allowed: true}); err == nil {
		t.Fatalf("expected error with unreachable redis")
	}
	if _, _, err := s.Counters(context.Background()); err == nil {
		t.Fatalf("expected error with unreachable redis")
	}
}

func TestRedisStatsStore_NilClientIsNoop(t *testing.T) {
	var s *RedisStatsStore
	if err := s.Record(context.Background(), domain.StatsEvent{}); err != nil {
		t.Fatalf("expected nil store to be a no-op, got %v", err)
	}
	if err := NewRedisStatsStore(nil).Record(context.Background(), domain.StatsEvent{}); err != nil {
		t.Fatalf("expected nil client to be a no-op, got %v", err)
	}
}
