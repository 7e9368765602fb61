package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"fitplan-gateway/middleware/ratelimit/domain"
)

// RedisStatsStore agrega decisões em hashes do Redis, somando todas as
// instâncias do gateway. O estado do rate limit em si continua em memória.
//
// Chaves:
//
//	{prefix}:total                  allowed / denied
//	{prefix}:category               {CATEGORY}:allowed / {CATEGORY}:denied
//	{prefix}:minute:{yyyymmddHHMM}  allowed / denied (com TTL)
//	{prefix}:route                  "{METHOD} {PATH}:allowed" ...
//	{prefix}:fp:{fingerprint}       allowed / denied (opcional, com TTL)
type RedisStatsStore struct {
	rdb    redis.Cmdable
	prefix string
	// ttl vale para os buckets por minuto e por fingerprint; os agregados não expiram.
	ttl       time.Duration
	perMinute bool
	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p
		}
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

// WithStatsPerMinute liga/desliga os buckets por minuto (ligados por padrão).
func WithStatsPerMinute(on bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.perMinute = on }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:       rdb,
		prefix:    "fitplan:stats",
		ttl:       24 * time.Hour,
		perMinute: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) key(parts ...string) string {
	return s.prefix + ":" + strings.Join(parts, ":")
}

func outcome(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}

// Record implementa domain.StatsStore com um único round-trip (pipeline).
func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := outcome(ev.Allowed)
	route := strings.TrimSpace(strings.TrimSpace(ev.Method) + " " + strings.TrimSpace(ev.Path))

	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, s.key("total"), field, 1)
		if ev.Category != "" {
			pipe.HIncrBy(ctx, s.key("category"), string(ev.Category)+":"+field, 1)
		}
		if route != "" {
			pipe.HIncrBy(ctx, s.key("route"), route+":"+field, 1)
		}
		if s.perMinute {
			s.incrExpiring(ctx, pipe, s.key("minute", at.UTC().Format("200601021504")), field)
		}
		if s.trackKeys && ev.Fingerprint != "" {
			s.incrExpiring(ctx, pipe, s.key("fp", string(ev.Fingerprint)), field)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis stats: %w", err)
	}
	return nil
}

func (s *RedisStatsStore) incrExpiring(ctx context.Context, pipe redis.Pipeliner, key, field string) {
	pipe.HIncrBy(ctx, key, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
}

// Counters lê os agregados total e por categoria.
func (s *RedisStatsStore) Counters(ctx context.Context) (Counters, map[domain.Category]Counters, error) {
	var total, byCategory *redis.MapStringStringCmd
	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		total = pipe.HGetAll(ctx, s.key("total"))
		byCategory = pipe.HGetAll(ctx, s.key("category"))
		return nil
	})
	if err != nil {
		return Counters{}, nil, fmt.Errorf("redis stats: %w", err)
	}

	var t Counters
	for field, v := range total.Val() {
		t.set(field, v)
	}
	out := make(map[domain.Category]Counters)
	for field, v := range byCategory.Val() {
		cat, kind, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		c := out[domain.Category(cat)]
		c.set(kind, v)
		out[domain.Category(cat)] = c
	}
	return t, out, nil
}

func (c *Counters) set(kind, raw string) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return
	}
	switch kind {
	case "allowed":
		c.Allowed = n
	case "denied":
		c.Denied = n
	}
}
