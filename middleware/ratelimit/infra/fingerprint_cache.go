package infra

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"fitplan-gateway/middleware/ratelimit/domain"
)

const DefaultFingerprintCacheSize = 100_000

// FingerprintCache guarda os hashes por "ip:user-agent".
//
// O LRU limita a memória mesmo entre duas passadas do janitor; a expiração por
// idade é feita por SweepOlderThan.
type FingerprintCache struct {
	lru *lru.Cache[string, domain.CachedFingerprint]
}

func NewFingerprintCache(size int) (*FingerprintCache, error) {
	if size <= 0 {
		size = DefaultFingerprintCacheSize
	}
	c, err := lru.New[string, domain.CachedFingerprint](size)
	if err != nil {
		return nil, fmt.Errorf("fingerprint cache: %w", err)
	}
	return &FingerprintCache{lru: c}, nil
}

// Get implementa domain.FingerprintCache.
func (c *FingerprintCache) Get(key string) (domain.CachedFingerprint, bool) {
	return c.lru.Get(key)
}

// Put implementa domain.FingerprintCache.
func (c *FingerprintCache) Put(key string, v domain.CachedFingerprint) {
	c.lru.Add(key, v)
}

func (c *FingerprintCache) Len() int { return c.lru.Len() }

// SweepOlderThan remove entradas criadas antes de cutoff.
func (c *FingerprintCache) SweepOlderThan(cutoff time.Time) int {
	deleted := 0
	for _, k := range c.lru.Keys() {
		v, ok := c.lru.Peek(k)
		if ok && v.CreatedAt.Before(cutoff) {
			c.lru.Remove(k)
			deleted++
		}
	}
	return deleted
}
