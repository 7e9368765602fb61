package application

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"fitplan-gateway/middleware/ratelimit/domain"
)

// DefaultFingerprintTTL é quanto tempo um hash em cache é reaproveitado.
const DefaultFingerprintTTL = time.Hour

// Fingerprinter deriva a identidade do cliente a partir dos headers.
type Fingerprinter struct {
	Cache domain.FingerprintCache
	TTL   time.Duration
	Now   func() time.Time
}

// Fingerprint nunca falha: headers ausentes caem em "unknown", o que agrupa todos
// os clientes não identificáveis num único balde.
func (f Fingerprinter) Fingerprint(meta domain.RequestMeta) domain.Fingerprint {
	ip := meta.ClientIP()
	key := ip + ":" + meta.UserAgentOrUnknown()

	now := time.Now()
	if f.Now != nil {
		now = f.Now()
	}
	ttl := f.TTL
	if ttl <= 0 {
		ttl = DefaultFingerprintTTL
	}

	if f.Cache != nil {
		if c, ok := f.Cache.Get(key); ok && now.Sub(c.CreatedAt) < ttl {
			return c.Hash
		}
	}

	hash := HashKey(key)
	if f.Cache != nil {
		f.Cache.Put(key, domain.CachedFingerprint{Hash: hash, IP: ip, CreatedAt: now})
	}
	return hash
}

// HashKey retorna o xxhash64 da chave em 16 caracteres hexadecimais.
// Não é fronteira de segurança, só identidade para rate limit.
func HashKey(key string) domain.Fingerprint {
	return domain.Fingerprint(fmt.Sprintf("%016x", xxhash.Sum64String(key)))
}
