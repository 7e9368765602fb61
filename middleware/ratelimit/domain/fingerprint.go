package domain

import "time"

// CachedFingerprint é o hash já calculado para um par (ip, user-agent).
type CachedFingerprint struct {
	Hash      Fingerprint
	IP        string
	CreatedAt time.Time
}

// FingerprintCache evita recalcular o hash a cada requisição.
type FingerprintCache interface {
	Get(key string) (CachedFingerprint, bool)
	Put(key string, v CachedFingerprint)
}

// SuspectSet guarda IPs marcados como bot. Uma vez suspeito, sempre suspeito
// (até o janitor limpar o conjunto inteiro).
type SuspectSet interface {
	Contains(ip string) bool
	Add(ip string)
}
