package domain

import (
	"context"
	"time"
)

// StatsEvent representa um evento de decisão do rate limit.
//
// Method/Path são strings genéricas; Fingerprint é opcional na persistência
// (cuidado com cardinalidade em Redis).
type StatsEvent struct {
	Fingerprint Fingerprint
	Category    Category
	Allowed     bool

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do rate limit.
//
// O middleware trata erro como best-effort: loga e segue com a requisição.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
