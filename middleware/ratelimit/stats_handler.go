package ratelimit

import (
	"context"
	"net/http"
	"time"

	"fitplan-gateway/middleware/ratelimit/domain"
	"fitplan-gateway/middleware/ratelimit/infra"
)

// CounterSource fornece os contadores agregados de decisões
// (infra.MemoryStatsStore ou infra.RedisStatsStore).
type CounterSource interface {
	Counters(ctx context.Context) (infra.Counters, map[domain.Category]infra.Counters, error)
}

type statsResponse struct {
	Snapshot
	Total         *infra.Counters                    `json:"total,omitempty"`
	ByCategory    map[domain.Category]infra.Counters `json:"byCategory,omitempty"`
	CountersError string                             `json:"countersError,omitempty"`
	Limits        map[domain.Category]limitView      `json:"limits"`
}

type limitView struct {
	Requests int    `json:"requests"`
	Window   string `json:"window"`
}

// StatsHandler expõe o tamanho do estado em memória e, se houver, os contadores de decisões.
// Falha ao ler os contadores não derruba a resposta: o snapshot local sempre volta.
func StatsHandler(g *Guard, counters CounterSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statsResponse{
			Snapshot: g.Stats(),
			Limits:   make(map[domain.Category]limitView),
		}
		for c, lim := range g.Limits() {
			resp.Limits[c] = limitView{Requests: lim.Requests, Window: lim.Window.String()}
		}

		if counters != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			total, byCategory, err := counters.Counters(ctx)
			cancel()
			if err != nil {
				resp.CountersError = err.Error()
			} else {
				resp.Total = &total
				resp.ByCategory = byCategory
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
