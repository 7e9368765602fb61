// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Store: entradas de janela fixa por (fingerprint, categoria), em memória
//   - FingerprintCache: LRU limitado usando github.com/hashicorp/golang-lru/v2
//   - SuspiciousSet: IPs marcados como bot
//   - Janitor: limpeza periódica dos três acima
//   - Throttle: token bucket global usando golang.org/x/time/rate
//   - ChanPool: semáforo simples para limite de concorrência
//   - MemoryStatsStore / RedisStatsStore: estatísticas de decisões
package infra
