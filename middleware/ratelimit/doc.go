// Package ratelimit fornece os adapters HTTP (net/http) do núcleo anti-abuso.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (fingerprint, detecção de bot, decisão allow/deny)
//   - infra: estado em memória, janitor, throttle, stats (Redis/memória)
//   - ratelimit (este pacote): Guard + middlewares HTTP + tradução para status/headers
//
// Fluxo no gateway:
//
//  1. Extrai os headers do cliente (x-forwarded-for, x-real-ip, cf-connecting-ip, user-agent)
//  2. Gera o fingerprint
//  3. Checa penalidade ativa (IsBlocked) e depois a categoria da rota
//  4. Se bloqueado, responde 429 com {"error", "retryAfter"} e Retry-After
//  5. Se permitido, chama o próximo handler (ex: reverse proxy para o agente)
//
// O Guard é criado uma vez no start do processo e fechado no shutdown.
package ratelimit
