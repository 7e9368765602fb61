package ratelimit

import (
	"net/http"

	"fitplan-gateway/middleware/ratelimit/domain"
)

const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"
	HeaderConnectingIP = "CF-Connecting-IP"
)

// MetaFromRequest lê os headers usados na identificação do cliente.
// http.Header já canoniza os nomes, então a caixa do header não importa.
func MetaFromRequest(r *http.Request) domain.RequestMeta {
	return domain.RequestMeta{
		ForwardedFor: r.Header.Get(HeaderForwardedFor),
		RealIP:       r.Header.Get(HeaderRealIP),
		ConnectingIP: r.Header.Get(HeaderConnectingIP),
		UserAgent:    r.Header.Get("User-Agent"),
	}
}
