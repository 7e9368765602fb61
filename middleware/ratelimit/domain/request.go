package domain

import "strings"

// Unknown é a identidade usada quando um header não veio.
const Unknown = "unknown"

// RequestMeta são os headers relevantes para identificar o cliente.
// Campos vazios significam header ausente.
type RequestMeta struct {
	ForwardedFor string
	RealIP       string
	ConnectingIP string
	UserAgent    string
}

// ClientIP aplica a precedência x-forwarded-for (primeiro valor) > x-real-ip >
// cf-connecting-ip > "unknown".
func (m RequestMeta) ClientIP() string {
	if m.ForwardedFor != "" {
		first, _, _ := strings.Cut(m.ForwardedFor, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(m.RealIP); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(m.ConnectingIP); ip != "" {
		return ip
	}
	return Unknown
}

func (m RequestMeta) UserAgentOrUnknown() string {
	if m.UserAgent == "" {
		return Unknown
	}
	return m.UserAgent
}
