package application

import (
	"regexp"

	"fitplan-gateway/middleware/ratelimit/domain"
)

var botUserAgent = regexp.MustCompile(`(?i)bot|crawler|spider|scraper|python|curl|wget`)

// Detector marca como suspeitos clientes com user-agent de bot/ferramenta ou vazio.
type Detector struct {
	Set domain.SuspectSet
}

// IsSuspicious recebe o user-agent cru (vazio quando ausente).
// IPs já conhecidos retornam direto, sem passar pelo regex.
func (d *Detector) IsSuspicious(ip, userAgent string) bool {
	if d.Set != nil && d.Set.Contains(ip) {
		return true
	}
	if userAgent == "" || botUserAgent.MatchString(userAgent) {
		if d.Set != nil {
			d.Set.Add(ip)
		}
		return true
	}
	return false
}
