// Package application contém os casos de uso do núcleo anti-abuso:
// fingerprint, detecção de bots, decisão de rate limit e limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.CheckPDF(fp, &meta) retorna uma Decision (allow/deny + retry-after + mensagem).
package application
