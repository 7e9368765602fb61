// Package domain define os tipos e contratos do núcleo anti-abuso:
// fingerprint do cliente, categorias de limite, entradas da janela e decisões.
//
// Não depende de net/http nem de implementações concretas de armazenamento.
// Toda regra de tempo recebe o "agora" de fora, o que mantém os testes determinísticos.
package domain
