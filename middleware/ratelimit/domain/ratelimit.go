package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

// Fingerprint é a pseudo-identidade derivada de (IP, user-agent).
// Não é única por pessoa: colisões são aceitas.
type Fingerprint string

// Category seleciona o par (cota, janela) aplicado a uma checagem.
type Category string

const (
	CategoryGeneral    Category = "GENERAL"
	CategoryPDF        Category = "PDF"
	CategoryBurst      Category = "BURST"
	CategorySuspicious Category = "SUSPICIOUS"
)

// Categories retorna todas as categorias conhecidas.
func Categories() []Category {
	return []Category{CategoryGeneral, CategoryPDF, CategoryBurst, CategorySuspicious}
}

// Limit é a cota de requisições permitidas dentro de uma janela fixa.
type Limit struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// Limits mapeia cada categoria para o seu Limit.
type Limits map[Category]Limit

func DefaultLimits() Limits {
	return Limits{
		CategoryGeneral:    {Requests: 100, Window: time.Hour},
		CategoryPDF:        {Requests: 5, Window: time.Hour},
		CategoryBurst:      {Requests: 15, Window: time.Minute},
		CategorySuspicious: {Requests: 10, Window: time.Hour},
	}
}

// For retorna o limite da categoria; categorias desconhecidas caem em GENERAL.
func (l Limits) For(c Category) (Category, Limit) {
	if lim, ok := l[c]; ok {
		return c, lim
	}
	if lim, ok := l[CategoryGeneral]; ok {
		return CategoryGeneral, lim
	}
	return CategoryGeneral, DefaultLimits()[CategoryGeneral]
}

// Merge devolve uma cópia de l com as entradas de override por cima.
func (l Limits) Merge(override Limits) Limits {
	out := make(Limits, len(l)+len(override))
	for c, lim := range l {
		out[c] = lim
	}
	for c, lim := range override {
		out[c] = lim
	}
	return out
}

// EntryKey é a chave do store: contadores de categorias diferentes nunca se misturam.
type EntryKey struct {
	Fingerprint Fingerprint
	Category    Category
}

// Entry é o estado de um fingerprint numa categoria.
//
// Count só vale enquanto now <= ResetTime. Violations sobrevive ao reset da janela
// e só some quando a entrada inteira é removida. PenaltyUntil zero significa sem penalidade.
type Entry struct {
	Count        int
	ResetTime    time.Time
	Violations   int
	PenaltyUntil time.Time
}

func (e Entry) WindowExpired(now time.Time) bool {
	return now.After(e.ResetTime)
}

func (e Entry) Penalized(now time.Time) bool {
	return !e.PenaltyUntil.IsZero() && now.Before(e.PenaltyUntil)
}

// Evictable indica que a janela e a penalidade (se houver) já expiraram.
func (e Entry) Evictable(now time.Time) bool {
	if !e.WindowExpired(now) {
		return false
	}
	return e.PenaltyUntil.IsZero() || now.After(e.PenaltyUntil)
}

// EntryStore guarda as entradas por chave composta.
//
// Update executa fn com o estado atual e grava o retorno, tudo sob o mesmo lock:
// o read-modify-write de uma chave nunca é intercalado com outro.
type EntryStore interface {
	Get(key EntryKey) (Entry, bool)
	Update(key EntryKey, fn func(cur Entry, found bool) Entry)
}

// Limiter representa algo que pode decidir se uma ação é permitida agora.
// Usado pelo throttle global (token bucket) na frente do upstream.
type Limiter interface {
	Allow() bool
}

type Decision struct {
	Allowed  bool
	Category Category
	// Message é o texto mostrado ao usuário quando bloqueado.
	Message string
	// RetryAfter é sempre um número inteiro de segundos. Zero quando permitido.
	RetryAfter time.Duration
}

func (d Decision) RetryAfterSeconds() int {
	return int(d.RetryAfter / time.Second)
}
