package domain

import (
	"context"
	"time"
)

// Resultados possíveis de uma operação do orquestrador, para fins de
// estatística operacional.
const (
	OutcomeCacheHit  = "cache_hit"
	OutcomeDurable   = "durable_hit"
	OutcomeUpstream  = "upstream"
	OutcomeThrottled = "throttled"
	OutcomeMiss      = "miss"
)

// FetchEvent é um evento de decisão do núcleo de busca.
//
// Op é o nome da operação ("listings", "resolve", "detail"); Key é a chave
// normalizada envolvida. Cuidado com cardinalidade ao persistir Key.
type FetchEvent struct {
	Op      string
	Key     string
	Outcome string
	At      time.Time
}

// StatsStore persiste eventos de busca. Implementações podem gravar em
// Redis, memória etc. O chamador trata erro como best-effort e nunca
// derruba a operação por falha de estatística.
type StatsStore interface {
	Record(ctx context.Context, ev FetchEvent) error
}
