package domain

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrThrottled sinaliza que o provedor respondeu com limitação de taxa
// (HTTP 429 ou equivalente). Quem orquestra deve reportar ao limiter e
// tratar a chamada como falha, sem retry interno.
var ErrThrottled = errors.New("provider throttled the request")

// Provider é o cliente do provedor de anúncios. Todos os métodos devolvem
// o payload JSON cru; a normalização é responsabilidade de quem consome.
//
// Cada chamada carrega seu próprio timeout via ctx ou http.Client; uma
// chamada que estourou o tempo é falha comum, não caso especial.
type Provider interface {
	// SearchByLocation é a busca estendida por localização (cidade, CEP,
	// região administrativa).
	SearchByLocation(ctx context.Context, location string) (json.RawMessage, error)
	// SearchByQuery é a busca estrita por texto livre (endereço exato).
	SearchByQuery(ctx context.Context, query string) (json.RawMessage, error)
	// DetailByID busca o detalhe completo de um imóvel.
	DetailByID(ctx context.Context, id string) (json.RawMessage, error)
}

// Limiter serializa as chamadas de saída ao provedor.
//
// Acquire bloqueia até ser seguro emitir a próxima chamada: respeita o
// espaçamento mínimo entre chamadas e qualquer cooldown ativo, dormindo o
// maior dos dois atrasos. Só falha se o ctx encerrar antes.
type Limiter interface {
	Acquire(ctx context.Context) error
	// ReportThrottled estende o cooldown (nunca encurta) e cresce a
	// penalidade para sinais consecutivos.
	ReportThrottled()
	// ReportSuccess volta a penalidade ao valor base.
	ReportSuccess()
}
