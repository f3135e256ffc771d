package infra

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle serializa as chamadas de saída ao provedor compondo dois atrasos
// independentes: o espaçamento mínimo entre chamadas (token bucket de
// x/time/rate com burst=1) e o cooldown ativado por sinal de throttling.
//
// O atraso do cooldown é calculado sob o lock mas a espera acontece fora
// dele, então um chamador dormindo não impede os outros de calcular o
// próprio atraso. A emissão continua efetivamente serializada pelo bucket.
type Throttle struct {
	spacing *rate.Limiter

	mu            sync.Mutex
	cooldownUntil time.Time
	penalty       time.Duration // próxima duração de cooldown
	base          time.Duration
	max           time.Duration
}

type ThrottleOption func(*Throttle)

// WithBackoffMax limita o crescimento exponencial da penalidade.
func WithBackoffMax(d time.Duration) ThrottleOption {
	return func(t *Throttle) { t.max = d }
}

// NewThrottle cria o limiter com espaçamento mínimo `minInterval` entre
// chamadas e penalidade base `backoff` após sinal de throttling.
func NewThrottle(minInterval, backoff time.Duration, opts ...ThrottleOption) *Throttle {
	t := &Throttle{
		spacing: rate.NewLimiter(rate.Every(minInterval), 1),
		penalty: backoff,
		base:    backoff,
		max:     10 * backoff,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Acquire bloqueia até ser seguro emitir a próxima chamada: primeiro espera
// qualquer cooldown ativo, depois o espaçamento mínimo. O retorno nunca
// acontece antes de max(lastRequest+minInterval, cooldownUntil). Só falha
// se o ctx encerrar durante a espera.
func (t *Throttle) Acquire(ctx context.Context) error {
	t.mu.Lock()
	wait := time.Until(t.cooldownUntil)
	t.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return t.spacing.Wait(ctx)
}

// ReportThrottled estende o cooldown para now+penalty, nunca encurtando um
// cooldown já agendado, e dobra a penalidade para o próximo sinal (até o
// teto). Idempotente sob sinais repetidos.
func (t *Throttle) ReportThrottled() {
	t.mu.Lock()
	defer t.mu.Unlock()

	until := time.Now().Add(t.penalty)
	if until.After(t.cooldownUntil) {
		t.cooldownUntil = until
	}
	t.penalty *= 2
	if t.penalty > t.max {
		t.penalty = t.max
	}
}

// ReportSuccess volta a penalidade ao valor base. Não mexe em cooldown já
// agendado.
func (t *Throttle) ReportSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.penalty = t.base
}

// CooldownUntil expõe o fim do cooldown corrente (observabilidade/testes).
func (t *Throttle) CooldownUntil() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cooldownUntil
}
