package application

import (
	"math"
	"sync"
	"time"

	"mapa-imoveis/listings/domain"
)

// Debouncer barra refreshes disparados por pan/zoom do mapa antes que
// virem tráfego de upstream.
//
// Um pedido é admitido quando: não houve pedido admitido ainda; o centro
// andou mais que o delta angular mínimo em algum eixo; o zoom mudou; ou o
// intervalo mínimo passou desde a última admissão. Pedido rejeitado não
// muda estado nenhum: o chamador responde lista vazia, não erro.
type Debouncer struct {
	minDelta    float64
	minInterval time.Duration
	now         func() time.Time

	mu       sync.Mutex
	hasLast  bool
	lastSeen domain.LatLng
	lastZoom int
	lastAt   time.Time
}

type DebouncerOption func(*Debouncer)

// WithDebounceClock troca a fonte de tempo (testes de intervalo).
func WithDebounceClock(now func() time.Time) DebouncerOption {
	return func(d *Debouncer) { d.now = now }
}

// NewDebouncer cria o gate com delta angular mínimo em graus e intervalo
// mínimo entre admissões.
func NewDebouncer(minDelta float64, minInterval time.Duration, opts ...DebouncerOption) *Debouncer {
	d := &Debouncer{
		minDelta:    minDelta,
		minInterval: minInterval,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Admit decide e, se admitir, registra o pedido atomicamente.
func (d *Debouncer) Admit(center domain.LatLng, zoom int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	admit := !d.hasLast ||
		math.Abs(center.Lat-d.lastSeen.Lat) > d.minDelta ||
		math.Abs(center.Lng-d.lastSeen.Lng) > d.minDelta ||
		zoom != d.lastZoom ||
		now.Sub(d.lastAt) >= d.minInterval

	if admit {
		d.hasLast = true
		d.lastSeen = center
		d.lastZoom = zoom
		d.lastAt = now
	}
	return admit
}
