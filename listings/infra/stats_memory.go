package infra

import (
	"context"
	"sync"

	"mapa-imoveis/listings/domain"
)

// MemoryStatsStore acumula eventos em memória. Útil em testes e
// desenvolvimento; não expira nada.
type MemoryStatsStore struct {
	mu    sync.Mutex
	total map[string]int64
	byOp  map[string]map[string]int64
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{
		total: make(map[string]int64),
		byOp:  make(map[string]map[string]int64),
	}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.FetchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total[ev.Outcome]++
	op, ok := s.byOp[ev.Op]
	if !ok {
		op = make(map[string]int64)
		s.byOp[ev.Op] = op
	}
	op[ev.Outcome]++
	return nil
}

func (s *MemoryStatsStore) Total() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.total))
	for k, v := range s.total {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByOp(op string) map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.byOp[op]))
	for k, v := range s.byOp[op] {
		out[k] = v
	}
	return out
}
