package infra

import (
	"sync"
	"time"

	"mapa-imoveis/listings/domain"
)

// MemStore é o cache TTL em memória, particionado por bucket.
//
// Um único mutex cobre o store inteiro: o volume de chamadas é baixo e as
// seções críticas são só lookups/updates de map: simplicidade antes de
// sharding. A evicção é preguiçosa: entrada expirada some na leitura que a
// observa; não existe varredura em background.
type MemStore struct {
	mu      sync.Mutex
	buckets map[string]map[string]domain.CacheEntry
	now     func() time.Time
}

type MemStoreOption func(*MemStore)

// WithClock troca a fonte de tempo (testes de expiração).
func WithClock(now func() time.Time) MemStoreOption {
	return func(s *MemStore) { s.now = now }
}

func NewMemStore(opts ...MemStoreOption) *MemStore {
	s := &MemStore{
		buckets: make(map[string]map[string]domain.CacheEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implementa domain.CacheStore. TTL zero ou negativo expira tudo;
// cai naturalmente da comparação, sem caso especial.
func (s *MemStore) Get(bucket, key string, ttl time.Duration) (domain.CacheEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[bucket]
	if !ok {
		return domain.CacheEntry{}, false
	}
	ent, ok := b[key]
	if !ok {
		return domain.CacheEntry{}, false
	}
	if ent.Expired(ttl, s.now()) {
		delete(b, key)
		return domain.CacheEntry{}, false
	}
	return ent, true
}

// Set sobrescreve incondicionalmente com timestamp novo.
func (s *MemStore) Set(bucket, key string, value any) {
	s.SetEntry(bucket, key, domain.CacheEntry{Value: value, StoredAt: s.now()})
}

// SetEntry grava a entrada como veio, preservando StoredAt (reidratação
// do espelho durável usa isso para não renovar TTL indevidamente).
func (s *MemStore) SetEntry(bucket, key string, entry domain.CacheEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[bucket]
	if !ok {
		b = make(map[string]domain.CacheEntry)
		s.buckets[bucket] = b
	}
	b[key] = entry
}

// Entries devolve uma cópia do bucket sem aplicar TTL.
func (s *MemStore) Entries(bucket string) map[string]domain.CacheEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.buckets[bucket]
	out := make(map[string]domain.CacheEntry, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Len ignora TTL: conta o que está fisicamente no bucket.
func (s *MemStore) Len(bucket string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets[bucket])
}

// Clear esvazia os buckets indicados; sem argumentos, esvazia todos.
func (s *MemStore) Clear(buckets ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(buckets) == 0 {
		s.buckets = make(map[string]map[string]domain.CacheEntry)
		return
	}
	for _, b := range buckets {
		delete(s.buckets, b)
	}
}
