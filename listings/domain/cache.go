package domain

import "time"

// Buckets do cache TTL. Cada um guarda uma categoria de valor com política
// de expiração própria; apenas BucketDetail tem espelho durável em disco.
const (
	BucketListings = "listingsByLocation"
	BucketQuery    = "idByQuery"
	BucketDetail   = "detailById"
)

// Buckets lista todos os buckets conhecidos, na ordem de apresentação.
func Buckets() []string {
	return []string{BucketListings, BucketQuery, BucketDetail}
}

// CacheEntry é uma entrada imutável: substituição total ou nada.
// StoredAt é a base do cálculo de expiração.
type CacheEntry struct {
	Value    any       `json:"value"`
	StoredAt time.Time `json:"storedAt"`
}

// Expired diz se a entrada passou do TTL no instante `now`.
// TTL zero ou negativo expira qualquer entrada; o comparador resolve
// sozinho, sem caso especial.
func (e CacheEntry) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.StoredAt) > ttl
}

// CacheStore é o armazenamento TTL em memória, particionado por bucket.
//
// Get trata entrada expirada como ausente e a remove na própria leitura
// (evicção preguiçosa, sem varredura em background). Set sobrescreve
// incondicionalmente com timestamp novo. Todas as operações são seguras
// para uso concorrente.
type CacheStore interface {
	Get(bucket, key string, ttl time.Duration) (CacheEntry, bool)
	Set(bucket, key string, value any)
	// SetEntry grava preservando o StoredAt original (reidratação de
	// entradas vindas do espelho durável).
	SetEntry(bucket, key string, entry CacheEntry)
	// Entries devolve uma cópia do conteúdo bruto do bucket, sem aplicar TTL.
	Entries(bucket string) map[string]CacheEntry
	// Len e Clear ignoram TTL por completo (superfície administrativa).
	Len(bucket string) int
	Clear(buckets ...string)
}

// DetailStore é o espelho durável do bucket de detalhes: um registro
// persistido por chave, com o mesmo formato {value, storedAt}.
//
// Falha de I/O nunca é erro para o chamador: persistência é otimização,
// não dependência de corretude. Um registro observado expirado é apagado
// como efeito colateral da leitura.
type DetailStore interface {
	Load() map[string]CacheEntry
	Get(key string, ttl time.Duration) (CacheEntry, bool)
	Put(key string, entry CacheEntry)
	Delete(key string)
	Clear()
	Len() int
}
