package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mapa-imoveis/listings/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore acumula resultados das operações de busca em hashes do
// Redis: um total cumulativo, séries por minuto com TTL e um hash por
// operação ("listings", "resolve", "detail").
//
// É best-effort por contrato: o orquestrador ignora o erro de Record.
type RedisStatsStore struct {
	rdb *redis.Client

	prefix string
	// ttl só se aplica às séries por minuto; o total é cumulativo.
	ttl time.Duration
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "listings:stats",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.FetchEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := ev.Outcome
	if field == "" {
		return nil
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucketKey, s.ttl)
	}

	if op := strings.TrimSpace(ev.Op); op != "" {
		pipe.HIncrBy(ctx, s.prefix+":op:"+op, field, 1)
	}

	_, err := pipe.Exec(ctx)
	return err
}
