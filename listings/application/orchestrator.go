package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"mapa-imoveis/listings/domain"

	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/singleflight"
)

// Config são os TTLs de cada bucket. Zero vira o default correspondente.
type Config struct {
	TTLListings time.Duration // curto: payload de busca por localização
	TTLQuery    time.Duration // médio: resolução texto→identificador
	TTLDetail   time.Duration // longo: detalhe de imóvel (bucket espelhado)
}

func (c Config) withDefaults() Config {
	if c.TTLListings <= 0 {
		c.TTLListings = 10 * time.Minute
	}
	if c.TTLQuery <= 0 {
		c.TTLQuery = 1 * time.Hour
	}
	if c.TTLDetail <= 0 {
		c.TTLDetail = 30 * 24 * time.Hour
	}
	return c
}

// Orchestrator media todo acesso ao provedor de anúncios: consulta os três
// buckets de cache, passa pelo limiter antes de qualquer chamada de saída,
// funde resultados cacheados e frescos, e absorve falhas de upstream.
//
// Chamadas concorrentes de FetchListings para a mesma localização são
// colapsadas em uma única ida ao provedor (singleflight).
type Orchestrator struct {
	cfg      Config
	cache    domain.CacheStore
	durable  domain.DetailStore // opcional
	limiter  domain.Limiter
	provider domain.Provider
	stats    domain.StatsStore // opcional, best-effort

	sf singleflight.Group
}

// NewOrchestrator monta o orquestrador e reidrata o bucket de detalhes a
// partir do espelho durável, preservando o StoredAt original de cada
// entrada (o TTL decide na primeira leitura pós-restart).
func NewOrchestrator(cfg Config, cache domain.CacheStore, durable domain.DetailStore, limiter domain.Limiter, provider domain.Provider, stats domain.StatsStore) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg.withDefaults(),
		cache:    cache,
		durable:  durable,
		limiter:  limiter,
		provider: provider,
		stats:    stats,
	}
	if durable != nil {
		for key, ent := range durable.Load() {
			cache.SetEntry(domain.BucketDetail, key, ent)
		}
	}
	return o
}

// FetchListings devolve o conjunto fundido, deduplicado e filtrado por
// bounds para uma localização. Registros vindos do cache de detalhes
// precedem os recém-buscados e ganham o desempate por endereço.
//
// Falha de upstream (rede, status, throttling, decode) degrada para o que
// houver no cache, nunca para erro.
func (o *Orchestrator) FetchListings(ctx context.Context, location string, bounds *domain.Bounds) []domain.Listing {
	key := domain.NormalizeKey(location)

	var payload json.RawMessage
	if ent, ok := o.cache.Get(domain.BucketListings, key, o.cfg.TTLListings); ok {
		payload, _ = ent.Value.(json.RawMessage)
		o.record(ctx, "listings", key, domain.OutcomeCacheHit)
	} else {
		payload = o.searchLocation(ctx, key)
	}

	out := make([]domain.Listing, 0)
	seen := make(map[string]bool)

	// inclusão cache-first: detalhes já resolvidos aparecem mesmo que a
	// busca por localização não os tenha trazido
	for _, ent := range o.cache.Entries(domain.BucketDetail) {
		if ent.Expired(o.cfg.TTLDetail, time.Now()) {
			continue
		}
		d, ok := ent.Value.(domain.PropertyDetail)
		if !ok {
			continue
		}
		if bounds != nil && !bounds.Contains(d.Lat, d.Lon) {
			continue
		}
		addr := domain.NormalizeKey(d.Address)
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, d.AsListing())
	}

	for _, rec := range domain.Records(payload) {
		l, ok := domain.ListingFrom(rec)
		if !ok {
			continue
		}
		if bounds != nil && !bounds.Contains(l.Lat, l.Lon) {
			continue
		}
		addr := domain.NormalizeKey(l.Address)
		if addr != "" {
			if seen[addr] {
				continue
			}
			seen[addr] = true
		}
		out = append(out, l)
	}
	return out
}

// searchLocation faz a ida ao provedor para uma chave de localização,
// colapsando chamadores concorrentes. Payload vazio é um fato cacheável
// ("não há anúncios aqui"); falha não é.
func (o *Orchestrator) searchLocation(ctx context.Context, key string) json.RawMessage {
	v, _, _ := o.sf.Do(key, func() (any, error) {
		// outro voo pode ter preenchido o cache enquanto esperávamos
		if ent, ok := o.cache.Get(domain.BucketListings, key, o.cfg.TTLListings); ok {
			return ent.Value, nil
		}
		raw, ok := o.callSearch(ctx, "listings", key, func() (json.RawMessage, error) {
			return o.provider.SearchByLocation(ctx, key)
		})
		if !ok {
			return json.RawMessage(nil), nil
		}
		o.cache.Set(domain.BucketListings, key, raw)
		return raw, nil
	})
	payload, _ := v.(json.RawMessage)
	return payload
}

// ResolveIdentifier converte texto livre (endereço/cidade) no identificador
// do provedor: cache, depois busca estrita, depois casamento fuzzy contra a
// busca estendida. Resolução nenhuma nunca é cacheada como ausência.
func (o *Orchestrator) ResolveIdentifier(ctx context.Context, query string) (domain.Resolution, bool) {
	key := domain.NormalizeKey(query)
	if key == "" {
		return domain.Resolution{}, false
	}

	if ent, ok := o.cache.Get(domain.BucketQuery, key, o.cfg.TTLQuery); ok {
		if res, ok := ent.Value.(domain.Resolution); ok {
			o.record(ctx, "resolve", key, domain.OutcomeCacheHit)
			return res, true
		}
	}

	if raw, ok := o.callSearch(ctx, "resolve", key, func() (json.RawMessage, error) {
		return o.provider.SearchByQuery(ctx, key)
	}); ok {
		for _, rec := range domain.Records(raw) {
			if res, ok := domain.ResolutionFrom(rec); ok {
				o.cache.Set(domain.BucketQuery, key, res)
				o.record(ctx, "resolve", key, domain.OutcomeUpstream)
				return res, true
			}
		}
	}

	// fallback: busca estendida + casamento por endereço
	raw, ok := o.callSearch(ctx, "resolve", key, func() (json.RawMessage, error) {
		return o.provider.SearchByLocation(ctx, key)
	})
	if !ok {
		return domain.Resolution{}, false
	}
	if res, ok := matchAddress(key, domain.Records(raw)); ok {
		o.cache.Set(domain.BucketQuery, key, res)
		o.record(ctx, "resolve", key, domain.OutcomeUpstream)
		return res, true
	}

	o.record(ctx, "resolve", key, domain.OutcomeMiss)
	return domain.Resolution{}, false
}

// FetchDetail devolve o detalhe completo de um imóvel: memória, espelho
// durável (repovoando a memória sem renovar o TTL), e por fim o provedor.
// Registro parcial (sem coordenadas ou endereço) não é cacheado nem
// retornado.
func (o *Orchestrator) FetchDetail(ctx context.Context, id string) (domain.PropertyDetail, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.PropertyDetail{}, false
	}

	if ent, ok := o.cache.Get(domain.BucketDetail, id, o.cfg.TTLDetail); ok {
		if d, ok := ent.Value.(domain.PropertyDetail); ok {
			o.record(ctx, "detail", id, domain.OutcomeCacheHit)
			return d, true
		}
	}

	if o.durable != nil {
		if ent, ok := o.durable.Get(id, o.cfg.TTLDetail); ok {
			if d, ok := ent.Value.(domain.PropertyDetail); ok {
				o.cache.SetEntry(domain.BucketDetail, id, ent)
				o.record(ctx, "detail", id, domain.OutcomeDurable)
				return d, true
			}
		}
	}

	raw, ok := o.callSearch(ctx, "detail", id, func() (json.RawMessage, error) {
		return o.provider.DetailByID(ctx, id)
	})
	if !ok {
		return domain.PropertyDetail{}, false
	}

	d, ok := domain.DetailFrom(raw)
	if !ok {
		o.record(ctx, "detail", id, domain.OutcomeMiss)
		return domain.PropertyDetail{}, false
	}
	if d.ID == "" {
		d.ID = id
	}

	ent := domain.CacheEntry{Value: d, StoredAt: time.Now()}
	o.cache.SetEntry(domain.BucketDetail, id, ent)
	if o.durable != nil {
		// gravação síncrona em disco, mas fora de qualquer lock do cache
		o.durable.Put(id, ent)
	}
	o.record(ctx, "detail", id, domain.OutcomeUpstream)
	return d, true
}

// Occupancy conta as entradas físicas por bucket, ignorando TTL.
func (o *Orchestrator) Occupancy() map[string]int {
	out := make(map[string]int, 3)
	for _, b := range domain.Buckets() {
		out[b] = o.cache.Len(b)
	}
	return out
}

// ClearBucket esvazia um bucket (e o espelho durável, quando for o de
// detalhes). Bucket vazio esvazia tudo. Retorna false para bucket
// desconhecido.
func (o *Orchestrator) ClearBucket(bucket string) bool {
	switch bucket {
	case "":
		o.cache.Clear()
		if o.durable != nil {
			o.durable.Clear()
		}
	case domain.BucketListings, domain.BucketQuery:
		o.cache.Clear(bucket)
	case domain.BucketDetail:
		o.cache.Clear(bucket)
		if o.durable != nil {
			o.durable.Clear()
		}
	default:
		return false
	}
	return true
}

// callSearch emite uma chamada de saída pelo limiter e aplica a taxonomia
// de falhas: throttling alimenta o backoff, qualquer outra falha degrada
// para ausência. ok=false nunca carrega erro para cima.
func (o *Orchestrator) callSearch(ctx context.Context, op, key string, call func() (json.RawMessage, error)) (json.RawMessage, bool) {
	if err := o.limiter.Acquire(ctx); err != nil {
		return nil, false
	}
	raw, err := call()
	if err != nil {
		if errors.Is(err, domain.ErrThrottled) {
			o.limiter.ReportThrottled()
			o.record(ctx, op, key, domain.OutcomeThrottled)
		} else {
			o.record(ctx, op, key, domain.OutcomeMiss)
		}
		return nil, false
	}
	o.limiter.ReportSuccess()
	return raw, true
}

func (o *Orchestrator) record(ctx context.Context, op, key, outcome string) {
	if o.stats == nil {
		return
	}
	_ = o.stats.Record(ctx, domain.FetchEvent{Op: op, Key: key, Outcome: outcome, At: time.Now()})
}

// matchAddress tenta casar a consulta com os endereços do payload
// estendido: primeiro substring normalizada nos dois sentidos, depois
// ranking fuzzy (melhor score vence).
func matchAddress(query string, recs []map[string]any) (domain.Resolution, bool) {
	type candidate struct {
		res  domain.Resolution
		addr string
	}
	cands := make([]candidate, 0, len(recs))
	addrs := make([]string, 0, len(recs))
	for _, rec := range recs {
		res, ok := domain.ResolutionFrom(rec)
		if !ok {
			continue
		}
		addr := domain.NormalizeKey(res.Address)
		if addr == "" {
			continue
		}
		cands = append(cands, candidate{res: res, addr: addr})
		addrs = append(addrs, addr)
	}

	for _, c := range cands {
		if strings.Contains(c.addr, query) || strings.Contains(query, c.addr) {
			return c.res, true
		}
	}

	if matches := fuzzy.Find(query, addrs); len(matches) > 0 {
		return cands[matches[0].Index].res, true
	}
	return domain.Resolution{}, false
}
