// Package listings fornece os adapters HTTP (net/http) do núcleo de
// listagens de imóveis.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos (cache, limiter, provedor, geocoder)
//   - application: casos de uso (orquestração de busca, debounce de refresh)
//   - infra: implementações concretas (cache TTL, espelho em disco, limiter
//     com cooldown, clientes HTTP, stats Redis/memória)
//   - listings (este pacote): handlers JSON + limite de concorrência inbound
//
// Fluxo de um refresh do mapa:
//
//  1. Cliente manda o viewport (bounds + zoom)
//  2. Debouncer decide admitir ou suprimir (suprimido → lista vazia)
//  3. Centro do viewport vira localização via geocoder (ausente → default)
//  4. Orquestrador consulta caches, emite no máximo uma chamada de upstream
//     pelo limiter e devolve o conjunto fundido/deduplicado
//
// Variáveis de ambiente do binário (cmd/server) controlam o comportamento,
// como MIN_REQUEST_INTERVAL, TTL_LISTINGS, CACHE_DIR e DEBOUNCE_MIN_DELTA.
package listings
