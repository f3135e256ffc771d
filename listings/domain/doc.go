// Package domain define contratos e tipos de domínio do núcleo de listagens:
// entradas de cache, limiter do provedor, cliente de busca, geocoder e stats.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar as regras de
// cache/rate-limit dos detalhes de infraestrutura.
package domain
