// Package infra contém as implementações concretas do núcleo: cache TTL em
// memória, espelho durável em disco, limiter com cooldown, clientes HTTP do
// provedor e do geocoder, e stores de estatística (Redis/memória).
package infra
