// Package application contém os casos de uso do núcleo: orquestração de
// busca com cache multi-camada e limiter, e o debounce de refresh do mapa.
//
// Nada aqui conhece net/http. Toda falha de upstream é absorvida na borda:
// quem chama só enxerga "menos resultados ou nenhum", nunca um erro fatal.
package application
