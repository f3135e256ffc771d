package domain

import "context"

// Place é o resultado de uma geocodificação. A variante ausente é explícita
// (ok=false nos métodos do Geocoder); a política de "localização padrão"
// fica na borda do orquestrador, nunca escondida aqui dentro.
type Place struct {
	Location string  // texto administrativo ("tampa, fl")
	Lat      float64
	Lng      float64
	Zoom     int // sugestão de zoom para o mapa; 0 = sem sugestão
}

// Geocoder converte coordenadas em localização administrativa e vice-versa.
// Falhas de rede/timeout viram ok=false, não erro.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (Place, bool)
	Forward(ctx context.Context, query string) (Place, bool)
}
