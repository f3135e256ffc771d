package domain

// Tipos de saída do núcleo: registros prontos para plotar no mapa.

// LatLng é um par de coordenadas em graus.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds é a caixa delimitadora do viewport (sudoeste/nordeste).
// O teste de pertencimento é inclusivo nas bordas.
type Bounds struct {
	SWLat float64 `json:"sw_lat"`
	SWLng float64 `json:"sw_lng"`
	NELat float64 `json:"ne_lat"`
	NELng float64 `json:"ne_lng"`
}

// Contains diz se o ponto cai dentro da caixa (bordas incluídas).
func (b Bounds) Contains(lat, lng float64) bool {
	return b.SWLat <= lat && lat <= b.NELat && b.SWLng <= lng && lng <= b.NELng
}

// Center retorna o centro geométrico da caixa.
func (b Bounds) Center() LatLng {
	return LatLng{Lat: (b.SWLat + b.NELat) / 2, Lng: (b.SWLng + b.NELng) / 2}
}

// Listing é o registro normalizado de um anúncio, deduplicado por endereço
// dentro de uma mesma busca. Campos ausentes no payload do provedor ficam
// com o zero value.
type Listing struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Address   string  `json:"address"`
	Price     float64 `json:"price"`
	Bedrooms  float64 `json:"bedrooms"`
	Bathrooms float64 `json:"bathrooms"`
	ImageURL  string  `json:"img_url"`
	DetailURL string  `json:"detail_url"`
	LastSold  float64 `json:"last_sold"`
}

// PropertyDetail é o registro completo de um imóvel, obtido do endpoint de
// detalhe. Coordenadas e endereço são obrigatórios: um registro sem eles
// nunca é cacheado nem retornado.
type PropertyDetail struct {
	ID          string  `json:"id"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Address     string  `json:"address"`
	Price       float64 `json:"price"`
	Bedrooms    float64 `json:"bedrooms"`
	Bathrooms   float64 `json:"bathrooms"`
	ImageURL    string  `json:"img_url"`
	DetailURL   string  `json:"detail_url"`
	LastSold    float64 `json:"last_sold"`
	Description string  `json:"description,omitempty"`
}

// AsListing projeta o detalhe no formato de listagem do mapa.
func (d PropertyDetail) AsListing() Listing {
	return Listing{
		Lat:       d.Lat,
		Lon:       d.Lon,
		Address:   d.Address,
		Price:     d.Price,
		Bedrooms:  d.Bedrooms,
		Bathrooms: d.Bathrooms,
		ImageURL:  d.ImageURL,
		DetailURL: d.DetailURL,
		LastSold:  d.LastSold,
	}
}

// Resolution é o resultado de resolver um texto livre (endereço/cidade)
// para o identificador do provedor.
type Resolution struct {
	ProviderID string `json:"provider_id"`
	Address    string `json:"address"`
}
