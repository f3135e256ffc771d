package infra

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mapa-imoveis/listings/domain"
)

// GeocodeClient fala com um geocoder no formato do Nominatim (reverse e
// search com format=jsonv2).
//
// Falha de rede, status != 200 ou payload indecifrável viram ok=false;
// nenhuma localização padrão é inventada aqui; essa política pertence à
// borda do orquestrador.
type GeocodeClient struct {
	baseURL string
	client  *http.Client
}

type GeocodeOption func(*GeocodeClient)

func WithGeocodeHTTPClient(c *http.Client) GeocodeOption {
	return func(g *GeocodeClient) { g.client = c }
}

func NewGeocodeClient(baseURL string, timeout time.Duration, opts ...GeocodeOption) *GeocodeClient {
	g := &GeocodeClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type nominatimResult struct {
	Lat     string `json:"lat"`
	Lon     string `json:"lon"`
	Name    string `json:"display_name"`
	Rank    int    `json:"place_rank"`
	Address struct {
		City   string `json:"city"`
		Town   string `json:"town"`
		County string `json:"county"`
		State  string `json:"state"`
	} `json:"address"`
}

// Reverse converte coordenadas em texto administrativo ("tampa, florida").
func (g *GeocodeClient) Reverse(ctx context.Context, lat, lng float64) (domain.Place, bool) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("format", "jsonv2")

	body, ok := g.get(ctx, "/reverse", q)
	if !ok {
		return domain.Place{}, false
	}

	var res nominatimResult
	if err := json.Unmarshal(body, &res); err != nil {
		return domain.Place{}, false
	}
	loc := res.locality()
	if loc == "" {
		return domain.Place{}, false
	}
	return domain.Place{Location: loc, Lat: lat, Lng: lng}, true
}

// Forward converte texto livre em coordenadas e sugestão de zoom.
func (g *GeocodeClient) Forward(ctx context.Context, query string) (domain.Place, bool) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")

	body, ok := g.get(ctx, "/search", q)
	if !ok {
		return domain.Place{}, false
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil || len(results) == 0 {
		return domain.Place{}, false
	}
	res := results[0]
	lat, errLat := strconv.ParseFloat(res.Lat, 64)
	lng, errLng := strconv.ParseFloat(res.Lon, 64)
	if errLat != nil || errLng != nil {
		return domain.Place{}, false
	}

	return domain.Place{
		Location: res.locality(),
		Lat:      lat,
		Lng:      lng,
		Zoom:     zoomForRank(res.Rank),
	}, true
}

func (g *GeocodeClient) get(ctx context.Context, path string, q url.Values) ([]byte, bool) {
	u := g.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("geocode: %s: %v", path, err)
		return nil, false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Printf("geocode: %s returned %d", path, resp.StatusCode)
		return nil, false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false
	}
	return body, true
}

func (r nominatimResult) locality() string {
	parts := make([]string, 0, 2)
	switch {
	case r.Address.City != "":
		parts = append(parts, r.Address.City)
	case r.Address.Town != "":
		parts = append(parts, r.Address.Town)
	case r.Address.County != "":
		parts = append(parts, r.Address.County)
	}
	if r.Address.State != "" {
		parts = append(parts, r.Address.State)
	}
	if len(parts) > 0 {
		return strings.ToLower(strings.Join(parts, ", "))
	}
	return strings.ToLower(strings.TrimSpace(r.Name))
}

// zoomForRank aproxima o place_rank do Nominatim para zoom de mapa web.
func zoomForRank(rank int) int {
	switch {
	case rank <= 0:
		return 0
	case rank <= 8:
		return 6
	case rank <= 12:
		return 10
	case rank <= 16:
		return 12
	case rank <= 20:
		return 14
	default:
		return 16
	}
}
