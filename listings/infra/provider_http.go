package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"mapa-imoveis/listings/domain"
)

// ProviderClient fala com o provedor de anúncios (API estilo RapidAPI:
// chave e host vão em headers, resposta é JSON).
//
// Os métodos devolvem o corpo cru; 429 vira domain.ErrThrottled para o
// orquestrador reportar ao limiter. Timeout fica no http.Client; uma
// chamada estourada é falha comum.
type ProviderClient struct {
	baseURL string
	apiKey  string
	host    string
	client  *http.Client
}

type ProviderOption func(*ProviderClient)

// WithProviderHTTPClient troca o cliente HTTP (testes).
func WithProviderHTTPClient(c *http.Client) ProviderOption {
	return func(p *ProviderClient) { p.client = c }
}

func NewProviderClient(baseURL, apiKey, host string, timeout time.Duration, opts ...ProviderOption) *ProviderClient {
	p := &ProviderClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		host:    host,
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SearchByLocation é a busca estendida por localização.
func (p *ProviderClient) SearchByLocation(ctx context.Context, location string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("location", location)
	q.Set("status_type", "ForSale")
	q.Set("home_type", "Houses")
	q.Set("limit", "500")
	return p.get(ctx, "/propertyExtendedSearch", q)
}

// SearchByQuery é a busca estrita por texto livre.
func (p *ProviderClient) SearchByQuery(ctx context.Context, query string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("query", query)
	return p.get(ctx, "/search", q)
}

// DetailByID busca o detalhe completo de um imóvel.
func (p *ProviderClient) DetailByID(ctx context.Context, id string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("zpid", id)
	return p.get(ctx, "/property", q)
}

func (p *ProviderClient) get(ctx context.Context, path string, q url.Values) (json.RawMessage, error) {
	u := p.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", p.apiKey)
	req.Header.Set("X-RapidAPI-Host", p.host)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, domain.ErrThrottled
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider: %s returned %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}
