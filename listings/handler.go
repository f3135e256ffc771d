package listings

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mapa-imoveis/listings/application"
	"mapa-imoveis/listings/domain"
)

// Handler traduz HTTP ↔ casos de uso. Falha de upstream nunca vira 5xx
// aqui: o orquestrador já degradou para "menos resultados".
type Handler struct {
	Orchestrator *application.Orchestrator
	Debouncer    *application.Debouncer
	Geocoder     domain.Geocoder
	// DefaultLocation é a política explícita para geocodificação ausente.
	DefaultLocation string
}

// Routes monta o mux da API JSON.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/listings", h.listings)
	mux.HandleFunc("POST /api/refresh", h.refresh)
	mux.HandleFunc("GET /api/property", h.property)
	mux.HandleFunc("GET /api/geocode", h.geocode)
	mux.HandleFunc("GET /api/cache/stats", h.cacheStats)
	mux.HandleFunc("DELETE /api/cache", h.cacheClear)
	return mux
}

// GET /api/listings?location=...&sw_lat=&sw_lng=&ne_lat=&ne_lng=
func (h *Handler) listings(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		location = h.DefaultLocation
	}

	bounds, ok := boundsFromQuery(r)
	if !ok {
		http.Error(w, "bounds require sw_lat, sw_lng, ne_lat and ne_lng", http.StatusBadRequest)
		return
	}

	writeJSON(w, h.Orchestrator.FetchListings(r.Context(), location, bounds))
}

type refreshRequest struct {
	SWLat float64 `json:"sw_lat"`
	SWLng float64 `json:"sw_lng"`
	NELat float64 `json:"ne_lat"`
	NELng float64 `json:"ne_lng"`
	Zoom  int     `json:"zoom"`
}

// POST /api/refresh, disparado a cada pan/zoom do mapa. Pedido suprimido
// pelo debounce responde lista vazia com 200: supressão é intencional,
// não falha.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	bounds := domain.Bounds{SWLat: req.SWLat, SWLng: req.SWLng, NELat: req.NELat, NELng: req.NELng}
	center := bounds.Center()

	if h.Debouncer != nil && !h.Debouncer.Admit(center, req.Zoom) {
		writeJSON(w, []domain.Listing{})
		return
	}

	location := h.DefaultLocation
	if h.Geocoder != nil {
		if place, ok := h.Geocoder.Reverse(r.Context(), center.Lat, center.Lng); ok {
			location = place.Location
		}
	}

	writeJSON(w, h.Orchestrator.FetchListings(r.Context(), location, &bounds))
}

// GET /api/property?q=<texto livre> ou ?id=<identificador do provedor>
func (h *Handler) property(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		q := r.URL.Query().Get("q")
		if q == "" {
			http.Error(w, "q or id is required", http.StatusBadRequest)
			return
		}
		res, ok := h.Orchestrator.ResolveIdentifier(r.Context(), q)
		if !ok {
			http.Error(w, "property not found", http.StatusNotFound)
			return
		}
		id = res.ProviderID
	}

	detail, ok := h.Orchestrator.FetchDetail(r.Context(), id)
	if !ok {
		http.Error(w, "property not found", http.StatusNotFound)
		return
	}
	writeJSON(w, detail)
}

// GET /api/geocode?q= serve a busca do mapa (coordenadas + sugestão de zoom).
func (h *Handler) geocode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}
	if h.Geocoder == nil {
		http.Error(w, "geocoding unavailable", http.StatusNotFound)
		return
	}
	place, ok := h.Geocoder.Forward(r.Context(), q)
	if !ok {
		http.Error(w, "no match", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"location": place.Location,
		"lat":      place.Lat,
		"lng":      place.Lng,
		"zoom":     place.Zoom,
	})
}

// GET /api/cache/stats: ocupação física por bucket, ignorando TTL.
func (h *Handler) cacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Orchestrator.Occupancy())
}

// DELETE /api/cache?bucket= esvazia um bucket (e o espelho durável no
// caso do de detalhes); sem bucket, esvazia todos.
func (h *Handler) cacheClear(w http.ResponseWriter, r *http.Request) {
	bucket := r.URL.Query().Get("bucket")
	if !h.Orchestrator.ClearBucket(bucket) {
		http.Error(w, "unknown bucket", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// boundsFromQuery monta o bounds quando os quatro cantos vieram; nenhum
// parâmetro presente é válido (sem filtro). Parcial é erro do cliente.
func boundsFromQuery(r *http.Request) (*domain.Bounds, bool) {
	q := r.URL.Query()
	keys := []string{"sw_lat", "sw_lng", "ne_lat", "ne_lng"}

	present := 0
	vals := make([]float64, len(keys))
	for i, k := range keys {
		raw := q.Get(k)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, false
		}
		vals[i] = f
		present++
	}
	switch present {
	case 0:
		return nil, true
	case len(keys):
		return &domain.Bounds{SWLat: vals[0], SWLng: vals[1], NELat: vals[2], NELng: vals[3]}, true
	default:
		return nil, false
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
