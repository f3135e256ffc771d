package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Normalização de payloads heterogêneos do provedor.
//
// Cada campo lógico tem uma lista ordenada de nomes candidatos; vale o
// primeiro presente e não-vazio. Isso é mapeamento de dados puro e não
// vaza para a lógica de cache/rate-limit.

// NormalizeKey reduz um texto livre (localização, endereço, consulta) à
// forma canônica de chave de cache: minúsculas, espaços colapsados.
func NormalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

var (
	latKeys      = []string{"latitude", "lat"}
	lngKeys      = []string{"longitude", "lng", "lon"}
	priceKeys    = []string{"price", "unformattedPrice", "zestimate"}
	bedKeys      = []string{"bedrooms", "beds"}
	bathKeys     = []string{"bathrooms", "baths"}
	imgKeys      = []string{"imgSrc", "imageUrl", "hiResImageLink"}
	linkKeys     = []string{"detailUrl", "url", "hdpUrl"}
	lastSoldKeys = []string{"lastSoldPrice", "dateSoldPrice", "lastSoldAmount"}
	idKeys       = []string{"zpid", "id", "providerId"}
	recordsKeys  = []string{"props", "results", "searchResults"}
)

// Records extrai a lista de registros crus de um payload de busca.
// Aceita tanto um array no topo quanto um objeto com a lista sob um dos
// nomes candidatos. Payload indecifrável vira lista vazia.
func Records(payload json.RawMessage) []map[string]any {
	if len(payload) == 0 {
		return nil
	}

	var arr []map[string]any
	if err := json.Unmarshal(payload, &arr); err == nil {
		return arr
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil
	}
	for _, k := range recordsKeys {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &arr); err == nil {
			return arr
		}
	}
	return nil
}

// ListingFrom normaliza um registro cru. Coordenadas são obrigatórias;
// os demais campos ficam com o que der para extrair.
func ListingFrom(rec map[string]any) (Listing, bool) {
	lat, okLat := fieldNumber(rec, latKeys...)
	lng, okLng := fieldNumber(rec, lngKeys...)
	if !okLat || !okLng {
		return Listing{}, false
	}

	price, _ := fieldNumber(rec, priceKeys...)
	beds, _ := fieldNumber(rec, bedKeys...)
	baths, _ := fieldNumber(rec, bathKeys...)
	sold, _ := fieldNumber(rec, lastSoldKeys...)

	return Listing{
		Lat:       lat,
		Lon:       lng,
		Address:   addressOf(rec),
		Price:     price,
		Bedrooms:  beds,
		Bathrooms: baths,
		ImageURL:  fieldString(rec, imgKeys...),
		DetailURL: fieldString(rec, linkKeys...),
		LastSold:  sold,
	}, true
}

// DetailFrom normaliza o payload do endpoint de detalhe. Sem coordenadas
// ou endereço o registro é descartado: o consumidor precisa plotar no mapa.
func DetailFrom(payload json.RawMessage) (PropertyDetail, bool) {
	var rec map[string]any
	if err := json.Unmarshal(payload, &rec); err != nil {
		return PropertyDetail{}, false
	}

	lat, okLat := fieldNumber(rec, latKeys...)
	lng, okLng := fieldNumber(rec, lngKeys...)
	if !okLat || !okLng {
		// alguns payloads aninham as coordenadas
		if nested, ok := rec["latLong"].(map[string]any); ok {
			lat, okLat = fieldNumber(nested, latKeys...)
			lng, okLng = fieldNumber(nested, lngKeys...)
		}
	}
	addr := addressOf(rec)
	if !okLat || !okLng || addr == "" {
		return PropertyDetail{}, false
	}

	price, _ := fieldNumber(rec, priceKeys...)
	beds, _ := fieldNumber(rec, bedKeys...)
	baths, _ := fieldNumber(rec, bathKeys...)
	sold, _ := fieldNumber(rec, lastSoldKeys...)

	return PropertyDetail{
		ID:          IDOf(rec),
		Lat:         lat,
		Lon:         lng,
		Address:     addr,
		Price:       price,
		Bedrooms:    beds,
		Bathrooms:   baths,
		ImageURL:    fieldString(rec, imgKeys...),
		DetailURL:   fieldString(rec, linkKeys...),
		LastSold:    sold,
		Description: fieldString(rec, "description"),
	}, true
}

// ResolutionFrom extrai identificador e endereço resolvido de um registro
// de busca. Sem identificador não há resolução.
func ResolutionFrom(rec map[string]any) (Resolution, bool) {
	id := IDOf(rec)
	if id == "" {
		return Resolution{}, false
	}
	return Resolution{ProviderID: id, Address: addressOf(rec)}, true
}

// AddressOf expõe a extração de endereço para quem monta candidatos de
// casamento fuzzy.
func AddressOf(rec map[string]any) string {
	return addressOf(rec)
}

// IDOf extrai o identificador do provedor como string. IDs numéricos
// inteiros são formatados sem casa decimal.
func IDOf(rec map[string]any) string {
	for _, k := range idKeys {
		switch v := rec[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// addressOf aceita endereço como string direta ou como objeto com as
// partes separadas.
func addressOf(rec map[string]any) string {
	switch v := rec["address"].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case map[string]any:
		parts := make([]string, 0, 4)
		for _, k := range []string{"streetAddress", "city", "state", "zipcode"} {
			if s, ok := v[k].(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	return fieldString(rec, "streetAddress", "abbreviatedAddress")
}

func fieldString(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// fieldNumber aceita números nativos e strings de moeda ("$315,000").
func fieldNumber(rec map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := rec[k].(type) {
		case float64:
			return v, true
		case string:
			if f, ok := parseCurrency(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func parseCurrency(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
