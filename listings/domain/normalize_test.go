package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeKey_CollapsesCaseAndWhitespace(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Tampa, FL", "tampa, fl"},
		{"  33602 ", "33602"},
		{"SAINT  PETERSBURG\tFL", "saint petersburg fl"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeKey(c.in); got != c.want {
			t.Fatalf("NormalizeKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRecords_AcceptsObjectAndArrayShapes(t *testing.T) {
	obj := json.RawMessage(`{"props":[{"zpid":1},{"zpid":2}]}`)
	if got := len(Records(obj)); got != 2 {
		t.Fatalf("expected 2 records from props object, got %d", got)
	}

	alt := json.RawMessage(`{"results":[{"zpid":3}]}`)
	if got := len(Records(alt)); got != 1 {
		t.Fatalf("expected 1 record from results object, got %d", got)
	}

	arr := json.RawMessage(`[{"zpid":4}]`)
	if got := len(Records(arr)); got != 1 {
		t.Fatalf("expected 1 record from bare array, got %d", got)
	}

	if got := Records(json.RawMessage(`not json`)); got != nil {
		t.Fatalf("expected nil for garbage payload, got %v", got)
	}
	if got := Records(nil); got != nil {
		t.Fatalf("expected nil for empty payload, got %v", got)
	}
}

func TestListingFrom_RequiresCoordinates(t *testing.T) {
	rec := map[string]any{"address": "123 Main St", "price": 100000.0}
	if _, ok := ListingFrom(rec); ok {
		t.Fatalf("expected listing without coordinates to be dropped")
	}
}

func TestListingFrom_FieldCandidatesAndCurrency(t *testing.T) {
	rec := map[string]any{
		"latitude":      27.95,
		"longitude":     -82.45,
		"address":       "123 Main St, Tampa, FL 33602",
		"price":         "$315,000",
		"beds":          3.0,
		"bathrooms":     2.0,
		"imgSrc":        "https://img.example/1.jpg",
		"detailUrl":     "/homedetails/1",
		"lastSoldPrice": 280000.0,
	}
	got, ok := ListingFrom(rec)
	if !ok {
		t.Fatalf("expected listing to normalize")
	}
	want := Listing{
		Lat:       27.95,
		Lon:       -82.45,
		Address:   "123 Main St, Tampa, FL 33602",
		Price:     315000,
		Bedrooms:  3,
		Bathrooms: 2,
		ImageURL:  "https://img.example/1.jpg",
		DetailURL: "/homedetails/1",
		LastSold:  280000,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestDetailFrom_DropsPartialRecords(t *testing.T) {
	// sem coordenadas
	if _, ok := DetailFrom(json.RawMessage(`{"zpid":1,"address":"123 Main St"}`)); ok {
		t.Fatalf("expected detail without coordinates to be dropped")
	}
	// sem endereço
	if _, ok := DetailFrom(json.RawMessage(`{"zpid":1,"latitude":27.9,"longitude":-82.4}`)); ok {
		t.Fatalf("expected detail without address to be dropped")
	}
	// JSON quebrado
	if _, ok := DetailFrom(json.RawMessage(`{`)); ok {
		t.Fatalf("expected undecodable detail to be dropped")
	}
}

func TestDetailFrom_AddressObjectAndNestedCoords(t *testing.T) {
	payload := json.RawMessage(`{
		"zpid": 12345,
		"latLong": {"latitude": 27.95, "longitude": -82.45},
		"address": {"streetAddress": "123 Main St", "city": "Tampa", "state": "FL", "zipcode": "33602"},
		"price": 315000,
		"bedrooms": 3,
		"bathrooms": 2
	}`)
	got, ok := DetailFrom(payload)
	if !ok {
		t.Fatalf("expected detail to normalize")
	}
	if got.ID != "12345" {
		t.Fatalf("expected numeric zpid formatted as %q, got %q", "12345", got.ID)
	}
	if got.Address != "123 Main St, Tampa, FL, 33602" {
		t.Fatalf("unexpected address: %q", got.Address)
	}
	if got.Lat != 27.95 || got.Lon != -82.45 {
		t.Fatalf("unexpected coordinates: %v, %v", got.Lat, got.Lon)
	}
}

func TestBounds_ContainsIsInclusive(t *testing.T) {
	b := Bounds{SWLat: 27.9, SWLng: -82.5, NELat: 28.0, NELng: -82.4}
	if !b.Contains(27.9, -82.5) {
		t.Fatalf("expected SW corner to be inside")
	}
	if !b.Contains(28.0, -82.4) {
		t.Fatalf("expected NE corner to be inside")
	}
	if b.Contains(28.0001, -82.45) {
		t.Fatalf("expected point above NE lat to be outside")
	}
}

func TestResolutionFrom_RequiresID(t *testing.T) {
	if _, ok := ResolutionFrom(map[string]any{"address": "123 Main St"}); ok {
		t.Fatalf("expected record without id to yield no resolution")
	}
	res, ok := ResolutionFrom(map[string]any{"zpid": "987", "address": "9 Oak Ave"})
	if !ok || res.ProviderID != "987" || res.Address != "9 Oak Ave" {
		t.Fatalf("unexpected resolution: %+v ok=%v", res, ok)
	}
}
