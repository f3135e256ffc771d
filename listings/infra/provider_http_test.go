package infra

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mapa-imoveis/listings/domain"
)

func TestProviderClient_SendsKeyHeadersAndQuery(t *testing.T) {
	var gotPath, gotKey, gotHost, gotLocation string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-RapidAPI-Key")
		gotHost = r.Header.Get("X-RapidAPI-Host")
		gotLocation = r.URL.Query().Get("location")
		_, _ = w.Write([]byte(`{"props":[]}`))
	}))
	defer srv.Close()

	p := NewProviderClient(srv.URL, "secret", "provider.example", time.Second)
	raw, err := p.SearchByLocation(context.Background(), "tampa, fl")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("expected raw payload")
	}
	if gotPath != "/propertyExtendedSearch" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "secret" || gotHost != "provider.example" {
		t.Fatalf("expected api headers, got key=%q host=%q", gotKey, gotHost)
	}
	if gotLocation != "tampa, fl" {
		t.Fatalf("unexpected location param %q", gotLocation)
	}
}

func TestProviderClient_429BecomesErrThrottled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewProviderClient(srv.URL, "k", "h", time.Second)
	_, err := p.DetailByID(context.Background(), "12345")
	if !errors.Is(err, domain.ErrThrottled) {
		t.Fatalf("expected ErrThrottled, got %v", err)
	}
}

func TestProviderClient_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewProviderClient(srv.URL, "k", "h", time.Second)
	if _, err := p.SearchByQuery(context.Background(), "123 main st"); err == nil {
		t.Fatalf("expected error on 502")
	}
	if _, err := p.SearchByQuery(context.Background(), "123 main st"); errors.Is(err, domain.ErrThrottled) {
		t.Fatalf("expected plain error, not ErrThrottled")
	}
}

func TestProviderClient_TimeoutIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewProviderClient(srv.URL, "k", "h", 20*time.Millisecond)
	if _, err := p.DetailByID(context.Background(), "1"); err == nil {
		t.Fatalf("expected timeout error")
	}
}
