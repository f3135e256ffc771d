package infra

import (
	"testing"
	"time"

	"mapa-imoveis/listings/domain"
)

func TestMemStore_GetWithinTTL(t *testing.T) {
	s := NewMemStore()
	s.Set(domain.BucketListings, "tampa, fl", "payload")

	ent, ok := s.Get(domain.BucketListings, "tampa, fl", time.Minute)
	if !ok {
		t.Fatalf("expected hit within ttl")
	}
	if ent.Value != "payload" {
		t.Fatalf("unexpected value: %v", ent.Value)
	}
}

func TestMemStore_ExpiredEntryIsAbsentAndPurged(t *testing.T) {
	now := time.Now()
	s := NewMemStore(WithClock(func() time.Time { return now }))

	s.Set(domain.BucketListings, "k", "v")
	// avança o relógio para logo além do TTL
	now = now.Add(time.Minute + time.Millisecond)

	if _, ok := s.Get(domain.BucketListings, "k", time.Minute); ok {
		t.Fatalf("expected entry past ttl to be absent")
	}
	if n := s.Len(domain.BucketListings); n != 0 {
		t.Fatalf("expected expired entry to be purged on read, len=%d", n)
	}
}

func TestMemStore_ZeroTTLIsPassThrough(t *testing.T) {
	s := NewMemStore()
	s.Set(domain.BucketQuery, "k", "v")

	if _, ok := s.Get(domain.BucketQuery, "k", 0); ok {
		t.Fatalf("expected zero ttl to expire everything")
	}
	s.Set(domain.BucketQuery, "k", "v")
	if _, ok := s.Get(domain.BucketQuery, "k", -time.Second); ok {
		t.Fatalf("expected negative ttl to expire everything")
	}
}

func TestMemStore_SetOverwritesWithFreshTimestamp(t *testing.T) {
	now := time.Now()
	s := NewMemStore(WithClock(func() time.Time { return now }))

	s.Set(domain.BucketDetail, "id", "old")
	now = now.Add(2 * time.Minute)
	s.Set(domain.BucketDetail, "id", "new")

	ent, ok := s.Get(domain.BucketDetail, "id", time.Minute)
	if !ok {
		t.Fatalf("expected rewritten entry to be live")
	}
	if ent.Value != "new" {
		t.Fatalf("expected overwrite, got %v", ent.Value)
	}
}

func TestMemStore_SetEntryPreservesStoredAt(t *testing.T) {
	s := NewMemStore()
	storedAt := time.Now().Add(-45 * time.Minute)
	s.SetEntry(domain.BucketDetail, "id", domain.CacheEntry{Value: "v", StoredAt: storedAt})

	// TTL de 30min: a entrada reidratada já nasce expirada
	if _, ok := s.Get(domain.BucketDetail, "id", 30*time.Minute); ok {
		t.Fatalf("expected rehydrated entry to honor original storedAt")
	}
}

func TestMemStore_BucketsAreIndependent(t *testing.T) {
	s := NewMemStore()
	s.Set(domain.BucketListings, "k", "a")
	s.Set(domain.BucketQuery, "k", "b")

	ent, ok := s.Get(domain.BucketQuery, "k", time.Minute)
	if !ok || ent.Value != "b" {
		t.Fatalf("expected bucket-scoped value, got %v ok=%v", ent.Value, ok)
	}
}

func TestMemStore_ClearSelectedAndAll(t *testing.T) {
	s := NewMemStore()
	s.Set(domain.BucketListings, "a", 1)
	s.Set(domain.BucketQuery, "b", 2)
	s.Set(domain.BucketDetail, "c", 3)

	s.Clear(domain.BucketListings)
	if s.Len(domain.BucketListings) != 0 {
		t.Fatalf("expected listings bucket to be empty")
	}
	if s.Len(domain.BucketQuery) != 1 || s.Len(domain.BucketDetail) != 1 {
		t.Fatalf("expected other buckets untouched")
	}

	s.Clear()
	for _, b := range domain.Buckets() {
		if s.Len(b) != 0 {
			t.Fatalf("expected bucket %s empty after full clear", b)
		}
	}
}

func TestMemStore_ConcurrentAccess(t *testing.T) {
	s := NewMemStore()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 200; j++ {
				s.Set(domain.BucketListings, "shared", j)
				s.Get(domain.BucketListings, "shared", time.Minute)
				s.Entries(domain.BucketListings)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	if _, ok := s.Get(domain.BucketListings, "shared", time.Minute); !ok {
		t.Fatalf("expected entry to survive concurrent churn")
	}
}
