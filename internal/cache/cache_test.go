package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	m.Set(ctx, "k", []byte("payload"), time.Minute)
	got, ok := m.Get(ctx, "k")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got) != "payload" {
		t.Fatalf("unexpected payload: %q", got)
	}
}

func TestMemoryMiss(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	if _, ok := m.Get(context.Background(), "absent"); ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	m.Set(ctx, "k", []byte("payload"), 5*time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	if _, ok := m.Get(ctx, "k"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if m.Len() != 0 {
		t.Fatalf("expected expired entry evicted on lookup, have %d", m.Len())
	}
}

func TestMemoryIgnoresNonPositiveTTL(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	m.Set(context.Background(), "k", []byte("payload"), 0)
	if m.Len() != 0 {
		t.Fatal("expected zero-TTL set to be dropped")
	}
}
