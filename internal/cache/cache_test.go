package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, ok := m.Get(ctx, "missing"); ok {
		t.Fatalf("unexpected hit on empty cache")
	}
	if err := m.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, ok := m.Get(ctx, "k")
	if !ok || string(data) != "v" {
		t.Fatalf("expected v, got %q ok=%v", data, ok)
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if err := m.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, ok := m.Get(ctx, "k"); ok {
		t.Fatalf("expired entry must miss")
	}
}

func TestAssessmentKey(t *testing.T) {
	if got := AssessmentKey("SD"); got != "riskwatch:assessment:SD" {
		t.Fatalf("unexpected key %q", got)
	}
}
