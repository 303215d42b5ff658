package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMemoryStoreLoadMissingReturnsEmptyCart(t *testing.T) {
	s := NewMemoryStore()
	c, err := s.Load(context.Background(), 42)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c == nil || c.SessionTypeID != 0 || len(c.Items) != 0 {
		t.Fatalf("expected fresh empty cart, got %+v", c)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	c := New()
	c.SelectSessionType(1)
	_ = c.Add(5, "Adult Admission", decimal.RequireFromString("10.00"), 2)
	if err := s.Save(ctx, 42, c); err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := s.Load(ctx, 42)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if back.SessionTypeID != 1 || back.Items["5"].Quantity != 2 {
		t.Fatalf("round trip lost data: %+v", back)
	}
}

func TestMemoryStoreDoesNotAliasCarts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	c := New()
	c.SelectSessionType(1)
	_ = c.Add(5, "Adult Admission", decimal.RequireFromString("10.00"), 1)
	if err := s.Save(ctx, 42, c); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the caller's cart after save must not leak into the store.
	c.Clear()
	back, err := s.Load(ctx, 42)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(back.Items) != 1 {
		t.Fatalf("stored cart aliased caller state: %+v", back)
	}

	// Mutating a loaded cart must not leak back either.
	back.Clear()
	again, err := s.Load(ctx, 42)
	if err != nil {
		t.Fatalf("load again: %v", err)
	}
	if len(again.Items) != 1 {
		t.Fatalf("loaded cart aliased stored state: %+v", again)
	}
}
