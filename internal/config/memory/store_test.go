package memory

import (
	"context"
	"testing"

	"tagindex/internal/config"
)

func TestStoreLoadEmpty(t *testing.T) {
	s := NewStore()
	cfg, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Fatalf("expected nil config, got %+v", cfg)
	}
}

func TestStorePutGetList(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.PutSubscription(ctx, "sub1", config.SubscriptionConfig{Expression: "env=prod"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.GetSubscription(ctx, "sub1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Expression != "env=prod" {
		t.Fatalf("got %+v, want Expression=env=prod", got)
	}

	all, err := s.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(all))
	}
}

func TestStoreGetMissingReturnsNil(t *testing.T) {
	s := NewStore()
	got, err := s.GetSubscription(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing id, got %+v", got)
	}
}

func TestStorePutEmptyIDFails(t *testing.T) {
	s := NewStore()
	if err := s.PutSubscription(context.Background(), "", config.SubscriptionConfig{}); err == nil {
		t.Fatal("expected an error for an empty id")
	}
}

func TestStoreDelete(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.PutSubscription(ctx, "sub1", config.SubscriptionConfig{Expression: "env=prod"})

	if err := s.DeleteSubscription(ctx, "sub1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := s.GetSubscription(ctx, "sub1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after delete, got %+v", got)
	}
}

func TestStoreIsolation(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.PutSubscription(ctx, "sub1", config.SubscriptionConfig{Expression: "env=prod"})

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded.Subscriptions["sub1"] = config.SubscriptionConfig{Expression: "mutated"}

	loaded2, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded2.Subscriptions["sub1"].Expression != "env=prod" {
		t.Errorf("mutation of a loaded snapshot leaked into the store: %+v", loaded2.Subscriptions["sub1"])
	}
}

func TestStoreLoadBeforeAnyPutIsNil(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	// Deleting before anything exists must not implicitly bootstrap the store.
	s.DeleteSubscription(ctx, "sub1")

	cfg, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != nil {
		t.Fatalf("expected nil config, got %+v", cfg)
	}
}

func TestStoreContextCancellation(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Load(ctx); err == nil {
		t.Error("expected Load to honor a cancelled context")
	}
	if err := s.PutSubscription(ctx, "sub1", config.SubscriptionConfig{}); err == nil {
		t.Error("expected PutSubscription to honor a cancelled context")
	}
}
