package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tagindex/internal/config"
)

func TestStoreLoadNotExist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	s := NewStore(path)
	cfg, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Fatalf("expected nil config, got %+v", cfg)
	}
}

func TestStorePutGetListCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	s := NewStore(path)
	ctx := context.Background()

	if err := s.PutSubscription(ctx, "sub1", config.SubscriptionConfig{Expression: "env=prod"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file should exist: %v", err)
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

func TestStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	ctx := context.Background()

	s1 := NewStore(path)
	if err := s1.PutSubscription(ctx, "sub1", config.SubscriptionConfig{Expression: "env=prod"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	s2 := NewStore(path)
	got, err := s2.GetSubscription(ctx, "sub1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Expression != "env=prod" {
		t.Fatalf("got %+v, want a fresh Store instance to read back the same subscription", got)
	}
}

func TestStoreDelete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	ctx := context.Background()

	s := NewStore(path)
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

func TestStoreRejectsUnversionedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"subscriptions":{}}`), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	s := NewStore(path)
	if _, err := s.Load(context.Background()); err == nil {
		t.Fatal("expected an error loading an unversioned config file")
	}
}

func TestStoreRejectsFutureVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"version":99,"config":{}}`), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	s := NewStore(path)
	if _, err := s.Load(context.Background()); err == nil {
		t.Fatal("expected an error loading a config file from a newer version")
	}
}
