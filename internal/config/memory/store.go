// Package memory provides an in-memory config.Store implementation.
package memory

import (
	"context"
	"fmt"
	"sync"

	"tagindex/internal/config"
)

// Store is an in-memory config.Store implementation. Intended for
// testing and for processes that don't need configuration to survive a
// restart. Configuration is not persisted.
type Store struct {
	mu            sync.RWMutex
	subscriptions map[string]config.SubscriptionConfig
	bootstrapped  bool
}

// NewStore creates a new in-memory Store.
func NewStore() *Store {
	return &Store{}
}

// Load returns the full configuration, or nil if nothing has been
// written yet (the bootstrap signal).
func (s *Store) Load(ctx context.Context) (*config.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.bootstrapped {
		return nil, nil
	}
	return &config.Config{Subscriptions: copySubscriptions(s.subscriptions)}, nil
}

// GetSubscription returns the subscription with id, or nil if absent.
func (s *Store) GetSubscription(ctx context.Context, id string) (*config.SubscriptionConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.subscriptions[id]
	if !ok {
		return nil, nil
	}
	return &sc, nil
}

// ListSubscriptions returns a copy of every stored subscription.
func (s *Store) ListSubscriptions(ctx context.Context) (map[string]config.SubscriptionConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySubscriptions(s.subscriptions), nil
}

// PutSubscription upserts the subscription at id.
func (s *Store) PutSubscription(ctx context.Context, id string, cfg config.SubscriptionConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("config/memory: subscription id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscriptions == nil {
		s.subscriptions = make(map[string]config.SubscriptionConfig)
	}
	s.subscriptions[id] = cfg
	s.bootstrapped = true
	return nil
}

// DeleteSubscription removes the subscription at id, if present.
func (s *Store) DeleteSubscription(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscriptions, id)
	return nil
}

func copySubscriptions(m map[string]config.SubscriptionConfig) map[string]config.SubscriptionConfig {
	out := make(map[string]config.SubscriptionConfig, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
