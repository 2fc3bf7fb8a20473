// Package config provides configuration persistence for the system.
//
// Store persists and reloads the desired set of subscriptions across
// restarts. This is control-plane state, not data-plane state: it
// records which filter expressions should exist, not the compiled
// decision tree those expressions get threaded into, which is always
// rebuilt in memory from this declarative state.
//
// Store does not:
//   - Evaluate expressions
//   - Compile queries
//   - Watch for live changes (v1 is load-on-start only)
package config

import "context"

// Store persists and loads subscription declarations with granular CRUD
// operations.
//
// Store is not accessed on the publish hot path. Persistence must not
// block evaluation.
//
// Validation: Store does not validate expression syntax. It only ensures
// the data can be serialized/deserialized. Semantic validation (does the
// expression parse) is the responsibility of the component that consumes
// the config — subscription.Registry at load time.
type Store interface {
	// Load reads the full configuration. Returns nil if nothing exists
	// (bootstrap signal).
	Load(ctx context.Context) (*Config, error)

	GetSubscription(ctx context.Context, id string) (*SubscriptionConfig, error)
	ListSubscriptions(ctx context.Context) (map[string]SubscriptionConfig, error)
	PutSubscription(ctx context.Context, id string, cfg SubscriptionConfig) error
	DeleteSubscription(ctx context.Context, id string) error
}

// Config describes the desired system shape. It is declarative: it
// defines what should exist, not how to create it.
type Config struct {
	Subscriptions map[string]SubscriptionConfig `json:"subscriptions,omitempty"`
}

// SubscriptionConfig declares one subscriber's filter expression.
type SubscriptionConfig struct {
	// Expression is the raw filter text, parsed by tagquery.Parse when
	// the subscription is loaded into a subscription.Registry.
	Expression string `json:"expression"`
}
