package config

import "context"

// DefaultConfig returns the bootstrap configuration for first-run: a
// single catch-all subscription, so a freshly started publisher has at
// least one live subscriber to route to.
func DefaultConfig() *Config {
	return &Config{
		Subscriptions: map[string]SubscriptionConfig{
			"catch-all": {Expression: "has(name)"},
		},
	}
}

// Bootstrap writes the default configuration to a store using individual
// CRUD operations. Call this when Load returns nil (no config exists).
func Bootstrap(ctx context.Context, store Store) error {
	cfg := DefaultConfig()
	for id, sc := range cfg.Subscriptions {
		if err := store.PutSubscription(ctx, id, sc); err != nil {
			return err
		}
	}
	return nil
}
