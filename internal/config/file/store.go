// Package file provides a file-based config.Store implementation.
//
// Configuration is persisted as a versioned JSON envelope:
//
//	{"version": 1, "config": { ... }}
//
// All mutations (Put/Delete) load the full file, mutate in memory, and
// atomically flush the entire file. This is the nature of JSON — every
// mutation rewrites the file.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tagindex/internal/config"
)

const currentVersion = 1

// envelope is the versioned on-disk format.
type envelope struct {
	Version int            `json:"version"`
	Config  *config.Config `json:"config"`
}

// Store is a file-based config.Store implementation. Configuration is
// persisted as JSON for human readability. Writes are atomic via temp
// file + rename with round-trip validation.
type Store struct {
	path string
}

var _ config.Store = (*Store)(nil)

// NewStore creates a new file-based Store backed by the JSON file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the full configuration from disk. Returns nil if the file
// does not exist.
func (s *Store) Load(ctx context.Context) (*config.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.load()
}

func (s *Store) load() (*config.Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config/file: read config file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("config/file: parse config file: %w", err)
	}

	if env.Version == 0 {
		return nil, fmt.Errorf("config/file: unversioned config file detected; delete %s and restart to bootstrap a fresh config", s.path)
	}
	if env.Version > currentVersion {
		return nil, fmt.Errorf("config/file: config file version %d is newer than supported version %d", env.Version, currentVersion)
	}

	if env.Config == nil {
		return nil, nil
	}
	return env.Config, nil
}

func (s *Store) loadOrEmpty() (*config.Config, error) {
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	if cfg.Subscriptions == nil {
		cfg.Subscriptions = make(map[string]config.SubscriptionConfig)
	}
	return cfg, nil
}

// flush atomically writes cfg to disk with round-trip validation.
func (s *Store) flush(cfg *config.Config) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("config/file: create config directory: %w", err)
	}

	env := envelope{Version: currentVersion, Config: cfg}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("config/file: marshal config: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("config/file: write temp file: %w", err)
	}

	check, err := os.ReadFile(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("config/file: read-back temp file: %w", err)
	}
	var verify envelope
	if err := json.Unmarshal(check, &verify); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("config/file: round-trip validation failed: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("config/file: rename config file: %w", err)
	}
	return nil
}

// GetSubscription returns the subscription with id, or nil if absent.
func (s *Store) GetSubscription(ctx context.Context, id string) (*config.SubscriptionConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, nil
	}
	sc, ok := cfg.Subscriptions[id]
	if !ok {
		return nil, nil
	}
	return &sc, nil
}

// ListSubscriptions returns every stored subscription.
func (s *Store) ListSubscriptions(ctx context.Context) (map[string]config.SubscriptionConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, nil
	}
	return cfg.Subscriptions, nil
}

// PutSubscription upserts the subscription at id and flushes the file.
func (s *Store) PutSubscription(ctx context.Context, id string, sc config.SubscriptionConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("config/file: subscription id must not be empty")
	}
	cfg, err := s.loadOrEmpty()
	if err != nil {
		return err
	}
	cfg.Subscriptions[id] = sc
	return s.flush(cfg)
}

// DeleteSubscription removes the subscription at id, if present, and
// flushes the file.
func (s *Store) DeleteSubscription(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg, err := s.loadOrEmpty()
	if err != nil {
		return err
	}
	delete(cfg.Subscriptions, id)
	return s.flush(cfg)
}
