package subscription

import (
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"tagindex/internal/identity"
	"tagindex/internal/logging"
	"tagindex/internal/tagindex"
	"tagindex/internal/tagquery"
)

const queryCacheSize = 512

// Registry owns one tagindex.Index[ID] and the bookkeeping needed to
// unregister by ID (the index itself only ever sees compiled queries, so
// the registry keeps the raw expression each ID was registered with).
//
// Concurrency model: Register and Unregister are expected to be rare
// relative to Publish, so both take an exclusive lock over the
// subscriptions map; the index has its own internal single-writer lock
// and needs no additional protection here. Publish takes only a read
// lock, matching the orchestrator's registry-vs-hot-path split.
type Registry struct {
	logger *slog.Logger

	mu            sync.RWMutex
	subscriptions map[ID]Subscription

	index      *tagindex.Index[ID]
	queryCache *lru.Cache[string, *tagquery.Query]
}

// NewRegistry constructs an empty Registry. A nil logger falls back to
// the discard logger, per the ambient logging convention.
func NewRegistry(logger *slog.Logger) *Registry {
	cache, err := lru.New[string, *tagquery.Query](queryCacheSize)
	if err != nil {
		panic(fmt.Sprintf("subscription: invalid query cache size: %v", err))
	}
	return &Registry{
		logger:        logging.Default(logger).With("component", "subscription.Registry"),
		subscriptions: make(map[ID]Subscription),
		index:         tagindex.New[ID](nil),
		queryCache:    cache,
	}
}

// Register parses expression (or reuses a cached parse of the identical
// text), threads it into the index under a freshly generated ID, and
// returns that ID. The only error path is tagquery.Parse.
func (r *Registry) Register(expression string) (ID, error) {
	id := NewID()
	if err := r.RegisterWithID(id, expression); err != nil {
		return "", err
	}
	return id, nil
}

// RegisterWithID is Register for a caller that already has a stable
// identifier for the subscription — config.Store's declarative keys, for
// instance, which should survive being replayed into a fresh registry
// unchanged rather than being assigned a new random ID on every load.
func (r *Registry) RegisterWithID(id ID, expression string) error {
	q, err := r.compile(expression)
	if err != nil {
		return fmt.Errorf("subscription: register %q: %w", expression, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.index.Add(q, id)
	r.subscriptions[id] = Subscription{ID: id, Expression: expression}
	r.logger.Info("registered subscription", "id", string(id))
	return nil
}

// Unregister removes a previously registered subscription. It reports
// whether id was known.
func (r *Registry) Unregister(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subscriptions[id]
	if !ok {
		return false
	}
	// The expression parsed without error at Register time, and the
	// cache keeps compiled queries alive by text, so this cannot fail.
	q, err := r.compile(sub.Expression)
	if err != nil {
		panic(fmt.Sprintf("subscription: re-compiling a previously valid expression %q: %v", sub.Expression, err))
	}
	r.index.Remove(q, id)
	delete(r.subscriptions, id)
	r.logger.Info("unregistered subscription", "id", string(id))
	return true
}

// Publish returns every subscribed ID whose filter is satisfied by id.
func (r *Registry) Publish(identity identity.Identity) []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index.FindMatches(identity)
}

// CouldPublish is the partial-tag pre-filter: true unless no registered
// subscription could possibly match any completion of lookup.
func (r *Registry) CouldPublish(lookup func(string) (string, bool)) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index.CouldMatch(lookup)
}

// List returns a snapshot of every currently registered subscription.
func (r *Registry) List() []Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Subscription, 0, len(r.subscriptions))
	for _, sub := range r.subscriptions {
		out = append(out, sub)
	}
	return out
}

// HotSpots exposes the index's diagnostic for operator tooling.
func (r *Registry) HotSpots(threshold int) []tagindex.HotSpot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index.FindHotSpots(threshold)
}

// compile parses expression, memoized by raw source text.
func (r *Registry) compile(expression string) (*tagquery.Query, error) {
	if q, ok := r.queryCache.Get(expression); ok {
		return q, nil
	}
	q, err := tagquery.Parse(expression)
	if err != nil {
		return nil, err
	}
	r.queryCache.Add(expression, q)
	return q, nil
}
