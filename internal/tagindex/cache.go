package tagindex

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"tagindex/internal/tagquery"
)

// defaultCacheSize bounds the per-node result cache (spec §4.5's
// "bounded memoization"). Each node gets its own cache instance, so this
// stays small relative to the number of distinct tag values ever probed
// at that node.
const defaultCacheSize = 256

// cachedEntry is one applicable other-checks child recorded against a
// probed value: the predicate that accepted it and the child node it
// leads to.
type cachedEntry[V comparable] struct {
	predicate tagquery.Predicate
	child     *node[V]
}

// ResultCache is the external collaborator of spec §1/§6: a bounded
// associative memoizer from probed value to the other-checks children
// that applied at the parent level. Eviction policy is opaque to the
// index; only Get/Put/Clear are consumed.
type ResultCache[V comparable] interface {
	Get(key string) ([]cachedEntry[V], bool)
	Put(key string, entries []cachedEntry[V])
	Clear()
}

// lruResultCache backs ResultCache with hashicorp/golang-lru's generic
// LRU cache. The eviction policy it applies is opaque to the index, per
// spec §2 ("Eviction policy is opaque (LFU-like)") — callers that want a
// different policy provide their own cache_supplier to New.
type lruResultCache[V comparable] struct {
	c *lru.Cache[string, []cachedEntry[V]]
}

// newLRUResultCache returns a ResultCache constructor suitable for
// New's cache_supplier parameter.
func newLRUResultCache[V comparable](size int) func() ResultCache[V] {
	return func() ResultCache[V] {
		c, err := lru.New[string, []cachedEntry[V]](size)
		if err != nil {
			panic(fmt.Sprintf("tagindex: invalid result cache size %d: %v", size, err))
		}
		return &lruResultCache[V]{c: c}
	}
}

func (r *lruResultCache[V]) Get(key string) ([]cachedEntry[V], bool) {
	return r.c.Get(key)
}

func (r *lruResultCache[V]) Put(key string, entries []cachedEntry[V]) {
	r.c.Add(key, entries)
}

func (r *lruResultCache[V]) Clear() {
	r.c.Purge()
}
