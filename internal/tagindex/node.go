package tagindex

import (
	"sync"
	"sync/atomic"

	"tagindex/internal/tagquery"
)

// node is the QueryIndex node of spec §3: a recursive decision-tree node
// keyed by a single tag key, holding equality children, other-checks
// children (with a prefix-tree pre-filter and result cache), three
// distinguished sub-indices, and the terminal match set.
type node[V comparable] struct {
	newCache func() ResultCache[V]

	// key is assigned at most once (invariant 4): the root starts with
	// "name" pre-assigned; internal nodes receive their key from the
	// first insertion that reaches them.
	key atomic.Pointer[string]

	mu          sync.RWMutex
	equalChecks map[string]*node[V]
	otherChecks map[string]cachedEntry[V] // keyed by Predicate.String()

	otherChecksTree  *prefixTree
	otherChecksCache ResultCache[V]

	hasKeyIdx      atomic.Pointer[node[V]]
	otherKeysIdx   atomic.Pointer[node[V]]
	missingKeysIdx atomic.Pointer[node[V]]

	matches atomic.Pointer[[]V] // copy-on-write snapshot; nil means empty
}

func newNode[V comparable](newCache func() ResultCache[V]) *node[V] {
	return &node[V]{
		newCache:         newCache,
		equalChecks:      make(map[string]*node[V]),
		otherChecks:      make(map[string]cachedEntry[V]),
		otherChecksTree:  newPrefixTree(),
		otherChecksCache: newCache(),
	}
}

func newRoot[V comparable](newCache func() ResultCache[V]) *node[V] {
	n := newNode[V](newCache)
	n.assignKey("name")
	return n
}

// assignKey tries to publish key; a no-op if a key was already assigned
// (invariant 4: "key, once assigned, is never changed").
func (n *node[V]) assignKey(key string) {
	k := key
	n.key.CompareAndSwap(nil, &k)
}

// getKey returns the node's assigned key, if any.
func (n *node[V]) getKey() (string, bool) {
	p := n.key.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}

func (n *node[V]) getEqualChild(value string) (*node[V], bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	c, ok := n.equalChecks[value]
	return c, ok
}

func (n *node[V]) getOrCreateEqualChild(value string) *node[V] {
	n.mu.RLock()
	if c, ok := n.equalChecks[value]; ok {
		n.mu.RUnlock()
		return c
	}
	n.mu.RUnlock()

	n.mu.Lock()
	defer n.mu.Unlock()
	if c, ok := n.equalChecks[value]; ok {
		return c
	}
	c := newNode[V](n.newCache)
	n.equalChecks[value] = c
	return c
}

// deleteEqualChildIfEmpty removes the equal-checks child for value iff
// it is currently empty. Returns true if it was removed.
func (n *node[V]) deleteEqualChildIfEmpty(value string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	c, ok := n.equalChecks[value]
	if !ok || !c.isEmpty() {
		return false
	}
	delete(n.equalChecks, value)
	return true
}

func (n *node[V]) getOtherChild(p tagquery.Predicate) (*node[V], bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	e, ok := n.otherChecks[p.String()]
	if !ok {
		return nil, false
	}
	return e.child, true
}

// getOrCreateOtherChild descends into other_checks[p], creating the
// child and registering p in the prefix tree on first insertion (spec
// §4.2). The result cache is invalidated whenever the tree's membership
// actually changes.
func (n *node[V]) getOrCreateOtherChild(p tagquery.Predicate) *node[V] {
	key := p.String()

	n.mu.RLock()
	if e, ok := n.otherChecks[key]; ok {
		n.mu.RUnlock()
		return e.child
	}
	n.mu.RUnlock()

	n.mu.Lock()
	defer n.mu.Unlock()
	if e, ok := n.otherChecks[key]; ok {
		return e.child
	}
	c := newNode[V](n.newCache)
	n.otherChecks[key] = cachedEntry[V]{predicate: p, child: c}
	if n.otherChecksTree.put(p) {
		n.otherChecksCache.Clear()
	}
	return c
}

// deleteOtherChildIfEmpty mirrors deleteEqualChildIfEmpty for the
// other-checks map, also pruning the prefix tree and invalidating the
// cache when tree membership changes (spec §4.3).
func (n *node[V]) deleteOtherChildIfEmpty(p tagquery.Predicate) bool {
	key := p.String()

	n.mu.Lock()
	defer n.mu.Unlock()
	e, ok := n.otherChecks[key]
	if !ok || !e.child.isEmpty() {
		return false
	}
	delete(n.otherChecks, key)
	if n.otherChecksTree.remove(e.predicate) {
		n.otherChecksCache.Clear()
	}
	return true
}

func (n *node[V]) otherChecksSnapshot() []cachedEntry[V] {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]cachedEntry[V], 0, len(n.otherChecks))
	for _, e := range n.otherChecks {
		out = append(out, e)
	}
	return out
}

func (n *node[V]) equalChecksSnapshot() map[string]*node[V] {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]*node[V], len(n.equalChecks))
	for k, v := range n.equalChecks {
		out[k] = v
	}
	return out
}

// applicableOtherChecks implements the other-checks lookup with caching
// of spec §4.5: on a cache hit the cached list of children is returned
// directly; on a miss the prefix tree is walked, filtered, and the
// result stored for v. The same filtered result is valid for both the
// ordered (Identity) and unordered (lookup) traversal entry points,
// since matches_after_prefix and a full match agree once the prefix has
// already been verified by the tree walk.
func (n *node[V]) applicableOtherChecks(v string) []cachedEntry[V] {
	cache := n.otherChecksCache
	if cached, ok := cache.Get(v); ok {
		return cached
	}

	var applicable []cachedEntry[V]
	n.otherChecksTree.forEach(v, func(p tagquery.Predicate) {
		if !p.MatchesAfterPrefix(v) {
			return
		}
		if e, ok := n.getOtherChild(p); ok {
			applicable = append(applicable, cachedEntry[V]{predicate: p, child: e})
		}
	})
	cache.Put(v, applicable)
	return applicable
}

func getOrCreateChild[V comparable](ptr *atomic.Pointer[node[V]], newCache func() ResultCache[V]) *node[V] {
	if c := ptr.Load(); c != nil {
		return c
	}
	fresh := newNode[V](newCache)
	if ptr.CompareAndSwap(nil, fresh) {
		return fresh
	}
	return ptr.Load()
}

func (n *node[V]) getOrCreateHasKeyChild() *node[V] {
	return getOrCreateChild(&n.hasKeyIdx, n.newCache)
}

func (n *node[V]) getOrCreateOtherKeysChild() *node[V] {
	return getOrCreateChild(&n.otherKeysIdx, n.newCache)
}

func (n *node[V]) getOrCreateMissingKeysChild() *node[V] {
	return getOrCreateChild(&n.missingKeysIdx, n.newCache)
}

func (n *node[V]) pruneHasKeyChildIfEmpty() {
	if c := n.hasKeyIdx.Load(); c != nil && c.isEmpty() {
		n.hasKeyIdx.CompareAndSwap(c, nil)
	}
}

func (n *node[V]) pruneOtherKeysChildIfEmpty() {
	if c := n.otherKeysIdx.Load(); c != nil && c.isEmpty() {
		n.otherKeysIdx.CompareAndSwap(c, nil)
	}
}

func (n *node[V]) pruneMissingKeysChildIfEmpty() {
	if c := n.missingKeysIdx.Load(); c != nil && c.isEmpty() {
		n.missingKeysIdx.CompareAndSwap(c, nil)
	}
}

// addMatch adds v to this node's terminal set, copy-on-write, and
// reports whether the set actually changed.
func (n *node[V]) addMatch(v V) bool {
	for {
		oldPtr := n.matches.Load()
		var old []V
		if oldPtr != nil {
			old = *oldPtr
		}
		for _, existing := range old {
			if existing == v {
				return false
			}
		}
		next := make([]V, len(old)+1)
		copy(next, old)
		next[len(old)] = v
		if n.matches.CompareAndSwap(oldPtr, &next) {
			return true
		}
	}
}

// removeMatch removes v, copy-on-write, reporting whether it was present.
func (n *node[V]) removeMatch(v V) bool {
	for {
		oldPtr := n.matches.Load()
		if oldPtr == nil {
			return false
		}
		old := *oldPtr
		idx := -1
		for i, existing := range old {
			if existing == v {
				idx = i
				break
			}
		}
		if idx == -1 {
			return false
		}
		var nextPtr *[]V
		if len(old) > 1 {
			next := make([]V, 0, len(old)-1)
			next = append(next, old[:idx]...)
			next = append(next, old[idx+1:]...)
			nextPtr = &next
		}
		if n.matches.CompareAndSwap(oldPtr, nextPtr) {
			return true
		}
	}
}

func (n *node[V]) matchesSnapshot() []V {
	p := n.matches.Load()
	if p == nil {
		return nil
	}
	return *p
}

func (n *node[V]) hasMatches() bool {
	p := n.matches.Load()
	return p != nil && len(*p) > 0
}

// isEmpty implements invariant 2: no matches, no children, nothing in
// equal_checks or other_checks. Children are expected to have already
// been pruned on the way back up from a remove, so this check does not
// recurse.
func (n *node[V]) isEmpty() bool {
	if n.hasMatches() {
		return false
	}
	n.mu.RLock()
	empty := len(n.equalChecks) == 0 && len(n.otherChecks) == 0
	n.mu.RUnlock()
	if !empty {
		return false
	}
	return n.hasKeyIdx.Load() == nil && n.otherKeysIdx.Load() == nil && n.missingKeysIdx.Load() == nil
}
