// Package tagindex implements the tag-query index: a multi-level
// decision tree over boolean tag predicates that, given a registered set
// of filter expressions, efficiently returns which of them a given
// tagged identity satisfies.
package tagindex

import (
	"sort"
	"sync"

	"tagindex/internal/tagquery"
)

// Index is the generic QueryIndex of spec §2/§6. The stored value type V
// is opaque to the index; only equality is required, for dedup during
// traversal.
type Index[V comparable] struct {
	newCache func() ResultCache[V]
	root     *node[V]
	writeMu  sync.Mutex
}

// New constructs an empty index. newCache manufactures the per-node
// result cache; a nil newCache selects the default bounded LRU cache
// backed by hashicorp/golang-lru.
func New[V comparable](newCache func() ResultCache[V]) *Index[V] {
	if newCache == nil {
		newCache = newLRUResultCache[V](defaultCacheSize)
	}
	return &Index[V]{
		newCache: newCache,
		root:     newRoot[V](newCache),
	}
}

// Add expands q to DNF and threads each conjunction through the tree,
// registering value at the terminus of every branch (spec §4.2). Add is
// fluent. Mutations must be serialized by the caller to a single writer
// (spec §5); Add takes its own lock so a caller that forgets this still
// gets correct, if unnecessarily serialized, behavior.
func (ix *Index[V]) Add(q *tagquery.Query, value V) *Index[V] {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	for _, branch := range q.AndList() {
		addSorted(ix.root, sortPredicates(branch), 0, value)
	}
	return ix
}

// Remove mirrors Add's structural choices and removes value from the
// terminus of every DNF branch, pruning empty nodes on the way back up
// (spec §4.3). It reports whether any branch actually removed value.
func (ix *Index[V]) Remove(q *tagquery.Query, value V) bool {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	changed := false
	for _, branch := range q.AndList() {
		if removeSorted(ix.root, sortPredicates(branch), 0, value) {
			changed = true
		}
	}
	return changed
}

// IsEmpty reports whether the index holds no registered values
// (invariant 2).
func (ix *Index[V]) IsEmpty() bool {
	return ix.root.isEmpty()
}

// sortPredicates returns a copy of preds ordered "name" first, then
// lexicographically by key — the shared ordering contract of invariant 7
// and Identity's own iteration order.
func sortPredicates(preds []tagquery.Predicate) []tagquery.Predicate {
	sorted := make([]tagquery.Predicate, len(preds))
	copy(sorted, preds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareKeys(sorted[i].Key, sorted[j].Key) < 0
	})
	return sorted
}

// compareKeys orders keys "name" first, then lexicographically.
func compareKeys(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "name":
		return -1
	case b == "name":
		return 1
	case a < b:
		return -1
	default:
		return 1
	}
}

// foldComposite scans list starting at i for a contiguous run of
// predicates sharing the same key, folding more than one into a
// Composite (invariant 7), and returns the predicate to act on together
// with the index past the run.
func foldComposite(list []tagquery.Predicate, i int) (tagquery.Predicate, int) {
	key := list[i].Key
	j := i + 1
	for j < len(list) && list[j].Key == key {
		j++
	}
	if j-i == 1 {
		return list[i], j
	}
	members := make([]tagquery.Predicate, j-i)
	copy(members, list[i:j])
	return tagquery.NewComposite(key, members), j
}

// addSorted is add_sorted of spec §4.2.
func addSorted[V comparable](n *node[V], list []tagquery.Predicate, i int, value V) {
	if i == len(list) {
		n.addMatch(value)
		return
	}

	kq, j := foldComposite(list, i)
	n.assignKey(kq.Key)
	nodeKey, _ := n.getKey()

	if nodeKey != kq.Key {
		child := n.getOrCreateOtherKeysChild()
		addSorted(child, list, i, value)
		return
	}

	switch kq.Kind {
	case tagquery.PredEqual:
		addSorted(n.getOrCreateEqualChild(kq.Value), list, j, value)
	case tagquery.PredHas:
		addSorted(n.getOrCreateHasKeyChild(), list, j, value)
	default:
		addSorted(n.getOrCreateOtherChild(kq), list, j, value)
		if kq.MatchesEmpty() {
			addSorted(n.getOrCreateMissingKeysChild(), list, j, value)
		}
	}
}

// removeSorted is remove's mirror of addSorted, pruning emptied children
// on the way back up.
func removeSorted[V comparable](n *node[V], list []tagquery.Predicate, i int, value V) bool {
	if i == len(list) {
		return n.removeMatch(value)
	}

	kq, j := foldComposite(list, i)
	nodeKey, ok := n.getKey()

	if !ok || nodeKey != kq.Key {
		child := n.otherKeysIdx.Load()
		if child == nil {
			return false
		}
		changed := removeSorted(child, list, i, value)
		if changed {
			n.pruneOtherKeysChildIfEmpty()
		}
		return changed
	}

	switch kq.Kind {
	case tagquery.PredEqual:
		child, ok := n.getEqualChild(kq.Value)
		if !ok {
			return false
		}
		changed := removeSorted(child, list, j, value)
		if changed {
			n.deleteEqualChildIfEmpty(kq.Value)
		}
		return changed

	case tagquery.PredHas:
		child := n.hasKeyIdx.Load()
		if child == nil {
			return false
		}
		changed := removeSorted(child, list, j, value)
		if changed {
			n.pruneHasKeyChildIfEmpty()
		}
		return changed

	default:
		changed := false
		if child, ok := n.getOtherChild(kq); ok {
			if removeSorted(child, list, j, value) {
				changed = true
			}
			n.deleteOtherChildIfEmpty(kq)
		}
		if kq.MatchesEmpty() {
			if missing := n.missingKeysIdx.Load(); missing != nil {
				if removeSorted(missing, list, j, value) {
					changed = true
				}
				n.pruneMissingKeysChildIfEmpty()
			}
		}
		return changed
	}
}
