package tagindex

import (
	"sync"

	iradix "github.com/hashicorp/go-immutable-radix"

	"tagindex/internal/tagquery"
)

// prefixTree is the PrefixTree of spec §4.1: a radix tree over the
// literal prefix strings of other-checks predicates, used to prune
// regex/set candidates by prefix before any predicate is evaluated.
// Backed by hashicorp's persistent radix tree rather than a hand-rolled
// trie — each key is a predicate's literal prefix, and the value stored
// at that key is the set of predicates sharing it (several regexes can
// agree on the same literal prefix).
type prefixTree struct {
	mu   sync.RWMutex
	tree *iradix.Tree
}

func newPrefixTree() *prefixTree {
	return &prefixTree{tree: iradix.New()}
}

// put adds p keyed by p.Prefix(). Returns true iff the set changed.
func (t *prefixTree) put(p tagquery.Predicate) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := []byte(p.Prefix())
	preds := t.predsAt(key)
	pk := p.String()
	if _, exists := preds[pk]; exists {
		return false
	}

	cloned := make(map[string]tagquery.Predicate, len(preds)+1)
	for k, v := range preds {
		cloned[k] = v
	}
	cloned[pk] = p

	tree, _, _ := t.tree.Insert(key, cloned)
	t.tree = tree
	return true
}

// remove is the symmetric operation to put.
func (t *prefixTree) remove(p tagquery.Predicate) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := []byte(p.Prefix())
	preds := t.predsAt(key)
	pk := p.String()
	if _, exists := preds[pk]; !exists {
		return false
	}

	if len(preds) == 1 {
		tree, _, _ := t.tree.Delete(key)
		t.tree = tree
		return true
	}

	cloned := make(map[string]tagquery.Predicate, len(preds)-1)
	for k, v := range preds {
		if k != pk {
			cloned[k] = v
		}
	}
	tree, _, _ := t.tree.Insert(key, cloned)
	t.tree = tree
	return true
}

// predsAt returns the predicate set stored exactly at key, or nil.
// Callers hold t.mu.
func (t *prefixTree) predsAt(key []byte) map[string]tagquery.Predicate {
	v, ok := t.tree.Get(key)
	if !ok {
		return nil
	}
	return v.(map[string]tagquery.Predicate)
}

// forEach invokes f for every stored predicate whose prefix is a prefix
// of probe. Empty-prefix predicates (stored at the root key) always
// match, since the empty byte string is a prefix of every probe.
func (t *prefixTree) forEach(probe string, f func(tagquery.Predicate)) {
	t.mu.RLock()
	tree := t.tree
	t.mu.RUnlock()

	for i := 0; i <= len(probe); i++ {
		v, ok := tree.Get([]byte(probe[:i]))
		if !ok {
			continue
		}
		for _, p := range v.(map[string]tagquery.Predicate) {
			f(p)
		}
	}
}

// exists short-circuits on the first predicate whose prefix is a prefix
// of probe and for which pred returns true.
func (t *prefixTree) exists(probe string, pred func(tagquery.Predicate) bool) bool {
	t.mu.RLock()
	tree := t.tree
	t.mu.RUnlock()

	for i := 0; i <= len(probe); i++ {
		v, ok := tree.Get([]byte(probe[:i]))
		if !ok {
			continue
		}
		for _, p := range v.(map[string]tagquery.Predicate) {
			if pred(p) {
				return true
			}
		}
	}
	return false
}

// isEmpty reports whether the tree holds no predicates.
func (t *prefixTree) isEmpty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Len() == 0
}
