package tagindex

import (
	"tagindex/internal/identity"
	"tagindex/internal/tagquery"
)

// ForEachMatch streams every value whose registered predicate is
// satisfied by id, each exactly once (spec §4.4). The consumer is
// invoked synchronously; ForEachMatch performs no mutation and makes no
// attempt at rollback if consume panics.
func (ix *Index[V]) ForEachMatch(id identity.Identity, consume func(V)) {
	seen := make(map[V]struct{})
	forEachMatchAt(ix.root, id, 0, func(v V) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		consume(v)
	})
}

// FindMatches materializes ForEachMatch's results.
func (ix *Index[V]) FindMatches(id identity.Identity) []V {
	var out []V
	ix.ForEachMatch(id, func(v V) { out = append(out, v) })
	return out
}

// forEachMatchAt is for_each_match_at of spec §4.4.
func forEachMatchAt[V comparable](n *node[V], id identity.Identity, cursor int, consume func(V)) {
	for _, v := range n.matchesSnapshot() {
		consume(v)
	}

	key, ok := n.getKey()
	if !ok {
		return
	}

	keyPresent := false
	for j := cursor; j < id.Size(); j++ {
		k := id.GetKey(j)
		cmp := compareKeys(k, key)
		if cmp == 0 {
			v := id.GetValue(j)
			keyPresent = true
			if child, ok := n.getEqualChild(v); ok {
				forEachMatchAt(child, id, j+1, consume)
			}
			for _, e := range n.applicableOtherChecks(v) {
				forEachMatchAt(e.child, id, j+1, consume)
			}
			if has := n.hasKeyIdx.Load(); has != nil {
				forEachMatchAt(has, id, j, consume)
			}
			break
		}
		if cmp > 0 {
			break // k sorts after key: key absent from the remaining tags
		}
	}

	if other := n.otherKeysIdx.Load(); other != nil {
		forEachMatchAt(other, id, cursor, consume)
	}
	if !keyPresent {
		if missing := n.missingKeysIdx.Load(); missing != nil {
			forEachMatchAt(missing, id, cursor, consume)
		}
	}
}

// ForEachMatchTags is the unordered-tags variant of ForEachMatch (spec
// §4.6), for callers that have an ad-hoc lookup(key) -> value rather than
// an ordered Identity.
func (ix *Index[V]) ForEachMatchTags(tags identity.Tags, consume func(V)) {
	seen := make(map[V]struct{})
	forEachMatchLookup(ix.root, tags.Lookup(), func(v V) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		consume(v)
	})
}

// FindMatchesTags materializes ForEachMatchTags's results.
func (ix *Index[V]) FindMatchesTags(tags identity.Tags) []V {
	var out []V
	ix.ForEachMatchTags(tags, func(v V) { out = append(out, v) })
	return out
}

func forEachMatchLookup[V comparable](n *node[V], lookup func(string) (string, bool), consume func(V)) {
	for _, v := range n.matchesSnapshot() {
		consume(v)
	}

	key, ok := n.getKey()
	if !ok {
		return
	}

	v, present := lookup(key)
	if present {
		if child, ok := n.getEqualChild(v); ok {
			forEachMatchLookup(child, lookup, consume)
		}
		for _, e := range n.applicableOtherChecks(v) {
			forEachMatchLookup(e.child, lookup, consume)
		}
		if has := n.hasKeyIdx.Load(); has != nil {
			forEachMatchLookup(has, lookup, consume)
		}
	}

	if other := n.otherKeysIdx.Load(); other != nil {
		forEachMatchLookup(other, lookup, consume)
	}
	if !present {
		if missing := n.missingKeysIdx.Load(); missing != nil {
			forEachMatchLookup(missing, lookup, consume)
		}
	}
}

// CouldMatch is the partial-tag pre-filter of spec §4.7: a
// false-positive-permitted check used to short-circuit expensive
// upstream transformations before the full tag set is known. It must
// never return false when ForEachMatchTags would yield anything for
// some completion of lookup.
func (ix *Index[V]) CouldMatch(lookup func(string) (string, bool)) bool {
	return couldMatchAt(ix.root, lookup)
}

func couldMatchAt[V comparable](n *node[V], lookup func(string) (string, bool)) bool {
	if n.hasMatches() {
		return true
	}

	key, ok := n.getKey()
	if !ok {
		if other := n.otherKeysIdx.Load(); other != nil && couldMatchAt(other, lookup) {
			return true
		}
		if missing := n.missingKeysIdx.Load(); missing != nil && couldMatchAt(missing, lookup) {
			return true
		}
		return false
	}

	v, present := lookup(key)
	if !present {
		// The caller has not yet supplied this key. Conservative
		// over-acceptance (spec §4.7's open question): could_match may
		// never be false when for_each_match would still yield.
		return true
	}

	if child, ok := n.getEqualChild(v); ok && couldMatchAt(child, lookup) {
		return true
	}

	if n.otherChecksTree.exists(v, func(p tagquery.Predicate) bool {
		if p.Kind != tagquery.PredIn && !couldMatchPredicate(p, v) {
			return false
		}
		child, ok := n.getOtherChild(p)
		return ok && couldMatchAt(child, lookup)
	}) {
		return true
	}

	if has := n.hasKeyIdx.Load(); has != nil && couldMatchAt(has, lookup) {
		return true
	}
	if other := n.otherKeysIdx.Load(); other != nil && couldMatchAt(other, lookup) {
		return true
	}
	return false
}

// couldMatchPredicate is the couldMatch(kq, v) helper of spec §4.7: for
// regex predicates the prefix has already been verified by the prefix
// tree, so full evaluation is deferred to the actual matcher and this
// returns true unconditionally.
func couldMatchPredicate(p tagquery.Predicate, v string) bool {
	if p.IsRegex() {
		return true
	}
	return p.Matches(v)
}
