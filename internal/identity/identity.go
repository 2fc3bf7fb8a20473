// Package identity implements the external Identity collaborator
// consumed by tagindex: an ordered sequence of (key, value) string pairs
// with a distinguished "name" pair always first, keys unique, the
// remainder in lexicographic order.
package identity

import "sort"

// Identity is an ordered, immutable (key, value) sequence. The zero value
// is not useful; build one with NewIdentity.
type Identity struct {
	keys   []string
	values []string
}

// NewIdentity builds an Identity from a measurement name and an unordered
// set of tags. "name" is always placed first; the remaining keys are
// sorted lexicographically, matching the ordering contract every caller
// (including tagindex's own traversal) relies on.
func NewIdentity(name string, tags map[string]string) Identity {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		if k == "name" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	id := Identity{
		keys:   make([]string, 0, len(keys)+1),
		values: make([]string, 0, len(keys)+1),
	}
	id.keys = append(id.keys, "name")
	id.values = append(id.values, name)
	for _, k := range keys {
		id.keys = append(id.keys, k)
		id.values = append(id.values, tags[k])
	}
	return id
}

// Size returns the number of (key, value) pairs, including "name".
func (id Identity) Size() int {
	return len(id.keys)
}

// GetKey returns the key at position i.
func (id Identity) GetKey(i int) string {
	return id.keys[i]
}

// GetValue returns the value at position i.
func (id Identity) GetValue(i int) string {
	return id.values[i]
}

// Name returns the identity's distinguished name, equivalent to GetValue(0).
func (id Identity) Name() string {
	if id.Size() == 0 {
		return ""
	}
	return id.values[0]
}

// Tags returns a map adapter over the same pairs, suitable wherever an
// unordered lookup(key) -> (value, ok) contract is required (spec §4.6).
func (id Identity) Tags() Tags {
	t := make(Tags, id.Size())
	for i := range id.keys {
		t[id.keys[i]] = id.values[i]
	}
	return t
}

// Lookup returns a lookup(key) -> (value, ok) closure over id, for callers
// that need the function form rather than the Tags map form.
func (id Identity) Lookup() func(string) (string, bool) {
	t := id.Tags()
	return t.Lookup()
}

// Tags is the map adapter satisfying the unordered lookup contract that
// tagindex's partial-traversal entry points (FindMatchesTags,
// ForEachMatchTags, CouldMatch) consume.
type Tags map[string]string

// Lookup returns the lookup(key) -> (value, ok) closure tagindex expects.
func (t Tags) Lookup() func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := t[key]
		return v, ok
	}
}
