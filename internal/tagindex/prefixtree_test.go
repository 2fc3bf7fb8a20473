package tagindex

import (
	"testing"

	"tagindex/internal/tagquery"
)

func TestPrefixTreePutAndForEach(t *testing.T) {
	tree := newPrefixTree()

	webRe, err := tagquery.NewRegex("host", "^web-")
	if err != nil {
		t.Fatalf("NewRegex: %v", err)
	}
	dbRe, err := tagquery.NewRegex("host", "^db-")
	if err != nil {
		t.Fatalf("NewRegex: %v", err)
	}
	missing := tagquery.NewMissing("shard")

	if !tree.put(webRe) {
		t.Fatalf("first put of webRe should report true")
	}
	if tree.put(webRe) {
		t.Fatalf("second put of the same predicate should report false")
	}
	tree.put(dbRe)
	tree.put(missing)

	var seen []string
	tree.forEach("web-1", func(p tagquery.Predicate) { seen = append(seen, p.String()) })

	if !containsPredString(seen, webRe.String()) {
		t.Errorf("forEach(%q) missing webRe: %v", "web-1", seen)
	}
	if containsPredString(seen, dbRe.String()) {
		t.Errorf("forEach(%q) unexpectedly matched dbRe: %v", "web-1", seen)
	}
	if !containsPredString(seen, missing.String()) {
		t.Errorf("forEach(%q) missing the empty-prefix predicate: %v", "web-1", seen)
	}
}

func TestPrefixTreeRemovePrunesEmptyNodes(t *testing.T) {
	tree := newPrefixTree()
	p := tagquery.NewEqual("env", "prod")

	tree.put(p)
	if tree.isEmpty() {
		t.Fatalf("tree should not be empty after put")
	}
	if !tree.remove(p) {
		t.Fatalf("remove should report true for an existing predicate")
	}
	if !tree.isEmpty() {
		t.Fatalf("tree should be empty after removing its only predicate")
	}
	if tree.remove(p) {
		t.Fatalf("removing an already-removed predicate should report false")
	}
}

func TestPrefixTreeExistsShortCircuits(t *testing.T) {
	tree := newPrefixTree()
	a := tagquery.NewEqual("env", "prod")
	b := tagquery.NewEqual("env", "staging")
	tree.put(a)
	tree.put(b)

	calls := 0
	found := tree.exists("prod", func(p tagquery.Predicate) bool {
		calls++
		return p.String() == a.String()
	})
	if !found {
		t.Fatalf("exists should have found a")
	}
	if calls == 0 {
		t.Fatalf("predicate should have been invoked at least once")
	}
}

func containsPredString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
