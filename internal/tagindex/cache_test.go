package tagindex

import "testing"

func TestLRUResultCacheGetPutClear(t *testing.T) {
	newCache := newLRUResultCache[string](4)
	c := newCache()

	if _, ok := c.Get("missing"); ok {
		t.Fatalf("Get on an empty cache should report ok=false")
	}

	entries := []cachedEntry[string]{{child: newNode[string](newCache)}}
	c.Put("v1", entries)

	got, ok := c.Get("v1")
	if !ok || len(got) != 1 {
		t.Fatalf("Get(v1) = %v, %v", got, ok)
	}

	c.Clear()
	if _, ok := c.Get("v1"); ok {
		t.Fatalf("Get(v1) should miss after Clear")
	}
}

func TestLRUResultCacheEvictsPastSize(t *testing.T) {
	newCache := newLRUResultCache[string](2)
	c := newCache()

	for _, v := range []string{"a", "b", "c"} {
		c.Put(v, []cachedEntry[string]{{child: newNode[string](newCache)}})
	}

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected the least-recently-used entry to have been evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatalf("expected the most recently inserted entry to still be present")
	}
}
