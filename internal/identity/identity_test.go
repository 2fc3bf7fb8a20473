package identity

import "testing"

func TestNewIdentityOrdering(t *testing.T) {
	id := NewIdentity("cpu", map[string]string{
		"host": "h1",
		"app":  "foo",
		"zone": "us-east",
	})

	if id.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", id.Size())
	}
	if got, want := id.GetKey(0), "name"; got != want {
		t.Errorf("GetKey(0) = %q, want %q", got, want)
	}
	if got, want := id.GetValue(0), "cpu"; got != want {
		t.Errorf("GetValue(0) = %q, want %q", got, want)
	}

	wantKeys := []string{"name", "app", "host", "zone"}
	for i, want := range wantKeys {
		if got := id.GetKey(i); got != want {
			t.Errorf("GetKey(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestNewIdentityEmptyTags(t *testing.T) {
	id := NewIdentity("cpu", nil)
	if id.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", id.Size())
	}
	if id.GetKey(0) != "name" || id.GetValue(0) != "cpu" {
		t.Errorf("unexpected sole pair: %s=%s", id.GetKey(0), id.GetValue(0))
	}
}

func TestIdentityName(t *testing.T) {
	id := NewIdentity("mem", map[string]string{"app": "foo"})
	if got := id.Name(); got != "mem" {
		t.Errorf("Name() = %q, want %q", got, "mem")
	}
}

func TestIdentityTagsRoundTrip(t *testing.T) {
	tags := map[string]string{"app": "foo", "host": "h1"}
	id := NewIdentity("cpu", tags)

	got := id.Tags()
	want := Tags{"name": "cpu", "app": "foo", "host": "h1"}
	if len(got) != len(want) {
		t.Fatalf("Tags() len = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Tags()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestTagsLookup(t *testing.T) {
	tags := Tags{"name": "cpu", "app": "foo"}
	lookup := tags.Lookup()

	if v, ok := lookup("name"); !ok || v != "cpu" {
		t.Errorf("lookup(name) = (%q, %v), want (cpu, true)", v, ok)
	}
	if _, ok := lookup("missing"); ok {
		t.Error("lookup(missing) returned ok=true for absent key")
	}
}

func TestIdentityLookupMatchesTags(t *testing.T) {
	id := NewIdentity("cpu", map[string]string{"app": "foo"})
	lookup := id.Lookup()

	for i := 0; i < id.Size(); i++ {
		k, v := id.GetKey(i), id.GetValue(i)
		got, ok := lookup(k)
		if !ok || got != v {
			t.Errorf("lookup(%q) = (%q, %v), want (%q, true)", k, got, ok, v)
		}
	}
}
