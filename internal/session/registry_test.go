package session

import (
	"testing"
	"time"
)

func TestRegistry_GetCreatesOnce(t *testing.T) {
	created := 0
	r := NewRegistry(func() *int {
		created++
		v := created
		return &v
	})
	a := r.Get("a")
	if again := r.Get("a"); again != a {
		t.Error("expected the same value for the same key")
	}
	if b := r.Get("b"); b == a {
		t.Error("expected distinct values per key")
	}
	if created != 2 || r.Len() != 2 {
		t.Errorf("created=%d len=%d", created, r.Len())
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup must not create")
	}
	r.Drop("a")
	if _, ok := r.Lookup("a"); ok {
		t.Error("expected a to be dropped")
	}
}

func TestRegistry_Sweep(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(func() string { return "v" })
	r.now = func() time.Time { return now }

	r.Get("old")
	now = now.Add(20 * time.Minute)
	r.Get("fresh")
	now = now.Add(20 * time.Minute)

	if n := r.Sweep(30 * time.Minute); n != 1 {
		t.Errorf("swept %d, want 1", n)
	}
	if _, ok := r.Lookup("fresh"); !ok {
		t.Error("fresh session should survive")
	}
	if _, ok := r.Lookup("old"); ok {
		t.Error("old session should be gone")
	}
}
