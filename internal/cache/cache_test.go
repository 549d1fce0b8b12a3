package cache

import (
	"testing"
	"time"
)

func TestGetPut(t *testing.T) {
	c := New[string, int](time.Hour)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Put("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Errorf("got (%d, %v), want (1, true)", v, ok)
	}

	c.Put("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("expected last write to win, got %d", v)
	}
}

func TestExpiry(t *testing.T) {
	c := New[string, string](time.Hour)
	now := time.Unix(1700000000, 0)
	c.now = func() time.Time { return now }

	c.Put("host", "blocked")
	if !c.Has("host") {
		t.Fatal("entry should be live before the TTL")
	}

	now = now.Add(2 * time.Hour)
	if c.Has("host") {
		t.Error("entry should have expired")
	}

	c.Sweep()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.m) != 0 {
		t.Errorf("sweep left %d entries", len(c.m))
	}
}
