package cache_test

import (
	"fmt"
	"testing"

	"github.com/zaminworks/zamintran/internal/cache"
)

func TestGetSet(t *testing.T) {
	c := cache.New(10)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for absent key")
	}

	c.Set("کھسرا نمبر 142", "Khasra number 142")

	got, ok := c.Get("کھسرا نمبر 142")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got != "Khasra number 142" {
		t.Errorf("got %q", got)
	}
}

func TestEviction_LeastRecentlyUsed(t *testing.T) {
	c := cache.New(3)
	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("chunk-%d", i), fmt.Sprintf("translation-%d", i))
	}

	// Touch chunk-0 so chunk-1 becomes the least recently used.
	if _, ok := c.Get("chunk-0"); !ok {
		t.Fatal("expected chunk-0 present")
	}

	c.Set("chunk-3", "translation-3")

	if _, ok := c.Get("chunk-1"); ok {
		t.Error("expected chunk-1 evicted as least recently used")
	}
	for _, k := range []string{"chunk-0", "chunk-2", "chunk-3"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to survive eviction", k)
		}
	}
}

func TestEviction_CapacityBound(t *testing.T) {
	c := cache.New(5)
	for i := 0; i < 20; i++ {
		c.Set(fmt.Sprintf("chunk-%d", i), "t")
	}

	if size := c.GetStats().Size; size != 5 {
		t.Errorf("expected size capped at 5, got %d", size)
	}
}

func TestStats(t *testing.T) {
	c := cache.New(10)

	if rate := c.GetStats().HitRate; rate != 0 {
		t.Errorf("expected hit rate 0 before lookups, got %v", rate)
	}

	const n = 4
	for i := 0; i < n; i++ {
		c.Get(fmt.Sprintf("miss-%d", i))
	}
	c.Set("present", "value")
	c.Get("present")

	stats := c.GetStats()
	if stats.Hits != 1 {
		t.Errorf("hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != n {
		t.Errorf("misses = %d, want %d", stats.Misses, n)
	}
	if want := 1.0 / float64(n+1); stats.HitRate != want {
		t.Errorf("hit rate = %v, want %v", stats.HitRate, want)
	}
}

func TestContentAddressing_IgnoresPosition(t *testing.T) {
	c := cache.New(10)
	c.Set("same text", "same translation")

	// Same text cached once regardless of where in a document it appears.
	c.Set("same text", "same translation")

	if size := c.GetStats().Size; size != 1 {
		t.Errorf("expected a single entry for identical text, got %d", size)
	}
}
