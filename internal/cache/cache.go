// Package cache memoizes chunk translations for the lifetime of a pipeline
// run. Entries are content-addressed: the key is a hash of the chunk text
// itself, not its position, so a chunk repeated anywhere in a document (or
// re-translated later in the same process) reuses its translation.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/unicode/norm"
)

// DefaultSize is the cache capacity when none is configured.
const DefaultSize = 100

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Size    int     `json:"size"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Cache is a bounded LRU of chunk text to translated text. Get promotes the
// entry to most-recently-used; Set beyond capacity evicts the
// least-recently-used entry.
type Cache struct {
	lru    *lru.Cache[string, string]
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Cache with the given capacity, or DefaultSize when size is
// not positive.
func New(size int) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	// lru.New only fails for non-positive sizes, which are handled above.
	inner, _ := lru.New[string, string](size)
	return &Cache{lru: inner}
}

// Get returns the cached translation for text, if present.
func (c *Cache) Get(text string) (string, bool) {
	translation, ok := c.lru.Get(key(text))
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return translation, ok
}

// Set stores the translation for text.
func (c *Cache) Set(text, translation string) {
	c.lru.Add(key(text), translation)
}

// GetStats returns the current snapshot. The hit rate is 0 before any
// lookup.
func (c *Cache) GetStats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	s := Stats{
		Size:   c.lru.Len(),
		Hits:   hits,
		Misses: misses,
	}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}

// key hashes the NFC-normalized chunk text so canonically equivalent
// spellings of the same text share an entry.
func key(text string) string {
	sum := sha256.Sum256([]byte(norm.NFC.String(text)))
	return hex.EncodeToString(sum[:])
}
