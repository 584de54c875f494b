// Package retriever builds translation context for a chunk from its
// structural neighbour and, optionally, from similarity lookups across the
// whole document.
package retriever

import (
	"strings"

	"github.com/zaminworks/zamintran/internal"
	"github.com/zaminworks/zamintran/internal/vectorstore"
)

const (
	// contextTail is how many trailing runes of the preceding chunk are
	// prepended as source-side context.
	contextTail = 100
	// SimilarityThreshold filters similarity lookups; below it a chunk is
	// not considered related.
	SimilarityThreshold = 0.7
	// DefaultTopK bounds similarity lookups.
	DefaultTopK = 3
)

// Retriever answers context queries against a populated vector store.
type Retriever struct {
	store *vectorstore.Store
}

// New creates a Retriever over the given store.
func New(store *vectorstore.Store) *Retriever {
	return &Retriever{store: store}
}

// TranslationContext returns the tail of the chunk immediately preceding
// chunk (by id) joined with the chunk's own text. The first chunk, or a
// chunk whose predecessor is missing, gets its own text only.
func (r *Retriever) TranslationContext(chunk internal.DocumentChunk, all []internal.DocumentChunk) string {
	var parts []string

	if chunk.ID > 0 {
		for _, c := range all {
			if c.ID == chunk.ID-1 {
				parts = append(parts, tailRunes(c.Text, contextTail))
				break
			}
		}
	}
	parts = append(parts, chunk.Text)

	return strings.Join(parts, " ")
}

// RetrieveSimilar returns stored chunks scoring above SimilarityThreshold
// for the query, best first. Used for cross-document consistency lookups;
// the main pipeline does not depend on it.
func (r *Retriever) RetrieveSimilar(query string, topK int) []internal.DocumentChunk {
	if topK <= 0 {
		topK = DefaultTopK
	}

	var chunks []internal.DocumentChunk
	for _, res := range r.store.Search(query, topK) {
		if res.Score > SimilarityThreshold {
			chunks = append(chunks, res.Chunk)
		}
	}
	return chunks
}

func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
