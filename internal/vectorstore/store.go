// Package vectorstore holds document chunks and their embeddings in memory
// and answers top-k similarity queries with a brute-force scan. At
// per-document scale (hundreds of chunks) a linear scan beats any index.
package vectorstore

import (
	"sort"
	"sync"

	"github.com/zaminworks/zamintran/internal"
	"github.com/zaminworks/zamintran/internal/embedding"
)

// Result pairs a stored chunk with its similarity to a query.
type Result struct {
	Chunk internal.DocumentChunk
	Score float64
}

// Store is an in-memory vector store. It is owned by a single pipeline run;
// the mutex only guards against accidental concurrent reads during
// streaming consumption, not multi-run sharing.
type Store struct {
	mu       sync.RWMutex
	embedder *embedding.Embedder
	chunks   []internal.DocumentChunk
}

// New creates a Store backed by the given embedder.
func New(embedder *embedding.Embedder) *Store {
	return &Store{embedder: embedder}
}

// Add embeds and stores the given chunks. Chunks that already carry an
// embedding keep it; the caller's slice elements are updated in place so
// later structural lookups see the computed vectors.
func (s *Store) Add(chunks []internal.DocumentChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range chunks {
		if chunks[i].Embedding == nil {
			chunks[i].Embedding = s.embedder.Embed(chunks[i].Text)
		}
		s.chunks = append(s.chunks, chunks[i])
	}
}

// Search returns up to topK stored chunks most similar to query, scores
// descending. An empty store yields an empty result.
func (s *Store) Search(query string, topK int) []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.chunks) == 0 || topK <= 0 {
		return nil
	}

	queryVec := s.embedder.Embed(query)

	results := make([]Result, 0, len(s.chunks))
	for _, c := range s.chunks {
		results = append(results, Result{
			Chunk: c,
			Score: s.embedder.Similarity(queryVec, c.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results
}

// Len reports the number of stored chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Clear resets the store between documents.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
}
