// Package embedding provides a cheap, dependency-free text embedder used for
// approximate similarity between document chunks. It hashes character
// trigrams and words into a fixed number of dimensions; this is a surrogate
// for real semantic embeddings, good enough for near-duplicate and
// neighbourhood lookups at per-document scale.
package embedding

import (
	"hash/fnv"
	"math"
	"strings"
)

// DefaultDimension is the embedding vector length.
const DefaultDimension = 256

const (
	trigramWeight = 1.0
	wordWeight    = 0.5
)

// Embedder turns text into unit-length vectors of a fixed dimension.
// Identical text always produces an identical vector: hashing uses FNV-1a,
// which is stable across processes and instances, and no state accumulates
// between calls.
type Embedder struct {
	dim int
}

// New returns an Embedder of the given dimension, or DefaultDimension when
// dim is not positive.
func New(dim int) *Embedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Embedder{dim: dim}
}

// Dimension returns the vector length produced by Embed.
func (e *Embedder) Dimension() int { return e.dim }

// Embed returns the L2-normalized embedding of text. Empty (or
// whitespace-only) text embeds to the zero vector.
func (e *Embedder) Embed(text string) []float64 {
	vec := make([]float64, e.dim)

	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return vec
	}

	runes := []rune(text)
	for i := 0; i+3 <= len(runes); i++ {
		vec[e.bucket(string(runes[i:i+3]))] += trigramWeight
	}
	for _, word := range strings.Fields(text) {
		vec[e.bucket(word)] += wordWeight
	}

	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	if sum == 0 {
		return vec
	}
	mag := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= mag
	}
	return vec
}

// Similarity returns the dot product of two vectors. For vectors produced by
// Embed this equals cosine similarity, in [-1, 1].
func (e *Embedder) Similarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	return dot
}

func (e *Embedder) bucket(s string) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % uint32(e.dim))
}
