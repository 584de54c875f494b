package embedding_test

import (
	"math"
	"testing"

	"github.com/zaminworks/zamintran/internal/embedding"
)

func TestEmbed_EmptyText(t *testing.T) {
	e := embedding.New(0)

	for _, text := range []string{"", "   "} {
		vec := e.Embed(text)
		if len(vec) != embedding.DefaultDimension {
			t.Fatalf("expected dimension %d, got %d", embedding.DefaultDimension, len(vec))
		}
		for i, x := range vec {
			if x != 0 {
				t.Fatalf("expected zero vector for %q, dimension %d is %v", text, i, x)
			}
		}
	}
}

func TestEmbed_UnitNorm(t *testing.T) {
	e := embedding.New(256)

	for _, text := range []string{
		"khasra number 142",
		"The record of rights names the owner and the heir.",
		"خسرہ نمبر",
	} {
		vec := e.Embed(text)
		var sum float64
		for _, x := range vec {
			sum += x * x
		}
		if norm := math.Sqrt(sum); math.Abs(norm-1.0) > 1e-9 {
			t.Errorf("norm of embed(%q) = %v, want 1.0", text, norm)
		}
	}
}

func TestEmbed_Deterministic(t *testing.T) {
	text := "Jamabandi entry for mauza Rampur, khasra 402."

	a := embedding.New(256)
	b := embedding.New(256)

	first := a.Embed(text)
	a.Embed("unrelated text in between should not matter")
	second := a.Embed(text)
	fresh := b.Embed(text)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("repeated call differs at dimension %d", i)
		}
		if first[i] != fresh[i] {
			t.Fatalf("fresh instance differs at dimension %d", i)
		}
	}
}

func TestSimilarity(t *testing.T) {
	e := embedding.New(256)

	a := e.Embed("the owner of khasra 142 is recorded")
	b := e.Embed("the owner of khasra 142 is recorded")
	c := e.Embed("completely unrelated weather report about rainfall")

	if self := e.Similarity(a, b); math.Abs(self-1.0) > 1e-9 {
		t.Errorf("similarity of identical text = %v, want 1.0", self)
	}
	if cross := e.Similarity(a, c); cross >= e.Similarity(a, b) {
		t.Errorf("unrelated text scored %v, not below identical score", cross)
	}
	if zero := e.Similarity(a, e.Embed("")); zero != 0 {
		t.Errorf("similarity with zero vector = %v, want 0", zero)
	}
}
