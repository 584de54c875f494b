package retriever_test

import (
	"strings"
	"testing"

	"github.com/zaminworks/zamintran/internal"
	"github.com/zaminworks/zamintran/internal/embedding"
	"github.com/zaminworks/zamintran/internal/retriever"
	"github.com/zaminworks/zamintran/internal/vectorstore"
)

func TestTranslationContext_FirstChunk(t *testing.T) {
	r := retriever.New(vectorstore.New(embedding.New(0)))
	chunks := []internal.DocumentChunk{
		{ID: 0, Text: "first chunk text"},
		{ID: 1, Text: "second chunk text"},
	}

	if got := r.TranslationContext(chunks[0], chunks); got != "first chunk text" {
		t.Errorf("first chunk context = %q, want its own text", got)
	}
}

func TestTranslationContext_WithPredecessor(t *testing.T) {
	r := retriever.New(vectorstore.New(embedding.New(0)))
	long := strings.Repeat("x", 150) + "TAIL-MARKER"
	chunks := []internal.DocumentChunk{
		{ID: 0, Text: long},
		{ID: 1, Text: "current chunk"},
	}

	got := r.TranslationContext(chunks[1], chunks)

	if !strings.HasSuffix(got, " current chunk") {
		t.Fatalf("context does not end with current text: %q", got)
	}
	prefix := strings.TrimSuffix(got, " current chunk")
	if len([]rune(prefix)) != 100 {
		t.Errorf("predecessor tail is %d runes, want 100", len([]rune(prefix)))
	}
	if !strings.Contains(prefix, "TAIL-MARKER") {
		t.Errorf("predecessor tail lost its ending: %q", prefix)
	}
}

func TestTranslationContext_MissingPredecessor(t *testing.T) {
	r := retriever.New(vectorstore.New(embedding.New(0)))
	chunks := []internal.DocumentChunk{
		{ID: 5, Text: "orphan chunk"},
	}

	if got := r.TranslationContext(chunks[0], chunks); got != "orphan chunk" {
		t.Errorf("context for orphan = %q, want its own text", got)
	}
}

func TestRetrieveSimilar_ThresholdFilter(t *testing.T) {
	store := vectorstore.New(embedding.New(0))
	store.Add([]internal.DocumentChunk{
		{ID: 0, Text: "khasra number 142 village Rampur owner Malik"},
		{ID: 1, Text: "entirely different monsoon rainfall tables"},
	})
	r := retriever.New(store)

	got := r.RetrieveSimilar("khasra number 142 village Rampur owner Malik", 0)

	if len(got) == 0 {
		t.Fatal("expected the near-identical chunk to pass the threshold")
	}
	for _, c := range got {
		if c.ID == 1 {
			t.Error("unrelated chunk passed the similarity threshold")
		}
	}
}
