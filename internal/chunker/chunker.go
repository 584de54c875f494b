// Package chunker splits a document into overlapping, page-tagged chunks
// while preserving sentence integrity. Sentence boundaries recognise the
// Latin enders (. ! ?) as well as the Devanagari danda (।) and double danda
// (॥) used in Urdu/Hindi land records. Successive chunks share a literal
// overlap so an LLM translator keeps context across split points; the
// pipeline deduplicates the overlap again during reassembly.
package chunker

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zaminworks/zamintran/internal"
)

const (
	// DefaultChunkSize is the target chunk length in runes. 1200 keeps a
	// chunk plus prompt boilerplate well inside a single generation call.
	DefaultChunkSize = 1200
	// DefaultOverlap is the number of trailing runes of a finished chunk
	// seeded into the next one.
	DefaultOverlap = 150
)

// pageMarkerRe matches the literal page markers emitted by the OCR layer.
var pageMarkerRe = regexp.MustCompile(`--- Page (\d+) ---`)

// pageMark records which page the text starting at a given rune offset
// belongs to. Offsets are ascending in emission order.
type pageMark struct {
	offset int
	page   int
}

// ChunkDocument splits text into ordered chunks of at most chunkSize runes,
// closing chunks only at sentence boundaries. The size ceiling is soft: a
// single sentence longer than chunkSize is kept whole rather than truncated.
// When chunkSize or overlap are not positive the defaults are used; an
// overlap of 0 disables seeding. Empty or whitespace-only input yields nil.
func ChunkDocument(text string, chunkSize, overlap int) []internal.DocumentChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}

	body, marks := stripPageMarkers(text)
	sentences := splitSentences(body)

	var chunks []internal.DocumentChunk
	cur := ""
	curStart := 0

	closeChunk := func() {
		trimmed := strings.TrimSpace(cur)
		if trimmed == "" {
			return
		}
		chunks = append(chunks, internal.DocumentChunk{
			ID:         len(chunks),
			Text:       trimmed,
			StartPos:   curStart,
			EndPos:     curStart + utf8.RuneCountInString(cur),
			PageNumber: pageAt(marks, curStart),
		})
	}

	for _, sentence := range sentences {
		if utf8.RuneCountInString(cur)+utf8.RuneCountInString(sentence) <= chunkSize {
			cur += sentence + " "
			continue
		}
		closeChunk()

		if len(chunks) > 0 && overlap > 0 {
			prev := chunks[len(chunks)-1]
			seed := tailRunes(prev.Text, overlap)
			curStart = prev.EndPos - utf8.RuneCountInString(seed)
			cur = seed + " " + sentence + " "
		} else {
			if len(chunks) > 0 {
				curStart = chunks[len(chunks)-1].EndPos
			}
			cur = sentence + " "
		}
	}
	closeChunk()

	return chunks
}

// stripPageMarkers removes the page markers from text and records, for every
// stretch of body text, the page it falls on. Text before the first marker
// is page 1.
func stripPageMarkers(text string) (string, []pageMark) {
	var b strings.Builder
	var marks []pageMark
	page := 1
	offset := 0

	keep := func(part string) {
		if part == "" {
			return
		}
		marks = append(marks, pageMark{offset: offset, page: page})
		offset += utf8.RuneCountInString(part)
		b.WriteString(part)
	}

	last := 0
	for _, m := range pageMarkerRe.FindAllStringSubmatchIndex(text, -1) {
		keep(text[last:m[0]])
		if n, err := strconv.Atoi(text[m[2]:m[3]]); err == nil {
			page = n
		}
		last = m[1]
	}
	keep(text[last:])

	return b.String(), marks
}

// pageAt returns the page of the last mark at or before the given rune
// offset, defaulting to page 1 for unmarked documents.
func pageAt(marks []pageMark, offset int) int {
	page := 1
	for _, m := range marks {
		if m.offset > offset {
			break
		}
		page = m.page
	}
	return page
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '।', '॥':
		return true
	}
	return false
}

// splitSentences cuts text at whitespace runs that immediately follow a
// sentence ender. Segments are trimmed and empty ones dropped, so the
// punctuation stays attached to its sentence.
func splitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	emit := func(end int) {
		if seg := strings.TrimSpace(string(runes[start:end])); seg != "" {
			sentences = append(sentences, seg)
		}
	}

	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) || i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		emit(i + 1)
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		emit(len(runes))
	}

	return sentences
}

// tailRunes returns the last n runes of s, or all of s when it is shorter.
func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
