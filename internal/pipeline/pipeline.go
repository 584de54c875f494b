// Package pipeline wires the chunker, vector store, retriever, prompt
// builder, generation client, cache and quality evaluator into the
// translation loop. The loop is strictly sequential: chunk i's prompt
// carries chunk i-1's translated tail, so no generation may start before
// the previous chunk settled.
//
// The same per-chunk state machine backs both entry points:
// TranslateStream surfaces it as a lazy event sequence, TranslateDocument
// drains that sequence internally and returns the assembled result.
package pipeline

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zaminworks/zamintran/internal"
	"github.com/zaminworks/zamintran/internal/cache"
	"github.com/zaminworks/zamintran/internal/chunker"
	"github.com/zaminworks/zamintran/internal/detector"
	"github.com/zaminworks/zamintran/internal/embedding"
	"github.com/zaminworks/zamintran/internal/postprocess"
	"github.com/zaminworks/zamintran/internal/prompt"
	"github.com/zaminworks/zamintran/internal/quality"
	"github.com/zaminworks/zamintran/internal/retriever"
	"github.com/zaminworks/zamintran/internal/vectorstore"
)

const (
	// DefaultChunkDelay is the pause between consecutive chunk
	// generations, on top of the generator's own call pacing.
	DefaultChunkDelay = 300 * time.Millisecond

	// translatedContextTail is how many trailing runes of the previous
	// chunk's translation feed the next continuation prompt.
	translatedContextTail = 200

	// previewRunes caps the text carried in streaming events.
	previewRunes = 100

	// failedChunkHead is how much of the source text the failure marker
	// quotes.
	failedChunkHead = 100
)

// Generator is the capability boundary to the external generation endpoint.
type Generator interface {
	// Generate returns generated text for a prompt, or an error.
	Generate(ctx context.Context, prompt string) (string, error)
	// RequestCount reports successful calls made so far.
	RequestCount() int64
}

// Config tunes one pipeline instance. Zero values select defaults; set
// ChunkDelay negative to disable the inter-chunk pause.
type Config struct {
	ChunkSize  int
	Overlap    int
	CacheSize  int
	ChunkDelay time.Duration
	// ValidateLanguage enables the advisory output-language check. Off by
	// default: building the language detector is expensive.
	ValidateLanguage bool
}

func (c *Config) applyDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = chunker.DefaultChunkSize
	}
	if c.Overlap <= 0 {
		c.Overlap = chunker.DefaultOverlap
	}
	if c.CacheSize <= 0 {
		c.CacheSize = cache.DefaultSize
	}
	if c.ChunkDelay == 0 {
		c.ChunkDelay = DefaultChunkDelay
	}
}

// ChunkError records a failed chunk in run metadata.
type ChunkError struct {
	ChunkID int    `json:"chunk_id"`
	Message string `json:"error"`
}

// Metadata describes one completed (or rejected) translation run. It is
// owned by that run alone.
type Metadata struct {
	RunID            string        `json:"run_id"`
	TotalChunks      int           `json:"total_chunks"`
	SuccessfulChunks int           `json:"successful_chunks"`
	FailedChunks     int           `json:"failed_chunks"`
	CachedChunks     int           `json:"cached_chunks"`
	Errors           []ChunkError  `json:"errors,omitempty"`
	ProcessingTime   time.Duration `json:"processing_time"`
	OriginalLength   int           `json:"original_length"`
	TranslatedLength int           `json:"translated_length"`
	QualityCoverage  float64       `json:"quality_coverage"`
	QualityIssues    []string      `json:"quality_issues,omitempty"`
	CacheStats       cache.Stats   `json:"cache_stats"`
	APIRequests      int64         `json:"api_requests"`
	// Error is set when the run could not start at all (empty document).
	Error string `json:"error,omitempty"`
}

// EventType tags a streaming event. Consumers should ignore tags they do
// not recognise; the set may grow.
type EventType string

const (
	EventStart         EventType = "start"
	EventProgress      EventType = "progress"
	EventChunkComplete EventType = "chunk_complete"
	EventChunkError    EventType = "chunk_error"
	EventComplete      EventType = "complete"
	EventError         EventType = "error"
)

// Event is one streaming progress record.
type Event struct {
	Type            EventType `json:"type"`
	ChunkID         int       `json:"chunk_id,omitempty"`
	Current         int       `json:"current,omitempty"`
	Total           int       `json:"total,omitempty"`
	Percentage      int       `json:"percentage,omitempty"`
	TotalCharacters int       `json:"total_characters,omitempty"`
	Status          string    `json:"status,omitempty"`
	Cached          bool      `json:"cached,omitempty"`
	Preview         string    `json:"preview,omitempty"`
	Error           string    `json:"error,omitempty"`
	TranslatedText  string    `json:"translated_text,omitempty"`
	Metadata        *Metadata `json:"metadata,omitempty"`
}

// ProgressFunc observes blocking-mode progress. Purely informational.
type ProgressFunc func(current, total int, status string)

// Pipeline owns the per-run state (vector store, cache, generator pacing).
// One instance serves one run at a time; concurrent documents need one
// instance each.
type Pipeline struct {
	cfg   Config
	gen   Generator
	store *vectorstore.Store
	retr  *retriever.Retriever
	cache *cache.Cache
	eval  *quality.Evaluator
	log   *zap.Logger
}

// New creates a Pipeline around a generation client with fresh cache and
// vector-store state. A nil logger disables logging.
func New(gen Generator, cfg Config, logger *zap.Logger) *Pipeline {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	store := vectorstore.New(embedding.New(0))

	var det *detector.Detector
	if cfg.ValidateLanguage {
		det = detector.New()
	}

	return &Pipeline{
		cfg:   cfg,
		gen:   gen,
		store: store,
		retr:  retriever.New(store),
		cache: cache.New(cfg.CacheSize),
		eval:  quality.New(det),
		log:   logger,
	}
}

// CacheStats exposes the translation cache snapshot.
func (p *Pipeline) CacheStats() cache.Stats {
	return p.cache.GetStats()
}

// SimilarChunks finds stored chunks related to query, for consistency
// lookups across a document after (or during) a run.
func (p *Pipeline) SimilarChunks(query string, topK int) []internal.DocumentChunk {
	return p.retr.RetrieveSimilar(query, topK)
}

// TranslateDocument runs the full pipeline and blocks until done. The
// translated document is always returned, with failure markers substituted
// for chunks that could not be generated; inspect the metadata for errors.
func (p *Pipeline) TranslateDocument(ctx context.Context, text, sourceLang, targetLang string, progress ProgressFunc) (string, *Metadata) {
	var (
		finalText string
		md        *Metadata
	)

	for ev := range p.TranslateStream(ctx, text, sourceLang, targetLang) {
		switch ev.Type {
		case EventStart:
			if progress != nil {
				progress(0, ev.Total, "Preparing document...")
			}
		case EventProgress:
			if progress != nil {
				progress(ev.Current, ev.Total, ev.Status)
			}
		case EventComplete:
			finalText = ev.TranslatedText
			md = ev.Metadata
			if progress != nil {
				progress(ev.Total, ev.Total, "Complete!")
			}
		case EventError:
			md = ev.Metadata
		}
	}

	return finalText, md
}

// TranslateStream runs the pipeline as a lazy event sequence: one start
// event, then per-chunk progress and chunk_complete/chunk_error events, and
// a terminal complete event. The sequence is finite and non-restartable;
// stopping iteration abandons the remaining chunks.
func (p *Pipeline) TranslateStream(ctx context.Context, text, sourceLang, targetLang string) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		p.run(ctx, text, sourceLang, targetLang, yield)
	}
}

func (p *Pipeline) run(ctx context.Context, text, sourceLang, targetLang string, yield func(Event) bool) {
	start := time.Now()
	runID := uuid.NewString()
	log := p.log.With(zap.String("run_id", runID))

	chunks := chunker.ChunkDocument(text, p.cfg.ChunkSize, p.cfg.Overlap)
	total := len(chunks)

	md := &Metadata{
		RunID:          runID,
		TotalChunks:    total,
		OriginalLength: len([]rune(text)),
	}

	if total == 0 {
		md.Error = "no text to translate"
		log.Warn("nothing to translate")
		yield(Event{Type: EventError, Error: md.Error, Metadata: md})
		return
	}

	log.Info("processing document",
		zap.Int("chunks", total),
		zap.Int("characters", md.OriginalLength))

	if !yield(Event{Type: EventStart, Total: total, TotalCharacters: md.OriginalLength}) {
		return
	}

	// Embeddings are computed up front so similarity lookups work during
	// and after the run; translation itself does not depend on them.
	p.store.Clear()
	p.store.Add(chunks)

	parts := make([]string, 0, total)
	prevTail := ""

	for i, chunk := range chunks {
		ev := Event{
			Type:       EventProgress,
			Current:    i + 1,
			Total:      total,
			Percentage: (i + 1) * 100 / total,
			Status:     fmt.Sprintf("Translating chunk %d of %d", i+1, total),
		}
		if !yield(ev) {
			return
		}

		if translation, ok := p.cache.Get(chunk.Text); ok {
			parts = append(parts, translation)
			md.CachedChunks++
			md.SuccessfulChunks++
			prevTail = tailRunes(translation, translatedContextTail)
			if !yield(Event{Type: EventChunkComplete, ChunkID: chunk.ID, Cached: true, Preview: preview(translation)}) {
				return
			}
			continue
		}

		contextText := ""
		if i > 0 {
			contextText = prevTail
		}
		promptText := prompt.Build(chunk.Text, sourceLang, targetLang, contextText)

		translation, err := p.gen.Generate(ctx, promptText)
		if err != nil {
			md.FailedChunks++
			md.Errors = append(md.Errors, ChunkError{ChunkID: chunk.ID, Message: err.Error()})
			parts = append(parts, failureMarker(chunk.Text))
			log.Warn("chunk failed",
				zap.Int("chunk_id", chunk.ID),
				zap.Error(err))
			if !yield(Event{Type: EventChunkError, ChunkID: chunk.ID, Error: err.Error()}) {
				return
			}
		} else {
			translation = postprocess.Clean(translation)
			p.cache.Set(chunk.Text, translation)
			parts = append(parts, translation)
			md.SuccessfulChunks++
			prevTail = tailRunes(translation, translatedContextTail)
			if !yield(Event{Type: EventChunkComplete, ChunkID: chunk.ID, Preview: preview(translation)}) {
				return
			}
		}

		if i < total-1 && p.cfg.ChunkDelay > 0 {
			// Load shedding between chunks; a cancelled context just cuts
			// the pause short and lets the next chunk fail fast.
			_ = sleepCtx(ctx, p.cfg.ChunkDelay)
		}
	}

	finalText := CombineChunks(parts)

	report := p.eval.Evaluate(text, finalText, targetLang)
	md.ProcessingTime = time.Since(start)
	md.TranslatedLength = len([]rune(finalText))
	md.QualityCoverage = report.Coverage
	md.QualityIssues = report.Issues
	md.CacheStats = p.cache.GetStats()
	md.APIRequests = p.gen.RequestCount()

	log.Info("translation complete",
		zap.Duration("elapsed", md.ProcessingTime),
		zap.Int("chunks", total),
		zap.Int("failed", md.FailedChunks),
		zap.Int("cached", md.CachedChunks))

	yield(Event{Type: EventComplete, Total: total, TranslatedText: finalText, Metadata: md})
}

func failureMarker(chunkText string) string {
	return fmt.Sprintf("[Translation failed: %s...]", headRunes(chunkText, failedChunkHead))
}

func preview(s string) string {
	if len([]rune(s)) <= previewRunes {
		return s
	}
	return headRunes(s, previewRunes) + "..."
}

func headRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
