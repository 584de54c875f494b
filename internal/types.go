package internal

// DocumentChunk is the unit of translation work produced by the chunker.
//
// IDs are assigned in emission order starting at 0 and are strictly
// increasing within a document. StartPos and EndPos are rune offsets into
// the page-marker-stripped full text, with EndPos ≥ StartPos. The embedding
// is computed lazily by the vector store on insertion and is never mutated
// afterwards.
type DocumentChunk struct {
	ID         int               `json:"id"`
	Text       string            `json:"text"`
	StartPos   int               `json:"start_pos"`
	EndPos     int               `json:"end_pos"`
	PageNumber int               `json:"page_number,omitempty"`
	Embedding  []float64         `json:"-"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
