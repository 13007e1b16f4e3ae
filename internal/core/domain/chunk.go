package domain

import "time"

// ChunkMetadata holds per-chunk descriptive fields.
// StartLine, EndLine, and Language are optional; zero values mean unset.
type ChunkMetadata struct {
	// FormatTag identifies the source format (e.g. "markdown", "text", "code").
	FormatTag string

	// StartLine is the 1-based first line of the chunk within its source.
	StartLine int

	// EndLine is the 1-based last line of the chunk within its source.
	EndLine int

	// TokenEstimate is a cheap heuristic token count.
	// It is never produced by a real tokenizer; callers must not rely on exactness.
	TokenEstimate int

	// Language is an optional language hint (e.g. "go", "en").
	Language string
}

// Chunk is the atomic unit of retrieval: a bounded slice of a source
// document, optionally carrying its embedding vector.
//
// Invariant: within one SourcePath, SequenceIndex values are unique and
// increasing in storage order.
type Chunk struct {
	// ID is the globally unique identifier for the chunk.
	ID string

	// SourcePath is the original document location.
	SourcePath string

	// SourceName is the human-readable name of the source document.
	SourceName string

	// Content is the chunk text.
	Content string

	// SequenceIndex is the ordinal position within the source document.
	SequenceIndex int

	// Embedding is the vector representation for semantic retrieval.
	// Nil when the chunk has not been embedded.
	Embedding []float32

	// Metadata contains chunk-specific descriptive fields.
	Metadata ChunkMetadata

	// CreatedAt is when the chunk was indexed.
	CreatedAt time.Time
}

// SourceDocument is a document handed to the indexer by the surrounding
// product (text extraction happens upstream; Content is already clean text).
type SourceDocument struct {
	// Path is the original location (file path, URL, etc).
	Path string

	// Name is the human-readable display name.
	Name string

	// Content is the extracted plain text.
	Content string

	// FormatTag identifies the source format.
	FormatTag string

	// Language is an optional language hint.
	Language string
}
