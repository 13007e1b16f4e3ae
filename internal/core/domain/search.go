package domain

import "time"

// SearchHit is a single retrieval result. Hits are ephemeral and live only
// for the duration of one query.
type SearchHit struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Similarity is the cosine similarity against the query, in [-1, 1].
	// After LLM-judged reranking it holds the blended rerank score.
	Similarity float64

	// Rank is the 1-based position within the result set.
	Rank int
}

// RAGAnswer is a grounded answer produced from retrieved context.
type RAGAnswer struct {
	// AnswerText is the generated answer.
	AnswerText string

	// SourceHits are the hits actually used to ground the answer, in rank order.
	SourceHits []SearchHit

	// Question is the original user question.
	Question string

	// Elapsed is the total wall time for retrieval, reranking, and generation.
	Elapsed time.Duration
}

// CitationValidation is the result of checking that an answer references
// its sources in a recognisable, enumerable form.
type CitationValidation struct {
	// Valid is true when the answer contains at least one recognisable
	// citation of an available source.
	Valid bool

	// Score is the fraction of available sources cited, in [0, 1].
	Score float64
}

// StoreStats are aggregate statistics over the chunk store.
type StoreStats struct {
	// DistinctSourceCount is the number of distinct source paths.
	DistinctSourceCount int

	// TotalChunkCount is the total number of stored chunks.
	TotalChunkCount int
}

// IndexStats summarises a batch indexing run for progress reporting.
// Per-file failures are collected here without aborting the batch.
type IndexStats struct {
	// DocumentsIndexed is the number of documents successfully indexed.
	DocumentsIndexed int

	// ChunksProduced is the total number of chunks written.
	ChunksProduced int

	// FailedFiles lists the source paths that failed to index.
	FailedFiles []string
}
