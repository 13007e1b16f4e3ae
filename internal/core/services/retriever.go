package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lumenchat/lumen/internal/core/domain"
	"github.com/lumenchat/lumen/internal/core/ports/driven"
	"github.com/lumenchat/lumen/internal/logger"
)

// Retriever performs brute-force cosine-similarity search over the chunk
// store. Each query is O(N) in stored chunks; at document-collection scale
// this is an accepted tradeoff, not a defect.
type Retriever struct {
	store    driven.ChunkStore
	embedder driven.EmbeddingService
}

// NewRetriever creates a retriever over the given store and embedder.
func NewRetriever(store driven.ChunkStore, embedder driven.EmbeddingService) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Search embeds the query and returns the topK most similar chunks,
// strictly descending by similarity with ties broken by fetch order.
// An empty query yields an empty result, never an error.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" || topK <= 0 {
		return nil, nil
	}

	hits, err := r.scoreAll(ctx, query)
	if err != nil {
		return nil, err
	}

	return takeRanked(hits, topK), nil
}

// SearchByFormat restricts results to chunks with the given format tag.
// It scores all chunks, keeps 2*topK candidates before filtering, and may
// legitimately return fewer than topK - an accepted approximation.
func (r *Retriever) SearchByFormat(
	ctx context.Context, query string, topK int, formatTag string,
) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" || topK <= 0 {
		return nil, nil
	}

	hits, err := r.scoreAll(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates := hits
	if len(candidates) > 2*topK {
		candidates = candidates[:2*topK]
	}

	filtered := make([]domain.SearchHit, 0, topK)
	for _, hit := range candidates {
		if hit.Chunk.Metadata.FormatTag == formatTag {
			filtered = append(filtered, hit)
		}
	}
	logger.Debug("Format filter %q: %d of %d candidates", formatTag, len(filtered), len(candidates))

	return takeRanked(filtered, topK), nil
}

// scoreAll embeds the query and scores every stored chunk that has an
// embedding, returning hits sorted descending by similarity.
func (r *Retriever) scoreAll(ctx context.Context, query string) ([]domain.SearchHit, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	chunks, err := r.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	hits := make([]domain.SearchHit, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Embedding == nil {
			continue
		}
		hits = append(hits, domain.SearchHit{
			Chunk:      chunk,
			Similarity: CosineSimilarity(queryVec, chunk.Embedding),
		})
	}

	// Stable sort keeps fetch order on ties.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	logger.Debug("Scored %d embedded chunks", len(hits))
	return hits, nil
}

// takeRanked truncates to k and assigns 1-based ranks.
func takeRanked(hits []domain.SearchHit, k int) []domain.SearchHit {
	if len(hits) > k {
		hits = hits[:k]
	}
	for i := range hits {
		hits[i].Rank = i + 1
	}
	return hits
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|). It returns 0, never NaN,
// when either vector has zero magnitude or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
