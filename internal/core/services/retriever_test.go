package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenchat/lumen/internal/core/domain"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		v := []float32{0.3, -0.7, 0.2}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		v := []float32{1, 2, 3}
		neg := []float32{-1, -2, -3}
		assert.InDelta(t, -1.0, CosineSimilarity(v, neg), 1e-9)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	})

	t.Run("zero vector returns zero not NaN", func(t *testing.T) {
		got := CosineSimilarity([]float32{0, 0}, []float32{1, 2})
		assert.Equal(t, 0.0, got)
		assert.False(t, math.IsNaN(got))
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 2}))
	})
}

// seedStore returns a store holding two chunks with orthogonal embeddings,
// one about the sky and one about grass, both from doc.md.
func seedStore(t *testing.T) *memoryStore {
	t.Helper()
	store := &memoryStore{}
	err := store.UpsertBatch(context.Background(), []domain.Chunk{
		{
			ID: "a", SourcePath: "doc.md", SourceName: "doc.md",
			Content: "The sky is blue.", SequenceIndex: 0,
			Embedding: []float32{1, 0},
			Metadata:  domain.ChunkMetadata{FormatTag: "markdown"},
		},
		{
			ID: "b", SourcePath: "doc.md", SourceName: "doc.md",
			Content: "Grass is green.", SequenceIndex: 1,
			Embedding: []float32{0, 1},
			Metadata:  domain.ChunkMetadata{FormatTag: "markdown"},
		},
	})
	require.NoError(t, err)
	return store
}

func TestRetriever_Search(t *testing.T) {
	store := seedStore(t)
	embedder := &fakeEmbedder{defaultVec: []float32{0.9, 0.1}}
	retriever := NewRetriever(store, embedder)

	hits, err := retriever.Search(context.Background(), "sky color", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "a", hits[0].Chunk.ID)
	assert.InDelta(t, 0.99, hits[0].Similarity, 0.01)
	assert.Equal(t, 1, hits[0].Rank)

	assert.Equal(t, "b", hits[1].Chunk.ID)
	assert.InDelta(t, 0.11, hits[1].Similarity, 0.01)
	assert.Equal(t, 2, hits[1].Rank)
}

func TestRetriever_Search_TopKTruncation(t *testing.T) {
	store := seedStore(t)
	embedder := &fakeEmbedder{defaultVec: []float32{0.9, 0.1}}
	retriever := NewRetriever(store, embedder)

	hits, err := retriever.Search(context.Background(), "sky color", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Chunk.ID)
}

func TestRetriever_Search_EmptyQuery(t *testing.T) {
	retriever := NewRetriever(&memoryStore{}, &fakeEmbedder{defaultVec: []float32{1}})

	hits, err := retriever.Search(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRetriever_Search_SkipsUnembeddedChunks(t *testing.T) {
	store := seedStore(t)
	require.NoError(t, store.Upsert(context.Background(), domain.Chunk{
		ID: "c", SourcePath: "other.md", Content: "no embedding yet",
	}))

	retriever := NewRetriever(store, &fakeEmbedder{defaultVec: []float32{0.9, 0.1}})
	hits, err := retriever.Search(context.Background(), "sky color", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestRetriever_Search_StrictlyDescending(t *testing.T) {
	store := &memoryStore{}
	for i, vec := range [][]float32{{1, 0}, {0.5, 0.5}, {0, 1}, {0.8, 0.2}} {
		require.NoError(t, store.Upsert(context.Background(), domain.Chunk{
			ID: string(rune('a' + i)), SourcePath: "doc.md",
			Content: "chunk", SequenceIndex: i, Embedding: vec,
		}))
	}

	retriever := NewRetriever(store, &fakeEmbedder{defaultVec: []float32{1, 0}})
	hits, err := retriever.Search(context.Background(), "query", 10)
	require.NoError(t, err)

	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Similarity, hits[i].Similarity)
		assert.Equal(t, i+1, hits[i].Rank)
	}
}

func TestRetriever_SearchByFormat(t *testing.T) {
	store := seedStore(t)
	require.NoError(t, store.Upsert(context.Background(), domain.Chunk{
		ID: "c", SourcePath: "notes.txt", SourceName: "notes.txt",
		Content: "The sky again.", Embedding: []float32{0.95, 0.05},
		Metadata: domain.ChunkMetadata{FormatTag: "text"},
	}))

	retriever := NewRetriever(store, &fakeEmbedder{defaultVec: []float32{0.9, 0.1}})

	hits, err := retriever.SearchByFormat(context.Background(), "sky color", 2, "text")
	require.NoError(t, err)
	require.Len(t, hits, 1) // fewer than topK is legitimate
	assert.Equal(t, "c", hits[0].Chunk.ID)
	assert.Equal(t, 1, hits[0].Rank)
}

func TestRetriever_Search_EmbeddingFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: domain.NewProviderError(500, "boom")}
	retriever := NewRetriever(seedStore(t), embedder)

	_, err := retriever.Search(context.Background(), "sky", 5)
	require.Error(t, err)

	var provErr *domain.ProviderError
	assert.ErrorAs(t, err, &provErr)
}
