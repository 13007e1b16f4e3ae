package services

import (
	"context"
	"strings"
	"sync"

	"github.com/lumenchat/lumen/internal/core/domain"
	"github.com/lumenchat/lumen/internal/core/ports/driven"
)

// fakeEmbedder returns canned vectors keyed by text prefix, with a default
// for everything else. Texts starting with failPrefix fail.
type fakeEmbedder struct {
	vectors    map[string][]float32
	defaultVec []float32
	err        error
	failPrefix string
	calls      int
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.failPrefix != "" && strings.HasPrefix(text, f.failPrefix) {
		return nil, domain.NewProviderError(500, "embedding failed")
	}
	for prefix, vec := range f.vectors {
		if strings.HasPrefix(text, prefix) {
			return vec, nil
		}
	}
	return f.defaultVec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return len(f.defaultVec) }
func (f *fakeEmbedder) ModelName() string            { return "fake-embed" }
func (f *fakeEmbedder) Ping(context.Context) error   { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

// memoryStore is an in-memory ChunkStore for service tests.
type memoryStore struct {
	mu     sync.Mutex
	chunks []domain.Chunk
	err    error
}

var _ driven.ChunkStore = (*memoryStore)(nil)

func (m *memoryStore) Upsert(ctx context.Context, chunk domain.Chunk) error {
	return m.UpsertBatch(ctx, []domain.Chunk{chunk})
}

func (m *memoryStore) UpsertBatch(_ context.Context, chunks []domain.Chunk) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chunk := range chunks {
		replaced := false
		for i, existing := range m.chunks {
			if existing.ID == chunk.ID {
				m.chunks[i] = chunk
				replaced = true
				break
			}
		}
		if !replaced {
			m.chunks = append(m.chunks, chunk)
		}
	}
	return nil
}

func (m *memoryStore) FetchAll(context.Context) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Chunk, len(m.chunks))
	copy(out, m.chunks)
	return out, nil
}

func (m *memoryStore) FetchBySource(_ context.Context, sourcePath string) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Chunk
	for _, chunk := range m.chunks {
		if chunk.SourcePath == sourcePath {
			out = append(out, chunk)
		}
	}
	return out, nil
}

func (m *memoryStore) DeleteBySource(_ context.Context, sourcePath string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.chunks[:0]
	for _, chunk := range m.chunks {
		if chunk.SourcePath != sourcePath {
			kept = append(kept, chunk)
		}
	}
	m.chunks = kept
	return nil
}

func (m *memoryStore) DeleteAll(context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = nil
	return nil
}

func (m *memoryStore) Stats(context.Context) (domain.StoreStats, error) {
	if m.err != nil {
		return domain.StoreStats{}, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sources := make(map[string]bool)
	for _, chunk := range m.chunks {
		sources[chunk.SourcePath] = true
	}
	return domain.StoreStats{
		DistinctSourceCount: len(sources),
		TotalChunkCount:     len(m.chunks),
	}, nil
}

func (m *memoryStore) Close() error { return nil }

// fakeLLM replies from a queue of canned responses, recording prompts.
type fakeLLM struct {
	replies []string
	err     error
	prompts []string
}

var _ driven.LLMService = (*fakeLLM)(nil)

func (f *fakeLLM) Complete(_ context.Context, prompt string, _ driven.CompleteOptions) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func (f *fakeLLM) ModelName() string          { return "fake-llm" }
func (f *fakeLLM) Ping(context.Context) error { return nil }
func (f *fakeLLM) Close() error               { return nil }

// testHit builds a SearchHit with the given similarity.
func testHit(id, content string, similarity float64, rank int) domain.SearchHit {
	return domain.SearchHit{
		Chunk: domain.Chunk{
			ID:         id,
			SourcePath: "doc.md",
			SourceName: "doc.md",
			Content:    content,
		},
		Similarity: similarity,
		Rank:       rank,
	}
}
