package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenchat/lumen/internal/core/domain"
	"github.com/lumenchat/lumen/internal/core/ports/driving"
	"github.com/lumenchat/lumen/internal/core/services"
)

// fakeIndexer records calls and returns canned results.
type fakeIndexer struct {
	stats     domain.StoreStats
	indexed   []domain.SourceDocument
	removed   []string
	wiped     bool
	batchErr  error
	lastCount int
}

func (f *fakeIndexer) IndexDocument(_ context.Context, doc domain.SourceDocument) (int, error) {
	f.indexed = append(f.indexed, doc)
	return f.lastCount, nil
}

func (f *fakeIndexer) IndexAll(_ context.Context, docs []domain.SourceDocument) (domain.IndexStats, error) {
	f.indexed = append(f.indexed, docs...)
	if f.batchErr != nil {
		return domain.IndexStats{}, f.batchErr
	}
	chunks := 0
	for range docs {
		chunks += f.lastCount
	}
	return domain.IndexStats{DocumentsIndexed: len(docs), ChunksProduced: chunks}, nil
}

func (f *fakeIndexer) RemoveSource(_ context.Context, sourcePath string) error {
	f.removed = append(f.removed, sourcePath)
	return nil
}

func (f *fakeIndexer) Wipe(_ context.Context) error {
	f.wiped = true
	return nil
}

func (f *fakeIndexer) Stats(_ context.Context) (domain.StoreStats, error) {
	return f.stats, nil
}

// fakeAnswerer records the last call and returns a canned answer.
type fakeAnswerer struct {
	lastQuestion string
	lastOpts     driving.AnswerOptions
	citedCalls   int
	baselineHit  bool
	answer       *domain.RAGAnswer
	err          error
}

func (f *fakeAnswerer) Answer(_ context.Context, question string, opts driving.AnswerOptions) (*domain.RAGAnswer, error) {
	f.lastQuestion = question
	f.lastOpts = opts
	return f.answer, f.err
}

func (f *fakeAnswerer) AnswerWithCitations(_ context.Context, question string, opts driving.AnswerOptions) (*domain.RAGAnswer, error) {
	f.lastQuestion = question
	f.lastOpts = opts
	f.citedCalls++
	return f.answer, f.err
}

func (f *fakeAnswerer) AnswerBaseline(_ context.Context, question string) (*domain.RAGAnswer, error) {
	f.lastQuestion = question
	f.baselineHit = true
	return f.answer, f.err
}

// memoryConfigStore is an in-memory driven.ConfigStore for settings tests.
type memoryConfigStore struct {
	data map[string]domain.Value
}

func newMemoryConfigStore() *memoryConfigStore {
	return &memoryConfigStore{data: make(map[string]domain.Value)}
}

func (m *memoryConfigStore) Get(key string) (domain.Value, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *memoryConfigStore) GetString(key string) string {
	s, _ := m.data[key].AsString()
	return s
}

func (m *memoryConfigStore) GetInt(key string) int {
	n, _ := m.data[key].AsInt()
	return n
}

func (m *memoryConfigStore) GetFloat(key string) float64 {
	f, _ := m.data[key].AsNumber()
	return f
}

func (m *memoryConfigStore) GetBool(key string) bool {
	b, _ := m.data[key].AsBool()
	return b
}

func (m *memoryConfigStore) Set(key string, value domain.Value) error {
	m.data[key] = value
	return nil
}

func (m *memoryConfigStore) Load() error { return nil }

func withServices(t *testing.T, idx driving.Indexer, ans driving.Answerer, set *services.Settings) {
	t.Helper()
	oldIdx, oldAns, oldSet := indexerService, answererService, settingsService
	indexerService, answererService, settingsService = idx, ans, set
	t.Cleanup(func() {
		indexerService, answererService, settingsService = oldIdx, oldAns, oldSet
	})
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		askTopK = 0
		askStrategy = "adaptive"
		askMinScore = 0
		askCitations = false
		askMaxAttempts = 0
		askBaseline = false
		indexExtensions = nil
		wipeSource = ""
		wipeForce = false
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lumen version")
}

func TestStatsCommand(t *testing.T) {
	withServices(t, &fakeIndexer{stats: domain.StoreStats{DistinctSourceCount: 3, TotalChunkCount: 42}}, nil, nil)

	out, err := executeCommand(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Sources: 3")
	assert.Contains(t, out, "Chunks:  42")
}

func TestStatsCommand_NoService(t *testing.T) {
	withServices(t, nil, nil, nil)

	_, err := executeCommand(t, "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indexer service not configured")
}

func TestAskCommand(t *testing.T) {
	answerer := &fakeAnswerer{answer: &domain.RAGAnswer{
		AnswerText: "The sky is blue [Source 1].",
		SourceHits: []domain.SearchHit{
			{Chunk: domain.Chunk{SourceName: "sky.md"}, Similarity: 0.91, Rank: 1},
		},
		Elapsed: 120 * time.Millisecond,
	}}
	withServices(t, nil, answerer, nil)

	out, err := executeCommand(t, "ask", "what", "color", "is", "the", "sky", "--top-k", "3")
	require.NoError(t, err)

	assert.Equal(t, "what color is the sky", answerer.lastQuestion)
	assert.Equal(t, 3, answerer.lastOpts.TopK)
	assert.Equal(t, domain.RerankAdaptive, answerer.lastOpts.Strategy.Kind)
	assert.Contains(t, out, "The sky is blue [Source 1].")
	assert.Contains(t, out, "[1] sky.md (similarity: 91.0%)")
}

func TestAskCommand_Citations(t *testing.T) {
	answerer := &fakeAnswerer{answer: &domain.RAGAnswer{AnswerText: "Cited [Source 1]."}}
	withServices(t, nil, answerer, nil)

	_, err := executeCommand(t, "ask", "question", "--citations", "--max-attempts", "2")
	require.NoError(t, err)
	assert.Equal(t, 1, answerer.citedCalls)
	assert.Equal(t, 2, answerer.lastOpts.MaxAttempts)
}

func TestAskCommand_Baseline(t *testing.T) {
	answerer := &fakeAnswerer{answer: &domain.RAGAnswer{AnswerText: "ungrounded"}}
	withServices(t, nil, answerer, nil)

	out, err := executeCommand(t, "ask", "question", "--baseline")
	require.NoError(t, err)
	assert.True(t, answerer.baselineHit)
	assert.Contains(t, out, "ungrounded")
}

func TestAskCommand_NoRelevantContext(t *testing.T) {
	answerer := &fakeAnswerer{err: domain.ErrNoRelevantContext}
	withServices(t, nil, answerer, nil)

	out, err := executeCommand(t, "ask", "anything")
	require.NoError(t, err)
	assert.Contains(t, out, "No relevant indexed content found")
}

func TestAskCommand_ThresholdUsesConfiguredMinScore(t *testing.T) {
	store := newMemoryConfigStore()
	require.NoError(t, store.Set("rag.min_score", domain.Number(0.55)))
	answerer := &fakeAnswerer{answer: &domain.RAGAnswer{AnswerText: "ok"}}
	withServices(t, nil, answerer, services.NewSettings(store))

	_, err := executeCommand(t, "ask", "q", "--strategy", "threshold")
	require.NoError(t, err)
	assert.Equal(t, domain.RerankThreshold, answerer.lastOpts.Strategy.Kind)
	assert.InDelta(t, 0.55, answerer.lastOpts.Strategy.MinScore, 1e-9)
}

func TestAskCommand_UnknownStrategy(t *testing.T) {
	withServices(t, nil, &fakeAnswerer{}, nil)

	_, err := executeCommand(t, "ask", "q", "--strategy", "bogus")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndexCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.md"), []byte("# Note\n\nContent."), 0600))

	indexer := &fakeIndexer{lastCount: 4}
	withServices(t, indexer, nil, nil)

	out, err := executeCommand(t, "index", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 1 documents (4 chunks).")
	require.Len(t, indexer.indexed, 1)
	assert.Equal(t, "note.md", indexer.indexed[0].Name)
}

func TestIndexCommand_MissingPath(t *testing.T) {
	withServices(t, &fakeIndexer{}, nil, nil)

	_, err := executeCommand(t, "index", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestWipeCommand_RequiresForce(t *testing.T) {
	indexer := &fakeIndexer{}
	withServices(t, indexer, nil, nil)

	_, err := executeCommand(t, "wipe")
	require.Error(t, err)
	assert.False(t, indexer.wiped)

	out, err := executeCommand(t, "wipe", "--force")
	require.NoError(t, err)
	assert.True(t, indexer.wiped)
	assert.Contains(t, out, "Index wiped.")
}

func TestWipeCommand_Source(t *testing.T) {
	indexer := &fakeIndexer{}
	withServices(t, indexer, nil, nil)

	out, err := executeCommand(t, "wipe", "--source", "notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes/a.md"}, indexer.removed)
	assert.Contains(t, out, "Removed chunks for notes/a.md.")
	assert.False(t, indexer.wiped)
}

func TestConfigCommand_SetGetShow(t *testing.T) {
	settings := services.NewSettings(newMemoryConfigStore())
	withServices(t, nil, nil, settings)

	_, err := executeCommand(t, "config", "set", "llm.provider", "ollama")
	require.NoError(t, err)
	_, err = executeCommand(t, "config", "set", "rag.top_k", "7")
	require.NoError(t, err)

	out, err := executeCommand(t, "config", "get", "llm.provider")
	require.NoError(t, err)
	assert.Contains(t, out, "ollama")

	out, err = executeCommand(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Ollama (local)")
	assert.Contains(t, out, "Top K:         7")
}

func TestConfigCommand_GetUnset(t *testing.T) {
	withServices(t, nil, nil, services.NewSettings(newMemoryConfigStore()))

	out, err := executeCommand(t, "config", "get", "nothing.here")
	require.NoError(t, err)
	assert.Contains(t, out, "(not set)")
}

func TestParseConfigValue(t *testing.T) {
	v := parseConfigValue("true")
	b, ok := v.AsBool()
	require.True(t, ok)
	assert.True(t, b)

	v = parseConfigValue("3.5")
	f, ok := v.AsNumber()
	require.True(t, ok)
	assert.InDelta(t, 3.5, f, 1e-9)

	v = parseConfigValue("gpt-4o-mini")
	s, ok := v.AsString()
	require.True(t, ok)
	assert.Equal(t, "gpt-4o-mini", s)
}
