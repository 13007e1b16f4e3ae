package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenchat/lumen/internal/core/domain"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("llm.provider", domain.String("openai")))
	require.NoError(t, store.Set("rag.top_k", domain.Number(5)))
	require.NoError(t, store.Set("rag.min_score", domain.Number(0.3)))
	require.NoError(t, store.Set("watcher.enabled", domain.Bool(true)))

	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, 5, store.GetInt("rag.top_k"))
	assert.InDelta(t, 0.3, store.GetFloat("rag.min_score"), 1e-9)
	assert.True(t, store.GetBool("watcher.enabled"))
}

func TestConfigStore_MissingKeys(t *testing.T) {
	store := newTestStore(t)

	_, ok := store.Get("nothing.here")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("nothing.here"))
	assert.Zero(t, store.GetInt("nothing.here"))
	assert.Zero(t, store.GetFloat("nothing.here"))
	assert.False(t, store.GetBool("nothing.here"))
}

func TestConfigStore_MistypedKeys(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("llm.provider", domain.String("ollama")))

	// Wrong-typed reads degrade to zero values instead of panicking.
	assert.Zero(t, store.GetInt("llm.provider"))
	assert.False(t, store.GetBool("llm.provider"))
}

func TestConfigStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("embedding.model", domain.String("nomic-embed-text")))
	require.NoError(t, store.Set("rag.chunk_size", domain.Number(1000)))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", reopened.GetString("embedding.model"))
	assert.Equal(t, 1000, reopened.GetInt("rag.chunk_size"))
}

func TestConfigStore_LoadNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[llm]
provider = "anthropic"
model = "claude-3-5-sonnet-latest"

[rag]
top_k = 7
min_score = 0.45
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, "claude-3-5-sonnet-latest", store.GetString("llm.model"))
	assert.Equal(t, 7, store.GetInt("rag.top_k"))
	assert.InDelta(t, 0.45, store.GetFloat("rag.min_score"), 1e-9)
}

func TestConfigStore_SaveWritesNestedTables(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.provider", domain.String("ollama")))
	require.NoError(t, store.Set("llm.model", domain.String("llama3.2")))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	// Dotted keys round-trip through proper TOML tables.
	assert.Contains(t, string(raw), "[llm]")
	assert.Contains(t, string(raw), "provider = 'ollama'")
}

func TestConfigStore_MissingFileStartsEmpty(t *testing.T) {
	store := newTestStore(t)
	assert.Empty(t, store.GetString("anything"))
	assert.DirExists(t, filepath.Dir(store.Path()))
}

func TestConfigStore_LoadRejectsBadTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}
