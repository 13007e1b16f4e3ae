package driven

import (
	"context"

	"github.com/lumenchat/lumen/internal/core/domain"
)

// ChunkStore durably persists chunks, their metadata, and their embedding
// vectors.
//
// The chunk ID is the primary key; an upsert fully replaces the row.
// Embedding vectors round-trip bit-exact through persistence. All mutations
// serialise through a single-writer discipline per store instance, so no
// reader ever observes a partially written row. Failures surface wrapped
// in domain.ErrStorage and are non-retryable for callers.
type ChunkStore interface {
	// Upsert stores or fully replaces a single chunk.
	Upsert(ctx context.Context, chunk domain.Chunk) error

	// UpsertBatch stores or replaces multiple chunks atomically.
	UpsertBatch(ctx context.Context, chunks []domain.Chunk) error

	// FetchAll returns every stored chunk, ordered by source path then
	// sequence index.
	FetchAll(ctx context.Context) ([]domain.Chunk, error)

	// FetchBySource returns the chunks of one source, in sequence order.
	FetchBySource(ctx context.Context, sourcePath string) ([]domain.Chunk, error)

	// DeleteBySource removes every chunk of one source.
	DeleteBySource(ctx context.Context, sourcePath string) error

	// DeleteAll wipes the store.
	DeleteAll(ctx context.Context) error

	// Stats returns aggregate counts over the store.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Close releases resources.
	Close() error
}
