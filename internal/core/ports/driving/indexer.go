package driving

import (
	"context"

	"github.com/lumenchat/lumen/internal/core/domain"
)

// Indexer turns source documents into embedded, persisted chunks.
type Indexer interface {
	// IndexDocument segments, embeds, and persists one document, fully
	// replacing any previously indexed chunks for the same path.
	// It returns the number of chunks produced.
	IndexDocument(ctx context.Context, doc domain.SourceDocument) (int, error)

	// IndexAll indexes a batch of documents. Per-document failures are
	// collected into the returned stats without aborting the batch.
	IndexAll(ctx context.Context, docs []domain.SourceDocument) (domain.IndexStats, error)

	// RemoveSource deletes every chunk indexed from the given path.
	RemoveSource(ctx context.Context, sourcePath string) error

	// Wipe deletes all indexed chunks.
	Wipe(ctx context.Context) error

	// Stats returns aggregate statistics over the chunk store.
	Stats(ctx context.Context) (domain.StoreStats, error)
}
