package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumenchat/lumen/internal/core/domain"
	"github.com/lumenchat/lumen/internal/core/ports/driven"
	"github.com/lumenchat/lumen/internal/core/ports/driving"
	"github.com/lumenchat/lumen/internal/logger"
	"github.com/lumenchat/lumen/internal/segmenter"
)

// Ensure Indexer implements the interface.
var _ driving.Indexer = (*Indexer)(nil)

// Indexer runs the indexing pipeline: segment, embed, persist. Callers may
// index multiple documents concurrently; the chunk store serialises writes.
type Indexer struct {
	seg      *segmenter.Segmenter
	embedder driven.EmbeddingService
	store    driven.ChunkStore
}

// NewIndexer creates an indexer over the given segmenter, embedder, and store.
func NewIndexer(seg *segmenter.Segmenter, embedder driven.EmbeddingService, store driven.ChunkStore) *Indexer {
	return &Indexer{seg: seg, embedder: embedder, store: store}
}

// IndexDocument segments, embeds, and persists one document. Re-indexing a
// path fully replaces its previous chunks: stale rows are removed first,
// then the fresh batch is upserted under deterministic IDs.
func (s *Indexer) IndexDocument(ctx context.Context, doc domain.SourceDocument) (int, error) {
	logger.Section("Indexing")
	logger.Debug("Document: %s", doc.Path)
	defer logger.Elapsed("Indexing "+doc.Path, time.Now())

	segments := s.seg.Segment(doc.Content)
	if len(segments) == 0 {
		// An empty document still replaces whatever was indexed before.
		if err := s.store.DeleteBySource(ctx, doc.Path); err != nil {
			return 0, err
		}
		return 0, nil
	}

	if s.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding %s: %w", doc.Path, err)
	}
	if len(vectors) != len(segments) {
		return 0, domain.NewProviderError(0,
			fmt.Sprintf("embedding count mismatch: %d vectors for %d segments", len(vectors), len(segments)))
	}

	now := time.Now().UTC()
	chunks := make([]domain.Chunk, len(segments))
	for i, seg := range segments {
		chunks[i] = domain.Chunk{
			ID:            ChunkID(doc.Path, i),
			SourcePath:    doc.Path,
			SourceName:    doc.Name,
			Content:       seg.Content,
			SequenceIndex: i,
			Embedding:     vectors[i],
			Metadata: domain.ChunkMetadata{
				FormatTag:     doc.FormatTag,
				StartLine:     seg.StartLine,
				EndLine:       seg.EndLine,
				TokenEstimate: seg.TokenEstimate,
				Language:      doc.Language,
			},
			CreatedAt: now,
		}
	}

	if err := s.store.DeleteBySource(ctx, doc.Path); err != nil {
		return 0, err
	}
	if err := s.store.UpsertBatch(ctx, chunks); err != nil {
		return 0, err
	}

	logger.Info("Indexed %s: %d chunks", doc.Path, len(chunks))
	return len(chunks), nil
}

// IndexAll indexes a batch of documents, collecting per-document failures
// into the stats without aborting the batch.
func (s *Indexer) IndexAll(ctx context.Context, docs []domain.SourceDocument) (domain.IndexStats, error) {
	var stats domain.IndexStats

	for _, doc := range docs {
		count, err := s.IndexDocument(ctx, doc)
		if err != nil {
			logger.Warn("Failed to index %s: %v", doc.Path, err)
			stats.FailedFiles = append(stats.FailedFiles, doc.Path)
			continue
		}
		stats.DocumentsIndexed++
		stats.ChunksProduced += count
	}

	return stats, nil
}

// RemoveSource deletes every chunk indexed from the given path.
func (s *Indexer) RemoveSource(ctx context.Context, sourcePath string) error {
	return s.store.DeleteBySource(ctx, sourcePath)
}

// Wipe deletes all indexed chunks.
func (s *Indexer) Wipe(ctx context.Context) error {
	return s.store.DeleteAll(ctx)
}

// Stats returns aggregate statistics over the chunk store.
func (s *Indexer) Stats(ctx context.Context) (domain.StoreStats, error) {
	return s.store.Stats(ctx)
}

// ChunkID derives a deterministic chunk identifier from the source path and
// sequence index, so re-indexing a source upserts the same IDs.
func ChunkID(sourcePath string, sequenceIndex int) string {
	name := fmt.Sprintf("%s#%d", sourcePath, sequenceIndex)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
