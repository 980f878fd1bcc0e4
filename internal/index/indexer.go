// Package index owns document chunking, embedding upsert and the
// lexical-index lifecycle.
package index

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/llm"
	"github.com/xaenox/aidesk/internal/models"
	"github.com/xaenox/aidesk/internal/vectorstore"
)

const upsertBatchSize = 50

// Indexer ingests documents into the vector store and maintains the
// lexical index snapshot the retriever reads.
type Indexer struct {
	embedder llm.Embedder
	store    vectorstore.Store
	chunker  *Chunker
	lexicon  atomic.Pointer[Lexicon]
	logger   *zap.Logger
}

func NewIndexer(embedder llm.Embedder, store vectorstore.Store, chunker *Chunker, logger *zap.Logger) *Indexer {
	return &Indexer{
		embedder: embedder,
		store:    store,
		chunker:  chunker,
		logger:   logger,
	}
}

// Bootstrap builds the initial lexical snapshot from whatever the vector
// store already holds. Failure leaves the lexical branch disabled.
func (ix *Indexer) Bootstrap(ctx context.Context) {
	if err := ix.rebuildLexicon(ctx); err != nil {
		ix.logger.Warn("initial lexical index build failed", zap.Error(err))
	}
}

// Lexicon returns the current lexical snapshot, which may be nil when
// the corpus is empty or no rebuild has succeeded yet.
func (ix *Indexer) Lexicon() *Lexicon {
	return ix.lexicon.Load()
}

// Ingest chunks content, embeds it in bounded batches, upserts the
// results and rebuilds the lexical index from the full corpus.
func (ix *Indexer) Ingest(ctx context.Context, content, source string) (int, error) {
	chunks := ix.chunker.Split(content, source)
	if len(chunks) == 0 {
		return 0, nil
	}

	for start := 0; start < len(chunks); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}
		vectors, err := ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed batch for %s: %w", source, err)
		}
		for i := range batch {
			batch[i].Embedding = vectors[i]
		}

		if err := ix.store.Upsert(ctx, batch); err != nil {
			return 0, fmt.Errorf("upsert batch for %s: %w", source, err)
		}
	}

	if err := ix.rebuildLexicon(ctx); err != nil {
		// The dense index is already current; stale lexical results are
		// an accepted degradation.
		ix.logger.Warn("lexical rebuild after ingest failed",
			zap.Error(err), zap.String("source", source))
	}

	ix.logger.Info("document indexed",
		zap.String("source", source), zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// Delete removes every chunk originating from source. Deleting a source
// with no indexed chunks succeeds as a no-op.
func (ix *Indexer) Delete(ctx context.Context, source string) error {
	removed, err := ix.store.DeleteBySource(ctx, source)
	if err != nil {
		return fmt.Errorf("delete %s: %w", source, err)
	}

	if err := ix.rebuildLexicon(ctx); err != nil {
		ix.logger.Warn("lexical rebuild after delete failed",
			zap.Error(err), zap.String("source", source))
	}

	ix.logger.Info("document deleted",
		zap.String("source", source), zap.Int("chunks_removed", removed))
	return nil
}

// ListSources returns the distinct origin filenames currently indexed.
func (ix *Indexer) ListSources(ctx context.Context) ([]string, error) {
	chunks, err := ix.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	seen := make(map[string]struct{})
	var sources []string
	for _, c := range chunks {
		if _, ok := seen[c.Source]; ok {
			continue
		}
		seen[c.Source] = struct{}{}
		sources = append(sources, c.Source)
	}
	sort.Strings(sources)
	return sources, nil
}

// ChunksBySource returns every chunk originating from source.
func (ix *Indexer) ChunksBySource(ctx context.Context, source string) ([]models.Chunk, error) {
	chunks, err := ix.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("chunks for %s: %w", source, err)
	}

	var out []models.Chunk
	for _, c := range chunks {
		if c.Source == source {
			out = append(out, c)
		}
	}
	return out, nil
}

// UpdateChunk re-embeds a single chunk's content in place and refreshes
// the lexical index.
func (ix *Indexer) UpdateChunk(ctx context.Context, id, content string) error {
	chunks, err := ix.store.All(ctx)
	if err != nil {
		return fmt.Errorf("update chunk %s: %w", id, err)
	}

	var target *models.Chunk
	for i := range chunks {
		if chunks[i].ID == id {
			target = &chunks[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("update chunk %s: not found", id)
	}

	vector, err := ix.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed updated chunk %s: %w", id, err)
	}
	target.Content = content
	target.Embedding = vector

	if err := ix.store.Upsert(ctx, []models.Chunk{*target}); err != nil {
		return fmt.Errorf("upsert updated chunk %s: %w", id, err)
	}

	if err := ix.rebuildLexicon(ctx); err != nil {
		ix.logger.Warn("lexical rebuild after chunk update failed",
			zap.Error(err), zap.String("chunk_id", id))
	}
	return nil
}

// rebuildLexicon snapshots the full corpus and installs a fresh lexical
// index atomically. Concurrent queries keep reading the previous
// snapshot until the swap.
func (ix *Indexer) rebuildLexicon(ctx context.Context) error {
	chunks, err := ix.store.All(ctx)
	if err != nil {
		return fmt.Errorf("snapshot corpus: %w", err)
	}
	ix.lexicon.Store(BuildLexicon(chunks))
	return nil
}
