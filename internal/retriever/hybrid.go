// Package retriever merges dense and lexical candidates for a query and
// reranks them with a cross-encoder.
package retriever

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/index"
	"github.com/xaenox/aidesk/internal/llm"
	"github.com/xaenox/aidesk/internal/models"
	"github.com/xaenox/aidesk/internal/vectorstore"
)

const (
	denseTopK   = 20
	lexicalTopK = 10
	// fingerprintLen bounds the content prefix used as identity when a
	// chunk carries no id.
	fingerprintLen = 20
)

// Candidates is the merged, deduplicated candidate set for one query.
// Dense keeps the dense-only ranking for the reranker's fallback path.
type Candidates struct {
	Merged []models.SearchResult
	Dense  []models.SearchResult
}

// Hybrid produces candidates from embedding similarity and from the
// current lexical snapshot.
type Hybrid struct {
	embedder llm.Embedder
	store    vectorstore.Store
	lexicon  func() *index.Lexicon
	logger   *zap.Logger
}

func NewHybrid(embedder llm.Embedder, store vectorstore.Store, lexicon func() *index.Lexicon, logger *zap.Logger) *Hybrid {
	return &Hybrid{embedder: embedder, store: store, lexicon: lexicon, logger: logger}
}

// Retrieve runs both branches and merges them: all dense candidates
// first in ranked order, then lexical candidates, deduplicated by
// identity with first occurrence winning. An empty merge means the
// caller must not fabricate an answer.
func (h *Hybrid) Retrieve(ctx context.Context, query string) (Candidates, error) {
	vector, err := h.embedder.Embed(ctx, query)
	if err != nil {
		return Candidates{}, fmt.Errorf("embed query: %w", err)
	}

	dense, err := h.store.Search(ctx, vector, denseTopK)
	if err != nil {
		return Candidates{}, fmt.Errorf("dense search: %w", err)
	}

	// No lexical snapshot means the branch is empty, not an error.
	var lexical []models.SearchResult
	if lex := h.lexicon(); lex != nil {
		lexical = lex.Query(query, lexicalTopK)
	} else {
		h.logger.Debug("lexical index unavailable, dense-only retrieval")
	}

	seen := make(map[string]struct{}, len(dense)+len(lexical))
	merged := make([]models.SearchResult, 0, len(dense)+len(lexical))
	for _, r := range append(append([]models.SearchResult{}, dense...), lexical...) {
		id := identity(r.Chunk)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, r)
	}

	return Candidates{Merged: merged, Dense: dense}, nil
}

// identity is the stable dedup key: the index-assigned id when present,
// otherwise a content-prefix fingerprint.
func identity(c models.Chunk) string {
	if c.ID != "" {
		return c.ID
	}
	content := c.Content
	if len(content) > fingerprintLen {
		content = content[:fingerprintLen]
	}
	return "content:" + content
}
