package retriever

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/llm"
	"github.com/xaenox/aidesk/internal/models"
)

const defaultRerankTopN = 3

// Reranker orders merged candidates by cross-encoder score and keeps the
// best few. It degrades to dense rank order when scoring fails.
type Reranker struct {
	scorer llm.Scorer
	logger *zap.Logger
}

func NewReranker(scorer llm.Scorer, logger *zap.Logger) *Reranker {
	return &Reranker{scorer: scorer, logger: logger}
}

// Rerank scores every (query, candidate) pair and returns the top n by
// score descending, ties broken by input order. If scoring fails the
// first n dense candidates are returned in their original dense rank
// order: degraded but available beats a hard failure.
func (r *Reranker) Rerank(ctx context.Context, query string, cands Candidates, n int) []models.SearchResult {
	if n <= 0 {
		n = defaultRerankTopN
	}
	if len(cands.Merged) == 0 {
		return nil
	}

	passages := make([]string, len(cands.Merged))
	for i, c := range cands.Merged {
		passages[i] = c.Chunk.Content
	}

	scores, err := r.scorer.Score(ctx, query, passages)
	if err != nil {
		r.logger.Warn("reranking failed, falling back to dense order", zap.Error(err))
		fallback := cands.Dense
		if len(fallback) == 0 {
			fallback = cands.Merged
		}
		if len(fallback) > n {
			fallback = fallback[:n]
		}
		return fallback
	}

	ranked := make([]models.SearchResult, len(cands.Merged))
	copy(ranked, cands.Merged)
	for i := range ranked {
		ranked[i].Score = scores[i]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
