// Package vectorstore persists embedded chunks and answers
// nearest-neighbor queries over them.
package vectorstore

import (
	"context"
	"math"

	"github.com/xaenox/aidesk/internal/models"
)

// Store persists chunks with their embeddings and supports similarity
// search. All implementations are safe for concurrent use.
type Store interface {
	// Upsert inserts chunks, replacing any existing chunk with the same id.
	Upsert(ctx context.Context, chunks []models.Chunk) error

	// Search returns the topK chunks nearest to the query vector,
	// ranked by cosine similarity.
	Search(ctx context.Context, vector []float32, topK int) ([]models.SearchResult, error)

	// All returns every stored chunk. Used for lexical-index rebuilds
	// and source listings.
	All(ctx context.Context) ([]models.Chunk, error)

	// DeleteBySource removes every chunk whose source matches and
	// reports how many were removed. Zero matches is not an error.
	DeleteBySource(ctx context.Context, source string) (int, error)

	Close() error
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
