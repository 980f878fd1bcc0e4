package retriever

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/models"
)

type mockScorer struct {
	scores []float64
	err    error
	calls  int
}

func (m *mockScorer) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.scores[:len(passages)], nil
}

func candidatesFixture() Candidates {
	dense := []models.SearchResult{
		{Chunk: models.Chunk{ID: "d1", Content: "first dense"}},
		{Chunk: models.Chunk{ID: "d2", Content: "second dense"}},
		{Chunk: models.Chunk{ID: "d3", Content: "third dense"}},
		{Chunk: models.Chunk{ID: "d4", Content: "fourth dense"}},
	}
	merged := append([]models.SearchResult{}, dense...)
	merged = append(merged, models.SearchResult{Chunk: models.Chunk{ID: "l1", Content: "lexical"}})
	return Candidates{Merged: merged, Dense: dense}
}

func TestRerankOrdersByScore(t *testing.T) {
	scorer := &mockScorer{scores: []float64{0.1, 0.9, 0.5, 0.2, 0.8}}
	r := NewReranker(scorer, zap.NewNop())

	ranked := r.Rerank(context.Background(), "q", candidatesFixture(), 3)

	if len(ranked) != 3 {
		t.Fatalf("expected top 3, got %d", len(ranked))
	}
	want := []string{"d2", "l1", "d3"}
	for i, id := range want {
		if ranked[i].Chunk.ID != id {
			t.Errorf("position %d: want %s, got %s", i, id, ranked[i].Chunk.ID)
		}
	}
}

func TestRerankStableTies(t *testing.T) {
	scorer := &mockScorer{scores: []float64{0.5, 0.5, 0.5, 0.5, 0.5}}
	r := NewReranker(scorer, zap.NewNop())

	ranked := r.Rerank(context.Background(), "q", candidatesFixture(), 3)

	want := []string{"d1", "d2", "d3"}
	for i, id := range want {
		if ranked[i].Chunk.ID != id {
			t.Errorf("ties must keep input order: position %d want %s, got %s", i, id, ranked[i].Chunk.ID)
		}
	}
}

func TestRerankOutputIsSubsetOfInput(t *testing.T) {
	scorer := &mockScorer{scores: []float64{0.3, 0.1, 0.9, 0.4, 0.2}}
	r := NewReranker(scorer, zap.NewNop())

	cands := candidatesFixture()
	ranked := r.Rerank(context.Background(), "q", cands, 3)

	inputs := make(map[string]struct{})
	for _, c := range cands.Merged {
		inputs[c.Chunk.ID] = struct{}{}
	}
	for _, c := range ranked {
		if _, ok := inputs[c.Chunk.ID]; !ok {
			t.Errorf("reranked candidate %s not present in input", c.Chunk.ID)
		}
	}
}

func TestRerankFallsBackToDenseOrder(t *testing.T) {
	scorer := &mockScorer{err: errors.New("scoring unavailable")}
	r := NewReranker(scorer, zap.NewNop())

	ranked := r.Rerank(context.Background(), "q", candidatesFixture(), 3)

	if len(ranked) != 3 {
		t.Fatalf("fallback must still return top N, got %d", len(ranked))
	}
	want := []string{"d1", "d2", "d3"}
	for i, id := range want {
		if ranked[i].Chunk.ID != id {
			t.Errorf("fallback position %d: want %s, got %s", i, id, ranked[i].Chunk.ID)
		}
	}
}

func TestRerankNeverEmptyForNonEmptyInput(t *testing.T) {
	scorer := &mockScorer{err: errors.New("scoring unavailable")}
	r := NewReranker(scorer, zap.NewNop())

	single := Candidates{
		Merged: []models.SearchResult{{Chunk: models.Chunk{ID: "only"}}},
	}
	ranked := r.Rerank(context.Background(), "q", single, 3)
	if len(ranked) != 1 {
		t.Errorf("non-empty input must yield non-empty output, got %d", len(ranked))
	}
}

func TestRerankEmptyInput(t *testing.T) {
	scorer := &mockScorer{}
	r := NewReranker(scorer, zap.NewNop())

	if ranked := r.Rerank(context.Background(), "q", Candidates{}, 3); len(ranked) != 0 {
		t.Errorf("empty input must yield empty output, got %d", len(ranked))
	}
	if scorer.calls != 0 {
		t.Errorf("no scoring call expected for empty input, got %d", scorer.calls)
	}
}
