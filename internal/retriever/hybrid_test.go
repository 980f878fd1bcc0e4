package retriever

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/index"
	"github.com/xaenox/aidesk/internal/models"
)

type mockEmbedder struct {
	err error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v, err := m.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type mockVectorStore struct {
	results []models.SearchResult
	err     error
}

func (m *mockVectorStore) Upsert(ctx context.Context, chunks []models.Chunk) error { return nil }

func (m *mockVectorStore) Search(ctx context.Context, vector []float32, topK int) ([]models.SearchResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.results) > topK {
		return m.results[:topK], nil
	}
	return m.results, nil
}

func (m *mockVectorStore) All(ctx context.Context) ([]models.Chunk, error) { return nil, nil }

func (m *mockVectorStore) DeleteBySource(ctx context.Context, source string) (int, error) {
	return 0, nil
}

func (m *mockVectorStore) Close() error { return nil }

func nilLexicon() *index.Lexicon { return nil }

func TestRetrieveMergesDenseFirst(t *testing.T) {
	dense := []models.SearchResult{
		{Chunk: models.Chunk{ID: "a", Content: "alpha router reset"}, Score: 0.9},
		{Chunk: models.Chunk{ID: "b", Content: "beta printer offline"}, Score: 0.8},
	}
	lexChunks := []models.Chunk{
		{ID: "b", Content: "beta printer offline"},
		{ID: "c", Content: "gamma printer driver install printer"},
	}

	h := NewHybrid(&mockEmbedder{}, &mockVectorStore{results: dense}, func() *index.Lexicon {
		return index.BuildLexicon(lexChunks)
	}, zap.NewNop())

	cands, err := h.Retrieve(context.Background(), "printer")
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}

	ids := make([]string, len(cands.Merged))
	for i, r := range cands.Merged {
		ids[i] = r.Chunk.ID
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 merged candidates, got %v", ids)
	}
	if ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("unexpected merge order: %v", ids)
	}
}

func TestRetrieveDedupesByIdentity(t *testing.T) {
	// Same identity in both branches must keep the dense-derived position.
	dense := []models.SearchResult{
		{Chunk: models.Chunk{ID: "x", Content: "shared"}, Score: 0.5},
	}
	lexChunks := []models.Chunk{{ID: "x", Content: "shared"}}

	h := NewHybrid(&mockEmbedder{}, &mockVectorStore{results: dense}, func() *index.Lexicon {
		return index.BuildLexicon(lexChunks)
	}, zap.NewNop())

	cands, err := h.Retrieve(context.Background(), "shared")
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(cands.Merged) != 1 {
		t.Fatalf("expected 1 candidate after dedup, got %d", len(cands.Merged))
	}
	if cands.Merged[0].Score != 0.5 {
		t.Errorf("dense hit must win the collision, got score %v", cands.Merged[0].Score)
	}
}

func TestRetrieveContentFingerprintDedup(t *testing.T) {
	long := "identical first twenty bytes of content, different tails A"
	other := "identical first twenty bytes of content, different tails B"

	dense := []models.SearchResult{{Chunk: models.Chunk{Content: long}}}
	h := NewHybrid(&mockEmbedder{}, &mockVectorStore{results: dense}, func() *index.Lexicon {
		return index.BuildLexicon([]models.Chunk{{Content: other}})
	}, zap.NewNop())

	cands, err := h.Retrieve(context.Background(), "identical")
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(cands.Merged) != 1 {
		t.Errorf("prefix fingerprint should collapse both candidates, got %d", len(cands.Merged))
	}
}

func TestRetrieveEmptyCorpus(t *testing.T) {
	h := NewHybrid(&mockEmbedder{}, &mockVectorStore{}, nilLexicon, zap.NewNop())

	cands, err := h.Retrieve(context.Background(), "why is my printer offline again??")
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(cands.Merged) != 0 {
		t.Errorf("empty corpus must yield empty candidates, got %d", len(cands.Merged))
	}
}

func TestRetrieveLexiconUnavailable(t *testing.T) {
	dense := []models.SearchResult{{Chunk: models.Chunk{ID: "a", Content: "only dense"}}}
	h := NewHybrid(&mockEmbedder{}, &mockVectorStore{results: dense}, nilLexicon, zap.NewNop())

	cands, err := h.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatalf("missing lexicon must not be an error: %v", err)
	}
	if len(cands.Merged) != 1 {
		t.Errorf("expected dense-only result, got %d candidates", len(cands.Merged))
	}
}

func TestRetrieveEmbedFailure(t *testing.T) {
	h := NewHybrid(&mockEmbedder{err: errors.New("provider down")}, &mockVectorStore{}, nilLexicon, zap.NewNop())
	if _, err := h.Retrieve(context.Background(), "query"); err == nil {
		t.Error("expected error when query embedding fails")
	}
}
