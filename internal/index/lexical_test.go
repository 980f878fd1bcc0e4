package index

import (
	"testing"

	"github.com/xaenox/aidesk/internal/models"
)

func lexiconFixture() *Lexicon {
	return BuildLexicon([]models.Chunk{
		{ID: "1", Content: "restart the printer and check the printer queue"},
		{ID: "2", Content: "router reset procedure"},
		{ID: "3", Content: "printer driver download"},
	})
}

func TestBuildLexiconEmptyCorpus(t *testing.T) {
	if lex := BuildLexicon(nil); lex != nil {
		t.Error("empty corpus must build a nil lexicon")
	}
}

func TestNilLexiconQueriesEmpty(t *testing.T) {
	var lex *Lexicon
	if got := lex.Query("anything", 5); got != nil {
		t.Errorf("nil lexicon must return no results, got %v", got)
	}
	if lex.Size() != 0 {
		t.Errorf("nil lexicon size must be 0, got %d", lex.Size())
	}
}

func TestQueryRanksByTermFrequency(t *testing.T) {
	lex := lexiconFixture()

	results := lex.Query("printer", 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	// Chunk 1 keeps five tokens, two of them printer (0.4); chunk 3 keeps
	// three with one printer (0.33).
	if results[0].Chunk.ID != "1" {
		t.Errorf("expected chunk 1 first, got %s", results[0].Chunk.ID)
	}
	if results[1].Chunk.ID != "3" {
		t.Errorf("expected chunk 3 second, got %s", results[1].Chunk.ID)
	}
}

func TestQueryTopKCutoff(t *testing.T) {
	lex := lexiconFixture()
	if got := lex.Query("printer", 1); len(got) != 1 {
		t.Errorf("k=1 must cap results, got %d", len(got))
	}
	if got := lex.Query("printer", 0); got != nil {
		t.Errorf("k=0 must return nothing, got %v", got)
	}
}

func TestQueryIgnoresStopwordsAndCase(t *testing.T) {
	lex := lexiconFixture()

	if got := lex.Query("the and of", 10); len(got) != 0 {
		t.Errorf("stopword-only query must match nothing, got %d", len(got))
	}
	if got := lex.Query("PRINTER", 10); len(got) != 2 {
		t.Errorf("matching must be case-insensitive, got %d", len(got))
	}
}

func TestQueryNoMatches(t *testing.T) {
	lex := lexiconFixture()
	if got := lex.Query("quantum tunneling", 10); len(got) != 0 {
		t.Errorf("unrelated query must match nothing, got %d", len(got))
	}
}

func TestLexiconSnapshotIsolation(t *testing.T) {
	chunks := []models.Chunk{{ID: "1", Content: "immutable snapshot"}}
	lex := BuildLexicon(chunks)

	chunks[0].Content = "mutated afterwards"
	got := lex.Query("immutable", 10)
	if len(got) != 1 || got[0].Chunk.Content != "immutable snapshot" {
		t.Errorf("lexicon must copy its corpus snapshot, got %v", got)
	}
}
