package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/classifier"
	"github.com/xaenox/aidesk/internal/generator"
	"github.com/xaenox/aidesk/internal/index"
	"github.com/xaenox/aidesk/internal/models"
	"github.com/xaenox/aidesk/internal/retriever"
	"github.com/xaenox/aidesk/internal/vectorstore"
	"github.com/xaenox/aidesk/pkg/config"
)

// mockLLM fakes every model-facing interface the pipeline touches.
type mockLLM struct {
	classification models.Classification
	answer         string
}

func (m *mockLLM) GenerateStructured(ctx context.Context, prompt string, out any) error {
	*(out.(*models.Classification)) = m.classification
	return nil
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return m.answer, nil
}

func (m *mockLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (m *mockLLM) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (m *mockLLM) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	scores := make([]float64, len(passages))
	for i := range scores {
		scores[i] = 1 - float64(i)*0.1
	}
	return scores, nil
}

func newTestPipeline(t *testing.T, llm *mockLLM, corpus []models.Chunk) *Pipeline {
	t.Helper()
	logger := zap.NewNop()

	store := vectorstore.NewMemoryStore()
	if len(corpus) > 0 {
		if err := store.Upsert(context.Background(), corpus); err != nil {
			t.Fatalf("seed corpus: %v", err)
		}
	}
	lexicon := index.BuildLexicon(corpus)

	settings, err := config.LoadSystemStore(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}

	hybrid := retriever.NewHybrid(llm, store, func() *index.Lexicon { return lexicon }, logger)
	reranker := retriever.NewReranker(llm, logger)
	clf := classifier.New(llm, logger)
	gen := generator.New(llm, settings, logger)
	return New(clf, hybrid, reranker, gen, settings, logger)
}

func faqCorpus() []models.Chunk {
	return []models.Chunk{
		{ID: "1", Content: "To reset the router, hold the button for ten seconds.", Source: "kb.txt", Embedding: []float32{1, 0}},
		{ID: "2", Content: "Printer drivers are installed from the vendor portal.", Source: "kb.txt", Embedding: []float32{0.9, 0.1}},
	}
}

func TestProcessSpamIsIgnored(t *testing.T) {
	llm := &mockLLM{classification: models.Classification{Type: models.TypeSpam, Priority: models.PriorityLow, Category: "spam"}}
	p := newTestPipeline(t, llm, faqCorpus())

	result := p.Process(context.Background(), "BUY CHEAP WATCHES", "telegram")
	if result.Action != models.ActionIgnore {
		t.Errorf("spam must be ignored, got %s", result.Action)
	}
	if result.Response != "" {
		t.Errorf("ignored requests carry no response, got %q", result.Response)
	}
}

func TestProcessFAQAutoReplies(t *testing.T) {
	llm := &mockLLM{
		classification: models.Classification{Type: models.TypeFAQ, Priority: models.PriorityLow, Category: "Network"},
		answer:         "Hold the reset button for ten seconds.",
	}
	p := newTestPipeline(t, llm, faqCorpus())

	result := p.Process(context.Background(), "how do I reset the router?", "telegram")
	if result.Action != models.ActionAutoReply {
		t.Fatalf("answerable faq must auto-reply, got %s (%s)", result.Action, result.Reason)
	}
	if result.Response != "Hold the reset button for ten seconds." {
		t.Errorf("unexpected response %q", result.Response)
	}
}

func TestProcessTicketEscalates(t *testing.T) {
	llm := &mockLLM{classification: models.Classification{Type: models.TypeTicket, Priority: models.PriorityHigh, Category: "Hardware"}}
	p := newTestPipeline(t, llm, faqCorpus())

	result := p.Process(context.Background(), "the server room is on fire", "telegram")
	if result.Action != models.ActionEscalate {
		t.Errorf("tickets must escalate, got %s", result.Action)
	}
	if result.Classification.Priority != models.PriorityHigh {
		t.Errorf("classification must be carried through, got %+v", result.Classification)
	}
}

func TestProcessEmptyCorpusEscalatesFAQ(t *testing.T) {
	// A question that would be answerable cannot be answered against an
	// empty knowledge base: the only safe action is escalation.
	llm := &mockLLM{
		classification: models.Classification{Type: models.TypeFAQ, Priority: models.PriorityLow, Category: "Hardware"},
		answer:         "this answer must never be delivered",
	}
	p := newTestPipeline(t, llm, nil)

	result := p.Process(context.Background(), "why is my printer offline again??", "telegram")
	if result.Action != models.ActionEscalate {
		t.Errorf("empty corpus must force escalation, got %s", result.Action)
	}
	if result.Reason != "RAG miss" {
		t.Errorf("escalation must record the retrieval miss, got %q", result.Reason)
	}
	if result.Response != "" {
		t.Errorf("no fabricated answer may leak out, got %q", result.Response)
	}
}

func TestProcessSentinelForcesEscalation(t *testing.T) {
	llm := &mockLLM{
		classification: models.Classification{Type: models.TypeFAQ, Priority: models.PriorityLow, Category: "Access"},
		answer:         "I cannot verify your identity. " + generator.EscalationSentinel,
	}
	p := newTestPipeline(t, llm, faqCorpus())

	result := p.Process(context.Background(), "unlock my admin account", "telegram")
	if result.Action != models.ActionEscalate {
		t.Errorf("sentinel answer must escalate, got %s", result.Action)
	}
	if strings.Contains(result.Response, generator.EscalationSentinel) {
		t.Errorf("sentinel text must never reach the user, got %q", result.Response)
	}
}

func TestProcessTicketPhraseForcesEscalation(t *testing.T) {
	llm := &mockLLM{
		classification: models.Classification{Type: models.TypeFAQ, Priority: models.PriorityLow, Category: "Software"},
		answer:         "I'm Creating a Support Ticket for you now.",
	}
	p := newTestPipeline(t, llm, faqCorpus())

	result := p.Process(context.Background(), "weird licensing error", "telegram")
	if result.Action != models.ActionEscalate {
		t.Errorf("ticket-creation phrasing must escalate regardless of case, got %s", result.Action)
	}
}
