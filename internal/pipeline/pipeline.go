// Package pipeline wires classification, retrieval, generation and the
// escalation decision into the request path shared by every channel.
package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/classifier"
	"github.com/xaenox/aidesk/internal/generator"
	"github.com/xaenox/aidesk/internal/models"
	"github.com/xaenox/aidesk/internal/retriever"
	"github.com/xaenox/aidesk/pkg/config"
)

// Pipeline processes incoming requests. Calls are stateless with respect
// to each other and safe to run concurrently; the only shared state is
// the index snapshot reference read by the retriever.
type Pipeline struct {
	classifier *classifier.Classifier
	retriever  *retriever.Hybrid
	reranker   *retriever.Reranker
	generator  *generator.Generator
	settings   *config.SystemStore
	logger     *zap.Logger
}

func New(
	clf *classifier.Classifier,
	hybrid *retriever.Hybrid,
	reranker *retriever.Reranker,
	gen *generator.Generator,
	settings *config.SystemStore,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		classifier: clf,
		retriever:  hybrid,
		reranker:   reranker,
		generator:  gen,
		settings:   settings,
		logger:     logger,
	}
}

// Process triages the text and either drops it, answers it from the
// knowledge base, or escalates it to the ticket path. Retrieval and
// ranking degradations stay internal; an empty candidate set escalates
// rather than fabricating an answer.
func (p *Pipeline) Process(ctx context.Context, text, source string) models.PipelineResult {
	cls := p.classifier.Classify(ctx, text)

	switch cls.Type {
	case models.TypeSpam:
		return models.PipelineResult{Action: models.ActionIgnore, Classification: cls}

	case models.TypeFAQ:
		if result, ok := p.tryAutoReply(ctx, text, cls); ok {
			return result
		}
		return models.PipelineResult{Action: models.ActionEscalate, Classification: cls, Reason: "RAG miss"}

	default:
		return models.PipelineResult{Action: models.ActionEscalate, Classification: cls}
	}
}

func (p *Pipeline) tryAutoReply(ctx context.Context, text string, cls models.Classification) (models.PipelineResult, bool) {
	cands, err := p.retriever.Retrieve(ctx, text)
	if err != nil {
		p.logger.Error("retrieval failed, escalating", zap.Error(err))
		return models.PipelineResult{}, false
	}
	if len(cands.Merged) == 0 {
		return models.PipelineResult{}, false
	}

	topK := p.settings.Current().TopK
	ranked := p.reranker.Rerank(ctx, text, cands, topK)

	passages := make([]string, len(ranked))
	for i, r := range ranked {
		passages[i] = r.Chunk.Content
	}

	answer, err := p.generator.Answer(ctx, text, passages)
	if err != nil {
		p.logger.Error("generation failed, escalating", zap.Error(err))
		return models.PipelineResult{}, false
	}

	if generator.ShouldEscalate(answer) || strings.Contains(strings.ToLower(answer), "creating a support ticket") {
		return models.PipelineResult{}, false
	}

	return models.PipelineResult{
		Action:         models.ActionAutoReply,
		Response:       answer,
		Classification: cls,
	}, true
}
