package style

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/llm"
	"github.com/xaenox/aidesk/internal/models"
)

// genericCorpus anchors the latent style direction: the mean embedding
// of these bland posts is subtracted from the reference mean.
var genericCorpus = []string{
	"This is a standard post.",
	"Today was a good day.",
	"Check out this update.",
	"I am happy to share this news.",
	"Work is going well.",
	"Here is a photo.",
}

// Engine generates style-matched content: it prepares strategy inputs
// (exemplars, signature keywords), renders the strategy prompt, issues
// the generation call and optionally runs the distributional critic.
type Engine struct {
	generator llm.Generator
	embedder  llm.Embedder
	scorer    llm.Scorer
	critic    *Critic
	logger    *zap.Logger
}

func NewEngine(generator llm.Generator, embedder llm.Embedder, scorer llm.Scorer, logger *zap.Logger) *Engine {
	return &Engine{
		generator: generator,
		embedder:  embedder,
		scorer:    scorer,
		critic:    NewCritic(generator, embedder, logger),
		logger:    logger,
	}
}

// GenerateRequest describes one content-generation run.
type GenerateRequest struct {
	Profile           models.StyleProfile
	Topic             string
	Strategy          Strategy
	ReferencePosts    []string
	Platforms         []string
	AdditionalContext string
	ImageDescription  string
	EnableRAG         bool
	EnableCritic      bool
}

// GeneratePost produces one post per requested platform. The critic, when
// enabled, reviews each draft once; its two generation calls are always
// sequential.
func (e *Engine) GeneratePost(ctx context.Context, req GenerateRequest) (map[string]string, error) {
	if req.Topic == "" {
		return nil, fmt.Errorf("generate post: empty topic")
	}

	platforms := req.Platforms
	if len(platforms) == 0 {
		platforms = []string{"Default"}
	}

	inputs := PromptInputs{
		Profile:           req.Profile,
		Topic:             req.Topic,
		AdditionalContext: req.AdditionalContext,
		ImageDescription:  req.ImageDescription,
	}

	profile := req.Profile
	if err := e.prepareStrategyInputs(ctx, req, &inputs, &profile); err != nil {
		// Strategy enrichment is best-effort: the base guidelines prompt
		// still stands without exemplars or signature keywords.
		e.logger.Warn("strategy input preparation degraded", zap.Error(err))
	}

	if req.EnableRAG && len(req.ReferencePosts) > 0 {
		retrieved, err := e.retrieveExemplars(ctx, req.Topic, req.ReferencePosts, 3)
		if err != nil {
			e.logger.Warn("context retrieval failed", zap.Error(err))
		} else {
			inputs.RetrievedContext = retrieved
		}
	}

	results := make(map[string]string, len(platforms))
	for _, platform := range platforms {
		inputs.Platform = platform
		prompt := BuildPrompt(req.Strategy, inputs)

		text, err := e.generator.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("generate for %s: %w", platform, err)
		}

		if req.EnableCritic {
			reviewed, err := e.critic.Review(ctx, text, profile)
			if err != nil {
				e.logger.Warn("critic review failed, keeping draft",
					zap.Error(err), zap.String("platform", platform))
			} else {
				text = reviewed
			}
		}

		results[platform] = text
	}
	return results, nil
}

func (e *Engine) prepareStrategyInputs(ctx context.Context, req GenerateRequest, inputs *PromptInputs, profile *models.StyleProfile) error {
	switch req.Strategy {
	case StrategyExemplar:
		if len(req.ReferencePosts) == 0 {
			return nil
		}
		exemplars, err := e.retrieveExemplars(ctx, req.Topic, req.ReferencePosts, 3)
		if err != nil {
			return err
		}
		inputs.Exemplars = exemplars

	case StrategyDistribution:
		if len(req.ReferencePosts) == 0 {
			return nil
		}
		embeddings, err := e.referenceEmbeddings(ctx, req, profile)
		if err != nil {
			return err
		}
		inputs.Exemplars = SelectDistributionMatched(req.ReferencePosts, embeddings)

	case StrategyLatent:
		if len(req.ReferencePosts) == 0 || len(req.Profile.TopKeywords) == 0 {
			return nil
		}
		embeddings, err := e.referenceEmbeddings(ctx, req, profile)
		if err != nil {
			return err
		}
		genericEmbeddings, err := e.embedder.EmbedBatch(ctx, genericCorpus)
		if err != nil {
			return fmt.Errorf("embed generic corpus: %w", err)
		}
		keywordEmbeddings, err := e.embedder.EmbedBatch(ctx, req.Profile.TopKeywords)
		if err != nil {
			return fmt.Errorf("embed keywords: %w", err)
		}
		vector := StyleVector(embeddings, genericEmbeddings)
		inputs.SignatureKeywords = SelectSignatureKeywords(req.Profile.TopKeywords, keywordEmbeddings, vector, 3)
	}
	return nil
}

// referenceEmbeddings reuses the profile's embedding set when present
// and fills it in otherwise, so the critic sees the same vectors the
// strategy used.
func (e *Engine) referenceEmbeddings(ctx context.Context, req GenerateRequest, profile *models.StyleProfile) ([][]float32, error) {
	if len(profile.Embeddings) == len(req.ReferencePosts) && len(profile.Embeddings) > 0 {
		return profile.Embeddings, nil
	}
	embeddings, err := e.embedder.EmbedBatch(ctx, req.ReferencePosts)
	if err != nil {
		return nil, fmt.Errorf("embed reference posts: %w", err)
	}
	profile.Embeddings = embeddings
	return embeddings, nil
}

// retrieveExemplars runs an in-memory hybrid pass over the reference
// posts: cosine similarity preselection, then cross-encoder reranking
// with a similarity-order fallback when scoring fails.
func (e *Engine) retrieveExemplars(ctx context.Context, query string, posts []string, topK int) ([]string, error) {
	queryEmbedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed exemplar query: %w", err)
	}
	postEmbeddings, err := e.embedder.EmbedBatch(ctx, posts)
	if err != nil {
		return nil, fmt.Errorf("embed reference posts: %w", err)
	}

	type ranked struct {
		post string
		sim  float64
	}
	sims := make([]ranked, len(posts))
	for i, emb := range postEmbeddings {
		sims[i] = ranked{post: posts[i], sim: cosine32(queryEmbedding, emb)}
	}
	sort.SliceStable(sims, func(i, j int) bool { return sims[i].sim > sims[j].sim })

	limit := 10
	if len(sims) < limit {
		limit = len(sims)
	}
	candidates := make([]string, limit)
	for i := 0; i < limit; i++ {
		candidates[i] = sims[i].post
	}

	scores, err := e.scorer.Score(ctx, query, candidates)
	if err != nil {
		e.logger.Warn("exemplar reranking failed, using similarity order", zap.Error(err))
		if len(candidates) > topK {
			candidates = candidates[:topK]
		}
		return candidates, nil
	}

	type scored struct {
		post  string
		score float64
	}
	rescored := make([]scored, len(candidates))
	for i, c := range candidates {
		rescored[i] = scored{post: c, score: scores[i]}
	}
	sort.SliceStable(rescored, func(i, j int) bool { return rescored[i].score > rescored[j].score })

	if len(rescored) > topK {
		rescored = rescored[:topK]
	}
	out := make([]string, len(rescored))
	for i, r := range rescored {
		out[i] = r.post
	}
	return out, nil
}

func cosine32(a, b []float32) float64 {
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
