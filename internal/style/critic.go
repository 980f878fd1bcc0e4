package style

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/llm"
	"github.com/xaenox/aidesk/internal/models"
)

const (
	lengthThreshold      = 20
	readabilityThreshold = 15
	semanticThreshold    = 0.5
	criticProjections    = 50
)

// Critic decides whether a generated draft matches a reference style
// profile and, if not, issues one corrective rewrite. Regardless of how
// many critiques fire, at most one rewrite call is made per draft.
type Critic struct {
	generator llm.Generator
	embedder  llm.Embedder
	logger    *zap.Logger
}

func NewCritic(generator llm.Generator, embedder llm.Embedder, logger *zap.Logger) *Critic {
	return &Critic{generator: generator, embedder: embedder, logger: logger}
}

// Review compares the draft's scalar metrics and embedding against the
// profile's distributions. When no critique exceeds its threshold the
// draft is returned verbatim.
func (c *Critic) Review(ctx context.Context, draft string, profile models.StyleProfile) (string, error) {
	draftMetrics := ExtractMetrics(draft)
	critiques := c.collectCritiques(ctx, draft, draftMetrics, profile)

	if len(critiques) == 0 {
		return draft, nil
	}

	c.logger.Info("style critic triggered", zap.Strings("critiques", critiques))

	prompt := fmt.Sprintf(
		"Original Draft:\n%s\n\nCRITIQUE:\n%s\n\nRewrite the post to address the critique while keeping the original message.",
		draft, strings.Join(critiques, " "))

	rewritten, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("critic rewrite: %w", err)
	}
	return rewritten, nil
}

func (c *Critic) collectCritiques(ctx context.Context, draft string, draftMetrics Metrics, profile models.StyleProfile) []string {
	var critiques []string

	if lengths := profile.Distributions["length"]; len(lengths) > 0 {
		dist := Wasserstein1([]float64{draftMetrics.Length}, lengths)
		if dist > lengthThreshold {
			target := mean(lengths)
			if draftMetrics.Length > target {
				critiques = append(critiques, fmt.Sprintf(
					"The post is too long (%d words). Aim for closer to %d words.",
					int(draftMetrics.Length), int(target)))
			} else {
				critiques = append(critiques, fmt.Sprintf(
					"The post is too short (%d words). Expand to around %d words.",
					int(draftMetrics.Length), int(target)))
			}
		}
	}

	if readability := profile.Distributions["readability"]; len(readability) > 0 {
		dist := Wasserstein1([]float64{draftMetrics.Readability}, readability)
		if dist > readabilityThreshold {
			if draftMetrics.Readability > mean(readability) {
				critiques = append(critiques, "The tone is too simple. Make it more complex/professional.")
			} else {
				critiques = append(critiques, "The tone is too complex. Make it simpler and more accessible.")
			}
		}
	}

	if len(profile.Embeddings) > 0 && c.embedder != nil {
		draftEmbedding, err := c.embedder.Embed(ctx, draft)
		if err != nil {
			// Scalar critiques still apply; skip the semantic check.
			c.logger.Warn("draft embedding failed, skipping semantic critique", zap.Error(err))
		} else {
			swd := SlicedWasserstein([][]float32{draftEmbedding}, profile.Embeddings, criticProjections)
			if swd > semanticThreshold {
				critiques = append(critiques,
					"The semantic style deviates from your usual topics/vibe. Align closer to your past themes.")
			}
		}
	}

	return critiques
}
