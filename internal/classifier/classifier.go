// Package classifier triages incoming messages into spam, faq or ticket.
package classifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/llm"
	"github.com/xaenox/aidesk/internal/models"
)

const routerPrompt = `You are an AI Support Routing Agent. Classify the following user request.
Categories:
- "spam": Marketing, gibberish, unrelated to IT, construction support.
- "faq": Common questions (how-to, simple errors, policy questions).
- "ticket": Complex technical issues, outages, hardware requests, account lockouts requiring admin interaction.

Analyze urgency (high/medium/low) and specific category (Network, Hardware, Software, Access, etc.).

User Query: %s

Output strictly valid JSON:
{
    "type": "spam" | "faq" | "ticket",
    "priority": "high" | "medium" | "low",
    "category": "string"
}`

// Classifier routes raw text with one structured model call.
type Classifier struct {
	generator llm.StructuredGenerator
	logger    *zap.Logger
}

func New(generator llm.StructuredGenerator, logger *zap.Logger) *Classifier {
	return &Classifier{generator: generator, logger: logger}
}

// Classify performs one model call constrained to the three-field schema.
// On any failure or malformed output it fails open to the default ticket
// classification: an unclassifiable message must route toward a human,
// never toward auto-reply or auto-ignore. No retries.
func (c *Classifier) Classify(ctx context.Context, text string) models.Classification {
	var result models.Classification
	if err := c.generator.GenerateStructured(ctx, fmt.Sprintf(routerPrompt, text), &result); err != nil {
		c.logger.Error("classification failed, using default", zap.Error(err))
		return models.DefaultClassification()
	}

	switch result.Type {
	case models.TypeSpam, models.TypeFAQ, models.TypeTicket:
	default:
		c.logger.Error("classification returned unknown type, using default",
			zap.String("type", string(result.Type)))
		return models.DefaultClassification()
	}

	if result.Priority != models.PriorityHigh && result.Priority != models.PriorityMedium && result.Priority != models.PriorityLow {
		result.Priority = models.PriorityMedium
	}
	if result.Category == "" {
		result.Category = "general"
	}
	return result
}
