// Package generator builds the answer prompt, issues the generation
// call and detects the escalation sentinel.
package generator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/llm"
	"github.com/xaenox/aidesk/pkg/config"
)

// EscalationSentinel marks generated output that must not be
// auto-delivered. Its presence anywhere in the text routes the
// interaction to the ticket path.
const EscalationSentinel = "[ESCALATE]"

// Generator produces answers grounded in retrieved context.
type Generator struct {
	llm      llm.Generator
	settings *config.SystemStore
	logger   *zap.Logger
}

func New(llmClient llm.Generator, settings *config.SystemStore, logger *zap.Logger) *Generator {
	return &Generator{llm: llmClient, settings: settings, logger: logger}
}

// Answer builds one prompt from the system prompt, the style directives
// and the context passages, then issues a single generation call. When
// the critic loop is enabled exactly one additional editor pass runs;
// it is a single deterministic pass, never a loop.
func (g *Generator) Answer(ctx context.Context, query string, passages []string) (string, error) {
	sys := g.settings.Current()

	prompt := g.buildPrompt(sys, query, passages)
	answer, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	if sys.EnableCriticLoop {
		refined, err := g.refine(ctx, sys, query, answer)
		if err != nil {
			// The draft already exists; a failed editor pass is not fatal.
			g.logger.Warn("refinement pass failed, keeping draft", zap.Error(err))
			return answer, nil
		}
		return refined, nil
	}
	return answer, nil
}

// ShouldEscalate reports whether the generated text carries the
// escalation sentinel.
func ShouldEscalate(answer string) bool {
	return strings.Contains(answer, EscalationSentinel)
}

func (g *Generator) buildPrompt(sys *config.SystemConfig, query string, passages []string) string {
	var style strings.Builder
	if sys.PreferSmallAnswers {
		style.WriteString(" Keep the answer very concise and short.")
	}
	if sys.MaxAnswerLength > 0 {
		fmt.Fprintf(&style, " Respond in under %d characters roughly.", sys.MaxAnswerLength)
	}
	if sys.StyleMethod == "rag" && sys.StyleExampleText != "" {
		fmt.Fprintf(&style,
			"\n\n[STYLE EXAMPLE]\nHere is an example of the writing style you MUST emulate:\n%s\n[END STYLE EXAMPLE]\n",
			sys.StyleExampleText)
	}

	sysPrompt := sys.SystemPrompt
	if sysPrompt == "" {
		sysPrompt = "Answer the user's question based ONLY on the following context."
	}

	return fmt.Sprintf(
		"%s\n%s\nIf you cannot answer the question based on the context or your knowledge, "+
			"or if the question requires human intervention, reply EXACTLY with: %s\n\n"+
			"Context:\n%s\n\nQuestion: %s",
		sysPrompt, style.String(), EscalationSentinel,
		strings.Join(passages, "\n\n"), query)
}

func (g *Generator) refine(ctx context.Context, sys *config.SystemConfig, query, draft string) (string, error) {
	maxLen := sys.MaxAnswerLength
	if maxLen <= 0 {
		maxLen = 200
	}
	prompt := fmt.Sprintf(
		"You are a strict editor. Review the following answer.\n"+
			"Original Question: %s\n"+
			"Draft Answer: %s\n\n"+
			"Critique Criteria:\n"+
			"1. Is it concise? (Target: under %d chars)\n"+
			"2. Is the tone helpful and professional?\n\n"+
			"If the draft is good, output the draft exactly as is.\n"+
			"If it can be improved, output ONLY the improved version.",
		query, draft, maxLen)
	return g.llm.Generate(ctx, prompt)
}
