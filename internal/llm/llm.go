// Package llm defines the model-provider contracts consumed by the
// pipeline and their OpenAI-backed implementation.
package llm

import "context"

// Generator produces free-form text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// StructuredGenerator produces output constrained to a JSON schema,
// decoded into out. A non-conforming completion is a parse error.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string, out any) error
}

// Embedder converts text into vector representations.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Scorer rates (query, passage) pairs jointly for relevance. The result
// has the same length and order as passages.
type Scorer interface {
	Score(ctx context.Context, query string, passages []string) ([]float64, error)
}

// Translator translates text into a target language. Callers fall back
// to the source text on error.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}
