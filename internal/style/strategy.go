package style

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/xaenox/aidesk/internal/models"
)

// Strategy selects how style context is woven into the generation
// prompt. The set is closed; BuildPrompt switches over it rather than
// matching free-form strings at call sites.
type Strategy string

const (
	StrategyGuidelines     Strategy = "Prompt Engineering"
	StrategyExemplar       Strategy = "RAG Style Transfer"
	StrategyDistribution   Strategy = "Wasserstein Style Copy"
	StrategyLatent         Strategy = "Latent Space Disentanglement"
	StrategyChainOfThought Strategy = "Chain of Thought (CoT)"
	StrategyContrastive    Strategy = "Contrastive Prompting"
)

// Strategies lists every supported prompt-construction strategy.
func Strategies() []Strategy {
	return []Strategy{
		StrategyGuidelines,
		StrategyExemplar,
		StrategyDistribution,
		StrategyLatent,
		StrategyChainOfThought,
		StrategyContrastive,
	}
}

// PromptInputs carries everything a strategy may consume. Exemplars and
// SignatureKeywords are precomputed by the engine so each strategy stays
// a pure function over its inputs.
type PromptInputs struct {
	Profile           models.StyleProfile
	Topic             string
	Platform          string
	Exemplars         []string
	SignatureKeywords []string
	ImageDescription  string
	AdditionalContext string
	RetrievedContext  []string
}

// BuildPrompt renders the generation prompt for the given strategy.
func BuildPrompt(strategy Strategy, in PromptInputs) string {
	platform := in.Platform
	if platform == "" {
		platform = "Default"
	}
	tone := in.Profile.Tone
	if tone == "" {
		tone = "Neutral"
	}

	emojiUsage := "Low"
	if in.Profile.EmojiDensity > 2 {
		emojiUsage = "High"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb,
		"You are a social media manager. Write on language that is used in topic. Write a post for %s about: %q.\n\n",
		platform, in.Topic)
	fmt.Fprintf(&sb, "Style Guidelines:\n- Tone: %s\n- Average Length: %d words\n- Emoji Usage: %s\n- Structure: %s\n",
		tone, int(in.Profile.AvgLength), emojiUsage, strings.Join(in.Profile.StructureFeatures, ", "))

	if in.ImageDescription != "" {
		fmt.Fprintf(&sb, "\nContext from Image: %s\nIncorporate this visual context into the post naturally.\n", in.ImageDescription)
	}
	if in.AdditionalContext != "" {
		fmt.Fprintf(&sb, "\nAdditional Context: %s\n", in.AdditionalContext)
	}
	if len(in.RetrievedContext) > 0 {
		sb.WriteString("\nRetrieved Context (RAG):\n")
		for _, ctx := range in.RetrievedContext {
			fmt.Fprintf(&sb, "- %s\n", ctx)
		}
	}

	switch strategy {
	case StrategyGuidelines:
		fmt.Fprintf(&sb, "\nKey Vocabulary: %s", strings.Join(in.Profile.TopKeywords, ", "))

	case StrategyExemplar:
		if len(in.Exemplars) > 0 {
			sb.WriteString("\nHere are some examples of my past posts to mimic:\n")
			for _, ex := range in.Exemplars {
				fmt.Fprintf(&sb, "- %s\n", ex)
			}
		}

	case StrategyDistribution:
		if len(in.Exemplars) > 0 {
			sb.WriteString("\nStyle Reference (Distribution Matched):\n")
			for _, ex := range in.Exemplars {
				fmt.Fprintf(&sb, "- %s\n", ex)
			}
		}

	case StrategyLatent:
		if len(in.SignatureKeywords) > 0 {
			fmt.Fprintf(&sb,
				"\nCRITICAL: You must infuse the following 'signature' concepts/words into the text to capture the unique latent style: %s.",
				strings.Join(in.SignatureKeywords, ", "))
		}

	case StrategyChainOfThought:
		sb.WriteString(`
Before writing the post, think step-by-step:
1. Analyze the requested tone and structure.
2. Brainstorm 3 different hooks that match the user's style.
3. Select the best hook.
4. Draft the content ensuring vocabulary matches the 'Key Vocabulary'.
5. Review against the Style Guidelines.

Output your reasoning first, then the final post.
`)
		fmt.Fprintf(&sb, "Key Vocabulary: %s", strings.Join(in.Profile.TopKeywords, ", "))

	case StrategyContrastive:
		fmt.Fprintf(&sb, `
CONTRASTIVE INSTRUCTION:
Do NOT write like a generic corporate bot.
Do NOT use these generic phrases: "Thrilled to announce", "Game changer", "In today's fast-paced world".

Instead, write EXACTLY like the user who uses these words: %s.
The tone must be strictly %s.`,
			strings.Join(in.Profile.TopKeywords, ", "), tone)
	}

	return sb.String()
}

// SelectDistributionMatched picks the reference posts nearest, farthest
// and median-distance from the embedding centroid of all reference
// posts, giving the model the typical case plus both extremes.
func SelectDistributionMatched(posts []string, embeddings [][]float32) []string {
	if len(posts) == 0 || len(embeddings) != len(posts) {
		return nil
	}
	if len(posts) == 1 {
		return []string{posts[0]}
	}

	dim := len(embeddings[0])
	centroid := make([]float64, dim)
	for _, e := range embeddings {
		for j := 0; j < dim && j < len(e); j++ {
			centroid[j] += float64(e[j])
		}
	}
	for j := range centroid {
		centroid[j] /= float64(len(embeddings))
	}

	type ranked struct {
		index int
		dist  float64
	}
	dists := make([]ranked, len(embeddings))
	for i, e := range embeddings {
		sum := 0.0
		for j := 0; j < dim && j < len(e); j++ {
			d := float64(e[j]) - centroid[j]
			sum += d * d
		}
		dists[i] = ranked{index: i, dist: math.Sqrt(sum)}
	}
	sort.Slice(dists, func(i, j int) bool { return dists[i].dist < dists[j].dist })

	picks := []int{
		dists[0].index,
		dists[len(dists)-1].index,
		dists[len(dists)/2].index,
	}
	out := make([]string, 0, len(picks))
	for _, i := range picks {
		out = append(out, posts[i])
	}
	return out
}

// SelectSignatureKeywords projects a style vector (mean reference
// embedding minus mean generic-corpus embedding) and keeps the keywords
// most aligned with it by cosine similarity.
func SelectSignatureKeywords(keywords []string, keywordEmbeddings [][]float32, styleVector []float64, n int) []string {
	if len(keywords) == 0 || len(keywordEmbeddings) != len(keywords) || len(styleVector) == 0 {
		return nil
	}
	if n <= 0 {
		n = 3
	}

	type ranked struct {
		word string
		sim  float64
	}
	sims := make([]ranked, len(keywords))
	for i, emb := range keywordEmbeddings {
		sims[i] = ranked{word: keywords[i], sim: cosine64(styleVector, emb)}
	}
	sort.SliceStable(sims, func(i, j int) bool { return sims[i].sim > sims[j].sim })

	if len(sims) > n {
		sims = sims[:n]
	}
	out := make([]string, len(sims))
	for i, s := range sims {
		out[i] = s.word
	}
	return out
}

// StyleVector is the latent style direction: mean reference embedding
// minus mean generic-corpus embedding.
func StyleVector(reference, generic [][]float32) []float64 {
	refMean := meanVector(reference)
	genMean := meanVector(generic)
	if refMean == nil {
		return nil
	}

	out := make([]float64, len(refMean))
	for i := range refMean {
		out[i] = refMean[i]
		if genMean != nil && i < len(genMean) {
			out[i] -= genMean[i]
		}
	}
	return out
}

func meanVector(vectors [][]float32) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	out := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for j := 0; j < len(out) && j < len(v); j++ {
			out[j] += float64(v[j])
		}
	}
	for j := range out {
		out[j] /= float64(len(vectors))
	}
	return out
}

func cosine64(a []float64, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * float64(b[i])
		na += a[i] * a[i]
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
