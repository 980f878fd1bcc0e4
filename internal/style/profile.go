package style

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/llm"
	"github.com/xaenox/aidesk/internal/models"
)

var wordPattern = regexp.MustCompile(`\w+`)

var profileStopwords = map[string]struct{}{
	"the": {}, "and": {}, "to": {}, "of": {}, "a": {}, "in": {}, "is": {},
	"that": {}, "for": {}, "it": {}, "on": {}, "with": {}, "as": {},
	"this": {}, "was": {}, "at": {}, "by": {}, "an": {}, "be": {},
}

// Analyzer builds style profiles from reference corpora.
type Analyzer struct {
	embedder llm.Embedder
	logger   *zap.Logger
}

func NewAnalyzer(embedder llm.Embedder, logger *zap.Logger) *Analyzer {
	return &Analyzer{embedder: embedder, logger: logger}
}

// BuildProfile summarizes a reference corpus: metric distributions,
// derived tone label, top keywords and structure features. Reference
// embeddings are computed when the embedder is available; embedding
// failure degrades the profile rather than failing the build.
func (a *Analyzer) BuildProfile(ctx context.Context, texts []string) models.StyleProfile {
	if len(texts) == 0 {
		return models.StyleProfile{
			Tone:          "Neutral",
			Distributions: map[string][]float64{},
		}
	}

	metrics := make([]Metrics, len(texts))
	for i, t := range texts {
		metrics[i] = ExtractMetrics(t)
	}

	lengths := make([]float64, len(metrics))
	emojiDensities := make([]float64, len(metrics))
	readabilities := make([]float64, len(metrics))
	sentenceCounts := make([]float64, len(metrics))
	gradeLevels := make([]float64, len(metrics))
	readingTimes := make([]float64, len(metrics))
	for i, m := range metrics {
		lengths[i] = m.Length
		emojiDensities[i] = m.EmojiDensity
		readabilities[i] = m.Readability
		sentenceCounts[i] = m.SentenceCount
		gradeLevels[i] = m.GradeLevel
		readingTimes[i] = m.ReadingTime
	}

	avgLength := mean(lengths)
	avgEmoji := mean(emojiDensities)
	avgReadability := mean(readabilities)

	profile := models.StyleProfile{
		AvgLength:        avgLength,
		EmojiDensity:     avgEmoji,
		ReadabilityScore: avgReadability,
		SentenceCount:    mean(sentenceCounts),
		GradeLevel:       mean(gradeLevels),
		ReadingTime:      mean(readingTimes),
		TopKeywords:      topKeywords(texts, 10),
		Tone:             deriveTone(avgReadability, avgEmoji),
		Distributions: map[string][]float64{
			"length":        lengths,
			"emoji_density": emojiDensities,
			"readability":   readabilities,
		},
	}

	for _, t := range texts {
		if strings.Contains(t, "#") {
			profile.StructureFeatures = append(profile.StructureFeatures, "Uses Hashtags")
			break
		}
	}
	for _, t := range texts {
		if strings.Contains(t, "\n-") || strings.Contains(t, "\n*") {
			profile.StructureFeatures = append(profile.StructureFeatures, "Uses Bullet Points")
			break
		}
	}
	if avgLength < 20 {
		profile.StructureFeatures = append(profile.StructureFeatures, "Short & Punchy")
	} else if avgLength > 100 {
		profile.StructureFeatures = append(profile.StructureFeatures, "Long-form")
	}

	if a.embedder != nil {
		embeddings, err := a.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			a.logger.Warn("reference embedding failed, profile has no embedding set", zap.Error(err))
		} else {
			profile.Embeddings = embeddings
		}
	}

	return profile
}

func deriveTone(avgReadability, avgEmojiDensity float64) string {
	tone := "Neutral"
	if avgReadability > 70 {
		tone = "Simple & Accessible"
	} else if avgReadability < 30 {
		tone = "Complex & Academic"
	}
	if avgEmojiDensity > 2 {
		tone += ", Expressive/Casual"
	}
	return tone
}

func topKeywords(texts []string, n int) []string {
	counts := make(map[string]int)
	for _, t := range texts {
		for _, w := range wordPattern.FindAllString(strings.ToLower(t), -1) {
			if len(w) <= 3 {
				continue
			}
			if _, stop := profileStopwords[w]; stop {
				continue
			}
			counts[w]++
		}
	}

	type kw struct {
		word  string
		count int
	}
	all := make([]kw, 0, len(counts))
	for w, c := range counts {
		all = append(all, kw{w, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].word < all[j].word
	})

	if len(all) > n {
		all = all[:n]
	}
	out := make([]string, len(all))
	for i, k := range all {
		out[i] = k.word
	}
	return out
}

// EvaluateSimilarity compares two texts by word-set overlap: the Jaccard
// coefficient plus its complement as a Burrows-delta proxy.
func EvaluateSimilarity(text1, text2 string) map[string]float64 {
	set := func(t string) map[string]struct{} {
		s := make(map[string]struct{})
		for _, w := range wordPattern.FindAllString(strings.ToLower(t), -1) {
			s[w] = struct{}{}
		}
		return s
	}

	w1, w2 := set(text1), set(text2)
	if len(w1) == 0 || len(w2) == 0 {
		return map[string]float64{"similarity_score": 0}
	}

	intersection := 0
	for w := range w1 {
		if _, ok := w2[w]; ok {
			intersection++
		}
	}
	union := len(w1) + len(w2) - intersection

	jaccard := float64(intersection) / float64(union)
	return map[string]float64{
		"similarity_score":    jaccard,
		"burrows_delta_proxy": 1 - jaccard,
	}
}
