package index

import (
	"regexp"
	"sort"
	"strings"

	"github.com/xaenox/aidesk/internal/models"
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// Lexicon is an immutable bag-of-words index over a corpus snapshot.
// It is built once from the full corpus and replaced wholesale on every
// rebuild; a nil Lexicon simply disables the lexical retrieval branch.
type Lexicon struct {
	chunks []models.Chunk
	// termFreqs[i] holds per-term counts and total token count of chunk i.
	termFreqs []termStats
	stopwords map[string]struct{}
}

type termStats struct {
	counts map[string]int
	total  int
}

// BuildLexicon indexes the given corpus snapshot. An empty corpus yields
// nil, which callers treat as "no lexical branch".
func BuildLexicon(chunks []models.Chunk) *Lexicon {
	if len(chunks) == 0 {
		return nil
	}

	lex := &Lexicon{
		chunks:    make([]models.Chunk, len(chunks)),
		termFreqs: make([]termStats, len(chunks)),
		stopwords: defaultStopwords(),
	}
	copy(lex.chunks, chunks)

	for i, c := range chunks {
		counts := make(map[string]int)
		total := 0
		for _, tok := range lex.tokenize(c.Content) {
			counts[tok]++
			total++
		}
		lex.termFreqs[i] = termStats{counts: counts, total: total}
	}
	return lex
}

// Query scores every chunk by normalized term-frequency overlap with the
// query tokens and returns the top k matches.
func (l *Lexicon) Query(text string, k int) []models.SearchResult {
	if l == nil || k <= 0 {
		return nil
	}

	queryTokens := l.tokenize(text)
	if len(queryTokens) == 0 {
		return nil
	}

	results := make([]models.SearchResult, 0, len(l.chunks))
	for i := range l.chunks {
		stats := l.termFreqs[i]
		if stats.total == 0 {
			continue
		}
		score := 0.0
		for _, tok := range queryTokens {
			if count, ok := stats.counts[tok]; ok {
				score += float64(count) / float64(stats.total)
			}
		}
		if score > 0 {
			results = append(results, models.SearchResult{Chunk: l.chunks[i], Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Size reports how many chunks the snapshot covers.
func (l *Lexicon) Size() int {
	if l == nil {
		return 0
	}
	return len(l.chunks)
}

func (l *Lexicon) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, isStop := l.stopwords[tok]; isStop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "for", "to",
		"of", "in", "on", "at", "by", "with", "as", "is", "are", "was",
		"were", "be", "it", "this", "that", "these", "those", "from",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
