// Package style analyzes text against a reference style profile and
// drives the distributional critic and the prompt-construction
// strategies for content generation.
package style

import (
	"regexp"
	"strings"
	"unicode"
)

// Metrics are the scalar style measurements of a single text. The same
// functions build the reference profile and score drafts, so the two
// are always comparable.
type Metrics struct {
	Length        float64
	EmojiDensity  float64
	Readability   float64
	SentenceCount float64
	ReadingTime   float64
	GradeLevel    float64
}

var nonWordPattern = regexp.MustCompile(`[^\w\s,.]`)

// millisecondsPerChar matches the reading-time constant of the reference
// metric set.
const millisecondsPerChar = 14.6

// ExtractMetrics measures one text. Empty input yields zeroed metrics.
func ExtractMetrics(text string) Metrics {
	if strings.TrimSpace(text) == "" {
		return Metrics{}
	}

	words := strings.Fields(text)
	length := float64(len(words))

	emojiCount := float64(len(nonWordPattern.FindAllString(text, -1)))
	emojiDensity := 0.0
	if length > 0 {
		emojiDensity = emojiCount / length * 100
	}

	sentences := float64(strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?"))
	if sentences == 0 && length > 0 {
		sentences = 1
	}

	syllables := 0.0
	for _, w := range words {
		syllables += float64(countSyllables(w))
	}

	// Flesch reading ease and Flesch-Kincaid grade level.
	wordsPerSentence := length / sentences
	syllablesPerWord := syllables / length
	readability := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	gradeLevel := 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59

	readingTime := float64(len(text)) * millisecondsPerChar / 1000

	return Metrics{
		Length:        length,
		EmojiDensity:  emojiDensity,
		Readability:   readability,
		SentenceCount: sentences,
		ReadingTime:   readingTime,
		GradeLevel:    gradeLevel,
	}
}

// countSyllables approximates English syllable count by vowel groups,
// discounting a trailing silent e.
func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if word == "" {
		return 0
	}

	isVowel := func(r rune) bool {
		return strings.ContainsRune("aeiouy", r)
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}
