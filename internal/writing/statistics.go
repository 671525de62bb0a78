package writing

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/example/englearn/pkg/models"
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	passiveVoice  = regexp.MustCompile(`(?i)\b(is|are|was|were|been)\s+\w+ed\b`)
	vowel         = regexp.MustCompile(`(?i)[aeiouy]`)
)

// Flesch Reading Ease constants
const (
	fleschBase         = 206.835
	fleschSentenceRate = 1.015
	fleschSyllableRate = 84.6
)

// Words splits text on runs of whitespace, discarding empty tokens
func Words(text string) []string {
	return strings.Fields(text)
}

// CountSentences counts the segments between runs of . ! ? that carry
// non-whitespace content
func CountSentences(text string) int {
	return lo.CountBy(sentenceSplit.Split(text, -1), func(s string) bool {
		return strings.TrimSpace(s) != ""
	})
}

// CountPassiveVoice counts auxiliary + "-ed" word matches. It is a
// heuristic: "was tired" counts, "was written" does not.
func CountPassiveVoice(text string) int {
	return len(passiveVoice.FindAllStringIndex(text, -1))
}

// EstimateSyllables counts vowel letters in a word, at least one
func EstimateSyllables(word string) int {
	return max(len(vowel.FindAllStringIndex(word, -1)), 1)
}

// Analyze computes the statistics of a text. Ratios whose denominator is
// zero are reported as 0.
func Analyze(text string) models.TextStatistics {
	words := Words(text)
	stats := models.TextStatistics{
		WordCount:         len(words),
		SentenceCount:     CountSentences(text),
		PassiveVoiceCount: CountPassiveVoice(text),
		UniqueWordCount: len(lo.Uniq(lo.Map(words, func(w string, _ int) string {
			return strings.ToLower(w)
		}))),
		SyllableEstimate: lo.SumBy(words, EstimateSyllables),
	}

	stats.AvgWordsPerSentence = ratio(stats.WordCount, stats.SentenceCount)
	stats.VocabVariety = ratio(stats.UniqueWordCount, stats.WordCount)
	if stats.WordCount > 0 {
		stats.FleschScore = fleschBase -
			fleschSentenceRate*stats.AvgWordsPerSentence -
			fleschSyllableRate*ratio(stats.SyllableEstimate, stats.WordCount)
	}
	return stats
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
