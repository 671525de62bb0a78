package writing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/example/englearn/pkg/models"
)

// DefaultTimeout bounds a single grammar check
const DefaultTimeout = 8 * time.Second

const (
	minWords          = 50
	wordCountBonusMax = 30.0
	grammarPenalty    = 10
	passivePenalty    = 5
	vocabPenalty      = 10
	vocabThreshold    = 0.7
	passiveRatio      = 0.2
	readableFlesch    = 60.0
)

// GrammarChecker flags grammar errors in a text
type GrammarChecker interface {
	Check(ctx context.Context, text string) ([]models.GrammarIssue, error)
}

// Assessor grades free-form writing
type Assessor struct {
	checker GrammarChecker
	timeout time.Duration
	logger  logrus.FieldLogger
}

// NewAssessor creates an assessor. A non-positive timeout selects DefaultTimeout.
func NewAssessor(checker GrammarChecker, timeout time.Duration, logger logrus.FieldLogger) *Assessor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Assessor{checker: checker, timeout: timeout, logger: logger}
}

// Assess grades text. The grammar check is attempted once; if it fails or
// times out the report is computed from word count alone and marked
// Degraded. The only error returned is models.ErrInvalidInput.
func (a *Assessor) Assess(ctx context.Context, text string) (*models.ScoreReport, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text provided: %w", models.ErrInvalidInput)
	}

	stats := Analyze(text)

	checkCtx, cancel := context.WithTimeout(ctx, a.timeout)
	issues, err := a.checker.Check(checkCtx, text)
	cancel()
	if err != nil {
		a.logger.WithError(err).WithField("words", stats.WordCount).Warn("grammar check failed, using basic score")
		return degradedReport(stats, err), nil
	}

	return buildReport(stats, issues), nil
}

func buildReport(stats models.TextStatistics, issues []models.GrammarIssue) *models.ScoreReport {
	if issues == nil {
		issues = []models.GrammarIssue{}
	}
	grammarScore := max(0, 100-grammarPenalty*len(issues))

	styleScore := 100 - passivePenalty*stats.PassiveVoiceCount
	if stats.VocabVariety < vocabThreshold {
		styleScore -= vocabPenalty
	}

	bonus := math.Min(float64(stats.WordCount)/minWords, 1) * wordCountBonusMax
	total := int(math.Round(float64(grammarScore)*0.5 + bonus*0.3 + float64(styleScore)*0.2))

	level, reasons := MapCEFR(total, stats.WordCount, grammarScore, styleScore)

	return &models.ScoreReport{
		Stats:          stats,
		Issues:         issues,
		GrammarScore:   grammarScore,
		StyleScore:     styleScore,
		WordCountBonus: bonus,
		TotalScore:     total,
		CEFR:           level,
		CEFRReasons:    reasons,
		Feedback:       feedback(stats, issues, grammarScore, styleScore),
	}
}

func degradedReport(stats models.TextStatistics, cause error) *models.ScoreReport {
	total := int(math.Round(math.Min(float64(stats.WordCount)/minWords, 1) * 100))
	level, reasons := MapCEFR(total, stats.WordCount, 100, 100)
	return &models.ScoreReport{
		Stats:          stats,
		Issues:         []models.GrammarIssue{},
		GrammarScore:   100,
		StyleScore:     100,
		WordCountBonus: math.Min(float64(stats.WordCount)/minWords, 1) * wordCountBonusMax,
		TotalScore:     total,
		CEFR:           level,
		CEFRReasons:    reasons,
		Feedback:       "Grading failed - used basic score: " + cause.Error(),
		Degraded:       true,
	}
}

func feedback(stats models.TextStatistics, issues []models.GrammarIssue, grammarScore, styleScore int) string {
	grammarNotes := []string{"No grammar errors found!"}
	if len(issues) > 0 {
		grammarNotes = lo.Map(issues, func(issue models.GrammarIssue, _ int) string {
			return fmt.Sprintf(`%s (e.g., "%s")`, issue.Message, issue.Excerpt)
		})
	}

	var styleNotes []string
	if float64(stats.PassiveVoiceCount) > float64(stats.SentenceCount)*passiveRatio {
		styleNotes = append(styleNotes, "Too much passive voice - try active voice.")
	}
	if stats.VocabVariety < vocabThreshold {
		styleNotes = append(styleNotes, "Use more varied vocabulary.")
	}
	styleLine := "Style: No major issues."
	if len(styleNotes) > 0 {
		styleLine = fmt.Sprintf("Style (%d%%): %s", styleScore, strings.Join(styleNotes, "; "))
	}

	readability := "Good readability!"
	if stats.FleschScore < readableFlesch {
		readability = "Text is hard to read - simplify sentences or words."
	}

	return strings.Join([]string{
		fmt.Sprintf("Words: %d, Sentences: %d, Avg. Words/Sentence: %.1f",
			stats.WordCount, stats.SentenceCount, stats.AvgWordsPerSentence),
		fmt.Sprintf("Grammar (%d%%): %s", grammarScore, strings.Join(grammarNotes, "; ")),
		styleLine,
		fmt.Sprintf("Readability: %s (Flesch Score: %.1f)", readability, stats.FleschScore),
	}, "\n")
}
