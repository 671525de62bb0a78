package models

import "time"

// CEFRLevel is a Common European Framework of Reference proficiency band
type CEFRLevel string

const (
	CEFRA1 CEFRLevel = "A1"
	CEFRA2 CEFRLevel = "A2"
	CEFRB1 CEFRLevel = "B1"
	CEFRB2 CEFRLevel = "B2"
	CEFRC1 CEFRLevel = "C1"
	CEFRC2 CEFRLevel = "C2"
)

// GrammarIssue is one error flagged by the grammar checker
type GrammarIssue struct {
	Message string `json:"message"`
	Excerpt string `json:"excerpt"`
	Offset  int    `json:"offset"`
	Length  int    `json:"length"`
}

// TextStatistics holds the linguistic measurements of a submission
type TextStatistics struct {
	WordCount           int     `json:"word_count"`
	SentenceCount       int     `json:"sentence_count"`
	AvgWordsPerSentence float64 `json:"avg_words_per_sentence"`
	PassiveVoiceCount   int     `json:"passive_voice_count"`
	UniqueWordCount     int     `json:"unique_word_count"`
	VocabVariety        float64 `json:"vocab_variety"`
	SyllableEstimate    int     `json:"syllable_estimate"`
	FleschScore         float64 `json:"flesch_score"`
}

// ScoreReport is the outcome of grading one piece of writing
type ScoreReport struct {
	Stats          TextStatistics `json:"stats"`
	Issues         []GrammarIssue `json:"issues"`
	GrammarScore   int            `json:"grammar_score"`
	StyleScore     int            `json:"style_score"`
	WordCountBonus float64        `json:"word_count_bonus"`
	TotalScore     int            `json:"score"`
	CEFR           CEFRLevel      `json:"cefr"`
	CEFRReasons    []string       `json:"reasons"`
	Feedback       string         `json:"feedback"`
	Degraded       bool           `json:"degraded"` // Grammar check failed, heuristic score only
}

// WritingRecord is one entry of a user's append-only writing history
type WritingRecord struct {
	ID        int64     `json:"-" db:"id"`
	UserID    int64     `json:"-" db:"user_id"`
	Score     int       `json:"score" db:"score"`
	CEFR      CEFRLevel `json:"cefr" db:"cefr"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}
