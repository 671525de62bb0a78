package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Homework question types
const (
	QuestionFillIn         = "fill-in"
	QuestionMultipleChoice = "multiple-choice"
)

// HomeworkQuestion is a single homework exercise of a lesson
type HomeworkQuestion struct {
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// ComprehensionQuestion is a question about a lesson's reading text
type ComprehensionQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Comprehension is the reading section of a lesson
type Comprehension struct {
	Text      string                  `json:"text"`
	Questions []ComprehensionQuestion `json:"questions"`
}

// QuizQuestion is a single quiz prompt
type QuizQuestion struct {
	Prompt        string `json:"prompt"`
	CorrectAnswer string `json:"correctAnswer"`
}

// HomeworkSet is stored as a JSON column
type HomeworkSet []HomeworkQuestion

// PhraseList is stored as a JSON column
type PhraseList []string

// QuizQuestions is stored as a JSON column
type QuizQuestions []QuizQuestion

// Lesson is a unit of course content with optional homework, comprehension
// and pronunciation sections
type Lesson struct {
	ID            int64          `json:"id" db:"id"`
	Title         string         `json:"title" db:"title"`
	Content       string         `json:"content" db:"content"`
	Homework      HomeworkSet    `json:"homework,omitempty" db:"homework"`
	Comprehension *Comprehension `json:"comprehension,omitempty" db:"comprehension"`
	Pronunciation PhraseList     `json:"pronunciation,omitempty" db:"pronunciation"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}

// HasHomework reports whether the lesson carries a homework section
func (l *Lesson) HasHomework() bool { return len(l.Homework) > 0 }

// HasComprehension reports whether the lesson carries comprehension questions
func (l *Lesson) HasComprehension() bool {
	return l.Comprehension != nil && len(l.Comprehension.Questions) > 0
}

// HasPronunciation reports whether the lesson carries pronunciation phrases
func (l *Lesson) HasPronunciation() bool { return len(l.Pronunciation) > 0 }

// Quiz is a standalone set of prompts
type Quiz struct {
	ID        int64         `json:"id" db:"id"`
	Title     string        `json:"title" db:"title"`
	Questions QuizQuestions `json:"questions" db:"questions"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// Scan implements sql.Scanner
func (h *HomeworkSet) Scan(src any) error { return scanJSON(src, h) }

// Value implements driver.Valuer
func (h HomeworkSet) Value() (driver.Value, error) { return valueJSON(h, h == nil) }

// Scan implements sql.Scanner
func (p *PhraseList) Scan(src any) error { return scanJSON(src, p) }

// Value implements driver.Valuer
func (p PhraseList) Value() (driver.Value, error) { return valueJSON(p, p == nil) }

// Scan implements sql.Scanner
func (q *QuizQuestions) Scan(src any) error { return scanJSON(src, q) }

// Value implements driver.Valuer
func (q QuizQuestions) Value() (driver.Value, error) { return valueJSON(q, q == nil) }

// Scan implements sql.Scanner
func (c *Comprehension) Scan(src any) error { return scanJSON(src, c) }

// Value implements driver.Valuer
func (c *Comprehension) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanJSON(src any, dst any) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(data) == 0 {
			return nil
		}
		return json.Unmarshal(data, dst)
	case string:
		if data == "" {
			return nil
		}
		return json.Unmarshal([]byte(data), dst)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}

func valueJSON(v any, isNil bool) (driver.Value, error) {
	if isNil {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
