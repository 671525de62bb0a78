package models

import "time"

// ActivityKind names one of the per-user activity collections
type ActivityKind string

const (
	ActivityHomework      ActivityKind = "homework"
	ActivityComprehension ActivityKind = "comprehension"
	ActivityQuiz          ActivityKind = "quiz"
	ActivityPronunciation ActivityKind = "pronunciation"
)

// ActivityScore is a user's latest result for one lesson section or quiz.
// At most one exists per (user, kind, content).
type ActivityScore struct {
	ID        int64        `json:"id" db:"id"`
	UserID    int64        `json:"user_id" db:"user_id"`
	Kind      ActivityKind `json:"kind" db:"kind"`
	ContentID int64        `json:"content_id" db:"content_id"`
	Score     int          `json:"score" db:"score"`
	Total     int          `json:"total" db:"total"`
	Title     string       `json:"title" db:"title"` // Denormalized, backfilled lazily
	Timestamp time.Time    `json:"timestamp" db:"submitted_at"`
}

// PronunciationAttempt tracks practice of one phrase of one lesson
type PronunciationAttempt struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	LessonID  int64     `json:"lesson_id" db:"lesson_id"`
	Phrase    string    `json:"phrase" db:"phrase"`
	Correct   bool      `json:"correct" db:"correct"`
	Attempts  int       `json:"attempts" db:"attempts"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TitleFix sets the display title of a stored activity score
type TitleFix struct {
	ScoreID int64
	Title   string
}

// AnswerFeedback reports the outcome of a single graded question
type AnswerFeedback struct {
	Question      string `json:"question,omitempty"`
	Prompt        string `json:"prompt,omitempty"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
}

// GradeResult is the response to an activity submission
type GradeResult struct {
	Score    int              `json:"score"`
	Total    int              `json:"total"`
	Feedback []AnswerFeedback `json:"feedback"`
}
