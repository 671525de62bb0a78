package models

import "time"

// User represents a learner and the activity collections the overall score is derived from
type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Score     int       `json:"score" db:"score"` // Derived, see scoring.Aggregator
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	HomeworkScores      []ActivityScore        `json:"homework_scores,omitempty" db:"-"`
	ComprehensionScores []ActivityScore        `json:"comprehension_scores,omitempty" db:"-"`
	QuizScores          []ActivityScore        `json:"quiz_scores,omitempty" db:"-"`
	PronunciationScores []PronunciationAttempt `json:"pronunciation_scores,omitempty" db:"-"`
}

// UserUpdate is a partial update of a user record
type UserUpdate struct {
	Score  *int
	Titles []TitleFix
}

// LeaderboardEntry is one ranked row of the leaderboard
type LeaderboardEntry struct {
	UserID int64  `json:"-" db:"id"`
	Name   string `json:"name" db:"name"`
	Score  int    `json:"score" db:"score"`
}
