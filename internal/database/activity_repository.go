package database

import (
	"context"
	"time"

	"github.com/example/englearn/pkg/models"
)

// ActivityRepository stores per-user activity results
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new repository instance
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// UpsertScore creates or replaces the user's score for one content item
func (r *ActivityRepository) UpsertScore(ctx context.Context, score *models.ActivityScore) error {
	if score.Timestamp.IsZero() {
		score.Timestamp = time.Now().UTC()
	}
	query := r.db.Rebind(`
		INSERT INTO activity_scores (user_id, kind, content_id, score, total, title, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, kind, content_id) DO UPDATE SET
			score = excluded.score,
			total = excluded.total,
			title = excluded.title,
			submitted_at = excluded.submitted_at
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		score.UserID,
		score.Kind,
		score.ContentID,
		score.Score,
		score.Total,
		score.Title,
		score.Timestamp,
	).Scan(&score.ID)
	return classify(err, "failed to save %s score", score.Kind)
}

// RecordPronunciation counts one attempt at a phrase. A phrase stays
// mastered once any attempt was correct.
func (r *ActivityRepository) RecordPronunciation(ctx context.Context, userID, lessonID int64, phrase string, correct bool) (*models.PronunciationAttempt, error) {
	var attempt models.PronunciationAttempt
	query := r.db.Rebind(`
		INSERT INTO pronunciation_attempts (user_id, lesson_id, phrase, correct, attempts, updated_at)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT (user_id, lesson_id, phrase) DO UPDATE SET
			correct = pronunciation_attempts.correct OR excluded.correct,
			attempts = pronunciation_attempts.attempts + 1,
			updated_at = excluded.updated_at
		RETURNING id, user_id, lesson_id, phrase, correct, attempts, updated_at
	`)
	err := r.db.QueryRowxContext(ctx, query, userID, lessonID, phrase, correct, time.Now().UTC()).StructScan(&attempt)
	if err != nil {
		return nil, classify(err, "failed to record pronunciation attempt")
	}
	return &attempt, nil
}
