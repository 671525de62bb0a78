package database

import (
	"context"
	"time"

	"github.com/example/englearn/pkg/models"
)

// WritingRepository stores the append-only writing history
type WritingRepository struct {
	db *DB
}

// NewWritingRepository creates a new repository instance
func NewWritingRepository(db *DB) *WritingRepository {
	return &WritingRepository{db: db}
}

// Append adds a record to the user's writing history
func (r *WritingRepository) Append(ctx context.Context, rec *models.WritingRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	query := r.db.Rebind("INSERT INTO writing_scores (user_id, score, cefr, created_at) VALUES (?, ?, ?, ?) RETURNING id")
	err := r.db.QueryRowxContext(ctx, query, rec.UserID, rec.Score, rec.CEFR, rec.Timestamp).Scan(&rec.ID)
	return classify(err, "failed to append writing score")
}

// History returns the user's writing history, newest first
func (r *WritingRepository) History(ctx context.Context, userID int64) ([]models.WritingRecord, error) {
	var records []models.WritingRecord
	query := r.db.Rebind(`
		SELECT id, user_id, score, cefr, created_at
		FROM writing_scores
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`)
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, classify(err, "failed to get writing history")
	}
	return records, nil
}
