package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/englearn/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`
		INSERT INTO users (name, email, score, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?)
		RETURNING id
	`)
	if err := r.db.QueryRowxContext(ctx, query, user.Name, user.Email, now, now).Scan(&user.ID); err != nil {
		return classify(err, "failed to create user")
	}
	user.Score = 0
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID returns a user without activity collections
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT id, name, email, score, created_at, updated_at FROM users WHERE id = ?")
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, classify(err, "failed to get user %d", id)
	}
	return &user, nil
}

// GetByEmail returns a user by email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT id, name, email, score, created_at, updated_at FROM users WHERE email = ?")
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, classify(err, "failed to get user by email")
	}
	return &user, nil
}

// Load returns a user together with all four activity collections
func (r *UserRepository) Load(ctx context.Context, id int64) (*models.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var scores []models.ActivityScore
	query := r.db.Rebind(`
		SELECT id, user_id, kind, content_id, score, total, title, submitted_at
		FROM activity_scores
		WHERE user_id = ?
		ORDER BY id
	`)
	if err := r.db.SelectContext(ctx, &scores, query, id); err != nil {
		return nil, classify(err, "failed to load activity scores for user %d", id)
	}
	for _, s := range scores {
		switch s.Kind {
		case models.ActivityHomework:
			user.HomeworkScores = append(user.HomeworkScores, s)
		case models.ActivityComprehension:
			user.ComprehensionScores = append(user.ComprehensionScores, s)
		case models.ActivityQuiz:
			user.QuizScores = append(user.QuizScores, s)
		}
	}

	query = r.db.Rebind(`
		SELECT id, user_id, lesson_id, phrase, correct, attempts, updated_at
		FROM pronunciation_attempts
		WHERE user_id = ?
		ORDER BY id
	`)
	if err := r.db.SelectContext(ctx, &user.PronunciationScores, query, id); err != nil {
		return nil, classify(err, "failed to load pronunciation attempts for user %d", id)
	}

	return user, nil
}

// Save applies a partial update to a user in a single transaction
func (r *UserRepository) Save(ctx context.Context, id int64, update models.UserUpdate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if update.Score != nil {
		res, err := tx.ExecContext(ctx,
			tx.Rebind("UPDATE users SET score = ?, updated_at = ? WHERE id = ?"),
			*update.Score, time.Now().UTC(), id)
		if err != nil {
			return classify(err, "failed to update score for user %d", id)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("user %d: %w", id, models.ErrNotFound)
		}
	}

	for _, fix := range update.Titles {
		_, err := tx.ExecContext(ctx,
			tx.Rebind("UPDATE activity_scores SET title = ? WHERE id = ? AND user_id = ?"),
			fix.Title, fix.ScoreID, id)
		if err != nil {
			return classify(err, "failed to update title of score %d", fix.ScoreID)
		}
	}

	if err := tx.Commit(); err != nil {
		return classify(err, "failed to commit user update")
	}
	return nil
}

// ListIDs returns the ids of all users
func (r *UserRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, "SELECT id FROM users ORDER BY id"); err != nil {
		return nil, classify(err, "failed to list users")
	}
	return ids, nil
}

// Leaderboard returns the top users by score
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	query := r.db.Rebind(`
		SELECT id, name, score FROM users
		ORDER BY score DESC, name ASC, id ASC
		LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, classify(err, "failed to get leaderboard")
	}
	return entries, nil
}
