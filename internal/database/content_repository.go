package database

import (
	"context"
	"time"

	"github.com/example/englearn/pkg/models"
)

// ContentRepository handles lessons, quizzes, blogs and references. The
// learning core only reads through it; writes come from the importer.
type ContentRepository struct {
	db *DB
}

// NewContentRepository creates a new repository instance
func NewContentRepository(db *DB) *ContentRepository {
	return &ContentRepository{db: db}
}

const lessonColumns = "id, title, content, homework, comprehension, pronunciation, created_at"

// FindLessonByID returns a lesson or models.ErrNotFound
func (r *ContentRepository) FindLessonByID(ctx context.Context, id int64) (*models.Lesson, error) {
	var lesson models.Lesson
	query := r.db.Rebind("SELECT " + lessonColumns + " FROM lessons WHERE id = ?")
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, classify(err, "failed to get lesson %d", id)
	}
	return &lesson, nil
}

// FindLessonByTitle returns a lesson by its exact title
func (r *ContentRepository) FindLessonByTitle(ctx context.Context, title string) (*models.Lesson, error) {
	var lesson models.Lesson
	query := r.db.Rebind("SELECT " + lessonColumns + " FROM lessons WHERE title = ? ORDER BY id LIMIT 1")
	if err := r.db.GetContext(ctx, &lesson, query, title); err != nil {
		return nil, classify(err, "failed to get lesson %q", title)
	}
	return &lesson, nil
}

// ListLessons returns all lessons
func (r *ContentRepository) ListLessons(ctx context.Context) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, "SELECT "+lessonColumns+" FROM lessons ORDER BY id"); err != nil {
		return nil, classify(err, "failed to list lessons")
	}
	return lessons, nil
}

// CreateLesson inserts a new lesson
func (r *ContentRepository) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	lesson.CreatedAt = time.Now().UTC()
	query := r.db.Rebind(`
		INSERT INTO lessons (title, content, homework, comprehension, pronunciation, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		lesson.Title,
		lesson.Content,
		lesson.Homework,
		lesson.Comprehension,
		lesson.Pronunciation,
		lesson.CreatedAt,
	).Scan(&lesson.ID)
	return classify(err, "failed to create lesson")
}

// UpdateLesson replaces the sections of an existing lesson
func (r *ContentRepository) UpdateLesson(ctx context.Context, lesson *models.Lesson) error {
	query := r.db.Rebind(`
		UPDATE lessons SET title = ?, content = ?, homework = ?, comprehension = ?, pronunciation = ?
		WHERE id = ?
	`)
	_, err := r.db.ExecContext(ctx, query,
		lesson.Title,
		lesson.Content,
		lesson.Homework,
		lesson.Comprehension,
		lesson.Pronunciation,
		lesson.ID,
	)
	return classify(err, "failed to update lesson %d", lesson.ID)
}

// FindQuizByID returns a quiz or models.ErrNotFound
func (r *ContentRepository) FindQuizByID(ctx context.Context, id int64) (*models.Quiz, error) {
	var quiz models.Quiz
	query := r.db.Rebind("SELECT id, title, questions, created_at FROM quizzes WHERE id = ?")
	if err := r.db.GetContext(ctx, &quiz, query, id); err != nil {
		return nil, classify(err, "failed to get quiz %d", id)
	}
	return &quiz, nil
}

// FindQuizByTitle returns a quiz by its exact title
func (r *ContentRepository) FindQuizByTitle(ctx context.Context, title string) (*models.Quiz, error) {
	var quiz models.Quiz
	query := r.db.Rebind("SELECT id, title, questions, created_at FROM quizzes WHERE title = ? ORDER BY id LIMIT 1")
	if err := r.db.GetContext(ctx, &quiz, query, title); err != nil {
		return nil, classify(err, "failed to get quiz %q", title)
	}
	return &quiz, nil
}

// ListQuizzes returns all quizzes
func (r *ContentRepository) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := r.db.SelectContext(ctx, &quizzes, "SELECT id, title, questions, created_at FROM quizzes ORDER BY id"); err != nil {
		return nil, classify(err, "failed to list quizzes")
	}
	return quizzes, nil
}

// CreateQuiz inserts a new quiz
func (r *ContentRepository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	quiz.CreatedAt = time.Now().UTC()
	query := r.db.Rebind("INSERT INTO quizzes (title, questions, created_at) VALUES (?, ?, ?) RETURNING id")
	err := r.db.QueryRowxContext(ctx, query, quiz.Title, quiz.Questions, quiz.CreatedAt).Scan(&quiz.ID)
	return classify(err, "failed to create quiz")
}

// UpdateQuiz replaces the questions of an existing quiz
func (r *ContentRepository) UpdateQuiz(ctx context.Context, quiz *models.Quiz) error {
	query := r.db.Rebind("UPDATE quizzes SET title = ?, questions = ? WHERE id = ?")
	_, err := r.db.ExecContext(ctx, query, quiz.Title, quiz.Questions, quiz.ID)
	return classify(err, "failed to update quiz %d", quiz.ID)
}
