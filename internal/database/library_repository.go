package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/englearn/pkg/models"
)

// ListBlogs returns all blogs, newest first
func (r *ContentRepository) ListBlogs(ctx context.Context) ([]models.Blog, error) {
	var blogs []models.Blog
	query := "SELECT id, title, author, content, created_at FROM blogs ORDER BY created_at DESC, id DESC"
	if err := r.db.SelectContext(ctx, &blogs, query); err != nil {
		return nil, classify(err, "failed to list blogs")
	}
	return blogs, nil
}

// UpsertBlog creates a blog or replaces the one with the same title. It
// reports whether a new blog was created.
func (r *ContentRepository) UpsertBlog(ctx context.Context, blog *models.Blog) (bool, error) {
	var created bool
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var existing models.Blog
		err := tx.GetContext(ctx, &existing, tx.Rebind("SELECT id, created_at FROM blogs WHERE title = ?"), blog.Title)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			created = true
			blog.CreatedAt = time.Now().UTC()
			query := tx.Rebind("INSERT INTO blogs (title, author, content, created_at) VALUES (?, ?, ?, ?) RETURNING id")
			return tx.QueryRowxContext(ctx, query, blog.Title, blog.Author, blog.Content, blog.CreatedAt).Scan(&blog.ID)
		case err != nil:
			return err
		}
		blog.ID, blog.CreatedAt = existing.ID, existing.CreatedAt
		_, err = tx.ExecContext(ctx, tx.Rebind("UPDATE blogs SET author = ?, content = ? WHERE id = ?"),
			blog.Author, blog.Content, blog.ID)
		return err
	})
	return created, classify(err, "failed to save blog %q", blog.Title)
}

// ListReferences returns all references ordered by title
func (r *ContentRepository) ListReferences(ctx context.Context) ([]models.Reference, error) {
	var refs []models.Reference
	query := "SELECT id, title, url, description, created_at FROM learning_references ORDER BY title, id"
	if err := r.db.SelectContext(ctx, &refs, query); err != nil {
		return nil, classify(err, "failed to list references")
	}
	return refs, nil
}

// UpsertReference creates a reference or replaces the one with the same
// title. It reports whether a new reference was created.
func (r *ContentRepository) UpsertReference(ctx context.Context, ref *models.Reference) (bool, error) {
	var created bool
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var existing models.Reference
		err := tx.GetContext(ctx, &existing, tx.Rebind("SELECT id, created_at FROM learning_references WHERE title = ?"), ref.Title)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			created = true
			ref.CreatedAt = time.Now().UTC()
			query := tx.Rebind("INSERT INTO learning_references (title, url, description, created_at) VALUES (?, ?, ?, ?) RETURNING id")
			return tx.QueryRowxContext(ctx, query, ref.Title, ref.URL, ref.Description, ref.CreatedAt).Scan(&ref.ID)
		case err != nil:
			return err
		}
		ref.ID, ref.CreatedAt = existing.ID, existing.CreatedAt
		_, err = tx.ExecContext(ctx, tx.Rebind("UPDATE learning_references SET url = ?, description = ? WHERE id = ?"),
			ref.URL, ref.Description, ref.ID)
		return err
	})
	return created, classify(err, "failed to save reference %q", ref.Title)
}

func (r *ContentRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
