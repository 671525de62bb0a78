package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/englearn/pkg/models"
)

// Supported DB_TYPE values
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB wraps the connection handle shared by all repositories. It is created
// once at startup and passed to the repositories that need it.
type DB struct {
	*sqlx.DB
}

// Connect opens the database, applies pragmas and creates missing tables
func Connect(ctx context.Context, dbType, dsn string) (*DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)
	switch dbType {
	case DriverPostgres:
		conn, err = sqlx.ConnectContext(ctx, "postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	case DriverSQLite, "":
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if dir := filepath.Dir(dsn); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return nil, fmt.Errorf("failed to create data directory: %w", err)
				}
			}
		}
		conn, err = sqlx.ConnectContext(ctx, "sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}

	db := &DB{DB: conn}
	if err := db.initializeSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Health reports whether the database answers
func (db *DB) Health(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

func (db *DB) isPostgres() bool {
	return db.DriverName() == "postgres"
}

func (db *DB) initializeSchema(ctx context.Context) error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.isPostgres() {
		pk = "BIGSERIAL PRIMARY KEY"
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id ` + pk + `,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				score INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`},
		{"lessons", `
			CREATE TABLE IF NOT EXISTS lessons (
				id ` + pk + `,
				title TEXT NOT NULL,
				content TEXT NOT NULL DEFAULT '',
				homework TEXT,
				comprehension TEXT,
				pronunciation TEXT,
				created_at TIMESTAMP NOT NULL
			)`},
		{"quizzes", `
			CREATE TABLE IF NOT EXISTS quizzes (
				id ` + pk + `,
				title TEXT NOT NULL,
				questions TEXT,
				created_at TIMESTAMP NOT NULL
			)`},
		{"blogs", `
			CREATE TABLE IF NOT EXISTS blogs (
				id ` + pk + `,
				title TEXT NOT NULL UNIQUE,
				author TEXT NOT NULL DEFAULT '',
				content TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL
			)`},
		{"learning_references", `
			CREATE TABLE IF NOT EXISTS learning_references (
				id ` + pk + `,
				title TEXT NOT NULL UNIQUE,
				url TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL
			)`},
		{"activity_scores", `
			CREATE TABLE IF NOT EXISTS activity_scores (
				id ` + pk + `,
				user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				kind TEXT NOT NULL,
				content_id BIGINT NOT NULL,
				score INTEGER NOT NULL,
				total INTEGER NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				submitted_at TIMESTAMP NOT NULL,
				UNIQUE(user_id, kind, content_id)
			)`},
		{"pronunciation_attempts", `
			CREATE TABLE IF NOT EXISTS pronunciation_attempts (
				id ` + pk + `,
				user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				lesson_id BIGINT NOT NULL,
				phrase TEXT NOT NULL,
				correct BOOLEAN NOT NULL DEFAULT FALSE,
				attempts INTEGER NOT NULL DEFAULT 0,
				updated_at TIMESTAMP NOT NULL,
				UNIQUE(user_id, lesson_id, phrase)
			)`},
		{"writing_scores", `
			CREATE TABLE IF NOT EXISTS writing_scores (
				id ` + pk + `,
				user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				score INTEGER NOT NULL,
				cefr TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`},
	}

	for _, t := range tables {
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}
	return nil
}

// classify maps driver errors onto the domain error sentinels
func classify(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", msg, models.ErrNotFound)
	case errors.Is(err, sql.ErrConnDone), errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %v", msg, models.ErrUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %v", msg, models.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %v", msg, err)
}
