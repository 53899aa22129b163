package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverSQLite is the embedded default
	DriverSQLite = "sqlite3"
	// DriverPostgres is used for shared deployments
	DriverPostgres = "postgres"
)

// Connect opens the database and makes sure the schema exists
func Connect(driver, dsn string) (*sqlx.DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	statements := sqliteSchema
	if db.DriverName() == DriverPostgres {
		statements = postgresSchema
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		chat_id INTEGER NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		notification_enabled BOOLEAN NOT NULL DEFAULT true,
		notification_hour INTEGER NOT NULL DEFAULT 9,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS reviewable_items (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		container_id TEXT NOT NULL,
		item_type TEXT NOT NULL CHECK (item_type IN ('question', 'flashcard')),
		question_id TEXT,
		flashcard_id TEXT,
		prompt TEXT NOT NULL DEFAULT '',
		answer TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK ((item_type = 'question' AND question_id IS NOT NULL AND flashcard_id IS NULL)
			OR (item_type = 'flashcard' AND flashcard_id IS NOT NULL AND question_id IS NULL)),
		UNIQUE(question_id),
		UNIQUE(flashcard_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviewable_items_user_container ON reviewable_items(user_id, container_id)`,
	`CREATE TABLE IF NOT EXISTS user_progress (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		item_id TEXT NOT NULL,
		box_level INTEGER NOT NULL DEFAULT 1 CHECK (box_level BETWEEN 1 AND 5),
		next_review_date TEXT,
		times_correct INTEGER NOT NULL DEFAULT 0,
		times_incorrect INTEGER NOT NULL DEFAULT 0,
		last_reviewed_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (item_id) REFERENCES reviewable_items(id) ON DELETE CASCADE,
		UNIQUE(user_id, item_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_progress_due ON user_progress(user_id, next_review_date)`,
	`CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		item_id TEXT NOT NULL,
		container_id TEXT NOT NULL,
		is_correct BOOLEAN NOT NULL,
		answered_at TIMESTAMP NOT NULL,
		FOREIGN KEY (item_id) REFERENCES reviewable_items(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_answers_user_container ON answers(user_id, container_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		chat_id BIGINT NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		notification_enabled BOOLEAN NOT NULL DEFAULT true,
		notification_hour INTEGER NOT NULL DEFAULT 9,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS reviewable_items (
		id TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		container_id TEXT NOT NULL,
		item_type TEXT NOT NULL CHECK (item_type IN ('question', 'flashcard')),
		question_id TEXT UNIQUE,
		flashcard_id TEXT UNIQUE,
		prompt TEXT NOT NULL DEFAULT '',
		answer TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK ((item_type = 'question' AND question_id IS NOT NULL AND flashcard_id IS NULL)
			OR (item_type = 'flashcard' AND flashcard_id IS NOT NULL AND question_id IS NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviewable_items_user_container ON reviewable_items(user_id, container_id)`,
	`CREATE TABLE IF NOT EXISTS user_progress (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		item_id TEXT NOT NULL REFERENCES reviewable_items(id) ON DELETE CASCADE,
		box_level INTEGER NOT NULL DEFAULT 1 CHECK (box_level BETWEEN 1 AND 5),
		next_review_date TEXT,
		times_correct INTEGER NOT NULL DEFAULT 0,
		times_incorrect INTEGER NOT NULL DEFAULT 0,
		last_reviewed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(user_id, item_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_progress_due ON user_progress(user_id, next_review_date)`,
	`CREATE TABLE IF NOT EXISTS answers (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		item_id TEXT NOT NULL REFERENCES reviewable_items(id) ON DELETE CASCADE,
		container_id TEXT NOT NULL,
		is_correct BOOLEAN NOT NULL,
		answered_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_answers_user_container ON answers(user_id, container_id)`,
}
