package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names
const (
	DriverSQLite3  = "sqlite3" // mattn/go-sqlite3, needs cgo
	DriverSQLite   = "sqlite"  // modernc.org/sqlite, pure Go
	DriverPostgres = "postgres"
)

// Queries are written with ? placeholders and passed through Rebind.
func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Connect opens the database and creates the schema if needed
func Connect(driver, dsn string) (*sqlx.DB, error) {
	if isSQLite(driver) {
		if err := ensureDataDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if isSQLite(driver) {
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

func isSQLite(driver string) bool {
	return driver == DriverSQLite3 || driver == DriverSQLite
}

func ensureDataDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// initializeSchema creates the tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == DriverPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				telegram_id BIGINT PRIMARY KEY,
				username TEXT NOT NULL DEFAULT '',
				first_name TEXT NOT NULL DEFAULT '',
				last_name TEXT NOT NULL DEFAULT '',
				pages_memorized INTEGER NOT NULL DEFAULT 0,
				last_section_used INTEGER NOT NULL DEFAULT 0,
				priority_list TEXT NOT NULL DEFAULT '[]',
				sections_per_day INTEGER NOT NULL DEFAULT 1,
				cached_plan_date TEXT,
				plan_message_id BIGINT,
				reminders_enabled BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`},
		{"daily_stats", `
			CREATE TABLE IF NOT EXISTS daily_stats (
				id ` + serial + `,
				user_id BIGINT NOT NULL REFERENCES users(telegram_id),
				date TEXT NOT NULL,
				pages_memorized INTEGER NOT NULL DEFAULT 0,
				base_section_count INTEGER NOT NULL DEFAULT 0,
				total_section_count INTEGER NOT NULL DEFAULT 0,
				daily_progress_pages INTEGER NOT NULL DEFAULT 0,
				sections_per_day INTEGER NOT NULL DEFAULT 1,
				pages_repeated INTEGER NOT NULL DEFAULT 0,
				UNIQUE(user_id, date)
			)`},
		{"user_actions", `
			CREATE TABLE IF NOT EXISTS user_actions (
				id ` + serial + `,
				user_id BIGINT NOT NULL REFERENCES users(telegram_id),
				action_type TEXT NOT NULL,
				previous_value INTEGER NOT NULL DEFAULT 0,
				new_value INTEGER NOT NULL DEFAULT 0,
				previous_priority_list TEXT NOT NULL DEFAULT '[]',
				new_priority_list TEXT NOT NULL DEFAULT '[]',
				created_at TEXT NOT NULL
			)`},
		{"user_actions index", `
			CREATE INDEX IF NOT EXISTS idx_user_actions_user ON user_actions(user_id, id)`},
	}

	for _, t := range tables {
		if _, err := db.Exec(t.ddl); err != nil {
			return fmt.Errorf("failed to create %s: %w", t.name, err)
		}
	}
	return nil
}
