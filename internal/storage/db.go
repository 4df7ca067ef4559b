package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// InitDB opens (creating if needed) the SQLite database at path and runs migrations.
// The same schema backs the client's preference store and the mock API's accounts.
func InitDB(path string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// - busy_timeout: wait up to 5 seconds if the database is locked
	// - journal_mode(WAL): readers never block the single writer
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite needs a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// runMigrations creates all necessary tables and indices
func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Namespaced key/value preferences (client side)
		`CREATE TABLE IF NOT EXISTS prefs (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (namespace, key)
		)`,

		// Accounts known to the mock API
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL DEFAULT '',
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Opaque bearer tokens issued by the mock API, stored hashed
		`CREATE TABLE IF NOT EXISTS personal_access_tokens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			token_hash TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_tokens_user_id ON personal_access_tokens(user_id)`,
	}

	// Execute migrations in a transaction
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, migration := range migrations {
		if _, err := tx.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	if _, err := tx.Exec("INSERT OR IGNORE INTO schema_version (version) VALUES (1)"); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}

	return runIncrementalMigrations(db)
}

// runIncrementalMigrations runs schema updates for existing databases
func runIncrementalMigrations(db *sql.DB) error {
	var currentVersion int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Migration 2: track when a token was last presented
	if currentVersion < 2 {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration 2: %w", err)
		}
		defer tx.Rollback()

		// Check if column already exists (in case of partial migration)
		var columnExists bool
		err = tx.QueryRow(`
			SELECT COUNT(*) > 0
			FROM pragma_table_info('personal_access_tokens')
			WHERE name = 'last_used_at'
		`).Scan(&columnExists)
		if err != nil {
			return fmt.Errorf("failed to check if last_used_at exists: %w", err)
		}

		if !columnExists {
			if _, err := tx.Exec("ALTER TABLE personal_access_tokens ADD COLUMN last_used_at TIMESTAMP"); err != nil {
				return fmt.Errorf("failed to add last_used_at column: %w", err)
			}
		}

		if _, err := tx.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (2)"); err != nil {
			return fmt.Errorf("failed to update schema version to 2: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration 2: %w", err)
		}
	}

	// Migration 3: student records gating registration
	if currentVersion < 3 {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration 3: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS students (
			student_id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			birthday TEXT NOT NULL,
			user_id INTEGER UNIQUE,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
		)`); err != nil {
			return fmt.Errorf("failed to create students table: %w", err)
		}

		if _, err := tx.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (3)"); err != nil {
			return fmt.Errorf("failed to update schema version to 3: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration 3: %w", err)
		}
	}

	return nil
}
