package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shindakun/campuslogin/internal/models"
)

// ErrUserNotFound is returned when no account matches
var ErrUserNotFound = errors.New("user not found")

// UpsertUser creates the account or replaces its profile and password hash
func UpsertUser(ctx context.Context, db *sql.DB, account *models.Account) (int64, error) {
	account.Username = strings.ToLower(account.Username)
	if err := account.Validate(); err != nil {
		return 0, fmt.Errorf("invalid account: %w", err)
	}

	query := `
		INSERT INTO users (name, username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			password_hash = excluded.password_hash
	`

	if _, err := db.ExecContext(ctx, query,
		account.Name, account.Username, account.Email, account.PasswordHash, time.Now().UTC(),
	); err != nil {
		return 0, fmt.Errorf("failed to save user: %w", err)
	}

	// LastInsertId is unreliable for the update branch of an upsert
	var id int64
	if err := db.QueryRowContext(ctx, "SELECT id FROM users WHERE username = ?", account.Username).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}
	account.ID = id

	return id, nil
}

// GetUserByUsername looks an account up by its lower-cased username
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*models.Account, error) {
	return scanAccount(db.QueryRowContext(ctx, `
		SELECT id, name, username, email, password_hash, created_at
		FROM users
		WHERE username = ?
	`, strings.ToLower(username)))
}

// GetUserByID looks an account up by id
func GetUserByID(ctx context.Context, db *sql.DB, id int64) (*models.Account, error) {
	return scanAccount(db.QueryRowContext(ctx, `
		SELECT id, name, username, email, password_hash, created_at
		FROM users
		WHERE id = ?
	`, id))
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID, &account.Name, &account.Username, &account.Email,
		&account.PasswordHash, &account.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &account, nil
}
