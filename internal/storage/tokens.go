package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrTokenNotFound is returned when a token hash is unknown or revoked
var ErrTokenNotFound = errors.New("token not found")

// CreateToken stores a hashed access token for userID and returns its id
func CreateToken(ctx context.Context, db *sql.DB, userID int64, name, tokenHash string) (int64, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO personal_access_tokens (user_id, name, token_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, userID, name, tokenHash, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to create token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get token id: %w", err)
	}
	return id, nil
}

// LookupToken returns the owning user id and stored hash of token id
func LookupToken(ctx context.Context, db *sql.DB, id int64) (userID int64, tokenHash string, err error) {
	err = db.QueryRowContext(ctx,
		"SELECT user_id, token_hash FROM personal_access_tokens WHERE id = ?",
		id,
	).Scan(&userID, &tokenHash)
	if err == sql.ErrNoRows {
		return 0, "", ErrTokenNotFound
	}
	if err != nil {
		return 0, "", fmt.Errorf("failed to look up token: %w", err)
	}
	return userID, tokenHash, nil
}

// TouchToken records that a token was just used
func TouchToken(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, "UPDATE personal_access_tokens SET last_used_at = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to touch token: %w", err)
	}
	return nil
}

// DeleteToken revokes a token
func DeleteToken(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM personal_access_tokens WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return requireOneRow(result)
}

func requireOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrTokenNotFound
	}
	return nil
}
