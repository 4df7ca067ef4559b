package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/shindakun/campuslogin/internal/config"
	"github.com/shindakun/campuslogin/internal/models"
	"github.com/shindakun/campuslogin/internal/storage"
)

// ErrInvalidCredentials is returned when username or password do not match
var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPassword hashes a password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// SeedAccounts creates or refreshes the configured accounts
func SeedAccounts(ctx context.Context, db *sql.DB, users []config.SeedUser) error {
	for _, u := range users {
		hash, err := HashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", u.Username, err)
		}

		account := &models.Account{
			User:         models.User{Name: u.Name, Username: u.Username, Email: u.Email},
			PasswordHash: hash,
		}
		if _, err := storage.UpsertUser(ctx, db, account); err != nil {
			return fmt.Errorf("failed to seed %s: %w", u.Username, err)
		}
	}
	return nil
}

// Authenticate checks username (case-insensitive) and password
func Authenticate(ctx context.Context, db *sql.DB, username, password string) (*models.Account, error) {
	account, err := storage.GetUserByUsername(ctx, db, username)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}
