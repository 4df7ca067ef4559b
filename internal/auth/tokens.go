package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shindakun/campuslogin/internal/storage"
)

// ErrInvalidToken is returned for malformed, unknown or revoked tokens
var ErrInvalidToken = errors.New("invalid token")

// TokenOwner identifies a verified token
type TokenOwner struct {
	TokenID int64
	UserID  int64
}

// TokenService issues and verifies opaque "<id>|<secret>" bearer tokens.
// Only the SHA-256 of the secret is stored.
type TokenService struct {
	db    *sql.DB
	cache *lru.Cache[string, TokenOwner]
}

// NewTokenService creates a token service with a verification cache of cacheSize entries
func NewTokenService(db *sql.DB, cacheSize int) (*TokenService, error) {
	if cacheSize < 1 {
		cacheSize = 1
	}
	cache, err := lru.New[string, TokenOwner](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create token cache: %w", err)
	}
	return &TokenService{db: db, cache: cache}, nil
}

// Issue creates a new token for userID and returns its plaintext form
func (ts *TokenService) Issue(ctx context.Context, userID int64, name string) (string, error) {
	secret := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")

	id, err := storage.CreateToken(ctx, ts.db, userID, name, hashSecret(secret))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d|%s", id, secret), nil
}

// Verify resolves a plaintext token to its owner
func (ts *TokenService) Verify(ctx context.Context, plaintext string) (TokenOwner, error) {
	if owner, ok := ts.cache.Get(plaintext); ok {
		return owner, nil
	}

	idPart, secret, ok := strings.Cut(plaintext, "|")
	if !ok || secret == "" {
		return TokenOwner{}, ErrInvalidToken
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return TokenOwner{}, ErrInvalidToken
	}

	userID, storedHash, err := storage.LookupToken(ctx, ts.db, id)
	if errors.Is(err, storage.ErrTokenNotFound) {
		return TokenOwner{}, ErrInvalidToken
	}
	if err != nil {
		return TokenOwner{}, err
	}

	if subtle.ConstantTimeCompare([]byte(storedHash), []byte(hashSecret(secret))) != 1 {
		return TokenOwner{}, ErrInvalidToken
	}

	if err := storage.TouchToken(ctx, ts.db, id); err != nil {
		return TokenOwner{}, err
	}

	owner := TokenOwner{TokenID: id, UserID: userID}
	ts.cache.Add(plaintext, owner)
	return owner, nil
}

// Revoke deletes the token; later Verify calls fail
func (ts *TokenService) Revoke(ctx context.Context, plaintext string, tokenID int64) error {
	ts.cache.Remove(plaintext)
	if err := storage.DeleteToken(ctx, ts.db, tokenID); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
