package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shindakun/campuslogin/internal/config"
	"github.com/shindakun/campuslogin/internal/storage"
)

func TestAccountsAndTokens(t *testing.T) {
	ctx := context.Background()
	db, err := storage.InitDB(filepath.Join(t.TempDir(), "mock.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	err = SeedAccounts(ctx, db, []config.SeedUser{
		{Name: "Ana Reyes", Username: "AReyes", Email: "ana@example.com", Password: "correct horse"},
	})
	if err != nil {
		t.Fatalf("SeedAccounts() error = %v", err)
	}

	t.Run("authenticate is case-insensitive on username", func(t *testing.T) {
		account, err := Authenticate(ctx, db, "areyes", "correct horse")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if account.Name != "Ana Reyes" {
			t.Errorf("account = %+v", account)
		}
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		if _, err := Authenticate(ctx, db, "areyes", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("wrong password error = %v", err)
		}
		if _, err := Authenticate(ctx, db, "nobody", "x"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("unknown user error = %v", err)
		}
	})

	t.Run("issue verify revoke", func(t *testing.T) {
		tokens, err := NewTokenService(db, 8)
		if err != nil {
			t.Fatalf("NewTokenService() error = %v", err)
		}
		account, _ := Authenticate(ctx, db, "areyes", "correct horse")

		plaintext, err := tokens.Issue(ctx, account.ID, "mobile")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		if !strings.Contains(plaintext, "|") {
			t.Errorf("token %q is not <id>|<secret>", plaintext)
		}

		owner, err := tokens.Verify(ctx, plaintext)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if owner.UserID != account.ID {
			t.Errorf("owner = %+v", owner)
		}

		// Tampered secret for the same id
		id, _, _ := strings.Cut(plaintext, "|")
		if _, err := tokens.Verify(ctx, id+"|forged"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("forged token error = %v", err)
		}
		for _, bad := range []string{"", "abc", "x|y", "1|"} {
			if _, err := tokens.Verify(ctx, bad); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify(%q) error = %v", bad, err)
			}
		}

		if err := tokens.Revoke(ctx, plaintext, owner.TokenID); err != nil {
			t.Fatalf("Revoke() error = %v", err)
		}
		if _, err := tokens.Verify(ctx, plaintext); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify() after revoke error = %v", err)
		}
	})
}
