package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shindakun/campuslogin/internal/models"
)

func TestUpsertUserAndLookup(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	account := &models.Account{
		User:         models.User{Name: "Ana Reyes", Username: "AReyes", Email: "ana@example.com"},
		PasswordHash: "hash-1",
	}
	id, err := UpsertUser(ctx, db, account)
	if err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if id == 0 || account.ID != id {
		t.Fatalf("UpsertUser() id = %d, account.ID = %d", id, account.ID)
	}

	got, err := GetUserByUsername(ctx, db, "AREYES")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if got.Username != "areyes" || got.Email != "ana@example.com" {
		t.Errorf("GetUserByUsername() = %+v", got)
	}

	// Second upsert updates in place
	account.PasswordHash = "hash-2"
	id2, err := UpsertUser(ctx, db, account)
	if err != nil {
		t.Fatalf("UpsertUser() update error = %v", err)
	}
	if id2 != id {
		t.Errorf("UpsertUser() update id = %d, want %d", id2, id)
	}
	byID, err := GetUserByID(ctx, db, id)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if byID.PasswordHash != "hash-2" {
		t.Errorf("PasswordHash = %q, want hash-2", byID.PasswordHash)
	}

	if _, err := GetUserByUsername(ctx, db, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByUsername(nobody) error = %v, want ErrUserNotFound", err)
	}
}

func TestTokensLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	userID, err := UpsertUser(ctx, db, &models.Account{
		User:         models.User{Username: "ana"},
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}

	tokenID, err := CreateToken(ctx, db, userID, "mobile", "deadbeef")
	if err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}

	owner, hash, err := LookupToken(ctx, db, tokenID)
	if err != nil {
		t.Fatalf("LookupToken() error = %v", err)
	}
	if owner != userID || hash != "deadbeef" {
		t.Errorf("LookupToken() = %d, %q", owner, hash)
	}

	if err := TouchToken(ctx, db, tokenID); err != nil {
		t.Errorf("TouchToken() error = %v", err)
	}

	if err := DeleteToken(ctx, db, tokenID); err != nil {
		t.Fatalf("DeleteToken() error = %v", err)
	}
	if _, _, err := LookupToken(ctx, db, tokenID); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("LookupToken() after delete error = %v, want ErrTokenNotFound", err)
	}
	if err := DeleteToken(ctx, db, tokenID); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("DeleteToken() twice error = %v, want ErrTokenNotFound", err)
	}
}
